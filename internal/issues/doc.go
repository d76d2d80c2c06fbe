// Package issues turns saved bug reports into GitHub issues. Render builds the
// Markdown draft and the issue command files it through the gh CLI, or only
// prints it when running dry.
package issues

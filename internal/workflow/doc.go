// Package workflow drives a session from declarative scripts: YAML step
// files or command-line tokens are turned into steps and executed in order
// until the script ends or the session crashes.
package workflow

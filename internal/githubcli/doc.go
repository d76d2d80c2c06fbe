// Package githubcli files GitHub issues through the gh command line tool.
package githubcli

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/replayrig/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
	genericFailureExitCode    = 1
)

// exitCoder is implemented by errors that choose their own process status.
type exitCoder interface {
	ExitCode() int
}

// main executes the replayrig command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(exitCodeFor(executionError))
}

func exitCodeFor(executionError error) int {
	var coder exitCoder
	if errors.As(executionError, &coder) {
		return coder.ExitCode()
	}
	return genericFailureExitCode
}

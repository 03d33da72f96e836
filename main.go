package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fleetops/fleet/cmd/cli"
	"github.com/fleetops/fleet/internal/report"
)

const (
	exitErrorTemplateConstant = "%v\n"
	defaultFailureExitCode    = 1
)

// main executes the fleet command-line application and propagates dispatch exit codes.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	var exitCodeError report.ExitCodeError
	if errors.As(executionError, &exitCodeError) {
		if message := exitCodeError.Message(); len(message) > 0 {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, message)
		}
		os.Exit(exitCodeError.Code())
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(defaultFailureExitCode)
}

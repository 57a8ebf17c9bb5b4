package execshell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"
)

const environmentAssignmentSeparatorConstant = "="

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	environmentProvider func() []string
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{environmentProvider: os.Environ}
}

// Run executes the supplied command and waits for it to exit.
//
// A non-zero exit is reported through ExecutionResult.ExitCode rather than as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), slices.Clone(command.Details.Arguments)...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = runner.mergeEnvironment(command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer
	if command.Details.ProgressOutput != nil {
		executable.Stderr = io.MultiWriter(&standardErrorBuffer, command.Details.ProgressOutput)
	}

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}, nil
}

// mergeEnvironment appends overrides after the inherited environment; exec keeps the last duplicate.
func (runner *OSCommandRunner) mergeEnvironment(overrides map[string]string) []string {
	inheritedEnvironment := os.Environ
	if runner.environmentProvider != nil {
		inheritedEnvironment = runner.environmentProvider
	}

	mergedEnvironment := slices.Clone(inheritedEnvironment())
	overrideKeys := make([]string, 0, len(overrides))
	for environmentKey := range overrides {
		overrideKeys = append(overrideKeys, environmentKey)
	}
	slices.Sort(overrideKeys)

	for _, environmentKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, environmentKey+environmentAssignmentSeparatorConstant+overrides[environmentKey])
	}
	return mergedEnvironment
}

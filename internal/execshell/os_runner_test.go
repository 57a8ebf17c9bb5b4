package execshell

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOSCommandRunnerMergeEnvironmentAppendsSortedOverrides(t *testing.T) {
	runner := &OSCommandRunner{environmentProvider: func() []string {
		return []string{"PATH=/usr/bin", "https_proxy=http://inherited:1"}
	}}

	merged := runner.mergeEnvironment(map[string]string{
		"https_proxy":         "http://127.0.0.1:7890",
		"GIT_TERMINAL_PROMPT": "0",
	})

	require.Equal(t, []string{
		"PATH=/usr/bin",
		"https_proxy=http://inherited:1",
		"GIT_TERMINAL_PROMPT=0",
		"https_proxy=http://127.0.0.1:7890",
	}, merged)
}

func TestOSCommandRunnerReportsExitCode(t *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		t.Skip("git executable not available")
	}

	runner := NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"rev-parse", "--is-inside-work-tree"}, WorkingDirectory: t.TempDir()},
	})

	require.NoError(t, runError)
	require.NotZero(t, result.ExitCode)
	require.NotEmpty(t, result.StandardError)
}

func TestOSCommandRunnerMirrorsStandardErrorToProgressOutput(t *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		t.Skip("git executable not available")
	}

	progressOutput := &bytes.Buffer{}
	runner := NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"rev-parse", "--is-inside-work-tree"},
			WorkingDirectory: t.TempDir(),
			ProgressOutput:   progressOutput,
		},
	})

	require.NoError(t, runError)
	require.NotEmpty(t, result.StandardError)
	require.Equal(t, result.StandardError, progressOutput.String())
}

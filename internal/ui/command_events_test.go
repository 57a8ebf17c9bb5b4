package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/pinfetch/internal/execshell"
	"github.com/temirov/pinfetch/internal/ui"
)

func TestConsoleCommandEventLoggerLevels(t *testing.T) {
	checkoutCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"checkout", "v1.2.0"},
			WorkingDirectory: "/workspace/packages/foo",
		},
	}

	testCases := []struct {
		name            string
		emit            func(eventLogger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name:            "started",
			emit:            func(eventLogger *ui.ConsoleCommandEventLogger) { eventLogger.CommandStarted(checkoutCommand) },
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Checking out v1.2.0 in /workspace/packages/foo",
		},
		{
			name: "completed",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(checkoutCommand, execshell.ExecutionResult{})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Checked out v1.2.0 in /workspace/packages/foo",
		},
		{
			name: "failed_exit_code",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(checkoutCommand, execshell.ExecutionResult{ExitCode: 1})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "Failed to check out v1.2.0 in /workspace/packages/foo (exit code 1)",
		},
		{
			name: "execution_failure",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(checkoutCommand, errors.New("signal: killed"))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "Unable to check out v1.2.0 in /workspace/packages/foo: signal: killed",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.emit(eventLogger)

			entries := observedLogs.All()
			require.Len(t, entries, 1)
			require.Equal(t, testCase.expectedLevel, entries[0].Level)
			require.Equal(t, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestConsoleCommandEventLoggerNilReceiverIsSafe(t *testing.T) {
	var eventLogger *ui.ConsoleCommandEventLogger
	require.NotPanics(t, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandGit})
	})
}

package fetch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/pinfetch/internal/execshell"
	"github.com/temirov/pinfetch/internal/fetch"
)

type deadlineCapturingExecutor struct {
	deadline    time.Time
	hasDeadline bool
}

func (executor *deadlineCapturingExecutor) ExecuteGit(executionContext context.Context, _ execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.deadline, executor.hasDeadline = executionContext.Deadline()
	return execshell.ExecutionResult{}, nil
}

func TestNewTimeoutGitExecutorBoundsEachCommand(testInstance *testing.T) {
	delegate := &deadlineCapturingExecutor{}
	bounded := fetch.NewTimeoutGitExecutor(delegate, time.Minute)

	startedAt := time.Now()
	_, executionError := bounded.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"fetch", "--tags"}})
	require.NoError(testInstance, executionError)
	require.True(testInstance, delegate.hasDeadline)
	require.WithinDuration(testInstance, startedAt.Add(time.Minute), delegate.deadline, 5*time.Second)
}

func TestNewTimeoutGitExecutorDisabledWithoutTimeout(testInstance *testing.T) {
	delegate := &deadlineCapturingExecutor{}
	require.Same(testInstance, delegate, fetch.NewTimeoutGitExecutor(delegate, 0))

	_, executionError := fetch.NewTimeoutGitExecutor(delegate, -time.Second).ExecuteGit(context.Background(), execshell.CommandDetails{})
	require.NoError(testInstance, executionError)
	require.False(testInstance, delegate.hasDeadline)
}

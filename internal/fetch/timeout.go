package fetch

import (
	"context"
	"time"

	"github.com/temirov/pinfetch/internal/execshell"
)

// timeoutGitExecutor bounds every git invocation by a fixed duration.
type timeoutGitExecutor struct {
	delegate GitExecutor
	timeout  time.Duration
}

// NewTimeoutGitExecutor wraps delegate so each command is cancelled after timeout.
// A non-positive timeout returns delegate unchanged.
func NewTimeoutGitExecutor(delegate GitExecutor, timeout time.Duration) GitExecutor {
	if delegate == nil || timeout <= 0 {
		return delegate
	}
	return timeoutGitExecutor{delegate: delegate, timeout: timeout}
}

func (executor timeoutGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	boundedContext, cancel := context.WithTimeout(executionContext, executor.timeout)
	defer cancel()
	return executor.delegate.ExecuteGit(boundedContext, details)
}

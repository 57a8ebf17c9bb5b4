package execshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	commandGitStringConstant                  = "git"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedTemplateConstant             = "%s exited with code %d"
	commandFailedWithErrorTemplateConstant    = "%s exited with code %d: %s"
	commandExecutionFailedTemplateConstant    = "%s could not be executed: %v"
	logFieldCommandNameConstant               = "command_name"
	logFieldCommandArgumentsConstant          = "command_arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
)

// CommandName identifies an executable invoked by the shell executor.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(commandGitStringConstant)

// CommandDetails describes the arguments and process attributes of an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
	// ProgressOutput, when set, receives standard error while the process runs.
	ProgressOutput       io.Writer
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner starts processes and waits for them to finish.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports a process that exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	label := commandLabel(failure.Command)
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, label, failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithErrorTemplateConstant, label, failure.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a process that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, commandLabel(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external commands and reports their lifecycle to an observer.
type ShellExecutor struct {
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs an executor that logs command events through the provided logger.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	return NewShellExecutorWithObserver(runner, NewStructuredCommandEventLogger(logger))
}

// NewShellExecutorWithObserver constructs an executor that reports command events to observer.
func NewShellExecutorWithObserver(runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{runner: runner, observer: observer}, nil
}

// Execute runs the command, returning an error for non-zero exits and start failures.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	return executionResult, nil
}

// ExecuteGit runs git with the supplied details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// StructuredCommandEventLogger records command lifecycle events as structured log entries.
type StructuredCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

// NewStructuredCommandEventLogger constructs an observer writing to logger.
func NewStructuredCommandEventLogger(logger *zap.Logger) *StructuredCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuredCommandEventLogger{logger: logger}
}

// CommandStarted implements CommandEventObserver.
func (eventLogger *StructuredCommandEventLogger) CommandStarted(command ShellCommand) {
	eventLogger.logger.Debug(eventLogger.formatter.BuildStartedMessage(command), commandFields(command)...)
}

// CommandCompleted implements CommandEventObserver.
func (eventLogger *StructuredCommandEventLogger) CommandCompleted(command ShellCommand, result ExecutionResult) {
	fields := append(commandFields(command), zap.Int(logFieldExitCodeConstant, result.ExitCode))
	if result.ExitCode == 0 {
		eventLogger.logger.Debug(eventLogger.formatter.BuildSuccessMessage(command), fields...)
		return
	}
	fields = append(fields, zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)))
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result), fields...)
}

// CommandExecutionFailed implements CommandEventObserver.
//
// Start failures are logged at warn level: the caller owns the decision of
// whether the package fails, and error level would attach a stack trace.
func (eventLogger *StructuredCommandEventLogger) CommandExecutionFailed(command ShellCommand, failure error) {
	fields := append(commandFields(command), zap.Error(failure))
	eventLogger.logger.Warn(eventLogger.formatter.BuildExecutionFailureMessage(command, failure), fields...)
}

func commandFields(command ShellCommand) []zap.Field {
	return []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}
}

func commandLabel(command ShellCommand) string {
	if len(command.Details.Arguments) == 0 {
		return string(command.Name)
	}
	return string(command.Name) + " " + strings.Join(command.Details.Arguments, " ")
}

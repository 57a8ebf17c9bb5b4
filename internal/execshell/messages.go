package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitCloneSubcommandNameConstant    = "clone"
	gitFetchSubcommandNameConstant    = "fetch"
	gitFetchAllFlagConstant           = "--all"
	gitFetchTagsFlagConstant          = "--tags"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitDescribeSubcommandNameConstant = "describe"
	gitRevParseSubcommandNameConstant = "rev-parse"
)

const (
	gitCloneStartTemplateConstant                       = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant                     = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                     = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant            = "Unable to clone %s into %s: %s"
	gitFetchWithoutRefsStartTemplateConstant            = "Fetching from %s in %s"
	gitFetchWithoutRefsSuccessTemplateConstant          = "Fetched from %s in %s"
	gitFetchWithoutRefsFailureTemplateConstant          = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchWithoutRefsExecutionFailureTemplateConstant = "Unable to fetch from %s in %s: %s"
	gitFetchTagsStartTemplateConstant                   = "Fetching tags in %s"
	gitFetchTagsSuccessTemplateConstant                 = "Fetched tags in %s"
	gitFetchTagsFailureTemplateConstant                 = "Failed to fetch tags in %s (exit code %d%s)"
	gitFetchTagsExecutionFailureTemplateConstant        = "Unable to fetch tags in %s: %s"
	gitFetchAllRemotesLabelConstant                     = "all remotes"
	gitCheckoutStartTemplateConstant                    = "Checking out %s in %s"
	gitCheckoutSuccessTemplateConstant                  = "Checked out %s in %s"
	gitCheckoutFailureTemplateConstant                  = "Failed to check out %s in %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant         = "Unable to check out %s in %s: %s"
	gitDescribeStartTemplateConstant                    = "Looking up exact tag for HEAD in %s"
	gitDescribeSuccessTemplateConstant                  = "Found exact tag for HEAD in %s"
	gitDescribeFailureTemplateConstant                  = "No exact tag for HEAD in %s (exit code %d%s)"
	gitDescribeExecutionFailureTemplateConstant         = "Unable to look up exact tag in %s: %s"
	gitRevisionStartTemplateConstant                    = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant                  = "Resolved %s in %s"
	gitRevisionFailureTemplateConstant                  = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant         = "Unable to resolve %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeGitFetchMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitDescribeSubcommandNameConstant:
		return formatter.describeGitDescribeMessage(command, result, failure, stage)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.positionalArguments(command.Details.Arguments[1:])
	source := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	target := formatter.argumentAtIndex(positionalArguments, 1)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(target) > 0 && len(trimmedWorkingDirectory) > 0 && !filepath.IsAbs(target) {
		target = filepath.Join(trimmedWorkingDirectory, target)
	}
	target = formatter.ensureValue(target)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, source, target)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, source, target)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, source, target, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, source, target, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	arguments := command.Details.Arguments[1:]

	if containsArgument(arguments, gitFetchTagsFlagConstant) {
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitFetchTagsStartTemplateConstant, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitFetchTagsSuccessTemplateConstant, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitFetchTagsFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitFetchTagsExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
		}
	}

	remoteName := gitFetchAllRemotesLabelConstant
	if !containsArgument(arguments, gitFetchAllFlagConstant) {
		if positionalArguments := formatter.positionalArguments(arguments); len(positionalArguments) > 0 {
			remoteName = positionalArguments[0]
		}
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitFetchWithoutRefsStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitFetchWithoutRefsSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitFetchWithoutRefsFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitFetchWithoutRefsExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	reference := formatter.ensureValue(formatter.argumentAtIndex(formatter.positionalArguments(command.Details.Arguments[1:]), 0))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, reference, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitDescribeMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitDescribeStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitDescribeSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitDescribeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitDescribeExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	revision := formatter.ensureValue(formatter.argumentAtIndex(formatter.positionalArguments(command.Details.Arguments[1:]), 0))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, revision, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, revision, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, revision, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, revision, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

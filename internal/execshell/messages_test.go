package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandMessageFormatterGitMessages(t *testing.T) {
	formatter := CommandMessageFormatter{}
	testCases := []struct {
		name     string
		command  ShellCommand
		build    func(ShellCommand) string
		expected string
	}{
		{
			name: "clone_start",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"clone", "--progress", "https://example.com/org/foo.git", "foo"},
				WorkingDirectory: "/workspace/packages",
			}},
			build:    formatter.BuildStartedMessage,
			expected: "Cloning https://example.com/org/foo.git into /workspace/packages/foo",
		},
		{
			name: "fetch_all_start",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"fetch", "--all", "--progress"},
				WorkingDirectory: "/workspace/packages/foo",
			}},
			build:    formatter.BuildStartedMessage,
			expected: "Fetching from all remotes in /workspace/packages/foo",
		},
		{
			name: "fetch_remote_success",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"fetch", "--prune", "origin"},
				WorkingDirectory: "/workspace/packages/foo",
			}},
			build:    formatter.BuildSuccessMessage,
			expected: "Fetched from origin in /workspace/packages/foo",
		},
		{
			name: "fetch_tags_start",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"fetch", "--tags"},
				WorkingDirectory: "/workspace/packages/foo",
			}},
			build:    formatter.BuildStartedMessage,
			expected: "Fetching tags in /workspace/packages/foo",
		},
		{
			name: "checkout_success",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"checkout", "tags/v1.2.0"},
				WorkingDirectory: "/workspace/packages/foo",
			}},
			build:    formatter.BuildSuccessMessage,
			expected: "Checked out tags/v1.2.0 in /workspace/packages/foo",
		},
		{
			name: "describe_start_without_directory",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments: []string{"describe", "--tags", "--exact-match"},
			}},
			build:    formatter.BuildStartedMessage,
			expected: "Looking up exact tag for HEAD in current directory",
		},
		{
			name: "rev_parse_success",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"rev-parse", "HEAD"},
				WorkingDirectory: "/workspace/packages/foo",
			}},
			build:    formatter.BuildSuccessMessage,
			expected: "Resolved HEAD in /workspace/packages/foo",
		},
		{
			name: "generic_start",
			command: ShellCommand{Name: CommandGit, Details: CommandDetails{
				Arguments:        []string{"status", "--porcelain"},
				WorkingDirectory: "/workspace/packages/foo",
			}},
			build:    formatter.BuildStartedMessage,
			expected: "Running git status --porcelain (in /workspace/packages/foo)",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, testCase.build(testCase.command))
		})
	}
}

func TestBuildFailureMessageForCheckoutIncludesStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"checkout", "1.2.0"},
			WorkingDirectory: "/workspace/packages/foo",
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "error: pathspec '1.2.0' did not match any file(s) known to git\n"})

	require.Equal(t, "Failed to check out 1.2.0 in /workspace/packages/foo (exit code 1: error: pathspec '1.2.0' did not match any file(s) known to git)", message)
}

func TestBuildExecutionFailureMessageForClone(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments: []string{"clone", "--progress", "https://example.com/org/foo.git", "foo"},
		},
	}

	message := formatter.BuildExecutionFailureMessage(command, errors.New("executable file not found"))

	require.Equal(t, "Unable to clone https://example.com/org/foo.git into foo: executable file not found", message)
}

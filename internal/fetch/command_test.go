package fetch_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/pinfetch/internal/fetch"
)

const (
	testManifestTemplateConstant = `{"packages":[{"url":%q,"versions":[{"version":%q}]}]}`
	testGitIdentityNameConstant  = "pinfetch tests"
	testGitIdentityEmailConstant = "tests@example.com"
)

func writeTestManifest(testInstance *testing.T, directory string, url string, version string) string {
	testInstance.Helper()
	manifestPath := filepath.Join(directory, "collection.json")
	content := fmt.Sprintf(testManifestTemplateConstant, url, version)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(content), 0o600))
	return manifestPath
}

func executeCommand(testInstance *testing.T, command *cobra.Command, arguments ...string) (string, error) {
	testInstance.Helper()
	output := &bytes.Buffer{}
	command.SetOut(output)
	command.SetErr(output)
	command.SetArgs(arguments)
	executionError := command.Execute()
	return output.String(), executionError
}

func TestFetchCommandAppliesFlagsOverConfiguration(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	manifestPath := writeTestManifest(testInstance, workspace, testFooURLConstant, "1.0.0")
	flagOutput := filepath.Join(workspace, "vendor")

	executor := newRecordingGitExecutor("v1.0.0")
	locker := &stubWorkspaceLocker{}
	builder := fetch.CommandBuilder{
		ConfigurationProvider: func() fetch.Configuration {
			return fetch.Configuration{
				Manifest: filepath.Join(workspace, "unused.json"),
				Output:   filepath.Join(workspace, "configured"),
				Proxy:    fetch.ProxyConfiguration{HTTPSProxy: "http://configured:1"},
			}
		},
		GitExecutor: executor,
		Locker:      locker,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command,
		"--manifest", manifestPath,
		"--output", flagOutput,
		"--https-proxy", "http://127.0.0.1:7890",
		"--all-proxy", "socks5://127.0.0.1:7890",
	)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Progress: [1/1] foo")
	require.Contains(testInstance, output, "Packages downloaded to: "+flagOutput)

	require.Equal(testInstance, []string{flagOutput}, locker.acquired)
	cloneCommands := executor.commandsNamed(gitCloneCommand)
	require.Len(testInstance, cloneCommands, 1)
	require.Equal(testInstance, flagOutput, cloneCommands[0].WorkingDirectory)
	require.Equal(testInstance, "http://127.0.0.1:7890", cloneCommands[0].EnvironmentVariables["https_proxy"])
	require.Equal(testInstance, "socks5://127.0.0.1:7890", cloneCommands[0].EnvironmentVariables["all_proxy"])
	require.NoDirExists(testInstance, filepath.Join(workspace, "configured"))
}

func TestFetchCommandDryRunFromConfiguration(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	manifestPath := writeTestManifest(testInstance, workspace, testFooURLConstant, "1.0.0")
	outputDirectory := filepath.Join(workspace, "packages")

	executor := newRecordingGitExecutor()
	builder := fetch.CommandBuilder{
		ConfigurationProvider: func() fetch.Configuration {
			return fetch.Configuration{Manifest: manifestPath, Output: outputDirectory, DryRun: true}
		},
		GitExecutor: executor,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "Would clone "+testFooURLConstant)
	require.Empty(testInstance, executor.recorded)
	require.NoDirExists(testInstance, outputDirectory)

	command, buildError = builder.Build()
	require.NoError(testInstance, buildError)
	_, executionError = executeCommand(testInstance, command, "--dry-run=false", "--command-timeout", "30s")
	require.Error(testInstance, executionError)
	require.DirExists(testInstance, outputDirectory)
	require.NotEmpty(testInstance, executor.recorded)
}

func TestFetchCommandMirrorsGitProgressForConsoleLogging(testInstance *testing.T) {
	testCases := []struct {
		name            string
		humanReadable   bool
		expectMirroring bool
	}{
		{name: "console", humanReadable: true, expectMirroring: true},
		{name: "structured", humanReadable: false, expectMirroring: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			workspace := testInstance.TempDir()
			manifestPath := writeTestManifest(testInstance, workspace, testFooURLConstant, "1.0.0")

			executor := newRecordingGitExecutor("1.0.0")
			builder := fetch.CommandBuilder{
				ConfigurationProvider: func() fetch.Configuration {
					return fetch.Configuration{Manifest: manifestPath, Output: filepath.Join(workspace, "packages")}
				},
				HumanReadableLoggingProvider: func() bool { return testCase.humanReadable },
				GitExecutor:                  executor,
				Locker:                       &stubWorkspaceLocker{},
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			_, executionError := executeCommand(testInstance, command)
			require.NoError(testInstance, executionError)

			cloneCommands := executor.commandsNamed(gitCloneCommand)
			require.Len(testInstance, cloneCommands, 1)
			if testCase.expectMirroring {
				require.Same(testInstance, command.ErrOrStderr(), cloneCommands[0].ProgressOutput)
			} else {
				require.Nil(testInstance, cloneCommands[0].ProgressOutput)
			}
		})
	}
}

func TestFetchCommandReportsFailures(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	outputDirectory := filepath.Join(workspace, "packages")

	builder := fetch.CommandBuilder{
		ConfigurationProvider: func() fetch.Configuration {
			return fetch.Configuration{Output: outputDirectory}
		},
		GitExecutor: newRecordingGitExecutor(),
		Locker:      &stubWorkspaceLocker{},
	}

	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{name: "positional_arguments", arguments: []string{"extra"}, expectedError: "does not accept positional arguments"},
		{name: "missing_manifest", arguments: []string{"--manifest", filepath.Join(workspace, "absent.json")}, expectedError: "manifest not found"},
		{name: "checkout_exhausted", arguments: []string{"--manifest", writeTestManifest(testInstance, workspace, testFooURLConstant, "9.9.9")}, expectedError: "1 of 1 packages failed"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			_, executionError := executeCommand(testInstance, command, testCase.arguments...)
			require.ErrorContains(testInstance, executionError, testCase.expectedError)
		})
	}
}

func TestFetchCommandLogsRunBoundaries(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	manifestPath := writeTestManifest(testInstance, workspace, testFooURLConstant, "1.0.0")

	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	builder := fetch.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return zap.New(observedCore)
		},
		ConfigurationProvider: func() fetch.Configuration {
			return fetch.Configuration{Manifest: manifestPath, Output: filepath.Join(workspace, "packages"), CommandTimeout: time.Minute}
		},
		GitExecutor: newRecordingGitExecutor("1.0.0"),
		Locker:      &stubWorkspaceLocker{},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command)
	require.NoError(testInstance, executionError)

	started := observedLogs.FilterMessage("fetch run started").All()
	require.Len(testInstance, started, 1)
	require.Equal(testInstance, time.Minute, started[0].ContextMap()["command_timeout"])
	finished := observedLogs.FilterMessage("fetch run finished").All()
	require.Len(testInstance, finished, 1)
	require.Equal(testInstance, int64(1), finished[0].ContextMap()["successful"])
}

func TestListCommandRendersManifest(testInstance *testing.T) {
	workspace := testInstance.TempDir()
	manifestPath := writeTestManifest(testInstance, workspace, testFooURLConstant, "1.2.0")
	outputDirectory := filepath.Join(workspace, "packages")
	require.NoError(testInstance, os.MkdirAll(filepath.Join(outputDirectory, "foo"), 0o755))

	builder := fetch.ListCommandBuilder{
		ConfigurationProvider: func() fetch.Configuration {
			return fetch.Configuration{Output: outputDirectory}
		},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, "--manifest", manifestPath)
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "foo")
	require.Contains(testInstance, output, "1.2.0")
	require.Contains(testInstance, output, "present")
}

func TestFetchCommandPinsRealRepository(testInstance *testing.T) {
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	workspace := testInstance.TempDir()
	sourceRepository := filepath.Join(workspace, "sources", "widget")
	require.NoError(testInstance, os.MkdirAll(sourceRepository, 0o755))

	runGit(testInstance, sourceRepository, "init", "--quiet")
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourceRepository, "VERSION"), []byte("1.2.0\n"), 0o600))
	runGit(testInstance, sourceRepository, "add", "VERSION")
	runGit(testInstance, sourceRepository, "commit", "--quiet", "-m", "release 1.2.0")
	runGit(testInstance, sourceRepository, "tag", "v1.2.0")
	require.NoError(testInstance, os.WriteFile(filepath.Join(sourceRepository, "VERSION"), []byte("1.3.0-dev\n"), 0o600))
	runGit(testInstance, sourceRepository, "commit", "--quiet", "-am", "start 1.3.0")

	bareRepository := filepath.Join(workspace, "sources", "widget.git")
	runGit(testInstance, workspace, "clone", "--quiet", "--bare", sourceRepository, bareRepository)

	manifestPath := writeTestManifest(testInstance, workspace, bareRepository, "1.2.0")
	outputDirectory := filepath.Join(workspace, "packages")

	builder := fetch.CommandBuilder{}
	runFetch := func() string {
		command, buildError := builder.Build()
		require.NoError(testInstance, buildError)
		output, executionError := executeCommand(testInstance, command, "--manifest", manifestPath, "--output", outputDirectory)
		require.NoError(testInstance, executionError)
		return output
	}

	firstOutput := runFetch()
	require.Contains(testInstance, firstOutput, "Checked out tag v1.2.0 (via v1.2.0)")

	versionContent, readError := os.ReadFile(filepath.Join(outputDirectory, "widget", "VERSION"))
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "1.2.0\n", string(versionContent))

	secondOutput := runFetch()
	require.Contains(testInstance, secondOutput, "Working copy widget exists, updating")
	require.Contains(testInstance, secondOutput, "Successful: 1")
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) {
	testInstance.Helper()
	identityArguments := []string{"-c", "user.name=" + testGitIdentityNameConstant, "-c", "user.email=" + testGitIdentityEmailConstant, "-c", "commit.gpgsign=false", "-c", "tag.gpgsign=false"}
	command := exec.Command("git", append(identityArguments, arguments...)...)
	command.Dir = workingDirectory
	combinedOutput, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, strings.TrimSpace(string(combinedOutput)))
}

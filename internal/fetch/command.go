package fetch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/pinfetch/internal/execshell"
	"github.com/temirov/pinfetch/internal/filesystem"
	"github.com/temirov/pinfetch/internal/manifest"
	"github.com/temirov/pinfetch/internal/ui"
	"github.com/temirov/pinfetch/internal/versions"
)

const (
	fetchCommandUseConstant               = "fetch"
	fetchCommandShortDescriptionConstant  = "Clone or update every manifest package and check out its pinned version"
	fetchCommandLongDescriptionConstant   = "fetch reads the package manifest, clones missing repositories, refreshes existing ones and checks out the pinned version of each, trying the label verbatim, as tags/<label>, as v<label> and as tags/v<label>."
	listCommandUseConstant                = "list"
	listCommandShortDescriptionConstant   = "List manifest packages and the state of their working copies"
	listCommandLongDescriptionConstant    = "list prints every manifest package with its pinned version and whether a working copy exists, without running git."
	fetchCommandErrorTemplateConstant     = "fetch failed: %w"
	listCommandErrorTemplateConstant      = "list failed: %w"
	unexpectedArgumentsMessageConstant    = "command does not accept positional arguments"
	manifestFlagNameConstant              = "manifest"
	manifestFlagDescriptionConstant       = "Path to the package manifest (JSON, JSON with comments or YAML)"
	outputFlagNameConstant                = "output"
	outputFlagDescriptionConstant         = "Directory receiving the working copies"
	dryRunFlagNameConstant                = "dry-run"
	dryRunFlagDescriptionConstant         = "Report planned clones and updates without running git"
	commandTimeoutFlagNameConstant        = "command-timeout"
	commandTimeoutFlagDescriptionConstant = "Maximum duration of a single git command (0 disables the limit)"
	httpsProxyFlagNameConstant            = "https-proxy"
	httpsProxyFlagDescriptionConstant     = "Proxy exported to git as https_proxy"
	httpProxyFlagNameConstant             = "http-proxy"
	httpProxyFlagDescriptionConstant      = "Proxy exported to git as http_proxy"
	allProxyFlagNameConstant              = "all-proxy"
	allProxyFlagDescriptionConstant       = "Proxy exported to git as all_proxy"
	listingOutputTemplateConstant         = "%s\n"
	runStartedMessageConstant             = "fetch run started"
	runFinishedMessageConstant            = "fetch run finished"
	logFieldManifestConstant              = "manifest"
	logFieldDryRunConstant                = "dry_run"
	logFieldSuccessfulConstant            = "successful"
	logFieldFailedConstant                = "failed"
	logFieldTimeoutConstant               = "command_timeout"
	logFieldStrategiesConstant            = "strategies"
	manifestLoadedMessageConstant         = "manifest loaded"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current fetch configuration.
type ConfigurationProvider func() Configuration

// HumanReadableLoggingProvider reports whether console logging is active.
type HumanReadableLoggingProvider func() bool

// CommandBuilder assembles the fetch command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	HumanReadableLoggingProvider HumanReadableLoggingProvider
	GitExecutor                  GitExecutor
	FileSystem                   FileSystem
	Locker                       WorkspaceLocker
}

// Build constructs the fetch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   fetchCommandUseConstant,
		Short: fetchCommandShortDescriptionConstant,
		Long:  fetchCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	registerSourceFlags(command)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().Duration(commandTimeoutFlagNameConstant, 0, commandTimeoutFlagDescriptionConstant)
	command.Flags().String(httpsProxyFlagNameConstant, "", httpsProxyFlagDescriptionConstant)
	command.Flags().String(httpProxyFlagNameConstant, "", httpProxyFlagDescriptionConstant)
	command.Flags().String(allProxyFlagNameConstant, "", allProxyFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration, configurationError := builder.parseConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	collection, loadError := manifest.Load(configuration.Manifest)
	if loadError != nil {
		return fmt.Errorf(fetchCommandErrorTemplateConstant, loadError)
	}

	logger := resolveLogger(builder.LoggerProvider)
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}
	gitExecutor = NewTimeoutGitExecutor(gitExecutor, configuration.CommandTimeout)

	environment := configuration.GitEnvironment()
	resolver, resolverError := versions.NewResolver(versions.ResolverDependencies{
		GitExecutor: gitExecutor,
		Logger:      logger,
		Environment: environment,
	})
	if resolverError != nil {
		return resolverError
	}

	service, serviceError := NewService(ServiceDependencies{
		GitExecutor: gitExecutor,
		Resolver:    resolver,
		FileSystem:  builder.FileSystem,
		Locker:      builder.Locker,
		Reporter:    ui.NewWriterReporter(command.OutOrStdout()),
		Logger:      logger,
	})
	if serviceError != nil {
		return serviceError
	}

	logger.Info(
		runStartedMessageConstant,
		zap.String(logFieldManifestConstant, configuration.Manifest),
		zap.String(logFieldOutputDirectoryConstant, configuration.Output),
		zap.Bool(logFieldDryRunConstant, configuration.DryRun),
		zap.Duration(logFieldTimeoutConstant, configuration.CommandTimeout),
		zap.Strings(logFieldStrategiesConstant, resolver.Strategies()),
	)

	runOptions := Options{
		OutputDirectory: configuration.Output,
		DryRun:          configuration.DryRun,
		Environment:     environment,
	}
	if builder.humanReadableLogging() {
		runOptions.ProgressOutput = command.ErrOrStderr()
	}
	summary, runError := service.Run(command.Context(), collection, runOptions)

	logger.Info(
		runFinishedMessageConstant,
		zap.Int(logFieldTotalConstant, summary.Total),
		zap.Int(logFieldSuccessfulConstant, summary.Successful),
		zap.Int(logFieldFailedConstant, summary.Failed),
	)

	if runError != nil {
		return fmt.Errorf(fetchCommandErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command) (Configuration, error) {
	configuration := resolveConfiguration(builder.ConfigurationProvider)

	if sourceError := applySourceFlags(command, &configuration); sourceError != nil {
		return Configuration{}, sourceError
	}

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunValue, flagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if flagError != nil {
			return Configuration{}, flagError
		}
		configuration.DryRun = dryRunValue
	}

	if command.Flags().Changed(commandTimeoutFlagNameConstant) {
		timeoutValue, flagError := command.Flags().GetDuration(commandTimeoutFlagNameConstant)
		if flagError != nil {
			return Configuration{}, flagError
		}
		configuration.CommandTimeout = timeoutValue
	}

	proxyFlags := []struct {
		flagName string
		target   *string
	}{
		{flagName: httpsProxyFlagNameConstant, target: &configuration.Proxy.HTTPSProxy},
		{flagName: httpProxyFlagNameConstant, target: &configuration.Proxy.HTTPProxy},
		{flagName: allProxyFlagNameConstant, target: &configuration.Proxy.AllProxy},
	}
	for _, proxyFlag := range proxyFlags {
		if !command.Flags().Changed(proxyFlag.flagName) {
			continue
		}
		flagValue, flagError := command.Flags().GetString(proxyFlag.flagName)
		if flagError != nil {
			return Configuration{}, flagError
		}
		*proxyFlag.target = flagValue
	}

	return configuration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	var (
		shellExecutor *execshell.ShellExecutor
		creationError error
	)
	if builder.humanReadableLogging() {
		shellExecutor, creationError = execshell.NewShellExecutorWithObserver(commandRunner, ui.NewConsoleCommandEventLogger(logger))
	} else {
		shellExecutor, creationError = execshell.NewShellExecutor(logger, commandRunner)
	}
	if creationError != nil {
		return nil, creationError
	}

	return shellExecutor, nil
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	return builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
}

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	FileSystem            FileSystem
}

// Build constructs the list command.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	registerSourceFlags(command)

	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := resolveConfiguration(builder.ConfigurationProvider)
	if sourceError := applySourceFlags(command, &configuration); sourceError != nil {
		return sourceError
	}
	configuration = configuration.Sanitize()

	collection, loadError := manifest.Load(configuration.Manifest)
	if loadError != nil {
		return fmt.Errorf(listCommandErrorTemplateConstant, loadError)
	}

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}

	resolveLogger(builder.LoggerProvider).Debug(
		manifestLoadedMessageConstant,
		zap.String(logFieldManifestConstant, configuration.Manifest),
		zap.Int(logFieldTotalConstant, len(collection.Packages)),
	)

	output := command.OutOrStdout()
	entries := BuildListing(collection, configuration.Output, fileSystem)
	_, writeError := fmt.Fprintf(output, listingOutputTemplateConstant, RenderListing(entries, ui.ShouldColorize(output)))
	return writeError
}

func registerSourceFlags(command *cobra.Command) {
	command.Flags().String(manifestFlagNameConstant, "", manifestFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, "", outputFlagDescriptionConstant)
}

func applySourceFlags(command *cobra.Command, configuration *Configuration) error {
	manifestFlagValue, manifestFlagError := command.Flags().GetString(manifestFlagNameConstant)
	if manifestFlagError != nil {
		return manifestFlagError
	}
	configuration.Manifest = selectStringValue(manifestFlagValue, configuration.Manifest)

	outputFlagValue, outputFlagError := command.Flags().GetString(outputFlagNameConstant)
	if outputFlagError != nil {
		return outputFlagError
	}
	configuration.Output = selectStringValue(outputFlagValue, configuration.Output)
	return nil
}

func resolveConfiguration(provider ConfigurationProvider) Configuration {
	if provider == nil {
		return DefaultConfiguration()
	}
	return provider()
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}
	return strings.TrimSpace(configurationValue)
}

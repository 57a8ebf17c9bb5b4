package fetch

import (
	"strings"
	"time"

	"github.com/temirov/pinfetch/internal/manifest"
	pathutils "github.com/temirov/pinfetch/internal/utils/path"
)

var fetchConfigurationHomeDirectoryExpander = pathutils.NewHomeExpander()

const (
	// DefaultOutputDirectory receives working copies when none is configured.
	DefaultOutputDirectory = "packages"

	configurationKeySeparatorConstant            = "."
	manifestConfigurationKeyConstant             = "manifest"
	outputConfigurationKeyConstant               = "output"
	dryRunConfigurationKeyConstant               = "dry_run"
	commandTimeoutConfigurationKeyConstant       = "command_timeout"
	httpsProxyConfigurationKeyConstant           = "proxy.https_proxy"
	httpProxyConfigurationKeyConstant            = "proxy.http_proxy"
	allProxyConfigurationKeyConstant             = "proxy.all_proxy"
	defaultCommandTimeoutValueConstant           = "0s"
	httpsProxyEnvironmentNameConstant            = "https_proxy"
	httpProxyEnvironmentNameConstant             = "http_proxy"
	allProxyEnvironmentNameConstant              = "all_proxy"
	gitTerminalPromptEnvironmentNameConstant     = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisabledConstant = "0"
)

// Configuration stores settings for the fetch and list commands.
type Configuration struct {
	Manifest       string             `mapstructure:"manifest"`
	Output         string             `mapstructure:"output"`
	DryRun         bool               `mapstructure:"dry_run"`
	CommandTimeout time.Duration      `mapstructure:"command_timeout"`
	Proxy          ProxyConfiguration `mapstructure:"proxy"`
}

// ProxyConfiguration lists proxies handed to git child processes.
type ProxyConfiguration struct {
	HTTPSProxy string `mapstructure:"https_proxy"`
	HTTPProxy  string `mapstructure:"http_proxy"`
	AllProxy   string `mapstructure:"all_proxy"`
}

// DefaultConfiguration supplies baseline values for fetch configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		Manifest: manifest.DefaultPath,
		Output:   DefaultOutputDirectory,
	}
}

// DefaultConfigurationValues returns viper defaults keyed under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefixedKey(prefix, manifestConfigurationKeyConstant):       defaults.Manifest,
		prefixedKey(prefix, outputConfigurationKeyConstant):         defaults.Output,
		prefixedKey(prefix, dryRunConfigurationKeyConstant):         defaults.DryRun,
		prefixedKey(prefix, commandTimeoutConfigurationKeyConstant): defaultCommandTimeoutValueConstant,
		prefixedKey(prefix, httpsProxyConfigurationKeyConstant):     "",
		prefixedKey(prefix, httpProxyConfigurationKeyConstant):      "",
		prefixedKey(prefix, allProxyConfigurationKeyConstant):       "",
	}
}

// Sanitize trims values, expands a leading "~" and restores defaults for blank paths.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration

	sanitized.Manifest = fetchConfigurationHomeDirectoryExpander.Expand(configuration.Manifest)
	if len(sanitized.Manifest) == 0 {
		sanitized.Manifest = manifest.DefaultPath
	}

	sanitized.Output = fetchConfigurationHomeDirectoryExpander.Expand(configuration.Output)
	if len(sanitized.Output) == 0 {
		sanitized.Output = DefaultOutputDirectory
	}

	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}

	sanitized.Proxy = ProxyConfiguration{
		HTTPSProxy: strings.TrimSpace(configuration.Proxy.HTTPSProxy),
		HTTPProxy:  strings.TrimSpace(configuration.Proxy.HTTPProxy),
		AllProxy:   strings.TrimSpace(configuration.Proxy.AllProxy),
	}
	return sanitized
}

// GitEnvironment returns the variables set on every git child process.
//
// Credential prompts are always disabled; proxies are included only when configured.
func (configuration Configuration) GitEnvironment() map[string]string {
	environment := map[string]string{
		gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisabledConstant,
	}
	for environmentName, proxyValue := range configuration.Proxy.environment() {
		environment[environmentName] = proxyValue
	}
	return environment
}

func (proxy ProxyConfiguration) environment() map[string]string {
	environment := map[string]string{}
	if trimmed := strings.TrimSpace(proxy.HTTPSProxy); len(trimmed) > 0 {
		environment[httpsProxyEnvironmentNameConstant] = trimmed
	}
	if trimmed := strings.TrimSpace(proxy.HTTPProxy); len(trimmed) > 0 {
		environment[httpProxyEnvironmentNameConstant] = trimmed
	}
	if trimmed := strings.TrimSpace(proxy.AllProxy); len(trimmed) > 0 {
		environment[allProxyEnvironmentNameConstant] = trimmed
	}
	return environment
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}

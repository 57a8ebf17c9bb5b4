package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/pinfetch/cmd/cli"
	"github.com/temirov/pinfetch/internal/fetch"
	"github.com/temirov/pinfetch/internal/manifest"
	"github.com/temirov/pinfetch/internal/utils"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	manifestHeaderMarkerConstant     = "# collection.yaml"
	parentDirectoryReferenceConstant = ".."
	fetchConfigurationPrefixConstant = "tools.fetch"
	readmeEnvironmentPrefixConstant  = "PINFETCH_README_TEST"
	missingHeaderMessageTemplate     = "README example missing marker %s"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
	unknownKeyMessageTemplate        = "README example uses unknown key %s"
)

func readmeSnippet(testInstance *testing.T, headerMarker string) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)
	contentText := string(contentBytes)

	headerIndex := strings.Index(contentText, headerMarker)
	require.NotEqualf(testInstance, -1, headerIndex, missingHeaderMessageTemplate, headerMarker)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func writeSnippet(testInstance *testing.T, fileName string, content string) string {
	testInstance.Helper()
	snippetPath := filepath.Join(testInstance.TempDir(), fileName)
	require.NoError(testInstance, os.WriteFile(snippetPath, []byte(content), 0o600))
	return snippetPath
}

func TestReadmeConfigurationLoads(testInstance *testing.T) {
	snippet := readmeSnippet(testInstance, configHeaderMarkerConstant)
	snippetPath := writeSnippet(testInstance, "config.yaml", snippet)

	loader := utils.NewConfigurationLoader("config", "yaml", readmeEnvironmentPrefixConstant, nil)
	var applicationConfiguration cli.ApplicationConfiguration
	_, loadError := loader.LoadConfiguration(snippetPath, fetch.DefaultConfigurationValues(fetchConfigurationPrefixConstant), &applicationConfiguration)
	require.NoError(testInstance, loadError)

	fetchConfiguration := applicationConfiguration.Tools.Fetch
	require.Equal(testInstance, manifest.DefaultPath, fetchConfiguration.Manifest)
	require.Equal(testInstance, fetch.DefaultOutputDirectory, fetchConfiguration.Output)
	require.Equal(testInstance, 10*time.Minute, fetchConfiguration.CommandTimeout)
	require.NotEmpty(testInstance, fetchConfiguration.Proxy.AllProxy)

	var document map[string]any
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippet), &document))

	knownKeys := fetch.DefaultConfigurationValues(fetchConfigurationPrefixConstant)
	toolsSection, _ := document["tools"].(map[string]any)
	fetchSection, _ := toolsSection["fetch"].(map[string]any)
	require.NotEmpty(testInstance, fetchSection)
	for _, flattenedKey := range flattenKeys(fetchConfigurationPrefixConstant, fetchSection) {
		_, known := knownKeys[flattenedKey]
		require.Truef(testInstance, known, unknownKeyMessageTemplate, flattenedKey)
	}
}

func TestReadmeManifestLoads(testInstance *testing.T) {
	snippetPath := writeSnippet(testInstance, "collection.yaml", readmeSnippet(testInstance, manifestHeaderMarkerConstant))

	loadedManifest, loadError := manifest.Load(snippetPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, loadedManifest.Packages, 2)

	for _, pkg := range loadedManifest.Packages {
		_, versionPresent := pkg.PrimaryVersion()
		require.True(testInstance, versionPresent)
	}
}

func flattenKeys(prefix string, section map[string]any) []string {
	keys := []string{}
	for key, value := range section {
		qualifiedKey := prefix + "." + key
		if nested, isSection := value.(map[string]any); isSection {
			keys = append(keys, flattenKeys(qualifiedKey, nested)...)
			continue
		}
		keys = append(keys, qualifiedKey)
	}
	return keys
}

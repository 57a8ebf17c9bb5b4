package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is the manifest read when none is configured.
	DefaultPath = "collection.json"

	jsonCommentsExtensionConstant     = ".jsonc"
	yamlExtensionConstant             = ".yaml"
	yamlShortExtensionConstant        = ".yml"
	manifestNotFoundTemplateConstant  = "%w: %s"
	manifestReadErrorTemplateConstant = "failed to read manifest %s: %w"
	inlineManifestLabelConstant       = "<inline>"
	manifestErrorTemplateConstant     = "%s: %w"
)

// Format identifies a manifest encoding.
type Format string

// Supported manifest encodings.
const (
	FormatJSON         Format = Format("json")
	FormatJSONComments Format = Format("jsonc")
	FormatYAML         Format = Format("yaml")
)

// Manifest is the ordered package collection.
type Manifest struct {
	Packages []Package `json:"packages" yaml:"packages"`
}

// Package is one source repository and the versions requested for it.
type Package struct {
	URL      string              `json:"url" yaml:"url"`
	Versions []VersionDescriptor `json:"versions" yaml:"versions"`
}

// VersionDescriptor carries an opaque version label matched against tags.
type VersionDescriptor struct {
	Version string `json:"version" yaml:"version"`
}

// PrimaryVersion returns the trimmed label of the first version descriptor.
//
// Later descriptors are never consulted.
func (pkg Package) PrimaryVersion() (string, bool) {
	if len(pkg.Versions) == 0 {
		return "", false
	}
	trimmedVersion := strings.TrimSpace(pkg.Versions[0].Version)
	return trimmedVersion, len(trimmedVersion) > 0
}

// IgnoredVersionCount reports how many descriptors follow the primary one.
func (pkg Package) IgnoredVersionCount() int {
	if len(pkg.Versions) <= 1 {
		return 0
	}
	return len(pkg.Versions) - 1
}

// FormatFromPath selects the encoding implied by the file extension.
//
// Unknown extensions are read as strict JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case jsonCommentsExtensionConstant:
		return FormatJSONComments
	case yamlExtensionConstant, yamlShortExtensionConstant:
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and validates the manifest at path.
func Load(path string) (Manifest, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		trimmedPath = DefaultPath
	}

	content, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return Manifest{}, fmt.Errorf(manifestNotFoundTemplateConstant, ErrManifestNotFound, trimmedPath)
		}
		return Manifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, trimmedPath, readError)
	}

	loadedManifest, parseError := Parse(content, FormatFromPath(trimmedPath))
	if parseError != nil {
		var typedParseError ParseError
		if errors.As(parseError, &typedParseError) {
			typedParseError.Path = trimmedPath
			return Manifest{}, typedParseError
		}
		return Manifest{}, fmt.Errorf(manifestErrorTemplateConstant, trimmedPath, parseError)
	}
	return loadedManifest, nil
}

// Parse decodes content in the given format and checks that it lists at least one package.
func Parse(content []byte, format Format) (Manifest, error) {
	var decodedManifest Manifest
	var decodeError error

	switch format {
	case FormatYAML:
		decodeError = yaml.Unmarshal(content, &decodedManifest)
	case FormatJSONComments:
		decodeError = json.Unmarshal(jsonc.ToJSON(content), &decodedManifest)
	default:
		format = FormatJSON
		decodeError = json.Unmarshal(content, &decodedManifest)
	}
	if decodeError != nil {
		return Manifest{}, ParseError{Path: inlineManifestLabelConstant, Format: format, Cause: decodeError}
	}

	if len(decodedManifest.Packages) == 0 {
		return Manifest{}, ErrManifestEmpty
	}
	return decodedManifest, nil
}

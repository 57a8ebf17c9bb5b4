package gitrepo

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	schemeDelimiterConstant                 = "://"
	scpUserDelimiterConstant                = "@"
	scpPathDelimiterConstant                = ":"
	pathSeparatorConstant                   = "/"
	gitSuffixConstant                       = ".git"
	currentDirectoryNameConstant            = "."
	parentDirectoryNameConstant             = ".."
	sourceLocationErrorTemplateConstant     = "%q: %s"
	invalidSourceLocationMessageConstant    = "invalid source location"
	requiredValueMessageConstant            = "value required"
	missingRepositoryNameMessageConstant    = "no repository name in path"
	unparsableSourceLocationMessageConstant = "unparsable url"
	optionLikeSourceLocationMessageConstant = "must not start with '-'"
	optionPrefixConstant                    = "-"
)

// RemoteProtocol enumerates the source location forms accepted by git clone.
type RemoteProtocol string

// Supported source location forms.
const (
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
	RemoteProtocolFile  RemoteProtocol = RemoteProtocol("file")
	RemoteProtocolSCP   RemoteProtocol = RemoteProtocol("scp")
	RemoteProtocolLocal RemoteProtocol = RemoteProtocol("local")
)

// ErrInvalidSourceLocation is matched by every SourceLocationParseError.
var ErrInvalidSourceLocation = errors.New(invalidSourceLocationMessageConstant)

// SourceLocation is a parsed clone source.
type SourceLocation struct {
	Raw      string
	Protocol RemoteProtocol
	Host     string
	Path     string
	Name     string
}

// SourceLocationParseError indicates a source location yields no usable working-copy name.
type SourceLocationParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError SourceLocationParseError) Error() string {
	return fmt.Sprintf(sourceLocationErrorTemplateConstant, parseError.Input, parseError.Message)
}

// Is reports whether target is ErrInvalidSourceLocation.
func (parseError SourceLocationParseError) Is(target error) bool {
	return target == ErrInvalidSourceLocation
}

// ParseSourceLocation classifies location and derives its working-copy name.
func ParseSourceLocation(location string) (SourceLocation, error) {
	trimmedLocation := strings.TrimSpace(location)
	if len(trimmedLocation) == 0 {
		return SourceLocation{}, SourceLocationParseError{Input: location, Message: requiredValueMessageConstant}
	}
	if strings.HasPrefix(trimmedLocation, optionPrefixConstant) {
		return SourceLocation{}, SourceLocationParseError{Input: location, Message: optionLikeSourceLocationMessageConstant}
	}

	if strings.Contains(trimmedLocation, schemeDelimiterConstant) {
		return parseURLLocation(trimmedLocation)
	}
	if isSCPLikeLocation(trimmedLocation) {
		return parseSCPLocation(trimmedLocation)
	}
	return buildSourceLocation(trimmedLocation, RemoteProtocolLocal, "", filepath.ToSlash(trimmedLocation))
}

// WorkingCopyName returns the directory name a clone of location is stored under.
func WorkingCopyName(location string) (string, error) {
	sourceLocation, parseError := ParseSourceLocation(location)
	if parseError != nil {
		return "", parseError
	}
	return sourceLocation.Name, nil
}

func parseURLLocation(location string) (SourceLocation, error) {
	parsedURL, parseError := url.Parse(location)
	if parseError != nil {
		return SourceLocation{}, SourceLocationParseError{Input: location, Message: unparsableSourceLocationMessageConstant}
	}
	protocol := RemoteProtocol(strings.ToLower(parsedURL.Scheme))
	return buildSourceLocation(location, protocol, parsedURL.Host, parsedURL.Path)
}

func parseSCPLocation(location string) (SourceLocation, error) {
	pathDelimiterIndex := strings.Index(location, scpPathDelimiterConstant)
	hostWithUser := location[:pathDelimiterIndex]
	host := hostWithUser
	if userDelimiterIndex := strings.LastIndex(hostWithUser, scpUserDelimiterConstant); userDelimiterIndex >= 0 {
		host = hostWithUser[userDelimiterIndex+1:]
	}
	return buildSourceLocation(location, RemoteProtocolSCP, host, location[pathDelimiterIndex+1:])
}

// isSCPLikeLocation follows git's rule: a colon before any slash, and not a drive letter.
func isSCPLikeLocation(location string) bool {
	pathDelimiterIndex := strings.Index(location, scpPathDelimiterConstant)
	if pathDelimiterIndex <= 1 {
		return false
	}
	slashIndex := strings.Index(location, pathSeparatorConstant)
	return slashIndex == -1 || pathDelimiterIndex < slashIndex
}

func buildSourceLocation(raw string, protocol RemoteProtocol, host string, path string) (SourceLocation, error) {
	repositoryName := lastPathSegment(path)
	repositoryName = strings.TrimSuffix(repositoryName, gitSuffixConstant)
	switch repositoryName {
	case "", currentDirectoryNameConstant, parentDirectoryNameConstant:
		return SourceLocation{}, SourceLocationParseError{Input: raw, Message: missingRepositoryNameMessageConstant}
	}

	return SourceLocation{
		Raw:      raw,
		Protocol: protocol,
		Host:     host,
		Path:     path,
		Name:     repositoryName,
	}, nil
}

func lastPathSegment(path string) string {
	trimmedPath := strings.TrimRight(path, pathSeparatorConstant)
	if separatorIndex := strings.LastIndex(trimmedPath, pathSeparatorConstant); separatorIndex >= 0 {
		return trimmedPath[separatorIndex+1:]
	}
	return trimmedPath
}

package manifest

import (
	"errors"
	"fmt"
)

const (
	manifestNotFoundMessageConstant = "manifest not found"
	manifestInvalidMessageConstant  = "manifest is invalid"
	manifestEmptyMessageConstant    = "manifest contains no packages"
	parseErrorTemplateConstant      = "%s: invalid %s manifest: %v"
)

// ErrManifestNotFound indicates the manifest file does not exist.
var ErrManifestNotFound = errors.New(manifestNotFoundMessageConstant)

// ErrManifestInvalid is matched by every ParseError.
var ErrManifestInvalid = errors.New(manifestInvalidMessageConstant)

// ErrManifestEmpty indicates the manifest has no packages key or an empty list.
var ErrManifestEmpty = errors.New(manifestEmptyMessageConstant)

// ParseError reports a manifest whose content could not be decoded.
type ParseError struct {
	Path   string
	Format Format
	Cause  error
}

// Error describes the decoding failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Path, parseError.Format, parseError.Cause)
}

// Is reports whether target is ErrManifestInvalid.
func (parseError ParseError) Is(target error) bool {
	return target == ErrManifestInvalid
}

// Unwrap exposes the decoder error.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

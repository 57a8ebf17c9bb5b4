package fetch

import (
	"errors"
	"fmt"

	"github.com/temirov/pinfetch/internal/gitrepo"
	"github.com/temirov/pinfetch/internal/versions"
)

const (
	missingURLMessageConstant         = "package url must be provided"
	workspaceLockedMessageConstant    = "output directory is in use by another pinfetch run"
	gitExecutorMissingMessageConstant = "git executor not configured"
	resolverMissingMessageConstant    = "version resolver not configured"
	cloneFailedTemplateConstant       = "failed to clone %s from %s: %v"
	fetchWarningTemplateConstant      = "failed to %s for %s: %v"
	batchFailedTemplateConstant       = "%d of %d packages failed"
	fetchUpdatesOperationConstant     = "fetch updates"
	fetchTagsOperationConstant        = "fetch tags"
)

// ErrMissingURL indicates a manifest entry without a source location.
var ErrMissingURL = errors.New(missingURLMessageConstant)

// ErrMissingVersion indicates a manifest entry without a usable version label.
var ErrMissingVersion = versions.ErrMissingVersion

// ErrInvalidSourceLocation indicates a source location that yields no working-copy name.
var ErrInvalidSourceLocation = gitrepo.ErrInvalidSourceLocation

// ErrWorkspaceLocked indicates another run holds the output directory lock.
var ErrWorkspaceLocked = errors.New(workspaceLockedMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrResolverNotConfigured indicates the version resolver dependency was missing.
var ErrResolverNotConfigured = errors.New(resolverMissingMessageConstant)

// CloneFailedError reports a clone that did not complete; the package is abandoned.
type CloneFailedError struct {
	Name  string
	URL   string
	Cause error
}

// Error describes the failed clone.
func (failure CloneFailedError) Error() string {
	return fmt.Sprintf(cloneFailedTemplateConstant, failure.Name, failure.URL, failure.Cause)
}

// Unwrap exposes the git failure.
func (failure CloneFailedError) Unwrap() error {
	return failure.Cause
}

// FetchWarning reports a failed update of an existing working copy. Processing continues.
type FetchWarning struct {
	Name      string
	Operation string
	Cause     error
}

// Error describes the failed fetch.
func (warning FetchWarning) Error() string {
	return fmt.Sprintf(fetchWarningTemplateConstant, warning.Operation, warning.Name, warning.Cause)
}

// Unwrap exposes the git failure.
func (warning FetchWarning) Unwrap() error {
	return warning.Cause
}

// BatchFailedError reports a run in which at least one package failed.
type BatchFailedError struct {
	Total  int
	Failed int
}

// Error summarises the failure count.
func (failure BatchFailedError) Error() string {
	return fmt.Sprintf(batchFailedTemplateConstant, failure.Failed, failure.Total)
}

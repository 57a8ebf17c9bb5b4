package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/pinfetch/internal/execshell"
	"github.com/temirov/pinfetch/internal/filesystem"
	"github.com/temirov/pinfetch/internal/gitrepo"
	"github.com/temirov/pinfetch/internal/manifest"
	"github.com/temirov/pinfetch/internal/ui"
	"github.com/temirov/pinfetch/internal/versions"
)

const (
	outputDirectoryPermissionsConstant   = fs.FileMode(0o755)
	gitCloneSubcommandConstant           = "clone"
	gitFetchSubcommandConstant           = "fetch"
	gitProgressFlagConstant              = "--progress"
	gitAllRemotesFlagConstant            = "--all"
	gitTagsFlagConstant                  = "--tags"
	unnamedPackageTemplateConstant       = "package %d"
	outputDirectoryErrorTemplateConstant = "unable to create output directory %s: %w"
	workingCopyStatErrorTemplateConstant = "unable to inspect %s: %w"
	interruptedErrorTemplateConstant     = "run interrupted before processing: %w"
	manifestFoundTemplateConstant        = "Found %d packages in manifest\n"
	dryRunNoticeConstant                 = "Dry run: no git commands will be executed\n"
	progressTitleTemplateConstant        = "Progress: [%d/%d] %s"
	urlLineTemplateConstant              = "URL: %s\n"
	versionLineTemplateConstant          = "Version: %s\n"
	skippedLineTemplateConstant          = "Skipped: %v\n"
	updatingLineTemplateConstant         = "Working copy %s exists, updating\n"
	cloningLineTemplateConstant          = "Cloning %s\n"
	clonedLineTemplateConstant           = "Cloned %s\n"
	plannedUpdateLineTemplateConstant    = "Would update %s and check out %s\n"
	plannedCloneLineTemplateConstant     = "Would clone %s into %s and check out %s\n"
	warningLineTemplateConstant          = "Warning: %v\n"
	errorLineTemplateConstant            = "Error: %v\n"
	checkedOutTagTemplateConstant        = "Checked out tag %s (via %s)\n"
	checkedOutCommitTemplateConstant     = "Checked out commit %s (via %s)\n"
	unverifiedCheckoutTemplateConstant   = "Warning: checked out %s but could not verify the result\n"
	packageCompletedTemplateConstant     = "Package %s completed successfully\n"
	packageStartedMessageConstant        = "processing package"
	packageFailedMessageConstant         = "package failed"
	packageCompletedMessageConstant      = "package completed"
	extraVersionsIgnoredMessageConstant  = "additional versions ignored"
	lockReleaseFailedMessageConstant     = "failed to release workspace lock"
	fetchWarningMessageConstant          = "fetch step failed, continuing with local history"
	optionPrefixConstant                 = "-"
	logFieldOperationConstant            = "operation"
	logFieldIndexConstant                = "index"
	logFieldTotalConstant                = "total"
	logFieldNameConstant                 = "name"
	logFieldURLConstant                  = "url"
	logFieldVersionConstant              = "version"
	logFieldIgnoredCountConstant         = "ignored_count"
	logFieldOutputDirectoryConstant      = "output_directory"
	logFieldReferenceConstant            = "reference"
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// VersionResolver checks out a version label in a working copy.
type VersionResolver interface {
	ResolveAndCheckout(executionContext context.Context, workspace string, label string) (versions.ResolvedReference, error)
}

// FileSystem exposes the filesystem operations used during a run.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	GitExecutor GitExecutor
	Resolver    VersionResolver
	FileSystem  FileSystem
	Locker      WorkspaceLocker
	Reporter    ui.Reporter
	Logger      *zap.Logger
}

// Options configure a single run.
type Options struct {
	OutputDirectory string
	DryRun          bool
	Environment     map[string]string
	// ProgressOutput mirrors the progress of clone and update fetches when set.
	ProgressOutput  io.Writer
}

// PlannedAction states how a working copy is brought up to date.
type PlannedAction string

// Supported working copy actions.
const (
	ActionNone   PlannedAction = PlannedAction("")
	ActionClone  PlannedAction = PlannedAction("clone")
	ActionUpdate PlannedAction = PlannedAction("update")
)

// Outcome records what happened to one manifest entry.
type Outcome struct {
	Index       int
	Name        string
	URL         string
	Version     string
	WorkingCopy string
	Action      PlannedAction
	Resolved    versions.ResolvedReference
	Warnings    []error
	Err         error
}

// Succeeded reports whether the entry counts towards the successful total.
func (outcome Outcome) Succeeded() bool {
	return outcome.Err == nil
}

// Summary tallies a run. Total always equals Successful plus Failed.
type Summary struct {
	Total           int
	Successful      int
	Failed          int
	OutputDirectory string
	DryRun          bool
	Outcomes        []Outcome
}

// Service clones, updates and pins the packages of a manifest.
type Service struct {
	gitExecutor GitExecutor
	resolver    VersionResolver
	fileSystem  FileSystem
	locker      WorkspaceLocker
	reporter    ui.Reporter
	logger      *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Resolver == nil {
		return nil, ErrResolverNotConfigured
	}

	service := &Service{
		gitExecutor: dependencies.GitExecutor,
		resolver:    dependencies.Resolver,
		fileSystem:  dependencies.FileSystem,
		locker:      dependencies.Locker,
		reporter:    dependencies.Reporter,
		logger:      dependencies.Logger,
	}
	if service.fileSystem == nil {
		service.fileSystem = filesystem.OSFileSystem{}
	}
	if service.locker == nil {
		service.locker = FileWorkspaceLocker{}
	}
	if service.reporter == nil {
		service.reporter = ui.NewWriterReporter(os.Stdout)
	}
	if service.logger == nil {
		service.logger = zap.NewNop()
	}
	return service, nil
}

// Run processes every package of collection in order.
//
// Per-package failures are counted and do not stop the run; when any occurred the
// summary is returned together with a BatchFailedError.
func (service *Service) Run(executionContext context.Context, collection manifest.Manifest, options Options) (Summary, error) {
	if len(collection.Packages) == 0 {
		return Summary{}, manifest.ErrManifestEmpty
	}

	outputDirectory := strings.TrimSpace(options.OutputDirectory)
	if len(outputDirectory) == 0 {
		outputDirectory = DefaultOutputDirectory
	}

	summary := Summary{
		Total:           len(collection.Packages),
		OutputDirectory: outputDirectory,
		DryRun:          options.DryRun,
		Outcomes:        make([]Outcome, 0, len(collection.Packages)),
	}

	service.reporter.Printf(manifestFoundTemplateConstant, summary.Total)
	if options.DryRun {
		service.reporter.Printf(dryRunNoticeConstant)
	} else {
		if mkdirError := service.fileSystem.MkdirAll(outputDirectory, outputDirectoryPermissionsConstant); mkdirError != nil {
			return Summary{}, fmt.Errorf(outputDirectoryErrorTemplateConstant, outputDirectory, mkdirError)
		}
		lease, lockError := service.locker.Acquire(outputDirectory)
		if lockError != nil {
			return Summary{}, lockError
		}
		defer service.releaseLease(lease, outputDirectory)
	}

	for packageIndex, pkg := range collection.Packages {
		outcome := service.processPackage(executionContext, packageIndex+1, summary.Total, pkg, outputDirectory, options)
		if outcome.Succeeded() {
			summary.Successful++
		} else {
			summary.Failed++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	service.reportSummary(summary)

	if summary.Failed > 0 {
		return summary, BatchFailedError{Total: summary.Total, Failed: summary.Failed}
	}
	return summary, nil
}

func (service *Service) processPackage(executionContext context.Context, index int, total int, pkg manifest.Package, outputDirectory string, options Options) Outcome {
	outcome := Outcome{Index: index, URL: strings.TrimSpace(pkg.URL)}
	outcome.Version, _ = pkg.PrimaryVersion()
	outcome.Name = fmt.Sprintf(unnamedPackageTemplateConstant, index)

	validationError := service.validatePackage(&outcome, pkg)

	service.reporter.Section(fmt.Sprintf(progressTitleTemplateConstant, index, total, outcome.Name))
	service.reporter.Printf(urlLineTemplateConstant, outcome.URL)
	service.reporter.Printf(versionLineTemplateConstant, outcome.Version)

	if validationError != nil {
		return service.failPackage(outcome, validationError, skippedLineTemplateConstant)
	}
	if contextError := executionContext.Err(); contextError != nil {
		return service.failPackage(outcome, fmt.Errorf(interruptedErrorTemplateConstant, contextError), errorLineTemplateConstant)
	}

	service.logger.Info(
		packageStartedMessageConstant,
		zap.Int(logFieldIndexConstant, index),
		zap.Int(logFieldTotalConstant, total),
		zap.String(logFieldNameConstant, outcome.Name),
		zap.String(logFieldURLConstant, outcome.URL),
		zap.String(logFieldVersionConstant, outcome.Version),
	)
	if ignoredCount := pkg.IgnoredVersionCount(); ignoredCount > 0 {
		service.logger.Debug(
			extraVersionsIgnoredMessageConstant,
			zap.String(logFieldNameConstant, outcome.Name),
			zap.Int(logFieldIgnoredCountConstant, ignoredCount),
		)
	}

	outcome.WorkingCopy = filepath.Join(outputDirectory, outcome.Name)
	workingCopyExists, statError := service.directoryExists(outcome.WorkingCopy)
	if statError != nil {
		return service.failPackage(outcome, fmt.Errorf(workingCopyStatErrorTemplateConstant, outcome.WorkingCopy, statError), errorLineTemplateConstant)
	}
	outcome.Action = ActionClone
	if workingCopyExists {
		outcome.Action = ActionUpdate
	}

	if options.DryRun {
		if workingCopyExists {
			service.reporter.Printf(plannedUpdateLineTemplateConstant, outcome.WorkingCopy, outcome.Version)
		} else {
			service.reporter.Printf(plannedCloneLineTemplateConstant, outcome.URL, outcome.WorkingCopy, outcome.Version)
		}
		return outcome
	}

	if workingCopyExists {
		service.reporter.Printf(updatingLineTemplateConstant, outcome.Name)
		if fetchError := service.runGit(executionContext, outcome.WorkingCopy, options, gitFetchSubcommandConstant, gitAllRemotesFlagConstant, gitProgressFlagConstant); fetchError != nil {
			outcome.Warnings = append(outcome.Warnings, service.warn(FetchWarning{Name: outcome.Name, Operation: fetchUpdatesOperationConstant, Cause: fetchError}))
		}
	} else {
		service.reporter.Printf(cloningLineTemplateConstant, outcome.Name)
		if cloneError := service.runGit(executionContext, outputDirectory, options, gitCloneSubcommandConstant, gitProgressFlagConstant, outcome.URL, outcome.Name); cloneError != nil {
			return service.failPackage(outcome, CloneFailedError{Name: outcome.Name, URL: outcome.URL, Cause: cloneError}, errorLineTemplateConstant)
		}
		service.reporter.Printf(clonedLineTemplateConstant, outcome.Name)
	}

	if tagsError := service.runGit(executionContext, outcome.WorkingCopy, options, gitFetchSubcommandConstant, gitTagsFlagConstant); tagsError != nil {
		outcome.Warnings = append(outcome.Warnings, service.warn(FetchWarning{Name: outcome.Name, Operation: fetchTagsOperationConstant, Cause: tagsError}))
	}

	resolvedReference, resolveError := service.resolver.ResolveAndCheckout(executionContext, outcome.WorkingCopy, outcome.Version)
	if resolveError != nil {
		return service.failPackage(outcome, resolveError, errorLineTemplateConstant)
	}
	outcome.Resolved = resolvedReference

	switch resolvedReference.Verification {
	case versions.VerificationTag:
		service.reporter.Printf(checkedOutTagTemplateConstant, resolvedReference.VerifiedName, resolvedReference.Reference)
	case versions.VerificationCommit:
		service.reporter.Printf(checkedOutCommitTemplateConstant, resolvedReference.VerifiedName, resolvedReference.Reference)
	default:
		service.reporter.Printf(unverifiedCheckoutTemplateConstant, resolvedReference.Reference)
	}
	service.reporter.Printf(packageCompletedTemplateConstant, outcome.Name)

	service.logger.Info(
		packageCompletedMessageConstant,
		zap.String(logFieldNameConstant, outcome.Name),
		zap.String(logFieldReferenceConstant, resolvedReference.Reference),
	)
	return outcome
}

// validatePackage checks the entry before any git command runs and names the outcome when possible.
func (service *Service) validatePackage(outcome *Outcome, pkg manifest.Package) error {
	if len(outcome.URL) == 0 {
		return ErrMissingURL
	}

	workingCopyName, nameError := gitrepo.WorkingCopyName(outcome.URL)
	if nameError != nil {
		return nameError
	}
	outcome.Name = workingCopyName

	if _, versionPresent := pkg.PrimaryVersion(); !versionPresent {
		return ErrMissingVersion
	}
	if strings.HasPrefix(outcome.Version, optionPrefixConstant) {
		return versions.ErrInvalidVersion
	}
	return nil
}

func (service *Service) failPackage(outcome Outcome, failure error, lineTemplate string) Outcome {
	outcome.Err = failure
	service.reporter.Printf(lineTemplate, failure)
	service.logger.Warn(
		packageFailedMessageConstant,
		zap.Int(logFieldIndexConstant, outcome.Index),
		zap.String(logFieldNameConstant, outcome.Name),
		zap.String(logFieldURLConstant, outcome.URL),
		zap.Error(failure),
	)
	return outcome
}

func (service *Service) warn(warning FetchWarning) error {
	service.reporter.Printf(warningLineTemplateConstant, warning)
	service.logger.Warn(
		fetchWarningMessageConstant,
		zap.String(logFieldNameConstant, warning.Name),
		zap.String(logFieldOperationConstant, warning.Operation),
		zap.Error(warning.Cause),
	)
	return warning
}

func (service *Service) directoryExists(path string) (bool, error) {
	fileInfo, statError := service.fileSystem.Stat(path)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return fileInfo.IsDir(), nil
}

func (service *Service) runGit(executionContext context.Context, workingDirectory string, options Options, arguments ...string) error {
	details := execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: maps.Clone(options.Environment),
	}
	if slices.Contains(arguments, gitProgressFlagConstant) {
		details.ProgressOutput = options.ProgressOutput
	}
	_, executionError := service.gitExecutor.ExecuteGit(executionContext, details)
	return executionError
}

func (service *Service) releaseLease(lease WorkspaceLease, outputDirectory string) {
	if releaseError := lease.Release(); releaseError != nil {
		service.logger.Warn(lockReleaseFailedMessageConstant, zap.String(logFieldOutputDirectoryConstant, outputDirectory), zap.Error(releaseError))
	}
}

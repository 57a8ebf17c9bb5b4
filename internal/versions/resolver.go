package versions

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/pinfetch/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant      = "git executor not configured"
	workspaceRequiredMessageConstant       = "working copy path must be provided"
	missingVersionMessageConstant          = "version label must be provided"
	invalidVersionMessageConstant          = "version label must not start with '-'"
	checkoutFailedTemplateConstant         = "failed to check out %s or %s (tried %s)"
	checkoutInterruptedTemplateConstant    = "checkout of %s interrupted: %w"
	attemptedReferenceSeparatorConstant    = ", "
	optionPrefixConstant                   = "-"
	gitCheckoutSubcommandConstant          = "checkout"
	gitDescribeSubcommandConstant          = "describe"
	gitTagsFlagConstant                    = "--tags"
	gitExactMatchFlagConstant              = "--exact-match"
	gitRevParseSubcommandConstant          = "rev-parse"
	gitHeadReferenceConstant               = "HEAD"
	abbreviatedCommitLengthConstant        = 8
	checkoutAttemptFailedMessageConstant   = "version checkout attempt failed"
	checkoutSucceededMessageConstant       = "version checked out"
	verificationUnavailableMessageConstant = "unable to verify checked out version"
	logFieldWorkspaceConstant              = "workspace"
	logFieldLabelConstant                  = "version"
	logFieldReferenceConstant              = "reference"
	logFieldStrategyConstant               = "strategy"
	logFieldVerificationConstant           = "verification"
	logFieldVerifiedNameConstant           = "verified_name"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrWorkspaceRequired indicates the working copy path was empty.
var ErrWorkspaceRequired = errors.New(workspaceRequiredMessageConstant)

// ErrMissingVersion indicates the version label was empty.
var ErrMissingVersion = errors.New(missingVersionMessageConstant)

// ErrInvalidVersion indicates a label git would read as a command-line option.
var ErrInvalidVersion = errors.New(invalidVersionMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// VerificationKind describes how the checked out state was confirmed.
type VerificationKind string

// Verification outcomes, from most to least specific.
const (
	VerificationTag        VerificationKind = VerificationKind("tag")
	VerificationCommit     VerificationKind = VerificationKind("commit")
	VerificationUnverified VerificationKind = VerificationKind("unverified")
)

// ResolvedReference describes a successful checkout.
type ResolvedReference struct {
	Label        string
	Reference    string
	Strategy     string
	Attempts     int
	Verification VerificationKind
	VerifiedName string
}

// CheckoutFailedError reports a label for which every strategy failed.
type CheckoutFailedError struct {
	Label               string
	PrefixedLabel       string
	AttemptedReferences []string
	LastFailure         error
}

// Error names both label variants and every attempted reference.
func (failure CheckoutFailedError) Error() string {
	return fmt.Sprintf(
		checkoutFailedTemplateConstant,
		failure.Label,
		failure.PrefixedLabel,
		strings.Join(failure.AttemptedReferences, attemptedReferenceSeparatorConstant),
	)
}

// Unwrap exposes the failure of the final attempt.
func (failure CheckoutFailedError) Unwrap() error {
	return failure.LastFailure
}

// ResolverDependencies enumerates collaborators required by the resolver.
type ResolverDependencies struct {
	GitExecutor GitExecutor
	Logger      *zap.Logger
	Strategies  []LabelStrategy
	Environment map[string]string
}

// Resolver checks out version labels using an ordered list of strategies.
type Resolver struct {
	executor    GitExecutor
	logger      *zap.Logger
	strategies  []LabelStrategy
	environment map[string]string
}

// NewResolver constructs a Resolver. DefaultLabelStrategies is used when no strategies are supplied.
func NewResolver(dependencies ResolverDependencies) (*Resolver, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	strategies := slices.Clone(dependencies.Strategies)
	if len(strategies) == 0 {
		strategies = DefaultLabelStrategies()
	}

	return &Resolver{
		executor:    dependencies.GitExecutor,
		logger:      logger,
		strategies:  strategies,
		environment: maps.Clone(dependencies.Environment),
	}, nil
}

// Strategies returns the strategy names in attempt order.
func (resolver *Resolver) Strategies() []string {
	strategyNames := make([]string, 0, len(resolver.strategies))
	for _, strategy := range resolver.strategies {
		strategyNames = append(strategyNames, strategy.Name)
	}
	return strategyNames
}

// ResolveAndCheckout checks out label in workspace, stopping at the first strategy git accepts.
func (resolver *Resolver) ResolveAndCheckout(executionContext context.Context, workspace string, label string) (ResolvedReference, error) {
	trimmedWorkspace := strings.TrimSpace(workspace)
	if len(trimmedWorkspace) == 0 {
		return ResolvedReference{}, ErrWorkspaceRequired
	}

	trimmedLabel := strings.TrimSpace(label)
	if len(trimmedLabel) == 0 {
		return ResolvedReference{}, ErrMissingVersion
	}
	if strings.HasPrefix(trimmedLabel, optionPrefixConstant) {
		return ResolvedReference{}, ErrInvalidVersion
	}

	attemptedReferences := make([]string, 0, len(resolver.strategies))
	var lastFailure error

	for _, strategy := range resolver.strategies {
		if strategy.Transform == nil {
			continue
		}
		reference := strings.TrimSpace(strategy.Transform(trimmedLabel))
		if len(reference) == 0 || slices.Contains(attemptedReferences, reference) {
			continue
		}

		if contextError := executionContext.Err(); contextError != nil {
			return ResolvedReference{}, fmt.Errorf(checkoutInterruptedTemplateConstant, trimmedLabel, contextError)
		}

		attemptedReferences = append(attemptedReferences, reference)
		checkoutError := resolver.runGit(executionContext, trimmedWorkspace, gitCheckoutSubcommandConstant, reference)
		if checkoutError != nil {
			lastFailure = checkoutError
			resolver.logger.Debug(
				checkoutAttemptFailedMessageConstant,
				zap.String(logFieldWorkspaceConstant, trimmedWorkspace),
				zap.String(logFieldLabelConstant, trimmedLabel),
				zap.String(logFieldReferenceConstant, reference),
				zap.String(logFieldStrategyConstant, strategy.Name),
				zap.Error(checkoutError),
			)
			continue
		}

		resolvedReference := ResolvedReference{
			Label:     trimmedLabel,
			Reference: reference,
			Strategy:  strategy.Name,
			Attempts:  len(attemptedReferences),
		}
		resolvedReference.Verification, resolvedReference.VerifiedName = resolver.verify(executionContext, trimmedWorkspace)

		resolver.logger.Info(
			checkoutSucceededMessageConstant,
			zap.String(logFieldWorkspaceConstant, trimmedWorkspace),
			zap.String(logFieldLabelConstant, trimmedLabel),
			zap.String(logFieldReferenceConstant, reference),
			zap.String(logFieldStrategyConstant, strategy.Name),
			zap.String(logFieldVerificationConstant, string(resolvedReference.Verification)),
			zap.String(logFieldVerifiedNameConstant, resolvedReference.VerifiedName),
		)
		return resolvedReference, nil
	}

	return ResolvedReference{}, CheckoutFailedError{
		Label:               trimmedLabel,
		PrefixedLabel:       PrefixedLabel(trimmedLabel),
		AttemptedReferences: attemptedReferences,
		LastFailure:         lastFailure,
	}
}

// verify names the tag HEAD sits on, falling back to its abbreviated commit.
func (resolver *Resolver) verify(executionContext context.Context, workspace string) (VerificationKind, string) {
	describeResult, describeError := resolver.executeGit(executionContext, workspace, gitDescribeSubcommandConstant, gitTagsFlagConstant, gitExactMatchFlagConstant)
	if describeError == nil {
		if tagName := strings.TrimSpace(describeResult.StandardOutput); len(tagName) > 0 {
			return VerificationTag, tagName
		}
	}

	revParseResult, revParseError := resolver.executeGit(executionContext, workspace, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if revParseError == nil {
		if commitIdentifier := strings.TrimSpace(revParseResult.StandardOutput); len(commitIdentifier) > 0 {
			if len(commitIdentifier) > abbreviatedCommitLengthConstant {
				commitIdentifier = commitIdentifier[:abbreviatedCommitLengthConstant]
			}
			return VerificationCommit, commitIdentifier
		}
	}

	resolver.logger.Warn(verificationUnavailableMessageConstant, zap.String(logFieldWorkspaceConstant, workspace))
	return VerificationUnverified, ""
}

func (resolver *Resolver) runGit(executionContext context.Context, workspace string, arguments ...string) error {
	_, executionError := resolver.executeGit(executionContext, workspace, arguments...)
	return executionError
}

func (resolver *Resolver) executeGit(executionContext context.Context, workspace string, arguments ...string) (execshell.ExecutionResult, error) {
	return resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workspace,
		EnvironmentVariables: maps.Clone(resolver.environment),
	})
}

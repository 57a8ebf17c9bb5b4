package fetch

import (
	"errors"
	"strconv"

	"github.com/temirov/pinfetch/internal/ui"
	"github.com/temirov/pinfetch/internal/versions"
)

const (
	summaryTitleConstant                 = "SUMMARY"
	summaryTotalTemplateConstant         = "Total packages: %d\n"
	summarySuccessfulTemplateConstant    = "Successful: %d\n"
	summaryFailedTemplateConstant        = "Failed: %d\n"
	summaryOutputTemplateConstant        = "Packages downloaded to: %s\n"
	summaryPlannedOutputTemplateConstant = "Packages would be downloaded to: %s\n"
	summaryFailureNoticeTemplateConstant = "\nWarning: %d packages failed to process\n"
	summarySuccessNoticeConstant         = "\nAll packages processed successfully!\n"
	summaryTableTemplateConstant         = "%s\n"
	summaryIndexHeaderConstant           = "#"
	summaryPackageHeaderConstant         = "Package"
	summaryVersionHeaderConstant         = "Version"
	summaryReferenceHeaderConstant       = "Checked Out"
	summaryStatusHeaderConstant          = "Status"
	summaryDetailHeaderConstant          = "Detail"
	statusSucceededConstant              = "ok"
	statusWarningConstant                = "ok (warnings)"
	statusFailedConstant                 = "failed"
	statusPlannedConstant                = "planned"
	statusSkippedConstant                = "skipped"
	unverifiedDetailConstant             = "unverified"
)

func (service *Service) reportSummary(summary Summary) {
	service.reporter.Section(summaryTitleConstant)
	service.reporter.Printf(summaryTableTemplateConstant, RenderSummaryTable(summary, service.reporter.Colorize()))
	service.reporter.Printf(summaryTotalTemplateConstant, summary.Total)
	service.reporter.Printf(summarySuccessfulTemplateConstant, summary.Successful)
	service.reporter.Printf(summaryFailedTemplateConstant, summary.Failed)
	if summary.DryRun {
		service.reporter.Printf(summaryPlannedOutputTemplateConstant, summary.OutputDirectory)
	} else {
		service.reporter.Printf(summaryOutputTemplateConstant, summary.OutputDirectory)
	}

	if summary.Failed > 0 {
		service.reporter.Printf(summaryFailureNoticeTemplateConstant, summary.Failed)
		return
	}
	service.reporter.Printf(summarySuccessNoticeConstant)
}

// RenderSummaryTable renders one row per outcome.
func RenderSummaryTable(summary Summary, colorize bool) string {
	headers := []string{
		summaryIndexHeaderConstant,
		summaryPackageHeaderConstant,
		summaryVersionHeaderConstant,
		summaryReferenceHeaderConstant,
		summaryStatusHeaderConstant,
		summaryDetailHeaderConstant,
	}
	aligns := []ui.ColumnAlignment{ui.AlignRight, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft}

	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		statusText, statusKind, detail := describeOutcome(outcome, summary.DryRun)
		rows = append(rows, []string{
			strconv.Itoa(outcome.Index),
			outcome.Name,
			outcome.Version,
			outcome.Resolved.Reference,
			ui.FormatStatus(statusText, statusKind, colorize),
			detail,
		})
	}
	return ui.RenderTable(headers, rows, aligns)
}

func describeOutcome(outcome Outcome, dryRun bool) (string, ui.StatusKind, string) {
	if outcome.Err != nil {
		if isValidationError(outcome.Err) {
			return statusSkippedConstant, ui.StatusFailure, outcome.Err.Error()
		}
		return statusFailedConstant, ui.StatusFailure, outcome.Err.Error()
	}
	if dryRun {
		return statusPlannedConstant, ui.StatusNeutral, string(outcome.Action)
	}

	detail := outcome.Resolved.VerifiedName
	if outcome.Resolved.Verification == versions.VerificationUnverified {
		detail = unverifiedDetailConstant
	}
	if len(outcome.Warnings) > 0 {
		return statusWarningConstant, ui.StatusWarning, errors.Join(outcome.Warnings...).Error()
	}
	return statusSucceededConstant, ui.StatusSuccess, detail
}

func isValidationError(failure error) bool {
	return errors.Is(failure, ErrMissingURL) ||
		errors.Is(failure, ErrMissingVersion) ||
		errors.Is(failure, ErrInvalidSourceLocation) ||
		errors.Is(failure, versions.ErrInvalidVersion)
}

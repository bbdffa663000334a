package consistency

import (
	"fmt"
	"strings"
)

// Status is the overall verdict of a validation run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Result is the aggregated response callers branch on: error must halt,
// warning may proceed after surfacing the warnings, success proceeds.
type Result struct {
	Status              Status    `json:"status"`
	Valid               bool      `json:"valid"`
	Message             string    `json:"message"`
	Errors              []Finding `json:"errors,omitempty"`
	ErrorCount          int       `json:"error_count,omitempty"`
	SuggestedResolution string    `json:"suggested_resolution,omitempty"`
	Warnings            []Finding `json:"warnings,omitempty"`
	WarningCount        int       `json:"warning_count,omitempty"`
	Suggestions         []Finding `json:"suggestions,omitempty"`
}

// maxSurfaced caps how many errors feed the message and suggested resolution.
const maxSurfaced = 2

// Aggregate folds findings into a Result. Errors dominate warnings, which
// dominate success. On the error path suggestions are dropped: only errors
// and their resolutions are returned.
func Aggregate(findings []Finding) Result {
	var errs, warns, suggs []Finding
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			errs = append(errs, f)
		case SeverityWarning:
			warns = append(warns, f)
		default:
			suggs = append(suggs, f)
		}
	}

	if len(errs) > 0 {
		top := errs[:min(len(errs), maxSurfaced)]
		issues := make([]string, len(top))
		resolutions := make([]string, len(top))
		for i, f := range top {
			issues[i] = f.Issue
			resolutions[i] = f.Resolution
		}
		return Result{
			Status:              StatusError,
			Valid:               false,
			Message:             fmt.Sprintf("Found %d critical contradiction(s): %s", len(errs), strings.Join(issues, "; ")),
			Errors:              errs,
			ErrorCount:          len(errs),
			SuggestedResolution: strings.Join(resolutions, " OR "),
		}
	}

	if len(warns) > 0 {
		return Result{
			Status:       StatusWarning,
			Valid:        true,
			Message:      fmt.Sprintf("Found %d potential issue(s) that should be reviewed", len(warns)),
			Warnings:     warns,
			WarningCount: len(warns),
			Suggestions:  suggs,
		}
	}

	return Result{
		Status:      StatusSuccess,
		Valid:       true,
		Message:     "All data is consistent - no contradictions found",
		Suggestions: suggs,
	}
}

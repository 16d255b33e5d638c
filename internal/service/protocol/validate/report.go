package validate

import (
	"fmt"
)

type Severity string

const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

// IssueCode is a machine-readable issue code, drawn from the FHIR issue-type
// value set where one fits.
type IssueCode string

const (
	// CodeInformational summarises the bundle.
	CodeInformational IssueCode = "informational"
	// CodeNotFound flags a coding whose system is not a recognised terminology.
	CodeNotFound IssueCode = "not-found"
	// CodeRequired flags a resource missing its resourceType or id.
	CodeRequired IssueCode = "required"
	// CodeDuplicate flags two entries sharing the same Type/id.
	CodeDuplicate IssueCode = "duplicate"
	// CodeUnresolvedReference flags a reference to an entry not in the bundle.
	CodeUnresolvedReference IssueCode = "unresolved-reference"
	// CodeValidationFailed is emitted when validation itself breaks.
	CodeValidationFailed IssueCode = "validation-failed"
)

type Issue struct {
	Severity Severity  `json:"severity"`
	Code     IssueCode `json:"code"`
	Details  string    `json:"details"`
	Location string    `json:"location"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s at %s", i.Severity, i.Code, i.Details, i.Location)
}

// Report is the outcome of one validation run. Valid is true iff Errors is zero.
type Report struct {
	Valid         bool    `json:"valid"`
	Issues        []Issue `json:"issues"`
	ResourceCount int     `json:"resourceCount"`
	Errors        int     `json:"errors"`
	Warnings      int     `json:"warnings"`
	Information   int     `json:"information"`
}

func newReport(resourceCount int, issues []Issue) Report {
	r := Report{
		Issues:        issues,
		ResourceCount: resourceCount,
	}
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			r.Errors++
		case SeverityWarning:
			r.Warnings++
		case SeverityInformation:
			r.Information++
		}
	}
	r.Valid = r.Errors == 0
	return r
}

// failedReport is the report for a validation run that could not complete.
func failedReport(cause any) Report {
	return Report{
		Valid: false,
		Issues: []Issue{{
			Severity: SeverityError,
			Code:     CodeValidationFailed,
			Details:  fmt.Sprintf("Validation failed: %v", cause),
			Location: "Bundle",
		}},
		Errors: 1,
	}
}

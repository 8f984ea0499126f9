package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is one cell finding flattened for reporting.
type ValidationError struct {
	// Severity is "error" or "warning".
	Severity types.Status

	// Field is the template field name.
	Field string

	// Value is the cell value at validation time.
	Value string

	// Rule is the finding kind.
	Rule types.IssueKind

	Message string

	// RowNumber is the 1-based row in the uploaded file.
	RowNumber int

	// SuggestedFix is the auto-fix suggestion, if any.
	SuggestedFix string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(string(e.Severity)),
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result is the outcome of a validation pass.
type Result struct {
	// IsValid is true when no cell has an error.
	IsValid bool

	Stats Stats

	// Issues lists every error and warning, by row then template column.
	Issues []*ValidationError
}

// Errors returns only the error-severity issues.
func (r *Result) Errors() []*ValidationError {
	var out []*ValidationError
	for _, issue := range r.Issues {
		if issue.Severity == types.StatusError {
			out = append(out, issue)
		}
	}
	return out
}

func collectIssues(rows []*types.Row, tpl *template.Template) []*ValidationError {
	var issues []*ValidationError
	for _, row := range rows {
		for _, col := range tpl.Columns {
			meta, ok := row.Meta[col.Key]
			if !ok {
				continue
			}
			suggestion := ""
			if meta.SuggestedFix != nil {
				suggestion = *meta.SuggestedFix
			}
			for _, issue := range meta.Issues {
				issues = append(issues, &ValidationError{
					Severity:     issue.Severity,
					Field:        col.FieldName,
					Value:        row.Data[col.Key],
					Rule:         issue.Kind,
					Message:      issue.Message,
					RowNumber:    row.RowIndex,
					SuggestedFix: suggestion,
				})
			}
		}
	}
	return issues
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation issues for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

package validation

import (
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// EvaluateRequirement reports whether a conditional requirement holds for
// row. AND needs every condition, OR at least one. A requirement without
// conditions never holds.
func EvaluateRequirement(req *template.ConditionalRequirement, row *types.Row, tpl *template.Template) bool {
	if req == nil || len(req.Conditions) == 0 {
		return false
	}

	if req.Operator == template.Or {
		for _, c := range req.Conditions {
			if EvaluateCondition(c, row, tpl) {
				return true
			}
		}
		return false
	}

	for _, c := range req.Conditions {
		if !EvaluateCondition(c, row, tpl) {
			return false
		}
	}
	return true
}

// EvaluateCondition resolves the referenced sibling cell and applies the
// operator. Comparisons ignore case; empty means blank after trimming.
func EvaluateCondition(c template.Condition, row *types.Row, tpl *template.Template) bool {
	key := template.CanonicalName(c.Field)
	if col, ok := tpl.Column(c.Field); ok {
		key = col.Key
	}

	actual := strings.TrimSpace(row.Data[key])
	expected := strings.TrimSpace(c.Value)

	switch c.Operator {
	case template.OpIsEmpty:
		return actual == ""
	case template.OpIsNotEmpty:
		return actual != ""
	case template.OpEquals:
		return strings.EqualFold(actual, expected)
	case template.OpNotEquals:
		return !strings.EqualFold(actual, expected)
	case template.OpContains:
		if actual == "" {
			return false
		}
		return strings.Contains(strings.ToLower(actual), strings.ToLower(expected))
	default:
		return false
	}
}

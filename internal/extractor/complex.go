package extractor

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
)

const eitherOrDescription = "Either First Name + Last Name or Owner Name is required"

// detectComplexRules looks for the two cross-field layouts providers use:
// person-or-company naming and state-implies-country. Columns must be
// finalized so their keys are set.
func detectComplexRules(columns []template.ColumnRule) []template.CrossFieldRule {
	var rules []template.CrossFieldRule

	first := findColumn(columns, func(c *template.ColumnRule) bool { return strings.Contains(c.Key, "firstname") })
	last := findColumn(columns, func(c *template.ColumnRule) bool { return strings.Contains(c.Key, "lastname") })
	owner := findColumn(columns, func(c *template.ColumnRule) bool { return strings.Contains(c.Key, "ownername") })

	if first != nil && last != nil && owner != nil &&
		(first.Requirement == template.Conditional || last.Requirement == template.Conditional || owner.Requirement == template.Conditional) {
		rules = append(rules, template.CrossFieldRule{
			Kind:        template.RuleEitherOr,
			Description: eitherOrDescription,
			Groups: [][]string{
				{first.ColumnLetter, last.ColumnLetter},
				{owner.ColumnLetter},
			},
			Severity: template.SeverityError,
		})
	}

	state := findColumn(columns, func(c *template.ColumnRule) bool {
		return strings.Contains(c.Key, "state") || strings.Contains(c.Key, "province")
	})
	country := findColumn(columns, func(c *template.ColumnRule) bool {
		return strings.Contains(c.Key, "country") && !strings.Contains(c.Key, "citizenship")
	})

	if state != nil && country != nil && country.Requirement == template.Conditional {
		rules = append(rules, template.CrossFieldRule{
			Kind:        template.RuleDependent,
			Description: fmt.Sprintf("%s is required when %s is provided", country.FieldName, state.FieldName),
			Trigger:     state.ColumnLetter,
			Dependent:   country.ColumnLetter,
			Condition:   "not_empty",
			Severity:    template.SeverityError,
		})
	}

	return rules
}

func findColumn(columns []template.ColumnRule, match func(*template.ColumnRule) bool) *template.ColumnRule {
	for i := range columns {
		if match(&columns[i]) {
			return &columns[i]
		}
	}
	return nil
}

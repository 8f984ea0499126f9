package extractor

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// Conditional-format formulas are not evaluated. A closed set of
// sub-expressions is recognized by pattern; anything else is reported back
// as unrecognized.
var (
	reLenTrimEmpty = regexp.MustCompile(`(?i)^LEN\(\s*TRIM\(\s*\$?([A-Z]{1,3})\$?\d+\s*\)\s*\)\s*=\s*0$`)
	reCellCompare  = regexp.MustCompile(`(?i)^\$?([A-Z]{1,3})\$?\d+\s*(<>|=)\s*"(.*)"$`)
	reTextCompare  = regexp.MustCompile(`(?i)^TEXT\(\s*\$?([A-Z]{1,3})\$?\d+\s*,\s*"@"\s*\)\s*(<>|=)\s*"(.*)"$`)
)

// cellCondition is a recognized sub-expression, still keyed by column letter.
type cellCondition struct {
	letter   string
	operator template.Operator
	value    string
}

// parseFormula interprets a conditional-format formula. The top-level AND/OR
// decides the connective; a bare comparison is treated as AND.
func parseFormula(formula string) (template.Connective, []cellCondition, []string) {
	expr := strings.TrimSpace(formula)
	expr = strings.TrimSpace(strings.TrimPrefix(expr, "="))

	connective := template.And
	if fn, _, ok := splitCall(expr); ok && fn == "OR" {
		connective = template.Or
	}

	var conds []cellCondition
	var unrecognized []string
	collect(expr, &conds, &unrecognized)
	return connective, conds, unrecognized
}

// collect flattens nested AND/OR calls and matches each leaf.
func collect(expr string, conds *[]cellCondition, unrecognized *[]string) {
	expr = strings.TrimSpace(expr)
	if fn, args, ok := splitCall(expr); ok && (fn == "AND" || fn == "OR") {
		for _, arg := range args {
			collect(arg, conds, unrecognized)
		}
		return
	}

	if c, ok := matchCondition(expr); ok {
		*conds = append(*conds, c)
		return
	}
	*unrecognized = append(*unrecognized, expr)
}

func matchCondition(expr string) (cellCondition, bool) {
	if m := reLenTrimEmpty.FindStringSubmatch(expr); m != nil {
		return cellCondition{letter: strings.ToUpper(m[1]), operator: template.OpIsEmpty}, true
	}

	m := reTextCompare.FindStringSubmatch(expr)
	if m == nil {
		m = reCellCompare.FindStringSubmatch(expr)
	}
	if m == nil {
		return cellCondition{}, false
	}

	letter := strings.ToUpper(m[1])
	value := strings.ReplaceAll(m[3], `""`, `"`)
	equals := m[2] == "="

	switch {
	case value == "" && equals:
		return cellCondition{letter: letter, operator: template.OpIsEmpty}, true
	case value == "":
		return cellCondition{letter: letter, operator: template.OpIsNotEmpty}, true
	case equals:
		return cellCondition{letter: letter, operator: template.OpEquals, value: value}, true
	default:
		return cellCondition{letter: letter, operator: template.OpNotEquals, value: value}, true
	}
}

// splitCall splits "NAME(a, b, ...)" into its uppercased name and top-level
// arguments. Commas inside quotes or nested parentheses do not split.
func splitCall(expr string) (string, []string, bool) {
	open := strings.IndexByte(expr, '(')
	if open <= 0 || !strings.HasSuffix(expr, ")") {
		return "", nil, false
	}
	name := strings.ToUpper(strings.TrimSpace(expr[:open]))
	body := expr[open+1 : len(expr)-1]

	var args []string
	depth, start := 0, 0
	inQuote := false
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '"':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth < 0 {
					// The outer parentheses do not enclose the whole expression.
					return "", nil, false
				}
			}
		case ',':
			if !inQuote && depth == 0 {
				args = append(args, body[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, false
	}
	args = append(args, body[start:])
	return name, args, true
}

// applyConditionalFormats attaches conditional requirements to the
// conditional columns inside each rule's range.
func (e *Extractor) applyConditionalFormats(sheet *workbook.Sheet, byLetter map[string]*template.ColumnRule) {
	for _, cf := range sheet.ConditionalFormats {
		for _, formula := range cf.Formulas {
			connective, conds, unrecognized := parseFormula(formula)
			for _, part := range unrecognized {
				e.logger.Warn("Ignoring unrecognized condition '%s' in %s!%s formula '%s'", part, sheet.Name, cf.Sqref, formula)
			}
			if len(conds) == 0 {
				continue
			}

			for _, letter := range workbook.ExpandSqref(cf.Sqref) {
				target, ok := byLetter[letter]
				if !ok || target.Requirement != template.Conditional {
					continue
				}

				var conditions []template.Condition
				for _, c := range conds {
					if c.letter == letter {
						continue
					}
					ref, ok := byLetter[c.letter]
					if !ok {
						e.logger.Warn("Condition on %s!%s references column %s outside the template", sheet.Name, cf.Sqref, c.letter)
						continue
					}
					conditions = append(conditions, template.Condition{Field: ref.FieldName, Operator: c.operator, Value: c.value})
				}
				if len(conditions) == 0 {
					continue
				}

				target.ConditionalRequirement = &template.ConditionalRequirement{
					Operator:   connective,
					Conditions: conditions,
				}
			}
		}
	}
}

package extractor

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// validationKinds maps data-validation kinds to column types.
var validationKinds = map[string]template.ColumnType{
	"list":       template.TypeList,
	"whole":      template.TypeInteger,
	"decimal":    template.TypeDecimal,
	"date":       template.TypeDate,
	"textLength": template.TypeText,
	"time":       template.TypeTime,
	"custom":     template.TypeCustom,
}

var (
	formulaTags = regexp.MustCompile(`</?formula[12]?>`)

	// rangeRef matches Sheet!$A$2:$A$50, 'My Sheet'!A:A and the like.
	rangeRef = regexp.MustCompile(`^(?:'((?:[^']|'')+)'|([^!]+))!\$?([A-Za-z]{1,3})\$?\d*(?::\$?[A-Za-z]{1,3}\$?\d*)?$`)
)

// applyDataValidations overlays the sheet's data-validation descriptors onto
// the columns they touch.
func (e *Extractor) applyDataValidations(sheet *workbook.Sheet, byLetter map[string]*template.ColumnRule, lookups map[string]template.LookupTable) {
	for _, dv := range sheet.DataValidations {
		kind, known := validationKinds[dv.Type]
		if !known {
			e.logger.Warn("Unknown data validation kind '%s' on %s!%s, treating as text", dv.Type, sheet.Name, dv.Sqref)
			kind = template.TypeText
		}

		for _, letter := range workbook.ExpandSqref(dv.Sqref) {
			col, ok := byLetter[letter]
			if !ok {
				continue
			}
			col.Type = kind

			switch dv.Type {
			case "list":
				e.applyListFormula(col, normalizeFormula(dv.Formula1), sheet.Name, lookups)
			case "textLength":
				if n := maxLengthFor(dv); n > 0 {
					col.MaxLength = n
				}
			}
		}
	}
}

// applyListFormula fills allowed values from a quoted literal or from a
// lookup sheet range reference.
func (e *Extractor) applyListFormula(col *template.ColumnRule, formula, sheetName string, lookups map[string]template.LookupTable) {
	if formula == "" {
		return
	}

	if len(formula) >= 2 && strings.HasPrefix(formula, `"`) && strings.HasSuffix(formula, `"`) {
		var values []string
		for _, v := range strings.Split(formula[1:len(formula)-1], ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		col.AllowedValues = values
		return
	}

	col.ListSource = formula

	m := rangeRef.FindStringSubmatch(formula)
	if m == nil {
		e.logger.Warn("Unresolved list reference '%s' for column %s on sheet '%s'", formula, col.ColumnLetter, sheetName)
		return
	}
	refSheet := m[2]
	if m[1] != "" {
		refSheet = strings.ReplaceAll(m[1], "''", "'")
	}

	for name, table := range lookups {
		if strings.EqualFold(name, strings.TrimSpace(refSheet)) {
			col.AllowedValues = lookupColumn(table, workbook.ColumnIndex(m[3]))
			return
		}
	}
	e.logger.Warn("Unresolved list reference '%s' for column %s: no lookup sheet '%s'", formula, col.ColumnLetter, refSheet)
}

// normalizeFormula strips XML wrappers, entity escapes and a leading "=".
func normalizeFormula(f string) string {
	f = formulaTags.ReplaceAllString(f, "")
	f = html.UnescapeString(f)
	f = strings.TrimSpace(f)
	return strings.TrimSpace(strings.TrimPrefix(f, "="))
}

// maxLengthFor derives the maximum text length from a textLength validation.
func maxLengthFor(dv workbook.DataValidation) int {
	n1, err1 := strconv.Atoi(normalizeFormula(dv.Formula1))
	n2, err2 := strconv.Atoi(normalizeFormula(dv.Formula2))

	switch dv.Operator {
	case "lessThan":
		if err1 == nil {
			return n1 - 1
		}
	case "between", "":
		if err2 == nil {
			return n2
		}
	case "lessThanOrEqual", "equal":
		if err1 == nil {
			return n1
		}
	}
	return 0
}

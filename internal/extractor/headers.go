package extractor

import (
	"regexp"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

var (
	// headerSplit separates a field name from its inline description.
	headerSplit = regexp.MustCompile(`\s{3,}|\t`)

	// codePattern finds enumerated codes such as "A=" or "10 =".
	codePattern = regexp.MustCompile(`([A-Z0-9]+)\s*=`)

	// dateFormatPattern finds a literal format token; dateWordPattern the
	// standalone word "date".
	dateFormatPattern = regexp.MustCompile(`mm/dd/yyyy|mm-dd-yyyy|dd/mm/yyyy|yyyy-mm-dd`)
	dateWordPattern   = regexp.MustCompile(`\bdate\b`)
)

// headerInfo is what a single header cell says about its column.
type headerInfo struct {
	fieldName   string
	description string
	codes       []string
	isDate      bool
	dateFormat  string
}

// parseColumns reads rows 1 and 2 of the main sheet. Columns with an empty
// header are skipped but keep their spreadsheet position.
func parseColumns(sheet *workbook.Sheet) []template.ColumnRule {
	var columns []template.ColumnRule

	for c := 0; c < len(sheet.Rows[0]); c++ {
		raw := sheet.Cell(0, c)
		if raw == "" {
			continue
		}

		info := parseHeader(raw)
		col := template.ColumnRule{
			Index:        c + 1,
			ColumnLetter: workbook.ColumnLetter(c + 1),
			FieldName:    info.fieldName,
			Description:  info.description,
			Type:         template.TypeText,
			Requirement:  parseRequirement(sheet.Cell(1, c)),
		}

		// An enumeration beats a date hint.
		switch {
		case len(info.codes) > 0:
			col.Type = template.TypeList
			col.AllowedValues = info.codes
		case info.isDate:
			col.Type = template.TypeDate
			col.DateFormat = info.dateFormat
		}

		columns = append(columns, col)
	}

	return columns
}

// parseHeader splits a header cell and mines it for codes and date hints.
func parseHeader(raw string) headerInfo {
	var info headerInfo

	if strings.Contains(raw, "=") {
		info.fieldName = raw
	} else {
		parts := headerSplit.Split(raw, -1)
		info.fieldName = strings.TrimSpace(parts[0])
		var tail []string
		for _, p := range parts[1:] {
			if p = strings.TrimSpace(p); p != "" {
				tail = append(tail, p)
			}
		}
		info.description = strings.Join(tail, " ")
	}

	seen := make(map[string]bool)
	for _, m := range codePattern.FindAllStringSubmatch(raw, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			info.codes = append(info.codes, m[1])
		}
	}

	combined := strings.ToLower(info.fieldName + " " + info.description)
	if m := dateFormatPattern.FindString(combined); m != "" {
		info.isDate = true
		info.dateFormat = strings.ToUpper(m)
	} else if dateWordPattern.MatchString(combined) {
		info.isDate = true
	}

	return info
}

// parseRequirement maps a row-2 token. Conditional tokens are checked first
// because "Conditionally required" contains "required".
func parseRequirement(text string) template.Requirement {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lower == "":
		return template.Optional
	case strings.Contains(lower, "conditional"), strings.Contains(lower, "one of"), strings.Contains(lower, "either"):
		return template.Conditional
	case strings.Contains(lower, "required"):
		return template.Required
	default:
		return template.Optional
	}
}

package extractor

import (
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// parseLookupTable reads a two-column keyed sheet: row 1 holds headers, the
// remaining non-empty rows hold values.
func parseLookupTable(sheet *workbook.Sheet) template.LookupTable {
	table := template.LookupTable{KeyToValue: make(map[string]string)}
	if len(sheet.Rows) == 0 {
		return table
	}

	for _, h := range sheet.Rows[0] {
		table.Headers = append(table.Headers, strings.TrimSpace(h))
	}

	for _, row := range sheet.Rows[1:] {
		if isBlankRow(row) {
			continue
		}
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = strings.TrimSpace(v)
		}
		table.Rows = append(table.Rows, values)

		if values[0] == "" {
			continue
		}
		second := ""
		if len(values) > 1 {
			second = values[1]
		}
		table.KeyToValue[strings.ToUpper(values[0])] = second
	}

	return table
}

// lookupColumn returns the non-empty values of a lookup table column, where
// column is the 1-based sheet column.
func lookupColumn(table template.LookupTable, column int) []string {
	var values []string
	for _, row := range table.Rows {
		if column-1 < len(row) && row[column-1] != "" {
			values = append(values, row[column-1])
		}
	}
	return values
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

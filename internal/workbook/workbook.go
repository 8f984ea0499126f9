// =============================================================================
// gridcheck - Workbook Model
// =============================================================================
//
// A fully materialized workbook handed to the extractor and the mapper. The
// loaders in xlsx.go and delimited.go are the only places that touch file
// bytes; everything downstream works on this model.
//
// SHEET CONTENT:
//   Rows                cell grid as strings (ragged rows allowed)
//   DataValidations     range + kind + formula1/formula2 + allowBlank
//   ConditionalFormats  range + formula(s)
//
// =============================================================================

package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyWorkbook is returned when a file has no sheets or no cells.
	ErrEmptyWorkbook = errors.New("workbook is empty")

	// ErrUnsupportedFormat is returned for file extensions with no loader.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Workbook is a named collection of sheets.
type Workbook struct {
	Name   string
	Sheets []Sheet
}

// Sheet is one worksheet.
type Sheet struct {
	Name               string
	Rows               [][]string
	DataValidations    []DataValidation
	ConditionalFormats []ConditionalFormat
}

// DataValidation is a data-validation descriptor of a sheet.
type DataValidation struct {
	// Sqref is the space-separated list of ranges it applies to.
	Sqref      string
	Type       string
	Operator   string
	Formula1   string
	Formula2   string
	AllowBlank bool
}

// ConditionalFormat is a formula-based conditional format rule.
type ConditionalFormat struct {
	Sqref    string
	Formulas []string
}

// Sheet returns the sheet with the given name, compared case-insensitively.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if strings.EqualFold(w.Sheets[i].Name, name) {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Cell returns the trimmed value at 0-based row/col, or "".
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[row][col])
}

// Width returns the widest row length.
func (s *Sheet) Width() int {
	width := 0
	for _, row := range s.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a workbook from disk, choosing the decoder by extension.
//
// SUPPORTED EXTENSIONS:
//   - .xlsx, .xlsm : excelize
//   - .csv         : comma-delimited
//   - .tsv, .txt   : tab-delimited
func Load(path string) (*Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	case ".csv":
		return LoadDelimited(path, ',')
	case ".tsv", ".txt":
		return LoadDelimited(path, '\t')
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// =============================================================================
// RANGE HELPERS
// =============================================================================

// ExpandSqref expands a range list such as "A2:C100 E2:E100" or "$F:$F" into
// the column letters it touches, in first-seen order.
func ExpandSqref(sqref string) []string {
	seen := make(map[string]bool)
	var letters []string

	for _, ref := range strings.Fields(sqref) {
		// Drop a sheet prefix like Sheet1!A1:B2.
		if i := strings.LastIndex(ref, "!"); i >= 0 {
			ref = ref[i+1:]
		}
		ref = strings.ReplaceAll(ref, "$", "")

		parts := strings.SplitN(ref, ":", 2)
		start := columnPart(parts[0])
		end := start
		if len(parts) == 2 {
			end = columnPart(parts[1])
		}

		from, err := excelize.ColumnNameToNumber(start)
		if err != nil {
			continue
		}
		to, err := excelize.ColumnNameToNumber(end)
		if err != nil {
			to = from
		}
		if to < from {
			from, to = to, from
		}

		for n := from; n <= to; n++ {
			letter, err := excelize.ColumnNumberToName(n)
			if err != nil || seen[letter] {
				continue
			}
			seen[letter] = true
			letters = append(letters, letter)
		}
	}

	return letters
}

// ColumnLetter converts a 1-based column index to its letter ("" when out of
// range).
func ColumnLetter(index int) string {
	letter, err := excelize.ColumnNumberToName(index)
	if err != nil {
		return ""
	}
	return letter
}

// ColumnIndex converts a column letter to its 1-based index (0 when invalid).
func ColumnIndex(letter string) int {
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(strings.TrimSpace(letter)))
	if err != nil {
		return 0
	}
	return n
}

// columnPart returns the leading letters of a cell reference ("AB12" -> "AB").
func columnPart(ref string) string {
	end := 0
	for end < len(ref) {
		c := ref[end]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			end++
			continue
		}
		break
	}
	return strings.ToUpper(ref[:end])
}

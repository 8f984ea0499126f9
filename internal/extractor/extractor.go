// =============================================================================
// gridcheck - Template Extractor
// =============================================================================
//
// Builds a Template from a provider-supplied workbook. The main sheet carries
// the rules; secondary sheets carry lookup tables.
//
// MAIN SHEET LAYOUT:
//
//   | Row | Content                                                         |
//   |-----|-----------------------------------------------------------------|
//   | 1   | headers: "FieldName<3+ spaces or tab>Description", or a code    |
//   |     | list such as "Status A=Active I=Inactive"                       |
//   | 2   | requirement tokens: Required / Conditional / Optional / ...     |
//   | 3+  | sample data (ignored)                                           |
//
// OVERLAYS (applied in this order):
//   1. Lookup sheets        names containing table/lookup/codes/list
//   2. Data validations     type, allowed values, max length
//   3. Conditional formats  conditional requirements
//   4. Cross-field rules    either-or names, state/country dependency
//
// FAILURE SEMANTICS:
//   Extraction is best-effort. Unknown validation kinds, unparseable
//   formulas and unresolved list references are logged and skipped. Only an
//   empty workbook is an error.
//
// =============================================================================

package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/logging"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// auxiliarySheetWords mark sheets that are never the main sheet.
var auxiliarySheetWords = []string{"help", "table", "lookup", "codes", "list", "reference", "instructions"}

// lookupSheetWords mark sheets parsed as lookup tables.
var lookupSheetWords = []string{"table", "lookup", "codes", "list"}

// Extractor turns workbooks into templates.
type Extractor struct {
	logger logging.Logger
}

// New returns an Extractor. A nil logger discards degradation messages.
func New(logger logging.Logger) *Extractor {
	return &Extractor{logger: logging.OrNop(logger)}
}

// ExtractFile loads a workbook from disk and extracts a template named after
// the file.
func (e *Extractor) ExtractFile(path string) (*template.Template, error) {
	wb, err := workbook.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template workbook: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return e.Extract(wb, name)
}

// Extract builds a template from wb.
//
// PARAMETERS:
//   - wb: the materialized workbook
//   - name: the template name
//
// RETURNS:
//   - the finalized Template
//   - workbook.ErrEmptyWorkbook when there is no sheet or no header row
func (e *Extractor) Extract(wb *workbook.Workbook, name string) (*template.Template, error) {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil, workbook.ErrEmptyWorkbook
	}

	main := selectMainSheet(wb)
	if len(main.Rows) == 0 {
		return nil, fmt.Errorf("%w: sheet '%s' has no header row", workbook.ErrEmptyWorkbook, main.Name)
	}

	tpl := template.New(name)
	tpl.Columns = parseColumns(main)
	if len(tpl.Columns) == 0 {
		return nil, fmt.Errorf("%w: sheet '%s' has no headers", workbook.ErrEmptyWorkbook, main.Name)
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		if sheet == main || !isLookupSheet(sheet.Name) {
			continue
		}
		tpl.LookupTables[sheet.Name] = parseLookupTable(sheet)
		e.logger.Debug("Parsed lookup sheet '%s' (%d rows)", sheet.Name, len(tpl.LookupTables[sheet.Name].Rows))
	}

	byLetter := make(map[string]*template.ColumnRule, len(tpl.Columns))
	for i := range tpl.Columns {
		byLetter[tpl.Columns[i].ColumnLetter] = &tpl.Columns[i]
	}

	e.applyDataValidations(main, byLetter, tpl.LookupTables)
	e.applyConditionalFormats(main, byLetter)

	tpl.Finalize()
	tpl.ComplexRules = detectComplexRules(tpl.Columns)

	e.logger.Info("Extracted template '%s' from sheet '%s': %d columns, %d lookup tables, %d complex rules",
		name, main.Name, len(tpl.Columns), len(tpl.LookupTables), len(tpl.ComplexRules))

	return tpl, nil
}

// selectMainSheet picks the first sheet that does not look auxiliary,
// falling back to the first sheet.
func selectMainSheet(wb *workbook.Workbook) *workbook.Sheet {
	for i := range wb.Sheets {
		if !containsAny(strings.ToLower(wb.Sheets[i].Name), auxiliarySheetWords) {
			return &wb.Sheets[i]
		}
	}
	return &wb.Sheets[0]
}

func isLookupSheet(name string) bool {
	return containsAny(strings.ToLower(name), lookupSheetWords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

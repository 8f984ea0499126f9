// =============================================================================
// gridcheck - XLSX Loader
// =============================================================================
//
// Decodes .xlsx files with excelize into the Workbook model. For every sheet
// it materializes:
//   - the cell grid (GetRows, formatted values)
//   - data validations (GetDataValidations)
//   - formula-based conditional formats (GetConditionalFormats)
//
// Sheets whose metadata cannot be read still contribute their grid; the
// extractor treats missing metadata as "no overlay".
//
// =============================================================================

package workbook

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX opens an .xlsx file.
func LoadXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return fromFile(f, filepath.Base(path))
}

// ReadXLSX decodes an .xlsx stream.
func ReadXLSX(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return fromFile(f, name)
}

// fromFile converts an open excelize file.
func fromFile(f *excelize.File, name string) (*Workbook, error) {
	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, ErrEmptyWorkbook
	}

	wb := &Workbook{Name: name}

	for _, sheetName := range sheetNames {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheetName, err)
		}

		sheet := Sheet{Name: sheetName, Rows: rows}

		if dvs, err := f.GetDataValidations(sheetName); err == nil {
			for _, dv := range dvs {
				if dv == nil {
					continue
				}
				sheet.DataValidations = append(sheet.DataValidations, DataValidation{
					Sqref:      dv.Sqref,
					Type:       dv.Type,
					Operator:   dv.Operator,
					Formula1:   dv.Formula1,
					Formula2:   dv.Formula2,
					AllowBlank: dv.AllowBlank,
				})
			}
		}

		if cfs, err := f.GetConditionalFormats(sheetName); err == nil {
			sheet.ConditionalFormats = conditionalFormats(cfs)
		}

		wb.Sheets = append(wb.Sheets, sheet)
	}

	return wb, nil
}

// conditionalFormats keeps the formula rules, ordered by range for stable
// output. excelize stores an expression rule's formula in Criteria.
func conditionalFormats(byRange map[string][]excelize.ConditionalFormatOptions) []ConditionalFormat {
	ranges := make([]string, 0, len(byRange))
	for sqref := range byRange {
		ranges = append(ranges, sqref)
	}
	sort.Strings(ranges)

	var out []ConditionalFormat
	for _, sqref := range ranges {
		for _, opt := range byRange[sqref] {
			if opt.Type != "formula" {
				continue
			}
			formula := opt.Criteria
			if formula == "" {
				formula = opt.Value
			}
			if formula == "" {
				continue
			}
			out = append(out, ConditionalFormat{Sqref: sqref, Formulas: []string{formula}})
		}
	}
	return out
}

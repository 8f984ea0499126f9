// =============================================================================
// Gridcheck - Export Shaper
// =============================================================================
//
// This module turns a validated dataset into the two-dimensional grid that the
// xlsx and txt writers serialize.
//
// GRID LAYOUT:
//   Row 1 (optional)  Header names, in template column order
//   Row 2 (optional)  Requirement labels: Required / Conditional / Optional
//   Row 3..N          One row per dataset row that passes the status filter
//
//   Date columns are written as MM/DD/YYYY.
//
//   With IncludeStatus every row gains a leading column. The header cell is
//   "Validation Status", the requirement cell is empty and data rows carry
//   the row status.
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/dateutil"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// ErrNoRowsMatch is returned when the status filter leaves nothing to export.
var ErrNoRowsMatch = errors.New("no rows match filter")

// StatusHeader is the header of the leading status column.
const StatusHeader = "Validation Status"

// =============================================================================
// CONFIGURATION
// =============================================================================

// Format is an output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatTXT  Format = "txt"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatTXT:
		return FormatTXT, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Filter selects rows by status.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterValid   Filter = "valid"
	FilterWarning Filter = "warning"
	FilterError   Filter = "error"
)

// ParseFilter resolves a filter name. An empty name means all rows.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterValid:
		return FilterValid, nil
	case FilterWarning:
		return FilterWarning, nil
	case FilterError:
		return FilterError, nil
	}
	return "", fmt.Errorf("unknown export filter %q", s)
}

// Matches reports whether a row status passes the filter.
func (f Filter) Matches(status types.Status) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterValid:
		return status == types.StatusValid
	case FilterWarning:
		return status == types.StatusWarning
	case FilterError:
		return status == types.StatusError
	}
	return false
}

// Config controls one export.
type Config struct {
	Format                Format
	Filter                Filter
	IncludeHeader         bool
	IncludeRequirementRow bool
	IncludeStatus         bool

	// FilenamePattern is expanded by FileName. Empty means "{template}_{date}".
	FilenamePattern string
}

// ConfigFor builds a Config from the template's export defaults for format.
func ConfigFor(tpl *template.Template, format Format) Config {
	settings := tpl.ExportSettings.XLSX
	if format == FormatTXT {
		settings = tpl.ExportSettings.TXT
	}
	return Config{
		Format:                format,
		Filter:                FilterAll,
		IncludeHeader:         settings.IncludeHeader,
		IncludeRequirementRow: settings.IncludeRequirement,
		IncludeStatus:         tpl.ExportSettings.IncludeStatus,
		FilenamePattern:       settings.FilenamePattern,
	}
}

// =============================================================================
// SHAPING
// =============================================================================

// Shape builds the export grid for rows.
//
// PARAMETERS:
//   - rows: The validated dataset.
//   - tpl: The template that defines column order and requirement labels.
//   - cfg: Filter and layout switches.
//
// RETURNS:
//   - The grid, header and requirement rows first when enabled.
//   - ErrNoRowsMatch when no row passes the filter.
func Shape(rows []*types.Row, tpl *template.Template, cfg Config) ([][]string, error) {
	var selected []*types.Row
	for _, row := range rows {
		if cfg.Filter.Matches(row.RowStatus) {
			selected = append(selected, row)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoRowsMatch
	}

	width := len(tpl.Columns)
	if cfg.IncludeStatus {
		width++
	}

	grid := make([][]string, 0, len(selected)+2)

	if cfg.IncludeHeader {
		line := make([]string, 0, width)
		if cfg.IncludeStatus {
			line = append(line, StatusHeader)
		}
		line = append(line, tpl.FieldNames()...)
		grid = append(grid, line)
	}

	if cfg.IncludeRequirementRow {
		line := make([]string, 0, width)
		if cfg.IncludeStatus {
			line = append(line, "")
		}
		for _, col := range tpl.Columns {
			line = append(line, col.Requirement.Label())
		}
		grid = append(grid, line)
	}

	for _, row := range selected {
		line := make([]string, 0, width)
		if cfg.IncludeStatus {
			line = append(line, string(row.RowStatus))
		}
		for c := range tpl.Columns {
			line = append(line, cellValue(&tpl.Columns[c], row.Data[tpl.Columns[c].Key]))
		}
		grid = append(grid, line)
	}

	return grid, nil
}

// cellValue renders a stored value for export. Date columns are written in
// the canonical MM/DD/YYYY form; anything unparseable is kept as is.
func cellValue(col *template.ColumnRule, value string) string {
	if col.Type == template.TypeDate {
		return dateutil.Standardize(value)
	}
	return value
}

// =============================================================================
// gridcheck - Column Mapper
// =============================================================================
//
// Decides which uploaded column feeds which template column, then turns the
// upload into dataset rows keyed by template column key.
//
// MODES:
//   positional  template column i <-> file column i (confidence 1.0)
//   named       normalized header match: exact, then Levenshtein similarity
//               >= 0.8, then substring containment in either direction
//
// WARNINGS:
//   missing_column  a template column with no file column
//   extra_columns   file columns no template column claimed
//
// =============================================================================

package mapper

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// FuzzyThreshold is the minimum similarity for a fuzzy header match.
const FuzzyThreshold = 0.8

// MissingColumnNote is attached to cells of template columns absent from the
// upload.
const MissingColumnNote = "Column not present in uploaded file"

// Mode selects the mapping strategy.
type Mode string

const (
	ModePositional Mode = "positional"
	ModeNamed      Mode = "named"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePositional, "":
		return ModePositional, nil
	case ModeNamed:
		return ModeNamed, nil
	default:
		return "", fmt.Errorf("invalid mapping mode '%s' (expected positional or named)", s)
	}
}

// Method records how a column was matched.
type Method string

const (
	MethodPosition  Method = "position"
	MethodExact     Method = "exact"
	MethodFuzzy     Method = "fuzzy"
	MethodSubstring Method = "substring"
)

// Match is the file column chosen for a template column.
type Match struct {
	// FileColumn is the 0-based column of the uploaded grid.
	FileColumn int
	Confidence float64
	Method     Method
}

// WarningKind classifies mapping warnings.
type WarningKind string

const (
	WarningMissingColumn WarningKind = "missing_column"
	WarningExtraColumns  WarningKind = "extra_columns"
)

// Warning is a non-fatal mapping finding.
type Warning struct {
	Kind    WarningKind
	Column  string
	Message string
}

// Mapping is the mapper's output, keyed by template column key.
type Mapping struct {
	Mode     Mode
	Columns  map[string]Match
	Warnings []Warning
}

// Map maps the upload headers onto the template columns.
func Map(headers []string, tpl *template.Template, mode Mode) *Mapping {
	if mode == ModeNamed {
		return MapNamed(headers, tpl)
	}
	return MapPositional(headers, tpl)
}

// MapPositional pairs each template column with the file column at the same
// spreadsheet position.
func MapPositional(headers []string, tpl *template.Template) *Mapping {
	m := &Mapping{Mode: ModePositional, Columns: make(map[string]Match, len(tpl.Columns))}
	claimed := make([]bool, len(headers))

	for _, col := range tpl.Columns {
		pos := col.Index - 1
		if pos < 0 || pos >= len(headers) {
			m.missing(col)
			continue
		}
		claimed[pos] = true
		m.Columns[col.Key] = Match{FileColumn: pos, Confidence: 1, Method: MethodPosition}
	}

	m.extra(headers, claimed)
	return m
}

// MapNamed matches template field names against upload headers.
func MapNamed(headers []string, tpl *template.Template) *Mapping {
	m := &Mapping{Mode: ModeNamed, Columns: make(map[string]Match, len(tpl.Columns))}
	claimed := make([]bool, len(headers))

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = template.CanonicalName(h)
	}

	// Exact.
	for _, col := range tpl.Columns {
		for i, h := range normalized {
			if !claimed[i] && h != "" && h == col.Key {
				claimed[i] = true
				m.Columns[col.Key] = Match{FileColumn: i, Confidence: 1, Method: MethodExact}
				break
			}
		}
	}

	// Fuzzy: best unclaimed header above the threshold.
	for _, col := range tpl.Columns {
		if _, done := m.Columns[col.Key]; done {
			continue
		}
		best, bestScore := -1, 0.0
		for i, h := range normalized {
			if claimed[i] || h == "" {
				continue
			}
			if score := Similarity(col.Key, h); score >= FuzzyThreshold && score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			claimed[best] = true
			m.Columns[col.Key] = Match{FileColumn: best, Confidence: bestScore, Method: MethodFuzzy}
		}
	}

	// Substring containment.
	for _, col := range tpl.Columns {
		if _, done := m.Columns[col.Key]; done {
			continue
		}
		for i, h := range normalized {
			if claimed[i] || h == "" || col.Key == "" {
				continue
			}
			if strings.Contains(h, col.Key) || strings.Contains(col.Key, h) {
				claimed[i] = true
				shorter, longer := len(h), len(col.Key)
				if shorter > longer {
					shorter, longer = longer, shorter
				}
				m.Columns[col.Key] = Match{FileColumn: i, Confidence: float64(shorter) / float64(longer), Method: MethodSubstring}
				break
			}
		}
	}

	for _, col := range tpl.Columns {
		if _, ok := m.Columns[col.Key]; !ok {
			m.missing(col)
		}
	}
	m.extra(headers, claimed)
	return m
}

func (m *Mapping) missing(col template.ColumnRule) {
	m.Warnings = append(m.Warnings, Warning{
		Kind:    WarningMissingColumn,
		Column:  col.FieldName,
		Message: fmt.Sprintf("Template column '%s' (%s) not found in uploaded file", col.FieldName, col.ColumnLetter),
	})
}

func (m *Mapping) extra(headers []string, claimed []bool) {
	var extra []string
	for i, h := range headers {
		if !claimed[i] && strings.TrimSpace(h) != "" {
			extra = append(extra, h)
		}
	}
	if len(extra) == 0 {
		return
	}
	m.Warnings = append(m.Warnings, Warning{
		Kind:    WarningExtraColumns,
		Message: fmt.Sprintf("Uploaded file has %d column(s) not in template: %s", len(extra), strings.Join(extra, ", ")),
	})
}

// ApplyMapping builds dataset rows from an upload. Every template column is
// present in every row; unmapped columns are empty and carry
// MissingColumnNote.
func ApplyMapping(upload *Upload, tpl *template.Template, mapping *Mapping) []*types.Row {
	rows := make([]*types.Row, 0, len(upload.Rows))

	for i, raw := range upload.Rows {
		rowNumber := i + 1
		if i < len(upload.RowNumbers) {
			rowNumber = upload.RowNumbers[i]
		}
		row := types.NewRow(rowNumber, len(tpl.Columns))

		for _, col := range tpl.Columns {
			match, mapped := mapping.Columns[col.Key]
			value := ""
			if mapped && match.FileColumn < len(raw) {
				value = raw[match.FileColumn]
			}

			row.Data[col.Key] = value
			meta := types.NewCellMeta(value)
			if !mapped {
				meta.Notes = append(meta.Notes, MissingColumnNote)
			}
			row.Meta[col.Key] = meta
		}

		rows = append(rows, row)
	}

	return rows
}

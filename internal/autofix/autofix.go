// =============================================================================
// gridcheck - Auto-Fix Engine
// =============================================================================
//
// Deterministic value rewrites driven by the template's AutoFixSettings and
// each column's type and name. Every cell runs through the same fixed chain;
// each step reads the previous step's output.
//
// CHAIN:
//   | # | Toggle                   | Applies to                               |
//   |---|--------------------------|------------------------------------------|
//   | 1 | trimWhitespace           | every column                             |
//   | 2 | normalizeLineBreaks      | every column                             |
//   | 3 | removeSpecialChars       | every column                             |
//   | 4 | uppercaseCountryCodes    | country-like columns                     |
//   | 5 | titleCaseNames           | name-like columns                        |
//   | 6 | removeCurrencySymbols    | numeric columns                          |
//   | 7 | standardizeDates         | date and datetime columns                |
//   | 8 | removeThousandSeparators | numeric columns                          |
//   | 9 | alternativeLabels        | columns with a synonym mapping           |
//
// GUARANTEES:
//   - Applying the engine twice yields no further changes.
//   - A Change is recorded only when the final value differs.
//   - Input rows are never mutated; Apply returns clones.
//
// =============================================================================

package autofix

import (
	"github.com/ginjaninja78/gridcheck/internal/logging"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// Fix names a step of the chain. The names match the settings keys.
type Fix string

const (
	FixTrimWhitespace           Fix = "trimWhitespace"
	FixNormalizeLineBreaks      Fix = "normalizeLineBreaks"
	FixRemoveSpecialChars       Fix = "removeSpecialChars"
	FixUppercaseCountryCodes    Fix = "uppercaseCountryCodes"
	FixTitleCaseNames           Fix = "titleCaseNames"
	FixRemoveCurrencySymbols    Fix = "removeCurrencySymbols"
	FixStandardizeDates         Fix = "standardizeDates"
	FixRemoveThousandSeparators Fix = "removeThousandSeparators"
	FixAlternativeLabels        Fix = "alternativeLabels"
)

// Engine applies the fix chain for one template.
type Engine struct {
	tpl      *template.Template
	settings template.AutoFixSettings
	logger   logging.Logger
}

// New returns an Engine using the template's own settings.
func New(tpl *template.Template, logger logging.Logger) *Engine {
	return NewWithSettings(tpl, tpl.AutoFixSettings, logger)
}

// NewWithSettings returns an Engine with explicit settings.
func NewWithSettings(tpl *template.Template, settings template.AutoFixSettings, logger logging.Logger) *Engine {
	return &Engine{tpl: tpl, settings: settings, logger: logging.OrNop(logger)}
}

// Apply runs the chain over every cell and returns the fixed rows together
// with the audit trail, ordered by row then template column.
func (e *Engine) Apply(rows []*types.Row) ([]*types.Row, []types.Change) {
	fixed := make([]*types.Row, len(rows))
	var changes []types.Change

	for i, row := range rows {
		out := row.Clone()

		for c := range e.tpl.Columns {
			col := &e.tpl.Columns[c]
			before, ok := out.Data[col.Key]
			if !ok {
				continue
			}

			after, applied := e.FixValue(col, before)
			if after == before {
				continue
			}

			out.Data[col.Key] = after
			if meta, ok := out.Meta[col.Key]; ok {
				meta.SetCurrent(after)
			}
			changes = append(changes, types.Change{
				Row:    row.RowIndex,
				Column: col.FieldName,
				Before: before,
				After:  after,
				Fixes:  applied,
			})
		}

		fixed[i] = out
	}

	e.logger.Debug("Auto-fix changed %d cell(s) across %d row(s)", len(changes), len(rows))
	return fixed, changes
}

// FixValue runs the chain on a single value and reports which steps
// changed it.
func (e *Engine) FixValue(col *template.ColumnRule, value string) (string, []string) {
	s := e.settings
	var applied []string

	step := func(fix Fix, enabled bool, fn func(string) string) {
		if !enabled {
			return
		}
		if next := fn(value); next != value {
			value = next
			applied = append(applied, string(fix))
		}
	}

	step(FixTrimWhitespace, s.TrimWhitespace, trimWhitespace)
	step(FixNormalizeLineBreaks, s.NormalizeLineBreaks, normalizeLineBreaks)
	step(FixRemoveSpecialChars, s.RemoveSpecialChars, func(v string) string {
		out := removeSpecialChars(v)
		if out == v {
			return v
		}
		// Deleting characters can expose whitespace the earlier steps would
		// have removed.
		if s.TrimWhitespace {
			out = trimWhitespace(out)
		}
		if s.NormalizeLineBreaks {
			out = normalizeLineBreaks(out)
		}
		return out
	})
	keepCanonical := func(fn func(string) string) func(string) string {
		return func(v string) string {
			if isCanonicalLabel(col, v) {
				return v
			}
			return fn(v)
		}
	}

	step(FixUppercaseCountryCodes, s.UppercaseCountryCodes && IsCountryColumn(col), keepCanonical(uppercase))
	step(FixTitleCaseNames, s.TitleCaseNames && IsNameColumn(col), keepCanonical(titleCase))
	step(FixRemoveCurrencySymbols, s.RemoveCurrencySymbols && col.Type.IsNumeric(), removeCurrencySymbols)
	step(FixStandardizeDates, s.StandardizeDates && col.Type.IsDate(), standardizeDate)
	step(FixRemoveThousandSeparators, s.RemoveThousandSeparators && col.Type.IsNumeric(), removeThousandSeparators)
	step(FixAlternativeLabels, len(col.AlternativeLabels) > 0, func(v string) string {
		return applyAlternativeLabels(col.AlternativeLabels, v)
	})

	return value, applied
}

// Apply is a convenience wrapper using the template's settings.
func Apply(rows []*types.Row, tpl *template.Template) ([]*types.Row, []types.Change) {
	return New(tpl, nil).Apply(rows)
}

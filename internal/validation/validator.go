// =============================================================================
// gridcheck - Validation Engine
// =============================================================================
//
// Classifies every cell of a dataset as valid, warning or error against a
// template and rolls the result up to row status.
//
// PASS STRUCTURE:
//   1. Per cell, in order (an error stops the remaining checks except hints):
//        requirement -> type -> list -> max length -> whitespace hint
//   2. Cross-field sweep (either_or, dependent) over the finished cells
//   3. Row status = worst cell status
//
// STATE:
//   A pass rewrites every CellMeta from scratch; only the value tracking
//   fields and Notes survive. Running a pass twice gives the same result.
//   The engine keeps nothing between passes.
//
// CONCURRENCY:
//   A pass is synchronous and single-threaded. Callers must not mutate the
//   rows while it runs.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/gridcheck/internal/autofix"
	"github.com/ginjaninja78/gridcheck/internal/dateutil"
	"github.com/ginjaninja78/gridcheck/internal/logging"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// Cell messages.
const (
	MsgRequiredMissing    = "Required field is missing"
	MsgConditionalMissing = "Conditionally required field is missing"
	MsgAutoFixAvailable   = "Auto-fix available"
	MsgNotInList          = "Value not in allowed list"
	MsgExtraWhitespace    = "Extra whitespace can be auto-fixed"
)

var (
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
	innerSpaceRun  = regexp.MustCompile(`\s{2,}`)
	anySpaceRun    = regexp.MustCompile(`\s+`)
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator runs validation passes for one template.
type Validator struct {
	tpl    *template.Template
	logger logging.Logger
}

// NewValidator returns a Validator. A nil logger discards debug output.
func NewValidator(tpl *template.Template, logger logging.Logger) *Validator {
	return &Validator{tpl: tpl, logger: logging.OrNop(logger)}
}

// Validate runs a full pass with a discarding logger.
func Validate(rows []*types.Row, tpl *template.Template) *Result {
	return NewValidator(tpl, nil).ValidateAll(rows)
}

// ValidateAll rewrites the metadata of every cell in rows and returns the
// pass statistics and the flattened issue list.
func (v *Validator) ValidateAll(rows []*types.Row) *Result {
	unconditioned := make(map[string]bool)

	for _, row := range rows {
		for c := range v.tpl.Columns {
			col := &v.tpl.Columns[c]
			if col.Requirement == template.Conditional && !col.HasConditions() && !unconditioned[col.Key] {
				unconditioned[col.Key] = true
				v.logger.Debug("Column '%s' is conditional but has no machine-checkable conditions", col.FieldName)
			}
			v.validateCell(row, col)
		}
	}

	v.applyComplexRules(rows)

	for _, row := range rows {
		row.RecomputeStatus()
	}

	result := &Result{
		Stats:  ComputeStats(rows, v.tpl),
		Issues: collectIssues(rows, v.tpl),
	}
	result.IsValid = result.Stats.ErrorCells == 0

	v.logger.Debug("Validated %d row(s): %d error cell(s), %d warning cell(s)",
		len(rows), result.Stats.ErrorCells, result.Stats.WarningCells)

	return result
}

// =============================================================================
// CELL CHECKS
// =============================================================================

// validateCell rewrites the metadata of one cell.
func (v *Validator) validateCell(row *types.Row, col *template.ColumnRule) {
	value, ok := row.Data[col.Key]
	if !ok {
		row.Data[col.Key] = ""
	}

	meta, ok := row.Meta[col.Key]
	if !ok {
		meta = types.NewCellMeta(value)
		row.Meta[col.Key] = meta
	}
	if meta.CurrentValue != value {
		meta.SetCurrent(value)
	}
	meta.Reset()

	trimmed := strings.TrimSpace(value)
	empty := trimmed == ""

	// 1. Requirement.
	switch col.Requirement {
	case template.Required:
		if empty {
			meta.AddError(types.KindRequiredMissing, MsgRequiredMissing)
		}
	case template.Conditional:
		if col.HasConditions() {
			meta.ConditionalTriggered = EvaluateRequirement(col.ConditionalRequirement, row, v.tpl)
			if meta.ConditionalTriggered && empty {
				meta.AddError(types.KindConditionallyRequiredMissing, MsgConditionalMissing)
			}
		}
	}

	if meta.HasError() || empty {
		finish(meta)
		return
	}

	// 2. Type.
	checkType(meta, col, value)

	// 3. List.
	if !meta.HasError() && col.Type == template.TypeList && len(col.AllowedValues) > 0 {
		checkList(meta, col, trimmed)
	}

	// 4. Max length.
	if !meta.HasError() && col.MaxLength > 0 {
		if n := utf8.RuneCountInString(value); n > col.MaxLength {
			meta.AddError(types.KindExceedsMaxLength,
				fmt.Sprintf("Exceeds maximum length of %d characters (%d)", col.MaxLength, n))
		}
	}

	finish(meta)

	// 5. Whitespace hint. Only a clean cell is escalated.
	if meta.ValidationStatus == types.StatusValid && hasExtraWhitespace(value) {
		meta.AddWarning(types.KindAutoFixableWhitespace, MsgExtraWhitespace)
		meta.Suggest(strings.TrimSpace(anySpaceRun.ReplaceAllString(value, " ")))
	}
}

// finish marks a cell without findings as valid.
func finish(meta *types.CellMeta) {
	if meta.ValidationStatus == types.StatusPending {
		meta.ValidationStatus = types.StatusValid
	}
}

// checkType verifies the value against the column type. A value that only
// fails because of characters auto-fix would remove gets a warning with the
// cleaned value as suggestion.
func checkType(meta *types.CellMeta, col *template.ColumnRule, value string) {
	switch {
	case col.Type.IsDate():
		if dateutil.IsDate(value) {
			return
		}
		if candidate := dateutil.Standardize(autofix.CleanText(value)); dateutil.IsDate(candidate) {
			meta.AddWarning(types.KindAutoFixableType, MsgAutoFixAvailable)
			meta.Suggest(candidate)
			return
		}
		meta.AddError(types.KindInvalidType, "Invalid date")

	case col.Type == template.TypeInteger || col.Type == template.TypeWhole:
		checkNumber(meta, value, isInteger, "Invalid integer")

	case col.Type.IsNumeric():
		checkNumber(meta, value, isNumber, "Invalid number")

	case col.Type == template.TypeTime:
		if !dateutil.IsTime(value) {
			meta.AddError(types.KindInvalidType, "Invalid time")
		}
	}
}

func checkNumber(meta *types.CellMeta, value string, valid func(string) bool, msg string) {
	if valid(strings.TrimSpace(value)) {
		return
	}
	if cleaned := autofix.CleanNumber(value); cleaned != "" && valid(cleaned) {
		meta.AddWarning(types.KindAutoFixableType, MsgAutoFixAvailable)
		meta.Suggest(cleaned)
		return
	}
	meta.AddError(types.KindInvalidType, msg)
}

func isInteger(s string) bool {
	return integerPattern.MatchString(s)
}

func isNumber(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// checkList matches the trimmed value against the allowed values.
func checkList(meta *types.CellMeta, col *template.ColumnRule, trimmed string) {
	for _, allowed := range col.AllowedValues {
		if strings.TrimSpace(allowed) == trimmed {
			return
		}
	}

	for _, allowed := range col.AllowedValues {
		canonical := strings.TrimSpace(allowed)
		if strings.EqualFold(canonical, trimmed) {
			meta.AddWarning(types.KindCaseMismatch, fmt.Sprintf("Case mismatch: expected '%s'", canonical))
			meta.Suggest(canonical)
			return
		}
	}

	if suggestion, ok := FuzzyMatch(col, trimmed); ok {
		meta.AddWarning(types.KindFuzzySuggestion, fmt.Sprintf("Did you mean '%s'?", suggestion))
		meta.Suggest(suggestion)
		return
	}

	meta.AddError(types.KindInvalidListValue, MsgNotInList)
}

// hasExtraWhitespace reports leading/trailing whitespace or an inner run of
// two or more whitespace characters.
func hasExtraWhitespace(v string) bool {
	return strings.TrimSpace(v) != v || innerSpaceRun.MatchString(v)
}

// =============================================================================
// CROSS-FIELD RULES
// =============================================================================

// applyComplexRules runs the either_or and dependent sweeps.
func (v *Validator) applyComplexRules(rows []*types.Row) {
	for _, rule := range v.tpl.ComplexRules {
		switch rule.Kind {
		case template.RuleEitherOr:
			groups := v.resolveGroups(rule.Groups)
			if len(groups) == 0 {
				continue
			}
			for _, row := range rows {
				satisfied := false
				for _, group := range groups {
					if groupFilled(row, group) {
						satisfied = true
						break
					}
				}
				if satisfied {
					continue
				}
				for _, group := range groups {
					for _, col := range group {
						markCell(row, col, types.StatusError, rule.Description)
					}
				}
			}

		case template.RuleDependent:
			trigger, ok1 := v.tpl.ColumnByLetter(rule.Trigger)
			dependent, ok2 := v.tpl.ColumnByLetter(rule.Dependent)
			if !ok1 || !ok2 {
				v.logger.Warn("Dependent rule '%s' references unknown columns %s/%s", rule.Description, rule.Trigger, rule.Dependent)
				continue
			}
			severity := types.StatusError
			if rule.Severity == template.SeverityWarning {
				severity = types.StatusWarning
			}
			for _, row := range rows {
				if !isBlank(row.Data[trigger.Key]) && isBlank(row.Data[dependent.Key]) {
					markCell(row, dependent, severity, rule.Description)
				}
			}
		}
	}
}

// resolveGroups turns letter groups into column groups, dropping groups
// that reference unknown letters.
func (v *Validator) resolveGroups(letterGroups [][]string) [][]*template.ColumnRule {
	var groups [][]*template.ColumnRule
	for _, letters := range letterGroups {
		var group []*template.ColumnRule
		for _, letter := range letters {
			col, ok := v.tpl.ColumnByLetter(letter)
			if !ok {
				v.logger.Warn("Either-or group references unknown column %s", letter)
				group = nil
				break
			}
			group = append(group, col)
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

func groupFilled(row *types.Row, group []*template.ColumnRule) bool {
	for _, col := range group {
		if isBlank(row.Data[col.Key]) {
			return false
		}
	}
	return true
}

func markCell(row *types.Row, col *template.ColumnRule, severity types.Status, msg string) {
	meta, ok := row.Meta[col.Key]
	if !ok {
		return
	}
	if severity == types.StatusError {
		if !meta.HasErrorMessage(msg) {
			meta.AddError(types.KindComplexRuleViolated, msg)
		}
		return
	}
	meta.AddWarning(types.KindComplexRuleViolated, msg)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

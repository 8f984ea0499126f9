// =============================================================================
// gridcheck - Template Rule Model
// =============================================================================
//
// A Template is the contract an uploaded file is checked against. It is built
// once by the extractor (or loaded from a saved file) and then only edited
// explicitly; it carries no hidden state besides the lookup indexes rebuilt by
// Finalize.
//
// STRUCTURE:
//   Template
//   ├── Columns          ordered ColumnRule list (one per template column)
//   ├── LookupTables     secondary sheets: name -> headers/rows/key map
//   ├── ComplexRules     cross-field rules (either_or, dependent)
//   ├── AutoFixSettings  per-template auto-fix toggles
//   └── ExportSettings   per-format export defaults
//
// FIELD KEYS:
//   Every column gets a canonical Key (lowercase, non-alphanumerics removed).
//   Dataset rows and cell metadata are keyed by it, so lookups by field name
//   never need a case-insensitive scan.
//
// =============================================================================

package template

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// =============================================================================
// ENUMERATIONS
// =============================================================================

// ColumnType is the declared data type of a column.
type ColumnType string

const (
	TypeText     ColumnType = "text"
	TypeList     ColumnType = "list"
	TypeInteger  ColumnType = "integer"
	TypeWhole    ColumnType = "whole"
	TypeDecimal  ColumnType = "decimal"
	TypeNumber   ColumnType = "number"
	TypeDate     ColumnType = "date"
	TypeDateTime ColumnType = "datetime"
	TypeCurrency ColumnType = "currency"
	TypeTime     ColumnType = "time"
	TypeCustom   ColumnType = "custom"
)

// IsNumeric reports whether values of this type are numbers.
func (t ColumnType) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeWhole, TypeDecimal, TypeNumber, TypeCurrency:
		return true
	}
	return false
}

// IsDate reports whether values of this type are calendar dates.
func (t ColumnType) IsDate() bool {
	return t == TypeDate || t == TypeDateTime
}

// Requirement is how strongly a column must be filled.
type Requirement string

const (
	Required    Requirement = "required"
	Conditional Requirement = "conditional"
	Optional    Requirement = "optional"
)

// Label returns the capitalized form used in requirement rows.
func (r Requirement) Label() string {
	switch r {
	case Required:
		return "Required"
	case Conditional:
		return "Conditional"
	default:
		return "Optional"
	}
}

// Operator is a condition comparison.
type Operator string

const (
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpContains   Operator = "contains"
)

// NeedsValue reports whether the operator compares against Condition.Value.
func (o Operator) NeedsValue() bool {
	return o != OpIsEmpty && o != OpIsNotEmpty
}

// Connective joins the conditions of a conditional requirement.
type Connective string

const (
	And Connective = "AND"
	Or  Connective = "OR"
)

// RuleKind distinguishes the cross-field rule variants.
type RuleKind string

const (
	RuleEitherOr  RuleKind = "either_or"
	RuleDependent RuleKind = "dependent"
)

// Severity of a dependent rule violation.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// =============================================================================
// RULE TYPES
// =============================================================================

// Condition is one predicate over a sibling cell in the same row.
type Condition struct {
	// Field is the field name of the referenced column.
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionalRequirement makes a conditional column required for the rows
// where it evaluates to true.
type ConditionalRequirement struct {
	Operator   Connective  `json:"operator" yaml:"operator"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
}

// ColumnRule is the template's statement about one column.
type ColumnRule struct {
	// Index is the 1-based column position.
	Index int `json:"index" yaml:"index"`

	// ColumnLetter is the spreadsheet letter (A, B, ..., AA).
	ColumnLetter string `json:"columnLetter" yaml:"columnLetter"`

	FieldName   string      `json:"fieldName" yaml:"fieldName"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ColumnType  `json:"type" yaml:"type"`
	Requirement Requirement `json:"requirement" yaml:"requirement"`

	// AllowedValues is the enumeration for list columns, in template order.
	AllowedValues []string `json:"allowedValues,omitempty" yaml:"allowedValues,omitempty"`

	// ListSource is the verbatim range reference of a list validation, kept
	// when the values came from (or could not be resolved against) another sheet.
	ListSource string `json:"listSource,omitempty" yaml:"listSource,omitempty"`

	MaxLength  int    `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	DateFormat string `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty"`

	// AlternativeLabels maps a synonym (matched case-insensitively) to the
	// canonical value auto-fix should write.
	AlternativeLabels map[string]string `json:"alternativeLabels,omitempty" yaml:"alternativeLabels,omitempty"`

	ConditionalRequirement *ConditionalRequirement `json:"conditionalRequirement,omitempty" yaml:"conditionalRequirement,omitempty"`

	// Key is the canonical field key, rebuilt by Finalize.
	Key string `json:"-" yaml:"-"`
}

// HasConditions reports whether the column has machine-checkable conditions.
func (c *ColumnRule) HasConditions() bool {
	return c.ConditionalRequirement != nil && len(c.ConditionalRequirement.Conditions) > 0
}

// LookupTable is a secondary sheet of codes.
type LookupTable struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`

	// KeyToValue maps the uppercased first-column value to the second column.
	KeyToValue map[string]string `json:"keyToValue" yaml:"keyToValue"`
}

// CrossFieldRule is a rule whose predicate spans several columns of a row.
// Columns are referenced by letter.
type CrossFieldRule struct {
	Kind        RuleKind `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`

	// Groups is used by either_or: at least one group must be fully filled.
	Groups [][]string `json:"groups,omitempty" yaml:"groups,omitempty"`

	// Trigger, Dependent, Condition and Severity are used by dependent rules.
	Trigger   string   `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Dependent string   `json:"dependent,omitempty" yaml:"dependent,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Severity  Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// AutoFixSettings holds the per-template auto-fix toggles.
type AutoFixSettings struct {
	TrimWhitespace           bool `json:"trimWhitespace" yaml:"trimWhitespace"`
	NormalizeLineBreaks      bool `json:"normalizeLineBreaks" yaml:"normalizeLineBreaks"`
	RemoveSpecialChars       bool `json:"removeSpecialChars" yaml:"removeSpecialChars"`
	UppercaseCountryCodes    bool `json:"uppercaseCountryCodes" yaml:"uppercaseCountryCodes"`
	TitleCaseNames           bool `json:"titleCaseNames" yaml:"titleCaseNames"`
	RemoveCurrencySymbols    bool `json:"removeCurrencySymbols" yaml:"removeCurrencySymbols"`
	StandardizeDates         bool `json:"standardizeDates" yaml:"standardizeDates"`
	RemoveThousandSeparators bool `json:"removeThousandSeparators" yaml:"removeThousandSeparators"`
}

// DefaultAutoFixSettings returns the defaults: trim and special-character
// removal on, everything else off.
func DefaultAutoFixSettings() AutoFixSettings {
	return AutoFixSettings{
		TrimWhitespace:     true,
		RemoveSpecialChars: true,
	}
}

// FormatSettings are the export defaults for one output format.
type FormatSettings struct {
	FilenamePattern    string `json:"filenamePattern" yaml:"filenamePattern"`
	IncludeHeader      bool   `json:"includeHeader" yaml:"includeHeader"`
	IncludeRequirement bool   `json:"includeRequirement" yaml:"includeRequirement"`
}

// ExportSettings are the per-format export defaults.
type ExportSettings struct {
	XLSX          FormatSettings `json:"xlsx" yaml:"xlsx"`
	TXT           FormatSettings `json:"txt" yaml:"txt"`
	IncludeStatus bool           `json:"includeStatus" yaml:"includeStatus"`
}

// DefaultExportSettings returns the export defaults.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		XLSX: FormatSettings{FilenamePattern: "{template}_{date}", IncludeHeader: true, IncludeRequirement: true},
		TXT:  FormatSettings{FilenamePattern: "{template}_{date}", IncludeHeader: true, IncludeRequirement: false},
	}
}

// =============================================================================
// TEMPLATE
// =============================================================================

// Template is the full rule set for one file layout.
type Template struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	Columns         []ColumnRule           `json:"columns" yaml:"columns"`
	LookupTables    map[string]LookupTable `json:"lookupTables,omitempty" yaml:"lookupTables,omitempty"`
	ComplexRules    []CrossFieldRule       `json:"complexRules,omitempty" yaml:"complexRules,omitempty"`
	AutoFixSettings AutoFixSettings        `json:"autoFixSettings" yaml:"autoFixSettings"`
	ExportSettings  ExportSettings         `json:"exportSettings" yaml:"exportSettings"`

	byKey    map[string]int
	byLetter map[string]int
}

// New returns an empty template with a fresh ID and default settings.
func New(name string) *Template {
	return &Template{
		ID:              uuid.New().String(),
		Name:            name,
		CreatedAt:       time.Now().UTC(),
		LookupTables:    make(map[string]LookupTable),
		AutoFixSettings: DefaultAutoFixSettings(),
		ExportSettings:  DefaultExportSettings(),
	}
}

// Finalize fills derived fields and rebuilds the lookup indexes. It must be
// called after the column list changes.
func (t *Template) Finalize() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.LookupTables == nil {
		t.LookupTables = make(map[string]LookupTable)
	}

	t.byKey = make(map[string]int, len(t.Columns))
	t.byLetter = make(map[string]int, len(t.Columns))

	for i := range t.Columns {
		col := &t.Columns[i]
		if col.Index == 0 {
			col.Index = i + 1
		}
		if col.ColumnLetter == "" {
			col.ColumnLetter = workbook.ColumnLetter(col.Index)
		}
		col.ColumnLetter = strings.ToUpper(col.ColumnLetter)
		if col.Type == "" {
			col.Type = TypeText
		}
		if col.Requirement == "" {
			col.Requirement = Optional
		}
		if len(col.AlternativeLabels) > 0 {
			labels := make(map[string]string, len(col.AlternativeLabels))
			for k, v := range col.AlternativeLabels {
				labels[strings.ToLower(strings.TrimSpace(k))] = v
			}
			col.AlternativeLabels = labels
		}

		key := CanonicalName(col.FieldName)
		if key == "" {
			key = "column" + strconv.Itoa(col.Index)
		}
		if _, taken := t.byKey[key]; taken {
			key = key + strconv.Itoa(col.Index)
		}
		col.Key = key

		t.byKey[key] = i
		t.byLetter[col.ColumnLetter] = i
	}
}

// Column finds a column by field name, compared canonically.
func (t *Template) Column(name string) (*ColumnRule, bool) {
	if t.byKey == nil {
		t.Finalize()
	}
	i, ok := t.byKey[CanonicalName(name)]
	if !ok {
		return nil, false
	}
	return &t.Columns[i], true
}

// ColumnByLetter finds a column by spreadsheet letter.
func (t *Template) ColumnByLetter(letter string) (*ColumnRule, bool) {
	if t.byLetter == nil {
		t.Finalize()
	}
	i, ok := t.byLetter[strings.ToUpper(strings.TrimSpace(letter))]
	if !ok {
		return nil, false
	}
	return &t.Columns[i], true
}

// FieldNames returns the column field names in template order.
func (t *Template) FieldNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.FieldName
	}
	return names
}

// =============================================================================
// HELPERS
// =============================================================================

// CanonicalName lowercases s and removes everything but letters and digits.
func CanonicalName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

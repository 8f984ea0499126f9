// =============================================================================
// gridcheck - Shared Dataset Types
// =============================================================================
//
// This package contains the dataset shapes shared by the engines, kept here
// to avoid import cycles. Types defined here are used by:
//   - mapper      (creates rows from an upload)
//   - autofix     (rewrites values, records changes)
//   - validation  (rewrites cell metadata on every pass)
//   - export      (filters rows by status)
//   - session     (owns the current dataset)
//
// KEYS:
//   Row.Data and Row.Meta are keyed by the template column's canonical key
//   (see template.CanonicalName), never by the display name.
//
// =============================================================================

package types

// =============================================================================
// STATUS
// =============================================================================

// Status is the validation status of a cell or a row.
type Status string

const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// rank orders statuses by severity.
func (s Status) rank() int {
	switch s {
	case StatusValid:
		return 1
	case StatusWarning:
		return 2
	case StatusError:
		return 3
	default:
		return 0
	}
}

// Worse returns the more severe of a and b.
func Worse(a, b Status) Status {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// =============================================================================
// ISSUES
// =============================================================================

// IssueKind names the kind of a cell finding.
type IssueKind string

// Cell error kinds.
const (
	KindRequiredMissing              IssueKind = "required-missing"
	KindConditionallyRequiredMissing IssueKind = "conditionally-required-missing"
	KindInvalidType                  IssueKind = "invalid-type"
	KindInvalidListValue             IssueKind = "invalid-list-value"
	KindExceedsMaxLength             IssueKind = "exceeds-max-length"
	KindComplexRuleViolated          IssueKind = "complex-rule-violated"
)

// Cell warning kinds.
const (
	KindAutoFixableCase       IssueKind = "auto-fixable-case"
	KindAutoFixableWhitespace IssueKind = "auto-fixable-whitespace"
	KindAutoFixableType       IssueKind = "auto-fixable-type"
	KindCaseMismatch          IssueKind = "case-mismatch"
	KindFuzzySuggestion       IssueKind = "fuzzy-suggestion"
)

// Issue is one error or warning attached to a cell.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	Severity Status    `json:"severity"`
	Message  string    `json:"message"`
}

// =============================================================================
// CELL METADATA
// =============================================================================

// CellMeta is the per-cell validation state. Everything except the value
// tracking fields and Notes is rewritten on every validation pass.
type CellMeta struct {
	OriginalValue string `json:"originalValue"`
	CurrentValue  string `json:"currentValue"`
	IsModified    bool   `json:"isModified"`

	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Issues   []Issue  `json:"issues,omitempty"`

	ValidationStatus     Status  `json:"validationStatus"`
	CanAutoFix           bool    `json:"canAutoFix"`
	ConditionalTriggered bool    `json:"conditionalTriggered"`
	SuggestedFix         *string `json:"suggestedFix,omitempty"`

	// Notes are informational messages that survive validation passes, such
	// as a column missing from the upload. They never change the status.
	Notes []string `json:"notes,omitempty"`
}

// NewCellMeta returns metadata for a freshly loaded value.
func NewCellMeta(value string) *CellMeta {
	return &CellMeta{
		OriginalValue:    value,
		CurrentValue:     value,
		Errors:           []string{},
		Warnings:         []string{},
		ValidationStatus: StatusPending,
	}
}

// Reset clears everything a validation pass recomputes.
func (m *CellMeta) Reset() {
	m.Errors = m.Errors[:0]
	m.Warnings = m.Warnings[:0]
	m.Issues = m.Issues[:0]
	m.ValidationStatus = StatusPending
	m.CanAutoFix = false
	m.ConditionalTriggered = false
	m.SuggestedFix = nil
}

// AddError records an error and marks the cell as error.
func (m *CellMeta) AddError(kind IssueKind, msg string) {
	m.Errors = append(m.Errors, msg)
	m.Issues = append(m.Issues, Issue{Kind: kind, Severity: StatusError, Message: msg})
	m.ValidationStatus = StatusError
}

// AddWarning records a warning; the status becomes warning unless the cell
// already has an error.
func (m *CellMeta) AddWarning(kind IssueKind, msg string) {
	m.Warnings = append(m.Warnings, msg)
	m.Issues = append(m.Issues, Issue{Kind: kind, Severity: StatusWarning, Message: msg})
	m.ValidationStatus = Worse(m.ValidationStatus, StatusWarning)
}

// Suggest attaches an auto-fix suggestion.
func (m *CellMeta) Suggest(value string) {
	m.SuggestedFix = &value
	m.CanAutoFix = true
}

// HasError reports whether the cell has at least one error.
func (m *CellMeta) HasError() bool {
	return len(m.Errors) > 0
}

// HasErrorMessage reports whether msg is already among the errors.
func (m *CellMeta) HasErrorMessage(msg string) bool {
	for _, e := range m.Errors {
		if e == msg {
			return true
		}
	}
	return false
}

// SetCurrent updates the tracked current value.
func (m *CellMeta) SetCurrent(value string) {
	m.CurrentValue = value
	m.IsModified = value != m.OriginalValue
}

// Clone returns a deep copy.
func (m *CellMeta) Clone() *CellMeta {
	c := *m
	c.Errors = append([]string{}, m.Errors...)
	c.Warnings = append([]string{}, m.Warnings...)
	c.Issues = append([]Issue(nil), m.Issues...)
	c.Notes = append([]string(nil), m.Notes...)
	if m.SuggestedFix != nil {
		fix := *m.SuggestedFix
		c.SuggestedFix = &fix
	}
	return &c
}

// =============================================================================
// ROW
// =============================================================================

// Row is one data row of an uploaded file.
type Row struct {
	// RowIndex is the 1-based row number in the uploaded file.
	RowIndex int `json:"rowIndex"`

	// Data maps a column key to the raw cell string.
	Data map[string]string `json:"data"`

	// Meta maps a column key to the cell metadata.
	Meta map[string]*CellMeta `json:"metadata"`

	RowStatus Status `json:"rowStatus"`
}

// NewRow returns an empty pending row.
func NewRow(rowIndex int, columns int) *Row {
	return &Row{
		RowIndex:  rowIndex,
		Data:      make(map[string]string, columns),
		Meta:      make(map[string]*CellMeta, columns),
		RowStatus: StatusPending,
	}
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	c := &Row{
		RowIndex:  r.RowIndex,
		Data:      make(map[string]string, len(r.Data)),
		Meta:      make(map[string]*CellMeta, len(r.Meta)),
		RowStatus: r.RowStatus,
	}
	for k, v := range r.Data {
		c.Data[k] = v
	}
	for k, m := range r.Meta {
		c.Meta[k] = m.Clone()
	}
	return c
}

// RecomputeStatus sets RowStatus to the worst cell status. A row whose cells
// were never validated stays pending.
func (r *Row) RecomputeStatus() {
	status := StatusPending
	for _, m := range r.Meta {
		status = Worse(status, m.ValidationStatus)
	}
	r.RowStatus = status
}

// =============================================================================
// CHANGE
// =============================================================================

// Change records one auto-fix rewrite for the audit trail.
type Change struct {
	// Row is the 1-based row number in the uploaded file.
	Row int `json:"row"`

	// Column is the field name of the column.
	Column string `json:"column"`

	Before string `json:"before"`
	After  string `json:"after"`

	// Fixes lists the auto-fix steps that changed the value, in order.
	Fixes []string `json:"fixes,omitempty"`
}

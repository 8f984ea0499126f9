package validation

import (
	"math"
	"reflect"
	"testing"

	"github.com/ginjaninja78/gridcheck/internal/autofix"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// =============================================================================
// FIXTURES
// =============================================================================

func newTemplate(columns ...template.ColumnRule) *template.Template {
	tpl := template.New("test")
	tpl.Columns = columns
	tpl.Finalize()
	return tpl
}

func newRow(tpl *template.Template, values map[string]string) *types.Row {
	row := types.NewRow(2, len(tpl.Columns))
	for _, col := range tpl.Columns {
		v := values[col.FieldName]
		row.Data[col.Key] = v
		row.Meta[col.Key] = types.NewCellMeta(v)
	}
	return row
}

func cell(t *testing.T, tpl *template.Template, row *types.Row, field string) *types.CellMeta {
	t.Helper()
	col, ok := tpl.Column(field)
	if !ok {
		t.Fatalf("unknown field %s", field)
	}
	return row.Meta[col.Key]
}

func suggestion(meta *types.CellMeta) string {
	if meta.SuggestedFix == nil {
		return ""
	}
	return *meta.SuggestedFix
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestRequiredMissing(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "EmpID", Requirement: template.Required})
	row := newRow(tpl, map[string]string{"EmpID": ""})

	Validate([]*types.Row{row}, tpl)

	meta := cell(t, tpl, row, "EmpID")
	if !reflect.DeepEqual(meta.Errors, []string{MsgRequiredMissing}) {
		t.Errorf("errors = %v", meta.Errors)
	}
	if row.RowStatus != types.StatusError {
		t.Errorf("row status = %s, want error", row.RowStatus)
	}
}

func TestConditionalTrigger(t *testing.T) {
	tpl := newTemplate(
		template.ColumnRule{FieldName: "StateCode", Requirement: template.Conditional,
			ConditionalRequirement: &template.ConditionalRequirement{
				Operator:   template.And,
				Conditions: []template.Condition{{Field: "CountryCode", Operator: template.OpEquals, Value: "US"}},
			}},
		template.ColumnRule{FieldName: "CountryCode", Requirement: template.Optional},
	)
	row := newRow(tpl, map[string]string{"CountryCode": "US", "StateCode": ""})
	rows := []*types.Row{row}

	Validate(rows, tpl)
	state := cell(t, tpl, row, "StateCode")
	if !state.ConditionalTriggered {
		t.Error("condition should trigger for US")
	}
	if !reflect.DeepEqual(state.Errors, []string{MsgConditionalMissing}) {
		t.Errorf("errors = %v", state.Errors)
	}

	row.Data["countrycode"] = "CA"
	Validate(rows, tpl)
	state = cell(t, tpl, row, "StateCode")
	if state.ConditionalTriggered || len(state.Errors) != 0 {
		t.Errorf("after CA: triggered=%v errors=%v", state.ConditionalTriggered, state.Errors)
	}
	if row.RowStatus != types.StatusValid {
		t.Errorf("row status = %s, want valid", row.RowStatus)
	}
}

func TestListCaseFix(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "Status", Type: template.TypeList, AllowedValues: []string{"A", "I", "T"}})
	rows := []*types.Row{newRow(tpl, map[string]string{"Status": "a "})}

	fixed, _ := autofix.Apply(rows, tpl)
	if got := fixed[0].Data["status"]; got != "a" {
		t.Fatalf("auto-fixed value = %q, want a", got)
	}

	Validate(fixed, tpl)
	meta := cell(t, tpl, fixed[0], "Status")
	if meta.ValidationStatus != types.StatusWarning {
		t.Errorf("status = %s, want warning", meta.ValidationStatus)
	}
	if suggestion(meta) != "A" || !meta.CanAutoFix {
		t.Errorf("suggestion = %q canAutoFix=%v", suggestion(meta), meta.CanAutoFix)
	}
	if meta.Issues[0].Kind != types.KindCaseMismatch {
		t.Errorf("kind = %s", meta.Issues[0].Kind)
	}
}

func TestDateAcceptsBothForms(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "HireDate", Type: template.TypeDate})
	for _, v := range []string{"01/05/2024", "2024-01-05", "1/5/24"} {
		row := newRow(tpl, map[string]string{"HireDate": v})
		Validate([]*types.Row{row}, tpl)
		if got := row.RowStatus; got != types.StatusValid {
			t.Errorf("%q: status = %s, want valid", v, got)
		}
	}
}

func TestEitherOr(t *testing.T) {
	conditional := func(name string) template.ColumnRule {
		return template.ColumnRule{FieldName: name, Requirement: template.Conditional}
	}
	tpl := newTemplate(conditional("FirstName"), conditional("LastName"), conditional("OwnerName"))
	tpl.ComplexRules = []template.CrossFieldRule{{
		Kind:        template.RuleEitherOr,
		Description: "Either First Name + Last Name or Owner Name is required",
		Groups:      [][]string{{"A", "B"}, {"C"}},
	}}

	tests := []struct {
		name   string
		values map[string]string
		want   types.Status
	}{
		{"nothing filled", map[string]string{}, types.StatusError},
		{"person", map[string]string{"FirstName": "Ada", "LastName": "Lovelace"}, types.StatusValid},
		{"owner", map[string]string{"OwnerName": "Acme"}, types.StatusValid},
		{"half a person", map[string]string{"FirstName": "Ada"}, types.StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := newRow(tpl, tt.values)
			Validate([]*types.Row{row}, tpl)
			for _, field := range []string{"FirstName", "LastName", "OwnerName"} {
				if got := cell(t, tpl, row, field).ValidationStatus; got != tt.want {
					t.Errorf("%s status = %s, want %s", field, got, tt.want)
				}
			}
			if row.RowStatus != tt.want {
				t.Errorf("row status = %s, want %s", row.RowStatus, tt.want)
			}
		})
	}
}

func TestIntegerWithCommas(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "Shares", Type: template.TypeInteger})

	t.Run("toggle on", func(t *testing.T) {
		tpl.AutoFixSettings.RemoveThousandSeparators = true
		defer func() { tpl.AutoFixSettings.RemoveThousandSeparators = false }()

		fixed, _ := autofix.Apply([]*types.Row{newRow(tpl, map[string]string{"Shares": "1,000"})}, tpl)
		if fixed[0].Data["shares"] != "1000" {
			t.Fatalf("value = %q", fixed[0].Data["shares"])
		}
		Validate(fixed, tpl)
		if fixed[0].RowStatus != types.StatusValid {
			t.Errorf("status = %s, want valid", fixed[0].RowStatus)
		}
	})

	t.Run("toggle off", func(t *testing.T) {
		row := newRow(tpl, map[string]string{"Shares": "1,000"})
		Validate([]*types.Row{row}, tpl)
		meta := cell(t, tpl, row, "Shares")
		if !reflect.DeepEqual(meta.Warnings, []string{MsgAutoFixAvailable}) {
			t.Errorf("warnings = %v", meta.Warnings)
		}
		if meta.ValidationStatus != types.StatusWarning || suggestion(meta) != "1000" {
			t.Errorf("status = %s suggestion = %q", meta.ValidationStatus, suggestion(meta))
		}
	})
}

// =============================================================================
// CELL CHECKS
// =============================================================================

func TestTypeChecks(t *testing.T) {
	tests := []struct {
		typ        template.ColumnType
		value      string
		want       types.Status
		suggestion string
	}{
		{template.TypeInteger, "42", types.StatusValid, ""},
		{template.TypeInteger, "-7", types.StatusValid, ""},
		{template.TypeInteger, "4.2", types.StatusError, ""},
		{template.TypeWhole, "abc", types.StatusError, ""},
		{template.TypeDecimal, "3.14", types.StatusValid, ""},
		{template.TypeNumber, "NaN", types.StatusError, ""},
		{template.TypeNumber, "Inf", types.StatusError, ""},
		{template.TypeCurrency, "$12.50", types.StatusWarning, "12.50"},
		{template.TypeDate, "02/30/2024", types.StatusError, ""},
		{template.TypeDate, "01/05/2024\x00", types.StatusWarning, "01/05/2024"},
		{template.TypeTime, "13:45", types.StatusValid, ""},
		{template.TypeTime, "noon", types.StatusError, ""},
		{template.TypeText, "anything", types.StatusValid, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.value, func(t *testing.T) {
			tpl := newTemplate(template.ColumnRule{FieldName: "F", Type: tt.typ})
			row := newRow(tpl, map[string]string{"F": tt.value})
			Validate([]*types.Row{row}, tpl)

			meta := cell(t, tpl, row, "F")
			if meta.ValidationStatus != tt.want {
				t.Errorf("status = %s (%v %v), want %s", meta.ValidationStatus, meta.Errors, meta.Warnings, tt.want)
			}
			if suggestion(meta) != tt.suggestion {
				t.Errorf("suggestion = %q, want %q", suggestion(meta), tt.suggestion)
			}
		})
	}
}

func TestListChecks(t *testing.T) {
	col := template.ColumnRule{
		FieldName:         "Department",
		Type:              template.TypeList,
		AllowedValues:     []string{"Engineering", "Finance", "HR"},
		AlternativeLabels: map[string]string{"eng": "Engineering"},
	}

	tests := []struct {
		value      string
		want       types.Status
		kind       types.IssueKind
		suggestion string
	}{
		{"Finance", types.StatusValid, "", ""},
		{"finance", types.StatusWarning, types.KindCaseMismatch, "Finance"},
		{"Engineerng", types.StatusWarning, types.KindFuzzySuggestion, "Engineering"},
		{"ENG", types.StatusWarning, types.KindFuzzySuggestion, "Engineering"},
		{"Legal", types.StatusError, types.KindInvalidListValue, ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			tpl := newTemplate(col)
			row := newRow(tpl, map[string]string{"Department": tt.value})
			Validate([]*types.Row{row}, tpl)

			meta := cell(t, tpl, row, "Department")
			if meta.ValidationStatus != tt.want {
				t.Fatalf("status = %s, want %s", meta.ValidationStatus, tt.want)
			}
			if tt.kind != "" && meta.Issues[0].Kind != tt.kind {
				t.Errorf("kind = %s, want %s", meta.Issues[0].Kind, tt.kind)
			}
			if suggestion(meta) != tt.suggestion {
				t.Errorf("suggestion = %q, want %q", suggestion(meta), tt.suggestion)
			}
		})
	}
}

func TestMaxLengthCountsRunes(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "Code", MaxLength: 3})

	row := newRow(tpl, map[string]string{"Code": "äöü"})
	Validate([]*types.Row{row}, tpl)
	if row.RowStatus != types.StatusValid {
		t.Errorf("3 runes: status = %s, want valid", row.RowStatus)
	}

	row = newRow(tpl, map[string]string{"Code": "abcd"})
	Validate([]*types.Row{row}, tpl)
	if meta := cell(t, tpl, row, "Code"); meta.Issues[0].Kind != types.KindExceedsMaxLength {
		t.Errorf("issues = %+v", meta.Issues)
	}
}

func TestWhitespaceHint(t *testing.T) {
	tpl := newTemplate(
		template.ColumnRule{FieldName: "Name"},
		template.ColumnRule{FieldName: "Code", MaxLength: 2},
	)
	row := newRow(tpl, map[string]string{"Name": " Ada  Lovelace", "Code": " abc "})
	Validate([]*types.Row{row}, tpl)

	name := cell(t, tpl, row, "Name")
	if name.ValidationStatus != types.StatusWarning || suggestion(name) != "Ada Lovelace" {
		t.Errorf("name = %s %q", name.ValidationStatus, suggestion(name))
	}
	if name.Warnings[0] != MsgExtraWhitespace {
		t.Errorf("warnings = %v", name.Warnings)
	}

	code := cell(t, tpl, row, "Code")
	if code.ValidationStatus != types.StatusError || len(code.Warnings) != 0 {
		t.Errorf("hint must not touch an error cell: %s %v", code.ValidationStatus, code.Warnings)
	}
}

func TestConditionalWithoutConditionsNeverErrors(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "Maybe", Requirement: template.Conditional,
		ConditionalRequirement: &template.ConditionalRequirement{Operator: template.And}})
	row := newRow(tpl, nil)
	Validate([]*types.Row{row}, tpl)
	if meta := cell(t, tpl, row, "Maybe"); meta.HasError() || meta.ConditionalTriggered {
		t.Errorf("meta = %+v", meta)
	}
}

func TestDependentRule(t *testing.T) {
	tpl := newTemplate(
		template.ColumnRule{FieldName: "State"},
		template.ColumnRule{FieldName: "Country", Requirement: template.Conditional},
	)
	tpl.ComplexRules = []template.CrossFieldRule{{
		Kind: template.RuleDependent, Description: "Country is required when State is provided",
		Trigger: "A", Dependent: "B", Condition: "not_empty", Severity: template.SeverityWarning,
	}}

	row := newRow(tpl, map[string]string{"State": "CA"})
	Validate([]*types.Row{row}, tpl)

	country := cell(t, tpl, row, "Country")
	if country.ValidationStatus != types.StatusWarning || country.Warnings[0] != "Country is required when State is provided" {
		t.Errorf("country = %s %v", country.ValidationStatus, country.Warnings)
	}

	tpl.ComplexRules[0].Severity = template.SeverityError
	Validate([]*types.Row{row}, tpl)
	if row.RowStatus != types.StatusError {
		t.Errorf("row status = %s, want error", row.RowStatus)
	}
}

// =============================================================================
// CONDITIONS
// =============================================================================

func TestEvaluateCondition(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "Country Code"}, template.ColumnRule{FieldName: "Notes"})
	row := newRow(tpl, map[string]string{"Country Code": " us ", "Notes": ""})

	tests := []struct {
		cond template.Condition
		want bool
	}{
		{template.Condition{Field: "country_code", Operator: template.OpEquals, Value: "US"}, true},
		{template.Condition{Field: "Country Code", Operator: template.OpNotEquals, Value: "US"}, false},
		{template.Condition{Field: "Country Code", Operator: template.OpNotEquals, Value: ""}, true},
		{template.Condition{Field: "Notes", Operator: template.OpIsEmpty}, true},
		{template.Condition{Field: "Notes", Operator: template.OpIsNotEmpty}, false},
		{template.Condition{Field: "Country Code", Operator: template.OpContains, Value: "U"}, true},
		{template.Condition{Field: "Notes", Operator: template.OpContains, Value: ""}, false},
		{template.Condition{Field: "Missing", Operator: template.OpIsEmpty}, true},
		{template.Condition{Field: "Notes", Operator: "bogus"}, false},
	}

	for _, tt := range tests {
		if got := EvaluateCondition(tt.cond, row, tpl); got != tt.want {
			t.Errorf("%+v = %v, want %v", tt.cond, got, tt.want)
		}
	}

	or := &template.ConditionalRequirement{Operator: template.Or, Conditions: []template.Condition{
		{Field: "Notes", Operator: template.OpIsNotEmpty},
		{Field: "Country Code", Operator: template.OpEquals, Value: "us"},
	}}
	if !EvaluateRequirement(or, row, tpl) {
		t.Error("OR should hold when one condition holds")
	}
	and := &template.ConditionalRequirement{Operator: template.And, Conditions: or.Conditions}
	if EvaluateRequirement(and, row, tpl) {
		t.Error("AND should fail when one condition fails")
	}
}

// =============================================================================
// PASS PROPERTIES
// =============================================================================

func mixedDataset() (*template.Template, []*types.Row) {
	tpl := newTemplate(
		template.ColumnRule{FieldName: "EmpID", Type: template.TypeInteger, Requirement: template.Required},
		template.ColumnRule{FieldName: "Status", Type: template.TypeList, AllowedValues: []string{"A", "I"}},
		template.ColumnRule{FieldName: "HireDate", Type: template.TypeDate, Requirement: template.Required},
		template.ColumnRule{FieldName: "Notes", MaxLength: 5},
	)
	rows := []*types.Row{
		newRow(tpl, map[string]string{"EmpID": "1", "Status": "A", "HireDate": "01/05/2024"}),
		newRow(tpl, map[string]string{"EmpID": "x", "Status": "a", "HireDate": "", "Notes": "too long"}),
		newRow(tpl, map[string]string{"EmpID": "1,000", "Status": " I", "HireDate": "2024-13-01"}),
	}
	rows[1].Meta["notes"].Notes = []string{"Column not present in uploaded file"}
	return tpl, rows
}

func TestValidationIsIdempotent(t *testing.T) {
	tpl, rows := mixedDataset()

	first := Validate(rows, tpl)
	snapshot := make([]*types.Row, len(rows))
	for i, row := range rows {
		snapshot[i] = row.Clone()
	}

	second := Validate(rows, tpl)
	for i := range rows {
		if !reflect.DeepEqual(rows[i], snapshot[i]) {
			t.Errorf("row %d changed on second pass:\n%+v\n%+v", i, rows[i], snapshot[i])
		}
	}
	if first.Stats != second.Stats {
		t.Errorf("stats changed: %+v vs %+v", first.Stats, second.Stats)
	}
	if notes := rows[1].Meta["notes"].Notes; len(notes) != 1 {
		t.Errorf("notes lost: %v", notes)
	}
}

func TestRowStatusIsWorstCell(t *testing.T) {
	tpl, rows := mixedDataset()
	Validate(rows, tpl)

	for _, row := range rows {
		want := types.StatusValid
		for _, meta := range row.Meta {
			want = types.Worse(want, meta.ValidationStatus)
		}
		if row.RowStatus != want {
			t.Errorf("row %d status = %s, want %s", row.RowIndex, row.RowStatus, want)
		}
	}
}

func TestStatsAndIssues(t *testing.T) {
	tpl, rows := mixedDataset()
	result := Validate(rows, tpl)
	s := result.Stats

	if s.TotalRows != 3 || s.ValidRows != 1 || s.ErrorRows != 2 {
		t.Errorf("row counts = %+v", s)
	}
	if s.TotalCells != 12 {
		t.Errorf("total cells = %d, want 12", s.TotalCells)
	}
	// Row 2: three errors and a case warning. Row 3: EmpID and Status
	// warnings, HireDate error.
	if s.ErrorCells != 4 || s.WarningCells != 3 || s.ValidCells != 5 {
		t.Errorf("cell counts: valid=%d warning=%d error=%d", s.ValidCells, s.WarningCells, s.ErrorCells)
	}
	if s.RequiredCells != 6 || s.RequiredFilled != 5 {
		t.Errorf("required = %d/%d", s.RequiredFilled, s.RequiredCells)
	}
	if math.Abs(s.Completion-500.0/6) > 1e-9 {
		t.Errorf("completion = %v", s.Completion)
	}
	if want := 5.0 / 12 * 5 / 6 * 100; math.Abs(s.TrustScore-want) > 1e-9 {
		t.Errorf("trust score = %v, want %v", s.TrustScore, want)
	}
	if result.IsValid || len(result.Errors()) != 4 || len(result.Issues) != 7 {
		t.Errorf("issues = %d errors = %d", len(result.Issues), len(result.Errors()))
	}
}

func TestStatsWithoutRequiredColumns(t *testing.T) {
	tpl := newTemplate(template.ColumnRule{FieldName: "Notes"})
	result := Validate([]*types.Row{newRow(tpl, nil)}, tpl)
	if result.Stats.Completion != 0 || result.Stats.TrustScore != 0 {
		t.Errorf("stats = %+v", result.Stats)
	}
}

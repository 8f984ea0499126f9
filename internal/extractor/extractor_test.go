package extractor

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// HEADER AND REQUIREMENT PARSING
// =============================================================================

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		fieldName   string
		description string
		codes       []string
		isDate      bool
		dateFormat  string
	}{
		{"plain", "Employee ID", "Employee ID", "", nil, false, ""},
		{"spaces split", "Employee ID     Unique payroll number", "Employee ID", "Unique payroll number", nil, false, ""},
		{"tab split", "Hire Date\tMM/DD/YYYY", "Hire Date", "MM/DD/YYYY", nil, true, "MM/DD/YYYY"},
		{"two spaces do not split", "First  Name", "First  Name", "", nil, false, ""},
		{"code list", "Status A=Active I=Inactive T = Terminated", "Status A=Active I=Inactive T = Terminated", "", []string{"A", "I", "T"}, false, ""},
		{"word date", "Termination Date", "Termination Date", "", nil, true, ""},
		{"date inside word", "Update Reason", "Update Reason", "", nil, false, ""},
		{"iso hint", "Start   yyyy-mm-dd", "Start", "yyyy-mm-dd", nil, true, "YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := parseHeader(tt.raw)
			if info.fieldName != tt.fieldName || info.description != tt.description {
				t.Errorf("split = (%q, %q), want (%q, %q)", info.fieldName, info.description, tt.fieldName, tt.description)
			}
			if !reflect.DeepEqual(info.codes, tt.codes) {
				t.Errorf("codes = %v, want %v", info.codes, tt.codes)
			}
			if info.isDate != tt.isDate || info.dateFormat != tt.dateFormat {
				t.Errorf("date = (%v, %q), want (%v, %q)", info.isDate, info.dateFormat, tt.isDate, tt.dateFormat)
			}
		})
	}
}

func TestParseRequirement(t *testing.T) {
	tests := map[string]template.Requirement{
		"Required":                 template.Required,
		"REQUIRED":                 template.Required,
		"Conditionally Required":   template.Conditional,
		"One of these is required": template.Conditional,
		"Either this or Owner":     template.Conditional,
		"Optional":                 template.Optional,
		"":                         template.Optional,
		"n/a":                      template.Optional,
	}
	for in, want := range tests {
		if got := parseRequirement(in); got != want {
			t.Errorf("parseRequirement(%q) = %s, want %s", in, got, want)
		}
	}
}

// =============================================================================
// CONDITIONAL FORMAT FORMULAS
// =============================================================================

func TestParseFormula(t *testing.T) {
	tests := []struct {
		name         string
		formula      string
		connective   template.Connective
		conds        []cellCondition
		unrecognized int
	}{
		{
			name:       "len trim",
			formula:    "=LEN(TRIM($C2))=0",
			connective: template.And,
			conds:      []cellCondition{{letter: "C", operator: template.OpIsEmpty}},
		},
		{
			name:       "empty literal",
			formula:    `$C2=""`,
			connective: template.And,
			conds:      []cellCondition{{letter: "C", operator: template.OpIsEmpty}},
		},
		{
			name:       "and of not empty and equals",
			formula:    `AND($A2<>"", $B2="US")`,
			connective: template.And,
			conds: []cellCondition{
				{letter: "A", operator: template.OpIsNotEmpty},
				{letter: "B", operator: template.OpEquals, value: "US"},
			},
		},
		{
			name:       "or with text variants",
			formula:    `OR(TEXT($D2,"@")="Y", TEXT($E2,"@")<>"N")`,
			connective: template.Or,
			conds: []cellCondition{
				{letter: "D", operator: template.OpEquals, value: "Y"},
				{letter: "E", operator: template.OpNotEquals, value: "N"},
			},
		},
		{
			name:       "nested calls flatten",
			formula:    `OR(AND($A2="X",$B2<>""),$C2="a,b")`,
			connective: template.Or,
			conds: []cellCondition{
				{letter: "A", operator: template.OpEquals, value: "X"},
				{letter: "B", operator: template.OpIsNotEmpty},
				{letter: "C", operator: template.OpEquals, value: "a,b"},
			},
		},
		{
			name:         "unsupported function",
			formula:      `AND(ISBLANK($A2), $B2="US")`,
			connective:   template.And,
			conds:        []cellCondition{{letter: "B", operator: template.OpEquals, value: "US"}},
			unrecognized: 1,
		},
		{
			name:         "garbage",
			formula:      `SUM(A1:A3)>10`,
			connective:   template.And,
			unrecognized: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connective, conds, unrecognized := parseFormula(tt.formula)
			if connective != tt.connective {
				t.Errorf("connective = %s, want %s", connective, tt.connective)
			}
			if !reflect.DeepEqual(conds, tt.conds) {
				t.Errorf("conditions = %+v, want %+v", conds, tt.conds)
			}
			if len(unrecognized) != tt.unrecognized {
				t.Errorf("unrecognized = %v, want %d parts", unrecognized, tt.unrecognized)
			}
		})
	}
}

// =============================================================================
// FULL EXTRACTION
// =============================================================================

func rosterWorkbook() *workbook.Workbook {
	return &workbook.Workbook{
		Name: "roster.xlsx",
		Sheets: []workbook.Sheet{
			{Name: "Instructions", Rows: [][]string{{"Fill in the data sheet"}}},
			{
				Name: "Employees",
				Rows: [][]string{
					{"Emp ID     Payroll number", "First Name", "Last Name", "Owner Name", "Country Code", "State Code", "Status A=Active I=Inactive", "Department", "Hire Date", "", "Notes"},
					{"Required", "Conditional", "Conditional", "Conditional", "Conditional", "Conditional", "Required", "Optional", "Required", "", "Optional"},
					{"1001", "Ada", "Lovelace", "", "US", "CA", "A", "ENG", "01/05/2024", "", ""},
				},
				DataValidations: []workbook.DataValidation{
					{Sqref: "A2:A500", Type: "whole"},
					{Sqref: "E2:E500", Type: "list", Formula1: `"US, CA,MX"`},
					{Sqref: "H2:H500", Type: "list", Formula1: "Department Codes!$A$2:$A$20"},
					{Sqref: "K2:K500", Type: "textLength", Operator: "lessThanOrEqual", Formula1: "250"},
					{Sqref: "B2:B500", Type: "mystery"},
					{Sqref: "D2:D500", Type: "list", Formula1: "=OwnerNames"},
				},
				ConditionalFormats: []workbook.ConditionalFormat{
					{Sqref: "F2:F500", Formulas: []string{`AND($E2="US",LEN(TRIM($F2))=0)`}},
					{Sqref: "A2:A500", Formulas: []string{`$E2="US"`}},
				},
			},
			{
				Name: "Department Codes",
				Rows: [][]string{
					{"Code", "Name"},
					{"ENG", "Engineering"},
					{"", ""},
					{"fin", "Finance"},
				},
			},
		},
	}
}

func TestExtract(t *testing.T) {
	tpl, err := New(nil).Extract(rosterWorkbook(), "roster")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(tpl.Columns) != 10 {
		t.Fatalf("columns = %d, want 10 (empty header skipped)", len(tpl.Columns))
	}

	t.Run("header split and whole overlay", func(t *testing.T) {
		col, _ := tpl.ColumnByLetter("A")
		if col.FieldName != "Emp ID" || col.Description != "Payroll number" {
			t.Errorf("column A = %q / %q", col.FieldName, col.Description)
		}
		if col.Type != template.TypeInteger || col.Requirement != template.Required {
			t.Errorf("column A = %s / %s", col.Type, col.Requirement)
		}
	})

	t.Run("literal list", func(t *testing.T) {
		col, _ := tpl.Column("Country Code")
		if col.Type != template.TypeList || !reflect.DeepEqual(col.AllowedValues, []string{"US", "CA", "MX"}) {
			t.Errorf("country = %s %v", col.Type, col.AllowedValues)
		}
	})

	t.Run("header codes", func(t *testing.T) {
		col, _ := tpl.ColumnByLetter("G")
		if col.Type != template.TypeList || !reflect.DeepEqual(col.AllowedValues, []string{"A", "I"}) {
			t.Errorf("status = %s %v", col.Type, col.AllowedValues)
		}
	})

	t.Run("range list resolved from lookup sheet", func(t *testing.T) {
		col, _ := tpl.Column("Department")
		if !reflect.DeepEqual(col.AllowedValues, []string{"ENG", "fin"}) {
			t.Errorf("department values = %v", col.AllowedValues)
		}
		if col.ListSource != "Department Codes!$A$2:$A$20" {
			t.Errorf("list source = %q", col.ListSource)
		}
	})

	t.Run("unresolved named range kept verbatim", func(t *testing.T) {
		col, _ := tpl.Column("Owner Name")
		if col.ListSource != "OwnerNames" || len(col.AllowedValues) != 0 {
			t.Errorf("owner = %q %v", col.ListSource, col.AllowedValues)
		}
	})

	t.Run("text length and unknown kind", func(t *testing.T) {
		notes, _ := tpl.Column("Notes")
		if notes.MaxLength != 250 || notes.Type != template.TypeText {
			t.Errorf("notes = %s max %d", notes.Type, notes.MaxLength)
		}
		first, _ := tpl.Column("First Name")
		if first.Type != template.TypeText {
			t.Errorf("unknown kind degraded to %s, want text", first.Type)
		}
	})

	t.Run("date header", func(t *testing.T) {
		col, _ := tpl.Column("Hire Date")
		if col.Type != template.TypeDate {
			t.Errorf("hire date type = %s", col.Type)
		}
	})

	t.Run("conditional format excludes self reference", func(t *testing.T) {
		col, _ := tpl.Column("State Code")
		want := &template.ConditionalRequirement{
			Operator:   template.And,
			Conditions: []template.Condition{{Field: "Country Code", Operator: template.OpEquals, Value: "US"}},
		}
		if !reflect.DeepEqual(col.ConditionalRequirement, want) {
			t.Errorf("state conditions = %+v", col.ConditionalRequirement)
		}

		// Column A is required, not conditional: no overlay.
		emp, _ := tpl.ColumnByLetter("A")
		if emp.ConditionalRequirement != nil {
			t.Errorf("required column got conditions: %+v", emp.ConditionalRequirement)
		}
	})

	t.Run("lookup table", func(t *testing.T) {
		table, ok := tpl.LookupTables["Department Codes"]
		if !ok {
			t.Fatal("lookup table missing")
		}
		if table.KeyToValue["FIN"] != "Finance" || len(table.Rows) != 2 {
			t.Errorf("lookup = %+v", table)
		}
	})

	t.Run("complex rules", func(t *testing.T) {
		if len(tpl.ComplexRules) != 2 {
			t.Fatalf("complex rules = %+v", tpl.ComplexRules)
		}
		either := tpl.ComplexRules[0]
		if either.Kind != template.RuleEitherOr || !reflect.DeepEqual(either.Groups, [][]string{{"B", "C"}, {"D"}}) {
			t.Errorf("either_or = %+v", either)
		}
		dep := tpl.ComplexRules[1]
		if dep.Kind != template.RuleDependent || dep.Trigger != "F" || dep.Dependent != "E" {
			t.Errorf("dependent = %+v", dep)
		}
		if dep.Description != "Country Code is required when State Code is provided" {
			t.Errorf("dependent description = %q", dep.Description)
		}
	})
}

func TestExtractMainSheetFallback(t *testing.T) {
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		{Name: "Lookup Codes", Rows: [][]string{{"Code"}, {"X"}}},
	}}
	tpl, err := New(nil).Extract(wb, "only-aux")
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.Columns) != 1 || tpl.Columns[0].FieldName != "Code" {
		t.Errorf("columns = %+v", tpl.Columns)
	}
	if len(tpl.LookupTables) != 0 {
		t.Error("the main sheet must not double as a lookup table")
	}
}

func TestExtractEmpty(t *testing.T) {
	if _, err := New(nil).Extract(&workbook.Workbook{}, "x"); !errors.Is(err, workbook.ErrEmptyWorkbook) {
		t.Errorf("err = %v, want ErrEmptyWorkbook", err)
	}
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{{Name: "Data"}}}
	if _, err := New(nil).Extract(wb, "x"); !errors.Is(err, workbook.ErrEmptyWorkbook) {
		t.Errorf("err = %v, want ErrEmptyWorkbook", err)
	}
}

func TestExtractFromXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Data"); err != nil {
		t.Fatal(err)
	}
	_ = f.SetSheetRow("Data", "A1", &[]interface{}{"CountryCode", "StateCode", "Status"})
	_ = f.SetSheetRow("Data", "A2", &[]interface{}{"Optional", "Conditional", "Required"})

	dv := excelize.NewDataValidation(true)
	dv.Sqref = "C3:C100"
	if err := dv.SetDropList([]string{"A", "I", "T"}); err != nil {
		t.Fatal(err)
	}
	if err := f.AddDataValidation("Data", dv); err != nil {
		t.Fatal(err)
	}
	if err := f.SetConditionalFormat("Data", "B3:B100", []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: `$A3="US"`},
	}); err != nil {
		t.Fatal(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	wb, err := workbook.ReadXLSX(bytes.NewReader(buf.Bytes()), "data.xlsx")
	if err != nil {
		t.Fatal(err)
	}

	tpl, err := New(nil).Extract(wb, "data")
	if err != nil {
		t.Fatal(err)
	}

	status, _ := tpl.Column("Status")
	if status.Type != template.TypeList || !reflect.DeepEqual(status.AllowedValues, []string{"A", "I", "T"}) {
		t.Errorf("status = %s %v", status.Type, status.AllowedValues)
	}

	state, _ := tpl.Column("StateCode")
	if !state.HasConditions() || state.ConditionalRequirement.Conditions[0].Field != "CountryCode" {
		t.Errorf("state conditions = %+v", state.ConditionalRequirement)
	}
}

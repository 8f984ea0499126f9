package workbook

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExpandSqref(t *testing.T) {
	tests := []struct {
		sqref string
		want  []string
	}{
		{"A2:A100", []string{"A"}},
		{"A2:C100 E2:E100", []string{"A", "B", "C", "E"}},
		{"$F:$F", []string{"F"}},
		{"Sheet1!B1:B9", []string{"B"}},
		{"Z1:AB1", []string{"Z", "AA", "AB"}},
		{"C1:A1", []string{"A", "B", "C"}},
		{"", nil},
		{"12:14", nil},
	}

	for _, tt := range tests {
		t.Run(tt.sqref, func(t *testing.T) {
			if got := ExpandSqref(tt.sqref); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandSqref(%q) = %v, want %v", tt.sqref, got, tt.want)
			}
		})
	}
}

func TestColumnLetterAndIndex(t *testing.T) {
	tests := map[int]string{1: "A", 26: "Z", 27: "AA", 0: ""}
	for in, want := range tests {
		if got := ColumnLetter(in); got != want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", in, got, want)
		}
		if want != "" {
			if got := ColumnIndex(strings.ToLower(want)); got != in {
				t.Errorf("ColumnIndex(%q) = %d, want %d", want, got, in)
			}
		}
	}
}

func TestReadDelimitedKeepsRaggedRowsAndSpaces(t *testing.T) {
	input := "\xEF\xBB\xBFName,Country\n  Alice ,US,extra\nBob\n"

	wb, err := ReadDelimited(strings.NewReader(input), "upload.csv", ',')
	if err != nil {
		t.Fatalf("ReadDelimited failed: %v", err)
	}

	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "upload" {
		t.Fatalf("unexpected sheets: %+v", wb.Sheets)
	}

	sheet := wb.Sheets[0]
	if sheet.Rows[0][0] != "Name" {
		t.Errorf("BOM not stripped: %q", sheet.Rows[0][0])
	}
	if sheet.Rows[1][0] != "  Alice " {
		t.Errorf("leading/trailing spaces lost: %q", sheet.Rows[1][0])
	}
	if sheet.Width() != 3 {
		t.Errorf("Width = %d, want 3", sheet.Width())
	}
	if got := sheet.Cell(2, 1); got != "" {
		t.Errorf("Cell past row end = %q, want empty", got)
	}
}

func TestReadDelimitedEmpty(t *testing.T) {
	_, err := ReadDelimited(strings.NewReader(""), "empty.csv", ',')
	if !errors.Is(err, ErrEmptyWorkbook) {
		t.Errorf("err = %v, want ErrEmptyWorkbook", err)
	}
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	tsv := filepath.Join(dir, "data.tsv")
	if err := os.WriteFile(tsv, []byte("a\tb\n1\t2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	wb, err := Load(tsv)
	if err != nil {
		t.Fatalf("Load(tsv) failed: %v", err)
	}
	if got := wb.Sheets[0].Rows[1]; !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("tsv row = %v", got)
	}

	if _, err := Load(filepath.Join(dir, "data.pdf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := map[string]rune{"tab": '\t', "\\t": '\t', "pipe": '|', ";": ';', "": ',', ",": ','}
	for in, want := range tests {
		if got := ParseDelimiter(in); got != want {
			t.Errorf("ParseDelimiter(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadXLSXCollectsMetadata(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Template"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Status"}); err != nil {
		t.Fatal(err)
	}

	dv := excelize.NewDataValidation(true)
	dv.Sqref = "B2:B100"
	if err := dv.SetDropList([]string{"Active", "Inactive"}); err != nil {
		t.Fatal(err)
	}
	if err := f.AddDataValidation(sheet, dv); err != nil {
		t.Fatal(err)
	}

	if err := f.SetConditionalFormat(sheet, "A2:A100", []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: `$B2<>""`},
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.NewSheet("Codes"); err != nil {
		t.Fatal(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	wb, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "template.xlsx")
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}

	if len(wb.Sheets) != 2 {
		t.Fatalf("sheets = %d, want 2", len(wb.Sheets))
	}
	s, ok := wb.Sheet("template")
	if !ok {
		t.Fatal("sheet lookup should be case-insensitive")
	}
	if s.Cell(0, 1) != "Status" {
		t.Errorf("header cell = %q", s.Cell(0, 1))
	}

	if len(s.DataValidations) != 1 {
		t.Fatalf("data validations = %d, want 1", len(s.DataValidations))
	}
	if got := s.DataValidations[0]; got.Type != "list" || got.Sqref != "B2:B100" {
		t.Errorf("data validation = %+v", got)
	}
	if !strings.Contains(s.DataValidations[0].Formula1, "Active,Inactive") {
		t.Errorf("formula1 = %q", s.DataValidations[0].Formula1)
	}

	if len(s.ConditionalFormats) != 1 {
		t.Fatalf("conditional formats = %d, want 1", len(s.ConditionalFormats))
	}
	if cf := s.ConditionalFormats[0]; cf.Sqref != "A2:A100" || !strings.Contains(cf.Formulas[0], `$B2<>""`) {
		t.Errorf("conditional format = %+v", cf)
	}
}

// =============================================================================
// gridcheck - Delimited Text Loader
// =============================================================================
//
// Reads CSV and tab-delimited uploads into a single-sheet Workbook.
//
// FEATURES:
//   - Ragged rows (FieldsPerRecord = -1)
//   - Lazy quotes for hand-edited exports
//   - UTF-8 BOM stripping
//
// Cell values are kept verbatim, including leading and trailing spaces; the
// auto-fix engine and the whitespace hint need to see them.
//
// =============================================================================

package workbook

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadDelimited reads a delimited text file.
func LoadDelimited(path string, delimiter rune) (*Workbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadDelimited(file, filepath.Base(path), delimiter)
}

// ReadDelimited decodes delimited text from r. The single sheet is named
// after the file without its extension.
func ReadDelimited(r io.Reader, name string, delimiter rune) (*Workbook, error) {
	reader := bufio.NewReader(r)
	if head, err := reader.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = reader.Discard(len(utf8BOM))
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, delimiter)

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited file: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	sheetName := strings.TrimSuffix(name, filepath.Ext(name))
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	return &Workbook{
		Name:   name,
		Sheets: []Sheet{{Name: sheetName, Rows: rows}},
	}, nil
}

// ParseDelimiter maps a configured delimiter name to its rune.
func ParseDelimiter(s string) rune {
	switch s {
	case "\\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		if len(s) > 0 {
			return rune(s[0])
		}
		return ','
	}
}

func configureReader(reader *csv.Reader, delimiter rune) {
	if delimiter == 0 {
		delimiter = ','
	}
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

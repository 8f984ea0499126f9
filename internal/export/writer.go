package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName names the single sheet of an xlsx export.
const DefaultSheetName = "Data"

var txtControl = regexp.MustCompile(`[\t\r\n]+`)

// EscapeTXT replaces every run of tabs and line breaks with a single space.
func EscapeTXT(s string) string {
	return txtControl.ReplaceAllString(s, " ")
}

// WriteTXT writes grid as tab-delimited lines terminated by "\n".
func WriteTXT(w io.Writer, grid [][]string) error {
	buf := bufio.NewWriter(w)
	for _, line := range grid {
		cells := make([]string, len(line))
		for i, cell := range line {
			cells[i] = EscapeTXT(cell)
		}
		if _, err := buf.WriteString(strings.Join(cells, "\t") + "\n"); err != nil {
			return fmt.Errorf("failed to write txt row: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush txt output: %w", err)
	}
	return nil
}

// WriteXLSX writes grid into a single-sheet workbook. Cells are stored as
// strings so leading zeros and codes survive.
func WriteXLSX(w io.Writer, grid [][]string, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for r, line := range grid {
		cells := make([]interface{}, len(line))
		for i, cell := range line {
			cells[i] = cell
		}
		axis, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return fmt.Errorf("failed to resolve row %d: %w", r+1, err)
		}
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Write serializes grid in format.
func Write(w io.Writer, grid [][]string, format Format) error {
	switch format {
	case FormatTXT:
		return WriteTXT(w, grid)
	case FormatXLSX:
		return WriteXLSX(w, grid, DefaultSheetName)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteFile writes grid to dir/name, adding the format extension when name
// lacks it. It returns the written path.
func WriteFile(dir, name string, grid [][]string, format Format) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), format.Extension()) {
		name += format.Extension()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	if err := writeAndClose(file, grid, format); err != nil {
		return "", err
	}
	return path, nil
}

// writeAndClose writes grid to wc and always closes it. A close error is
// returned when the write itself succeeded.
func writeAndClose(wc io.WriteCloser, grid [][]string, format Format) error {
	if err := Write(wc, grid, format); err != nil {
		wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

package mapper

import (
	"errors"
	"strings"
)

// ErrNoHeader is returned when an upload has no non-empty row.
var ErrNoHeader = errors.New("upload has no header row")

// requirementTokens mark a requirement row when found in enough cells.
var requirementTokens = []string{"req", "opt", "cond", "mandatory"}

// requirementRowThreshold is the share of non-empty cells that must carry a
// requirement token.
const requirementRowThreshold = 0.3

// Upload is an uploaded grid split into headers and data rows.
type Upload struct {
	Headers []string
	Rows    [][]string

	// RowNumbers holds the 1-based file row of each entry in Rows.
	RowNumbers []int

	HasRequirementRow bool
}

// PrepareUpload drops empty rows, takes the first row as headers and skips a
// requirement row directly below it.
func PrepareUpload(grid [][]string) (*Upload, error) {
	upload := &Upload{}
	headerSeen := false

	for i, row := range grid {
		if isEmptyRow(row) {
			continue
		}

		switch {
		case !headerSeen:
			headerSeen = true
			upload.Headers = trimAll(row)
		case len(upload.Rows) == 0 && !upload.HasRequirementRow && IsRequirementRow(row):
			upload.HasRequirementRow = true
		default:
			upload.Rows = append(upload.Rows, row)
			upload.RowNumbers = append(upload.RowNumbers, i+1)
		}
	}

	if !headerSeen {
		return nil, ErrNoHeader
	}
	return upload, nil
}

// IsRequirementRow reports whether more than 30% of the row's non-empty
// cells contain a requirement token.
func IsRequirementRow(row []string) bool {
	filled, hits := 0, 0
	for _, cell := range row {
		lower := strings.ToLower(strings.TrimSpace(cell))
		if lower == "" {
			continue
		}
		filled++
		for _, token := range requirementTokens {
			if strings.Contains(lower, token) {
				hits++
				break
			}
		}
	}
	if filled == 0 {
		return false
	}
	return float64(hits)/float64(filled) > requirementRowThreshold
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

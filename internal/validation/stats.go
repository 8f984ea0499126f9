package validation

import (
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
)

// Stats are derived counters for a dataset. They are recomputed after every
// pass and never stored as truth.
type Stats struct {
	TotalRows   int `json:"totalRows"`
	ValidRows   int `json:"validRows"`
	WarningRows int `json:"warningRows"`
	ErrorRows   int `json:"errorRows"`
	PendingRows int `json:"pendingRows"`

	TotalCells   int `json:"totalCells"`
	ValidCells   int `json:"validCells"`
	WarningCells int `json:"warningCells"`
	ErrorCells   int `json:"errorCells"`

	// RequiredCells counts cells of required columns plus triggered
	// conditional cells; RequiredFilled those of them with a value.
	RequiredCells  int `json:"requiredCells"`
	RequiredFilled int `json:"requiredFilled"`

	// Completion is RequiredFilled / RequiredCells in percent.
	Completion float64 `json:"completion"`

	// TrustScore is validCells/totalCells x requiredFilled/requiredCells x 100.
	TrustScore float64 `json:"trustScore"`
}

// ComputeStats counts statuses over rows.
func ComputeStats(rows []*types.Row, tpl *template.Template) Stats {
	var s Stats
	s.TotalRows = len(rows)

	for _, row := range rows {
		switch row.RowStatus {
		case types.StatusValid:
			s.ValidRows++
		case types.StatusWarning:
			s.WarningRows++
		case types.StatusError:
			s.ErrorRows++
		default:
			s.PendingRows++
		}

		for _, col := range tpl.Columns {
			meta, ok := row.Meta[col.Key]
			if !ok {
				continue
			}
			s.TotalCells++

			switch meta.ValidationStatus {
			case types.StatusValid:
				s.ValidCells++
			case types.StatusWarning:
				s.WarningCells++
			case types.StatusError:
				s.ErrorCells++
			}

			if col.Requirement == template.Required || meta.ConditionalTriggered {
				s.RequiredCells++
				if !isBlank(row.Data[col.Key]) {
					s.RequiredFilled++
				}
			}
		}
	}

	if s.RequiredCells > 0 {
		s.Completion = float64(s.RequiredFilled) / float64(s.RequiredCells) * 100
	}
	if s.TotalCells > 0 && s.RequiredCells > 0 {
		s.TrustScore = float64(s.ValidCells) / float64(s.TotalCells) *
			float64(s.RequiredFilled) / float64(s.RequiredCells) * 100
	}

	return s
}

// =============================================================================
// Gridcheck - Session
// =============================================================================
//
// A Session owns the current template and dataset. Every mutation (loading an
// upload, applying auto-fix, editing a cell) is followed by a full validation
// pass, so statuses and stats always describe the data as it is now.
//
// A Session is not safe for concurrent use. Callers that validate several
// files at once give each file its own Session.
//
// =============================================================================

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/gridcheck/internal/autofix"
	"github.com/ginjaninja78/gridcheck/internal/export"
	"github.com/ginjaninja78/gridcheck/internal/logging"
	"github.com/ginjaninja78/gridcheck/internal/mapper"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
	"github.com/ginjaninja78/gridcheck/internal/validation"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

var (
	// ErrNoTemplate is returned when a session is created without a template.
	ErrNoTemplate = errors.New("no template loaded")

	// ErrRowOutOfRange is returned by SetCell for a row outside the dataset.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrUnknownField is returned by SetCell for a field the template lacks.
	ErrUnknownField = errors.New("unknown field")
)

// Session holds a template and the dataset validated against it.
type Session struct {
	tpl       *template.Template
	logger    logging.Logger
	validator *validation.Validator
	fixer     *autofix.Engine

	upload  *mapper.Upload
	mapping *mapper.Mapping
	rows    []*types.Row
	result  *validation.Result
}

// New creates an empty session for tpl.
func New(tpl *template.Template, logger logging.Logger) (*Session, error) {
	if tpl == nil {
		return nil, ErrNoTemplate
	}
	logger = logging.OrNop(logger)
	return &Session{
		tpl:       tpl,
		logger:    logger,
		validator: validation.NewValidator(tpl, logger),
		fixer:     autofix.New(tpl, logger),
		result:    &validation.Result{IsValid: true},
	}, nil
}

// UseAutoFixSettings replaces the template's auto-fix toggles for this session.
func (s *Session) UseAutoFixSettings(settings template.AutoFixSettings) {
	s.fixer = autofix.NewWithSettings(s.tpl, settings, s.logger)
}

// Template returns the session template.
func (s *Session) Template() *template.Template { return s.tpl }

// Rows returns the current dataset.
func (s *Session) Rows() []*types.Row { return s.rows }

// Mapping returns the column mapping of the last load, or nil.
func (s *Session) Mapping() *mapper.Mapping { return s.mapping }

// Upload returns the shaped upload of the last load, or nil.
func (s *Session) Upload() *mapper.Upload { return s.upload }

// Result returns the outcome of the latest validation pass.
func (s *Session) Result() *validation.Result { return s.result }

// Stats returns the stats of the latest validation pass.
func (s *Session) Stats() validation.Stats { return s.result.Stats }

// =============================================================================
// LOADING
// =============================================================================

// Load shapes grid into an upload, maps it onto the template and validates.
func (s *Session) Load(grid [][]string, mode mapper.Mode) error {
	upload, err := mapper.PrepareUpload(grid)
	if err != nil {
		return fmt.Errorf("failed to prepare upload: %w", err)
	}
	s.loadUpload(upload, mode)
	return nil
}

// LoadSheet is Load for a workbook sheet.
func (s *Session) LoadSheet(sheet *workbook.Sheet, mode mapper.Mode) error {
	return s.Load(sheet.Rows, mode)
}

func (s *Session) loadUpload(upload *mapper.Upload, mode mapper.Mode) {
	s.upload = upload
	s.mapping = mapper.Map(upload.Headers, s.tpl, mode)
	for _, w := range s.mapping.Warnings {
		s.logger.Debug("Mapping: %s", w.Message)
	}

	s.rows = mapper.ApplyMapping(upload, s.tpl, s.mapping)
	s.logger.Debug("Loaded %d rows (%s mapping)", len(s.rows), s.mapping.Mode)
	s.revalidate()
}

// =============================================================================
// EDITING
// =============================================================================

// ApplyAutoFix runs the auto-fix engine over the dataset, replaces it with
// the fixed rows and revalidates. It returns the recorded changes.
func (s *Session) ApplyAutoFix() []types.Change {
	if len(s.rows) == 0 {
		return nil
	}
	rows, changes := s.fixer.Apply(s.rows)
	s.rows = rows
	s.logger.Debug("Auto-fix changed %d cells", len(changes))
	s.revalidate()
	return changes
}

// SetCell writes value into the field of the row at position index (0-based
// in the dataset) and revalidates the whole dataset, since conditional and
// complex rules read sibling cells.
func (s *Session) SetCell(index int, field, value string) error {
	if index < 0 || index >= len(s.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, index)
	}
	col, ok := s.tpl.Column(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	row := s.rows[index]
	row.Data[col.Key] = value
	meta, ok := row.Meta[col.Key]
	if !ok {
		meta = types.NewCellMeta(value)
		row.Meta[col.Key] = meta
	}
	meta.SetCurrent(value)

	s.revalidate()
	return nil
}

// Revalidate runs a validation pass over the current dataset.
func (s *Session) Revalidate() *validation.Result {
	s.revalidate()
	return s.result
}

func (s *Session) revalidate() {
	s.result = s.validator.ValidateAll(s.rows)
}

// =============================================================================
// EXPORT
// =============================================================================

// Export shapes the dataset for cfg and computes the file name for now.
func (s *Session) Export(cfg export.Config, now time.Time) ([][]string, string, error) {
	grid, err := export.Shape(s.rows, s.tpl, cfg)
	if err != nil {
		return nil, "", err
	}
	return grid, export.FileName(cfg.FilenamePattern, s.tpl.Name, cfg.Format, now), nil
}

// ExportFile writes the export for cfg into dir and returns its path.
func (s *Session) ExportFile(dir string, cfg export.Config, now time.Time) (string, error) {
	grid, name, err := s.Export(cfg, now)
	if err != nil {
		return "", fmt.Errorf("failed to shape export: %w", err)
	}
	path, err := export.WriteFile(dir, name, grid, cfg.Format)
	if err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

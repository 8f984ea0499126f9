package session

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/gridcheck/internal/export"
	"github.com/ginjaninja78/gridcheck/internal/logging"
	"github.com/ginjaninja78/gridcheck/internal/mapper"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/types"
	"github.com/ginjaninja78/gridcheck/internal/validation"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// =============================================================================
// FILE PROCESSING
// =============================================================================

// Options control ProcessFile.
type Options struct {
	// Mode selects positional or named column mapping.
	Mode mapper.Mode

	// AutoFix applies the auto-fix engine before the reported pass.
	AutoFix bool

	// AutoFixSettings overrides the template toggles when non-nil.
	AutoFixSettings *template.AutoFixSettings

	// Delimiter forces delimited parsing with this rune. Zero picks the
	// loader from the file extension.
	Delimiter rune

	// Sheet names the upload sheet of a workbook. Empty means the first.
	Sheet string

	// Export, when non-nil, writes the dataset to OutputDir after validation.
	Export    *export.Config
	OutputDir string

	// Now stamps export file names. Defaults to time.Now.
	Now func() time.Time
}

// Result is the outcome of processing one file.
type Result struct {
	// FilePath is the path to the input file.
	FilePath string

	// Success is true when the file was loaded and validated, whatever the
	// validation outcome.
	Success bool

	// Error is the processing failure, if any.
	Error error

	// Validation is the final validation pass.
	Validation *validation.Result

	// Changes are the auto-fix rewrites, when AutoFix was set.
	Changes []types.Change

	// Mapping is the column mapping used.
	Mapping *mapper.Mapping

	// OutputFile is the export path, when an export was requested.
	OutputFile string

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// ProcessFile loads path, validates it against tpl and optionally fixes and
// exports it.
//
// PROCESSING STEPS:
//   1. Load the upload (xlsx or delimited text)
//   2. Map columns and validate
//   3. Apply auto-fix and revalidate (optional)
//   4. Export (optional)
func ProcessFile(path string, tpl *template.Template, opts Options, logger logging.Logger) Result {
	startTime := time.Now()
	logger = logging.OrNop(logger)
	result := Result{FilePath: path}

	s, err := New(tpl, logger)
	if err != nil {
		result.Error = err
		return result
	}
	if opts.AutoFixSettings != nil {
		s.UseAutoFixSettings(*opts.AutoFixSettings)
	}

	// =========================================================================
	// STEP 1: LOAD UPLOAD
	// =========================================================================

	logger.Info("Processing file: %s", path)

	sheet, err := loadSheet(path, opts)
	if err != nil {
		result.Error = fmt.Errorf("failed to load upload: %w", err)
		return result
	}
	logger.Debug("Read %d rows from sheet %q", len(sheet.Rows), sheet.Name)

	// =========================================================================
	// STEP 2: MAP AND VALIDATE
	// =========================================================================

	if err := s.LoadSheet(sheet, opts.Mode); err != nil {
		result.Error = err
		return result
	}
	result.Mapping = s.Mapping()

	// =========================================================================
	// STEP 3: AUTO-FIX
	// =========================================================================

	if opts.AutoFix {
		result.Changes = s.ApplyAutoFix()
		logger.Info("Applied %d auto-fix changes", len(result.Changes))
	}

	result.Validation = s.Result()
	stats := s.Stats()
	logger.Info("Validated %d rows: %d valid, %d warning, %d error",
		stats.TotalRows, stats.ValidRows, stats.WarningRows, stats.ErrorRows)

	// =========================================================================
	// STEP 4: EXPORT
	// =========================================================================

	if opts.Export != nil {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		outputPath, err := s.ExportFile(opts.OutputDir, *opts.Export, now())
		if err != nil {
			result.Error = err
			return result
		}
		result.OutputFile = outputPath
		logger.Info("Wrote output to: %s", outputPath)
	}

	result.Success = true
	result.ProcessingTime = time.Since(startTime)
	return result
}

func loadSheet(path string, opts Options) (*workbook.Sheet, error) {
	var (
		wb  *workbook.Workbook
		err error
	)
	ext := strings.ToLower(filepath.Ext(path))
	if opts.Delimiter != 0 && ext != ".xlsx" && ext != ".xlsm" {
		wb, err = workbook.LoadDelimited(path, opts.Delimiter)
	} else {
		wb, err = workbook.Load(path)
	}
	if err != nil {
		return nil, err
	}

	if opts.Sheet != "" {
		sheet, ok := wb.Sheet(opts.Sheet)
		if !ok {
			return nil, fmt.Errorf("sheet %q not found in %s", opts.Sheet, wb.Name)
		}
		return sheet, nil
	}
	return &wb.Sheets[0], nil
}

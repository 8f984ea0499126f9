// =============================================================================
// Gridcheck - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   gridcheck validate [--template t.json] [--fix] [--mode named] <files|dirs|globs...>
//
// Files are validated concurrently, at most max_concurrency at a time. Each
// file gets its own template copy and Session, so nothing mutable is shared
// between goroutines.
//
// OUTPUT:
//   - Per-file stats on stdout
//   - A validation report per file with findings (output directory)
//   - A run summary (output directory)
//   - Exit status 1 when any file has errors or could not be processed
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gridcheck/internal/session"
	"github.com/ginjaninja78/gridcheck/pkg/utils"
)

var (
	validateFlags     uploadFlags
	validateFix       bool
	validateRecursive bool
	validateNoReport  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <files...>",
	Short: "Validate uploads against a template",
	Long: `Validate maps each upload onto the template columns (by position or by
header name), checks requirements, types, allowed values, lengths and
cross-field rules, and reports every error and warning with its row and field.

Files are processed concurrently. Errors in one file do not affect the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateFlags.register(validateCmd)
	validateCmd.Flags().BoolVar(&validateFix, "fix", false,
		"Apply auto-fix before reporting")
	validateCmd.Flags().BoolVarP(&validateRecursive, "recursive", "r", false,
		"Walk directories recursively")
	validateCmd.Flags().BoolVar(&validateNoReport, "no-report", false,
		"Do not write report files")
}

func runValidate(args []string) error {
	startTime := time.Now()

	files, err := utils.ExpandInputs(args, validateRecursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No uploads found.")
		return nil
	}

	opts, err := validateFlags.options()
	if err != nil {
		return err
	}
	opts.AutoFix = validateFix

	fm := utils.NewFileManager(mainConfig.TemplatesDir, mainConfig.OutputDir)
	if !validateNoReport {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	logger.Info("Validating %d file(s) with concurrency %d", len(files), max(mainConfig.MaxConcurrency, 1))

	// =========================================================================
	// CONCURRENT PROCESSING
	// =========================================================================

	summaries := make([]utils.FileSummary, len(files))
	sem := make(chan struct{}, max(mainConfig.MaxConcurrency, 1))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summaries[i] = validateOne(path, opts, fm.OutputDir)
		}(i, file)
	}
	wg.Wait()

	// =========================================================================
	// RESULTS
	// =========================================================================

	var failedFiles, invalidFiles int
	for _, s := range summaries {
		name := filepath.Base(s.InputFile)
		switch {
		case s.Failed():
			failedFiles++
			fmt.Printf("  ✗ %s: %s\n", name, s.Error)
		case s.Stats.ErrorRows > 0:
			invalidFiles++
			fmt.Printf("  ✗ %s: %d/%d rows with errors, %d with warnings (completion %.1f%%, trust %.1f)\n",
				name, s.Stats.ErrorRows, s.Stats.TotalRows, s.Stats.WarningRows, s.Stats.Completion, s.Stats.TrustScore)
		default:
			fmt.Printf("  ✓ %s: %d rows, %d with warnings (completion %.1f%%, trust %.1f)\n",
				name, s.Stats.TotalRows, s.Stats.WarningRows, s.Stats.Completion, s.Stats.TrustScore)
		}
		if s.ReportFile != "" {
			fmt.Printf("      report: %s\n", s.ReportFile)
		}
	}

	if !validateNoReport {
		summaryPath, err := utils.WriteSummaryLog(utils.RunSummary{
			StartTime: startTime,
			EndTime:   time.Now(),
			Files:     summaries,
		}, fm.OutputDir)
		if err != nil {
			logger.Warn("Failed to write summary: %v", err)
		} else {
			fmt.Printf("\nSummary written to %s\n", summaryPath)
		}
	}

	if failedFiles+invalidFiles > 0 {
		return fmt.Errorf("validation failed: %d file(s) with errors, %d file(s) not processed", invalidFiles, failedFiles)
	}
	return nil
}

// validateOne processes a single upload into its summary.
func validateOne(path string, opts session.Options, outputDir string) utils.FileSummary {
	summary := utils.FileSummary{InputFile: path}

	tpl, err := validateFlags.loadTemplate(path)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	result := session.ProcessFile(path, tpl, opts, logger)
	summary.ProcessTime = result.ProcessingTime
	if !result.Success {
		summary.Error = result.Error.Error()
		logger.Error("%s: %v", path, result.Error)
		return summary
	}

	summary.Stats = result.Validation.Stats
	summary.Changes = len(result.Changes)

	if !validateNoReport {
		reportPath, err := utils.WriteErrorLog(utils.EntriesFromResult(path, result.Validation), outputDir)
		if err != nil {
			logger.Warn("Failed to write report for %s: %v", path, err)
		}
		summary.ReportFile = reportPath
	}

	return summary
}

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/gridcheck/internal/validation"
)

const reportRule = "================================================================================\n"

// =============================================================================
// VALIDATION REPORT
// =============================================================================

// ReportEntry is one cell finding in a validation report.
type ReportEntry struct {
	FileName     string
	Severity     string
	Rule         string
	Message      string
	RowNumber    int
	FieldName    string
	FieldValue   string
	SuggestedFix string
}

// EntriesFromResult flattens a validation result for fileName.
func EntriesFromResult(fileName string, result *validation.Result) []ReportEntry {
	if result == nil {
		return nil
	}
	entries := make([]ReportEntry, 0, len(result.Issues))
	for _, issue := range result.Issues {
		entries = append(entries, ReportEntry{
			FileName:     fileName,
			Severity:     string(issue.Severity),
			Rule:         string(issue.Rule),
			Message:      issue.Message,
			RowNumber:    issue.RowNumber,
			FieldName:    issue.Field,
			FieldValue:   issue.Value,
			SuggestedFix: issue.SuggestedFix,
		})
	}
	return entries
}

// WriteErrorLog writes a validation report of entries into outputDir.
//
// RETURNS:
//   - The path to the report, or "" when there is nothing to report.
//   - An error if writing fails.
func WriteErrorLog(entries []ReportEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(outputDir, ReportFileName(entries[0].FileName, "report", now))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create validation report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	errorsCount := 0
	for _, e := range entries {
		if e.Severity == "error" {
			errorsCount++
		}
	}

	fmt.Fprintf(writer, "Gridcheck - Validation Report\n"+
		"Generated: %s\n"+
		"File:      %s\n"+
		"Errors:    %d\n"+
		"Warnings:  %d\n"+
		reportRule+"\n",
		now.Format("2006-01-02 15:04:05"),
		entries[0].FileName,
		errorsCount,
		len(entries)-errorsCount)

	for i, entry := range entries {
		fmt.Fprintf(writer, "Issue #%d\n"+
			"  Severity:      %s\n"+
			"  Row Number:    %d\n"+
			"  Field:         %s\n"+
			"  Rule:          %s\n"+
			"  Message:       %s\n",
			i+1,
			entry.Severity,
			entry.RowNumber,
			entry.FieldName,
			entry.Rule,
			entry.Message)
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:         %q\n", entry.FieldValue)
		}
		if entry.SuggestedFix != "" {
			fmt.Fprintf(writer, "  Suggested Fix: %q\n", entry.SuggestedFix)
		}
		writer.WriteString("\n")
	}

	writer.WriteString(reportRule + "End of Validation Report\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush validation report: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a validation run.
type RunSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Files     []FileSummary
}

// FileSummary is the outcome of one upload.
type FileSummary struct {
	InputFile   string
	OutputFile  string
	ReportFile  string
	Stats       validation.Stats
	Changes     int
	ProcessTime time.Duration

	// Error is set when the file could not be processed.
	Error string
}

// Failed reports whether the file could not be processed.
func (f FileSummary) Failed() bool { return f.Error != "" }

// Totals sums rows and cell statuses over the processed files.
func (s RunSummary) Totals() (processed, failed int, stats validation.Stats) {
	for _, f := range s.Files {
		if f.Failed() {
			failed++
			continue
		}
		processed++
		stats.TotalRows += f.Stats.TotalRows
		stats.ValidRows += f.Stats.ValidRows
		stats.WarningRows += f.Stats.WarningRows
		stats.ErrorRows += f.Stats.ErrorRows
		stats.TotalCells += f.Stats.TotalCells
		stats.ValidCells += f.Stats.ValidCells
		stats.WarningCells += f.Stats.WarningCells
		stats.ErrorCells += f.Stats.ErrorCells
	}
	return processed, failed, stats
}

// WriteSummaryLog writes a run summary into outputDir.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("validation_summary_%s.txt", summary.EndTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	processed, failed, totals := summary.Totals()
	fmt.Fprintf(writer, "Gridcheck - Validation Summary\n"+
		reportRule+"\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Processed:      %d\n"+
		"  Failed:         %d\n"+
		"  Total Rows:     %d\n"+
		"  Valid Rows:     %d\n"+
		"  Warning Rows:   %d\n"+
		"  Error Rows:     %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		len(summary.Files),
		processed,
		failed,
		totals.TotalRows,
		totals.ValidRows,
		totals.WarningRows,
		totals.ErrorRows)

	if processed > 0 {
		writer.WriteString("Processed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Files {
			if f.Failed() {
				continue
			}
			fmt.Fprintf(writer, "  Input:        %s\n", f.InputFile)
			if f.OutputFile != "" {
				fmt.Fprintf(writer, "  Output:       %s\n", f.OutputFile)
			}
			if f.ReportFile != "" {
				fmt.Fprintf(writer, "  Report:       %s\n", f.ReportFile)
			}
			fmt.Fprintf(writer, "  Rows:         %d (%d valid, %d warning, %d error)\n",
				f.Stats.TotalRows, f.Stats.ValidRows, f.Stats.WarningRows, f.Stats.ErrorRows)
			fmt.Fprintf(writer, "  Completion:   %.1f%%\n", f.Stats.Completion)
			fmt.Fprintf(writer, "  Trust Score:  %.1f\n", f.Stats.TrustScore)
			if f.Changes > 0 {
				fmt.Fprintf(writer, "  Auto-fixes:   %d\n", f.Changes)
			}
			fmt.Fprintf(writer, "  Process Time: %s\n\n", f.ProcessTime.String())
		}
	}

	if failed > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Files {
			if !f.Failed() {
				continue
			}
			fmt.Fprintf(writer, "  File:  %s\n", f.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", f.Error)
		}
	}

	writer.WriteString(reportRule + "End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

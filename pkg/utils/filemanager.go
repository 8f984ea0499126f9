// =============================================================================
// Gridcheck - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the CLI, including:
//   - Upload and template discovery
//   - Directory management
//   - Report file naming
//
// Reports themselves are written by report.go.
//
// =============================================================================

package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadExtensions are the file extensions gridcheck can validate.
var UploadExtensions = []string{".xlsx", ".xlsm", ".csv", ".tsv", ".txt"}

// TemplateExtensions are the file extensions of stored templates.
var TemplateExtensions = []string{".json", ".yaml", ".yml", ".hjson"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the CLI.
type FileManager struct {
	// TemplatesDir is where stored templates live.
	TemplatesDir string

	// OutputDir receives exports and reports.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(templatesDir, outputDir string) *FileManager {
	return &FileManager{
		TemplatesDir: templatesDir,
		OutputDir:    outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.TemplatesDir, fm.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverTemplates lists the stored templates in TemplatesDir, sorted.
func (fm *FileManager) DiscoverTemplates() ([]string, error) {
	entries, err := os.ReadDir(fm.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan templates directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), TemplateExtensions) {
			continue
		}
		files = append(files, filepath.Join(fm.TemplatesDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ExpandInputs turns command-line arguments into upload paths.
//
// PARAMETERS:
//   - args: Files, directories or glob patterns.
//   - recursive: Walk directories instead of listing only their top level.
//
// RETURNS:
//   - The upload files in argument order, deduplicated. Directory contents
//     are filtered to UploadExtensions; explicit files are kept as given.
//   - An error if an argument matches nothing or cannot be read.
func ExpandInputs(args []string, recursive bool) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", match, err)
			}
			if !info.IsDir() {
				add(match)
				continue
			}

			found, err := discoverUploads(match, recursive)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		}
	}

	return files, nil
}

// discoverUploads lists the upload files of dir, sorted.
func discoverUploads(dir string, recursive bool) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if hasExtension(path, UploadExtensions) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// ReportFileName builds a unique report name for an upload.
//
// EXAMPLE:
//   upload: "uploads/vendors.csv", kind: "report"
//   output: "vendors_report_20240115_143022_a1b2c3d4.txt"
func ReportFileName(upload, kind string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(upload), filepath.Ext(upload))
	if base == "" || base == "." {
		base = "gridcheck"
	}
	return fmt.Sprintf("%s_%s_%s_%s.txt", base, kind, now.Format("20060102_150405"), uuid.New().String()[:8])
}

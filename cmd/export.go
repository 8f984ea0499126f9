package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gridcheck/internal/export"
	"github.com/ginjaninja78/gridcheck/internal/session"
)

var (
	exportFlags          uploadFlags
	exportFormat         string
	exportFilter         string
	exportStatus         bool
	exportHeader         bool
	exportRequirementRow bool
	exportPattern        string
	exportOutput         string
	exportFix            bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Validate an upload and export the selected rows",
	Long: `Export validates an upload and writes the rows matching --filter as xlsx
or tab-delimited text. Header, requirement-row and status-column switches
default to the template's export settings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "Export format: xlsx or txt")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "all", "Rows to export: all, valid, warning or error")
	exportCmd.Flags().BoolVar(&exportStatus, "status", false, "Add a leading Validation Status column")
	exportCmd.Flags().BoolVar(&exportHeader, "header", true, "Write the header row")
	exportCmd.Flags().BoolVar(&exportRequirementRow, "requirement-row", false, "Write the requirement row")
	exportCmd.Flags().StringVar(&exportPattern, "name", "", "File name pattern ({template}, {date}, {time}, {timestamp}, {uuid})")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (default: output_dir)")
	exportCmd.Flags().BoolVar(&exportFix, "fix", false, "Apply auto-fix before exporting")
}

func runExport(cmd *cobra.Command, path string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	filter, err := export.ParseFilter(exportFilter)
	if err != nil {
		return err
	}
	tpl, err := exportFlags.loadTemplate(path)
	if err != nil {
		return err
	}
	opts, err := exportFlags.options()
	if err != nil {
		return err
	}

	cfg := export.ConfigFor(tpl, format)
	cfg.Filter = filter
	flags := cmd.Flags()
	if flags.Changed("status") {
		cfg.IncludeStatus = exportStatus
	}
	if flags.Changed("header") {
		cfg.IncludeHeader = exportHeader
	}
	if flags.Changed("requirement-row") {
		cfg.IncludeRequirementRow = exportRequirementRow
	}
	if exportPattern != "" {
		cfg.FilenamePattern = exportPattern
	}

	opts.AutoFix = exportFix
	opts.Export = &cfg
	opts.OutputDir = exportOutput
	if opts.OutputDir == "" {
		opts.OutputDir = mainConfig.OutputDir
	}
	opts.Now = time.Now

	result := session.ProcessFile(path, tpl, opts, logger)
	if !result.Success {
		return result.Error
	}

	stats := result.Validation.Stats
	fmt.Printf("Exported %s rows of %d (%d valid, %d warning, %d error) to %s\n",
		filter, stats.TotalRows, stats.ValidRows, stats.WarningRows, stats.ErrorRows, result.OutputFile)
	return nil
}

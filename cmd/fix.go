package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gridcheck/internal/export"
	"github.com/ginjaninja78/gridcheck/internal/session"
)

var (
	fixFlags  uploadFlags
	fixOutput string
	fixFormat string
	fixQuiet  bool
)

var fixCmd = &cobra.Command{
	Use:   "fix <file>",
	Short: "Apply auto-fix to an upload and export the result",
	Long: `Fix runs the template's auto-fix toggles over every cell (trimming,
special characters, dates, numbers, country codes, name casing, synonyms),
prints each change, revalidates and exports all rows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFix(args[0])
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixFlags.register(fixCmd)
	fixCmd.Flags().StringVarP(&fixOutput, "output", "o", "",
		"Output directory (default: output_dir)")
	fixCmd.Flags().StringVar(&fixFormat, "format", "xlsx",
		"Export format: xlsx or txt")
	fixCmd.Flags().BoolVarP(&fixQuiet, "quiet", "q", false,
		"Do not print individual changes")
}

func runFix(path string) error {
	format, err := export.ParseFormat(fixFormat)
	if err != nil {
		return err
	}
	tpl, err := fixFlags.loadTemplate(path)
	if err != nil {
		return err
	}
	opts, err := fixFlags.options()
	if err != nil {
		return err
	}

	cfg := export.ConfigFor(tpl, format)
	opts.AutoFix = true
	opts.Export = &cfg
	opts.OutputDir = fixOutput
	if opts.OutputDir == "" {
		opts.OutputDir = mainConfig.OutputDir
	}
	opts.Now = time.Now

	result := session.ProcessFile(path, tpl, opts, logger)
	if !result.Success {
		return result.Error
	}

	if !fixQuiet {
		for _, c := range result.Changes {
			fmt.Printf("  row %d, %s: %q -> %q (%v)\n", c.Row, c.Column, c.Before, c.After, c.Fixes)
		}
	}

	stats := result.Validation.Stats
	fmt.Printf("%d change(s) applied. %d rows: %d valid, %d warning, %d error\n",
		len(result.Changes), stats.TotalRows, stats.ValidRows, stats.WarningRows, stats.ErrorRows)
	fmt.Printf("Wrote %s\n", result.OutputFile)
	return nil
}

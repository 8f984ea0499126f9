// =============================================================================
// Gridcheck - Extract Command
// =============================================================================
//
// COMMAND USAGE:
//   gridcheck extract <template.xlsx> [-o templates/vendors.json] [--name Vendors]
//
// The output format follows the output file extension (.json, .yaml, .hjson).
// Newly extracted templates receive the auto_fix and export defaults of
// config.yaml.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gridcheck/internal/extractor"
	"github.com/ginjaninja78/gridcheck/internal/template"
)

var (
	extractOutput string
	extractName   string
)

var extractCmd = &cobra.Command{
	Use:   "extract <workbook>",
	Short: "Build a template from a template workbook",
	Long: `Extract reads the main sheet of a template workbook: the header row gives
field names, requirement markers, types and date formats; data validations
give allowed values and length limits; formula conditional formats give
conditional requirements. Lookup sheets are kept as tables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "",
		"Template output path (default: <templates_dir>/<workbook name>.json)")
	extractCmd.Flags().StringVar(&extractName, "name", "",
		"Template name (default: workbook file name)")
}

func runExtract(path string) error {
	tpl, err := extractor.New(logger).ExtractFile(path)
	if err != nil {
		return err
	}
	if extractName != "" {
		tpl.Name = extractName
	}
	tpl.AutoFixSettings = mainConfig.AutoFix
	tpl.ExportSettings = mainConfig.Export.Settings()

	output := extractOutput
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		output = filepath.Join(mainConfig.TemplatesDir, base+".json")
	}
	if err := tpl.Save(output); err != nil {
		return err
	}

	printTemplate(tpl)
	fmt.Printf("\nTemplate written to %s\n", output)
	return nil
}

func printTemplate(tpl *template.Template) {
	fmt.Printf("Template: %s (%d columns)\n", tpl.Name, len(tpl.Columns))
	for _, col := range tpl.Columns {
		detail := string(col.Type)
		if len(col.AllowedValues) > 0 {
			detail += fmt.Sprintf(", %d allowed values", len(col.AllowedValues))
		} else if col.ListSource != "" {
			detail += ", list " + col.ListSource
		}
		if col.MaxLength > 0 {
			detail += fmt.Sprintf(", max %d", col.MaxLength)
		}
		if col.HasConditions() {
			detail += fmt.Sprintf(", %d condition(s)", len(col.ConditionalRequirement.Conditions))
		}
		fmt.Printf("  %-3s %-30s %-12s %s\n", col.ColumnLetter, col.FieldName, col.Requirement, detail)
	}
	for _, rule := range tpl.ComplexRules {
		fmt.Printf("  rule: %s\n", rule.Description)
	}
	if len(tpl.LookupTables) > 0 {
		names := make([]string, 0, len(tpl.LookupTables))
		for name := range tpl.LookupTables {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  lookup tables: %s\n", strings.Join(names, ", "))
	}
}

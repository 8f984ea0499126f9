package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gridcheck/internal/mapper"
	"github.com/ginjaninja78/gridcheck/internal/session"
	"github.com/ginjaninja78/gridcheck/internal/template"
	"github.com/ginjaninja78/gridcheck/internal/workbook"
)

// uploadFlags are shared by the commands that read uploads.
type uploadFlags struct {
	templatePath string
	mode         string
	delimiter    string
	sheet        string
}

func (f *uploadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.templatePath, "template", "t", "",
		"Template file (.json, .yaml, .hjson); resolved through template_mapping when empty")
	cmd.Flags().StringVar(&f.mode, "mode", "",
		"Column mapping mode: positional or named (default from config)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "",
		"Delimiter for text uploads: ',', tab, pipe, ';' (default from extension)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "",
		"Upload sheet name for workbooks (default: first sheet)")
}

// loadTemplate loads the template for upload: the --template flag wins,
// then the config's template_mapping.
func (f *uploadFlags) loadTemplate(upload string) (*template.Template, error) {
	path := f.templatePath
	if path == "" {
		resolved, err := mainConfig.ResolveTemplate(upload)
		if err != nil {
			return nil, err
		}
		path = resolved
	}

	tpl, err := template.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	logger.Debug("Using template %q from %s (%d columns)", tpl.Name, path, len(tpl.Columns))
	return tpl, nil
}

// options builds session options from flags and config.
func (f *uploadFlags) options() (session.Options, error) {
	mode := mainConfig.Mode()
	if f.mode != "" {
		parsed, err := mapper.ParseMode(f.mode)
		if err != nil {
			return session.Options{}, err
		}
		mode = parsed
	}

	delimiter := f.delimiter
	if delimiter == "" {
		delimiter = mainConfig.Upload.Delimiter
	}
	var delim rune
	if delimiter != "" {
		delim = workbook.ParseDelimiter(delimiter)
	}

	sheet := f.sheet
	if sheet == "" {
		sheet = mainConfig.Upload.Sheet
	}

	return session.Options{Mode: mode, Delimiter: delim, Sheet: sheet}, nil
}

// =============================================================================
// Gridcheck - Configuration Module
// =============================================================================
//
// This module loads the application configuration (config.yaml) and applies
// environment overrides.
//
// PRECEDENCE (lowest to highest):
//   1. Built-in defaults (DefaultMainConfig)
//   2. config.yaml
//   3. Environment: GRIDCHECK_LOG_LEVEL, GRIDCHECK_OUTPUT_DIR,
//      GRIDCHECK_MAPPING_MODE (a .env file is loaded by the CLI first)
//   4. Command-line flags
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/gridcheck/internal/logging"
	"github.com/ginjaninja78/gridcheck/internal/mapper"
	"github.com/ginjaninja78/gridcheck/internal/template"
)

// Environment variables that override file values.
const (
	EnvLogLevel    = "GRIDCHECK_LOG_LEVEL"
	EnvOutputDir   = "GRIDCHECK_OUTPUT_DIR"
	EnvMappingMode = "GRIDCHECK_MAPPING_MODE"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// TemplatesDir is where template files (.json, .yaml, .hjson) live.
	// Default: "./templates"
	TemplatesDir string `yaml:"templates_dir"`

	// OutputDir receives exports and validation reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile, when set, receives a copy of the log.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MappingMode is "positional" or "named".
	// Default: "positional"
	MappingMode string `yaml:"mapping_mode"`

	// AutoFix holds the toggles stamped onto newly extracted templates.
	AutoFix template.AutoFixSettings `yaml:"auto_fix"`

	// Export holds the export defaults stamped onto newly extracted templates.
	Export ExportConfig `yaml:"export"`

	// Upload controls how delimited uploads are read.
	Upload UploadSettings `yaml:"upload"`

	// TemplateMapping selects a template by upload file name when no
	// template is given on the command line.
	TemplateMapping []TemplateRule `yaml:"template_mapping"`

	// MaxConcurrency is the maximum number of files validated at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`
}

// ExportConfig mirrors template.ExportSettings with snake_case keys.
type ExportConfig struct {
	XLSX          FormatConfig `yaml:"xlsx"`
	TXT           FormatConfig `yaml:"txt"`
	IncludeStatus bool         `yaml:"include_status"`
}

// FormatConfig is the export default for one format.
type FormatConfig struct {
	FilenamePattern    string `yaml:"filename_pattern"`
	IncludeHeader      bool   `yaml:"include_header"`
	IncludeRequirement bool   `yaml:"include_requirement"`
}

// Settings converts the config into template export settings.
func (e ExportConfig) Settings() template.ExportSettings {
	return template.ExportSettings{
		XLSX:          template.FormatSettings(e.XLSX),
		TXT:           template.FormatSettings(e.TXT),
		IncludeStatus: e.IncludeStatus,
	}
}

// UploadSettings control delimited upload parsing.
type UploadSettings struct {
	// Delimiter overrides the extension-based choice for non-xlsx uploads:
	// ",", "tab", "pipe", ";" or any single character. Empty keeps the
	// extension default.
	Delimiter string `yaml:"delimiter"`

	// Sheet names the upload sheet of xlsx files. Empty means the first.
	Sheet string `yaml:"sheet"`
}

// TemplateRule selects a template for uploads whose file name matches.
type TemplateRule struct {
	// IfFilenameContains is matched case-insensitively against the base name.
	IfFilenameContains string `yaml:"if_filename_contains"`

	// UseTemplate is the template file, relative to TemplatesDir.
	UseTemplate string `yaml:"use_template"`
}

// DefaultMainConfig returns the built-in configuration.
func DefaultMainConfig() *MainConfig {
	exportDefaults := template.DefaultExportSettings()
	return &MainConfig{
		TemplatesDir: "./templates",
		OutputDir:    "./output",
		LogLevel:     "info",
		MappingMode:  string(mapper.ModePositional),
		AutoFix:      template.DefaultAutoFixSettings(),
		Export: ExportConfig{
			XLSX:          FormatConfig(exportDefaults.XLSX),
			TXT:           FormatConfig(exportDefaults.TXT),
			IncludeStatus: exportDefaults.IncludeStatus,
		},
		MaxConcurrency: 4,
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration from a YAML file. A missing file
// yields the defaults; keys absent from the file keep their defaults.
//
// RETURNS:
//   - The configuration with environment overrides applied.
//   - An error if the file cannot be parsed or a value is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config := DefaultMainConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(config)
	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func applyEnvOverrides(config *MainConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		config.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMappingMode)); v != "" {
		config.MappingMode = v
	}
}

// applyMainConfigDefaults fills values a config file blanked out.
func applyMainConfigDefaults(config *MainConfig) {
	if config.TemplatesDir == "" {
		config.TemplatesDir = "./templates"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MappingMode == "" {
		config.MappingMode = string(mapper.ModePositional)
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Export.XLSX.FilenamePattern == "" {
		config.Export.XLSX.FilenamePattern = "{template}_{date}"
	}
	if config.Export.TXT.FilenamePattern == "" {
		config.Export.TXT.FilenamePattern = "{template}_{date}"
	}
}

// validateMainConfig checks enumerations and creates the output directory.
func validateMainConfig(config *MainConfig) error {
	if _, ok := logging.ParseLevel(config.LogLevel); !ok {
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}
	if _, err := mapper.ParseMode(config.MappingMode); err != nil {
		return err
	}
	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", config.MaxConcurrency)
	}
	for i, rule := range config.TemplateMapping {
		if rule.IfFilenameContains == "" || rule.UseTemplate == "" {
			return fmt.Errorf("template_mapping[%d] needs if_filename_contains and use_template", i)
		}
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", config.OutputDir, err)
	}

	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Level returns the parsed log level.
func (c *MainConfig) Level() logging.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// Mode returns the parsed mapping mode.
func (c *MainConfig) Mode() mapper.Mode {
	mode, err := mapper.ParseMode(c.MappingMode)
	if err != nil {
		return mapper.ModePositional
	}
	return mode
}

// ResolveTemplate finds the template for an upload through TemplateMapping.
//
// RETURNS:
//   - The template path under TemplatesDir.
//   - An error if no rule matches or the template file does not exist.
func (c *MainConfig) ResolveTemplate(uploadPath string) (string, error) {
	fileName := strings.ToLower(filepath.Base(uploadPath))

	for _, rule := range c.TemplateMapping {
		if !strings.Contains(fileName, strings.ToLower(rule.IfFilenameContains)) {
			continue
		}
		templatePath := filepath.Join(c.TemplatesDir, rule.UseTemplate)
		if _, err := os.Stat(templatePath); err != nil {
			return "", fmt.Errorf("template file not found: %s", templatePath)
		}
		return templatePath, nil
	}

	return "", fmt.Errorf("no matching template found for file: %s", filepath.Base(uploadPath))
}

// =============================================================================
// Gridcheck - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (gridcheck)
//   ├── extractCmd  (gridcheck extract)
//   ├── validateCmd (gridcheck validate)
//   ├── fixCmd      (gridcheck fix)
//   ├── exportCmd   (gridcheck export)
//   └── versionCmd  (gridcheck version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command
//   1. loads .env (if present) so GRIDCHECK_* variables can be kept there,
//   2. loads config.yaml (defaults when missing),
//   3. sets up logging to stderr and, when configured, to log_file.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gridcheck/internal/config"
	"github.com/ginjaninja78/gridcheck/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile holds the path to the optional .env file.
var envFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set up by the root command before a subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     logging.Logger = logging.Nop()
	logFile    *os.File
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "gridcheck",
	Short: "Gridcheck - Validate tabular uploads against spreadsheet templates",
	Long: `Gridcheck reads a template workbook (headers, data validations and
conditional formatting) into a declarative rule set, then validates uploaded
spreadsheets and delimited files against it, fixes what can be fixed safely
and exports the result.

Example Usage:
  gridcheck extract template.xlsx -o templates/vendors.json
  gridcheck validate --template templates/vendors.json uploads/
  gridcheck fix --template templates/vendors.json march.csv
  gridcheck export --template templates/vendors.json march.csv --format txt --filter valid`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initRuntime()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initRuntime loads the environment and configuration and builds the logger.
func initRuntime() error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}
	mainConfig = cfg

	level := cfg.Level()
	if verbose {
		level = logging.LevelDebug
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		out = io.MultiWriter(os.Stderr, f)
	}
	logger = logging.New(level, out)

	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Path to an optional .env file with GRIDCHECK_* overrides",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

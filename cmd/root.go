// =============================================================================
// Shelf Inventory Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (shelf-inventory)
//   ├── reportCmd    (shelf-inventory report)
//   ├── serveCmd     (shelf-inventory serve)
//   ├── normalizeCmd (shelf-inventory normalize)
//   ├── historyCmd   (shelf-inventory history)
//   └── versionCmd   (shelf-inventory version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration (defaults when the file is absent)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/shelf-inventory/internal/config"
	"github.com/ginjaninja78/shelf-inventory/internal/platform/logger"
	"github.com/ginjaninja78/shelf-inventory/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// mainConfig is loaded before any subcommand runs.
var mainConfig *config.MainConfig

// log is the application logger, built from mainConfig.LogLevel.
var log = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "shelf-inventory",
	Short: "Shelf Inventory Reconciler - find misplaced and problem items in a shelf scan",

	Long: `Shelf Inventory Reconciler compares the barcodes scanned along a shelf
range with the library catalog. It reports items out of call number order,
items in the wrong library or location, items the catalog thinks are
elsewhere, and items whose call numbers cannot be parsed.

Example Usage:
  shelf-inventory report --scan scan.csv --catalog export.xlsx --run run.yaml
  shelf-inventory serve --catalog export.xlsx
  shelf-inventory normalize --scheme LC "QA76.9 .D3 1999"
  shelf-inventory history --library MAIN`,

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// loadMainConfig reads cfgFile, or falls back to defaults when the default
// config file does not exist.
func loadMainConfig() error {
	if !utils.FileExists(cfgFile) && !rootCmd.PersistentFlags().Changed("config") {
		mainConfig = config.DefaultMainConfig()
		return nil
	}

	c, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}
	mainConfig = c
	return nil
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

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Assigned here rather than in the rootCmd literal: loadMainConfig reads
	// rootCmd's flags, which would otherwise be an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadMainConfig(); err != nil {
			return err
		}

		l, err := logger.New(mainConfig.LogLevel, verbose)
		if err != nil {
			return err
		}
		log = l
		return nil
	}

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.SilenceUsage = true
}

// =============================================================================
// Shelf Inventory Reconciler - Report Command
// =============================================================================
//
// This file defines the 'report' command, which reconciles scan lists
// against a catalog export and writes one workbook per scan list.
//
// COMMAND USAGE:
//   shelf-inventory report --catalog export.xlsx [--scan scan.csv] [flags]
//
// FLAGS:
//   --catalog       : Catalog bulk export (CSV or XLSX). Required.
//   --scan          : One scan list. Default: every scan file in input_dir
//   --run           : Run configuration YAML
//   --scheme, --library, --locations, --material-types, --policy-types,
//   --allow-blank-policy, --problem-mode, --sort-mode,
//   --multi-volume-tiebreak, --problems-to-top, --circ-desk,
//   --scan-date     : Override the run configuration
//   --problems-only : Only list items with problems in the Report sheet
//   --dry-run       : Print the summary without writing, recording or archiving
//
// PROCESSING PIPELINE:
//   1. Load the catalog export
//   2. Build the run parameters
//   3. Discover scan lists
//   4. For each scan list:
//      a. Read the barcodes in scan order
//      b. Merge with the catalog and generate the report
//      c. Write the workbook and record the run
//      d. Archive the scan list
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/shelf-inventory/internal/catalog"
	"github.com/ginjaninja78/shelf-inventory/internal/config"
	"github.com/ginjaninja78/shelf-inventory/internal/history"
	"github.com/ginjaninja78/shelf-inventory/internal/inventory"
	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	catalogPath   string
	scanPath      string
	runConfigPath string
	problemsOnly  bool
	dryRun        bool

	overrides config.RunConfig
)

// =============================================================================
// REPORT COMMAND DEFINITION
// =============================================================================

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Reconcile scan lists against the catalog and write report workbooks",
	Long: `The report command merges each scan list with the catalog export, checks
shelf order and item placement, and writes a workbook named after the
library, locations, first and last call numbers and today's date.

Without --scan every scan file in the input directory is processed in name
order, one report each. Successful scan files are archived when
archive_inputs is enabled.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	f := reportCmd.Flags()
	f.StringVar(&catalogPath, "catalog", "", "Catalog bulk export (CSV or XLSX)")
	f.StringVar(&scanPath, "scan", "", "Scan list to process (default: every scan file in input_dir)")
	f.StringVar(&runConfigPath, "run", "", "Run configuration YAML file")
	f.BoolVar(&problemsOnly, "problems-only", false, "Only list items with problems in the Report sheet")
	f.BoolVar(&dryRun, "dry-run", false, "Print the summary without writing, recording or archiving")

	f.StringVar(&overrides.Scheme, "scheme", "", "Classification scheme: LC or Dewey")
	f.StringVar(&overrides.Library, "library", "", "Expected library code")
	f.StringSliceVar(&overrides.Locations, "locations", nil, "Expected location codes")
	f.StringSliceVar(&overrides.MaterialTypes, "material-types", nil, "Expected material types")
	f.StringSliceVar(&overrides.PolicyTypes, "policy-types", nil, "Expected policy types")
	f.BoolVar(&overrides.AllowBlankPolicy, "allow-blank-policy", false, "Accept items with no policy type")
	f.StringVar(&overrides.ProblemMode, "problem-mode", "", "all, onlyOrder or onlyOther")
	f.StringVar(&overrides.SortMode, "sort-mode", "", "correctOrder or actualOrder")
	f.BoolVar(&overrides.MultiVolumeTiebreak, "multi-volume-tiebreak", false, "Order volumes sharing a call number by description")
	f.BoolVar(&overrides.ProblemsToTop, "problems-to-top", false, "Sort unparsable call numbers to the top")
	f.StringVar(&overrides.CircDesk, "circ-desk", "", "Circulation desk location code")
	f.StringVar(&overrides.ScanDate, "scan-date", "", "Scan date, RFC3339 or YYYY-MM-DD")

	_ = reportCmd.MarkFlagRequired("catalog")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReport(cmd *cobra.Command) error {
	started := time.Now()

	// =========================================================================
	// STEP 1: LOAD THE CATALOG
	// =========================================================================

	table, err := catalog.LoadTable(catalogPath, mainConfig.CatalogSettings)
	if err != nil {
		return fmt.Errorf("failed to read catalog export: %w", err)
	}
	cat, err := catalog.FromTable(table)
	if err != nil {
		return fmt.Errorf("failed to load catalog export: %w", err)
	}
	log.Info("catalog loaded", zap.String("path", catalogPath), zap.Int("records", cat.Len()))

	// =========================================================================
	// STEP 2: BUILD RUN PARAMETERS
	// =========================================================================

	rc, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	params, err := rc.Parameters(time.Now())
	if err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	// =========================================================================
	// STEP 3: DISCOVER SCAN LISTS
	// =========================================================================

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.ArchiveDir)
	fm.ArchiveOnSuccess = mainConfig.ArchiveInputs && !dryRun

	scanFiles := []string{scanPath}
	if scanPath == "" {
		scanFiles, err = fm.DiscoverScanFiles()
		if err != nil {
			return err
		}
		if len(scanFiles) == 0 {
			fmt.Printf("No scan files found in %s\n", mainConfig.InputDir)
			return nil
		}
	}

	svc, closeStore, err := newReportService(fm, cat)
	if err != nil {
		return err
	}
	defer closeStore()

	// =========================================================================
	// STEP 4: RUN EACH SCAN LIST
	// =========================================================================

	var failed int
	for _, file := range scanFiles {
		if err := runScanFile(cmd, svc, fm, params, file); err != nil {
			failed++
			log.Error("scan file failed", zap.String("path", file), zap.Error(err))
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(file), err)
		}
	}

	fmt.Printf("\nProcessed %d scan file(s), %d failed, in %s\n",
		len(scanFiles), failed, time.Since(started).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d scan file(s) failed", failed, len(scanFiles))
	}
	return nil
}

// loadRunConfig reads --run and applies the flag overrides.
func loadRunConfig(cmd *cobra.Command) (*config.RunConfig, error) {
	rc := &config.RunConfig{}
	if runConfigPath != "" {
		loaded, err := config.LoadRunConfig(runConfigPath)
		if err != nil {
			return nil, err
		}
		rc = loaded
	}

	applyRunOverrides(rc, &overrides, cmd.Flags().Changed)
	return rc, nil
}

// applyRunOverrides copies every field of o whose flag was set onto rc.
func applyRunOverrides(rc, o *config.RunConfig, changed func(name string) bool) {
	for _, f := range []struct {
		flag  string
		apply func()
	}{
		{"scheme", func() { rc.Scheme = o.Scheme }},
		{"library", func() { rc.Library = o.Library }},
		{"locations", func() { rc.Locations = o.Locations }},
		{"material-types", func() { rc.MaterialTypes = o.MaterialTypes }},
		{"policy-types", func() { rc.PolicyTypes = o.PolicyTypes }},
		{"allow-blank-policy", func() { rc.AllowBlankPolicy = o.AllowBlankPolicy }},
		{"problem-mode", func() { rc.ProblemMode = o.ProblemMode }},
		{"sort-mode", func() { rc.SortMode = o.SortMode }},
		{"multi-volume-tiebreak", func() { rc.MultiVolumeTiebreak = o.MultiVolumeTiebreak }},
		{"problems-to-top", func() { rc.ProblemsToTop = o.ProblemsToTop }},
		{"circ-desk", func() { rc.CircDesk = o.CircDesk }},
		{"scan-date", func() { rc.ScanDate = o.ScanDate }},
	} {
		if changed(f.flag) {
			f.apply()
		}
	}
}

// newReportService wires the inventory service for CLI runs. The returned
// func closes the history store.
func newReportService(fm *utils.FileManager, cat *catalog.Catalog) (*inventory.Service, func(), error) {
	opts := []inventory.Option{
		inventory.WithCatalog(cat),
		inventory.WithLogger(log),
	}
	closeStore := func() {}

	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return nil, nil, err
		}
		store, err := history.Open(mainConfig.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		closeStore = func() { store.Close() }
		opts = append(opts,
			inventory.WithHistory(store),
			inventory.WithOutputDir(mainConfig.OutputDir, problemsOnly),
		)
	}

	svc, err := inventory.New(report.NewAssembler(report.WithLogger(log)), opts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return svc, closeStore, nil
}

func runScanFile(cmd *cobra.Command, svc *inventory.Service, fm *utils.FileManager, params report.Parameters, file string) error {
	table, err := catalog.LoadTable(file, mainConfig.ScanSettings)
	if err != nil {
		return err
	}
	barcodes := catalog.ScanBarcodes(table, mainConfig.ScanSettings)

	result, err := svc.Run(cmd.Context(), params, barcodes)
	if err != nil {
		return err
	}

	fmt.Printf("  ✓ %s -> %s\n", filepath.Base(file), outputLabel(result))
	printCounts(result.Report)

	if _, err := fm.ArchiveInputFile(file); err != nil {
		return fmt.Errorf("failed to archive scan file: %w", err)
	}
	return nil
}

func outputLabel(result *inventory.Result) string {
	if result.OutputFile == "" {
		return result.Report.Filename + " (not written)"
	}
	return result.OutputFile
}

// printCounts prints the summary counts of a report.
func printCounts(data *report.ReportData) {
	c := data.Counts
	fmt.Printf("      Items: %d (sortable %d, unsortable %d), with problems: %d\n",
		c.Total, c.Sortable, c.Unsortable, c.WithProblems)

	for _, line := range []struct {
		label string
		count report.Count
	}{
		{"Order", c.Order},
		{"Library", c.Library},
		{"Location", c.Location},
		{"Temporary location", c.TemporaryLocation},
		{"Policy", c.Policy},
		{"Type", c.Type},
		{"Not in place", c.NotInPlace},
		{"Request", c.Request},
		{"Unparsable call number", c.UnparsableCallNumber},
		{"Not in catalog", c.NotInCatalog},
		{"Needs scan in", c.NeedsScanIn},
	} {
		fmt.Printf("      %-24s %s\n", line.label+":", line.count)
	}
}

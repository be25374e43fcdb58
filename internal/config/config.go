// =============================================================================
// Shelf Inventory Reconciler - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the configuration
// files. It handles both the main application configuration and the
// per-run configuration describing what a scanned shelf should contain.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, database, logging, server
//   2. Run Config (run.yaml or a JSON request body): one inventory run
//
// Both are loaded the same way: read, unmarshal, apply defaults, validate.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/shelf-inventory/internal/callnumber"
	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is where scan lists and catalog exports are read from.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is where report workbooks are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives scan files after a successful run.
	// Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveInputs moves processed scan files into ArchiveDir.
	ArchiveInputs bool `yaml:"archive_inputs"`

	// =========================================================================
	// STORAGE AND LOGGING
	// =========================================================================

	// DatabasePath is the SQLite run history database.
	// Default: "./shelf-inventory.db"
	DatabasePath string `yaml:"database_path"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// ListenAddr is the HTTP listen address for the serve command.
	// Default: ":8080"
	ListenAddr string `yaml:"listen_addr"`

	// =========================================================================
	// FILE FORMATS
	// =========================================================================

	// ScanSettings describes scan list files.
	ScanSettings CSVSettings `yaml:"scan_settings"`

	// CatalogSettings describes catalog export files.
	CatalogSettings CSVSettings `yaml:"catalog_settings"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing delimited input files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// BarcodeColumn is the header of the barcode column.
	// Default: "barcode"
	BarcodeColumn string `yaml:"barcode_column"`
}

// =============================================================================
// RUN CONFIGURATION STRUCTURE
// =============================================================================

// RunConfig describes one inventory run.
type RunConfig struct {
	// Scheme is "LC" or "Dewey". Required.
	Scheme string `yaml:"scheme" json:"scheme"`

	// Library is the expected library code.
	Library string `yaml:"library" json:"library"`

	// Locations are the acceptable location codes.
	Locations []string `yaml:"locations" json:"locations"`

	// MaterialTypes are the acceptable material types. Empty means any.
	MaterialTypes []string `yaml:"material_types" json:"materialTypes"`

	// PolicyTypes are the acceptable policy types. Empty means any.
	PolicyTypes []string `yaml:"policy_types" json:"policyTypes"`

	// AllowBlankPolicy accepts items without a policy type.
	AllowBlankPolicy bool `yaml:"allow_blank_policy" json:"allowBlankPolicy"`

	// ProblemMode is "all", "onlyOrder" or "onlyOther".
	// Default: "all"
	ProblemMode string `yaml:"problem_mode" json:"problemMode"`

	// SortMode is "correctOrder" or "actualOrder".
	// Default: "correctOrder"
	SortMode string `yaml:"sort_mode" json:"sortMode"`

	// MultiVolumeTiebreak orders items sharing a call number by description.
	MultiVolumeTiebreak bool `yaml:"multi_volume_tiebreak" json:"multiVolumeTiebreak"`

	// ProblemsToTop sorts unparsable call numbers before all others.
	ProblemsToTop bool `yaml:"problems_to_top" json:"problemsToTop"`

	// CircDesk is the circulation desk code. Passed through to the report.
	CircDesk string `yaml:"circ_desk" json:"circDesk"`

	// ScanDate is RFC3339 or YYYY-MM-DD.
	// Default: the time of the run
	ScanDate string `yaml:"scan_date" json:"scanDate"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultMainConfig returns a MainConfig with every default applied.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{}
	ApplyMainConfigDefaults(config)
	return config
}

// ApplyMainConfigDefaults sets default values for any unset configuration options.
func ApplyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "./archive"
	}
	if config.DatabasePath == "" {
		config.DatabasePath = "./shelf-inventory.db"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	applyCSVDefaults(&config.ScanSettings)
	applyCSVDefaults(&config.CatalogSettings)
}

func applyCSVDefaults(s *CSVSettings) {
	if s.Delimiter == "" {
		s.Delimiter = ","
	}
	if s.HeaderRows == 0 {
		s.HeaderRows = 1
	}
	if s.DataStartRow == 0 {
		s.DataStartRow = s.HeaderRows + 1
	}
	if s.BarcodeColumn == "" {
		s.BarcodeColumn = "barcode"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}

	for name, s := range map[string]CSVSettings{"scan_settings": config.ScanSettings, "catalog_settings": config.CatalogSettings} {
		if len([]rune(s.Delimiter)) != 1 {
			return fmt.Errorf("%s: delimiter must be a single character, got %q", name, s.Delimiter)
		}
		if s.DataStartRow <= s.HeaderRows {
			return fmt.Errorf("%s: data_start_row %d must come after %d header row(s)", name, s.DataStartRow, s.HeaderRows)
		}
	}
	return nil
}

// LoadRunConfig loads a run configuration from a YAML file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config: %w", err)
	}
	return ParseRunConfig(data)
}

// ParseRunConfig parses a YAML run configuration and applies defaults.
func ParseRunConfig(data []byte) (*RunConfig, error) {
	var rc RunConfig
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}
	rc.ApplyDefaults()
	return &rc, nil
}

// ApplyDefaults sets the default problem and sort modes.
func (rc *RunConfig) ApplyDefaults() {
	if rc.ProblemMode == "" {
		rc.ProblemMode = string(types.ProblemModeAll)
	}
	if rc.SortMode == "" {
		rc.SortMode = string(types.SortModeCorrectOrder)
	}
}

// Parameters converts the run configuration into validated report parameters.
//
// PARAMETERS:
//   - now: The scan date used when none is configured.
//
// RETURNS:
//   - The report parameters.
//   - A report sentinel error (report.ErrMissingScheme, ...) when invalid.
func (rc *RunConfig) Parameters(now time.Time) (report.Parameters, error) {
	rc.ApplyDefaults()

	if strings.TrimSpace(rc.Scheme) == "" {
		return report.Parameters{}, report.ErrMissingScheme
	}
	scheme, err := callnumber.ParseScheme(rc.Scheme)
	if err != nil {
		return report.Parameters{}, fmt.Errorf("%w: %w", report.ErrInvalidScheme, err)
	}

	scanDate := now
	if rc.ScanDate != "" {
		scanDate, err = ParseScanDate(rc.ScanDate)
		if err != nil {
			return report.Parameters{}, err
		}
	}

	params := report.Parameters{
		Scheme:              scheme,
		Library:             strings.TrimSpace(rc.Library),
		Locations:           trimAll(rc.Locations),
		MaterialTypes:       trimAll(rc.MaterialTypes),
		PolicyTypes:         trimAll(rc.PolicyTypes),
		AllowBlankPolicy:    rc.AllowBlankPolicy,
		ProblemMode:         types.ProblemMode(rc.ProblemMode),
		SortMode:            types.SortMode(rc.SortMode),
		MultiVolumeTiebreak: rc.MultiVolumeTiebreak,
		ProblemsToTop:       rc.ProblemsToTop,
		CircDesk:            rc.CircDesk,
		ScanDate:            scanDate,
	}
	if err := params.Validate(); err != nil {
		return report.Parameters{}, err
	}
	return params, nil
}

// ErrInvalidScanDate is returned for a scan date in an unknown layout.
var ErrInvalidScanDate = errors.New("invalid scan date")

// ParseScanDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
// A plain date is midnight UTC.
func ParseScanDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected RFC3339 or YYYY-MM-DD", ErrInvalidScanDate, s)
	}
	return t, nil
}

// trimAll trims every value and drops empty ones.
func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

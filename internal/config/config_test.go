package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMainConfig_Defaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "output_dir: ./reports\narchive_inputs: true\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./reports", cfg.OutputDir)
	assert.Equal(t, "./archive", cfg.ArchiveDir)
	assert.True(t, cfg.ArchiveInputs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ",", cfg.ScanSettings.Delimiter)
	assert.Equal(t, 1, cfg.CatalogSettings.HeaderRows)
	assert.Equal(t, 2, cfg.CatalogSettings.DataStartRow)
	assert.Equal(t, "barcode", cfg.ScanSettings.BarcodeColumn)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"log level":  "log_level: chatty\n",
		"delimiter":  "scan_settings:\n  delimiter: ';;'\n",
		"data start": "catalog_settings:\n  header_rows: 3\n  data_start_row: 2\n",
		"yaml":       "input_dir: [unterminated\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMainConfig(writeFile(t, "config.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRunConfig(t *testing.T) {
	path := writeFile(t, "run.yaml", `
scheme: lc
library: MAIN
locations: [STACKS, " OVERSIZE ", ""]
material_types: [BOOK]
multi_volume_tiebreak: true
circ_desk: CIRC
scan_date: "2024-03-01"
`)

	rc, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "all", rc.ProblemMode)
	assert.Equal(t, "correctOrder", rc.SortMode)

	params, err := rc.Parameters(time.Now())
	require.NoError(t, err)

	assert.Equal(t, types.SchemeLC, params.Scheme)
	assert.Equal(t, []string{"STACKS", "OVERSIZE"}, params.Locations)
	assert.Equal(t, []string{"BOOK"}, params.MaterialTypes)
	assert.Nil(t, params.PolicyTypes)
	assert.True(t, params.MultiVolumeTiebreak)
	assert.Equal(t, "CIRC", params.CircDesk)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), params.ScanDate)
}

func TestRunConfig_ParametersErrors(t *testing.T) {
	now := time.Now()

	_, err := (&RunConfig{}).Parameters(now)
	assert.ErrorIs(t, err, report.ErrMissingScheme)

	_, err = (&RunConfig{Scheme: "UDC"}).Parameters(now)
	assert.ErrorIs(t, err, report.ErrInvalidScheme)

	_, err = (&RunConfig{Scheme: "Dewey", ProblemMode: "everything"}).Parameters(now)
	assert.ErrorIs(t, err, report.ErrInvalidProblemMode)

	_, err = (&RunConfig{Scheme: "Dewey", SortMode: "shuffled"}).Parameters(now)
	assert.ErrorIs(t, err, report.ErrInvalidSortMode)

	_, err = (&RunConfig{Scheme: "Dewey", ScanDate: "yesterday"}).Parameters(now)
	assert.Error(t, err)
}

func TestRunConfig_DefaultScanDate(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	params, err := (&RunConfig{Scheme: "dewey"}).Parameters(now)
	require.NoError(t, err)
	assert.Equal(t, now, params.ScanDate)
	assert.Equal(t, types.SchemeDewey, params.Scheme)
}

func TestParseScanDate(t *testing.T) {
	got, err := ParseScanDate("2024-03-01T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), got)

	_, err = ParseScanDate("03/01/2024")
	assert.ErrorIs(t, err, ErrInvalidScanDate)
}

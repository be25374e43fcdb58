package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/shelf-inventory/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	out, err := execute(t, "normalize", "--scheme", "LC", "QA76.9 .D3", "???")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "QA76.9 .D3\t"))
	assert.True(t, strings.HasSuffix(lines[1], "(unparsable)"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}

func TestHistoryCommand_Empty(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("database_path: "+filepath.Join(dir, "h.db")+"\n"), 0o644))

	out, err := execute(t, "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestReportCommand_DryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"database_path: "+filepath.Join(dir, "h.db")+"\n"+
			"output_dir: "+filepath.Join(dir, "out")+"\n"), 0o644))

	catalogFile := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalogFile, []byte("barcode,call_number\n1,A1\n2,A2\n3,A3\n"), 0o644))
	scanFile := filepath.Join(dir, "scan.csv")
	require.NoError(t, os.WriteFile(scanFile, []byte("barcode\n1\n3\n2\n"), 0o644))

	_, err := execute(t, "report", "--config", cfg,
		"--catalog", catalogFile, "--scan", scanFile,
		"--scheme", "LC", "--problem-mode", "onlyOrder", "--dry-run")
	require.NoError(t, err)

	assert.NoDirExists(t, filepath.Join(dir, "out"), "dry run writes nothing")
	assert.FileExists(t, scanFile, "dry run archives nothing")
}

func TestApplyRunOverrides(t *testing.T) {
	rc := &config.RunConfig{
		Scheme:        "LC",
		MaterialTypes: []string{"BOOK"},
		PolicyTypes:   []string{"LOAN"},
		CircDesk:      "CIRC",
	}
	o := &config.RunConfig{
		Scheme:              "Dewey",
		MaterialTypes:       []string{"BOOK", "DVD"},
		PolicyTypes:         []string{"REF"},
		AllowBlankPolicy:    true,
		MultiVolumeTiebreak: true,
		ProblemsToTop:       true,
		CircDesk:            "DESK",
	}
	set := map[string]bool{
		"material-types":        true,
		"allow-blank-policy":    true,
		"multi-volume-tiebreak": true,
		"problems-to-top":       true,
	}

	applyRunOverrides(rc, o, func(name string) bool { return set[name] })

	assert.Equal(t, "LC", rc.Scheme)
	assert.Equal(t, []string{"BOOK", "DVD"}, rc.MaterialTypes)
	assert.Equal(t, []string{"LOAN"}, rc.PolicyTypes)
	assert.True(t, rc.AllowBlankPolicy)
	assert.True(t, rc.MultiVolumeTiebreak)
	assert.True(t, rc.ProblemsToTop)
	assert.Equal(t, "CIRC", rc.CircDesk)
}

func TestReportCommand_RunOverrideFlags(t *testing.T) {
	var names []string
	applyRunOverrides(&config.RunConfig{}, &config.RunConfig{}, func(name string) bool {
		names = append(names, name)
		return false
	})
	require.NotEmpty(t, names)
	for _, name := range names {
		assert.NotNil(t, reportCmd.Flags().Lookup(name), name)
	}
}

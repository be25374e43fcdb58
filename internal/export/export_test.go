package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

func item(callNumber, title string) types.PhysicalItem {
	return types.PhysicalItem{
		Barcode:          "bc-" + callNumber,
		ExistsInAlma:     true,
		CallNumber:       callNumber,
		Title:            title,
		Library:          types.String("MAIN"),
		Location:         types.String("STACKS"),
		PolicyType:       types.String("LOAN"),
		ItemMaterialType: types.String("BOOK"),
		Status:           types.String(types.ItemInPlace),
	}
}

func generate(t *testing.T, params report.Parameters) *report.ReportData {
	t.Helper()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := report.NewAssembler(report.WithClock(func() time.Time { return now }))

	data, err := a.Generate(params, []types.PhysicalItem{
		item("A2", "Second"),
		item("PERIODICAL", "Unsortable"),
		item("A1", "First"),
	})
	require.NoError(t, err)
	return data
}

func baseParams() report.Parameters {
	return report.Parameters{
		Scheme:    types.SchemeLC,
		Library:   "MAIN",
		Locations: []string{"STACKS"},
	}
}

func barcodes(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Barcode
	}
	return out
}

func TestRows_CorrectOrderAppendsUnsortables(t *testing.T) {
	rows := Rows(generate(t, baseParams()), false)

	assert.Equal(t, []string{"bc-A1", "bc-A2", "bc-PERIODICAL"}, barcodes(rows))
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
	assert.Zero(t, rows[2].Position)
	assert.Equal(t, "", rows[2].Cells()[1])
	assert.NotEmpty(t, rows[2].UnparsableCallNumber)
}

func TestRows_ProblemsToTop(t *testing.T) {
	params := baseParams()
	params.ProblemsToTop = true

	rows := Rows(generate(t, params), false)
	assert.Equal(t, []string{"bc-PERIODICAL", "bc-A1", "bc-A2"}, barcodes(rows))
}

func TestRows_ActualOrder(t *testing.T) {
	params := baseParams()
	params.SortMode = types.SortModeActualOrder

	rows := Rows(generate(t, params), false)
	assert.Equal(t, []string{"bc-A2", "bc-PERIODICAL", "bc-A1"}, barcodes(rows))
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].Position, rows[1].Position, rows[2].Position})
}

func TestRows_ProblemsOnly(t *testing.T) {
	rows := Rows(generate(t, baseParams()), true)

	assert.Equal(t, []string{"bc-A2", "bc-PERIODICAL"}, barcodes(rows))
	assert.Equal(t, "OUT OF ORDER; should be between A1 and LOCATION END", rows[0].Order)
}

func TestTruncateTitle(t *testing.T) {
	short := "A Short Title"
	assert.Equal(t, short, TruncateTitle(short))

	exact := strings.Repeat("x", MaxTitleLength)
	assert.Equal(t, exact, TruncateTitle(exact))

	long := strings.Repeat("é", MaxTitleLength+10)
	got := TruncateTitle(long)
	assert.Equal(t, strings.Repeat("é", MaxTitleLength)+"...", got)
}

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	params := baseParams()
	params.ProblemMode = types.ProblemModeOnlyOrder
	data := generate(t, params)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, data, false))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ReportSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"bc-A1", "1", "A1", "", "First"}, rows[1])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	counts := map[string]string{}
	inCounts := false
	for _, row := range summary {
		if len(row) == 0 {
			continue
		}
		if row[0] == "Count" {
			inCounts = true
			continue
		}
		if inCounts && len(row) == 2 {
			counts[row[0]] = row[1]
		}
	}
	assert.Equal(t, "3", counts["Items"])
	assert.Equal(t, "1", counts["Order"])
	assert.Equal(t, "N/A", counts["Library"])
	assert.Equal(t, "N/A", counts["Needs Scan In"])
}

func TestSaveWorkbook(t *testing.T) {
	data := generate(t, baseParams())
	path := filepath.Join(t.TempDir(), data.Filename)

	require.NoError(t, SaveWorkbook(path, data, true))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

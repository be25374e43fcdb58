package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/shelf-inventory/internal/report"
)

// Sheet names of the exported workbook.
const (
	ReportSheet  = "Report"
	SummarySheet = "Summary"
)

// =============================================================================
// WORKBOOK WRITER
// =============================================================================

// WriteWorkbook renders the report as an XLSX workbook to w.
func WriteWorkbook(w io.Writer, data *report.ReportData, problemsOnly bool) error {
	f, err := buildWorkbook(data, problemsOnly)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook renders the report as an XLSX workbook at path.
func SaveWorkbook(path string, data *report.ReportData, problemsOnly bool) error {
	f, err := buildWorkbook(data, problemsOnly)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(data *report.ReportData, problemsOnly bool) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), ReportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name report sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeReportSheet(f, Rows(data, problemsOnly), header); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, data, header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeReportSheet(f *excelize.File, rows []Row, header int) error {
	if err := setRow(f, ReportSheet, 1, Columns); err != nil {
		return err
	}
	if err := f.SetRowStyle(ReportSheet, 1, 1, header); err != nil {
		return fmt.Errorf("failed to style report header: %w", err)
	}

	for i, row := range rows {
		if err := setRow(f, ReportSheet, i+2, row.Cells()); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ReportSheet, "C", "E", 30); err != nil {
		return fmt.Errorf("failed to size report columns: %w", err)
	}
	return nil
}

// =============================================================================
// SUMMARY SHEET
// =============================================================================

// SummaryRows returns the Summary sheet content as label/value pairs.
func SummaryRows(data *report.ReportData) [][]string {
	p := data.Parameters
	c := data.Counts

	return [][]string{
		{"Parameter", "Value"},
		{"Report ID", data.ID},
		{"Generated", data.GeneratedAt.Format(time.RFC3339)},
		{"Scheme", string(p.Scheme)},
		{"Library", p.Library},
		{"Locations", strings.Join(p.Locations, ", ")},
		{"Material Types", strings.Join(p.MaterialTypes, ", ")},
		{"Policy Types", strings.Join(p.PolicyTypes, ", ")},
		{"Allow Blank Policy", yesNo(p.AllowBlankPolicy)},
		{"Problem Mode", string(p.ProblemMode)},
		{"Sort Mode", string(p.SortMode)},
		{"Multi-volume Tiebreak", yesNo(p.MultiVolumeTiebreak)},
		{"Circulation Desk", p.CircDesk},
		{"Scan Date", p.ScanDate.Format(time.RFC3339)},
		{"", ""},
		{"Count", "Value"},
		{"Items", fmt.Sprint(c.Total)},
		{"Sortable", fmt.Sprint(c.Sortable)},
		{"Unsortable", fmt.Sprint(c.Unsortable)},
		{"With Problems", fmt.Sprint(c.WithProblems)},
		{"Order", c.Order.String()},
		{"Library", c.Library.String()},
		{"Location", c.Location.String()},
		{"Temporary Location", c.TemporaryLocation.String()},
		{"Policy", c.Policy.String()},
		{"Type", c.Type.String()},
		{"Not In Place", c.NotInPlace.String()},
		{"Request", c.Request.String()},
		{"Unparsable Call Number", c.UnparsableCallNumber.String()},
		{"Not In Catalog", c.NotInCatalog.String()},
		{"Needs Scan In", c.NeedsScanIn.String()},
	}
}

func writeSummarySheet(f *excelize.File, data *report.ReportData, header int) error {
	for i, row := range SummaryRows(data) {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
		if row[0] == "Parameter" || row[0] == "Count" {
			if err := f.SetRowStyle(SummarySheet, i+1, i+1, header); err != nil {
				return fmt.Errorf("failed to style summary header: %w", err)
			}
		}
	}

	if err := f.SetColWidth(SummarySheet, "A", "B", 25); err != nil {
		return fmt.Errorf("failed to size summary columns: %w", err)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func setRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// =============================================================================
// Shelf Inventory Reconciler - XLSX Parser Module
// =============================================================================
//
// This module reads scan lists and catalog exports saved as Excel
// workbooks. Only the first sheet is read. Its rows are handed to the CSV
// parser's table builder, so header handling and empty-row skipping behave
// exactly as they do for CSV files.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/shelf-inventory/internal/config"
	"github.com/ginjaninja78/shelf-inventory/internal/csvparser"
)

// ParseFile reads the first sheet of the workbook at path.
//
// PARAMETERS:
//   - path:     The path to the XLSX file.
//   - settings: Header and data row settings. The delimiter is ignored.
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook cannot be opened or has no usable sheet.
func ParseFile(path string, settings config.CSVSettings) (*csvparser.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseFirstSheet(f, settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	table.SourceFile = path
	return table, nil
}

// Parse reads the first sheet of a workbook from r.
func Parse(r io.Reader, settings config.CSVSettings) (*csvparser.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFirstSheet(f, settings)
}

func parseFirstSheet(f *excelize.File, settings config.CSVSettings) (*csvparser.Table, error) {
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	return csvparser.FromRows(rows, settings)
}

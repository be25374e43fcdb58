// =============================================================================
// Shelf Inventory Reconciler - Catalog Merge
// =============================================================================
//
// This module turns ingested tables into the engine's input:
//   - Scan lists become barcodes in scan order
//   - Catalog bulk exports become item records keyed by barcode
//   - Merge joins the two into PhysicalItems
//
// CATALOG EXPORT COLUMNS (matched case-insensitively, all optional except
// barcode):
//   barcode, title, call_number, description, library, library_name,
//   location, location_name, policy_type, material_type, status,
//   process_type, last_modified, last_loan, in_temp_location,
//   has_temp_location, requested
//
// An empty cell is treated the same as a missing column: the field is nil.
//
// =============================================================================

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/shelf-inventory/internal/config"
	"github.com/ginjaninja78/shelf-inventory/internal/csvparser"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
	"github.com/ginjaninja78/shelf-inventory/internal/xlsxparser"
)

// Column names of the catalog export.
const (
	ColBarcode         = "barcode"
	ColTitle           = "title"
	ColCallNumber      = "call_number"
	ColDescription     = "description"
	ColLibrary         = "library"
	ColLibraryName     = "library_name"
	ColLocation        = "location"
	ColLocationName    = "location_name"
	ColPolicyType      = "policy_type"
	ColMaterialType    = "material_type"
	ColStatus          = "status"
	ColProcessType     = "process_type"
	ColLastModified    = "last_modified"
	ColLastLoan        = "last_loan"
	ColInTempLocation  = "in_temp_location"
	ColHasTempLocation = "has_temp_location"
	ColRequested       = "requested"
)

// =============================================================================
// TABLE LOADING
// =============================================================================

// LoadTable parses a CSV or XLSX file, chosen by extension.
func LoadTable(path string, settings config.CSVSettings) (*csvparser.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseFile(path, settings)
	default:
		return csvparser.ParseFile(path, settings)
	}
}

// ScanBarcodes extracts barcodes in scan order.
//
// The column named by settings.BarcodeColumn is used when present.
// Otherwise the first column of every row is used. A first row whose first
// cell holds no digit is header text, and the first settings.HeaderRows rows
// are skipped. Blank cells are skipped; duplicates are kept because each
// scan is a record.
func ScanBarcodes(table *csvparser.Table, settings config.CSVSettings) []string {
	var barcodes []string

	if values := table.Column(settings.BarcodeColumn); values != nil {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				barcodes = append(barcodes, v)
			}
		}
		return barcodes
	}

	rows := table.RawRows
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[min(max(settings.HeaderRows, 1), len(rows)):]
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(row[0]); v != "" {
			barcodes = append(barcodes, v)
		}
	}
	return barcodes
}

// isHeaderRow reports whether the first cell of row is header text rather
// than a barcode. Barcodes always carry at least one digit.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return !strings.ContainsAny(row[0], "0123456789")
}

// =============================================================================
// CATALOG RECORDS
// =============================================================================

// Catalog holds catalog records keyed by barcode.
type Catalog struct {
	records map[string]types.PhysicalItem
}

// FromTable reads catalog records from a bulk export table.
//
// RETURNS:
//   - The catalog.
//   - An error if the barcode column is missing, or a date cell cannot be parsed.
func FromTable(table *csvparser.Table) (*Catalog, error) {
	if table.HeaderIndex(ColBarcode) < 0 {
		return nil, fmt.Errorf("catalog export has no %q column", ColBarcode)
	}

	cols := make(map[string]string)
	for _, name := range []string{
		ColBarcode, ColTitle, ColCallNumber, ColDescription, ColLibrary, ColLibraryName,
		ColLocation, ColLocationName, ColPolicyType, ColMaterialType, ColStatus,
		ColProcessType, ColLastModified, ColLastLoan, ColInTempLocation,
		ColHasTempLocation, ColRequested,
	} {
		if idx := table.HeaderIndex(name); idx >= 0 {
			cols[name] = table.Headers[idx]
		}
	}

	c := &Catalog{records: make(map[string]types.PhysicalItem, len(table.Rows))}
	for i, row := range table.Rows {
		cell := func(name string) string {
			header, ok := cols[name]
			if !ok {
				return ""
			}
			return strings.TrimSpace(row[header])
		}

		barcode := cell(ColBarcode)
		if barcode == "" {
			continue
		}

		lastModified, err := ParseTimestamp(cell(ColLastModified))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+1, ColLastModified, err)
		}
		lastLoan, err := ParseTimestamp(cell(ColLastLoan))
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+1, ColLastLoan, err)
		}

		c.records[barcode] = types.PhysicalItem{
			Barcode:          barcode,
			ExistsInAlma:     true,
			CallNumber:       cell(ColCallNumber),
			Description:      cell(ColDescription),
			Title:            cell(ColTitle),
			Library:          optional(cell(ColLibrary)),
			LibraryName:      optional(cell(ColLibraryName)),
			Location:         optional(cell(ColLocation)),
			LocationName:     optional(cell(ColLocationName)),
			PolicyType:       optional(cell(ColPolicyType)),
			ItemMaterialType: optional(cell(ColMaterialType)),
			Status:           optional(cell(ColStatus)),
			ProcessType:      optional(cell(ColProcessType)),
			LastModifiedDate: lastModified,
			LastLoanDate:     lastLoan,
			InTempLocation:   ParseBool(cell(ColInTempLocation)),
			HasTempLocation:  ParseBool(cell(ColHasTempLocation)),
			Requested:        ParseBool(cell(ColRequested)),
		}
	}
	return c, nil
}

// New builds a catalog from records. Later records win on duplicate barcodes.
func New(records ...types.PhysicalItem) *Catalog {
	c := &Catalog{records: make(map[string]types.PhysicalItem, len(records))}
	for _, r := range records {
		r.ExistsInAlma = true
		c.records[r.Barcode] = r
	}
	return c
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.records) }

// Get returns the record for barcode.
func (c *Catalog) Get(barcode string) (types.PhysicalItem, bool) {
	r, ok := c.records[barcode]
	return r, ok
}

// Lookup merges barcodes with the catalog in scan order. Barcodes without a
// record become items with ExistsInAlma false.
func (c *Catalog) Lookup(ctx context.Context, barcodes []string) ([]types.PhysicalItem, error) {
	items := make([]types.PhysicalItem, 0, len(barcodes))
	for _, barcode := range barcodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r, ok := c.records[barcode]; ok {
			items = append(items, r)
			continue
		}
		items = append(items, types.PhysicalItem{Barcode: barcode})
	}
	return items, nil
}

// =============================================================================
// CELL PARSERS
// =============================================================================

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseTimestamp converts a cell to Unix milliseconds. It accepts an integer
// of Unix milliseconds or a date in one of the common export layouts.
// An empty cell is nil.
func ParseTimestamp(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &ms, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ms := t.UnixMilli()
			return &ms, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseBool converts a cell to a boolean. Unrecognized values are nil.
func ParseBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "t", "1":
		return types.Bool(true)
	case "false", "no", "n", "f", "0":
		return types.Bool(false)
	default:
		return nil
	}
}

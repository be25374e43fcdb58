// =============================================================================
// Shelf Inventory Reconciler - Report Export
// =============================================================================
//
// This module projects a report into flat rows and writes them to an XLSX
// workbook with two sheets:
//   - Report:  one row per item, in correct or actual order
//   - Summary: run parameters and aggregate counts
//
// ROW ORDER:
//   | Sort mode    | Rows                                   | Position         |
//   |--------------|----------------------------------------|------------------|
//   | correctOrder | sorted items, then unsortable items    | correct location |
//   | actualOrder  | every item in scan order               | actual location  |
//
//   With problems-to-top, unsortable items come before the sorted items.
//   Unsortable items have no correct location and leave Position blank.
//
// =============================================================================

package export

import (
	"strconv"

	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// MaxTitleLength is the number of title characters kept before "..." is appended.
const MaxTitleLength = 65

// Columns are the Report sheet headers, in order.
var Columns = []string{
	"Barcode",
	"Position",
	"Call Number",
	"Description",
	"Title",
	"Not In Catalog",
	"Unparsable Call Number",
	"Order",
	"Library",
	"Location",
	"Temporary Location",
	"Policy",
	"Type",
	"Not In Place",
	"Request",
	"Needs Scan In",
}

// Row is one exported item.
type Row struct {
	Barcode     string `json:"barcode"`
	Position    int    `json:"position,omitempty"`
	CallNumber  string `json:"callNumber"`
	Description string `json:"description"`
	Title       string `json:"title"`

	NotInCatalog         string `json:"notInCatalog,omitempty"`
	UnparsableCallNumber string `json:"unparsableCallNumber,omitempty"`
	Order                string `json:"order,omitempty"`
	Library              string `json:"library,omitempty"`
	Location             string `json:"location,omitempty"`
	TemporaryLocation    string `json:"temporaryLocation,omitempty"`
	Policy               string `json:"policy,omitempty"`
	Type                 string `json:"type,omitempty"`
	NotInPlace           string `json:"notInPlace,omitempty"`
	Request              string `json:"request,omitempty"`
	NeedsScanIn          bool   `json:"needsScanIn"`
}

// Cells returns the row in Columns order.
func (r Row) Cells() []string {
	position := ""
	if r.Position > 0 {
		position = strconv.Itoa(r.Position)
	}
	needsScanIn := ""
	if r.NeedsScanIn {
		needsScanIn = "YES"
	}

	return []string{
		r.Barcode,
		position,
		r.CallNumber,
		r.Description,
		r.Title,
		r.NotInCatalog,
		r.UnparsableCallNumber,
		r.Order,
		r.Library,
		r.Location,
		r.TemporaryLocation,
		r.Policy,
		r.Type,
		r.NotInPlace,
		r.Request,
		needsScanIn,
	}
}

// Rows projects a report into export rows.
//
// PARAMETERS:
//   - data:         The report to project.
//   - problemsOnly: Keep only items with at least one problem.
//
// RETURNS:
//   - The rows in the order selected by the report's sort mode.
func Rows(data *report.ReportData, problemsOnly bool) []Row {
	var items []*types.ProcessedPhysicalItem
	correct := data.Parameters.SortMode != types.SortModeActualOrder

	switch {
	case !correct:
		items = data.UnsortedItems
	case data.Parameters.ProblemsToTop:
		items = append(data.Unsortable(), data.SortedItems...)
	default:
		items = append(append(items, data.SortedItems...), data.Unsortable()...)
	}

	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if problemsOnly && !item.HasProblem && !item.NeedsToBeScannedIn {
			continue
		}

		position := item.ActualLocation
		if correct {
			position = item.CorrectLocation
		}
		rows = append(rows, project(item, position))
	}
	return rows
}

func project(item *types.ProcessedPhysicalItem, position int) Row {
	return Row{
		Barcode:              item.Barcode,
		Position:             position,
		CallNumber:           item.CallNumber,
		Description:          item.Description,
		Title:                TruncateTitle(item.Title),
		NotInCatalog:         types.Value(item.NotInCatalogProblem),
		UnparsableCallNumber: types.Value(item.UnparsableCallNumberProblem),
		Order:                types.Value(item.OrderProblem),
		Library:              types.Value(item.LibraryProblem),
		Location:             types.Value(item.LocationProblem),
		TemporaryLocation:    types.Value(item.TemporaryLocationProblem),
		Policy:               types.Value(item.PolicyProblem),
		Type:                 types.Value(item.TypeProblem),
		NotInPlace:           types.Value(item.NotInPlaceProblem),
		Request:              types.Value(item.RequestProblem),
		NeedsScanIn:          item.NeedsToBeScannedIn,
	}
}

// TruncateTitle cuts titles longer than MaxTitleLength characters and
// appends "...".
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxTitleLength {
		return title
	}
	return string(runes[:MaxTitleLength]) + "..."
}

// =============================================================================
// Shelf Inventory Reconciler - Shared Types
// =============================================================================
//
// This package contains the item types shared across the reconciliation
// engine and its adapters. Keeping them here avoids import cycles between:
//   - callnumber
//   - ordering
//   - validation
//   - report
//   - export
//
// Nullable catalog fields are pointers. A nil pointer means "the catalog did
// not supply a value", which is distinct from an empty string.
//
// =============================================================================

package types

// =============================================================================
// SCHEME AND MODE ENUMERATIONS
// =============================================================================

// Scheme identifies the classification scheme used by a collection.
type Scheme string

const (
	SchemeLC    Scheme = "LC"
	SchemeDewey Scheme = "Dewey"
)

// ProblemMode selects which problem families a run evaluates.
type ProblemMode string

const (
	ProblemModeAll       ProblemMode = "all"
	ProblemModeOnlyOrder ProblemMode = "onlyOrder"
	ProblemModeOnlyOther ProblemMode = "onlyOther"
)

// EvaluatesOrder reports whether order problems are detected in this mode.
func (m ProblemMode) EvaluatesOrder() bool {
	return m != ProblemModeOnlyOther
}

// EvaluatesCategories reports whether categorical problems are detected in this mode.
func (m ProblemMode) EvaluatesCategories() bool {
	return m != ProblemModeOnlyOrder
}

// SortMode selects the sequence used for the exported report rows.
type SortMode string

const (
	SortModeCorrectOrder SortMode = "correctOrder"
	SortModeActualOrder  SortMode = "actualOrder"
)

// ItemInPlace is the catalog status of an item sitting on the shelf.
const ItemInPlace = "Item in place"

// =============================================================================
// PHYSICAL ITEM
// =============================================================================

// PhysicalItem is a scanned barcode merged with its catalog record.
// It is produced by the catalog package and never modified afterwards.
type PhysicalItem struct {
	// Barcode is the scanned identifier. Required.
	Barcode string `json:"barcode"`

	// ExistsInAlma is false when the catalog has no record for the barcode.
	ExistsInAlma bool `json:"existsInAlma"`

	// CallNumber is the raw, human-entered classification string.
	CallNumber string `json:"callNumber"`

	// Description is the free-text volume/part/date annotation.
	Description string `json:"description"`

	// Title is the bibliographic title, used only for display.
	Title string `json:"title"`

	Library      *string `json:"library"`
	LibraryName  *string `json:"libraryName,omitempty"`
	Location     *string `json:"location"`
	LocationName *string `json:"locationName,omitempty"`

	PolicyType       *string `json:"policyType"`
	ItemMaterialType *string `json:"itemMaterialType"`
	Status           *string `json:"status"`
	ProcessType      *string `json:"processType"`

	// LastModifiedDate and LastLoanDate are Unix milliseconds.
	LastModifiedDate *int64 `json:"lastModifiedDate"`
	LastLoanDate     *int64 `json:"lastLoanDate,omitempty"`

	InTempLocation  *bool `json:"inTempLocation"`
	HasTempLocation *bool `json:"hasTempLocation"`
	Requested       *bool `json:"requested"`
}

// =============================================================================
// PROCESSED PHYSICAL ITEM
// =============================================================================

// ProcessedPhysicalItem is a PhysicalItem annotated by one report run.
// Locations are 1-based; zero means "not assigned".
type ProcessedPhysicalItem struct {
	PhysicalItem

	CallSort              string `json:"callSort"`
	NormalizedDescription string `json:"normalizedDescription"`
	Sortable              bool   `json:"sortable"`

	ActualLocation                        int `json:"actualLocation"`
	ActualLocationInUnsortablesRemovedList int `json:"actualLocationInUnsortablesRemovedList,omitempty"`
	CorrectLocation                       int `json:"correctLocation,omitempty"`

	HasProblem         bool `json:"hasProblem"`
	NeedsToBeScannedIn bool `json:"needsToBeScannedIn"`

	OrderProblem                *string `json:"orderProblem"`
	LibraryProblem              *string `json:"libraryProblem"`
	LocationProblem             *string `json:"locationProblem"`
	TemporaryLocationProblem    *string `json:"temporaryLocationProblem"`
	PolicyProblem               *string `json:"policyProblem"`
	TypeProblem                 *string `json:"typeProblem"`
	NotInPlaceProblem           *string `json:"notInPlaceProblem"`
	RequestProblem              *string `json:"requestProblem"`
	UnparsableCallNumberProblem *string `json:"unparsableCallNumberProblem"`
	NotInCatalogProblem         *string `json:"notInCatalogProblem"`
}

// Flag stores msg in *field and marks the item as having a problem.
func (p *ProcessedPhysicalItem) Flag(field **string, msg string) {
	*field = &msg
	p.HasProblem = true
}

// ProblemMessages returns the non-nil problem messages in display order.
func (p *ProcessedPhysicalItem) ProblemMessages() []string {
	fields := []*string{
		p.NotInCatalogProblem,
		p.UnparsableCallNumberProblem,
		p.OrderProblem,
		p.LibraryProblem,
		p.LocationProblem,
		p.TemporaryLocationProblem,
		p.PolicyProblem,
		p.TypeProblem,
		p.NotInPlaceProblem,
		p.RequestProblem,
	}

	var msgs []string
	for _, f := range fields {
		if f != nil {
			msgs = append(msgs, *f)
		}
	}
	return msgs
}

// =============================================================================
// POINTER HELPERS
// =============================================================================

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }

// Value returns *s, or "" when s is nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsTrue reports whether b is non-nil and true.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

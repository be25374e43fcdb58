// =============================================================================
// Shelf Inventory Reconciler - Categorical Problem Validator
// =============================================================================
//
// This module checks every scanned item against the expectations of a run,
// independent of where the item sits on the shelf:
//   - Catalog presence
//   - Status (item in place) and active requests
//   - Library and location, with the temporary-location exception
//   - Policy type and material type
//   - Whether the item needs to be scanned in
//
// VALIDATION STRATEGY:
//   The checks run in a fixed order and are not short-circuited, except that
//   a temporary-location problem replaces the ordinary library and location
//   problems for the same item. Each triggered check stores a message on the
//   item and sets HasProblem.
//
// EMPTY EXPECTATIONS:
//   An empty expected-location set fails every item. An empty policy or
//   material type set accepts any non-blank value.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// =============================================================================
// EXPECTATIONS
// =============================================================================

// Expectations describes where the scanned items should be and what they
// should look like.
type Expectations struct {
	// Library is the expected library code.
	Library string

	// Locations is the set of acceptable location codes.
	Locations []string

	// PolicyTypes is the set of acceptable policy types. Empty means any.
	PolicyTypes []string

	// MaterialTypes is the set of acceptable material types. Empty means any.
	MaterialTypes []string

	// AllowBlankPolicy accepts items with no policy type.
	AllowBlankPolicy bool

	// ScanDate is the "as of" time for the needs-scan-in check.
	ScanDate time.Time
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult summarizes one ValidateAll call.
type ValidationResult struct {
	// ItemsValidated is the number of items checked.
	ItemsValidated int

	// ItemsFlagged is the number of items with at least one categorical problem.
	ItemsFlagged int

	// NeedsScanIn is the number of items that need to be scanned in.
	NeedsScanIn int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator applies categorical checks to processed items.
type Validator struct {
	exp           Expectations
	locations     map[string]struct{}
	policyTypes   map[string]struct{}
	materialTypes map[string]struct{}
	scanMillis    int64
}

// NewValidator creates a new Validator for the given expectations.
func NewValidator(exp Expectations) *Validator {
	return &Validator{
		exp:           exp,
		locations:     toSet(exp.Locations),
		policyTypes:   toSet(exp.PolicyTypes),
		materialTypes: toSet(exp.MaterialTypes),
		scanMillis:    exp.ScanDate.UnixMilli(),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func contains(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}

// ValidateAll validates every item and returns a summary.
func (v *Validator) ValidateAll(items []*types.ProcessedPhysicalItem) *ValidationResult {
	result := &ValidationResult{ItemsValidated: len(items)}

	for _, item := range items {
		if v.ValidateItem(item) {
			result.ItemsFlagged++
		}
		if item.NeedsToBeScannedIn {
			result.NeedsScanIn++
		}
	}
	return result
}

// ValidateItem runs the categorical checks on a single item.
//
// PARAMETERS:
//   - item: The item to annotate. Its message fields and HasProblem are updated.
//
// RETURNS:
//   - true if any categorical problem was flagged.
func (v *Validator) ValidateItem(item *types.ProcessedPhysicalItem) bool {
	if !item.ExistsInAlma {
		if item.NotInCatalogProblem == nil {
			item.Flag(&item.NotInCatalogProblem, "NOT IN CATALOG; no record found for barcode "+item.Barcode)
		}
		return true
	}

	flagged := false
	flag := func(field **string, msg string) {
		item.Flag(field, msg)
		flagged = true
	}

	// =========================================================================
	// STATUS AND REQUESTS
	// =========================================================================

	notInPlace := types.Value(item.Status) != types.ItemInPlace
	if notInPlace {
		flag(&item.NotInPlaceProblem, notInPlaceMessage(item))
	}

	if types.IsTrue(item.Requested) {
		flag(&item.RequestProblem, "REQUESTED; item has an active request")
	}

	// =========================================================================
	// LIBRARY AND LOCATION
	// =========================================================================

	location := types.Value(item.Location)
	hasLocationProblem := location == "" || !contains(v.locations, location)
	hasLibraryProblem := types.Value(item.Library) != v.exp.Library

	switch {
	case types.IsTrue(item.InTempLocation) && (hasLocationProblem || hasLibraryProblem):
		flag(&item.TemporaryLocationProblem, fmt.Sprintf(
			"IN TEMPORARY LOCATION; currently %s %s, should be in %s %s",
			displayName(item.LibraryName, item.Library), displayName(item.LocationName, item.Location),
			v.exp.Library, joinSet(v.exp.Locations)))
	default:
		if hasLibraryProblem {
			flag(&item.LibraryProblem, fmt.Sprintf("WRONG LIBRARY; is %s, should be %s",
				displayName(item.LibraryName, item.Library), v.exp.Library))
		}
		if hasLocationProblem {
			flag(&item.LocationProblem, fmt.Sprintf("WRONG LOCATION; is %s, should be %s",
				displayName(item.LocationName, item.Location), joinSet(v.exp.Locations)))
		}
	}

	// =========================================================================
	// POLICY AND MATERIAL TYPE
	// =========================================================================

	switch policy := types.Value(item.PolicyType); {
	case policy == "":
		if !v.exp.AllowBlankPolicy {
			flag(&item.PolicyProblem, "BLANK POLICY; item has no policy type")
		}
	case len(v.policyTypes) > 0 && !contains(v.policyTypes, policy):
		flag(&item.PolicyProblem, fmt.Sprintf("WRONG POLICY; is %s, should be %s",
			policy, joinSet(v.exp.PolicyTypes)))
	}

	switch materialType := types.Value(item.ItemMaterialType); {
	case materialType == "":
		flag(&item.TypeProblem, "BLANK MATERIAL TYPE; item has no material type")
	case len(v.materialTypes) > 0 && !contains(v.materialTypes, materialType):
		flag(&item.TypeProblem, fmt.Sprintf("WRONG MATERIAL TYPE; is %s, should be %s",
			materialType, joinSet(v.exp.MaterialTypes)))
	}

	// =========================================================================
	// NEEDS SCAN IN
	// =========================================================================

	item.NeedsToBeScannedIn = notInPlace &&
		!hasLibraryProblem && !hasLocationProblem &&
		item.LastModifiedDate != nil && *item.LastModifiedDate < v.scanMillis &&
		!(item.LastLoanDate != nil && *item.LastLoanDate >= v.scanMillis)

	return flagged
}

// =============================================================================
// MESSAGE HELPERS
// =============================================================================

func notInPlaceMessage(item *types.ProcessedPhysicalItem) string {
	status := types.Value(item.Status)
	if status == "" {
		status = "unknown"
	}

	msg := "NOT IN PLACE; status is " + status
	if process := types.Value(item.ProcessType); process != "" {
		msg += " (process type: " + process + ")"
	}
	return msg
}

// displayName prefers the human-readable name and falls back to the code.
func displayName(name, code *string) string {
	if n := types.Value(name); n != "" {
		return n
	}
	if c := types.Value(code); c != "" {
		return c
	}
	return "(none)"
}

func joinSet(values []string) string {
	if len(values) == 0 {
		return "(none configured)"
	}
	return strings.Join(values, " or ")
}

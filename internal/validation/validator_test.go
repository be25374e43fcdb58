package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

var scanDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func expectations() Expectations {
	return Expectations{
		Library:       "MAIN",
		Locations:     []string{"STACKS", "OVERSIZE"},
		PolicyTypes:   []string{"LOAN"},
		MaterialTypes: []string{"BOOK"},
		ScanDate:      scanDate,
	}
}

func goodItem() *types.ProcessedPhysicalItem {
	return &types.ProcessedPhysicalItem{
		PhysicalItem: types.PhysicalItem{
			Barcode:          "39000123",
			ExistsInAlma:     true,
			CallNumber:       "PS3572.A39 2004",
			Library:          types.String("MAIN"),
			Location:         types.String("STACKS"),
			PolicyType:       types.String("LOAN"),
			ItemMaterialType: types.String("BOOK"),
			Status:           types.String(types.ItemInPlace),
			InTempLocation:   types.Bool(false),
			Requested:        types.Bool(false),
		},
	}
}

func TestValidateItem_CleanItem(t *testing.T) {
	item := goodItem()

	flagged := NewValidator(expectations()).ValidateItem(item)

	assert.False(t, flagged)
	assert.False(t, item.HasProblem)
	assert.Empty(t, item.ProblemMessages())
	assert.False(t, item.NeedsToBeScannedIn)
}

func TestValidateItem_NotInCatalog(t *testing.T) {
	item := &types.ProcessedPhysicalItem{PhysicalItem: types.PhysicalItem{Barcode: "X1"}}

	assert.True(t, NewValidator(expectations()).ValidateItem(item))
	require.NotNil(t, item.NotInCatalogProblem)
	assert.Contains(t, *item.NotInCatalogProblem, "NOT IN CATALOG")
	assert.Nil(t, item.LocationProblem)
	assert.True(t, item.HasProblem)
}

func TestValidateItem_NotInPlaceAndRequested(t *testing.T) {
	item := goodItem()
	item.Status = types.String("Item not in place")
	item.ProcessType = types.String("LOAN")
	item.Requested = types.Bool(true)

	NewValidator(expectations()).ValidateItem(item)

	require.NotNil(t, item.NotInPlaceProblem)
	assert.Equal(t, "NOT IN PLACE; status is Item not in place (process type: LOAN)", *item.NotInPlaceProblem)
	require.NotNil(t, item.RequestProblem)
	assert.True(t, item.HasProblem)
}

func TestValidateItem_NilStatusIsNotInPlace(t *testing.T) {
	item := goodItem()
	item.Status = nil

	NewValidator(expectations()).ValidateItem(item)

	require.NotNil(t, item.NotInPlaceProblem)
	assert.Equal(t, "NOT IN PLACE; status is unknown", *item.NotInPlaceProblem)
}

func TestValidateItem_LibraryAndLocationIndependent(t *testing.T) {
	item := goodItem()
	item.Library = types.String("LAW")
	item.LibraryName = types.String("Law Library")
	item.Location = nil

	NewValidator(expectations()).ValidateItem(item)

	require.NotNil(t, item.LibraryProblem)
	assert.Equal(t, "WRONG LIBRARY; is Law Library, should be MAIN", *item.LibraryProblem)
	require.NotNil(t, item.LocationProblem)
	assert.Equal(t, "WRONG LOCATION; is (none), should be STACKS or OVERSIZE", *item.LocationProblem)
	assert.Nil(t, item.TemporaryLocationProblem)
}

func TestValidateItem_TemporaryLocationReplacesLibraryProblem(t *testing.T) {
	item := goodItem()
	item.InTempLocation = types.Bool(true)
	item.Library = types.String("LAW")

	NewValidator(expectations()).ValidateItem(item)

	require.NotNil(t, item.TemporaryLocationProblem)
	assert.Contains(t, *item.TemporaryLocationProblem, "should be in MAIN STACKS or OVERSIZE")
	assert.Nil(t, item.LibraryProblem)
	assert.Nil(t, item.LocationProblem)
	assert.True(t, item.HasProblem)
}

func TestValidateItem_TemporaryLocationWithoutMismatch(t *testing.T) {
	item := goodItem()
	item.InTempLocation = types.Bool(true)

	assert.False(t, NewValidator(expectations()).ValidateItem(item))
	assert.Nil(t, item.TemporaryLocationProblem)
}

func TestValidateItem_EmptyLocationSetFailsEverything(t *testing.T) {
	exp := expectations()
	exp.Locations = nil
	item := goodItem()

	NewValidator(exp).ValidateItem(item)

	require.NotNil(t, item.LocationProblem)
	assert.Contains(t, *item.LocationProblem, "(none configured)")
}

func TestValidateItem_Policy(t *testing.T) {
	tests := []struct {
		name       string
		policy     *string
		allowBlank bool
		policies   []string
		wantMsg    string
	}{
		{name: "accepted", policy: types.String("LOAN"), policies: []string{"LOAN"}},
		{name: "wrong", policy: types.String("REF"), policies: []string{"LOAN"}, wantMsg: "WRONG POLICY; is REF, should be LOAN"},
		{name: "any when unconfigured", policy: types.String("REF")},
		{name: "blank flagged", policy: nil, policies: []string{"LOAN"}, wantMsg: "BLANK POLICY; item has no policy type"},
		{name: "blank allowed", policy: types.String(""), allowBlank: true, policies: []string{"LOAN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := expectations()
			exp.PolicyTypes = tt.policies
			exp.AllowBlankPolicy = tt.allowBlank
			item := goodItem()
			item.PolicyType = tt.policy

			NewValidator(exp).ValidateItem(item)

			if tt.wantMsg == "" {
				assert.Nil(t, item.PolicyProblem)
				return
			}
			require.NotNil(t, item.PolicyProblem)
			assert.Equal(t, tt.wantMsg, *item.PolicyProblem)
		})
	}
}

func TestValidateItem_MaterialType(t *testing.T) {
	exp := expectations()

	item := goodItem()
	item.ItemMaterialType = types.String("DVD")
	NewValidator(exp).ValidateItem(item)
	require.NotNil(t, item.TypeProblem)
	assert.Equal(t, "WRONG MATERIAL TYPE; is DVD, should be BOOK", *item.TypeProblem)

	item = goodItem()
	item.ItemMaterialType = nil
	exp.MaterialTypes = nil
	NewValidator(exp).ValidateItem(item)
	require.NotNil(t, item.TypeProblem, "blank material type is flagged even with no expected set")

	item = goodItem()
	item.ItemMaterialType = types.String("DVD")
	NewValidator(exp).ValidateItem(item)
	assert.Nil(t, item.TypeProblem)
}

func TestValidateItem_NeedsToBeScannedIn(t *testing.T) {
	before := scanDate.Add(-48 * time.Hour).UnixMilli()
	after := scanDate.Add(2 * time.Hour).UnixMilli()

	tests := []struct {
		name     string
		mutate   func(*types.ProcessedPhysicalItem)
		expected bool
	}{
		{
			name: "stale and not in place",
			mutate: func(p *types.ProcessedPhysicalItem) {
				p.Status = types.String("Loan")
				p.LastModifiedDate = types.Int64(before)
			},
			expected: true,
		},
		{
			name: "in place",
			mutate: func(p *types.ProcessedPhysicalItem) {
				p.LastModifiedDate = types.Int64(before)
			},
		},
		{
			name: "modified after scan",
			mutate: func(p *types.ProcessedPhysicalItem) {
				p.Status = types.String("Loan")
				p.LastModifiedDate = types.Int64(after)
			},
		},
		{
			name: "loaned on scan day",
			mutate: func(p *types.ProcessedPhysicalItem) {
				p.Status = types.String("Loan")
				p.LastModifiedDate = types.Int64(before)
				p.LastLoanDate = types.Int64(after)
			},
		},
		{
			name: "wrong location",
			mutate: func(p *types.ProcessedPhysicalItem) {
				p.Status = types.String("Loan")
				p.LastModifiedDate = types.Int64(before)
				p.Location = types.String("ANNEX")
			},
		},
		{
			name: "no modification date",
			mutate: func(p *types.ProcessedPhysicalItem) {
				p.Status = types.String("Loan")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := goodItem()
			tt.mutate(item)
			NewValidator(expectations()).ValidateItem(item)
			assert.Equal(t, tt.expected, item.NeedsToBeScannedIn)
		})
	}
}

func TestValidateAll_Summary(t *testing.T) {
	stale := goodItem()
	stale.Status = types.String("Loan")
	stale.LastModifiedDate = types.Int64(scanDate.Add(-time.Hour).UnixMilli())

	items := []*types.ProcessedPhysicalItem{
		goodItem(),
		stale,
		{PhysicalItem: types.PhysicalItem{Barcode: "missing"}},
	}

	result := NewValidator(expectations()).ValidateAll(items)

	assert.Equal(t, 3, result.ItemsValidated)
	assert.Equal(t, 2, result.ItemsFlagged)
	assert.Equal(t, 1, result.NeedsScanIn)
}

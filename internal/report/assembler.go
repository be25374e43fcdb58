// =============================================================================
// Shelf Inventory Reconciler - Report Assembler
// =============================================================================
//
// This module orchestrates one reconciliation run, from catalog-merged scan
// records to the final report.
//
// REPORT PIPELINE:
//   1. Validate the run parameters
//   2. Annotate every item with its scan position and sort key
//   3. Partition into sortable and unsortable items
//   4. Sort the sortable subset into shelf order
//   5. Detect order problems (unless only categorical problems are wanted)
//   6. Detect categorical problems (unless only order problems are wanted)
//   7. Aggregate counts and derive the output filename
//
// STATES:
//   Idle ──Generate──> Generating ──done──> Ready
//     ^                    │                  │
//     └──── hard failure ──┘<──── Reset ──────┘
//
// The assembler holds at most one report. A new Generate call replaces the
// current report; it is never mutated in place.
//
// =============================================================================

package report

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/shelf-inventory/internal/callnumber"
	"github.com/ginjaninja78/shelf-inventory/internal/ordering"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
	"github.com/ginjaninja78/shelf-inventory/internal/validation"
)

// =============================================================================
// REPORT STRUCTURE
// =============================================================================

// State is the lifecycle state of an Assembler.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
)

// ReportData is the result of one run.
type ReportData struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// GeneratedAt is when the run completed.
	GeneratedAt time.Time `json:"generatedAt"`

	// Parameters are the run parameters after defaults were applied.
	Parameters Parameters `json:"parameters"`

	// Counts are the aggregate problem counts.
	Counts Counts `json:"counts"`

	// UnsortedItems is every item in original scan order.
	UnsortedItems []*types.ProcessedPhysicalItem `json:"unsortedItems"`

	// SortedItems is the sortable subset in shelf order.
	SortedItems []*types.ProcessedPhysicalItem `json:"sortedItems"`

	// Filename is the suggested workbook name.
	Filename string `json:"filename"`
}

// Unsortable returns the unsortable items in scan order.
func (r *ReportData) Unsortable() []*types.ProcessedPhysicalItem {
	var out []*types.ProcessedPhysicalItem
	for _, item := range r.UnsortedItems {
		if !item.Sortable {
			out = append(out, item)
		}
	}
	return out
}

// =============================================================================
// ASSEMBLER STRUCTURE
// =============================================================================

// Assembler generates reports and holds the current one.
type Assembler struct {
	mu         sync.Mutex
	state      State
	current    *ReportData
	generation uint64

	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithClock overrides the time source used for defaults and filenames.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler creates an Assembler in the Idle state.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		state:  StateIdle,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current lifecycle state.
func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Report returns the current report, if one is ready.
func (a *Assembler) Report() (*ReportData, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateReady {
		return nil, false
	}
	return a.current, true
}

// Reset discards the current report and returns to Idle.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.current = nil
	a.state = StateIdle
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Generate runs the report pipeline over items in scan order.
//
// PARAMETERS:
//   - params: The run parameters. Unset modes and scan date get defaults.
//   - items:  Catalog-merged scan records in scan order.
//
// RETURNS:
//   - The new report, which also becomes the current report.
//   - A hard-failure error. No report is produced and the state is Idle.
func (a *Assembler) Generate(params Parameters, items []types.PhysicalItem) (*ReportData, error) {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.current = nil
	a.state = StateGenerating
	a.mu.Unlock()

	start := a.now()
	data, err := a.build(params.withDefaults(start), items)

	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.generation {
		// Superseded by a later Generate or Reset.
		return data, err
	}
	if err != nil {
		a.state = StateIdle
		a.logger.Error("report generation failed", zap.Error(err))
		return nil, err
	}

	a.current = data
	a.state = StateReady
	a.logger.Info("report generated",
		zap.String("id", data.ID),
		zap.String("library", data.Parameters.Library),
		zap.Strings("locations", data.Parameters.Locations),
		zap.Int("items", data.Counts.Total),
		zap.Int("with_problems", data.Counts.WithProblems),
		zap.Duration("elapsed", a.now().Sub(start)),
	)
	return data, nil
}

func (a *Assembler) build(params Parameters, items []types.PhysicalItem) (*ReportData, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 1: ANNOTATE
	// =========================================================================

	unsorted := make([]*types.ProcessedPhysicalItem, len(items))
	var sortable []*types.ProcessedPhysicalItem

	for i, item := range items {
		p := &types.ProcessedPhysicalItem{
			PhysicalItem:          item,
			ActualLocation:        i + 1,
			CallSort:              callnumber.Normalize(item.CallNumber, params.Scheme, params.ProblemsToTop),
			NormalizedDescription: callnumber.NormalizeDescription(item.Description),
		}
		p.Sortable = !callnumber.IsUnparsable(p.CallSort)

		if !item.ExistsInAlma {
			p.Flag(&p.NotInCatalogProblem, "NOT IN CATALOG; no record found for barcode "+item.Barcode)
		} else if !p.Sortable {
			p.Flag(&p.UnparsableCallNumberProblem, fmt.Sprintf("UNPARSABLE CALL NUMBER; %q is not a valid %s call number", item.CallNumber, params.Scheme))
		}

		if p.Sortable {
			sortable = append(sortable, p)
			p.ActualLocationInUnsortablesRemovedList = len(sortable)
		}
		unsorted[i] = p
	}

	a.logger.Debug("items annotated",
		zap.Int("items", len(unsorted)),
		zap.Int("sortable", len(sortable)),
	)

	// =========================================================================
	// STEP 2: SORT
	// =========================================================================

	sorted := append([]*types.ProcessedPhysicalItem(nil), sortable...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CallSort != sorted[j].CallSort {
			return sorted[i].CallSort < sorted[j].CallSort
		}
		if params.MultiVolumeTiebreak {
			return sorted[i].NormalizedDescription < sorted[j].NormalizedDescription
		}
		return false
	})
	for i, p := range sorted {
		p.CorrectLocation = i + 1
	}

	// =========================================================================
	// STEP 3: DETECT
	// =========================================================================

	var order *ordering.Result
	if params.ProblemMode.EvaluatesOrder() {
		result, err := ordering.Detect(sorted, ordering.Options{DescriptionTiebreak: params.MultiVolumeTiebreak})
		if err != nil {
			return nil, fmt.Errorf("order detection: %w", err)
		}
		order = &result
		a.logger.Debug("order problems detected", zap.Int("flagged", result.Flagged()))
	}

	if params.ProblemMode.EvaluatesCategories() {
		result := validation.NewValidator(params.expectations()).ValidateAll(unsorted)
		a.logger.Debug("categorical problems detected",
			zap.Int("flagged", result.ItemsFlagged),
			zap.Int("needs_scan_in", result.NeedsScanIn),
		)
	}

	// =========================================================================
	// STEP 4: AGGREGATE
	// =========================================================================

	generated := a.now()
	return &ReportData{
		ID:            uuid.NewString(),
		GeneratedAt:   generated,
		Parameters:    params,
		Counts:        aggregate(unsorted, params.ProblemMode, order),
		UnsortedItems: unsorted,
		SortedItems:   sorted,
		Filename:      Filename(params.Library, params.Locations, sorted, generated),
	}, nil
}

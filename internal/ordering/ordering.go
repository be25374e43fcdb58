// =============================================================================
// Shelf Inventory Reconciler - Order Problem Detector
// =============================================================================
//
// This module compares the order items were scanned in (the "actual"
// sequence) with the order they should be shelved in (the "correct"
// sequence) and flags items that are out of place.
//
// INPUT:
//   The sortable items in correct order. Every item must already carry:
//   - ActualLocationInUnsortablesRemovedList (1-based scan position)
//   - CorrectLocation                        (1-based sorted position)
//
// METHOD:
//   Two passes over the scan order. For each item, its immediate
//   neighbours in the actual sequence are compared with its immediate
//   neighbours in the correct sequence:
//
//   | Absolute position | Prev agrees | Next agrees | Classification |
//   |-------------------|-------------|-------------|----------------|
//   | yes               | -           | -           | in place       |
//   | no                | yes         | yes         | shifted        |
//   | no                | no          | yes         | section start  |
//   | no                | yes         | no          | section end    |
//   | no                | no          | no          | rogue          |
//
//   The first pass only marks rogue items, skipping rogues already marked.
//   The second pass classifies every item with all marked rogues skipped, so
//   a single misplaced book produces a single flag whether it was scanned
//   before or after the place it belongs.
//
// MULTI-VOLUME SETS:
//   An item whose call number equals an adjacent item in the correct
//   sequence belongs to a set. Without description tie-breaking a set is
//   never flagged. With tie-breaking, neighbours are compared by call
//   number and description.
//
// =============================================================================

package ordering

import (
	"fmt"

	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// Neighbour labels used at either end of a sequence.
const (
	LocationStart = "LOCATION START"
	LocationEnd   = "LOCATION END"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classification describes how an item deviates from the correct order.
type Classification string

const (
	InPlace      Classification = "in place"
	Shifted      Classification = "shifted"
	SectionStart Classification = "section start"
	SectionEnd   Classification = "section end"
	Rogue        Classification = "rogue"
	MultiVolume  Classification = "multi-volume"
	NotEvaluated Classification = "not evaluated"
)

// Flagged reports whether the classification produces an order problem.
func (c Classification) Flagged() bool {
	return c == SectionStart || c == SectionEnd || c == Rogue
}

// Options controls the detector.
type Options struct {
	// DescriptionTiebreak compares descriptions of multi-volume neighbours.
	DescriptionTiebreak bool
}

// Result holds one classification per item, indexed like the sorted input.
type Result struct {
	Classifications []Classification
}

// Count returns how many items received classification c.
func (r Result) Count(c Classification) int {
	n := 0
	for _, got := range r.Classifications {
		if got == c {
			n++
		}
	}
	return n
}

// Flagged returns the number of items with an order problem.
func (r Result) Flagged() int {
	n := 0
	for _, got := range r.Classifications {
		if got.Flagged() {
			n++
		}
	}
	return n
}

// =============================================================================
// DETECTOR
// =============================================================================

// detection is the state of one Detect call.
type detection struct {
	sorted []*types.ProcessedPhysicalItem
	actual []*types.ProcessedPhysicalItem
	rogue  []bool // indexed by sorted position
	opts   Options
}

// Detect classifies every item in sorted and sets OrderProblem on flagged ones.
//
// PARAMETERS:
//   - sorted: sortable items in correct order, with both location fields set.
//   - opts:   detector options.
//
// RETURNS:
//   - A Result aligned with sorted.
//   - An error when the location fields are inconsistent.
func Detect(sorted []*types.ProcessedPhysicalItem, opts Options) (Result, error) {
	n := len(sorted)
	d := &detection{
		sorted: sorted,
		actual: make([]*types.ProcessedPhysicalItem, n),
		rogue:  make([]bool, n),
		opts:   opts,
	}

	for i, item := range sorted {
		if item.CorrectLocation != i+1 {
			return Result{}, fmt.Errorf("item %s: correct location %d at sorted index %d", item.Barcode, item.CorrectLocation, i)
		}
		a := item.ActualLocationInUnsortablesRemovedList - 1
		if a < 0 || a >= n || d.actual[a] != nil {
			return Result{}, fmt.Errorf("item %s: invalid scan position %d", item.Barcode, a+1)
		}
		d.actual[a] = item
	}

	for a, item := range d.actual {
		i := item.CorrectLocation - 1
		if v := d.classify(item, a, i); v.class == Rogue {
			d.rogue[i] = true
		}
	}

	result := Result{Classifications: make([]Classification, n)}
	for a, item := range d.actual {
		i := item.CorrectLocation - 1
		v := d.classify(item, a, i)
		if d.rogue[i] {
			v = verdict{class: Rogue, problem: d.between(item, i)}
		}
		if v.problem != "" {
			item.Flag(&item.OrderProblem, v.problem)
		}
		result.Classifications[i] = v.class
	}
	return result, nil
}

// verdict is the outcome for one item. problem is empty when the item is
// not flagged.
type verdict struct {
	class   Classification
	problem string
}

// classify evaluates one item at scan index a and sorted index i against
// the rogues marked so far. It does not modify the item.
func (d *detection) classify(item *types.ProcessedPhysicalItem, a, i int) verdict {
	if !item.ExistsInAlma {
		return verdict{class: NotEvaluated}
	}

	inPlace := a == i
	correctPrev, correctNext := d.sortedNeighbours(i)
	actualPrev, actualNext := d.actualNeighbours(a)

	if d.isMultiVolume(item, i) {
		if !d.opts.DescriptionTiebreak || inPlace {
			return verdict{class: MultiVolume}
		}

		prevOK := sameVolume(actualPrev, correctPrev)
		nextOK := sameVolume(actualNext, correctNext)
		if prevOK && nextOK {
			return verdict{class: MultiVolume}
		}
		if !prevOK && !nextOK {
			return verdict{class: Rogue, problem: d.between(item, i)}
		}
		return verdict{class: sectionBoundary(prevOK), problem: d.between(item, i)}
	}

	if inPlace {
		return verdict{class: InPlace}
	}

	prevOK := sameCallNumber(actualPrev, correctPrev)
	nextOK := sameCallNumber(actualNext, correctNext)
	between := d.between(item, i)

	switch {
	case prevOK && nextOK:
		return verdict{class: Shifted}
	case !prevOK && !nextOK:
		return verdict{class: Rogue, problem: between}
	case !prevOK:
		return verdict{class: SectionStart, problem: between + " (start of misplaced section)"}
	default:
		return verdict{class: SectionEnd, problem: between + " (end of misplaced section)"}
	}
}

// between names the correct neighbours of the item at sorted index i.
func (d *detection) between(item *types.ProcessedPhysicalItem, i int) string {
	prev, next := d.sortedNeighbours(i)
	if d.opts.DescriptionTiebreak && d.isMultiVolume(item, i) {
		return fmt.Sprintf("OUT OF ORDER; should be between %s and %s",
			volumeLabel(prev, LocationStart), volumeLabel(next, LocationEnd))
	}
	return fmt.Sprintf("OUT OF ORDER; should be between %s and %s",
		label(prev, LocationStart), label(next, LocationEnd))
}

func sectionBoundary(prevOK bool) Classification {
	if prevOK {
		return SectionEnd
	}
	return SectionStart
}

// isMultiVolume reports whether item shares its sort key with an adjacent
// item in the correct sequence.
func (d *detection) isMultiVolume(item *types.ProcessedPhysicalItem, i int) bool {
	if i > 0 && d.sorted[i-1].CallSort == item.CallSort {
		return true
	}
	return i+1 < len(d.sorted) && d.sorted[i+1].CallSort == item.CallSort
}

// =============================================================================
// NEIGHBOUR LOOKUP
// =============================================================================

// sortedNeighbours returns the nearest non-rogue items around sorted index i.
// A nil result means the start or end of the sequence.
func (d *detection) sortedNeighbours(i int) (prev, next *types.ProcessedPhysicalItem) {
	for j := i - 1; j >= 0; j-- {
		if !d.rogue[j] {
			prev = d.sorted[j]
			break
		}
	}
	for j := i + 1; j < len(d.sorted); j++ {
		if !d.rogue[j] {
			next = d.sorted[j]
			break
		}
	}
	return prev, next
}

// actualNeighbours returns the nearest non-rogue items around scan index a.
func (d *detection) actualNeighbours(a int) (prev, next *types.ProcessedPhysicalItem) {
	for j := a - 1; j >= 0; j-- {
		if !d.rogue[d.actual[j].CorrectLocation-1] {
			prev = d.actual[j]
			break
		}
	}
	for j := a + 1; j < len(d.actual); j++ {
		if !d.rogue[d.actual[j].CorrectLocation-1] {
			next = d.actual[j]
			break
		}
	}
	return prev, next
}

func sameCallNumber(x, y *types.ProcessedPhysicalItem) bool {
	if x == nil || y == nil {
		return x == y
	}
	return x.CallSort == y.CallSort
}

func sameVolume(x, y *types.ProcessedPhysicalItem) bool {
	if x == nil || y == nil {
		return x == y
	}
	return x.CallSort == y.CallSort && x.NormalizedDescription == y.NormalizedDescription
}

func label(item *types.ProcessedPhysicalItem, end string) string {
	if item == nil {
		return end
	}
	return item.CallNumber
}

func volumeLabel(item *types.ProcessedPhysicalItem, end string) string {
	if item == nil {
		return end
	}
	if item.Description == "" {
		return item.CallNumber
	}
	return fmt.Sprintf("%s (%s)", item.CallNumber, item.Description)
}

package report

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/ginjaninja78/shelf-inventory/internal/ordering"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// NotApplicable marks a count whose problem family was not evaluated.
const NotApplicable = "N/A"

// Count is a problem count that may be "not evaluated".
type Count struct {
	N         int
	Evaluated bool
}

func counted(n int) Count { return Count{N: n, Evaluated: true} }

// String renders the count, or "N/A" when it was not evaluated.
func (c Count) String() string {
	if !c.Evaluated {
		return NotApplicable
	}
	return strconv.Itoa(c.N)
}

// MarshalJSON emits a number, or the string "N/A" when not evaluated.
func (c Count) MarshalJSON() ([]byte, error) {
	if !c.Evaluated {
		return json.Marshal(NotApplicable)
	}
	return json.Marshal(c.N)
}

// UnmarshalJSON accepts a number or the "N/A" marker.
func (c *Count) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte(`"`+NotApplicable+`"`)) {
		*c = Count{}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = counted(n)
	return nil
}

// Counts are the aggregate problem counts of one report.
type Counts struct {
	Total        int `json:"total"`
	Sortable     int `json:"sortable"`
	Unsortable   int `json:"unsortable"`
	WithProblems int `json:"withProblems"`

	Order                Count `json:"order"`
	Library              Count `json:"library"`
	Location             Count `json:"location"`
	TemporaryLocation    Count `json:"temporaryLocation"`
	Policy               Count `json:"policy"`
	Type                 Count `json:"type"`
	NotInPlace           Count `json:"notInPlace"`
	Request              Count `json:"request"`
	UnparsableCallNumber Count `json:"unparsableCallNumber"`
	NotInCatalog         Count `json:"notInCatalog"`
	NeedsScanIn          Count `json:"needsScanIn"`

	// OrderBreakdown counts sortable items per order classification.
	OrderBreakdown map[ordering.Classification]int `json:"orderBreakdown,omitempty"`
}

// aggregate reduces the processed items into Counts.
func aggregate(items []*types.ProcessedPhysicalItem, mode types.ProblemMode, order *ordering.Result) Counts {
	var c Counts
	var n struct {
		order, library, location, temp, policy, kind, notInPlace, request, unparsable, missing, scanIn int
	}

	for _, item := range items {
		c.Total++
		if item.Sortable {
			c.Sortable++
		} else {
			c.Unsortable++
		}
		if item.HasProblem {
			c.WithProblems++
		}

		n.order += flagged(item.OrderProblem)
		n.library += flagged(item.LibraryProblem)
		n.location += flagged(item.LocationProblem)
		n.temp += flagged(item.TemporaryLocationProblem)
		n.policy += flagged(item.PolicyProblem)
		n.kind += flagged(item.TypeProblem)
		n.notInPlace += flagged(item.NotInPlaceProblem)
		n.request += flagged(item.RequestProblem)
		n.unparsable += flagged(item.UnparsableCallNumberProblem)
		n.missing += flagged(item.NotInCatalogProblem)
		if item.NeedsToBeScannedIn {
			n.scanIn++
		}
	}

	c.UnparsableCallNumber = counted(n.unparsable)
	c.NotInCatalog = counted(n.missing)

	if mode.EvaluatesOrder() {
		c.Order = counted(n.order)
		if order != nil {
			c.OrderBreakdown = make(map[ordering.Classification]int)
			for _, cl := range order.Classifications {
				c.OrderBreakdown[cl]++
			}
		}
	}

	if mode.EvaluatesCategories() {
		c.Library = counted(n.library)
		c.Location = counted(n.location)
		c.TemporaryLocation = counted(n.temp)
		c.Policy = counted(n.policy)
		c.Type = counted(n.kind)
		c.NotInPlace = counted(n.notInPlace)
		c.Request = counted(n.request)
		c.NeedsScanIn = counted(n.scanIn)
	}
	return c
}

func flagged(msg *string) int {
	if msg == nil {
		return 0
	}
	return 1
}

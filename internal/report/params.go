package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/shelf-inventory/internal/types"
	"github.com/ginjaninja78/shelf-inventory/internal/validation"
)

// Hard failures. Generate returns these without producing a report.
var (
	ErrMissingScheme      = errors.New("run configuration has no scheme")
	ErrInvalidScheme      = errors.New("invalid scheme")
	ErrInvalidProblemMode = errors.New("invalid problem mode")
	ErrInvalidSortMode    = errors.New("invalid sort mode")
	ErrNoReport           = errors.New("no report has been generated")
)

// Parameters are the run parameters of one report.
type Parameters struct {
	Scheme              types.Scheme      `json:"scheme"`
	Library             string            `json:"library"`
	Locations           []string          `json:"locations"`
	MaterialTypes       []string          `json:"materialTypes"`
	PolicyTypes         []string          `json:"policyTypes"`
	AllowBlankPolicy    bool              `json:"allowBlankPolicy"`
	ProblemMode         types.ProblemMode `json:"problemMode"`
	SortMode            types.SortMode    `json:"sortMode"`
	MultiVolumeTiebreak bool              `json:"multiVolumeTiebreak"`
	ProblemsToTop       bool              `json:"problemsToTop"`
	CircDesk            string            `json:"circDesk,omitempty"`
	ScanDate            time.Time         `json:"scanDate"`
}

// withDefaults fills unset modes and the scan date.
func (p Parameters) withDefaults(now time.Time) Parameters {
	if p.ProblemMode == "" {
		p.ProblemMode = types.ProblemModeAll
	}
	if p.SortMode == "" {
		p.SortMode = types.SortModeCorrectOrder
	}
	if p.ScanDate.IsZero() {
		p.ScanDate = now
	}
	return p
}

// Validate checks the structural parts of the parameters. Empty expectation
// sets are valid and simply fail every item on that check.
func (p Parameters) Validate() error {
	switch p.Scheme {
	case "":
		return ErrMissingScheme
	case types.SchemeLC, types.SchemeDewey:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScheme, p.Scheme)
	}

	switch p.ProblemMode {
	case types.ProblemModeAll, types.ProblemModeOnlyOrder, types.ProblemModeOnlyOther:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProblemMode, p.ProblemMode)
	}

	switch p.SortMode {
	case types.SortModeCorrectOrder, types.SortModeActualOrder:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSortMode, p.SortMode)
	}
	return nil
}

func (p Parameters) expectations() validation.Expectations {
	return validation.Expectations{
		Library:          p.Library,
		Locations:        p.Locations,
		PolicyTypes:      p.PolicyTypes,
		MaterialTypes:    p.MaterialTypes,
		AllowBlankPolicy: p.AllowBlankPolicy,
		ScanDate:         p.ScanDate,
	}
}

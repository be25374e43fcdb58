package api

import (
	"github.com/ginjaninja78/shelf-inventory/internal/config"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// GenerateRequest starts a report run.
//
// Items, when present, are used as-is and must already be merged with
// their catalog records. Otherwise Barcodes are resolved through the
// catalog loaded by the server.
type GenerateRequest struct {
	Config   config.RunConfig     `json:"config"`
	Barcodes []string             `json:"barcodes,omitempty"`
	Items    []types.PhysicalItem `json:"items,omitempty"`
}

// NormalizeRequest asks for the sort keys of call numbers.
type NormalizeRequest struct {
	Scheme        string   `json:"scheme"`
	CallNumbers   []string `json:"callNumbers"`
	ProblemsToTop bool     `json:"problemsToTop"`
}

// NormalizedCallNumber is one normalization result.
type NormalizedCallNumber struct {
	CallNumber string `json:"callNumber"`
	CallSort   string `json:"callSort"`
	Sortable   bool   `json:"sortable"`
}

// NormalizeResponse lists results in request order.
type NormalizeResponse struct {
	Scheme  types.Scheme           `json:"scheme"`
	Results []NormalizedCallNumber `json:"results"`
}

// StatusResponse reports the assembler state.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

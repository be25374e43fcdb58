// =============================================================================
// Shelf Inventory Reconciler - HTTP Handlers
// =============================================================================
//
// This module translates HTTP requests into inventory.Service calls and
// maps results and errors back to JSON.
//
// ERROR MAPPING:
//   400 : invalid run configuration, unknown scheme, malformed body
//   404 : no current report, unknown history run
//   500 : everything else (details are logged, not returned)
//
// =============================================================================

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ginjaninja78/shelf-inventory/internal/callnumber"
	"github.com/ginjaninja78/shelf-inventory/internal/config"
	"github.com/ginjaninja78/shelf-inventory/internal/export"
	"github.com/ginjaninja78/shelf-inventory/internal/history"
	"github.com/ginjaninja78/shelf-inventory/internal/inventory"
	"github.com/ginjaninja78/shelf-inventory/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxBodyBytes bounds request bodies. A full shelf range of items fits
// comfortably.
const maxBodyBytes = 32 << 20

// Handler serves the inventory API.
type Handler struct {
	service *inventory.Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a Handler. A nil logger discards everything.
func NewHandler(service *inventory.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger, now: time.Now}
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// GenerateReport handles POST /api/reports.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	params, err := req.Config.Parameters(h.now())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var result *inventory.Result
	if req.Items != nil {
		result, err = h.service.RunItems(r.Context(), params, req.Items)
	} else {
		result, err = h.service.Run(r.Context(), params, req.Barcodes)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GetCurrentReport handles GET /api/reports/current.
func (h *Handler) GetCurrentReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Current()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// ResetReport handles DELETE /api/reports/current.
func (h *Handler) ResetReport(w http.ResponseWriter, r *http.Request) {
	h.service.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// ExportReport handles GET /api/reports/current/export.
// ?problemsOnly=true restricts the Report sheet to items with problems.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Current()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	problemsOnly, err := queryBool(r, "problemsOnly")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, data, problemsOnly); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", data.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// =============================================================================
// NORMALIZE ENDPOINT
// =============================================================================

// Normalize handles POST /api/normalize.
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !h.decode(w, r, &req) {
		return
	}

	scheme, err := callnumber.ParseScheme(req.Scheme)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := NormalizeResponse{Scheme: scheme, Results: make([]NormalizedCallNumber, 0, len(req.CallNumbers))}
	for _, cn := range req.CallNumbers {
		key := callnumber.Normalize(cn, scheme, req.ProblemsToTop)
		resp.Results = append(resp.Results, NormalizedCallNumber{
			CallNumber: cn,
			CallSort:   key,
			Sortable:   !callnumber.IsUnparsable(key),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HISTORY ENDPOINTS
// =============================================================================

// ListHistory handles GET /api/history?library=&limit=.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", s))
			return
		}
		limit = n
	}

	runs, err := h.service.History(r.Context(), r.URL.Query().Get("library"), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetHistoryRun handles GET /api/history/{id}.
func (h *Handler) GetHistoryRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.HistoryRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// DeleteHistoryRun handles DELETE /api/history/{id}.
func (h *Handler) DeleteHistoryRun(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteHistoryRun(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "idle"
	if _, err := h.service.Current(); err == nil {
		status = "ready"
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrMissingScheme),
		errors.Is(err, report.ErrInvalidScheme),
		errors.Is(err, report.ErrInvalidProblemMode),
		errors.Is(err, report.ErrInvalidSortMode),
		errors.Is(err, callnumber.ErrUnknownScheme),
		errors.Is(err, config.ErrInvalidScanDate),
		errors.Is(err, inventory.ErrNoCatalog):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrNoReport),
		errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func queryBool(r *http.Request, name string) (bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, s)
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

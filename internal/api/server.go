// =============================================================================
// Shelf Inventory Reconciler - HTTP Router
// =============================================================================
//
// This module configures the chi router, the middleware stack and the
// route table of the inventory API.
//
// MIDDLEWARE STACK:
//   1. RequestID : unique ID per request, included in request logs
//   2. Logger    : request logging through zap
//   3. Recoverer : panic recovery (500 instead of crash)
//   4. CORS      : cross-origin requests for a browser front end
//
// ROUTES:
//   POST   /api/reports                 Generate a report
//   GET    /api/reports/current         Current report
//   DELETE /api/reports/current         Discard the current report
//   GET    /api/reports/current/export  Current report as a workbook
//   POST   /api/normalize               Call number sort keys
//   GET    /api/history                 Recent runs
//   GET    /api/history/{id}            One run
//   DELETE /api/history/{id}            Forget one run
//   GET    /metrics                     Prometheus metrics
//   GET    /healthz                     Liveness
//
// =============================================================================

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AllowedOrigins for CORS. Defaults to local development origins.
	AllowedOrigins []string

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(h.logger),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
	}))

	r.Get("/healthz", h.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/reports", func(r chi.Router) {
			r.Post("/", h.GenerateReport)
			r.Get("/current", h.GetCurrentReport)
			r.Delete("/current", h.ResetReport)
			r.Get("/current/export", h.ExportReport)
		})

		r.Post("/normalize", h.Normalize)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.ListHistory)
			r.Get("/{id}", h.GetHistoryRun)
			r.Delete("/{id}", h.DeleteHistoryRun)
		})
	})

	return r
}

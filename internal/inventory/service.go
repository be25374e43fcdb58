// =============================================================================
// Shelf Inventory Reconciler - Inventory Service
// =============================================================================
//
// This module wires one inventory run end to end:
//
//   scanned barcodes ──CatalogSource──> PhysicalItems
//                    ──Assembler─────> ReportData
//                    ──export────────> workbook in the output directory
//                    ──HistoryStore──> run summary
//
// The CLI and the HTTP adapter both drive runs through a Service. The
// reconciliation core never performs I/O; everything that touches files,
// the catalog or the database happens here.
//
// =============================================================================

package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/shelf-inventory/internal/export"
	"github.com/ginjaninja78/shelf-inventory/internal/history"
	"github.com/ginjaninja78/shelf-inventory/internal/platform/metrics"
	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
	"github.com/ginjaninja78/shelf-inventory/pkg/utils"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CatalogSource,HistoryStore

var (
	ErrNoAssembler = errors.New("assembler is required")
	ErrNoCatalog   = errors.New("no catalog is loaded")
)

// CatalogSource resolves scanned barcodes to catalog-merged items in scan
// order. Unknown barcodes are returned with ExistsInAlma false.
type CatalogSource interface {
	Lookup(ctx context.Context, barcodes []string) ([]types.PhysicalItem, error)
}

// HistoryStore persists run summaries.
type HistoryStore interface {
	Save(ctx context.Context, run history.Run) error
	Get(ctx context.Context, id string) (*history.Run, error)
	List(ctx context.Context, library string, limit int) ([]history.Run, error)
	Delete(ctx context.Context, id string) error
}

// Result is the outcome of one run.
type Result struct {
	Report *report.ReportData `json:"report"`

	// OutputFile is the written workbook, empty when no output directory
	// is configured.
	OutputFile string `json:"outputFile,omitempty"`
}

// =============================================================================
// SERVICE STRUCTURE
// =============================================================================

// Service runs inventories.
type Service struct {
	assembler *report.Assembler
	catalog   CatalogSource
	history   HistoryStore
	metrics   *metrics.Metrics
	logger    *zap.Logger

	output       *utils.FileManager
	problemsOnly bool
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog sets the catalog used to resolve barcodes.
func WithCatalog(c CatalogSource) Option {
	return func(s *Service) { s.catalog = c }
}

// WithHistory records every successful run in store.
func WithHistory(store HistoryStore) Option {
	return func(s *Service) { s.history = store }
}

// WithMetrics sets the run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithOutputDir writes a workbook for every successful run into dir. With
// problemsOnly the Report sheet lists only items with problems.
func WithOutputDir(dir string, problemsOnly bool) Option {
	return func(s *Service) {
		s.output = utils.NewFileManager("", dir, "")
		s.problemsOnly = problemsOnly
	}
}

// New creates a Service around assembler.
func New(assembler *report.Assembler, opts ...Option) (*Service, error) {
	if assembler == nil {
		return nil, ErrNoAssembler
	}
	s := &Service{
		assembler: assembler,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// =============================================================================
// RUNS
// =============================================================================

// Run resolves barcodes through the catalog and generates a report.
func (s *Service) Run(ctx context.Context, params report.Parameters, barcodes []string) (*Result, error) {
	if s.catalog == nil {
		return nil, ErrNoCatalog
	}

	start := time.Now()
	items, err := s.catalog.Lookup(ctx, barcodes)
	if err != nil {
		s.metrics.IncrementRun("failure")
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	s.logger.Debug("catalog lookup complete", zap.Int("barcodes", len(barcodes)))

	return s.generate(ctx, start, params, items)
}

// RunItems generates a report from items that are already merged with
// their catalog records.
func (s *Service) RunItems(ctx context.Context, params report.Parameters, items []types.PhysicalItem) (*Result, error) {
	return s.generate(ctx, time.Now(), params, items)
}

func (s *Service) generate(ctx context.Context, start time.Time, params report.Parameters, items []types.PhysicalItem) (*Result, error) {
	data, err := s.assembler.Generate(params, items)
	if err != nil {
		s.metrics.IncrementRun("failure")
		return nil, err
	}

	result := &Result{Report: data}

	if s.output != nil && s.output.OutputDir != "" {
		path := s.output.OutputPath(data.Filename)
		if err := export.SaveWorkbook(path, data, s.problemsOnly); err != nil {
			s.metrics.IncrementRun("failure")
			return nil, fmt.Errorf("export workbook: %w", err)
		}
		result.OutputFile = path
		s.logger.Info("workbook written", zap.String("path", path))
	}

	if s.history != nil {
		if err := s.history.Save(ctx, history.NewRun(data, result.OutputFile)); err != nil {
			s.metrics.IncrementRun("failure")
			return nil, fmt.Errorf("record history: %w", err)
		}
	}

	s.record(data, time.Since(start))
	return result, nil
}

func (s *Service) record(data *report.ReportData, elapsed time.Duration) {
	s.metrics.IncrementRun("success")
	s.metrics.AddItems(data.Counts.Total)
	s.metrics.ObserveRunLatency(elapsed)

	c := data.Counts
	for category, count := range map[string]report.Count{
		"order":              c.Order,
		"library":            c.Library,
		"location":           c.Location,
		"temporary_location": c.TemporaryLocation,
		"policy":             c.Policy,
		"type":               c.Type,
		"not_in_place":       c.NotInPlace,
		"request":            c.Request,
		"unparsable":         c.UnparsableCallNumber,
		"not_in_catalog":     c.NotInCatalog,
	} {
		if count.Evaluated {
			s.metrics.AddProblems(category, count.N)
		}
	}
}

// =============================================================================
// CURRENT REPORT AND HISTORY
// =============================================================================

// Current returns the report held by the assembler.
func (s *Service) Current() (*report.ReportData, error) {
	data, ok := s.assembler.Report()
	if !ok {
		return nil, report.ErrNoReport
	}
	return data, nil
}

// Reset discards the current report.
func (s *Service) Reset() {
	s.assembler.Reset()
	s.logger.Info("report reset")
}

// History lists recent runs, newest first. Without a history store the
// list is empty.
func (s *Service) History(ctx context.Context, library string, limit int) ([]history.Run, error) {
	if s.history == nil {
		return []history.Run{}, nil
	}
	return s.history.List(ctx, library, limit)
}

// HistoryRun returns one recorded run.
func (s *Service) HistoryRun(ctx context.Context, id string) (*history.Run, error) {
	if s.history == nil {
		return nil, fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	return s.history.Get(ctx, id)
}

// DeleteHistoryRun removes one recorded run. Workbooks already written are
// left in place.
func (s *Service) DeleteHistoryRun(ctx context.Context, id string) error {
	if s.history == nil {
		return fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	return s.history.Delete(ctx, id)
}

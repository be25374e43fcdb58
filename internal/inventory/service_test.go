package inventory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/ginjaninja78/shelf-inventory/internal/history"
	"github.com/ginjaninja78/shelf-inventory/internal/inventory/mocks"
	"github.com/ginjaninja78/shelf-inventory/internal/platform/metrics"
	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/internal/types"
)

// =============================================================================
// Inventory Service Test Suite
// =============================================================================

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockCatalog *mocks.MockCatalogSource
	mockHistory *mocks.MockHistoryStore
	metrics     *metrics.Metrics
	service     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockCatalog = mocks.NewMockCatalogSource(s.ctrl)
	s.mockHistory = mocks.NewMockHistoryStore(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())

	var err error
	s.service, err = New(report.NewAssembler(),
		WithCatalog(s.mockCatalog),
		WithHistory(s.mockHistory),
		WithMetrics(s.metrics),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func params() report.Parameters {
	return report.Parameters{Scheme: types.SchemeLC, ProblemMode: types.ProblemModeOnlyOrder}
}

func items(callNumbers ...string) []types.PhysicalItem {
	out := make([]types.PhysicalItem, len(callNumbers))
	for i, cn := range callNumbers {
		out[i] = types.PhysicalItem{Barcode: cn, ExistsInAlma: true, CallNumber: cn}
	}
	return out
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *ServiceSuite) TestNew_RequiresAssembler() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNoAssembler)
}

// =============================================================================
// Run Tests
// =============================================================================

func (s *ServiceSuite) TestRun_Success() {
	ctx := context.Background()
	barcodes := []string{"A1", "A3", "A2"}

	s.mockCatalog.EXPECT().Lookup(ctx, barcodes).Return(items(barcodes...), nil)
	s.mockHistory.EXPECT().Save(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, run history.Run) error {
		s.Equal(3, run.ItemCount)
		s.Equal(1, run.ProblemCount)
		s.Empty(run.OutputFile)
		return nil
	})

	result, err := s.service.Run(ctx, params(), barcodes)
	s.Require().NoError(err)
	s.Equal(3, result.Report.Counts.Total)
	s.Empty(result.OutputFile)

	current, err := s.service.Current()
	s.Require().NoError(err)
	s.Equal(result.Report.ID, current.ID)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Runs.WithLabelValues("success")))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.ItemsProcessed))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Problems.WithLabelValues("order")))
}

func (s *ServiceSuite) TestRun_CatalogFailure() {
	ctx := context.Background()
	lookupErr := errors.New("catalog offline")
	s.mockCatalog.EXPECT().Lookup(ctx, []string{"1"}).Return(nil, lookupErr)

	_, err := s.service.Run(ctx, params(), []string{"1"})
	s.ErrorIs(err, lookupErr)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Runs.WithLabelValues("failure")))
}

func (s *ServiceSuite) TestRun_HardFailureSkipsHistory() {
	ctx := context.Background()
	s.mockCatalog.EXPECT().Lookup(ctx, []string{"A1"}).Return(items("A1"), nil)

	_, err := s.service.Run(ctx, report.Parameters{}, []string{"A1"})
	s.ErrorIs(err, report.ErrMissingScheme)

	_, err = s.service.Current()
	s.ErrorIs(err, report.ErrNoReport)
}

func (s *ServiceSuite) TestRun_HistoryFailure() {
	ctx := context.Background()
	saveErr := errors.New("disk full")
	s.mockCatalog.EXPECT().Lookup(ctx, gomock.Any()).Return(items("A1"), nil)
	s.mockHistory.EXPECT().Save(ctx, gomock.Any()).Return(saveErr)

	_, err := s.service.Run(ctx, params(), []string{"A1"})
	s.ErrorIs(err, saveErr)
}

func (s *ServiceSuite) TestRun_NoCatalog() {
	svc, err := New(report.NewAssembler())
	s.Require().NoError(err)

	_, err = svc.Run(context.Background(), params(), []string{"1"})
	s.ErrorIs(err, ErrNoCatalog)
}

func (s *ServiceSuite) TestRunItems_WritesWorkbook() {
	dir := s.T().TempDir()
	svc, err := New(report.NewAssembler(), WithOutputDir(dir, true), WithHistory(s.mockHistory))
	s.Require().NoError(err)

	s.mockHistory.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run history.Run) error {
		s.Equal(dir, filepath.Dir(run.OutputFile))
		return nil
	})

	result, err := svc.RunItems(context.Background(), params(), items("A1", "A2"))
	s.Require().NoError(err)
	s.Equal(filepath.Join(dir, result.Report.Filename), result.OutputFile)
	s.FileExists(result.OutputFile)
}

// =============================================================================
// Current Report and History Tests
// =============================================================================

func (s *ServiceSuite) TestReset() {
	s.mockHistory.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.service.RunItems(context.Background(), params(), items("A1"))
	s.Require().NoError(err)

	s.service.Reset()
	_, err = s.service.Current()
	s.ErrorIs(err, report.ErrNoReport)
}

func (s *ServiceSuite) TestHistory() {
	ctx := context.Background()
	runs := []history.Run{{ID: "r1"}}
	s.mockHistory.EXPECT().List(ctx, "MAIN", 5).Return(runs, nil)
	s.mockHistory.EXPECT().Get(ctx, "r1").Return(&runs[0], nil)

	got, err := s.service.History(ctx, "MAIN", 5)
	s.Require().NoError(err)
	s.Equal(runs, got)

	run, err := s.service.HistoryRun(ctx, "r1")
	s.Require().NoError(err)
	s.Equal("r1", run.ID)
}

func (s *ServiceSuite) TestDeleteHistoryRun() {
	ctx := context.Background()
	s.mockHistory.EXPECT().Delete(ctx, "r1").Return(nil)
	s.mockHistory.EXPECT().Delete(ctx, "gone").Return(history.ErrNotFound)

	s.NoError(s.service.DeleteHistoryRun(ctx, "r1"))
	s.ErrorIs(s.service.DeleteHistoryRun(ctx, "gone"), history.ErrNotFound)
}

func (s *ServiceSuite) TestHistory_WithoutStore() {
	svc, err := New(report.NewAssembler())
	s.Require().NoError(err)

	runs, err := svc.History(context.Background(), "", 0)
	s.Require().NoError(err)
	s.Empty(runs)

	_, err = svc.HistoryRun(context.Background(), "r1")
	s.ErrorIs(err, history.ErrNotFound)

	s.ErrorIs(svc.DeleteHistoryRun(context.Background(), "r1"), history.ErrNotFound)
}

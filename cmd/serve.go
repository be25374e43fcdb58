// =============================================================================
// Shelf Inventory Reconciler - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes the reconciliation
// engine over HTTP.
//
// COMMAND USAGE:
//   shelf-inventory serve [--catalog export.xlsx] [--addr :8080]
//
// Without --catalog, POST /api/reports only accepts pre-merged items.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/shelf-inventory/internal/api"
	"github.com/ginjaninja78/shelf-inventory/internal/catalog"
	"github.com/ginjaninja78/shelf-inventory/internal/history"
	"github.com/ginjaninja78/shelf-inventory/internal/inventory"
	"github.com/ginjaninja78/shelf-inventory/internal/platform/httpserver"
	"github.com/ginjaninja78/shelf-inventory/internal/platform/metrics"
	"github.com/ginjaninja78/shelf-inventory/internal/report"
	"github.com/ginjaninja78/shelf-inventory/pkg/utils"
)

var (
	serveAddr        string
	serveCatalogPath string
	serveWriteOutput bool
	allowedOrigins   []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reconciliation HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", "", "Listen address (default: listen_addr from the config)")
	f.StringVar(&serveCatalogPath, "catalog", "", "Catalog bulk export used to resolve scanned barcodes")
	f.BoolVar(&serveWriteOutput, "write-output", false, "Also write every generated workbook to output_dir")
	f.StringSliceVar(&allowedOrigins, "allowed-origins", nil, "CORS allowed origins")
}

func runServe(cmd *cobra.Command) error {
	addr := serveAddr
	if addr == "" {
		addr = mainConfig.ListenAddr
	}

	// =========================================================================
	// STEP 1: WIRE STORAGE AND METRICS
	// =========================================================================

	store, err := history.Open(mainConfig.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []inventory.Option{
		inventory.WithHistory(store),
		inventory.WithMetrics(metrics.New(reg)),
		inventory.WithLogger(log),
	}

	if serveCatalogPath != "" {
		table, err := catalog.LoadTable(serveCatalogPath, mainConfig.CatalogSettings)
		if err != nil {
			return fmt.Errorf("failed to read catalog export: %w", err)
		}
		cat, err := catalog.FromTable(table)
		if err != nil {
			return fmt.Errorf("failed to load catalog export: %w", err)
		}
		opts = append(opts, inventory.WithCatalog(cat))
		log.Info("catalog loaded", zap.String("path", serveCatalogPath), zap.Int("records", cat.Len()))
	}

	if serveWriteOutput {
		fm := utils.NewFileManager("", mainConfig.OutputDir, "")
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
		opts = append(opts, inventory.WithOutputDir(mainConfig.OutputDir, false))
	}

	svc, err := inventory.New(report.NewAssembler(report.WithLogger(log)), opts...)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: SERVE UNTIL INTERRUPTED
	// =========================================================================

	router := api.NewRouter(api.NewHandler(svc, log), api.RouterOptions{
		AllowedOrigins: allowedOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	srv := httpserver.New(addr, router)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

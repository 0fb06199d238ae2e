// Package main is the entry point for the stockwise background worker.
// It periodically reconciles the stock register against the movement log and
// the legacy ledgers, and expires idempotency keys.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockwise/internal/app"
	"stockwise/internal/config"
	"stockwise/internal/domain/reconcile"
	"stockwise/internal/infrastructure/metrics"
	"stockwise/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting stockwise worker")

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	if a.Metrics != nil {
		go serveMetrics(log, cfg.App.Port, a.Metrics)
	}

	worker := NewWorker(a, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

func serveMetrics(log *logger.Logger, port string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorw("metrics server failed", "error", err)
	}
}

// Worker runs the periodic jobs.
type Worker struct {
	app *app.App
	log *logger.Logger
}

func NewWorker(a *app.App, log *logger.Logger) *Worker {
	return &Worker{
		app: a,
		log: log.WithComponent("worker"),
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	reconcileTicker := time.NewTicker(w.app.Config.Reconcile.Interval)
	defer reconcileTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	w.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-reconcileTicker.C:
			w.reconcile(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

func (w *Worker) reconcile(ctx context.Context) {
	report, err := w.app.Reconcile.Run(ctx)
	if w.app.Metrics != nil {
		w.app.Metrics.RecordReconcileRun(err)
	}
	if err != nil {
		w.log.Errorw("reconciliation failed", "error", err)
		return
	}

	w.log.Infow("reconciliation finished",
		"balances_checked", report.BalancesChecked,
		"products_checked", report.ProductsChecked,
		"balance_drift", report.Count(reconcile.DriftBalance),
		"count_in_stock_drift", report.Count(reconcile.DriftCountInStock),
		"ledger_drift", report.Count(reconcile.DriftLedger),
		"duration_ms", report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	)
	for _, d := range report.Drifts {
		w.log.Warnw("stock drift",
			"kind", d.Kind,
			"product_id", d.ProductID,
			"location", d.Location,
			"expected", d.Expected,
			"actual", d.Actual,
			"repaired", d.Repaired,
		)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	if w.app.Idempotency == nil {
		return
	}
	n, err := w.app.Idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("expired idempotency keys removed", "count", n)
	}
}

package worker

import (
	"context"
	"time"

	"github.com/velozpay/ledger/internal/ledger"
	"go.uber.org/zap"
)

// ReconciliationWorker sweeps account invariants in the background at a fixed
// interval. It never mutates the ledger, so running it alongside live traffic
// is safe.
type ReconciliationWorker struct {
	svc      *ledger.ReconciliationService
	logger   *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewReconciliationWorker(svc *ledger.ReconciliationService, logger *zap.Logger) *ReconciliationWorker {
	return &ReconciliationWorker{
		svc:      svc,
		logger:   logger,
		interval: 1 * time.Minute,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval sets the sweep interval.
func (w *ReconciliationWorker) WithInterval(interval time.Duration) *ReconciliationWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start runs sweeps until Stop is called or the context is canceled.
func (w *ReconciliationWorker) Start(ctx context.Context) {
	w.logger.Info("reconciliation worker starting", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconciliation worker stopping", zap.String("reason", "context canceled"))
			return
		case <-w.stopCh:
			w.logger.Info("reconciliation worker stopping", zap.String("reason", "stop requested"))
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *ReconciliationWorker) Stop() {
	close(w.stopCh)
}

// SweepOnce runs a single sweep immediately.
func (w *ReconciliationWorker) SweepOnce(ctx context.Context) error {
	return w.svc.Run(ctx)
}

// Run starts the worker in a goroutine and returns its stop function.
func (w *ReconciliationWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *ReconciliationWorker) sweep(ctx context.Context) {
	if err := w.svc.Run(ctx); err != nil {
		w.logger.Error("reconciliation sweep failed", zap.Error(err))
	}
}

package jobs

import (
	"context"
	"log/slog"
	"sync"

	"fulfillment/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// DefaultReconcileSchedule runs the reconciliation at the start of every minute.
const DefaultReconcileSchedule = "0 * * * * *"

// DiscrepancyFinder is satisfied by queries.FindStockDiscrepanciesQueryHandler.
type DiscrepancyFinder interface {
	Handle(ctx context.Context, query queries.FindStockDiscrepanciesQuery) ([]queries.FindStockDiscrepanciesQueryResponse, error)
}

// StockReconciliationJob periodically compares variant counters with their
// ledgers and reports every mismatch.
type StockReconciliationJob struct {
	finder   DiscrepancyFinder
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewStockReconciliationJob(finder DiscrepancyFinder, schedule string, logger *slog.Logger) *StockReconciliationJob {
	if schedule == "" {
		schedule = DefaultReconcileSchedule
	}
	return &StockReconciliationJob{
		finder:   finder,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "stock_reconciliation_job"),
	}
}

// Run performs one reconciliation pass and returns the discrepancies found.
func (j *StockReconciliationJob) Run(ctx context.Context) ([]queries.FindStockDiscrepanciesQueryResponse, error) {
	found, err := j.finder.Handle(ctx, queries.NewFindStockDiscrepanciesQuery())
	if err != nil {
		return nil, err
	}
	for _, d := range found {
		j.logger.WarnContext(ctx, "Stock ledger does not match stockOnHand",
			"variantId", d.VariantID.String(),
			"sku", d.SKU,
			"stockOnHand", d.StockOnHand,
			"ledgerSum", d.LedgerSum,
		)
	}
	return found, nil
}

// Start schedules Run. A pass still in progress when the next tick fires is
// not overlapped.
func (j *StockReconciliationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if !j.tryEnter() {
			return
		}
		defer j.leave()

		ctx := context.Background()
		if _, err := j.Run(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Stock reconciliation job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stock reconciliation job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *StockReconciliationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stock reconciliation job stopped")
}

func (j *StockReconciliationJob) tryEnter() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return false
	}
	j.running = true
	return true
}

func (j *StockReconciliationJob) leave() {
	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager starts and stops the background jobs of the service.
type JobManager struct {
	stockReconciliationJob *StockReconciliationJob
}

func NewJobManager(finder DiscrepancyFinder, reconcileSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		stockReconciliationJob: NewStockReconciliationJob(finder, reconcileSchedule, logger),
	}
}

// StockReconciliation exposes the job for one-shot runs.
func (jm *JobManager) StockReconciliation() *StockReconciliationJob {
	return jm.stockReconciliationJob
}

func (jm *JobManager) StartAll() error {
	if err := jm.stockReconciliationJob.Start(); err != nil {
		return fmt.Errorf("failed to start stock reconciliation job: %w", err)
	}
	return nil
}

// StopAll stops all jobs and waits for running passes.
func (jm *JobManager) StopAll() {
	jm.stockReconciliationJob.Stop()
}

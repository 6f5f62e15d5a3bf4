// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3.
//
// # Available Jobs
//
// StockReconciliationJob compares every tracked variant's stockOnHand with the
// sum of its stock movements and logs each mismatch at Warn level. It runs on
// RECONCILE_SCHEDULE (a six-field cron expression, seconds first) and is also
// invoked once by the reconcile command.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(discrepancyHandler, cfg.ReconcileSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
package jobs

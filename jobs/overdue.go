package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/hermes-renovation/hermes/internal/jobs"
)

// NewInvoiceOverdueScanTask constructs the nightly overdue sweep task.
func NewInvoiceOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeInvoiceOverdueScan, nil)
}

// HandleInvoiceOverdueScanTask marks pending invoices past their due
// date as OVERDUE. Runs from the scheduler; safe to repeat.
func HandleInvoiceOverdueScanTask(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("invoice_overdue_scan")
		tag, err := pool.Exec(ctx,
			`UPDATE invoices SET status = 'OVERDUE', updated_at = NOW()
			 WHERE status = 'PENDING' AND due_date < CURRENT_DATE`)
		if err != nil {
			return tracker.End(err)
		}
		if n := tag.RowsAffected(); n > 0 {
			logger.Info("invoices marked overdue", slog.Int64("count", n))
		}
		return tracker.End(nil)
	}
}

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/hemverk/order-api/internal/ledger"
	"go.uber.org/zap"
)

// LedgerSyncJobName is the name of the ledger payment sync job
const LedgerSyncJobName = "ledger_sync"

// defaultLookback bounds the first scan after a restart. Later scans resume
// from the last seen settlement time.
const defaultLookback = 7 * 24 * time.Hour

// PaymentApplier applies a settled ledger payment to the matching invoice.
// The application goes through the guarded invoice transition, so a payment
// can be rejected (e.g. the source quote awaits re-acceptance) and retried on
// the next scan.
type PaymentApplier interface {
	ApplyLedgerPayment(ctx context.Context, invoiceNumber string, amountSEK int64, settledAt time.Time) error
}

// LedgerSyncJob reads settled customer payments from the accounting ledger
// and marks the matching invoices paid.
type LedgerSyncJob struct {
	client  *ledger.Client
	applier PaymentApplier
	logger  *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	lastSeen time.Time
}

// NewLedgerSyncJob creates a new ledger sync job.
// The timeout controls how long one sync pass is allowed to run.
func NewLedgerSyncJob(client *ledger.Client, applier PaymentApplier, logger *zap.Logger, timeout time.Duration) *LedgerSyncJob {
	return &LedgerSyncJob{
		client:  client,
		applier: applier,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one ledger sync pass.
// This is called by the scheduler according to the cron expression.
func (j *LedgerSyncJob) Run() {
	if !j.client.IsEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	j.mu.Lock()
	since := j.lastSeen
	j.mu.Unlock()
	if since.IsZero() {
		since = time.Now().UTC().Add(-defaultLookback)
	}

	j.logger.Info("starting ledger sync job", zap.Time("since", since))

	payments, err := j.client.ListSettledPayments(ctx, since)
	if err != nil {
		j.logger.Error("ledger payment scan failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	var applied, failed int
	newest := since
	for _, p := range payments {
		if aerr := j.applier.ApplyLedgerPayment(ctx, p.InvoiceNumber, p.AmountSEK, p.SettledAt); aerr != nil {
			failed++
			j.logger.Warn("failed to apply ledger payment",
				zap.String("invoice_number", p.InvoiceNumber),
				zap.Error(aerr))
			continue
		}
		applied++
		if p.SettledAt.After(newest) {
			newest = p.SettledAt
		}
	}

	// Only advance the cursor past payments that applied cleanly; failed ones
	// come back on the next scan.
	if failed == 0 {
		j.mu.Lock()
		j.lastSeen = newest
		j.mu.Unlock()
	}

	j.logger.Info("completed ledger sync job",
		zap.Int("payments_applied", applied),
		zap.Int("payments_failed", failed),
		zap.Duration("duration", time.Since(start)))
}

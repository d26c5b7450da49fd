package jobs

import (
	"context"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"go.uber.org/zap"
)

// OverdueNotifierJobName is the name of the overdue notifier job
const OverdueNotifierJobName = "overdue_notifier"

// InvoiceScanner lists invoices whose derived state is overdue. The scan
// never mutates any stored status.
type InvoiceScanner interface {
	ListOverdueInvoices(ctx context.Context) ([]domain.Invoice, error)
}

// QuoteScanner lists sent quotes past their validity window
type QuoteScanner interface {
	ListExpiredQuotes(ctx context.Context) ([]domain.Quote, error)
}

// ReminderDispatcher sends the customer-facing reminders
type ReminderDispatcher interface {
	OverdueReminder(ctx context.Context, invoice *domain.Invoice) error
	QuoteExpiredReminder(ctx context.Context, quote *domain.Quote) error
}

// OverdueNotifierJob scans for unpaid invoices past their due date and for
// sent quotes past their validity window, and dispatches reminders. The
// overdue and expired states are read-time projections, so the scan queries
// them directly instead of flipping any status.
type OverdueNotifierJob struct {
	invoices   InvoiceScanner
	quotes     QuoteScanner
	dispatcher ReminderDispatcher
	logger     *zap.Logger
	timeout    time.Duration
}

// NewOverdueNotifierJob creates a new overdue notifier job.
// The timeout controls how long one scan is allowed to run.
func NewOverdueNotifierJob(invoices InvoiceScanner, quotes QuoteScanner, dispatcher ReminderDispatcher, logger *zap.Logger, timeout time.Duration) *OverdueNotifierJob {
	return &OverdueNotifierJob{
		invoices:   invoices,
		quotes:     quotes,
		dispatcher: dispatcher,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes one reminder scan.
// This is called by the scheduler according to the cron expression.
func (j *OverdueNotifierJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting overdue notifier job")

	var sent, failed int

	invoices, err := j.invoices.ListOverdueInvoices(ctx)
	if err != nil {
		j.logger.Error("overdue invoice scan failed", zap.Error(err))
	} else {
		for i := range invoices {
			if derr := j.dispatcher.OverdueReminder(ctx, &invoices[i]); derr != nil {
				failed++
				j.logger.Warn("failed to dispatch overdue reminder",
					zap.String("invoice_number", invoices[i].InvoiceNumber),
					zap.Error(derr))
				continue
			}
			sent++
		}
	}

	quotes, err := j.quotes.ListExpiredQuotes(ctx)
	if err != nil {
		j.logger.Error("expired quote scan failed", zap.Error(err))
	} else {
		for i := range quotes {
			if derr := j.dispatcher.QuoteExpiredReminder(ctx, &quotes[i]); derr != nil {
				failed++
				j.logger.Warn("failed to dispatch expiry reminder",
					zap.String("quote_number", quotes[i].QuoteNumber),
					zap.Error(derr))
				continue
			}
			sent++
		}
	}

	j.logger.Info("completed overdue notifier job",
		zap.Int("reminders_sent", sent),
		zap.Int("reminders_failed", failed),
		zap.Duration("duration", time.Since(start)))
}

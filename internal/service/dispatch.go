package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hemverk/order-api/internal/config"
	"github.com/hemverk/order-api/internal/domain"
	"go.uber.org/zap"
)

// Dispatcher delivers customer-facing notifications (email with a rendered
// document link). Dispatch failures are logged by callers and never roll back
// the lifecycle transition that triggered them.
type Dispatcher interface {
	QuoteSent(ctx context.Context, quote *domain.Quote) error
	ReacceptRequested(ctx context.Context, quote *domain.Quote) error
	InvoiceSent(ctx context.Context, invoice *domain.Invoice) error
	OverdueReminder(ctx context.Context, invoice *domain.Invoice) error
	QuoteExpiredReminder(ctx context.Context, quote *domain.Quote) error
}

// NewDispatcher selects the dispatcher implementation from config
func NewDispatcher(cfg *config.DispatchConfig, logger *zap.Logger) Dispatcher {
	if cfg.Mode == "webhook" && cfg.WebhookURL != "" {
		return NewWebhookDispatcher(cfg, logger)
	}
	return NewLoggingDispatcher(logger)
}

// LoggingDispatcher logs dispatches instead of sending them. Default in
// development and the fallback when no webhook is configured.
type LoggingDispatcher struct {
	logger *zap.Logger
}

func NewLoggingDispatcher(logger *zap.Logger) *LoggingDispatcher {
	return &LoggingDispatcher{logger: logger}
}

func (d *LoggingDispatcher) QuoteSent(ctx context.Context, quote *domain.Quote) error {
	d.logger.Info("dispatch: quote sent",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
	)
	return nil
}

func (d *LoggingDispatcher) ReacceptRequested(ctx context.Context, quote *domain.Quote) error {
	d.logger.Info("dispatch: re-acceptance requested",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
	)
	return nil
}

func (d *LoggingDispatcher) InvoiceSent(ctx context.Context, invoice *domain.Invoice) error {
	d.logger.Info("dispatch: invoice sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return nil
}

func (d *LoggingDispatcher) OverdueReminder(ctx context.Context, invoice *domain.Invoice) error {
	d.logger.Info("dispatch: overdue reminder",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return nil
}

func (d *LoggingDispatcher) QuoteExpiredReminder(ctx context.Context, quote *domain.Quote) error {
	d.logger.Info("dispatch: quote expired reminder",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
	)
	return nil
}

// WebhookDispatcher posts dispatch events to a serverless mail endpoint
type WebhookDispatcher struct {
	cfg    *config.DispatchConfig
	client *http.Client
	logger *zap.Logger
}

func NewWebhookDispatcher(cfg *config.DispatchConfig, logger *zap.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.DispatchTimeout()},
		logger: logger,
	}
}

type dispatchEvent struct {
	Event     string `json:"event"`
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail"`
	EntityID  string `json:"entityId"`
	Number    string `json:"number,omitempty"`
	Token     string `json:"token,omitempty"`
}

func (d *WebhookDispatcher) post(ctx context.Context, ev dispatchEvent) error {
	ev.FromName = d.cfg.FromName
	ev.FromEmail = d.cfg.FromEmail

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("dispatch endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (d *WebhookDispatcher) QuoteSent(ctx context.Context, quote *domain.Quote) error {
	return d.post(ctx, dispatchEvent{
		Event:    "quote_sent",
		EntityID: quote.ID.String(),
		Number:   quote.QuoteNumber,
		Token:    quote.PublicToken,
	})
}

func (d *WebhookDispatcher) ReacceptRequested(ctx context.Context, quote *domain.Quote) error {
	return d.post(ctx, dispatchEvent{
		Event:    "quote_reaccept_requested",
		EntityID: quote.ID.String(),
		Number:   quote.QuoteNumber,
		Token:    quote.PublicToken,
	})
}

func (d *WebhookDispatcher) InvoiceSent(ctx context.Context, invoice *domain.Invoice) error {
	return d.post(ctx, dispatchEvent{
		Event:    "invoice_sent",
		EntityID: invoice.ID.String(),
		Number:   invoice.InvoiceNumber,
		Token:    invoice.PublicToken,
	})
}

func (d *WebhookDispatcher) OverdueReminder(ctx context.Context, invoice *domain.Invoice) error {
	return d.post(ctx, dispatchEvent{
		Event:    "invoice_overdue_reminder",
		EntityID: invoice.ID.String(),
		Number:   invoice.InvoiceNumber,
		Token:    invoice.PublicToken,
	})
}

func (d *WebhookDispatcher) QuoteExpiredReminder(ctx context.Context, quote *domain.Quote) error {
	return d.post(ctx, dispatchEvent{
		Event:    "quote_expired_reminder",
		EntityID: quote.ID.String(),
		Number:   quote.QuoteNumber,
		Token:    quote.PublicToken,
	})
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/storage"
	"go.uber.org/zap"
)

// DocumentArchive renders and persists document snapshots of quotes and
// invoices at the moment they are sent. The archive copy is what the customer
// saw, so later edits to the record never change it.
type DocumentArchive struct {
	store  storage.Storage
	logger *zap.Logger
}

// NewDocumentArchive creates a new DocumentArchive
func NewDocumentArchive(store storage.Storage, logger *zap.Logger) *DocumentArchive {
	return &DocumentArchive{
		store:  store,
		logger: logger,
	}
}

var quoteTemplate = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html lang="sv">
<head><meta charset="utf-8"><title>Offert {{.QuoteNumber}}</title></head>
<body>
<h1>Offert {{.QuoteNumber}}</h1>
<p>Giltig till: {{if .ValidUntil}}{{.ValidUntil.Format "2006-01-02"}}{{end}}</p>
<table>
{{range .LineItems}}<tr><td>{{.Description}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}} kr</td><td>{{.Total}} kr</td></tr>
{{end}}</table>
<p>Arbete: {{.SubtotalWorkSEK}} kr, Material: {{.SubtotalMatSEK}} kr</p>
{{if .RotDeductionSEK}}<p>Avdrag: -{{.RotDeductionSEK}} kr</p>{{end}}
<p><strong>Att betala: {{.TotalSEK}} kr</strong></p>
</body>
</html>
`))

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html lang="sv">
<head><meta charset="utf-8"><title>Faktura {{.InvoiceNumber}}</title></head>
<body>
<h1>Faktura {{.InvoiceNumber}}</h1>
<p>Förfallodatum: {{if .DueDate}}{{.DueDate.Format "2006-01-02"}}{{end}}</p>
<table>
{{range .LineItems}}<tr><td>{{.Description}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}} kr</td><td>{{.Total}} kr</td></tr>
{{end}}</table>
<p>Delsumma: {{.Subtotal}} kr, Moms: {{.VATAmount}} kr</p>
{{if .RotAmount}}<p>ROT-avdrag: -{{.RotAmount}} kr</p>{{end}}
{{if .RutAmount}}<p>RUT-avdrag: -{{.RutAmount}} kr</p>{{end}}
<p><strong>Att betala: {{.TotalAmount}} kr</strong></p>
</body>
</html>
`))

// ArchiveQuote renders the quote and stores the snapshot, returning the
// storage path
func (a *DocumentArchive) ArchiveQuote(ctx context.Context, quote *domain.Quote) (string, error) {
	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, quote); err != nil {
		return "", fmt.Errorf("failed to render quote document: %w", err)
	}

	path := archivePath("quotes", quote.QuoteNumber)
	if err := a.store.Put(ctx, path, "text/html; charset=utf-8", buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to archive quote document: %w", err)
	}

	a.logger.Info("quote document archived",
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("path", path),
	)
	return path, nil
}

// ArchiveInvoice renders the invoice and stores the snapshot, returning the
// storage path
func (a *DocumentArchive) ArchiveInvoice(ctx context.Context, invoice *domain.Invoice) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoice); err != nil {
		return "", fmt.Errorf("failed to render invoice document: %w", err)
	}

	path := archivePath("invoices", invoice.InvoiceNumber)
	if err := a.store.Put(ctx, path, "text/html; charset=utf-8", buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to archive invoice document: %w", err)
	}

	a.logger.Info("invoice document archived",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("path", path),
	)
	return path, nil
}

// archivePath builds a per-document path; the timestamp keeps every sent
// revision of a renegotiated document.
func archivePath(kind, number string) string {
	return fmt.Sprintf("%s/%s/%s.html", kind, number, time.Now().UTC().Format("20060102T150405Z"))
}

// ArchivingDispatcher wraps a Dispatcher and archives the rendered document
// before the send events. Archive failures are logged and never block the
// dispatch itself.
type ArchivingDispatcher struct {
	inner   Dispatcher
	archive *DocumentArchive
	logger  *zap.Logger
}

// NewArchivingDispatcher creates a dispatcher that archives sent documents
func NewArchivingDispatcher(inner Dispatcher, archive *DocumentArchive, logger *zap.Logger) *ArchivingDispatcher {
	return &ArchivingDispatcher{
		inner:   inner,
		archive: archive,
		logger:  logger,
	}
}

func (d *ArchivingDispatcher) QuoteSent(ctx context.Context, quote *domain.Quote) error {
	if _, err := d.archive.ArchiveQuote(ctx, quote); err != nil {
		d.logger.Warn("failed to archive sent quote", zap.Error(err),
			zap.String("quote_number", quote.QuoteNumber))
	}
	return d.inner.QuoteSent(ctx, quote)
}

func (d *ArchivingDispatcher) ReacceptRequested(ctx context.Context, quote *domain.Quote) error {
	if _, err := d.archive.ArchiveQuote(ctx, quote); err != nil {
		d.logger.Warn("failed to archive changed quote", zap.Error(err),
			zap.String("quote_number", quote.QuoteNumber))
	}
	return d.inner.ReacceptRequested(ctx, quote)
}

func (d *ArchivingDispatcher) InvoiceSent(ctx context.Context, invoice *domain.Invoice) error {
	if _, err := d.archive.ArchiveInvoice(ctx, invoice); err != nil {
		d.logger.Warn("failed to archive sent invoice", zap.Error(err),
			zap.String("invoice_number", invoice.InvoiceNumber))
	}
	return d.inner.InvoiceSent(ctx, invoice)
}

func (d *ArchivingDispatcher) OverdueReminder(ctx context.Context, invoice *domain.Invoice) error {
	return d.inner.OverdueReminder(ctx, invoice)
}

func (d *ArchivingDispatcher) QuoteExpiredReminder(ctx context.Context, quote *domain.Quote) error {
	return d.inner.QuoteExpiredReminder(ctx, quote)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// PublicHandler serves the unauthenticated customer-facing endpoints.
// Documents are addressed by their opaque public token, never by ID.
type PublicHandler struct {
	quoteService   *service.QuoteService
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(quoteService *service.QuoteService, invoiceService *service.InvoiceService, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		quoteService:   quoteService,
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// GetQuote godoc
// @Summary View quote
// @Description Returns a quote by number and public token. The first open marks it viewed.
// @Tags Public
// @Produce json
// @Param number path string true "Quote number"
// @Param token path string true "Public token"
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Router /public/quotes/{number}/{token} [get]
func (h *PublicHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "Missing public token")
		return
	}

	quote, err := h.quoteService.GetByPublicToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// The number in the link must match the token's quote. A mismatch is
	// indistinguishable from a missing quote.
	if quote.QuoteNumber != chi.URLParam(r, "number") {
		respondWithError(w, http.StatusNotFound, "Quote not found")
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// AcceptQuote godoc
// @Summary Accept quote
// @Description Customer acceptance with signature and terms consent
// @Tags Public
// @Accept json
// @Produce json
// @Param number path string true "Quote number"
// @Param token path string true "Public token"
// @Param request body domain.PublicAcceptQuoteRequest true "Signature and consent"
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Quote not acceptable"
// @Failure 422 {object} domain.ErrorResponse "Signature or consent missing"
// @Router /public/quotes/{number}/{token}/accept [post]
func (h *PublicHandler) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "Missing public token")
		return
	}

	current, err := h.quoteService.GetByPublicToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if current.QuoteNumber != chi.URLParam(r, "number") {
		respondWithError(w, http.StatusNotFound, "Quote not found")
		return
	}

	var req domain.PublicAcceptQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.AcceptByPublicToken(r.Context(), token, &req)
	if err != nil {
		h.logger.Warn("public quote acceptance failed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// GetInvoice godoc
// @Summary View invoice
// @Description Returns an invoice by public token
// @Tags Public
// @Produce json
// @Param token path string true "Public token"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Invoice not found"
// @Router /public/invoices/{token} [get]
func (h *PublicHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "Missing public token")
		return
	}

	invoice, err := h.invoiceService.GetByPublicToken(r.Context(), token)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

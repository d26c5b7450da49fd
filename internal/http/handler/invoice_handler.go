package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// InvoiceHandler handles HTTP requests for invoices
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// CreateFromQuote godoc
// @Summary Create invoice from quote
// @Description Builds a draft invoice from an accepted quote, skipping job tracking
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceFromQuoteRequest true "Source quote"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Quote not found"
// @Failure 409 {object} domain.ErrorResponse "Invoice exists or invalid state"
// @Failure 422 {object} domain.ErrorResponse "Reconciliation mismatch"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/from-quote [post]
func (h *InvoiceHandler) CreateFromQuote(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceFromQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.CreateFromQuote(r.Context(), req.QuoteID)
	if err != nil {
		h.logger.Error("failed to create invoice from quote",
			zap.Error(err), zap.String("quote_id", req.QuoteID.String()))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// CreateFromJob godoc
// @Summary Create invoice from job
// @Description Builds a draft invoice from a completed job's logged actuals and flips the job to invoiced
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.CreateInvoiceFromJobRequest true "Source job"
// @Success 201 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invoice exists or invalid state"
// @Failure 422 {object} domain.ErrorResponse "Reconciliation mismatch"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/from-job [post]
func (h *InvoiceHandler) CreateFromJob(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceFromJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.CreateFromJob(r.Context(), req.JobID)
	if err != nil {
		h.logger.Error("failed to create invoice from job",
			zap.Error(err), zap.String("job_id", req.JobID.String()))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// List godoc
// @Summary List invoices
// @Description Returns a paginated list of invoices. Status carries the overdue projection.
// @Tags Invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by stored status" Enums(draft, sent, paid, cancelled)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := r.URL.Query().Get("status")

	invoices, total, err := h.invoiceService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Items:    invoices,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetByID godoc
// @Summary Get invoice
// @Description Returns a specific invoice by ID
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Invoice not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Send godoc
// @Summary Send invoice
// @Description Sends a draft invoice, assigning its number and public token on first send
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body domain.SendInvoiceRequest false "Send options"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Invoice not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	var req domain.SendInvoiceRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	invoice, err := h.invoiceService.Send(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to send invoice",
			zap.Error(err), zap.String("invoice_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// MarkPaid godoc
// @Summary Mark invoice paid
// @Description Records payment. Blocked while the source quote awaits re-acceptance.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body domain.MarkInvoicePaidRequest true "Payment date"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Invoice not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Failure 422 {object} domain.ErrorResponse "Quote awaiting re-acceptance"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/paid [post]
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	var req domain.MarkInvoicePaidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.MarkPaid(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to mark invoice paid",
			zap.Error(err), zap.String("invoice_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// Cancel godoc
// @Summary Cancel invoice
// @Description Voids a draft or sent invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Invoice not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	invoice, err := h.invoiceService.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// UpdateAdminNote godoc
// @Summary Update admin note
// @Description Edits the internal note. The only mutation allowed on a paid invoice.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body domain.UpdateInvoiceNoteRequest true "Note"
// @Success 200 {object} domain.InvoiceDTO
// @Failure 404 {object} domain.ErrorResponse "Invoice not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /invoices/{id}/note [put]
func (h *InvoiceHandler) UpdateAdminNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	var req domain.UpdateInvoiceNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.UpdateAdminNote(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// BookingHandler handles HTTP requests for incoming service requests
type BookingHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *service.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Submit booking
// @Description Submits a new service request from the booking wizard (guest or authenticated)
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body domain.CreateBookingRequest true "Booking data"
// @Success 201 {object} domain.BookingDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Service or addon not found"
// @Router /public/bookings [post]
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	booking, err := h.bookingService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create booking", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/bookings/"+booking.ID.String())
	respondJSON(w, http.StatusCreated, booking)
}

// ComputePrice godoc
// @Summary Compute price
// @Description Runs a pricing computation for the booking wizard without persisting anything
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body domain.ComputePriceRequest true "Pricing input"
// @Success 200 {object} domain.PriceBreakdownDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Service or addon not found"
// @Router /public/price [post]
func (h *BookingHandler) ComputePrice(w http.ResponseWriter, r *http.Request) {
	var req domain.ComputePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	breakdown, err := h.bookingService.ComputePrice(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, breakdown)
}

// List godoc
// @Summary List bookings
// @Description Returns a paginated list of service requests
// @Tags Bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(new, confirmed, completed, cancelled)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings [get]
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := domain.BookingStatus(r.URL.Query().Get("status"))

	bookings, total, err := h.bookingService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Items:    bookings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetByID godoc
// @Summary Get booking
// @Description Returns a specific service request by ID
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 400 {object} domain.ErrorResponse "Invalid ID"
// @Failure 404 {object} domain.ErrorResponse "Booking not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	booking, err := h.bookingService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// MarkSeen godoc
// @Summary Mark booking seen
// @Description Stamps admin acknowledgment on a request. Idempotent and orthogonal to status.
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.ErrorResponse "Booking not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/{id}/seen [post]
func (h *BookingHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	booking, err := h.bookingService.MarkSeen(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Confirm godoc
// @Summary Confirm booking
// @Description Transitions a request from new to confirmed
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.ErrorResponse "Booking not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	booking, err := h.bookingService.Confirm(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Complete godoc
// @Summary Complete booking
// @Description Transitions a request from confirmed to completed
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.ErrorResponse "Booking not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	booking, err := h.bookingService.Complete(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Cancel godoc
// @Summary Cancel booking
// @Description Cancels a request from any non-terminal status
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body domain.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} domain.BookingDTO
// @Failure 404 {object} domain.ErrorResponse "Booking not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	var req domain.CancelBookingRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	booking, err := h.bookingService.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, booking)
}

// Delete godoc
// @Summary Delete booking
// @Description Soft-deletes a service request
// @Tags Bookings
// @Param id path string true "Booking ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse "Booking not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid booking ID: must be a valid UUID")
		return
	}

	if err := h.bookingService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// UnseenCount godoc
// @Summary Unseen booking count
// @Description Returns the number of unacknowledged requests for the admin badge
// @Tags Bookings
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/unseen-count [get]
func (h *BookingHandler) UnseenCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.bookingService.UnseenCount(r.Context())
	if err != nil {
		h.logger.Error("failed to count unseen bookings", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to count unseen bookings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// Recent godoc
// @Summary Recent bookings
// @Description Returns the newest requests for the admin notification feed
// @Tags Bookings
// @Produce json
// @Param limit query int false "Max entries" default(10)
// @Success 200 {array} domain.BookingDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /bookings/recent [get]
func (h *BookingHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	bookings, err := h.bookingService.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list recent bookings", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list recent bookings")
		return
	}

	respondJSON(w, http.StatusOK, bookings)
}

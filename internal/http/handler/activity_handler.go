package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// ActivityHandler handles HTTP requests for activity history
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// ListByTarget godoc
// @Summary List activity
// @Description Returns the activity history of a booking, quote, job or invoice, newest first
// @Tags Activity
// @Produce json
// @Param targetType path string true "Target type" Enums(booking, quote, job, invoice)
// @Param targetId path string true "Target ID"
// @Param limit query int false "Max entries" default(50)
// @Success 200 {array} domain.ActivityLogDTO
// @Failure 400 {object} domain.ErrorResponse "Unknown target type"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activity/{targetType}/{targetId} [get]
func (h *ActivityHandler) ListByTarget(w http.ResponseWriter, r *http.Request) {
	targetType := domain.ActivityTargetType(chi.URLParam(r, "targetType"))

	targetID, err := parseUUIDParam(r, "targetId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid target ID: must be a valid UUID")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := h.activityService.ListByTarget(r.Context(), targetType, targetID, limit)
	if err != nil {
		h.logger.Error("failed to list activity",
			zap.Error(err), zap.String("target_type", string(targetType)))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for the service catalog
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// CreateService godoc
// @Summary Create service
// @Description Adds a bookable service to the catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateServiceRequest true "Service details"
// @Success 201 {object} domain.ServiceDTO
// @Failure 400 {object} domain.ErrorResponse "Validation error"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services [post]
func (h *CatalogHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	svc, err := h.catalogService.CreateService(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create service", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/services/"+svc.ID.String())
	respondJSON(w, http.StatusCreated, svc)
}

// ListServices godoc
// @Summary List services
// @Description Returns catalog services in display order
// @Tags Catalog
// @Produce json
// @Param active query bool false "Only active services"
// @Success 200 {array} domain.ServiceDTO
// @Failure 500 {object} domain.ErrorResponse
// @Router /services [get]
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	services, err := h.catalogService.ListServices(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list services", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, services)
}

// GetService godoc
// @Summary Get service
// @Description Returns a catalog service with its addons
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} domain.ServiceDTO
// @Failure 404 {object} domain.ErrorResponse "Service not found"
// @Router /services/{id} [get]
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID: must be a valid UUID")
		return
	}

	svc, err := h.catalogService.GetService(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, svc)
}

// UpdateService godoc
// @Summary Update service
// @Description Updates catalog service fields. Price changes never touch existing quotes.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body domain.UpdateServiceRequest true "Fields to update"
// @Success 200 {object} domain.ServiceDTO
// @Failure 404 {object} domain.ErrorResponse "Service not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID: must be a valid UUID")
		return
	}

	var req domain.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	svc, err := h.catalogService.UpdateService(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update service",
			zap.Error(err), zap.String("service_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, svc)
}

// DeleteService godoc
// @Summary Delete service
// @Description Removes a service, or deactivates it when bookings reference it
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 204 "No Content"
// @Failure 404 {object} domain.ErrorResponse "Service not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID: must be a valid UUID")
		return
	}

	if err := h.catalogService.DeleteService(r.Context(), id); err != nil {
		h.logger.Error("failed to delete service",
			zap.Error(err), zap.String("service_id", id.String()))
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderServices godoc
// @Summary Reorder services
// @Description Persists the admin display ordering of catalog services
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.ReorderServicesRequest true "Ordered service IDs"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse "Validation error"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/reorder [put]
func (h *CatalogHandler) ReorderServices(w http.ResponseWriter, r *http.Request) {
	var req domain.ReorderServicesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.catalogService.ReorderServices(r.Context(), &req); err != nil {
		h.logger.Error("failed to reorder services", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateAddon godoc
// @Summary Create addon
// @Description Adds an optional addon under a catalog service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param request body domain.CreateServiceAddonRequest true "Addon details"
// @Success 201 {object} domain.ServiceAddonDTO
// @Failure 404 {object} domain.ErrorResponse "Service not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /services/{id}/addons [post]
func (h *CatalogHandler) CreateAddon(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID: must be a valid UUID")
		return
	}

	var req domain.CreateServiceAddonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	addon, err := h.catalogService.CreateAddon(r.Context(), serviceID, &req)
	if err != nil {
		h.logger.Error("failed to create addon",
			zap.Error(err), zap.String("service_id", serviceID.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, addon)
}

// ListAddons godoc
// @Summary List addons
// @Description Returns the addons of a catalog service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Param active query bool false "Only active addons"
// @Success 200 {array} domain.ServiceAddonDTO
// @Failure 404 {object} domain.ErrorResponse "Service not found"
// @Router /services/{id}/addons [get]
func (h *CatalogHandler) ListAddons(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid service ID: must be a valid UUID")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"

	addons, err := h.catalogService.ListAddons(r.Context(), serviceID, activeOnly)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addons)
}

// UpdateAddon godoc
// @Summary Update addon
// @Description Updates addon fields
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Addon ID"
// @Param request body domain.UpdateServiceAddonRequest true "Fields to update"
// @Success 200 {object} domain.ServiceAddonDTO
// @Failure 404 {object} domain.ErrorResponse "Addon not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /addons/{id} [put]
func (h *CatalogHandler) UpdateAddon(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid addon ID: must be a valid UUID")
		return
	}

	var req domain.UpdateServiceAddonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	addon, err := h.catalogService.UpdateAddon(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update addon",
			zap.Error(err), zap.String("addon_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addon)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles login and staff administration
type AuthHandler struct {
	staffService *service.StaffService
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(staffService *service.StaffService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		staffService: staffService,
		logger:       logger,
	}
}

// Login godoc
// @Summary Staff login
// @Description Exchanges email and password for a JWT
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 401 {object} domain.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.staffService.Login(r.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed", zap.String("email", req.Email))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary Current staff
// @Description Returns the authenticated staff member
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.StaffDTO
// @Failure 401 {object} domain.ErrorResponse "Not authenticated"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	staffCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	staff, err := h.staffService.GetByID(r.Context(), staffCtx.StaffID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, staff)
}

// CreateStaff godoc
// @Summary Create staff member
// @Description Registers a staff account. Admin only.
// @Tags Staff
// @Accept json
// @Produce json
// @Param request body domain.CreateStaffRequest true "Staff details"
// @Success 201 {object} domain.StaffDTO
// @Failure 400 {object} domain.ErrorResponse "Validation error"
// @Failure 409 {object} domain.ErrorResponse "Email already registered"
// @Security BearerAuth
// @Router /staff [post]
func (h *AuthHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	staff, err := h.staffService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create staff member", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, staff)
}

// ListStaff godoc
// @Summary List staff
// @Description Returns staff members. Admin only.
// @Tags Staff
// @Produce json
// @Param active query bool false "Only active staff"
// @Success 200 {array} domain.StaffDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /staff [get]
func (h *AuthHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	staff, err := h.staffService.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list staff", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, staff)
}

// UpdateStaff godoc
// @Summary Update staff member
// @Description Updates staff profile, role or active flag. Admin only.
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param request body domain.UpdateStaffRequest true "Fields to update"
// @Success 200 {object} domain.StaffDTO
// @Failure 404 {object} domain.ErrorResponse "Staff not found"
// @Security BearerAuth
// @Router /staff/{id} [put]
func (h *AuthHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid staff ID: must be a valid UUID")
		return
	}

	var req domain.UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	staff, err := h.staffService.Update(r.Context(), id.String(), &req)
	if err != nil {
		h.logger.Error("failed to update staff member",
			zap.Error(err), zap.String("staff_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, staff)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/service"
	"go.uber.org/zap"
)

// JobHandler handles HTTP requests for job execution
type JobHandler struct {
	jobService *service.JobService
	logger     *zap.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(jobService *service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// List godoc
// @Summary List jobs
// @Description Returns a paginated list of jobs
// @Tags Jobs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(pool, assigned, in_progress, paused, completed, invoiced)
// @Success 200 {object} domain.PaginatedResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	status := r.URL.Query().Get("status")

	jobs, total, err := h.jobService.List(r.Context(), page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list jobs", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Items:    jobs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// ListMine godoc
// @Summary List my jobs
// @Description Returns the jobs assigned to the authenticated worker
// @Tags Jobs
// @Produce json
// @Success 200 {array} domain.JobDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/mine [get]
func (h *JobHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.ListMine(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// GetByID godoc
// @Summary Get job
// @Description Returns a specific job with its assignments and logs
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	job, err := h.jobService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Assign godoc
// @Summary Assign worker
// @Description Attaches a worker to the job. The first assignment moves it out of the pool.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.AssignJobRequest true "Worker"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/assign [post]
func (h *JobHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	var req domain.AssignJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.Assign(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to assign job",
			zap.Error(err), zap.String("job_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// StartTimer godoc
// @Summary Start timer
// @Description Opens a timer entry for the calling worker, closing any running entry first
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 403 {object} domain.ErrorResponse "Not assigned to this job"
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Router /jobs/{id}/timer/start [post]
func (h *JobHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	job, err := h.jobService.StartTimer(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// StopTimer godoc
// @Summary Stop timer
// @Description Closes the running timer entry and credits its hours
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 422 {object} domain.ErrorResponse "No timer running"
// @Security BearerAuth
// @Router /jobs/{id}/timer/stop [post]
func (h *JobHandler) StopTimer(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	job, err := h.jobService.StopTimer(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// PauseTimer godoc
// @Summary Pause job
// @Description Stops the running timer and parks the job in paused
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Security BearerAuth
// @Router /jobs/{id}/timer/pause [post]
func (h *JobHandler) PauseTimer(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	job, err := h.jobService.PauseTimer(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// AddManualTime godoc
// @Summary Add manual time
// @Description Appends a manual time entry without touching any timer
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.ManualTimeLogRequest true "Time entry"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Router /jobs/{id}/time [post]
func (h *JobHandler) AddManualTime(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	var req domain.ManualTimeLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.AddManualTime(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// AddMaterial godoc
// @Summary Add material
// @Description Appends a material purchase entry
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.CreateMaterialLogRequest true "Material entry"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Router /jobs/{id}/materials [post]
func (h *JobHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	var req domain.CreateMaterialLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.AddMaterial(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// AddExpense godoc
// @Summary Add expense
// @Description Appends an expense entry
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.CreateExpenseLogRequest true "Expense entry"
// @Success 200 {object} domain.JobDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Security BearerAuth
// @Router /jobs/{id}/expenses [post]
func (h *JobHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	var req domain.CreateExpenseLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.jobService.AddExpense(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// Complete godoc
// @Summary Complete job
// @Description Closes the job, recomputing totals from its logs. Requires no running timer.
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Failure 404 {object} domain.ErrorResponse "Job not found"
// @Failure 409 {object} domain.ErrorResponse "Invalid state"
// @Failure 422 {object} domain.ErrorResponse "Timer still running"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /jobs/{id}/complete [post]
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid job ID: must be a valid UUID")
		return
	}

	job, err := h.jobService.Complete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to complete job",
			zap.Error(err), zap.String("job_id", id.String()))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, job)
}

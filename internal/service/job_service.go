package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JobService handles job execution: assignment, time tracking, material and
// expense logging, and completion with aggregate recomputation.
type JobService struct {
	jobRepo      *repository.JobRepository
	staffRepo    *repository.StaffRepository
	activityRepo *repository.ActivityLogRepository
	logger       *zap.Logger
}

func NewJobService(
	jobRepo *repository.JobRepository,
	staffRepo *repository.StaffRepository,
	activityRepo *repository.ActivityLogRepository,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		jobRepo:      jobRepo,
		staffRepo:    staffRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *JobService) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.loadForRead(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

func (s *JobService) List(ctx context.Context, page, pageSize int, status string) ([]domain.JobDTO, int64, error) {
	var st domain.JobStatus
	if status != "" {
		st = domain.JobStatus(status)
		switch st {
		case domain.JobStatusPool, domain.JobStatusAssigned, domain.JobStatusInProgress,
			domain.JobStatusPaused, domain.JobStatusCompleted, domain.JobStatusInvoiced:
		default:
			return nil, 0, domain.NewValidationError("status", "unknown job status")
		}
	}

	jobs, total, err := s.jobRepo.List(ctx, page, pageSize, st)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
	}
	return dtos, total, nil
}

// ListMine returns the jobs assigned to the authenticated worker
func (s *JobService) ListMine(ctx context.Context) ([]domain.JobDTO, error) {
	staffCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	jobs, err := s.jobRepo.ListByWorker(ctx, staffCtx.StaffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
	}
	return dtos, nil
}

// Assign attaches a worker to the job. The first assignment moves the job out
// of the pool; further workers can be added while the job is active.
func (s *JobService) Assign(ctx context.Context, id uuid.UUID, req *domain.AssignJobRequest) (*domain.JobDTO, error) {
	job, err := s.loadForRead(ctx, id)
	if err != nil {
		return nil, err
	}

	switch job.Status {
	case domain.JobStatusPool, domain.JobStatusAssigned, domain.JobStatusInProgress, domain.JobStatusPaused:
	default:
		return nil, domain.NewInvalidStateError("job", string(job.Status), "assign")
	}

	if job.IsAssignedTo(req.WorkerID) {
		return nil, domain.NewValidationError("workerId", "worker is already assigned to this job")
	}

	workerName := req.WorkerName
	if workerName == "" {
		if staff, serr := s.staffRepo.GetByID(ctx, req.WorkerID); serr == nil {
			workerName = staff.DisplayName
		}
	}

	assignment := &domain.JobAssignment{
		JobID:      id,
		WorkerID:   req.WorkerID,
		WorkerName: workerName,
		AssignedAt: time.Now().UTC(),
	}
	if err := s.jobRepo.AddAssignment(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to assign worker: %w", err)
	}

	if job.Status == domain.JobStatusPool {
		affected, err := s.jobRepo.UpdateStatusConditional(ctx, id, domain.JobStatusPool, map[string]interface{}{
			"status":     domain.JobStatusAssigned,
			"updated_at": time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, domain.NewConcurrentModificationError("job", id)
		}
	}

	s.logActivity(ctx, id, "Uppdrag tilldelat",
		fmt.Sprintf("%s tilldelades uppdraget", workerName))

	return s.GetByID(ctx, id)
}

// StartTimer opens a timer entry for the calling worker. Any already running
// entry on the job is closed first so at most one entry stays open.
func (s *JobService) StartTimer(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, staffCtx, err := s.loadForLogging(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if open, oerr := s.jobRepo.GetOpenTimeLog(ctx, id); oerr == nil {
		s.closeTimeLog(ctx, open, now)
	} else if !errors.Is(oerr, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check open timer: %w", oerr)
	}

	entry := &domain.TimeLog{
		JobID:     id,
		WorkerID:  staffCtx.StaffID,
		StartedAt: &now,
	}
	if err := s.jobRepo.AddTimeLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}

	if job.Status == domain.JobStatusAssigned || job.Status == domain.JobStatusPaused {
		from := []domain.JobStatus{domain.JobStatusAssigned, domain.JobStatusPaused}
		if _, uerr := s.jobRepo.UpdateStatusConditionalAny(ctx, id, from, map[string]interface{}{
			"status":     domain.JobStatusInProgress,
			"updated_at": now,
		}); uerr != nil {
			return nil, uerr
		}
	}

	return s.GetByID(ctx, id)
}

// StopTimer closes the running timer entry and credits its hours
func (s *JobService) StopTimer(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	if _, _, err := s.loadForLogging(ctx, id); err != nil {
		return nil, err
	}

	open, err := s.jobRepo.GetOpenTimeLog(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewPreconditionError("no timer is running on this job")
		}
		return nil, fmt.Errorf("failed to get open timer: %w", err)
	}

	s.closeTimeLog(ctx, open, time.Now().UTC())
	return s.GetByID(ctx, id)
}

// PauseTimer stops the running timer and parks the job in paused
func (s *JobService) PauseTimer(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, _, err := s.loadForLogging(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if open, oerr := s.jobRepo.GetOpenTimeLog(ctx, id); oerr == nil {
		s.closeTimeLog(ctx, open, now)
	} else if !errors.Is(oerr, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check open timer: %w", oerr)
	}

	if job.Status == domain.JobStatusInProgress {
		if _, uerr := s.jobRepo.UpdateStatusConditional(ctx, id, domain.JobStatusInProgress, map[string]interface{}{
			"status":     domain.JobStatusPaused,
			"updated_at": now,
		}); uerr != nil {
			return nil, uerr
		}
	}

	return s.GetByID(ctx, id)
}

// AddManualTime appends a manual time entry without touching any timer
func (s *JobService) AddManualTime(ctx context.Context, id uuid.UUID, req *domain.ManualTimeLogRequest) (*domain.JobDTO, error) {
	_, staffCtx, err := s.loadForLogging(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &domain.TimeLog{
		JobID:    id,
		WorkerID: staffCtx.StaffID,
		Hours:    roundHours(req.Hours),
		Manual:   true,
		Note:     req.Note,
	}
	if err := s.jobRepo.AddTimeLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add time entry: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *JobService) AddMaterial(ctx context.Context, id uuid.UUID, req *domain.CreateMaterialLogRequest) (*domain.JobDTO, error) {
	_, staffCtx, err := s.loadForLogging(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &domain.MaterialLog{
		JobID:     id,
		WorkerID:  staffCtx.StaffID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Supplier:  req.Supplier,
	}
	if err := s.jobRepo.AddMaterialLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add material entry: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *JobService) AddExpense(ctx context.Context, id uuid.UUID, req *domain.CreateExpenseLogRequest) (*domain.JobDTO, error) {
	_, staffCtx, err := s.loadForLogging(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := &domain.ExpenseLog{
		JobID:    id,
		WorkerID: staffCtx.StaffID,
		Category: req.Category,
		Amount:   req.Amount,
		Note:     req.Note,
	}
	if err := s.jobRepo.AddExpenseLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add expense entry: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Complete closes the job. Requires no running timer; the aggregate totals are
// recomputed from the logs inside the guarded status write so a stale
// denormalized value can never survive completion.
func (s *JobService) Complete(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	if _, _, err := s.loadForLogging(ctx, id); err != nil {
		return nil, err
	}

	if _, oerr := s.jobRepo.GetOpenTimeLog(ctx, id); oerr == nil {
		return nil, domain.NewPreconditionError("a timer is still running on this job")
	} else if !errors.Is(oerr, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check open timer: %w", oerr)
	}

	hours, materialCost, expenses, err := s.recomputeAggregates(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	from := []domain.JobStatus{domain.JobStatusAssigned, domain.JobStatusInProgress, domain.JobStatusPaused}
	affected, err := s.jobRepo.UpdateStatusConditionalAny(ctx, id, from, map[string]interface{}{
		"status":              domain.JobStatusCompleted,
		"total_hours":         hours,
		"total_material_cost": materialCost,
		"total_expenses":      expenses,
		"completed_at":        now,
		"updated_at":          now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("job", id)
	}

	s.logActivity(ctx, id, "Uppdrag slutfört",
		fmt.Sprintf("%.2f timmar, material %d kr, utlägg %d kr", hours, materialCost, expenses))

	return s.GetByID(ctx, id)
}

func (s *JobService) loadForRead(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// loadForLogging loads the job and enforces the logging gate: the job must be
// in a status that allows log entries, and the caller must be an assigned
// worker or an admin.
func (s *JobService) loadForLogging(ctx context.Context, id uuid.UUID) (*domain.Job, *auth.StaffContext, error) {
	staffCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil, ErrUnauthorized
	}

	job, err := s.loadForRead(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !job.Status.AllowsLogging() {
		return nil, nil, domain.NewInvalidStateError("job", string(job.Status), "log")
	}

	if !staffCtx.IsAdmin() && !job.IsAssignedTo(staffCtx.StaffID) {
		return nil, nil, ErrPermissionDenied
	}

	return job, staffCtx, nil
}

func (s *JobService) closeTimeLog(ctx context.Context, entry *domain.TimeLog, now time.Time) {
	entry.EndedAt = &now
	entry.Hours = roundHours(now.Sub(*entry.StartedAt).Hours())
	if err := s.jobRepo.UpdateTimeLog(ctx, entry); err != nil {
		s.logger.Error("failed to close timer entry",
			zap.String("time_log_id", entry.ID.String()), zap.Error(err))
	}
}

// recomputeAggregates sums the append-only logs from scratch
func (s *JobService) recomputeAggregates(ctx context.Context, id uuid.UUID) (float64, int64, int64, error) {
	timeLogs, err := s.jobRepo.ListTimeLogs(ctx, id)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to list time logs: %w", err)
	}
	materialLogs, err := s.jobRepo.ListMaterialLogs(ctx, id)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to list material logs: %w", err)
	}
	expenseLogs, err := s.jobRepo.ListExpenseLogs(ctx, id)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to list expense logs: %w", err)
	}

	var hours float64
	for i := range timeLogs {
		if timeLogs[i].IsOpen() {
			continue
		}
		hours += timeLogs[i].Hours
	}
	hours = roundHours(hours)

	var materialCost int64
	for i := range materialLogs {
		materialCost += materialLogs[i].Total()
	}

	var expenses int64
	for i := range expenseLogs {
		expenses += expenseLogs[i].Amount
	}

	return hours, materialCost, expenses, nil
}

// roundHours rounds to two decimals, matching the column precision
func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func (s *JobService) logActivity(ctx context.Context, jobID uuid.UUID, title, body string) {
	entry := &domain.ActivityLog{
		TargetType: domain.TargetJob,
		TargetID:   jobID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC(),
	}
	if staffCtx, ok := auth.FromContext(ctx); ok {
		entry.ActorID = staffCtx.StaffID
		entry.ActorName = staffCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Preload("TimeLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("time_logs.created_at ASC")
		}).
		Preload("MaterialLogs").
		Preload("ExpenseLogs").
		Preload("Quote").
		Preload("Booking").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("quote_id = ?", quoteID).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *JobRepository) List(ctx context.Context, page, pageSize int, status domain.JobStatus) ([]domain.Job, int64, error) {
	var jobs []domain.Job
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Job{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Assignments").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&jobs).Error

	return jobs, total, err
}

// ListByWorker returns jobs the worker is assigned to
func (r *JobRepository) ListByWorker(ctx context.Context, workerID string) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Joins("JOIN job_assignments ON job_assignments.job_id = jobs.id").
		Where("job_assignments.worker_id = ?", workerID).
		Preload("Assignments").
		Order("jobs.created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

// UpdateStatusConditional performs a guarded status transition.
// Zero affected rows means a concurrent modification.
func (r *JobRepository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, from domain.JobStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update job status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateStatusConditionalAny guards the transition against a set of source statuses
func (r *JobRepository) UpdateStatusConditionalAny(ctx context.Context, id uuid.UUID, from []domain.JobStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update job status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *JobRepository) AddAssignment(ctx context.Context, assignment *domain.JobAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *JobRepository) AddTimeLog(ctx context.Context, entry *domain.TimeLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *JobRepository) AddMaterialLog(ctx context.Context, entry *domain.MaterialLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *JobRepository) AddExpenseLog(ctx context.Context, entry *domain.ExpenseLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// GetOpenTimeLog returns the job's running timer entry, if any.
// The job invariant allows at most one open entry.
func (r *JobRepository) GetOpenTimeLog(ctx context.Context, jobID uuid.UUID) (*domain.TimeLog, error) {
	var entry domain.TimeLog
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND started_at IS NOT NULL AND ended_at IS NULL", jobID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *JobRepository) UpdateTimeLog(ctx context.Context, entry *domain.TimeLog) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// ListTimeLogs returns all time entries for a job
func (r *JobRepository) ListTimeLogs(ctx context.Context, jobID uuid.UUID) ([]domain.TimeLog, error) {
	var entries []domain.TimeLog
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// ListMaterialLogs returns all material entries for a job
func (r *JobRepository) ListMaterialLogs(ctx context.Context, jobID uuid.UUID) ([]domain.MaterialLog, error) {
	var entries []domain.MaterialLog
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// ListExpenseLogs returns all expense entries for a job
func (r *JobRepository) ListExpenseLogs(ctx context.Context, jobID uuid.UUID) ([]domain.ExpenseLog, error) {
	var entries []domain.ExpenseLog
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

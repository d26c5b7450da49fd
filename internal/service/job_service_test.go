package service

import (
	"context"
	"testing"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hourlyJob creates a job directly in the pool with an hourly rate
func (f *fixture) hourlyJob(t *testing.T, rate int64) *domain.Job {
	t.Helper()

	job := &domain.Job{
		Status:      domain.JobStatusPool,
		PricingMode: domain.JobPricingHourly,
		HourlyRate:  rate,
	}
	require.NoError(t, f.jobRepo.Create(context.Background(), job))
	return job
}

func (f *fixture) assignWorker(t *testing.T, job *domain.Job, workerID string) {
	t.Helper()

	_, err := f.jobs.Assign(adminContext(), job.ID, &domain.AssignJobRequest{
		WorkerID:   workerID,
		WorkerName: "Worker " + workerID,
	})
	require.NoError(t, err)
}

func TestJobAssign_MovesOutOfPool(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")

	dto, err := f.jobs.GetByID(adminContext(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusAssigned, dto.Status)
	require.Len(t, dto.Assignments, 1)
	assert.Equal(t, "w-1", dto.Assignments[0].WorkerID)

	// A second worker can join without changing the status again
	f.assignWorker(t, job, "w-2")
	dto, err = f.jobs.GetByID(adminContext(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusAssigned, dto.Status)
	assert.Len(t, dto.Assignments, 2)
}

func TestJobAssign_RejectsDuplicateWorker(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")

	_, err := f.jobs.Assign(adminContext(), job.ID, &domain.AssignJobRequest{WorkerID: "w-1"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestJobLogging_RequiresAssignedWorkerOrAdmin(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")

	// A stranger can't log against the job
	_, err := f.jobs.AddManualTime(workerContext("w-9"), job.ID, &domain.ManualTimeLogRequest{Hours: 1})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// The assigned worker can
	_, err = f.jobs.AddManualTime(workerContext("w-1"), job.ID, &domain.ManualTimeLogRequest{Hours: 1})
	require.NoError(t, err)

	// Admins always can
	_, err = f.jobs.AddManualTime(adminContext(), job.ID, &domain.ManualTimeLogRequest{Hours: 0.5})
	require.NoError(t, err)
}

func TestJobTimer_SingleOpenEntry(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	dto, err := f.jobs.StartTimer(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, dto.Status)

	// Starting again closes the first entry before opening the next
	_, err = f.jobs.StartTimer(ctx, job.ID)
	require.NoError(t, err)

	logs, err := f.jobRepo.ListTimeLogs(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	open := 0
	for i := range logs {
		if logs[i].IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)

	_, err = f.jobs.StopTimer(ctx, job.ID)
	require.NoError(t, err)

	logs, err = f.jobRepo.ListTimeLogs(context.Background(), job.ID)
	require.NoError(t, err)
	for i := range logs {
		assert.False(t, logs[i].IsOpen())
	}
}

func TestJobTimer_StopWithoutRunningFails(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")

	_, err := f.jobs.StopTimer(workerContext("w-1"), job.ID)
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))
}

func TestJobPause_ParksTheJob(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	_, err := f.jobs.StartTimer(ctx, job.ID)
	require.NoError(t, err)

	paused, err := f.jobs.PauseTimer(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPaused, paused.Status)

	// Resuming moves back to in_progress
	resumed, err := f.jobs.StartTimer(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, resumed.Status)
}

func TestJobComplete_RecomputesAggregates(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	_, err := f.jobs.AddManualTime(ctx, job.ID, &domain.ManualTimeLogRequest{Hours: 4, Note: "Rivning"})
	require.NoError(t, err)
	_, err = f.jobs.AddManualTime(ctx, job.ID, &domain.ManualTimeLogRequest{Hours: 2.5})
	require.NoError(t, err)
	_, err = f.jobs.AddMaterial(ctx, job.ID, &domain.CreateMaterialLogRequest{
		Name: "Kakel", Quantity: 3, UnitPrice: 650,
	})
	require.NoError(t, err)
	_, err = f.jobs.AddExpense(ctx, job.ID, &domain.CreateExpenseLogRequest{
		Category: "Parkering", Amount: 120,
	})
	require.NoError(t, err)

	// Plant a stale denormalized value; completion must overwrite it
	require.NoError(t, f.db.Model(&domain.Job{}).
		Where("id = ?", job.ID).
		Update("total_hours", 99).Error)

	done, err := f.jobs.Complete(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, done.Status)
	assert.Equal(t, 6.5, done.TotalHours)
	assert.Equal(t, int64(1950), done.TotalMaterialCost)
	assert.Equal(t, int64(120), done.TotalExpenses)
	assert.NotNil(t, done.CompletedAt)
}

func TestJobComplete_BlockedByRunningTimer(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	_, err := f.jobs.StartTimer(ctx, job.ID)
	require.NoError(t, err)

	_, err = f.jobs.Complete(ctx, job.ID)
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))

	_, err = f.jobs.StopTimer(ctx, job.ID)
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, job.ID)
	require.NoError(t, err)
}

func TestJobLogging_BlockedAfterCompletion(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	_, err := f.jobs.AddManualTime(ctx, job.ID, &domain.ManualTimeLogRequest{Hours: 1})
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, job.ID)
	require.NoError(t, err)

	_, err = f.jobs.AddManualTime(ctx, job.ID, &domain.ManualTimeLogRequest{Hours: 1})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))

	_, err = f.jobs.AddMaterial(ctx, job.ID, &domain.CreateMaterialLogRequest{Name: "Kakel", Quantity: 1, UnitPrice: 100})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestJobListMine(t *testing.T) {
	f := newFixture(t)

	j1 := f.hourlyJob(t, 650)
	j2 := f.hourlyJob(t, 650)
	f.hourlyJob(t, 650)
	f.assignWorker(t, j1, "w-1")
	f.assignWorker(t, j2, "w-1")

	mine, err := f.jobs.ListMine(workerContext("w-1"))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := f.jobs.ListMine(workerContext("w-2"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJobTimerMeasuresElapsedTime(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	_, err := f.jobs.StartTimer(ctx, job.ID)
	require.NoError(t, err)

	// Backdate the open entry to simulate elapsed work
	open, err := f.jobRepo.GetOpenTimeLog(context.Background(), job.ID)
	require.NoError(t, err)
	started := time.Now().UTC().Add(-90 * time.Minute)
	require.NoError(t, f.db.Model(&domain.TimeLog{}).
		Where("id = ?", open.ID).
		Update("started_at", started).Error)

	_, err = f.jobs.StopTimer(ctx, job.ID)
	require.NoError(t, err)

	logs, err := f.jobRepo.ListTimeLogs(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.InDelta(t, 1.5, logs[0].Hours, 0.02)
}

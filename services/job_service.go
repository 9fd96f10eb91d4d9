package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// jobTransitions maps each status to the statuses reachable from it.
// Cancellation is handled separately: any non-terminal status may cancel.
var jobTransitions = map[string][]string{
	models.JobStatusPending:               {models.JobStatusEvaluationScheduled},
	models.JobStatusEvaluationScheduled:   {models.JobStatusEvaluationInProgress},
	models.JobStatusEvaluationInProgress:  {models.JobStatusEvaluationCompleted},
	models.JobStatusEvaluationCompleted:   {models.JobStatusAwaitingPreStart},
	models.JobStatusAwaitingPreStart:      {models.JobStatusInProgress},
	models.JobStatusInProgress:            {models.JobStatusMidCheckpointPending, models.JobStatusAwaitingFinalApproval},
	models.JobStatusMidCheckpointPending:  {models.JobStatusInProgress},
	models.JobStatusAwaitingFinalApproval: {models.JobStatusCompleted},
}

// advanceJob moves a job to the target status inside the caller's
// transaction. Re-applying a transition whose target equals the current
// status is a no-op success so client retries stay safe. An unreachable
// target fails with ErrInvalidTransition and mutates nothing. The extra map
// lets callers stamp timestamps and cost fields in the same update.
func advanceJob(tx *gorm.DB, job *models.Job, target string, extra map[string]interface{}) error {
	if job.Status == target {
		return nil
	}

	if target == models.JobStatusCancelled {
		if job.IsTerminal() {
			return &InvalidTransitionError{JobNumber: job.JobNumber, From: job.Status, To: target}
		}
	} else {
		allowed := false
		for _, next := range jobTransitions[job.Status] {
			if next == target {
				allowed = true
				break
			}
		}
		if !allowed {
			return &InvalidTransitionError{JobNumber: job.JobNumber, From: job.Status, To: target}
		}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           target,
		"last_activity_at": now,
	}
	for k, v := range extra {
		updates[k] = v
	}

	if err := tx.Model(job).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update job %s status: %w", job.JobNumber, err)
	}

	job.Status = target
	job.LastActivityAt = now
	return nil
}

// loadJobForUpdate fetches a job by number under the row lock.
func loadJobForUpdate(tx *gorm.DB, jobNumber string) (*models.Job, error) {
	var job models.Job
	err := lockForUpdate(tx).Where("job_number = ?", jobNumber).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s: %w", jobNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobNumber, err)
	}
	return &job, nil
}

// CreateJob creates a new pending job for a customer, allocating its job
// number from the database sequence and attaching an empty checklist.
func CreateJob(customerID uint, title, address string, dueDate *time.Time) (*models.Job, error) {
	db := config.GetDB()

	var job models.Job
	err := db.Transaction(func(tx *gorm.DB) error {
		number, err := NextNumber(tx, SequenceJob, "JOB-%06d")
		if err != nil {
			return err
		}

		job = models.Job{
			JobNumber:      number,
			Status:         models.JobStatusPending,
			Title:          title,
			Address:        address,
			CustomerID:     customerID,
			DueDate:        dueDate,
			LastActivityAt: time.Now(),
		}
		if err := tx.Create(&job).Error; err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}

		checklist := models.Checklist{JobID: job.ID}
		if err := tx.Create(&checklist).Error; err != nil {
			return fmt.Errorf("failed to create checklist for job %s: %w", number, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobByNumber loads a job with its customer and contractor.
func GetJobByNumber(jobNumber string) (*models.Job, error) {
	db := config.GetDB()

	var job models.Job
	err := db.Preload("Customer").Preload("Contractor").
		Where("job_number = ?", jobNumber).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s: %w", jobNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobNumber, err)
	}
	return &job, nil
}

// ScheduleEvaluation assigns a contractor and moves the job from pending to
// evaluation_scheduled. Retrying after success is a no-op.
func ScheduleEvaluation(jobNumber string, contractorID uint, startDate *time.Time) (*models.Job, error) {
	db := config.GetDB()

	var job *models.Job
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}

		var contractor models.User
		if err := tx.First(&contractor, contractorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("contractor %d: %w", contractorID, ErrNotFound)
			}
			return fmt.Errorf("failed to load contractor: %w", err)
		}
		if contractor.Role != models.RoleContractor {
			return fmt.Errorf("user %d is not a contractor: %w", contractorID, ErrValidation)
		}

		extra := map[string]interface{}{"contractor_id": contractorID}
		if startDate != nil {
			extra["start_date"] = *startDate
		}
		if err := advanceJob(tx, job, models.JobStatusEvaluationScheduled, extra); err != nil {
			return err
		}
		job.ContractorID = &contractorID
		job.StartDate = startDate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// StartEvaluation is the assigned contractor beginning the site visit.
func StartEvaluation(jobNumber string, contractorID uint) (*models.Job, error) {
	db := config.GetDB()

	var job *models.Job
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if job.ContractorID == nil || *job.ContractorID != contractorID {
			return fmt.Errorf("job %s: %w", jobNumber, ErrUnauthorized)
		}
		return advanceJob(tx, job, models.JobStatusEvaluationInProgress, nil)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// CancelJob moves a job to cancelled from any non-terminal status. The
// staleness sweeper goes through this same path; there is no side-channel
// status write.
func CancelJob(jobNumber, reason string) (*models.Job, error) {
	db := config.GetDB()

	var job *models.Job
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		job, err = loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if err := advanceJob(tx, job, models.JobStatusCancelled, map[string]interface{}{
			"cancel_reason": reason,
		}); err != nil {
			return err
		}
		job.CancelReason = &reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// CancelStaleJobs cancels every non-terminal job whose last activity is older
// than the cutoff. Each job is cancelled in its own transaction so one
// conflict does not hold up the rest of the sweep.
func CancelStaleJobs(staleAfter time.Duration) (int, error) {
	db := config.GetDB()
	cutoff := time.Now().Add(-staleAfter)

	var numbers []string
	err := db.Model(&models.Job{}).
		Where("status NOT IN ?", []string{models.JobStatusCompleted, models.JobStatusCancelled}).
		Where("last_activity_at < ?", cutoff).
		Pluck("job_number", &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find stale jobs: %w", err)
	}

	cancelled := 0
	for _, number := range numbers {
		if _, err := CancelJob(number, "auto-cancelled: no activity past staleness threshold"); err != nil {
			// Somebody may have advanced or cancelled the job since the scan.
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
				continue
			}
			log.Printf("staleness sweep: failed to cancel job %s: %v", number, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// ListJobs returns jobs visible to the given user: customers see their own,
// contractors see jobs assigned to them, admins see everything.
func ListJobs(user *models.User, page, limit int) ([]models.Job, int64, error) {
	db := config.GetDB()

	query := db.Model(&models.Job{})
	switch user.Role {
	case models.RoleCustomer:
		query = query.Where("customer_id = ?", user.ID)
	case models.RoleContractor:
		query = query.Where("contractor_id = ?", user.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	var jobs []models.Job
	err := query.Preload("Customer").Preload("Contractor").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

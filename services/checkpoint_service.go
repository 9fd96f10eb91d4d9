package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// Checkpoint decisions
const (
	DecisionApprove   = "approve"
	DecisionReject    = "reject"
	DecisionFlagIssue = "flag_issue"
)

// RequestMidCheckpoint creates the optional mid-project checkpoint and moves
// the job into mid_checkpoint_pending. Staff-triggered. Retrying while the
// checkpoint is still pending returns it unchanged.
func RequestMidCheckpoint(jobNumber string) (*models.Checkpoint, error) {
	db := config.GetDB()

	var checkpoint models.Checkpoint
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}

		err = tx.Where("job_id = ? AND type = ?", job.ID, models.CheckpointMidProject).
			First(&checkpoint).Error
		if err == nil {
			if checkpoint.Resolved() {
				return fmt.Errorf("job %s mid-project checkpoint: %w", jobNumber, ErrCheckpointAlreadyResolved)
			}
			// Pending already; the earlier request won.
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load mid-project checkpoint for job %s: %w", jobNumber, err)
		}

		if err := advanceJob(tx, job, models.JobStatusMidCheckpointPending, nil); err != nil {
			return err
		}

		checkpoint = models.Checkpoint{
			JobID:  job.ID,
			Type:   models.CheckpointMidProject,
			Status: models.CheckpointStatusPending,
		}
		if err := tx.Create(&checkpoint).Error; err != nil {
			return fmt.Errorf("failed to create mid-project checkpoint for job %s: %w", jobNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// ResolveCheckpoint applies a one-shot customer decision to a checkpoint.
// Approval atomically advances the job; rejection records the reason and
// leaves the job at its current stage; flag_issue is mid-project only.
// Resolution is terminal: a second decision fails with
// ErrCheckpointAlreadyResolved.
func ResolveCheckpoint(jobNumber, cpType, decision string, reason *string, rating *int, actor *models.User) (*models.Checkpoint, error) {
	db := config.GetDB()

	var checkpoint models.Checkpoint
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}

		// Checkpoint decisions belong to the job's customer alone.
		if actor.ID != job.CustomerID {
			return fmt.Errorf("job %s checkpoint %s: %w", jobNumber, cpType, ErrUnauthorized)
		}

		err = tx.Where("job_id = ? AND type = ?", job.ID, cpType).First(&checkpoint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job %s has no %s checkpoint: %w", jobNumber, cpType, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load %s checkpoint for job %s: %w", cpType, jobNumber, err)
		}

		if checkpoint.Resolved() {
			return fmt.Errorf("job %s checkpoint %s: %w", jobNumber, cpType, ErrCheckpointAlreadyResolved)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"resolved_by_id": actor.ID,
			"resolved_at":    now,
		}

		switch decision {
		case DecisionApprove:
			updates["status"] = models.CheckpointStatusApproved
			if cpType == models.CheckpointFinal {
				if rating != nil {
					if *rating < 1 || *rating > 5 {
						return fmt.Errorf("rating must be between 1 and 5: %w", ErrValidation)
					}
					updates["rating"] = *rating
					checkpoint.Rating = rating
				}
			}

		case DecisionReject:
			if reason == nil || *reason == "" {
				return fmt.Errorf("rejection requires a reason: %w", ErrValidation)
			}
			updates["status"] = models.CheckpointStatusRejected
			updates["rejection_reason"] = *reason
			checkpoint.RejectionReason = reason

		case DecisionFlagIssue:
			if cpType != models.CheckpointMidProject {
				return fmt.Errorf("only mid-project checkpoints accept flag_issue: %w", ErrValidation)
			}
			if reason == nil || *reason == "" {
				return fmt.Errorf("flagging an issue requires a reason: %w", ErrValidation)
			}
			updates["status"] = models.CheckpointStatusIssue
			updates["rejection_reason"] = *reason
			checkpoint.RejectionReason = reason

		default:
			return fmt.Errorf("unknown decision %q: %w", decision, ErrValidation)
		}

		if err := tx.Model(&checkpoint).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to resolve %s checkpoint for job %s: %w", cpType, jobNumber, err)
		}
		checkpoint.Status = updates["status"].(string)
		checkpoint.ResolvedByID = &actor.ID
		checkpoint.ResolvedAt = &now

		// Approval advances the job in the same unit of work; rejection and
		// issues keep the job where it is.
		if decision == DecisionApprove {
			switch cpType {
			case models.CheckpointPreStart:
				return advanceJob(tx, job, models.JobStatusInProgress, nil)
			case models.CheckpointMidProject:
				return advanceJob(tx, job, models.JobStatusInProgress, nil)
			case models.CheckpointFinal:
				if err := advanceJob(tx, job, models.JobStatusCompleted, map[string]interface{}{
					"completed_at": now,
				}); err != nil {
					return err
				}
				job.CompletedAt = &now
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// AttachCheckpointPhoto stores the S3 key of an evidence photo on a
// checkpoint. The photo may arrive before or after resolution.
func AttachCheckpointPhoto(jobNumber, cpType, s3Key string) (*models.Checkpoint, error) {
	db := config.GetDB()

	var checkpoint models.Checkpoint
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}

		err = tx.Where("job_id = ? AND type = ?", job.ID, cpType).First(&checkpoint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job %s has no %s checkpoint: %w", jobNumber, cpType, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load %s checkpoint for job %s: %w", cpType, jobNumber, err)
		}

		if err := tx.Model(&checkpoint).Update("photo_s3_key", s3Key).Error; err != nil {
			return fmt.Errorf("failed to attach photo to %s checkpoint for job %s: %w", cpType, jobNumber, err)
		}
		checkpoint.PhotoS3Key = &s3Key
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// ListCheckpoints returns a job's checkpoints in creation order.
func ListCheckpoints(jobNumber string) ([]models.Checkpoint, error) {
	db := config.GetDB()

	job, err := GetJobByNumber(jobNumber)
	if err != nil {
		return nil, err
	}

	var checkpoints []models.Checkpoint
	if err := db.Where("job_id = ?", job.ID).Order("id ASC").Find(&checkpoints).Error; err != nil {
		return nil, fmt.Errorf("failed to list checkpoints for job %s: %w", jobNumber, err)
	}
	return checkpoints, nil
}

// ValidCheckpointType reports whether the string names a checkpoint type.
func ValidCheckpointType(cpType string) bool {
	switch cpType {
	case models.CheckpointPreStart, models.CheckpointMidProject, models.CheckpointFinal:
		return true
	}
	return false
}

package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// ChecklistItemInput upserts one checklist item. Items with an ID update the
// existing row; items without one are appended. Nil fields keep prior values.
type ChecklistItemInput struct {
	ID       *uint  `json:"id"`
	Label    string `json:"label" binding:"required"`
	Required *bool  `json:"required"`
	Done     *bool  `json:"done"`
	Position *int   `json:"position"`
}

// UpdateChecklist upserts the job's checklist items. Only the assigned
// contractor (or an admin, checked by the controller) may touch the
// checklist, and only while the job is not terminal.
func UpdateChecklist(jobNumber string, items []ChecklistItemInput) (*models.Checklist, error) {
	db := config.GetDB()

	var checklist models.Checklist
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if job.IsTerminal() {
			return &InvalidTransitionError{JobNumber: job.JobNumber, From: job.Status, To: job.Status}
		}

		if err := tx.Where("job_id = ?", job.ID).First(&checklist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				checklist = models.Checklist{JobID: job.ID}
				if err := tx.Create(&checklist).Error; err != nil {
					return fmt.Errorf("failed to create checklist for job %s: %w", jobNumber, err)
				}
			} else {
				return fmt.Errorf("failed to load checklist for job %s: %w", jobNumber, err)
			}
		}

		for _, input := range items {
			if input.ID != nil {
				var item models.ChecklistItem
				err := tx.Where("id = ? AND checklist_id = ?", *input.ID, checklist.ID).First(&item).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("checklist item %d: %w", *input.ID, ErrNotFound)
				}
				if err != nil {
					return fmt.Errorf("failed to load checklist item %d: %w", *input.ID, err)
				}

				updates := map[string]interface{}{"label": input.Label}
				if input.Required != nil {
					updates["required"] = *input.Required
				}
				if input.Done != nil {
					updates["done"] = *input.Done
				}
				if input.Position != nil {
					updates["position"] = *input.Position
				}
				if err := tx.Model(&item).Updates(updates).Error; err != nil {
					return fmt.Errorf("failed to update checklist item %d: %w", item.ID, err)
				}
				continue
			}

			item := models.ChecklistItem{
				ChecklistID: checklist.ID,
				Label:       input.Label,
				Required:    true,
			}
			if input.Required != nil {
				item.Required = *input.Required
			}
			if input.Done != nil {
				item.Done = *input.Done
			}
			if input.Position != nil {
				item.Position = *input.Position
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create checklist item for job %s: %w", jobNumber, err)
			}
		}

		return tx.Preload("Items", itemOrder).First(&checklist, checklist.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &checklist, nil
}

// itemOrder keeps checklist items in their display order.
func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// GetChecklist loads a job's checklist with items.
func GetChecklist(jobNumber string) (*models.Checklist, error) {
	db := config.GetDB()

	job, err := GetJobByNumber(jobNumber)
	if err != nil {
		return nil, err
	}

	var checklist models.Checklist
	err = db.Preload("Items", itemOrder).Where("job_id = ?", job.ID).First(&checklist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s has no checklist: %w", jobNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checklist for job %s: %w", jobNumber, err)
	}
	return &checklist, nil
}

// MarkWorkComplete re-validates the checklist inside the job transaction and,
// when every required item is done, creates the final checkpoint and advances
// the job to awaiting_final_approval. The checklist is re-fetched under the
// job lock so a stale read can never sneak an incomplete job through.
// Retrying after success returns the existing final checkpoint.
func MarkWorkComplete(jobNumber string, contractorID uint, actualCostCents *int64) (*models.Checkpoint, error) {
	db := config.GetDB()

	var checkpoint models.Checkpoint
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if job.ContractorID == nil || *job.ContractorID != contractorID {
			return fmt.Errorf("job %s: %w", jobNumber, ErrUnauthorized)
		}

		if job.Status == models.JobStatusAwaitingFinalApproval {
			// Retry of a successful completion: return the final checkpoint.
			err := tx.Where("job_id = ? AND type = ?", job.ID, models.CheckpointFinal).
				First(&checkpoint).Error
			if err != nil {
				return fmt.Errorf("failed to load final checkpoint for job %s: %w", jobNumber, err)
			}
			return nil
		}

		var checklist models.Checklist
		err = tx.Preload("Items", itemOrder).Where("job_id = ?", job.ID).First(&checklist).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job %s has no checklist: %w", jobNumber, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load checklist for job %s: %w", jobNumber, err)
		}

		if checklist.CompletionPercent() < 100 {
			return &ChecklistIncompleteError{
				JobNumber:   jobNumber,
				Outstanding: checklist.OutstandingRequired(),
			}
		}

		extra := map[string]interface{}{}
		if actualCostCents != nil {
			extra["actual_cost_cents"] = *actualCostCents
		}
		if err := advanceJob(tx, job, models.JobStatusAwaitingFinalApproval, extra); err != nil {
			return err
		}
		if actualCostCents != nil {
			job.ActualCostCents = actualCostCents
		}

		checkpoint = models.Checkpoint{
			JobID:  job.ID,
			Type:   models.CheckpointFinal,
			Status: models.CheckpointStatusPending,
		}
		if err := tx.Create(&checkpoint).Error; err != nil {
			return fmt.Errorf("failed to create final checkpoint for job %s: %w", jobNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// EvaluationInput carries a partial update to an evaluation. Nil fields keep
// their prior values. The camelCase JSON names are the external contract.
type EvaluationInput struct {
	RoomCount        *int     `json:"roomCount" binding:"omitempty,gte=0"`
	SquareFeet       *int     `json:"squareFeet" binding:"omitempty,gte=0"`
	LaborHours       *float64 `json:"laborHours" binding:"omitempty,gte=0"`
	MeasurementNotes *string  `json:"measurement_notes"`
	ScopeOfWork      *string  `json:"scope_of_work"`
}

// lineItemOrder keeps quote line items in their fixed breakdown order.
func lineItemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// UpdateEvaluation upserts the job's evaluation with partial-update
// semantics. Fails with ErrEvaluationLocked once the evaluation is submitted.
// Only the assigned contractor may write evaluation data.
func UpdateEvaluation(jobNumber string, contractorID uint, input EvaluationInput) (*models.Evaluation, error) {
	db := config.GetDB()

	var eval models.Evaluation
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if job.ContractorID == nil || *job.ContractorID != contractorID {
			return fmt.Errorf("job %s: %w", jobNumber, ErrUnauthorized)
		}
		if job.IsTerminal() {
			return &InvalidTransitionError{JobNumber: job.JobNumber, From: job.Status, To: job.Status}
		}

		err = tx.Where("job_id = ?", job.ID).First(&eval).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			eval = models.Evaluation{JobID: job.ID}
			if err := tx.Create(&eval).Error; err != nil {
				return fmt.Errorf("failed to create evaluation for job %s: %w", jobNumber, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to load evaluation for job %s: %w", jobNumber, err)
		}

		if eval.Submitted {
			return fmt.Errorf("job %s: %w", jobNumber, ErrEvaluationLocked)
		}

		updates := map[string]interface{}{}
		if input.RoomCount != nil {
			updates["room_count"] = *input.RoomCount
			eval.RoomCount = *input.RoomCount
		}
		if input.SquareFeet != nil {
			updates["square_feet"] = *input.SquareFeet
			eval.SquareFeet = *input.SquareFeet
		}
		if input.LaborHours != nil {
			updates["labor_hours"] = *input.LaborHours
			eval.LaborHours = *input.LaborHours
		}
		if input.MeasurementNotes != nil {
			updates["measurement_notes"] = *input.MeasurementNotes
			eval.MeasurementNotes = *input.MeasurementNotes
		}
		if input.ScopeOfWork != nil {
			updates["scope_of_work"] = *input.ScopeOfWork
			eval.ScopeOfWork = *input.ScopeOfWork
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&eval).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update evaluation for job %s: %w", jobNumber, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &eval, nil
}

// PriceEvaluation is the pure pricing function: given the same evaluation and
// rate card it always produces the same totals and line items, so a quote can
// be re-priced for audit and reproduce itself exactly.
func PriceEvaluation(eval *models.Evaluation, cfg *config.Config) (totalCents, feeCreditCents int64, items []models.QuoteLineItem) {
	laborCents := int64(math.Round(eval.LaborHours * float64(cfg.LaborRateCents)))
	roomCents := int64(eval.RoomCount) * cfg.RoomRateCents
	areaCents := int64(eval.SquareFeet) * cfg.SqftRateCents

	items = []models.QuoteLineItem{
		{Label: fmt.Sprintf("Labor (%.1f hours)", eval.LaborHours), AmountCents: laborCents, Position: 0},
		{Label: fmt.Sprintf("Room preparation (%d rooms)", eval.RoomCount), AmountCents: roomCents, Position: 1},
		{Label: fmt.Sprintf("Area coverage (%d sq ft)", eval.SquareFeet), AmountCents: areaCents, Position: 2},
	}

	totalCents = laborCents + roomCents + areaCents
	feeCreditCents = totalCents * cfg.FeeCreditPct / 100
	return totalCents, feeCreditCents, items
}

// SubmitEvaluation locks the evaluation, generates the quote, creates the
// pre-start checkpoint and advances the job to awaiting_pre_start_approval,
// all in one transaction. Submitting an already-submitted evaluation returns
// the existing quote and creates nothing.
func SubmitEvaluation(jobNumber string, contractorID uint) (*models.Quote, error) {
	db := config.GetDB()
	cfg := config.GetConfig()

	var quote models.Quote
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if job.ContractorID == nil || *job.ContractorID != contractorID {
			return fmt.Errorf("job %s: %w", jobNumber, ErrUnauthorized)
		}

		var eval models.Evaluation
		err = tx.Where("job_id = ?", job.ID).First(&eval).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job %s has no evaluation data: %w", jobNumber, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load evaluation for job %s: %w", jobNumber, err)
		}

		if eval.Submitted {
			// Retry of a successful submission: hand back the existing quote.
			err := tx.Preload("LineItems", lineItemOrder).Where("job_id = ?", job.ID).First(&quote).Error
			if err != nil {
				return fmt.Errorf("failed to load quote for job %s: %w", jobNumber, err)
			}
			return nil
		}

		if job.Status != models.JobStatusEvaluationInProgress {
			return &InvalidTransitionError{JobNumber: job.JobNumber, From: job.Status, To: models.JobStatusEvaluationCompleted}
		}

		now := time.Now()
		if err := tx.Model(&eval).Updates(map[string]interface{}{
			"submitted":    true,
			"submitted_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to submit evaluation for job %s: %w", jobNumber, err)
		}

		totalCents, feeCreditCents, items := PriceEvaluation(&eval, cfg)

		quoteNumber, err := NextNumber(tx, SequenceQuote, "QT-%06d")
		if err != nil {
			return err
		}
		quote = models.Quote{
			QuoteNumber:    quoteNumber,
			JobID:          job.ID,
			EvaluationID:   eval.ID,
			GbbTotalCents:  totalCents,
			FeeCreditCents: feeCreditCents,
			LineItems:      items,
		}
		if err := tx.Create(&quote).Error; err != nil {
			return fmt.Errorf("failed to create quote for job %s: %w", jobNumber, err)
		}

		checkpoint := models.Checkpoint{
			JobID:  job.ID,
			Type:   models.CheckpointPreStart,
			Status: models.CheckpointStatusPending,
		}
		if err := tx.Create(&checkpoint).Error; err != nil {
			return fmt.Errorf("failed to create pre-start checkpoint for job %s: %w", jobNumber, err)
		}

		// Submission carries the job through evaluation_completed into the
		// customer's pre-start approval gate.
		if err := advanceJob(tx, job, models.JobStatusEvaluationCompleted, nil); err != nil {
			return err
		}
		return advanceJob(tx, job, models.JobStatusAwaitingPreStart, map[string]interface{}{
			"estimated_cost_cents": totalCents,
		})
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetEvaluation loads the evaluation for a job.
func GetEvaluation(jobNumber string) (*models.Evaluation, error) {
	db := config.GetDB()

	job, err := GetJobByNumber(jobNumber)
	if err != nil {
		return nil, err
	}

	var eval models.Evaluation
	err = db.Where("job_id = ?", job.ID).First(&eval).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s has no evaluation: %w", jobNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation for job %s: %w", jobNumber, err)
	}
	return &eval, nil
}

// GetQuote loads the quote for a job with its line items.
func GetQuote(jobNumber string) (*models.Quote, error) {
	db := config.GetDB()

	job, err := GetJobByNumber(jobNumber)
	if err != nil {
		return nil, err
	}

	var quote models.Quote
	err = db.Preload("LineItems", lineItemOrder).Where("job_id = ?", job.ID).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s has no quote: %w", jobNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quote for job %s: %w", jobNumber, err)
	}
	return &quote, nil
}

package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// OpenDispute raises a dispute against a job. Only the job's customer, its
// assigned contractor, or an admin may open one. Disputes have their own
// lifecycle and never move the job's status.
func OpenDispute(jobNumber string, actor *models.User, reason string) (*models.Dispute, error) {
	db := config.GetDB()

	if reason == "" {
		return nil, fmt.Errorf("dispute requires a reason: %w", ErrValidation)
	}

	var dispute models.Dispute
	err := db.Transaction(func(tx *gorm.DB) error {
		var job models.Job
		err := tx.Where("job_number = ?", jobNumber).First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("job %s: %w", jobNumber, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load job %s: %w", jobNumber, err)
		}

		if !isJobParticipant(&job, actor) {
			return fmt.Errorf("job %s dispute: %w", jobNumber, ErrUnauthorized)
		}

		dispute = models.Dispute{
			JobID:      job.ID,
			RaisedByID: actor.ID,
			Reason:     reason,
			Status:     models.DisputeStatusOpen,
		}
		if err := tx.Create(&dispute).Error; err != nil {
			return fmt.Errorf("failed to open dispute for job %s: %w", jobNumber, err)
		}

		return appendDisputeEvent(tx, &dispute, models.DisputeActionOpened, "", models.DisputeStatusOpen, actor.ID, reason)
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// EscalateDispute moves a dispute one hop up: open to the field manager, or
// any unresolved status straight to admin. Re-escalating to the current
// status is a no-op so retries stay safe.
func EscalateDispute(disputeID uint, actor *models.User, toAdmin bool, notes string) (*models.Dispute, error) {
	db := config.GetDB()

	target := models.DisputeStatusEscalatedToFM
	if toAdmin {
		target = models.DisputeStatusEscalatedToAdmin
	}

	var dispute models.Dispute
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&dispute, disputeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("dispute %d: %w", disputeID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load dispute %d: %w", disputeID, err)
		}

		if dispute.Status == target {
			return nil
		}
		if !dispute.Unresolved() {
			return fmt.Errorf("dispute %d is %s: %w", disputeID, dispute.Status, ErrInvalidTransition)
		}
		// The FM hop only follows open; admin is reachable from anywhere.
		if target == models.DisputeStatusEscalatedToFM && dispute.Status != models.DisputeStatusOpen {
			return fmt.Errorf("dispute %d is %s: %w", disputeID, dispute.Status, ErrInvalidTransition)
		}

		from := dispute.Status
		if err := tx.Model(&dispute).Update("status", target).Error; err != nil {
			return fmt.Errorf("failed to escalate dispute %d: %w", disputeID, err)
		}
		dispute.Status = target

		return appendDisputeEvent(tx, &dispute, models.DisputeActionEscalated, from, target, actor.ID, notes)
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// ResolveDispute closes out a dispute. Resolution notes are mandatory.
// Resolving an already-resolved dispute returns it unchanged.
func ResolveDispute(disputeID uint, actor *models.User, notes string, closeOut bool) (*models.Dispute, error) {
	db := config.GetDB()

	if notes == "" {
		return nil, fmt.Errorf("resolution requires notes: %w", ErrValidation)
	}

	target := models.DisputeStatusResolved
	action := models.DisputeActionResolved
	if closeOut {
		target = models.DisputeStatusClosed
		action = models.DisputeActionClosed
	}

	var dispute models.Dispute
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&dispute, disputeID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("dispute %d: %w", disputeID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load dispute %d: %w", disputeID, err)
		}

		if !dispute.Unresolved() {
			return nil
		}

		from := dispute.Status
		now := time.Now()
		if err := tx.Model(&dispute).Updates(map[string]interface{}{
			"status":           target,
			"resolution_notes": notes,
			"resolved_by_id":   actor.ID,
			"resolved_at":      now,
		}).Error; err != nil {
			return fmt.Errorf("failed to resolve dispute %d: %w", disputeID, err)
		}
		dispute.Status = target
		dispute.ResolutionNotes = &notes
		dispute.ResolvedByID = &actor.ID
		dispute.ResolvedAt = &now

		return appendDisputeEvent(tx, &dispute, action, from, target, actor.ID, notes)
	})
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// ListJobDisputes returns a job's disputes with their event history.
func ListJobDisputes(jobNumber string) ([]models.Dispute, error) {
	db := config.GetDB()

	job, err := GetJobByNumber(jobNumber)
	if err != nil {
		return nil, err
	}

	var disputes []models.Dispute
	err = db.Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("RaisedBy").
		Where("job_id = ?", job.ID).Order("id ASC").Find(&disputes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes for job %s: %w", jobNumber, err)
	}
	return disputes, nil
}

// appendDisputeEvent records one hop of a dispute's history.
func appendDisputeEvent(tx *gorm.DB, dispute *models.Dispute, action, from, to string, actorID uint, notes string) error {
	event := models.DisputeEvent{
		DisputeID: dispute.ID,
		Action:    action,
		FromState: from,
		ToState:   to,
		ActorID:   actorID,
		Notes:     notes,
	}
	if err := tx.Create(&event).Error; err != nil {
		return fmt.Errorf("failed to record dispute %d event: %w", dispute.ID, err)
	}
	return nil
}

// hasUnresolvedDispute reports whether the job has a dispute still open or
// escalated. Used by completion verification when the blocking policy is on.
func hasUnresolvedDispute(tx *gorm.DB, jobID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Dispute{}).
		Where("job_id = ?", jobID).
		Where("status NOT IN ?", []string{models.DisputeStatusResolved, models.DisputeStatusClosed}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check disputes for job %d: %w", jobID, err)
	}
	return count > 0, nil
}

// isJobParticipant reports whether the actor belongs to the job's
// conversation: its customer, its assigned contractor, or an admin.
func isJobParticipant(job *models.Job, actor *models.User) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if actor.ID == job.CustomerID {
		return true
	}
	return job.ContractorID != nil && *job.ContractorID == actor.ID
}

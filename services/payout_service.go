package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// Completion verification decisions
const (
	VerificationApprove = "approve"
	VerificationReject  = "reject"
)

// VerifyCompletion is the admin reviewing a completed job. Approval stamps
// the verification and creates the job's single payout eligibility in the
// same transaction; a retry returns the existing eligibility rather than
// creating a second one. Rejection records the notes and creates nothing.
func VerifyCompletion(jobNumber, decision string, notes *string, verifier *models.User) (*models.PayoutEligibility, error) {
	db := config.GetDB()
	cfg := config.GetConfig()

	var eligibility *models.PayoutEligibility
	err := db.Transaction(func(tx *gorm.DB) error {
		job, err := loadJobForUpdate(tx, jobNumber)
		if err != nil {
			return err
		}
		if job.Status != models.JobStatusCompleted {
			return &InvalidTransitionError{JobNumber: job.JobNumber, From: job.Status, To: models.JobStatusCompleted}
		}

		if cfg.DisputeBlocksCompletion {
			blocked, err := hasUnresolvedDispute(tx, job.ID)
			if err != nil {
				return err
			}
			if blocked {
				return fmt.Errorf("job %s has an unresolved dispute: %w", jobNumber, ErrInvalidTransition)
			}
		}

		switch decision {
		case VerificationReject:
			updates := map[string]interface{}{"last_activity_at": time.Now()}
			if notes != nil {
				updates["verification_notes"] = *notes
			}
			if err := tx.Model(job).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to record verification rejection for job %s: %w", jobNumber, err)
			}
			return nil

		case VerificationApprove:
			var existing models.PayoutEligibility
			err := tx.Where("job_id = ?", job.ID).First(&existing).Error
			if err == nil {
				// Idempotent under retries: the one eligibility stands.
				eligibility = &existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check eligibility for job %s: %w", jobNumber, err)
			}

			if job.ContractorID == nil {
				return fmt.Errorf("job %s has no contractor to pay: %w", jobNumber, ErrValidation)
			}
			amount, err := payoutAmount(job, cfg)
			if err != nil {
				return err
			}

			now := time.Now()
			updates := map[string]interface{}{"verified_at": now, "last_activity_at": now}
			if notes != nil {
				updates["verification_notes"] = *notes
			}
			if err := tx.Model(job).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to stamp verification for job %s: %w", jobNumber, err)
			}
			job.VerifiedAt = &now

			created := models.PayoutEligibility{
				JobID:        job.ID,
				ContractorID: *job.ContractorID,
				AmountCents:  amount,
				Status:       models.EligibilityStatusReady,
			}
			if err := tx.Create(&created).Error; err != nil {
				return fmt.Errorf("failed to create eligibility for job %s: %w", jobNumber, err)
			}
			eligibility = &created
			return nil

		default:
			return fmt.Errorf("unknown verification decision %q: %w", decision, ErrValidation)
		}
	})
	if err != nil {
		return nil, err
	}
	return eligibility, nil
}

// payoutAmount computes the amount owed for a verified job: actual cost when
// recorded, otherwise the estimate, less the platform fee. Fixed at
// eligibility creation and never recalculated.
func payoutAmount(job *models.Job, cfg *config.Config) (int64, error) {
	var base int64
	switch {
	case job.ActualCostCents != nil:
		base = *job.ActualCostCents
	case job.EstimatedCostCents != nil:
		base = *job.EstimatedCostCents
	default:
		return 0, fmt.Errorf("job %s has no cost to pay out: %w", job.JobNumber, ErrValidation)
	}
	fee := base * cfg.PlatformFeePct / 100
	return base - fee, nil
}

// ApprovePayout converts a READY eligibility into a wallet credit. The
// eligibility is marked PAID and linked to the ledger row inside the credit's
// transaction, so one eligibility can never produce two credits. Approving an
// already-paid eligibility returns its existing transaction.
func ApprovePayout(eligibilityID uint) (*models.WalletTransaction, error) {
	db := config.GetDB()

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var eligibility models.PayoutEligibility
		err := lockForUpdate(tx).First(&eligibility, eligibilityID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("eligibility %d: %w", eligibilityID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load eligibility %d: %w", eligibilityID, err)
		}

		switch eligibility.Status {
		case models.EligibilityStatusPaid:
			// Retry of a successful approval.
			if eligibility.WalletTransactionID == nil {
				return fmt.Errorf("eligibility %d paid without a ledger link: %w", eligibilityID, ErrDuplicateEligibility)
			}
			var existing models.WalletTransaction
			if err := tx.First(&existing, *eligibility.WalletTransactionID).Error; err != nil {
				return fmt.Errorf("failed to load transaction for eligibility %d: %w", eligibilityID, err)
			}
			txn = &existing
			return nil
		case models.EligibilityStatusReady:
			// proceed
		default:
			return fmt.Errorf("eligibility %d is %s, not ready: %w", eligibilityID, eligibility.Status, ErrInvalidTransition)
		}

		var job models.Job
		if err := tx.First(&job, eligibility.JobID).Error; err != nil {
			return fmt.Errorf("failed to load job for eligibility %d: %w", eligibilityID, err)
		}

		wallet, err := walletForUpdate(tx, eligibility.ContractorID)
		if err != nil {
			return err
		}

		reference := fmt.Sprintf("payout for job %s", job.JobNumber)
		txn, err = creditLocked(tx, wallet, eligibility.AmountCents, reference, &eligibility.ID, nil)
		if err != nil {
			return err
		}

		if err := tx.Model(&eligibility).Updates(map[string]interface{}{
			"status":                models.EligibilityStatusPaid,
			"wallet_transaction_id": txn.ID,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark eligibility %d paid: %w", eligibilityID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// HoldEligibility parks a READY eligibility on hold (and releases it again),
// for when an admin needs to pause a payout pending review.
func HoldEligibility(eligibilityID uint, hold bool) (*models.PayoutEligibility, error) {
	db := config.GetDB()

	var eligibility models.PayoutEligibility
	err := db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&eligibility, eligibilityID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("eligibility %d: %w", eligibilityID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load eligibility %d: %w", eligibilityID, err)
		}

		target := models.EligibilityStatusOnHold
		expected := models.EligibilityStatusReady
		if !hold {
			target, expected = expected, target
		}
		if eligibility.Status == target {
			return nil
		}
		if eligibility.Status != expected {
			return fmt.Errorf("eligibility %d is %s: %w", eligibilityID, eligibility.Status, ErrInvalidTransition)
		}
		if err := tx.Model(&eligibility).Update("status", target).Error; err != nil {
			return fmt.Errorf("failed to update eligibility %d: %w", eligibilityID, err)
		}
		eligibility.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &eligibility, nil
}

// RequestPayout is a contractor withdrawing from their wallet. The debit and
// the request record commit together; an over-balance request fails with
// ErrInsufficientBalance and leaves both the balance and the ledger untouched.
func RequestPayout(contractorID uint, amountCents int64) (*models.PayoutRequest, error) {
	db := config.GetDB()

	var request models.PayoutRequest
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := walletForUpdate(tx, contractorID)
		if err != nil {
			return err
		}

		request = models.PayoutRequest{
			Reference:    uuid.New().String(),
			ContractorID: contractorID,
			AmountCents:  amountCents,
			Status:       models.PayoutRequestStatusCompleted,
		}
		if err := tx.Create(&request).Error; err != nil {
			return fmt.Errorf("failed to create payout request: %w", err)
		}

		txn, err := debitLocked(tx, wallet, amountCents, "payout request "+request.Reference, &request.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(&request).Update("wallet_transaction_id", txn.ID).Error; err != nil {
			return fmt.Errorf("failed to link payout request %d: %w", request.ID, err)
		}
		request.WalletTransactionID = &txn.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetEligibilityByJob returns the job's payout eligibility if one exists.
func GetEligibilityByJob(jobNumber string) (*models.PayoutEligibility, error) {
	db := config.GetDB()

	job, err := GetJobByNumber(jobNumber)
	if err != nil {
		return nil, err
	}

	var eligibility models.PayoutEligibility
	err = db.Where("job_id = ?", job.ID).First(&eligibility).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s has no payout eligibility: %w", jobNumber, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load eligibility for job %s: %w", jobNumber, err)
	}
	return &eligibility, nil
}

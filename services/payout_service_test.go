package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

func completedJob(t *testing.T, customer, contractor *models.User, estimated int64, actual *int64) *models.Job {
	t.Helper()
	db := config.GetDB()
	job := createTestJob(t, db, customer, contractor, models.JobStatusCompleted)
	updates := map[string]interface{}{"estimated_cost_cents": estimated}
	if actual != nil {
		updates["actual_cost_cents"] = *actual
	}
	if err := db.Model(job).Updates(updates).Error; err != nil {
		t.Fatalf("Failed to set job costs: %v", err)
	}
	job.EstimatedCostCents = &estimated
	job.ActualCostCents = actual
	return job
}

func TestVerifyCompletion_ApproveCreatesEligibility(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	eligibility, err := VerifyCompletion(job.JobNumber, VerificationApprove, strPtr("looks great"), admin)
	assert.NoError(t, err)
	assert.Equal(t, models.EligibilityStatusReady, eligibility.Status)
	assert.Equal(t, contractor.ID, eligibility.ContractorID)
	// 10% platform fee off the estimate
	assert.Equal(t, int64(63000), eligibility.AmountCents)

	reloaded, _ := GetJobByNumber(job.JobNumber)
	assert.NotNil(t, reloaded.VerifiedAt)
	assert.Equal(t, "looks great", *reloaded.VerificationNotes)
}

func TestVerifyCompletion_ActualCostWins(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, int64Ptr(68000))

	eligibility, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)
	assert.Equal(t, int64(61200), eligibility.AmountCents, "payout comes from actual cost less 10%")
}

func TestVerifyCompletion_RetryReturnsSameEligibility(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	first, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)

	second, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.PayoutEligibility{}).Where("job_id = ?", job.ID).Count(&count)
	assert.Equal(t, int64(1), count, "a job gets at most one eligibility, ever")
}

func TestVerifyCompletion_RejectRecordsNotesOnly(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	eligibility, err := VerifyCompletion(job.JobNumber, VerificationReject, strPtr("punch list outstanding"), admin)
	assert.NoError(t, err)
	assert.Nil(t, eligibility)

	reloaded, _ := GetJobByNumber(job.JobNumber)
	assert.Equal(t, "punch list outstanding", *reloaded.VerificationNotes)
	assert.Nil(t, reloaded.VerifiedAt)

	var count int64
	db.Model(&models.PayoutEligibility{}).Where("job_id = ?", job.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestVerifyCompletion_JobMustBeCompleted(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := createTestJob(t, db, customer, contractor, models.JobStatusAwaitingFinalApproval)

	_, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestVerifyCompletion_DisputePolicyFlag(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	_, err := OpenDispute(job.JobNumber, customer, "final result disputed")
	assert.NoError(t, err)

	// Default policy: unresolved disputes do not block verification
	_, err = VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)

	// With the flag on, an unresolved dispute blocks a second job's verification
	cfg := config.TestDefaults()
	cfg.DisputeBlocksCompletion = true
	config.SetConfig(cfg)
	defer config.SetConfig(config.TestDefaults())

	blocked := completedJob(t, customer, contractor, 50000, nil)
	_, err = OpenDispute(blocked.JobNumber, customer, "do not pay yet")
	assert.NoError(t, err)

	_, err = VerifyCompletion(blocked.JobNumber, VerificationApprove, nil, admin)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	// Resolving the dispute unblocks it
	var dispute models.Dispute
	db.Where("job_id = ?", blocked.ID).First(&dispute)
	_, err = ResolveDispute(dispute.ID, admin, "settled", false)
	assert.NoError(t, err)

	_, err = VerifyCompletion(blocked.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)
}

func TestApprovePayout(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	eligibility, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)

	txn, err := ApprovePayout(eligibility.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.TransactionTypeCredit, txn.Type)
	assert.Equal(t, int64(63000), txn.AmountCents)
	assert.Equal(t, eligibility.ID, *txn.EligibilityID)

	wallet, err := GetWallet(contractor.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(63000), wallet.BalanceCents)

	// Eligibility marked paid and linked to the ledger row
	updated, err := GetEligibilityByJob(job.JobNumber)
	assert.NoError(t, err)
	assert.Equal(t, models.EligibilityStatusPaid, updated.Status)
	assert.Equal(t, txn.ID, *updated.WalletTransactionID)
}

func TestApprovePayout_CreditsExactlyOnce(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	eligibility, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)

	first, err := ApprovePayout(eligibility.ID)
	assert.NoError(t, err)

	// Retry hands back the same ledger row, no double credit
	second, err := ApprovePayout(eligibility.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	wallet, _ := GetWallet(contractor.ID)
	assert.Equal(t, int64(63000), wallet.BalanceCents)

	ledger, _ := GetLedger(contractor.ID)
	assert.Len(t, ledger, 1)
}

func TestHoldEligibility(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := createTestUser(t, db, models.RoleCustomer)
	contractor := createTestUser(t, db, models.RoleContractor)
	admin := createTestUser(t, db, models.RoleAdmin)
	job := completedJob(t, customer, contractor, 70000, nil)

	eligibility, err := VerifyCompletion(job.JobNumber, VerificationApprove, nil, admin)
	assert.NoError(t, err)

	held, err := HoldEligibility(eligibility.ID, true)
	assert.NoError(t, err)
	assert.Equal(t, models.EligibilityStatusOnHold, held.Status)

	// A held eligibility cannot be paid
	_, err = ApprovePayout(eligibility.ID)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	released, err := HoldEligibility(eligibility.ID, false)
	assert.NoError(t, err)
	assert.Equal(t, models.EligibilityStatusReady, released.Status)

	_, err = ApprovePayout(eligibility.ID)
	assert.NoError(t, err)
}

func TestRequestPayout(t *testing.T) {
	db := setupServiceTestDB(t)
	contractor := createTestUser(t, db, models.RoleContractor)

	_, err := CreditWallet(contractor.ID, 63000, "payout JOB-000001")
	assert.NoError(t, err)

	request, err := RequestPayout(contractor.ID, 40000)
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutRequestStatusCompleted, request.Status)
	assert.NotEmpty(t, request.Reference)
	assert.NotNil(t, request.WalletTransactionID)

	wallet, _ := GetWallet(contractor.ID)
	assert.Equal(t, int64(23000), wallet.BalanceCents)
	assert.Equal(t, int64(40000), wallet.TotalWithdrawnCents)
}

func TestRequestPayout_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	db := setupServiceTestDB(t)
	contractor := createTestUser(t, db, models.RoleContractor)

	_, err := CreditWallet(contractor.ID, 10000, "payout JOB-000001")
	assert.NoError(t, err)

	_, err = RequestPayout(contractor.ID, 99999)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientBalance))

	// The failed request rolls back entirely: no request row, no ledger entry
	var requestCount int64
	db.Model(&models.PayoutRequest{}).Where("contractor_id = ?", contractor.ID).Count(&requestCount)
	assert.Equal(t, int64(0), requestCount)

	ledger, _ := GetLedger(contractor.ID)
	assert.Len(t, ledger, 1)

	wallet, _ := GetWallet(contractor.ID)
	assert.Equal(t, int64(10000), wallet.BalanceCents)
}

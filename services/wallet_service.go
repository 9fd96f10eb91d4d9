package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

// walletForUpdate loads (or creates) the contractor's wallet under the row
// lock. All balance mutations for one wallet serialize on this lock;
// different wallets proceed independently.
func walletForUpdate(tx *gorm.DB, contractorID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := lockForUpdate(tx).Where("contractor_id = ?", contractorID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = models.Wallet{ContractorID: contractorID}
		if err := tx.Create(&wallet).Error; err != nil {
			return nil, fmt.Errorf("failed to create wallet for contractor %d: %w", contractorID, err)
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for contractor %d: %w", contractorID, err)
	}
	return &wallet, nil
}

// creditLocked applies a credit to a wallet already held under the row lock
// and appends the matching ledger row. balance_after on the ledger row equals
// the wallet balance at commit time.
func creditLocked(tx *gorm.DB, wallet *models.Wallet, amountCents int64, reference string, eligibilityID, payoutRequestID *uint) (*models.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", ErrValidation)
	}

	newBalance := wallet.BalanceCents + amountCents
	err := tx.Model(wallet).Updates(map[string]interface{}{
		"balance_cents":      newBalance,
		"total_earned_cents": wallet.TotalEarnedCents + amountCents,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet %d: %w", wallet.ID, err)
	}
	wallet.BalanceCents = newBalance
	wallet.TotalEarnedCents += amountCents

	txn := models.WalletTransaction{
		WalletID:          wallet.ID,
		Type:              models.TransactionTypeCredit,
		AmountCents:       amountCents,
		BalanceAfterCents: newBalance,
		Reference:         reference,
		EligibilityID:     eligibilityID,
		PayoutRequestID:   payoutRequestID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to record credit on wallet %d: %w", wallet.ID, err)
	}
	return &txn, nil
}

// debitLocked applies a debit to a wallet already held under the row lock.
// A debit larger than the balance fails with ErrInsufficientBalance and
// writes nothing.
func debitLocked(tx *gorm.DB, wallet *models.Wallet, amountCents int64, reference string, payoutRequestID *uint) (*models.WalletTransaction, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("debit amount must be positive: %w", ErrValidation)
	}
	if amountCents > wallet.BalanceCents {
		return nil, fmt.Errorf("debit of %d against balance %d: %w", amountCents, wallet.BalanceCents, ErrInsufficientBalance)
	}

	newBalance := wallet.BalanceCents - amountCents
	err := tx.Model(wallet).Updates(map[string]interface{}{
		"balance_cents":         newBalance,
		"total_withdrawn_cents": wallet.TotalWithdrawnCents + amountCents,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet %d: %w", wallet.ID, err)
	}
	wallet.BalanceCents = newBalance
	wallet.TotalWithdrawnCents += amountCents

	txn := models.WalletTransaction{
		WalletID:          wallet.ID,
		Type:              models.TransactionTypeDebit,
		AmountCents:       amountCents,
		BalanceAfterCents: newBalance,
		Reference:         reference,
		PayoutRequestID:   payoutRequestID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, fmt.Errorf("failed to record debit on wallet %d: %w", wallet.ID, err)
	}
	return &txn, nil
}

// CreditWallet credits a contractor's wallet in its own transaction.
func CreditWallet(contractorID uint, amountCents int64, reference string) (*models.WalletTransaction, error) {
	db := config.GetDB()

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := walletForUpdate(tx, contractorID)
		if err != nil {
			return err
		}
		txn, err = creditLocked(tx, wallet, amountCents, reference, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DebitWallet debits a contractor's wallet in its own transaction.
func DebitWallet(contractorID uint, amountCents int64, reference string) (*models.WalletTransaction, error) {
	db := config.GetDB()

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := walletForUpdate(tx, contractorID)
		if err != nil {
			return err
		}
		txn, err = debitLocked(tx, wallet, amountCents, reference, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetWallet returns the contractor's wallet, creating it on first read.
func GetWallet(contractorID uint) (*models.Wallet, error) {
	db := config.GetDB()

	var wallet models.Wallet
	err := db.Where("contractor_id = ?", contractorID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Transaction(func(tx *gorm.DB) error {
			w, err := walletForUpdate(tx, contractorID)
			if err != nil {
				return err
			}
			wallet = *w
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &wallet, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet for contractor %d: %w", contractorID, err)
	}
	return &wallet, nil
}

// GetLedger returns the wallet's transactions in creation order, for audit
// and export. The stream is append-only: replaying the signed amounts
// reproduces the balance.
func GetLedger(contractorID uint) ([]models.WalletTransaction, error) {
	db := config.GetDB()

	wallet, err := GetWallet(contractorID)
	if err != nil {
		return nil, err
	}

	var txns []models.WalletTransaction
	err = db.Where("wallet_id = ?", wallet.ID).Order("id ASC").Find(&txns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for wallet %d: %w", wallet.ID, err)
	}
	return txns, nil
}

package models

import (
	"time"
)

// Wallet transaction types
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// Wallet holds a contractor's balance. The balance is backed by the
// append-only wallet_transactions ledger: summing the signed amounts of all
// transactions in creation order reproduces the balance exactly.
type Wallet struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ContractorID        uint      `gorm:"uniqueIndex;not null" json:"contractor_id"`
	Contractor          User      `gorm:"foreignKey:ContractorID" json:"-"`
	BalanceCents        int64     `gorm:"not null;default:0" json:"balance_cents"`
	TotalEarnedCents    int64     `gorm:"not null;default:0" json:"total_earned_cents"`
	TotalWithdrawnCents int64     `gorm:"not null;default:0" json:"total_withdrawn_cents"`
	PendingCents        int64     `gorm:"not null;default:0" json:"pending_cents"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Wallet model
func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction is one ledger entry. Rows are never updated or deleted
// after creation.
type WalletTransaction struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	WalletID          uint   `gorm:"not null;index" json:"wallet_id"`
	Wallet            Wallet `gorm:"foreignKey:WalletID" json:"-"`
	Type              string `gorm:"not null" json:"type"` // "credit" or "debit"
	AmountCents       int64  `gorm:"not null" json:"amount_cents"`
	BalanceAfterCents int64  `gorm:"not null" json:"balance_after_cents"`
	Reference         string `gorm:"not null" json:"reference"`
	EligibilityID     *uint  `gorm:"index" json:"eligibility_id,omitempty"`
	PayoutRequestID   *uint  `gorm:"index" json:"payout_request_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the WalletTransaction model
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// SignedAmount returns the amount signed by transaction type.
func (t *WalletTransaction) SignedAmount() int64 {
	if t.Type == TransactionTypeDebit {
		return -t.AmountCents
	}
	return t.AmountCents
}

package models

import (
	"time"
)

// Payout eligibility statuses
const (
	EligibilityStatusReady      = "ready"
	EligibilityStatusProcessing = "processing"
	EligibilityStatusPaid       = "paid"
	EligibilityStatusOnHold     = "on_hold"
)

// Payout request statuses
const (
	PayoutRequestStatusCompleted = "completed"
	PayoutRequestStatusRejected  = "rejected"
)

// PayoutEligibility records a fixed-amount obligation owed to a contractor for
// one verified job. At most one per job, ever; the amount is fixed at creation
// and never recalculated.
type PayoutEligibility struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	JobID               uint   `gorm:"uniqueIndex;not null" json:"job_id"`
	Job                 Job    `gorm:"foreignKey:JobID" json:"-"`
	ContractorID        uint   `gorm:"not null;index" json:"contractor_id"`
	Contractor          User   `gorm:"foreignKey:ContractorID" json:"-"`
	AmountCents         int64  `gorm:"not null" json:"amount_cents"`
	Status              string `gorm:"not null;default:'ready'" json:"status"`
	WalletTransactionID *uint  `gorm:"index" json:"wallet_transaction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PayoutEligibility model
func (PayoutEligibility) TableName() string {
	return "payout_eligibilities"
}

// PayoutRequest records a contractor-initiated withdrawal from their wallet
type PayoutRequest struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Reference           string `gorm:"uniqueIndex;not null" json:"reference"` // uuid handed back to the caller
	ContractorID        uint   `gorm:"not null;index" json:"contractor_id"`
	Contractor          User   `gorm:"foreignKey:ContractorID" json:"-"`
	AmountCents         int64  `gorm:"not null" json:"amount_cents"`
	Status              string `gorm:"not null" json:"status"`
	WalletTransactionID *uint  `gorm:"index" json:"wallet_transaction_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PayoutRequest model
func (PayoutRequest) TableName() string {
	return "payout_requests"
}

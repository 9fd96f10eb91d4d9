package models

import (
	"time"
)

// Quote is the priced offer generated from a submitted evaluation.
// Immutable after creation; superseding requires a new quote, never a mutation.
type Quote struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	QuoteNumber    string          `gorm:"uniqueIndex;not null" json:"quote_number"`
	JobID          uint            `gorm:"uniqueIndex;not null" json:"job_id"`
	Job            Job             `gorm:"foreignKey:JobID" json:"-"`
	EvaluationID   uint            `gorm:"not null;index" json:"evaluation_id"`
	GbbTotalCents  int64           `gorm:"not null" json:"gbbTotal"` // external field name kept for existing consumers
	FeeCreditCents int64           `gorm:"not null" json:"fee_credit_cents"`
	LineItems      []QuoteLineItem `gorm:"foreignKey:QuoteID" json:"line_items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}

// QuoteLineItem is a single priced line in a quote's breakdown
type QuoteLineItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuoteID     uint      `gorm:"not null;index" json:"quote_id"`
	Label       string    `gorm:"not null" json:"label"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Position    int       `gorm:"not null" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the QuoteLineItem model
func (QuoteLineItem) TableName() string {
	return "quote_line_items"
}

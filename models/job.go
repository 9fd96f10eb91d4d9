package models

import (
	"time"
)

// Job statuses, ordered. Transitions only move forward through this graph;
// cancelled is reachable from any non-terminal status.
const (
	JobStatusPending               = "pending"
	JobStatusEvaluationScheduled   = "evaluation_scheduled"
	JobStatusEvaluationInProgress  = "evaluation_in_progress"
	JobStatusEvaluationCompleted   = "evaluation_completed"
	JobStatusAwaitingPreStart      = "awaiting_pre_start_approval"
	JobStatusInProgress            = "in_progress"
	JobStatusMidCheckpointPending  = "mid_checkpoint_pending"
	JobStatusAwaitingFinalApproval = "awaiting_final_approval"
	JobStatusCompleted             = "completed"
	JobStatusCancelled             = "cancelled"
)

// Job represents a home-services job from intake through completion and payout
type Job struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	JobNumber    string `gorm:"uniqueIndex;not null" json:"job_number"`
	Status       string `gorm:"not null;default:'pending';index" json:"status"`
	Title        string `gorm:"not null" json:"title"`
	Address      string `json:"address"`
	CustomerID   uint   `gorm:"not null;index" json:"customer_id"`
	Customer     User   `gorm:"foreignKey:CustomerID" json:"customer"`
	ContractorID *uint  `gorm:"index" json:"contractor_id"` // nullable, set when evaluation is scheduled
	Contractor   *User  `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`

	EstimatedCostCents *int64 `json:"estimated_cost_cents"` // set from the quote total at evaluation submission
	ActualCostCents    *int64 `json:"actual_cost_cents"`    // nullable, set when work wraps up

	StartDate         *time.Time `json:"start_date"`
	DueDate           *time.Time `json:"due_date"`
	CompletedAt       *time.Time `json:"completed_at"`
	VerifiedAt        *time.Time `json:"verified_at"` // stamped by completion verification
	VerificationNotes *string    `json:"verification_notes,omitempty"`
	CancelReason      *string    `json:"cancel_reason,omitempty"`

	// LastActivityAt drives the staleness sweep. Bumped on every transition.
	LastActivityAt time.Time `gorm:"not null;index" json:"last_activity_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}

// IsTerminal reports whether the job can no longer move forward.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusCancelled
}

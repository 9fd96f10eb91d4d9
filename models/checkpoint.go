package models

import (
	"time"
)

// Checkpoint types
const (
	CheckpointPreStart   = "pre_start"
	CheckpointMidProject = "mid_project"
	CheckpointFinal      = "final"
)

// Checkpoint statuses. A checkpoint resolves exactly once: pending moves to
// approved, rejected or issue (mid-project only) and then never changes again.
const (
	CheckpointStatusPending  = "pending"
	CheckpointStatusApproved = "approved"
	CheckpointStatusRejected = "rejected"
	CheckpointStatusIssue    = "issue"
)

// Checkpoint is a customer-approval gate at a specific job phase.
// One checkpoint per type per job.
type Checkpoint struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	JobID           uint       `gorm:"not null;index:idx_checkpoint_job_type,unique" json:"job_id"`
	Job             Job        `gorm:"foreignKey:JobID" json:"-"`
	Type            string     `gorm:"not null;index:idx_checkpoint_job_type,unique" json:"type"`
	Status          string     `gorm:"not null;default:'pending'" json:"status"`
	ApprovalNote    *string    `json:"approval_note,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	Rating          *int       `json:"rating,omitempty"` // 1..5, final checkpoint only
	PhotoS3Key      *string    `json:"photo_s3_key,omitempty"`
	PhotoURL        *string    `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL
	ResolvedByID    *uint      `json:"resolved_by_id,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Checkpoint model
func (Checkpoint) TableName() string {
	return "checkpoints"
}

// Resolved reports whether the checkpoint has left the pending state.
func (cp *Checkpoint) Resolved() bool {
	return cp.Status != CheckpointStatusPending
}

package models

import (
	"time"
)

// Dispute statuses. The path is linear, open through resolution, with the
// field-manager hop skippable.
const (
	DisputeStatusOpen             = "open"
	DisputeStatusEscalatedToFM    = "escalated_to_fm"
	DisputeStatusEscalatedToAdmin = "escalated_to_admin"
	DisputeStatusResolved         = "resolved"
	DisputeStatusClosed           = "closed"
)

// Dispute actions recorded as events
const (
	DisputeActionOpened    = "opened"
	DisputeActionEscalated = "escalated"
	DisputeActionResolved  = "resolved"
	DisputeActionClosed    = "closed"
)

// Dispute is raised against an in-flight or completed job. Its lifecycle is
// independent of the job's; it references the job but does not block job
// transitions unless the completion-verification policy flag says so.
type Dispute struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	JobID           uint           `gorm:"not null;index" json:"job_id"`
	Job             Job            `gorm:"foreignKey:JobID" json:"-"`
	RaisedByID      uint           `gorm:"not null" json:"raised_by_id"`
	RaisedBy        User           `gorm:"foreignKey:RaisedByID" json:"raised_by"`
	Reason          string         `gorm:"type:text;not null" json:"reason"`
	Status          string         `gorm:"not null;default:'open';index" json:"status"`
	ResolutionNotes *string        `gorm:"type:text" json:"resolution_notes,omitempty"`
	ResolvedByID    *uint          `json:"resolved_by_id,omitempty"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
	Events          []DisputeEvent `gorm:"foreignKey:DisputeID" json:"events,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Dispute model
func (Dispute) TableName() string {
	return "disputes"
}

// Unresolved reports whether the dispute still needs attention.
func (d *Dispute) Unresolved() bool {
	return d.Status != DisputeStatusResolved && d.Status != DisputeStatusClosed
}

// DisputeEvent is one hop in a dispute's history: who did what, when.
// Append-only.
type DisputeEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DisputeID uint      `gorm:"not null;index" json:"dispute_id"`
	Action    string    `gorm:"not null" json:"action"`
	FromState string    `gorm:"not null" json:"from_state"`
	ToState   string    `gorm:"not null" json:"to_state"`
	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Actor     User      `gorm:"foreignKey:ActorID" json:"-"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the DisputeEvent model
func (DisputeEvent) TableName() string {
	return "dispute_events"
}

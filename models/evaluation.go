package models

import (
	"time"
)

// Evaluation captures the contractor's site-visit data for a job.
// Once submitted the record is immutable; submission triggers quote generation.
// The camelCase JSON names (roomCount, squareFeet, laborHours) are an
// external-facing contract with existing consumers.
type Evaluation struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	JobID            uint    `gorm:"uniqueIndex;not null" json:"job_id"`
	Job              Job     `gorm:"foreignKey:JobID" json:"-"`
	RoomCount        int     `json:"roomCount"`
	SquareFeet       int     `json:"squareFeet"`
	LaborHours       float64 `json:"laborHours"`
	MeasurementNotes string  `gorm:"type:text" json:"measurement_notes"`
	ScopeOfWork      string  `gorm:"type:text" json:"scope_of_work"`

	Submitted   bool       `gorm:"not null;default:false" json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Evaluation model
func (Evaluation) TableName() string {
	return "evaluations"
}

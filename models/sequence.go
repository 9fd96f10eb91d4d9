package models

import (
	"time"
)

// Sequence backs job/quote numbering with a database row per counter, so
// number allocation stays correct under concurrent creation across processes.
type Sequence struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Sequence model
func (Sequence) TableName() string {
	return "sequences"
}

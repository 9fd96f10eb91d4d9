package models

import (
	"time"
)

// Checklist tracks the required work items for a job. All required items must
// be done before the work-complete transition is allowed.
type Checklist struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	JobID     uint            `gorm:"uniqueIndex;not null" json:"job_id"`
	Job       Job             `gorm:"foreignKey:JobID" json:"-"`
	Items     []ChecklistItem `gorm:"foreignKey:ChecklistID" json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Checklist model
func (Checklist) TableName() string {
	return "checklists"
}

// CompletionPercent returns done-required over total-required, in whole
// percent. A checklist with no required items counts as complete.
func (c *Checklist) CompletionPercent() int {
	total := 0
	done := 0
	for _, item := range c.Items {
		if !item.Required {
			continue
		}
		total++
		if item.Done {
			done++
		}
	}
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

// OutstandingRequired returns the labels of required items not yet done.
func (c *Checklist) OutstandingRequired() []string {
	var outstanding []string
	for _, item := range c.Items {
		if item.Required && !item.Done {
			outstanding = append(outstanding, item.Label)
		}
	}
	return outstanding
}

// ChecklistItem is a single work item on a job's checklist
type ChecklistItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChecklistID uint      `gorm:"not null;index" json:"checklist_id"`
	Label       string    `gorm:"not null" json:"label"`
	Required    bool      `gorm:"not null;default:true" json:"required"`
	Done        bool      `gorm:"not null;default:false" json:"done"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the ChecklistItem model
func (ChecklistItem) TableName() string {
	return "checklist_items"
}

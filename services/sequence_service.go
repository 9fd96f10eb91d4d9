package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fairhaven-home/fairhaven-api/models"
)

// Sequence names
const (
	SequenceJob   = "job_number"
	SequenceQuote = "quote_number"
)

// NextNumber allocates the next value of a named database-backed sequence and
// formats it (e.g. "JOB-%06d"). It must be called inside the caller's
// transaction so the allocation commits or rolls back with the record that
// consumes it.
func NextNumber(tx *gorm.DB, name, format string) (string, error) {
	var seq models.Sequence
	err := lockForUpdate(tx).Where("name = ?", name).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// First allocation for this name. OnConflict absorbs the race where
		// two transactions create the row at once; the locked re-read below
		// serializes them.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Sequence{Name: name, Value: 0}).Error; err != nil {
			return "", fmt.Errorf("failed to create sequence %s: %w", name, err)
		}
		if err := lockForUpdate(tx).Where("name = ?", name).First(&seq).Error; err != nil {
			return "", fmt.Errorf("failed to read sequence %s: %w", name, err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read sequence %s: %w", name, err)
	}

	seq.Value++
	if err := tx.Model(&models.Sequence{}).Where("name = ?", name).
		Update("value", seq.Value).Error; err != nil {
		return "", fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}

	return fmt.Sprintf(format, seq.Value), nil
}

package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextNumber(t *testing.T) {
	db := setupServiceTestDB(t)

	first, err := NextNumber(db, SequenceJob, "JOB-%06d")
	assert.NoError(t, err)
	assert.Equal(t, "JOB-000001", first)

	second, err := NextNumber(db, SequenceJob, "JOB-%06d")
	assert.NoError(t, err)
	assert.Equal(t, "JOB-000002", second)
}

func TestNextNumber_SequencesAreIndependent(t *testing.T) {
	db := setupServiceTestDB(t)

	jobNumber, err := NextNumber(db, SequenceJob, "JOB-%06d")
	assert.NoError(t, err)
	quoteNumber, err := NextNumber(db, SequenceQuote, "QT-%06d")
	assert.NoError(t, err)

	assert.Equal(t, "JOB-000001", jobNumber)
	assert.Equal(t, "QT-000001", quoteNumber)
}

func TestNextNumber_NeverRepeats(t *testing.T) {
	db := setupServiceTestDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := NextNumber(db, SequenceQuote, "QT-%06d")
		assert.NoError(t, err)
		assert.False(t, seen[number], fmt.Sprintf("number %s issued twice", number))
		seen[number] = true
	}
}

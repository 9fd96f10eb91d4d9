package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

func setupSweeperTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	config.SetDB(db)
	config.SetConfig(config.TestDefaults())
	return db
}

func TestNewSweeper(t *testing.T) {
	cfg := config.TestDefaults()
	cfg.SweepIntervalMinutes = 15
	cfg.JobStaleAfterHours = 48

	s := NewSweeper(cfg)
	assert.Equal(t, 15*time.Minute, s.interval)
	assert.Equal(t, 48*time.Hour, s.staleAfter)
}

func TestSweeperCancelsStaleJobs(t *testing.T) {
	db := setupSweeperTestDB(t)

	customer := models.User{Auth0ID: "auth0|sweepcustomer", Name: "Sweep", Email: "sweep@test.com", Role: "customer"}
	assert.NoError(t, db.Create(&customer).Error)

	stale := models.Job{
		JobNumber:      "JOB-W00001",
		CustomerID:     customer.ID,
		Title:          "Forgotten job",
		Status:         models.JobStatusPending,
		LastActivityAt: time.Now().Add(-40 * 24 * time.Hour),
	}
	assert.NoError(t, db.Create(&stale).Error)

	fresh := models.Job{
		JobNumber:      "JOB-W00002",
		CustomerID:     customer.ID,
		Title:          "Active job",
		Status:         models.JobStatusPending,
		LastActivityAt: time.Now(),
	}
	assert.NoError(t, db.Create(&fresh).Error)

	s := NewSweeper(config.TestDefaults())
	s.sweep()

	var refreshed models.Job
	assert.NoError(t, db.First(&refreshed, stale.ID).Error)
	assert.Equal(t, models.JobStatusCancelled, refreshed.Status)

	var refreshedFresh models.Job
	assert.NoError(t, db.First(&refreshedFresh, fresh.ID).Error)
	assert.Equal(t, models.JobStatusPending, refreshedFresh.Status)
}

func TestSweeperStartStop(t *testing.T) {
	setupSweeperTestDB(t)

	cfg := config.TestDefaults()
	cfg.SweepIntervalMinutes = 1

	s := NewSweeper(cfg)
	s.Start()
	s.Stop() // must return promptly without a tick having fired
}

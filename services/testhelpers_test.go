package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/models"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
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

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	testUserSeq++
	user := models.User{
		Auth0ID: fmt.Sprintf("auth0|%s%d", role, testUserSeq),
		Name:    fmt.Sprintf("Test %s %d", role, testUserSeq),
		Email:   fmt.Sprintf("%s%d@example.com", role, testUserSeq),
		Role:    role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

var testJobSeq int

// createTestJob inserts a job directly in the given status, bypassing the
// lifecycle, so each test can start at the stage it cares about.
func createTestJob(t *testing.T, db *gorm.DB, customer *models.User, contractor *models.User, status string) *models.Job {
	t.Helper()
	testJobSeq++
	job := models.Job{
		JobNumber:      fmt.Sprintf("JOB-T%05d", testJobSeq),
		Status:         status,
		Title:          "Kitchen remodel",
		Address:        "12 Harbor Lane",
		CustomerID:     customer.ID,
		LastActivityAt: time.Now(),
	}
	if contractor != nil {
		job.ContractorID = &contractor.ID
	}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}
	return &job
}

func createTestChecklist(t *testing.T, db *gorm.DB, job *models.Job, items ...models.ChecklistItem) *models.Checklist {
	t.Helper()
	checklist := models.Checklist{JobID: job.ID}
	if err := db.Create(&checklist).Error; err != nil {
		t.Fatalf("Failed to create test checklist: %v", err)
	}
	for i := range items {
		items[i].ChecklistID = checklist.ID
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("Failed to create test checklist item: %v", err)
		}
	}
	checklist.Items = items
	return &checklist
}

func createTestCheckpoint(t *testing.T, db *gorm.DB, job *models.Job, cpType, status string) *models.Checkpoint {
	t.Helper()
	checkpoint := models.Checkpoint{
		JobID:  job.ID,
		Type:   cpType,
		Status: status,
	}
	if err := db.Create(&checkpoint).Error; err != nil {
		t.Fatalf("Failed to create test checkpoint: %v", err)
	}
	return &checkpoint
}

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

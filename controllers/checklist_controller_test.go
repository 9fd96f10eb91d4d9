package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/models"
)

func seedChecklist(t *testing.T, db *gorm.DB, job *models.Job, items ...models.ChecklistItem) *models.Checklist {
	t.Helper()
	checklist := models.Checklist{JobID: job.ID}
	if err := db.Create(&checklist).Error; err != nil {
		t.Fatalf("Failed to seed checklist: %v", err)
	}
	for i := range items {
		items[i].ChecklistID = checklist.ID
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("Failed to seed checklist item: %v", err)
		}
	}
	checklist.Items = items
	return &checklist
}

func TestUpdateChecklistEndpoint(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|clcustomer", "customer")
	contractor := seedUser(t, db, "auth0|cltech", "contractor")
	job := seedJob(t, db, customer, contractor, models.JobStatusInProgress)
	seedChecklist(t, db, job)

	router := setupTestRouter()
	router.PUT("/jobs/:jobNumber/checklist",
		mockAuthMiddleware(contractor.Auth0ID, contractor.Role), UpdateChecklist)

	w := doJSONRequest(t, router, http.MethodPut, "/jobs/"+job.JobNumber+"/checklist",
		map[string]interface{}{
			"items": []map[string]interface{}{
				{"label": "Prep and sand surfaces"},
				{"label": "Apply two coats", "done": true},
				{"label": "Leftover paint for touch-ups", "required": false},
			},
		})
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 3)

	first := items[0].(map[string]interface{})
	assert.Equal(t, "Prep and sand surfaces", first["label"])
	assert.Equal(t, true, first["required"]) // required defaults to true
}

func TestUpdateChecklistEndpoint_MissingItems(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|clmcustomer", "customer")
	contractor := seedUser(t, db, "auth0|clmtech", "contractor")
	job := seedJob(t, db, customer, contractor, models.JobStatusInProgress)

	router := setupTestRouter()
	router.PUT("/jobs/:jobNumber/checklist",
		mockAuthMiddleware(contractor.Auth0ID, contractor.Role), UpdateChecklist)

	w := doJSONRequest(t, router, http.MethodPut, "/jobs/"+job.JobNumber+"/checklist",
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := parseResponse(t, w)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestGetChecklistEndpoint(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|clgcustomer", "customer")
	job := seedJob(t, db, customer, nil, models.JobStatusInProgress)
	seedChecklist(t, db, job,
		models.ChecklistItem{Label: "Demo old tile", Required: true, Done: true},
		models.ChecklistItem{Label: "Lay new tile", Required: true, Done: false},
	)

	router := setupTestRouter()
	router.GET("/jobs/:jobNumber/checklist",
		mockAuthMiddleware(customer.Auth0ID, customer.Role), GetChecklist)

	w := doJSONRequest(t, router, http.MethodGet, "/jobs/"+job.JobNumber+"/checklist", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["completion_percent"])

	checklist := data["checklist"].(map[string]interface{})
	assert.Len(t, checklist["items"].([]interface{}), 2)
}

func TestMarkWorkCompleteEndpoint(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|wccustomer", "customer")
	contractor := seedUser(t, db, "auth0|wctech", "contractor")
	job := seedJob(t, db, customer, contractor, models.JobStatusInProgress)
	seedChecklist(t, db, job,
		models.ChecklistItem{Label: "Install fixtures", Required: true, Done: true},
	)

	router := setupTestRouter()
	router.POST("/jobs/:jobNumber/work-complete",
		mockAuthMiddleware(contractor.Auth0ID, contractor.Role), MarkWorkComplete)

	w := doJSONRequest(t, router, http.MethodPost, "/jobs/"+job.JobNumber+"/work-complete",
		map[string]interface{}{"actual_cost_cents": 54000})
	assert.Equal(t, http.StatusCreated, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.CheckpointFinal, data["type"])
	assert.Equal(t, models.CheckpointStatusPending, data["status"])

	var refreshed models.Job
	assert.NoError(t, db.First(&refreshed, job.ID).Error)
	assert.Equal(t, models.JobStatusAwaitingFinalApproval, refreshed.Status)
	assert.Equal(t, int64(54000), *refreshed.ActualCostCents)
}

func TestMarkWorkCompleteEndpoint_EmptyBody(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|wbcustomer", "customer")
	contractor := seedUser(t, db, "auth0|wbtech", "contractor")
	job := seedJob(t, db, customer, contractor, models.JobStatusInProgress)
	seedChecklist(t, db, job)

	router := setupTestRouter()
	router.POST("/jobs/:jobNumber/work-complete",
		mockAuthMiddleware(contractor.Auth0ID, contractor.Role), MarkWorkComplete)

	// No body at all; an empty checklist does not block completion
	w := doJSONRequest(t, router, http.MethodPost, "/jobs/"+job.JobNumber+"/work-complete", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMarkWorkCompleteEndpoint_ChecklistGate(t *testing.T) {
	db := setupTestDB(t)
	customer := seedUser(t, db, "auth0|gatecustomer", "customer")
	contractor := seedUser(t, db, "auth0|gatetech", "contractor")
	job := seedJob(t, db, customer, contractor, models.JobStatusInProgress)
	seedChecklist(t, db, job,
		models.ChecklistItem{Label: "Seal grout", Required: true, Done: false},
	)

	router := setupTestRouter()
	router.POST("/jobs/:jobNumber/work-complete",
		mockAuthMiddleware(contractor.Auth0ID, contractor.Role), MarkWorkComplete)

	w := doJSONRequest(t, router, http.MethodPost, "/jobs/"+job.JobNumber+"/work-complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	response := parseResponse(t, w)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "CHECKLIST_INCOMPLETE", errorData["code"])
	outstanding := errorData["outstanding"].([]interface{})
	assert.Len(t, outstanding, 1)
	assert.Equal(t, "Seal grout", outstanding[0])
}

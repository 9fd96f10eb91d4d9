package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fairhaven-home/fairhaven-api/config"
	"github.com/fairhaven-home/fairhaven-api/controllers"
	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/tests/testutil"
)

// JobAcceptanceTestSuite exercises the job endpoints against a live test server
type JobAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
}

// SetupSuite runs once before all tests
func (suite *JobAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	os.Setenv("GO_ENV", "test")
	os.Setenv("DATABASE_URL", "file::memory:?cache=shared")

	cfg, err := config.Load()
	suite.NoError(err)
	config.SetConfig(cfg)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(models.All()...)
	suite.NoError(err)

	config.SetDB(db)

	router := suite.createRouter()
	suite.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (suite *JobAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *JobAcceptanceTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM checklist_items")
	suite.db.Exec("DELETE FROM checklists")
	suite.db.Exec("DELETE FROM jobs")
	suite.db.Exec("DELETE FROM users")

	customer := models.User{Auth0ID: "auth0|acc-customer", Name: "Acceptance Customer", Email: "acc-customer@test.com", Role: "customer"}
	suite.NoError(suite.db.Create(&customer).Error)
	contractor := models.User{Auth0ID: "auth0|acc-contractor", Name: "Acceptance Contractor", Email: "acc-contractor@test.com", Role: "contractor"}
	suite.NoError(suite.db.Create(&contractor).Error)
}

// createRouter builds the application router with mock auth per actor
func (suite *JobAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.POST("/jobs", testutil.MockAuthMiddleware("auth0|acc-customer", "customer"), controllers.CreateJob)
		v1.GET("/jobs", testutil.MockAuthMiddleware("auth0|acc-customer", "customer"), controllers.ListJobs)
		v1.GET("/jobs/:jobNumber", testutil.MockAuthMiddleware("auth0|acc-customer", "customer"), controllers.GetJob)

		// Routes for contractor scenarios
		v1.POST("/jobs-tech", testutil.MockAuthMiddleware("auth0|acc-contractor", "contractor"), controllers.CreateJob)
		v1.GET("/jobs-tech", testutil.MockAuthMiddleware("auth0|acc-contractor", "contractor"), controllers.ListJobs)
	}

	return router
}

func (suite *JobAcceptanceTestSuite) post(path string, body interface{}) (*http.Response, map[string]interface{}) {
	raw, err := json.Marshal(body)
	suite.NoError(err)

	resp, err := http.Post(suite.server.URL+path, "application/json", bytes.NewBuffer(raw))
	suite.NoError(err)

	var response map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&response))
	resp.Body.Close()
	return resp, response
}

func (suite *JobAcceptanceTestSuite) get(path string) (*http.Response, map[string]interface{}) {
	resp, err := http.Get(suite.server.URL + path)
	suite.NoError(err)

	var response map[string]interface{}
	suite.NoError(json.NewDecoder(resp.Body).Decode(&response))
	resp.Body.Close()
	return resp, response
}

// TestCreateAndFetchJob creates a job over HTTP and reads it back
func (suite *JobAcceptanceTestSuite) TestCreateAndFetchJob() {
	resp, response := suite.post("/api/v1/jobs", map[string]interface{}{
		"title":   "Gutter replacement",
		"address": "17 Foss Hill Road",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	data := response["data"].(map[string]interface{})
	jobNumber := data["job_number"].(string)
	suite.Equal(models.JobStatusPending, data["status"])

	resp, response = suite.get(fmt.Sprintf("/api/v1/jobs/%s", jobNumber))
	suite.Equal(http.StatusOK, resp.StatusCode)
	data = response["data"].(map[string]interface{})
	suite.Equal("Gutter replacement", data["title"])
}

// TestContractorCannotCreateJob confirms the role gate over a live connection
func (suite *JobAcceptanceTestSuite) TestContractorCannotCreateJob() {
	resp, response := suite.post("/api/v1/jobs-tech", map[string]interface{}{
		"title":   "Not allowed",
		"address": "1 Nowhere",
	})
	suite.Equal(http.StatusForbidden, resp.StatusCode)

	errorData := response["error"].(map[string]interface{})
	suite.Equal("FORBIDDEN", errorData["code"])
}

// TestContractorSeesOnlyAssignedJobs checks listing scope for contractors
func (suite *JobAcceptanceTestSuite) TestContractorSeesOnlyAssignedJobs() {
	resp, response := suite.post("/api/v1/jobs", map[string]interface{}{
		"title":   "Fence repair",
		"address": "3 Stone Row",
	})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	// Nothing is assigned to the contractor yet
	resp, response = suite.get("/api/v1/jobs-tech")
	suite.Equal(http.StatusOK, resp.StatusCode)
	data := response["data"].(map[string]interface{})
	suite.Equal(float64(0), data["total"])
}

// TestJobAcceptanceTestSuite runs the acceptance test suite
func TestJobAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(JobAcceptanceTestSuite))
}

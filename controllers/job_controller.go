package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// CreateJobRequest represents the request body for creating a job
type CreateJobRequest struct {
	Title   string     `json:"title" binding:"required"`
	Address string     `json:"address" binding:"required"`
	DueDate *time.Time `json:"due_date" binding:"omitempty"`
}

// ScheduleEvaluationRequest represents the request body for scheduling an evaluation
type ScheduleEvaluationRequest struct {
	ContractorID uint       `json:"contractor_id" binding:"required"`
	StartDate    *time.Time `json:"start_date" binding:"omitempty"`
}

// CancelJobRequest represents the request body for cancelling a job
type CancelJobRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateJob handles POST /api/v1/jobs - creates a new job (customers only)
func CreateJob(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only customers can create jobs",
			},
		})
		return
	}

	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	job, err := services.CreateJob(user.ID, req.Title, req.Address, req.DueDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    job,
	})
}

// ListJobs handles GET /api/v1/jobs - lists jobs visible to the current user
func ListJobs(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	jobs, total, err := services.ListJobs(user, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"jobs":  jobs,
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetJob handles GET /api/v1/jobs/:jobNumber
func GetJob(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	job, err := services.GetJobByNumber(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if !jobVisibleTo(user, job) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this job",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// ScheduleEvaluation handles POST /api/v1/jobs/:jobNumber/schedule-evaluation
// Assigns a contractor and moves the job to evaluation_scheduled (admins only).
func ScheduleEvaluation(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can schedule evaluations",
			},
		})
		return
	}

	var req ScheduleEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	job, err := services.ScheduleEvaluation(c.Param("jobNumber"), req.ContractorID, req.StartDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// StartEvaluation handles POST /api/v1/jobs/:jobNumber/start-evaluation
// The assigned contractor marks the on-site evaluation as begun.
func StartEvaluation(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	job, err := services.StartEvaluation(c.Param("jobNumber"), user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    job,
	})
}

// CancelJob handles POST /api/v1/jobs/:jobNumber/cancel
func CancelJob(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req CancelJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	job, err := services.GetJobByNumber(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// Customers can cancel their own jobs, admins can cancel any job.
	if user.Role != models.RoleAdmin && job.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this job",
			},
		})
		return
	}

	cancelled, err := services.CancelJob(job.JobNumber, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cancelled,
	})
}

func jobVisibleTo(user *models.User, job *models.Job) bool {
	if user.Role == models.RoleAdmin {
		return true
	}
	if job.CustomerID == user.ID {
		return true
	}
	return job.ContractorID != nil && *job.ContractorID == user.ID
}

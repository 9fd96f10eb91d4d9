package controllers

import (
	"net/http"

	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// ResolveCheckpointRequest represents the request body for resolving a checkpoint
type ResolveCheckpointRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approve reject flag_issue"`
	Reason   *string `json:"reason" binding:"omitempty"`
	Rating   *int    `json:"rating" binding:"omitempty,min=1,max=5"`
}

// ListCheckpoints handles GET /api/v1/jobs/:jobNumber/checkpoints
func ListCheckpoints(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	checkpoints, err := services.ListCheckpoints(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    checkpoints,
	})
}

// RequestMidCheckpoint handles POST /api/v1/jobs/:jobNumber/checkpoints/mid_project
// Staff pause an in-progress job for a customer review (admins only).
func RequestMidCheckpoint(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can request a mid-project checkpoint",
			},
		})
		return
	}

	checkpoint, err := services.RequestMidCheckpoint(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    checkpoint,
	})
}

// ResolveCheckpoint handles POST /api/v1/jobs/:jobNumber/checkpoints/:type/resolve
// Only the job's customer can resolve a checkpoint. Approving the final
// checkpoint completes the job.
func ResolveCheckpoint(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	cpType := c.Param("type")
	if !services.ValidCheckpointType(cpType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown checkpoint type",
			},
		})
		return
	}

	var req ResolveCheckpointRequest
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

	checkpoint, err := services.ResolveCheckpoint(c.Param("jobNumber"), cpType, req.Decision, req.Reason, req.Rating, user)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    checkpoint,
	})
}

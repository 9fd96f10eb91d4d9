package controllers

import (
	"net/http"

	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// UpdateChecklistRequest represents the request body for updating a checklist
type UpdateChecklistRequest struct {
	Items []services.ChecklistItemInput `json:"items" binding:"required,dive"`
}

// WorkCompleteRequest represents the request body for declaring work complete
type WorkCompleteRequest struct {
	ActualCostCents *int64 `json:"actual_cost_cents" binding:"omitempty,gt=0"`
}

// UpdateChecklist handles PUT /api/v1/jobs/:jobNumber/checklist
// Upserts checklist items. Allowed while the job is not terminal.
func UpdateChecklist(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req UpdateChecklistRequest
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

	checklist, err := services.UpdateChecklist(c.Param("jobNumber"), req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    checklist,
	})
}

// GetChecklist handles GET /api/v1/jobs/:jobNumber/checklist
func GetChecklist(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	checklist, err := services.GetChecklist(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"checklist":          checklist,
			"completion_percent": checklist.CompletionPercent(),
		},
	})
}

// MarkWorkComplete handles POST /api/v1/jobs/:jobNumber/work-complete
// The contractor declares the work finished. Every required checklist
// item must be done before the final checkpoint opens.
func MarkWorkComplete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	// Body is optional; the actual cost may not be known yet.
	var req WorkCompleteRequest
	if c.Request.ContentLength > 0 {
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
	}

	checkpoint, err := services.MarkWorkComplete(c.Param("jobNumber"), user.ID, req.ActualCostCents)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    checkpoint,
	})
}

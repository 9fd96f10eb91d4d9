package controllers

import (
	"net/http"
	"strconv"

	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// OpenDisputeRequest represents the request body for opening a dispute
type OpenDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// EscalateDisputeRequest represents the request body for escalating a dispute
type EscalateDisputeRequest struct {
	ToAdmin bool   `json:"to_admin"`
	Notes   string `json:"notes" binding:"omitempty"`
}

// ResolveDisputeRequest represents the request body for resolving a dispute
type ResolveDisputeRequest struct {
	Notes string `json:"notes" binding:"required"`
	Close bool   `json:"close"`
}

// OpenDispute handles POST /api/v1/jobs/:jobNumber/disputes
func OpenDispute(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req OpenDisputeRequest
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

	dispute, err := services.OpenDispute(c.Param("jobNumber"), user, req.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dispute,
	})
}

// ListJobDisputes handles GET /api/v1/jobs/:jobNumber/disputes
func ListJobDisputes(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	disputes, err := services.ListJobDisputes(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    disputes,
	})
}

// EscalateDispute handles POST /api/v1/disputes/:id/escalate
// Staff escalate to the field manager, or straight to admin review.
func EscalateDispute(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can escalate disputes",
			},
		})
		return
	}

	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid dispute ID",
			},
		})
		return
	}

	var req EscalateDisputeRequest
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

	dispute, err := services.EscalateDispute(uint(disputeID), user, req.ToAdmin, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dispute,
	})
}

// ResolveDispute handles POST /api/v1/disputes/:id/resolve (admins only)
func ResolveDispute(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can resolve disputes",
			},
		})
		return
	}

	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid dispute ID",
			},
		})
		return
	}

	var req ResolveDisputeRequest
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

	dispute, err := services.ResolveDispute(uint(disputeID), user, req.Notes, req.Close)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dispute,
	})
}

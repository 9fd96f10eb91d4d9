package controllers

import (
	"net/http"
	"strconv"

	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// VerifyCompletionRequest represents the request body for verifying a completed job
type VerifyCompletionRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=approve reject"`
	Notes    *string `json:"notes" binding:"omitempty"`
}

// HoldEligibilityRequest represents the request body for holding or releasing a payout
type HoldEligibilityRequest struct {
	Hold bool `json:"hold"`
}

// RequestPayoutRequest represents the request body for a withdrawal request
type RequestPayoutRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required,gt=0"`
}

// VerifyCompletion handles POST /api/v1/jobs/:jobNumber/verify-completion
// Staff verify a completed job. Approval creates the payout eligibility
// (admins only).
func VerifyCompletion(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can verify completion",
			},
		})
		return
	}

	var req VerifyCompletionRequest
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

	eligibility, err := services.VerifyCompletion(c.Param("jobNumber"), req.Decision, req.Notes, user)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	// A rejection records notes without creating an eligibility.
	if eligibility == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    eligibility,
	})
}

// GetJobEligibility handles GET /api/v1/jobs/:jobNumber/eligibility
func GetJobEligibility(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	eligibility, err := services.GetEligibilityByJob(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eligibility,
	})
}

// ApprovePayout handles POST /api/v1/payouts/:id/approve - credits the
// contractor wallet for a ready eligibility (admins only).
func ApprovePayout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can approve payouts",
			},
		})
		return
	}

	eligibilityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid eligibility ID",
			},
		})
		return
	}

	transaction, err := services.ApprovePayout(uint(eligibilityID))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transaction,
	})
}

// HoldPayout handles POST /api/v1/payouts/:id/hold - places a ready
// eligibility on hold or releases a held one (admins only).
func HoldPayout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can hold payouts",
			},
		})
		return
	}

	eligibilityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid eligibility ID",
			},
		})
		return
	}

	var req HoldEligibilityRequest
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

	eligibility, err := services.HoldEligibility(uint(eligibilityID), req.Hold)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eligibility,
	})
}

// RequestPayout handles POST /api/v1/wallet/withdrawals - a contractor
// withdraws from their wallet balance.
func RequestPayout(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleContractor {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only contractors can request payouts",
			},
		})
		return
	}

	var req RequestPayoutRequest
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

	payoutRequest, err := services.RequestPayout(user.ID, req.AmountCents)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    payoutRequest,
	})
}

package controllers

import (
	"net/http"

	"github.com/fairhaven-home/fairhaven-api/models"
	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// GetMyWallet handles GET /api/v1/wallet - returns the contractor's wallet
func GetMyWallet(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleContractor {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only contractors have wallets",
			},
		})
		return
	}

	wallet, err := services.GetWallet(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    wallet,
	})
}

// GetMyLedger handles GET /api/v1/wallet/transactions - full transaction history
func GetMyLedger(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	if user.Role != models.RoleContractor {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only contractors have wallets",
			},
		})
		return
	}

	transactions, err := services.GetLedger(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transactions,
	})
}

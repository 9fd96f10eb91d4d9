package controllers

import (
	"net/http"

	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/gin-gonic/gin"
)

// UpdateEvaluation handles PATCH /api/v1/jobs/:jobNumber/evaluation
// The assigned contractor records measurements while on site. Partial
// updates are allowed until the evaluation is submitted.
func UpdateEvaluation(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var input services.EvaluationInput
	if err := c.ShouldBindJSON(&input); err != nil {
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

	eval, err := services.UpdateEvaluation(c.Param("jobNumber"), user.ID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eval,
	})
}

// GetEvaluation handles GET /api/v1/jobs/:jobNumber/evaluation
func GetEvaluation(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	eval, err := services.GetEvaluation(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    eval,
	})
}

// SubmitEvaluation handles POST /api/v1/jobs/:jobNumber/evaluation/submit
// Locks the evaluation, generates the quote and opens the pre-start
// checkpoint. Retries return the existing quote.
func SubmitEvaluation(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	quote, err := services.SubmitEvaluation(c.Param("jobNumber"), user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    quote,
	})
}

// GetQuote handles GET /api/v1/jobs/:jobNumber/quote
func GetQuote(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	quote, err := services.GetQuote(c.Param("jobNumber"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    quote,
	})
}

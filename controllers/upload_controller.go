package controllers

import (
	"net/http"

	"github.com/fairhaven-home/fairhaven-api/services"
	"github.com/fairhaven-home/fairhaven-api/utils"
	"github.com/gin-gonic/gin"
)

// UploadCheckpointPhoto handles POST /api/v1/jobs/:jobNumber/checkpoints/:type/photo
// Attaches PNG photo evidence to a pending checkpoint.
func UploadCheckpointPhoto(c *gin.Context) {
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

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "Photo file is required (field name: photo)",
			},
		})
		return
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		uploadErr, ok := err.(*utils.FileUploadError)
		code := "INVALID_FILE"
		if ok {
			code = uploadErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	s3Service := services.GetS3Service()
	if s3Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	s3Key, err := s3Service.UploadFile(fileHeader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to store photo",
			},
		})
		return
	}

	checkpoint, err := services.AttachCheckpointPhoto(c.Param("jobNumber"), cpType, s3Key)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if url, urlErr := s3Service.GetPresignedURL(s3Key); urlErr == nil && url != "" {
		checkpoint.PhotoURL = &url
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    checkpoint,
	})
}

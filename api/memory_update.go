package api

import (
	"errors"
	"net/http"
	"strings"

	"smritikosha/memory-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memoryUpdateRequest struct {
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// MemoryUpdate replaces a memory's title, location, description and tags.
// Photos and summaries are untouched, they have their own endpoints
func (a *API) MemoryUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	memoryID := c.Param("id")

	var req memoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Title is required",
			"requestID": requestID,
		})
		return
	}

	var memory model.Memory
	err := a.DB.
		Where("id = ? AND user_id = ?", memoryID, userID).
		First(&memory).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Memory not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch memory",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	if req.Title != memory.Title {
		var count int64
		err = a.DB.
			Model(model.Memory{}).
			Where("user_id = ? AND title = ? AND id <> ?", userID, req.Title, memoryID).
			Count(&count).
			Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check for duplicate memory title",
				zap.Error(err),
				zap.String("requestID", requestID))
			return
		}

		if count > 0 {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "A memory with this title already exists",
				"requestID": requestID,
			})
			return
		}
	}

	memory.Title = req.Title
	memory.Location = req.Location
	memory.Description = req.Description
	memory.Tags = req.Tags

	if err := a.DB.Save(&memory).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update memory",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, memory)
}

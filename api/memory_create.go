package api

import (
	"net/http"
	"strings"

	"smritikosha/memory-api/model"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type memoryCreateRequest struct {
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// MemoryCreate creates a new, empty memory for the caller
func (a *API) MemoryCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var req memoryCreateRequest
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

	var count int64
	err := a.DB.
		Model(model.Memory{}).
		Where("user_id = ? AND title = ?", userID, req.Title).
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

	memory := model.Memory{
		ID:          gonanoid.Must(),
		UserID:      userID,
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		Tags:        req.Tags,
	}

	if err := a.DB.Create(&memory).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create memory",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, memory)
}

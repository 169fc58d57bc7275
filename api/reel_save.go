package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

type reelSaveRequest struct {
	MemoryID string             `json:"memoryId"`
	Title    string             `json:"title"`
	Summary  string             `json:"summary"`
	Params   model.RenderParams `json:"renderParams"`
}

// ReelSave persists a reel as a draft. Only the whitelisted render
// parameters survive, everything else a client sends is dropped.
// Nothing is rendered here, saving is cheap
func (a *API) ReelSave(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var req reelSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if req.MemoryID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "memoryId is required",
			"requestID": requestID,
		})
		return
	}

	if err := validators.RenderParamsValidator(&req.Params); err != nil {
		if errors.Is(err, validators.ErrEmptyFlow) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Reel has no frames",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var count int64
	err := a.DB.
		Model(model.Memory{}).
		Where("id = ? AND user_id = ?", req.MemoryID, userID).
		Count(&count).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check memory ownership",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	if count == 0 {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "Memory does not belong to you",
			"requestID": requestID,
		})
		return
	}

	params, err := json.Marshal(req.Params)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to marshal render params",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	reel := model.Reel{
		ID:              gonanoid.Must(),
		UserID:          userID,
		MemoryID:        req.MemoryID,
		Title:           strings.TrimSpace(req.Title),
		Summary:         req.Summary,
		Status:          model.ReelStatusDraft,
		Format:          "mp4",
		Aspect:          "9:16",
		DurationSeconds: req.Params.DurationSeconds,
		RenderParams:    params,
	}

	if err := a.DB.Create(&reel).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create reel",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reelId": reel.ID,
		"status": reel.Status,
	})
}

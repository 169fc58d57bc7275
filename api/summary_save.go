package api

import (
	"net/http"
	"strings"

	"smritikosha/memory-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

type summarySaveRequest struct {
	Summary string `json:"summary"`
}

// SummarySave persists a summary for a memory, replacing a previous one
func (a *API) SummarySave(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	memoryID := c.Param("id")

	var req summarySaveRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Summary) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Summary is required",
			"requestID": requestID,
		})
		return
	}

	var count int64
	err := a.DB.
		Model(model.Memory{}).
		Where("id = ? AND user_id = ?", memoryID, userID).
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
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Memory not found",
			"requestID": requestID,
		})
		return
	}

	summary := model.MemorySummary{
		MemoryID: memoryID,
		Summary:  strings.TrimSpace(req.Summary),
	}

	err = a.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "memory_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
		}).
		Create(&summary).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save summary",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

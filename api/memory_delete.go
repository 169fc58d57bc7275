package api

import (
	"errors"
	"net/http"

	"smritikosha/memory-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MemoryDelete removes a memory, its database rows and its storage
// objects. Row deletion comes first so a storage failure can't leave
// rows pointing at deleted objects
func (a *API) MemoryDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	memoryID := c.Param("id")

	var memory model.Memory
	err := a.DB.
		Preload("Images").
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

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("memory_id = ?", memoryID).Delete(&model.MemoryImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("memory_id = ?", memoryID).Delete(&model.MemorySummary{}).Error; err != nil {
			return err
		}
		return tx.Delete(&memory).Error
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete memory",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	if len(memory.Images) > 0 {
		keys := make([]string, len(memory.Images))
		for i, img := range memory.Images {
			keys[i] = img.ImagePath
		}

		if err := a.Store.Delete(c.Request.Context(), a.Buckets.Images, keys...); err != nil {
			// Rows are gone, the objects are now orphans. Log and move on
			zap.L().Error("Failed to delete memory images from storage",
				zap.Error(err),
				zap.String("memoryID", memoryID),
				zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

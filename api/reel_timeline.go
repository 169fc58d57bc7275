package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReelTimeline returns the playback schedule of a saved reel: a title
// card followed by every frame with its start offset, hold time and
// entry/exit tweens. Clients drive their player off this instead of
// re-deriving timing
func (a *API) ReelTimeline(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	reelID := c.Param("id")

	var reel model.Reel
	err := a.DB.
		Where("id = ? AND user_id = ?", reelID, userID).
		First(&reel).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Reel not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch reel",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	var params model.RenderParams
	if err := json.Unmarshal(reel.RenderParams, &params); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to unmarshal render params",
			zap.Error(err),
			zap.String("reelID", reelID),
			zap.String("requestID", requestID))
		return
	}

	tl := service.PlaybackTimeline(params.VisualFlow)

	c.JSON(http.StatusOK, gin.H{
		"reelId":   reel.ID,
		"title":    reel.Title,
		"timeline": tl,
	})
}

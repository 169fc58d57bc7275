package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/service"
	"smritikosha/memory-api/storage"
	"smritikosha/memory-api/util"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReelPublish renders a saved reel (if it hasn't been rendered into the
// public bucket yet) and makes it reachable under a public slug.
// Publishing an already public reel with a video asset is a no-op that
// returns the existing URLs
func (a *API) ReelPublish(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	reelID := c.Param("id")

	var reel model.Reel
	err := a.DB.Where("id = ?", reelID).First(&reel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "Save required before publish",
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

	if reel.UserID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "Reel does not belong to you",
			"requestID": requestID,
		})
		return
	}

	if reel.IsPublic && reel.VideoPath != "" {
		c.JSON(http.StatusOK, a.publishResponse(&reel))
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

	res, err := a.Renderer.Render(c.Request.Context(), reel.Title, params)
	if err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Server is busy, try again later",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to render reel",
			"requestID": requestID,
		})

		zap.L().Error("Render failed",
			zap.Error(err),
			zap.String("reelID", reelID),
			zap.String("requestID", requestID))
		return
	}

	videoKey := storage.ReelVideoKey(userID, reel.ID)
	err = a.Store.Put(c.Request.Context(), a.Buckets.ReelsPublic, videoKey,
		bytes.NewReader(res.MP4), int64(len(res.MP4)), "video/mp4")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store reel video",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload reel video",
			zap.Error(err),
			zap.String("reelID", reelID),
			zap.String("requestID", requestID))
		return
	}

	posterKey := ""
	if len(res.Poster) > 0 {
		posterKey = storage.ReelPosterKey(userID, reel.ID)
		err = a.Store.Put(c.Request.Context(), a.Buckets.ReelsPublic, posterKey,
			bytes.NewReader(res.Poster), int64(len(res.Poster)), "image/jpeg")
		if err != nil {
			// The video made it, publish without a poster
			zap.L().Warn("Failed to upload reel poster",
				zap.Error(err),
				zap.String("reelID", reelID),
				zap.String("requestID", requestID))
			posterKey = ""
		}
	}

	now := time.Now()

	reel.Status = model.ReelStatusReady
	reel.IsPublic = true
	reel.VideoPath = videoKey
	reel.PosterPath = posterKey
	reel.DurationSeconds = res.DurationSeconds
	reel.FileSizeBytes = int64(len(res.MP4))
	reel.Checksum = res.Checksum
	reel.PublishedAt = &now
	if reel.PublicSlug == "" {
		reel.PublicSlug = util.NewSlug()
	}

	if err := a.DB.Save(&reel).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update reel",
			zap.Error(err),
			zap.String("reelID", reelID),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, a.publishResponse(&reel))
}

func (a *API) publishResponse(reel *model.Reel) gin.H {
	out := gin.H{
		"reelId":   reel.ID,
		"viewUrl":  viper.GetString("host.public_url") + "/api/reels/view/" + reel.PublicSlug,
		"videoUrl": storage.PublicURL(a.Buckets.ReelsPublic, reel.VideoPath),
	}

	if reel.PosterPath != "" {
		out["posterUrl"] = storage.PublicURL(a.Buckets.ReelsPublic, reel.PosterPath)
	}

	return out
}

package api

import (
	"errors"
	"net/http"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReelView resolves a public slug to a published reel. No auth, this is
// what shared links hit
func (a *API) ReelView(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	slug := c.Param("slug")

	var reel model.Reel
	err := a.DB.
		Where("public_slug = ? AND is_public = ?", slug, true).
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

		zap.L().Error("Failed to fetch public reel",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	out := gin.H{
		"title":           reel.Title,
		"summary":         reel.Summary,
		"durationSeconds": reel.DurationSeconds,
		"publishedAt":     reel.PublishedAt,
		"videoUrl":        storage.PublicURL(a.Buckets.ReelsPublic, reel.VideoPath),
	}

	if reel.PosterPath != "" {
		out["posterUrl"] = storage.PublicURL(a.Buckets.ReelsPublic, reel.PosterPath)
	}

	c.JSON(http.StatusOK, out)
}

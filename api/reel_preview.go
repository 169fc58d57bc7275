package api

import (
	"errors"
	"net/http"

	"smritikosha/memory-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReelPreview builds the visual flow for a memory. The result is not
// persisted, the client plays it back and decides whether to save
func (a *API) ReelPreview(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	memoryID := c.Param("id")

	preview, err := a.Flow.Build(c.Request.Context(), userID, memoryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemoryNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Memory not found",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrNoImages):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Memory has no images to build a reel from",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrBadGeneration):
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":     "Reel generation failed",
				"requestID": requestID,
			})

			zap.L().Warn("Generation response rejected",
				zap.Error(err),
				zap.String("requestID", requestID))
		default:
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":     "Reel generation failed",
				"requestID": requestID,
			})

			zap.L().Error("Failed to build reel preview",
				zap.Error(err),
				zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, preview)
}

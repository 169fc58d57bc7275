package api

import (
	"net/http"

	"smritikosha/memory-api/ai"
	"smritikosha/memory-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stylizeRequest struct {
	ImageURL string `json:"imageUrl"`
}

// Stylize generates a Ghibli styled rendition of a single image. Used by
// the client outside the reel flow, the reel pipeline stylizes frames on
// its own within its budget
func (a *API) Stylize(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var req stylizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ImageURL == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "imageUrl is required",
			"requestID": requestID,
		})
		return
	}

	url, err := a.AI.GenerateImage(c.Request.Context(), service.StylizePrompt(req.ImageURL))
	if err != nil {
		if ai.IsUpstream(err) {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":     "Image generation failed",
				"requestID": requestID,
			})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})
		}

		zap.L().Error("Failed to generate stylized image",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

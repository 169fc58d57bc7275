package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/service"
	"smritikosha/memory-api/storage"
	"smritikosha/memory-api/util"
	"smritikosha/memory-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// How long a download link for a saved reel stays valid
const downloadURLExpiry = 15 * time.Minute

type reelDownloadRequest struct {
	// When set the reel must be saved and owned by the caller and the
	// download is a signed URL into the private bucket
	ReelID string `json:"reelId"`

	// Ephemeral path, used when ReelID is empty
	Title  string             `json:"title"`
	Params model.RenderParams `json:"renderParams"`
}

// ReelDownload hands out a reel video. Saved reels get a short lived
// signed URL, rendering into the private bucket first if the asset isn't
// there yet. Unsaved reels are rendered on the spot and streamed back
// without touching storage
func (a *API) ReelDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var req reelDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if req.ReelID != "" {
		a.downloadSaved(c, requestID, userID, req.ReelID)
		return
	}

	a.downloadEphemeral(c, requestID, req.Title, req.Params)
}

func (a *API) downloadSaved(c *gin.Context, requestID, userID, reelID string) {
	var reel model.Reel
	err := a.DB.Where("id = ?", reelID).First(&reel).Error
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

	if reel.UserID != userID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "Reel does not belong to you",
			"requestID": requestID,
		})
		return
	}

	videoKey := storage.ReelVideoKey(userID, reel.ID)

	// Publishing only writes the public bucket, so a published reel may
	// still be missing its private copy
	exists, err := a.Store.Exists(c.Request.Context(), a.Buckets.ReelsPrivate, videoKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check for reel video",
			zap.Error(err),
			zap.String("reelID", reelID),
			zap.String("requestID", requestID))
		return
	}

	if !exists {
		if !a.renderToPrivate(c, requestID, &reel, videoKey) {
			return
		}
	}

	url, err := a.Store.PresignGet(c.Request.Context(), a.Buckets.ReelsPrivate, videoKey, downloadURLExpiry)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to generate download link",
			"requestID": requestID,
		})

		zap.L().Error("Failed to presign reel video",
			zap.Error(err),
			zap.String("reelID", reelID),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reelId":      reel.ID,
		"downloadUrl": url,
		"fileName":    util.SafeFileName(reel.Title) + ".mp4",
	})
}

// renderToPrivate renders a saved reel and uploads the result into the
// private bucket. Returns false after writing an error response
func (a *API) renderToPrivate(c *gin.Context, requestID string, reel *model.Reel, videoKey string) bool {
	var params model.RenderParams
	if err := json.Unmarshal(reel.RenderParams, &params); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to unmarshal render params",
			zap.Error(err),
			zap.String("reelID", reel.ID),
			zap.String("requestID", requestID))
		return false
	}

	res, err := a.Renderer.Render(c.Request.Context(), reel.Title, params)
	if err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":     "Server is busy, try again later",
				"requestID": requestID,
			})
			return false
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to render reel",
			"requestID": requestID,
		})

		zap.L().Error("Render failed",
			zap.Error(err),
			zap.String("reelID", reel.ID),
			zap.String("requestID", requestID))
		return false
	}

	err = a.Store.Put(c.Request.Context(), a.Buckets.ReelsPrivate, videoKey,
		bytes.NewReader(res.MP4), int64(len(res.MP4)), "video/mp4")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store reel video",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload reel video",
			zap.Error(err),
			zap.String("reelID", reel.ID),
			zap.String("requestID", requestID))
		return false
	}

	reel.Status = model.ReelStatusReady
	reel.VideoPath = videoKey
	reel.DurationSeconds = res.DurationSeconds
	reel.FileSizeBytes = int64(len(res.MP4))
	reel.Checksum = res.Checksum

	if err := a.DB.Save(reel).Error; err != nil {
		// The asset exists, only the metadata update failed. The next
		// download finds the object and skips the render
		zap.L().Error("Failed to update reel after render",
			zap.Error(err),
			zap.String("reelID", reel.ID),
			zap.String("requestID", requestID))
	}

	return true
}

func (a *API) downloadEphemeral(c *gin.Context, requestID, title string, params model.RenderParams) {
	if err := validators.RenderParamsValidator(&params); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	res, err := a.Renderer.Render(c.Request.Context(), title, params)
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
			zap.String("requestID", requestID))
		return
	}

	name := util.SafeFileName(title)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".mp4"))
	c.Data(http.StatusOK, "video/mp4", res.MP4)
}

package api

import (
	"net/http"
	"sync"
	"time"

	"smritikosha/memory-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// How long the signed URLs in a memory listing stay valid
const listingURLExpiry = 15 * time.Minute

type memoryImageResponse struct {
	model.MemoryImage
	ImageURL string `json:"image_url,omitempty"`
}

type memoryResponse struct {
	model.Memory
	Images []memoryImageResponse `json:"images"`
}

// MemoryFetchBulk returns every memory of the caller, newest first, with
// a signed URL per photo. URL generation runs concurrently, an image
// whose URL can't be signed is returned without one
func (a *API) MemoryFetchBulk(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var memories []model.Memory
	err := a.DB.
		Preload("Images").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memories).
		Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch memories",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	out := make([]memoryResponse, len(memories))

	var wg sync.WaitGroup
	for i, m := range memories {
		out[i] = memoryResponse{
			Memory: m,
			Images: make([]memoryImageResponse, len(m.Images)),
		}

		for j, img := range m.Images {
			out[i].Images[j].MemoryImage = img

			wg.Add(1)
			go func() {
				defer wg.Done()

				url, err := a.Store.PresignGet(c.Request.Context(), a.Buckets.Images, img.ImagePath, listingURLExpiry)
				if err != nil {
					zap.L().Warn("Failed to sign image URL",
						zap.String("imageID", img.ID),
						zap.Error(err),
						zap.String("requestID", requestID))
					return
				}

				out[i].Images[j].ImageURL = url
			}()
		}
	}
	wg.Wait()

	c.JSON(http.StatusOK, gin.H{"memories": out})
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smritikosha/memory-api/model"
	"smritikosha/memory-api/util"
	"smritikosha/memory-api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ImageUpload stores a photo in the images bucket and attaches it to a
// memory. The database row is only written after the storage upload
// succeeded
func (a *API) ImageUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	memoryID := c.Param("id")

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

	fh, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "No image provided",
			"requestID": requestID,
		})
		return
	}

	code, f, err := validators.ImageValidator(fh)
	if err != nil {
		c.AbortWithStatusJSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%d_%s", userID, time.Now().Unix(), util.SafeFileName(fh.Filename))

	err = a.Store.Put(c.Request.Context(), a.Buckets.Images, key, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store image",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload image",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	img := model.MemoryImage{
		ID:          gonanoid.Must(),
		MemoryID:    memoryID,
		UserID:      userID,
		ImagePath:   key,
		Location:    c.PostForm("location"),
		Country:     c.PostForm("country"),
		Description: c.PostForm("description"),
	}

	if v := c.PostForm("lat"); v != "" {
		if lat, err := strconv.ParseFloat(v, 64); err == nil {
			img.Lat = &lat
		}
	}
	if v := c.PostForm("lon"); v != "" {
		if lon, err := strconv.ParseFloat(v, 64); err == nil {
			img.Lon = &lon
		}
	}
	if v := c.PostForm("tags"); v != "" {
		img.Tags = strings.Split(v, ",")
	}
	if v := c.PostForm("capture_date"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			img.CaptureDate = &t
		}
	}

	if err := a.DB.Create(&img).Error; err != nil {
		// Keep storage consistent with the database
		if derr := a.Store.Delete(c.Request.Context(), a.Buckets.Images, key); derr != nil {
			zap.L().Error("Failed to clean up uploaded object",
				zap.Error(derr),
				zap.String("requestID", requestID))
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create image row",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, img)
}

// ImageDelete removes a single photo, row first then object
func (a *API) ImageDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)
	imageID := c.Param("id")

	var img model.MemoryImage
	err := a.DB.
		Where("id = ? AND user_id = ?", imageID, userID).
		First(&img).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "Image not found",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch image",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Delete(&img).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete image row",
			zap.Error(err),
			zap.String("requestID", requestID))
		return
	}

	if err := a.Store.Delete(c.Request.Context(), a.Buckets.Images, img.ImagePath); err != nil {
		zap.L().Error("Failed to delete image object",
			zap.Error(err),
			zap.String("imageID", imageID),
			zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smritikosha/memory-api/ai"
	"smritikosha/memory-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Summarize generates a short poetic summary of a memory from its text
// and photo metadata. The result is not persisted, the client calls the
// summary endpoint once the user accepts it
func (a *API) Summarize(c *gin.Context) {
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

	if len(strings.TrimSpace(memory.Description)) < 10 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Memory text is too short or missing.",
			"requestID": requestID,
		})
		return
	}

	summary, err := a.AI.Chat(c.Request.Context(), summaryPrompt(&memory))
	if err != nil {
		if ai.IsUpstream(err) {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"error":     "Summary generation failed",
				"requestID": requestID,
			})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})
		}

		zap.L().Error("Failed to generate summary",
			zap.Error(err),
			zap.String("memoryID", memoryID),
			zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": strings.TrimSpace(summary)})
}

func summaryPrompt(memory *model.Memory) string {
	var sb strings.Builder

	sb.WriteString("Write a warm, evocative summary of this memory in at most three sentences.\n")
	fmt.Fprintf(&sb, "Title: %s\n", memory.Title)
	if memory.Location != "" {
		fmt.Fprintf(&sb, "Location: %s\n", memory.Location)
	}
	fmt.Fprintf(&sb, "Notes: %s\n", memory.Description)
	if len(memory.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(memory.Tags, ", "))
	}

	if len(memory.Images) > 0 {
		sb.WriteString("Photos:\n")
		for _, img := range memory.Images {
			if img.Description == "" && img.Location == "" {
				continue
			}
			fmt.Fprintf(&sb, "- %s %s\n", img.Description, img.Location)
		}
	}

	sb.WriteString("Respond with the summary text only, no preamble.")

	return sb.String()
}

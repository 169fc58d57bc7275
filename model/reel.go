package model

import (
	"time"

	"gorm.io/datatypes"
)

// Reel statuses. A reel starts as a draft and becomes ready once a video
// asset has been rendered and uploaded
const (
	ReelStatusDraft = "draft"
	ReelStatusReady = "ready"
)

// Reel is the render/publish unit for a memory. A reel always belongs to
// exactly one memory and one owning user. IsPublic implies a non-empty
// PublicSlug and a video path inside the public bucket
type Reel struct {
	ID       string `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"index;not null" json:"-"`
	MemoryID string `gorm:"index;not null" json:"memory_id"`

	Title   string `json:"title,omitempty"`
	Summary string `gorm:"type:text" json:"summary,omitempty"`
	Status  string `json:"status"`

	IsPublic   bool   `json:"is_public"`
	PublicSlug string `gorm:"index" json:"public_slug,omitempty"`

	Format          string         `json:"format"`
	Aspect          string         `json:"aspect"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	RenderParams    datatypes.JSON `json:"render_params,omitempty"`

	// Paths are object keys inside the reel buckets ({userId}/{reelId}/...)
	VideoPath  string `json:"video_path,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`

	FileSizeBytes int64 `json:"file_size_bytes,omitempty"`
	// SHA-1 hex digest of the exact video bytes handed to storage
	Checksum string `json:"checksum,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

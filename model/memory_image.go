package model

import "time"

// MemoryImage is one uploaded photo belonging to a memory. The row is only
// created after the storage write succeeded, so ImagePath always points at
// an existing object
type MemoryImage struct {
	ID       string `gorm:"primaryKey" json:"id"`
	MemoryID string `gorm:"index;not null" json:"memory_id"`
	UserID   string `gorm:"index;not null" json:"-"`

	// Object key inside the memory-images bucket ({userId}/{unix}_{name})
	ImagePath string `gorm:"not null" json:"image_path"`

	Location    string      `json:"location,omitempty"`
	Lat         *float64    `json:"lat,omitempty"`
	Lon         *float64    `json:"lon,omitempty"`
	Country     string      `json:"country,omitempty"`
	Description string      `json:"description,omitempty"`
	Tags        StringSlice `json:"tags"`
	CaptureDate *time.Time  `json:"capture_date,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

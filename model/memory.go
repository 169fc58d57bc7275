package model

import "time"

// Memory is a user's named collection of photos with shared metadata
type Memory struct {
	ID          string      `gorm:"primaryKey" json:"id"`
	UserID      string      `gorm:"index;not null" json:"-"`
	Title       string      `gorm:"not null" json:"title"`
	Location    string      `json:"location,omitempty"`
	Description string      `json:"description,omitempty"`
	Tags        StringSlice `json:"tags"`
	CreatedAt   time.Time   `json:"created_at"`

	// Deleting a memory cascades to its images
	Images []MemoryImage `gorm:"foreignKey:MemoryID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

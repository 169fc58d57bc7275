package model

import "time"

// MemorySummary holds the AI generated summary of a memory, one row per
// memory, replaced on every save
type MemorySummary struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	MemoryID  string    `gorm:"uniqueIndex;not null" json:"memory_id"`
	Summary   string    `gorm:"type:text" json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

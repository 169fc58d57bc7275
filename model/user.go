// Package model defines database models
package model

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	Memories []Memory `gorm:"foreignKey:UserID" json:"-"`
	Reels    []Reel   `gorm:"foreignKey:UserID" json:"-"`
}

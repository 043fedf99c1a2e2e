package models

import (
	"time"
)

// Anonymous is the actor id of a request without a session.
const Anonymous uint = 0

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

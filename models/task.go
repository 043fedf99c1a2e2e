package models

import (
	"errors"
	"time"
)

// DateLayout is the human-readable creation stamp stored with each task.
const DateLayout = time.ANSIC

// Priority is the fixed task priority enumeration. The zero value means unset.
type Priority string

const (
	PriorityUnset  Priority = ""
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ErrInvalidPriority is returned for values outside the enumeration.
var ErrInvalidPriority = errors.New("invalid priority")

// PriorityFromString converts a form value to a Priority without coercion.
func PriorityFromString(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityUnset, PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	default:
		return "", ErrInvalidPriority
	}
}

// Priorities lists the selectable values in display order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

type Task struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	UserID      uint     `gorm:"not null;index" json:"user_id"`
	Owner       *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Title       string   `gorm:"size:100;not null" json:"title"`
	Description string   `gorm:"size:500;not null" json:"description"`
	Priority    Priority `gorm:"size:25;not null" json:"priority"`
	// Date is captured once at creation and never recomputed.
	Date     string `gorm:"column:created_at;size:100;not null" json:"date"`
	Resolved bool   `gorm:"not null" json:"resolved"`
}

// TaskFields are validated values for a new task.
type TaskFields struct {
	Title       string
	Description string
	Priority    Priority
}

// TaskUpdate holds an edit; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *Priority
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil
}

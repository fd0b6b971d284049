package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a shared calendar entry.
type Event struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	CoupleID        uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID     uuid.UUID `gorm:"type:uuid;not null"`
	Title           string    `gorm:"not null"`
	Description     *string
	StartDate       time.Time `gorm:"not null;index"`
	EndDate         time.Time `gorm:"not null"`
	IsAllDay        bool      `gorm:"not null;default:false"`
	Location        *string
	ReminderMinutes *int
	Repeat          RepeatType `gorm:"not null;default:'NONE'"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

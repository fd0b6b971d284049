package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Bucket struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid"`
	CoupleID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID    uuid.UUID `gorm:"type:uuid;not null"`
	Title          string    `gorm:"not null"`
	Description    *string
	Category       *string
	IsCompleted    bool `gorm:"not null;default:false"`
	CompletedAt    *time.Time
	CompletedImage *string

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (b *Bucket) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

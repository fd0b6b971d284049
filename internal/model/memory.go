package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Memory struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	CoupleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null"`
	Title       string    `gorm:"not null"`
	Content     *string
	Date        time.Time `gorm:"not null"`
	Location    *string
	Images      []string `gorm:"serializer:json"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (m *Memory) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

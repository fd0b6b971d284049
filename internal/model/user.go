package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an app account. CoupleID is the owning side of the couple link.
type User struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Nickname     *string
	ProfileImage *string
	Birthday     *time.Time
	Gender       *GenderType
	GoogleID     *string    `gorm:"uniqueIndex"`
	CoupleID     *uuid.UUID `gorm:"type:uuid;index"`
	MbtiType     *string
	MbtiAnswers  map[string]string `gorm:"serializer:json"`
	PublicKey    *string
	IsActive     bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is never deleted; the only mutation is the single read-state flip.
type ChatMessage struct {
	ID       uuid.UUID `gorm:"primaryKey;type:uuid"`
	CoupleID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_couple_created,priority:1"`
	SenderID uuid.UUID `gorm:"type:uuid;not null"`
	Sender   *User     `gorm:"foreignKey:SenderID"`
	Content  *string
	Type     MessageType `gorm:"not null;default:'TEXT'"`
	ImageURL *string
	IsRead   bool `gorm:"not null;default:false"`
	ReadAt   *time.Time

	IsEncrypted      bool `gorm:"not null;default:false"`
	EncryptedContent *string
	EncryptedKey     *string
	IV               *string

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_chat_couple_created,priority:2"`
}

func (m *ChatMessage) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// FileObject records a presigned upload so the file can be resolved later.
type FileObject struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename    string    `gorm:"not null"`
	ContentType string    `gorm:"not null"`
	StorageKey  string    `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Couple{}, &ChatMessage{}, &Event{}, &Bucket{},
		&Expense{}, &Budget{}, &Memory{}, &Recommendation{}, &FileObject{},
	}
}

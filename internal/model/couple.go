package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Couple pairs two users. User2ID stays nil until somebody joins with the invite code.
type Couple struct {
	ID              uuid.UUID  `gorm:"primaryKey;type:uuid"`
	User1ID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	User2ID         *uuid.UUID `gorm:"type:uuid;index"`
	Anniversary     *time.Time
	InviteCode      *string `gorm:"uniqueIndex;size:6"`
	InviteExpiresAt *time.Time

	// shared chat key wrapped under each member's public key
	User1EncryptedSharedKey *string
	User2EncryptedSharedKey *string

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (c *Couple) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasMember reports whether userID is one of the two members.
func (c *Couple) HasMember(userID uuid.UUID) bool {
	return c.User1ID == userID || (c.User2ID != nil && *c.User2ID == userID)
}

// OtherMember returns the partner of self, or false when self is not a member or nobody joined yet.
func (c *Couple) OtherMember(self uuid.UUID) (uuid.UUID, bool) {
	switch {
	case c.User1ID == self && c.User2ID != nil:
		return *c.User2ID, true
	case c.User2ID != nil && *c.User2ID == self:
		return c.User1ID, true
	}
	return uuid.Nil, false
}

// IsComplete reports whether both members are present.
func (c *Couple) IsComplete() bool {
	return c.User2ID != nil
}

// InviteExpired reports whether the pending invite code is no longer usable at now.
func (c *Couple) InviteExpired(now time.Time) bool {
	return c.InviteExpiresAt == nil || now.After(*c.InviteExpiresAt)
}

// SharedKeyFor returns the shared key slot that belongs to userID.
func (c *Couple) SharedKeyFor(userID uuid.UUID) *string {
	if c.User1ID == userID {
		return c.User1EncryptedSharedKey
	}
	if c.User2ID != nil && *c.User2ID == userID {
		return c.User2EncryptedSharedKey
	}
	return nil
}

// SetSharedKeyFor stores key in the slot of userID; false when userID is not a member.
func (c *Couple) SetSharedKeyFor(userID uuid.UUID, key string) bool {
	switch {
	case c.User1ID == userID:
		c.User1EncryptedSharedKey = &key
	case c.User2ID != nil && *c.User2ID == userID:
		c.User2EncryptedSharedKey = &key
	default:
		return false
	}
	return true
}

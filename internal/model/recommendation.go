package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecommendedPlace struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Address  string `json:"address"`
}

// RecommendationResult is the generated date plan. EstimatedCost is in won.
type RecommendationResult struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Places        []RecommendedPlace `json:"places"`
	EstimatedTime string             `json:"estimatedTime"`
	EstimatedCost int64              `json:"estimatedCost"`
}

type RecommendationFeedback struct {
	Rating      int       `json:"rating"`
	Comment     *string   `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Recommendation struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	CoupleID        uuid.UUID `gorm:"type:uuid;not null;index"`
	RequestedByID   uuid.UUID `gorm:"type:uuid;not null"`
	LocationAddress *string
	Latitude        *float64
	Longitude       *float64
	Date            *time.Time
	Preferences     map[string]string       `gorm:"serializer:json"`
	Status          RecommendationStatus    `gorm:"not null;default:'PENDING';index"`
	Result          *RecommendationResult   `gorm:"serializer:json"`
	Feedback        *RecommendationFeedback `gorm:"serializer:json"`
	SavedEventID    *uuid.UUID              `gorm:"type:uuid"`

	CreatedAt   time.Time `gorm:"autoCreateTime"`
	CompletedAt *time.Time
}

func (r *Recommendation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

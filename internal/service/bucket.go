package service

import (
	"context"
	"time"

	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

type CreateBucketRequest struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=50"`
}

type UpdateBucketRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=100"`
	Description    *string `json:"description"`
	Category       *string `json:"category" validate:"omitempty,max=50"`
	IsCompleted    *bool   `json:"isCompleted"`
	CompletedImage *string `json:"completedImage"`
}

type BucketResponse struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Category       *string    `json:"category"`
	IsCompleted    bool       `json:"isCompleted"`
	CompletedAt    *time.Time `json:"completedAt"`
	CompletedImage *string    `json:"completedImage"`
	CreatedByID    uuid.UUID  `json:"createdById"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func NewBucketResponse(b *model.Bucket) BucketResponse {
	return BucketResponse{
		ID:             b.ID,
		Title:          b.Title,
		Description:    b.Description,
		Category:       b.Category,
		IsCompleted:    b.IsCompleted,
		CompletedAt:    b.CompletedAt,
		CompletedImage: b.CompletedImage,
		CreatedByID:    b.CreatedByID,
		CreatedAt:      b.CreatedAt,
	}
}

type BucketListResponse struct {
	Buckets        []BucketResponse `json:"buckets"`
	TotalCount     int              `json:"totalCount"`
	CompletedCount int              `json:"completedCount"`
}

type BucketService struct {
	Deps
	Buckets repo.BucketRepository
}

func NewBucketService(d Deps, buckets repo.BucketRepository) *BucketService {
	return &BucketService{Deps: d, Buckets: buckets}
}

func (s *BucketService) Create(ctx context.Context, userID uuid.UUID, req CreateBucketRequest) (*BucketResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	b := &model.Bucket{
		CoupleID:    c.ID,
		CreatedByID: userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if err := s.Buckets.CreateBucket(ctx, b); err != nil {
		return nil, err
	}
	s.announce(ctx, "ADDED", b, userID)
	resp := NewBucketResponse(b)
	return &resp, nil
}

func (s *BucketService) List(ctx context.Context, userID uuid.UUID) (*BucketListResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	buckets, err := s.Buckets.ListBuckets(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	out := &BucketListResponse{Buckets: make([]BucketResponse, 0, len(buckets)), TotalCount: len(buckets)}
	for i := range buckets {
		if buckets[i].IsCompleted {
			out.CompletedCount++
		}
		out.Buckets = append(out.Buckets, NewBucketResponse(&buckets[i]))
	}
	return out, nil
}

func (s *BucketService) Get(ctx context.Context, userID, id uuid.UUID) (*BucketResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.Buckets.GetBucket(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Bucket not found")
	}
	resp := NewBucketResponse(b)
	return &resp, nil
}

// Update announces COMPLETED when the item flips to completed and UPDATED otherwise.
func (s *BucketService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateBucketRequest) (*BucketResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.Buckets.GetBucket(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Bucket not found")
	}

	wasCompleted := b.IsCompleted
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Description != nil {
		b.Description = req.Description
	}
	if req.Category != nil {
		b.Category = req.Category
	}
	if req.CompletedImage != nil {
		b.CompletedImage = req.CompletedImage
	}
	if req.IsCompleted != nil {
		switch {
		case *req.IsCompleted && !b.IsCompleted:
			now := s.now()
			b.IsCompleted = true
			b.CompletedAt = &now
		case !*req.IsCompleted:
			b.IsCompleted = false
			b.CompletedAt = nil
		}
	}

	if err := s.Buckets.SaveBucket(ctx, b); err != nil {
		return nil, err
	}

	eventType := "UPDATED"
	if !wasCompleted && b.IsCompleted {
		eventType = "COMPLETED"
	}
	s.announce(ctx, eventType, b, userID)
	resp := NewBucketResponse(b)
	return &resp, nil
}

func (s *BucketService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return err
	}
	b, err := s.Buckets.GetBucket(ctx, c.ID, id)
	if err != nil {
		return notFound(err, "Bucket not found")
	}
	if err := s.Buckets.DeleteBucket(ctx, c.ID, id); err != nil {
		return notFound(err, "Bucket not found")
	}
	s.announce(ctx, "DELETED", b, userID)
	return nil
}

func (s *BucketService) announce(ctx context.Context, eventType string, b *model.Bucket, userID uuid.UUID) {
	s.publish(ctx, b.CoupleID, AreaBucket, BucketSyncMessage{
		EventType: eventType,
		Bucket: BucketData{
			ID:          b.ID,
			Title:       b.Title,
			Category:    b.Category,
			IsCompleted: b.IsCompleted,
			CreatedAt:   b.CreatedAt,
			CompletedAt: b.CompletedAt,
		},
		UserID:    userID,
		Timestamp: s.now(),
	})
}

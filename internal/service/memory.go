package service

import (
	"context"
	"time"

	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
)

const defaultMemoryPageSize = 20

type CreateMemoryRequest struct {
	Title    string   `json:"title" validate:"required,max=100"`
	Content  *string  `json:"content"`
	Date     string   `json:"date" validate:"required"`
	Location *string  `json:"location" validate:"omitempty,max=200"`
	Images   []string `json:"images" validate:"omitempty,max=20,dive,required"`
}

type UpdateMemoryRequest struct {
	Title    *string  `json:"title" validate:"omitempty,min=1,max=100"`
	Content  *string  `json:"content"`
	Date     *string  `json:"date"`
	Location *string  `json:"location" validate:"omitempty,max=200"`
	Images   []string `json:"images" validate:"omitempty,max=20,dive,required"`
}

type MemoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     *string   `json:"content"`
	Date        string    `json:"date"`
	Location    *string   `json:"location"`
	Images      []string  `json:"images"`
	CreatedByID uuid.UUID `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewMemoryResponse(m *model.Memory) MemoryResponse {
	return MemoryResponse{
		ID:          m.ID,
		Title:       m.Title,
		Content:     m.Content,
		Date:        formatDate(m.Date),
		Location:    m.Location,
		Images:      m.Images,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
	}
}

type MemoryListResponse struct {
	Memories   []MemoryResponse `json:"memories"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
}

// MemoryService keeps the couple's diary. Nothing here is broadcast.
type MemoryService struct {
	Deps
	Memories repo.MemoryRepository
}

func NewMemoryService(d Deps, memories repo.MemoryRepository) *MemoryService {
	return &MemoryService{Deps: d, Memories: memories}
}

func (s *MemoryService) Create(ctx context.Context, userID uuid.UUID, req CreateMemoryRequest) (*MemoryResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	m := &model.Memory{
		CoupleID:    c.ID,
		CreatedByID: userID,
		Title:       req.Title,
		Content:     req.Content,
		Date:        date,
		Location:    req.Location,
		Images:      req.Images,
	}
	if err := s.Memories.CreateMemory(ctx, m); err != nil {
		return nil, err
	}
	resp := NewMemoryResponse(m)
	return &resp, nil
}

func (s *MemoryService) List(ctx context.Context, userID uuid.UUID, page, size int) (*MemoryListResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := PageRequest(page, size, defaultMemoryPageSize)
	memories, total, err := s.Memories.ListMemories(ctx, c.ID, p)
	if err != nil {
		return nil, err
	}

	out := &MemoryListResponse{Memories: make([]MemoryResponse, 0, len(memories)), TotalCount: total, Page: p.Number, Size: p.Size}
	for i := range memories {
		out.Memories = append(out.Memories, NewMemoryResponse(&memories[i]))
	}
	return out, nil
}

func (s *MemoryService) Get(ctx context.Context, userID, id uuid.UUID) (*MemoryResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.Memories.GetMemory(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Memory not found")
	}
	resp := NewMemoryResponse(m)
	return &resp, nil
}

func (s *MemoryService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateMemoryRequest) (*MemoryResponse, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.Memories.GetMemory(ctx, c.ID, id)
	if err != nil {
		return nil, notFound(err, "Memory not found")
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Content != nil {
		m.Content = req.Content
	}
	if req.Date != nil {
		if m.Date, err = ParseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.Location != nil {
		m.Location = req.Location
	}
	if req.Images != nil {
		m.Images = req.Images
	}

	if err := s.Memories.SaveMemory(ctx, m); err != nil {
		return nil, err
	}
	resp := NewMemoryResponse(m)
	return &resp, nil
}

func (s *MemoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return err
	}
	return notFound(s.Memories.DeleteMemory(ctx, c.ID, id), "Memory not found")
}

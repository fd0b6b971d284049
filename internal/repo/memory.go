package repo

import (
	"context"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MemoryRepository interface {
	CreateMemory(ctx context.Context, m *model.Memory) error
	GetMemory(ctx context.Context, coupleID, id uuid.UUID) (*model.Memory, error)
	ListMemories(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.Memory, int64, error)
	SaveMemory(ctx context.Context, m *model.Memory) error
	DeleteMemory(ctx context.Context, coupleID, id uuid.UUID) error
}

type memoryRepo struct {
	scoped[model.Memory]
}

func NewMemoryRepository(db *gorm.DB) MemoryRepository {
	return &memoryRepo{scoped[model.Memory]{db: db}}
}

func (r *memoryRepo) CreateMemory(ctx context.Context, m *model.Memory) error {
	return r.create(ctx, m)
}

func (r *memoryRepo) GetMemory(ctx context.Context, coupleID, id uuid.UUID) (*model.Memory, error) {
	return r.get(ctx, coupleID, id)
}

func (r *memoryRepo) ListMemories(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.Memory, int64, error) {
	return r.page(ctx, coupleID, "date DESC", page)
}

func (r *memoryRepo) SaveMemory(ctx context.Context, m *model.Memory) error {
	return r.save(ctx, m)
}

func (r *memoryRepo) DeleteMemory(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.delete(ctx, coupleID, id)
}

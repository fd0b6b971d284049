package repo

import (
	"context"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository interface {
	CreateFile(ctx context.Context, f *model.FileObject) error
	GetFile(ctx context.Context, id uuid.UUID) (*model.FileObject, error)
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) CreateFile(ctx context.Context, f *model.FileObject) error {
	return conn(ctx, r.db).Create(f).Error
}

func (r *fileRepo) GetFile(ctx context.Context, id uuid.UUID) (*model.FileObject, error) {
	var f model.FileObject
	if err := conn(ctx, r.db).First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

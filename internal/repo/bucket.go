package repo

import (
	"context"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BucketRepository interface {
	CreateBucket(ctx context.Context, b *model.Bucket) error
	GetBucket(ctx context.Context, coupleID, id uuid.UUID) (*model.Bucket, error)
	ListBuckets(ctx context.Context, coupleID uuid.UUID) ([]model.Bucket, error)
	SaveBucket(ctx context.Context, b *model.Bucket) error
	DeleteBucket(ctx context.Context, coupleID, id uuid.UUID) error
}

type bucketRepo struct {
	scoped[model.Bucket]
}

func NewBucketRepository(db *gorm.DB) BucketRepository {
	return &bucketRepo{scoped[model.Bucket]{db: db}}
}

func (r *bucketRepo) CreateBucket(ctx context.Context, b *model.Bucket) error {
	return r.create(ctx, b)
}

func (r *bucketRepo) GetBucket(ctx context.Context, coupleID, id uuid.UUID) (*model.Bucket, error) {
	return r.get(ctx, coupleID, id)
}

func (r *bucketRepo) ListBuckets(ctx context.Context, coupleID uuid.UUID) ([]model.Bucket, error) {
	var out []model.Bucket
	err := conn(ctx, r.db).Where("couple_id = ?", coupleID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *bucketRepo) SaveBucket(ctx context.Context, b *model.Bucket) error {
	return r.save(ctx, b)
}

func (r *bucketRepo) DeleteBucket(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.delete(ctx, coupleID, id)
}

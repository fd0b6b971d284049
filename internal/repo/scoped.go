package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// scoped holds the queries shared by every couple-owned table with soft delete.
type scoped[T any] struct {
	db *gorm.DB
}

func (s scoped[T]) create(ctx context.Context, v *T) error {
	return conn(ctx, s.db).Create(v).Error
}

func (s scoped[T]) get(ctx context.Context, coupleID, id uuid.UUID) (*T, error) {
	var v T
	if err := conn(ctx, s.db).Where("id = ? AND couple_id = ?", id, coupleID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s scoped[T]) save(ctx context.Context, v *T) error {
	return conn(ctx, s.db).Save(v).Error
}

func (s scoped[T]) delete(ctx context.Context, coupleID, id uuid.UUID) error {
	var v T
	res := conn(ctx, s.db).Where("id = ? AND couple_id = ?", id, coupleID).Delete(&v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s scoped[T]) page(ctx context.Context, coupleID uuid.UUID, order string, p Page) ([]T, int64, error) {
	db := conn(ctx, s.db)

	var total int64
	if err := db.Model(new(T)).Where("couple_id = ?", coupleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []T
	err := db.Where("couple_id = ?", coupleID).Order(order).Offset(p.Offset()).Limit(p.Size).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

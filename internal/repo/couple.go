package repo

import (
	"context"
	"errors"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CoupleRepository interface {
	CreateCouple(ctx context.Context, c *model.Couple) error
	GetCoupleByID(ctx context.Context, id uuid.UUID) (*model.Couple, error)
	GetCoupleByInviteCode(ctx context.Context, code string) (*model.Couple, error)
	// GetCoupleByMember finds the live couple where userID is either member.
	GetCoupleByMember(ctx context.Context, userID uuid.UUID) (*model.Couple, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	SaveCouple(ctx context.Context, c *model.Couple) error
	DeleteCouple(ctx context.Context, id uuid.UUID) error
}

type coupleRepo struct {
	db *gorm.DB
}

func NewCoupleRepository(db *gorm.DB) CoupleRepository {
	return &coupleRepo{db: db}
}

func (r *coupleRepo) CreateCouple(ctx context.Context, c *model.Couple) error {
	return conn(ctx, r.db).Create(c).Error
}

func (r *coupleRepo) GetCoupleByID(ctx context.Context, id uuid.UUID) (*model.Couple, error) {
	var c model.Couple
	if err := conn(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *coupleRepo) GetCoupleByInviteCode(ctx context.Context, code string) (*model.Couple, error) {
	var c model.Couple
	if err := conn(ctx, r.db).First(&c, "invite_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *coupleRepo) GetCoupleByMember(ctx context.Context, userID uuid.UUID) (*model.Couple, error) {
	var c model.Couple
	err := conn(ctx, r.db).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InviteCodeExists also sees soft-deleted rows, the unique index covers them too.
func (r *coupleRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	var c model.Couple
	err := conn(ctx, r.db).Unscoped().Select("id").First(&c, "invite_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *coupleRepo) SaveCouple(ctx context.Context, c *model.Couple) error {
	return conn(ctx, r.db).Save(c).Error
}

// DeleteCouple soft-deletes the row and releases any pending invite code.
func (r *coupleRepo) DeleteCouple(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Model(&model.Couple{}).Where("id = ?", id).
		Updates(map[string]any{"invite_code": nil, "invite_expires_at": nil}).Error; err != nil {
		return err
	}
	res := db.Delete(&model.Couple{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

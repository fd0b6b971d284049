package repo

import (
	"context"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository is the user storage contract used by services.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	// SetCouple points the user at coupleID, or clears the link when coupleID is nil.
	SetCouple(ctx context.Context, userID uuid.UUID, coupleID *uuid.UUID) error
	ClearCoupleLinks(ctx context.Context, coupleID uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.first(ctx, "google_id = ?", googleID)
}

func (r *userRepo) first(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	if err := conn(ctx, r.db).Where(query, arg).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateUser(ctx context.Context, user *model.User) error {
	return conn(ctx, r.db).Save(user).Error
}

func (r *userRepo) SetCouple(ctx context.Context, userID uuid.UUID, coupleID *uuid.UUID) error {
	res := conn(ctx, r.db).Model(&model.User{}).Where("id = ?", userID).Update("couple_id", coupleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) ClearCoupleLinks(ctx context.Context, coupleID uuid.UUID) error {
	return conn(ctx, r.db).Model(&model.User{}).
		Where("couple_id = ?", coupleID).
		Update("couple_id", nil).Error
}

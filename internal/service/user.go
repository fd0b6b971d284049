package service

import (
	"context"
	"errors"
	"strings"

	"ieum/internal/apperr"
	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserResponse struct {
	ID           uuid.UUID         `json:"id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Nickname     *string           `json:"nickname"`
	ProfileImage *string           `json:"profileImage"`
	Birthday     *string           `json:"birthday"`
	Gender       *model.GenderType `json:"gender"`
	CoupleID     *uuid.UUID        `json:"coupleId"`
	MbtiType     *string           `json:"mbtiType"`
	IsActive     bool              `json:"isActive"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Nickname:     u.Nickname,
		ProfileImage: u.ProfileImage,
		Birthday:     formatDatePtr(u.Birthday),
		Gender:       u.Gender,
		CoupleID:     u.CoupleID,
		MbtiType:     u.MbtiType,
		IsActive:     u.IsActive,
	}
}

type RegisterRequest struct {
	Email        string  `json:"email" validate:"required,email"`
	Name         string  `json:"name" validate:"required,max=50"`
	Nickname     *string `json:"nickname" validate:"omitempty,max=50"`
	ProfileImage *string `json:"profileImage"`
	Birthday     *string `json:"birthday"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

type UpdateUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=50"`
	Nickname     *string `json:"nickname" validate:"omitempty,max=50"`
	ProfileImage *string `json:"profileImage"`
	Birthday     *string `json:"birthday"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
}

type PublicKeyRequest struct {
	PublicKey string `json:"publicKey" validate:"required"`
}

type PublicKeyResponse struct {
	UserID    uuid.UUID `json:"userId"`
	PublicKey *string   `json:"publicKey"`
	HasKey    bool      `json:"hasKey"`
}

// UserService owns profiles and E2EE public keys.
type UserService struct {
	Deps
}

func NewUserService(d Deps) *UserService {
	return &UserService{Deps: d}
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.Users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	birthday, err := parseOptionalDate(req.Birthday)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Nickname:     req.Nickname,
		ProfileImage: req.ProfileImage,
		Birthday:     birthday,
		Gender:       genderPtr(req.Gender),
		IsActive:     true,
	}
	created, err := s.Users.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log().Infow("user registered", "user_id", created.ID)
	resp := NewUserResponse(created)
	return &resp, nil
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := NewUserResponse(u)
	return &resp, nil
}

func (s *UserService) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Nickname != nil {
		u.Nickname = req.Nickname
	}
	if req.ProfileImage != nil {
		u.ProfileImage = req.ProfileImage
	}
	if req.Birthday != nil {
		if u.Birthday, err = parseOptionalDate(req.Birthday); err != nil {
			return nil, err
		}
	}
	if req.Gender != nil {
		u.Gender = genderPtr(req.Gender)
	}
	if err := s.Users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	resp := NewUserResponse(u)
	return &resp, nil
}

func (s *UserService) SetPublicKey(ctx context.Context, userID uuid.UUID, key string) (*PublicKeyResponse, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.PublicKey = &key
	if err := s.Users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return publicKeyOf(u), nil
}

func (s *UserService) PublicKey(ctx context.Context, userID uuid.UUID) (*PublicKeyResponse, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicKeyOf(u), nil
}

func (s *UserService) PartnerPublicKey(ctx context.Context, userID uuid.UUID) (*PublicKeyResponse, error) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	partnerID, ok := c.OtherMember(userID)
	if !ok {
		return nil, apperr.NotFound("Partner not found")
	}
	return s.PublicKey(ctx, partnerID)
}

func publicKeyOf(u *model.User) *PublicKeyResponse {
	return &PublicKeyResponse{UserID: u.ID, PublicKey: u.PublicKey, HasKey: u.PublicKey != nil && *u.PublicKey != ""}
}

func genderPtr(s *string) *model.GenderType {
	if s == nil || *s == "" {
		return nil
	}
	g := model.GenderType(*s)
	return &g
}

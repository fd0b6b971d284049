package service

import (
	"context"
	"errors"
	"strings"

	"ieum/internal/apperr"
	"ieum/internal/auth"
	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityVerifier checks a third-party ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Generate(userID uuid.UUID, email string) (string, error)
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

type AuthService struct {
	Deps
	verifier IdentityVerifier
	tokens   TokenIssuer
}

func NewAuthService(d Deps, verifier IdentityVerifier, tokens TokenIssuer) *AuthService {
	return &AuthService{Deps: d, verifier: verifier, tokens: tokens}
}

// GoogleLogin signs in by Google identity: known google id, then known email (linked), else a new user.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*AuthResponse, error) {
	ident, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.log().Warnw("google token rejected", "error", err)
		return nil, apperr.Unauthorized("Invalid Google ID token")
	}

	var user *model.User
	err = s.Tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.findOrCreate(ctx, ident)
		return err
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{AccessToken: token, User: NewUserResponse(user)}, nil
}

func (s *AuthService) findOrCreate(ctx context.Context, ident *auth.GoogleIdentity) (*model.User, error) {
	if u, err := s.Users.GetUserByGoogleID(ctx, ident.Subject); err == nil {
		return u, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.ToLower(ident.Email)
	u, err := s.Users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		u.GoogleID = &ident.Subject
		if u.ProfileImage == nil && ident.Picture != "" {
			u.ProfileImage = &ident.Picture
		}
		if err := s.Users.UpdateUser(ctx, u); err != nil {
			return nil, err
		}
		s.log().Infow("linked google account", "user_id", u.ID)
		return u, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	name := ident.Name
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	u = &model.User{Email: email, Name: name, GoogleID: &ident.Subject, IsActive: true}
	if ident.Picture != "" {
		u.ProfileImage = &ident.Picture
	}
	created, err := s.Users.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log().Infow("user created from google sign-in", "user_id", created.ID)
	return created, nil
}

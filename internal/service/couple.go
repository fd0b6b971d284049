package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"ieum/internal/apperr"
	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// no 0/O or 1/I, codes are read aloud and typed by hand
	inviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLength = 6
	inviteTTL        = 24 * time.Hour
	inviteAttempts   = 10
)

type InviteResponse struct {
	InviteCode string    `json:"inviteCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type JoinRequest struct {
	InviteCode string `json:"inviteCode" validate:"required,len=6"`
}

type UpdateCoupleRequest struct {
	Anniversary *string `json:"anniversary"`
}

type SharedKeyRequest struct {
	EncryptedSharedKey string `json:"encryptedSharedKey" validate:"required"`
}

type SharedKeyResponse struct {
	EncryptedSharedKey *string `json:"encryptedSharedKey"`
	HasSharedKey       bool    `json:"hasSharedKey"`
}

type CoupleResponse struct {
	ID          uuid.UUID     `json:"id"`
	Anniversary *string       `json:"anniversary"`
	Partner     *UserResponse `json:"partner"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// CoupleService runs the invite-code pairing lifecycle and couple-level settings.
type CoupleService struct {
	Deps
	codeGen func() (string, error)
}

func NewCoupleService(d Deps) *CoupleService {
	return &CoupleService{Deps: d, codeGen: randomInviteCode}
}

func randomInviteCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(inviteAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

func (s *CoupleService) CreateInvite(ctx context.Context, userID uuid.UUID) (*InviteResponse, error) {
	var resp *InviteResponse
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		u, err := s.user(ctx, userID)
		if err != nil {
			return err
		}
		if u.CoupleID != nil {
			return apperr.Conflict("User already has a couple")
		}

		code, err := s.uniqueCode(ctx)
		if err != nil {
			return err
		}
		expires := s.now().Add(inviteTTL)
		c := &model.Couple{User1ID: userID, InviteCode: &code, InviteExpiresAt: &expires}
		if err := s.Couples.CreateCouple(ctx, c); err != nil {
			return err
		}
		if err := s.Users.SetCouple(ctx, userID, &c.ID); err != nil {
			return err
		}
		resp = &InviteResponse{InviteCode: code, ExpiresAt: expires}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().Infow("invite created", "user_id", userID)
	return resp, nil
}

func (s *CoupleService) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < inviteAttempts; i++ {
		code, err := s.codeGen()
		if err != nil {
			return "", err
		}
		exists, err := s.Couples.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique invite code")
}

// Join consumes the invite code: caller becomes user2 and both sides of the link change in one transaction.
func (s *CoupleService) Join(ctx context.Context, userID uuid.UUID, code string) (*CoupleResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var joined *model.Couple
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		u, err := s.user(ctx, userID)
		if err != nil {
			return err
		}
		if u.CoupleID != nil {
			return apperr.Conflict("User already has a couple")
		}

		c, err := s.Couples.GetCoupleByInviteCode(ctx, code)
		if err != nil {
			return notFound(err, "Invalid invite code")
		}
		if c.InviteExpired(s.now()) {
			return apperr.BadRequest("Invite code has expired")
		}
		if c.IsComplete() {
			return apperr.Conflict("Couple already complete")
		}
		if c.User1ID == userID {
			return apperr.BadRequest("Cannot join your own couple")
		}

		c.User2ID = &userID
		c.InviteCode = nil
		c.InviteExpiresAt = nil
		if err := s.Couples.SaveCouple(ctx, c); err != nil {
			return err
		}
		if err := s.Users.SetCouple(ctx, userID, &c.ID); err != nil {
			return err
		}
		joined = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log().Infow("couple joined", "couple_id", joined.ID, "user_id", userID)
	return s.response(ctx, joined, userID)
}

func (s *CoupleService) Me(ctx context.Context, userID uuid.UUID) (*CoupleResponse, error) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.response(ctx, c, userID)
}

func (s *CoupleService) UpdateAnniversary(ctx context.Context, userID uuid.UUID, req UpdateCoupleRequest) (*CoupleResponse, error) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Anniversary != nil {
		if c.Anniversary, err = parseOptionalDate(req.Anniversary); err != nil {
			return nil, err
		}
	}
	if err := s.Couples.SaveCouple(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, c.ID, AreaAnniversary, AnniversarySyncMessage{
		EventType:   "ANNIVERSARY_UPDATED",
		Anniversary: AnniversaryData{Date: formatDatePtr(c.Anniversary)},
		UserID:      userID,
		Timestamp:   s.now(),
	})
	return s.response(ctx, c, userID)
}

// Delete unlinks both members and soft-deletes the couple. Owned history rows are left in place.
func (s *CoupleService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.Tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.coupleOf(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.Users.ClearCoupleLinks(ctx, c.ID); err != nil {
			return err
		}
		if err := s.Couples.DeleteCouple(ctx, c.ID); err != nil {
			return err
		}
		s.log().Infow("couple deleted", "couple_id", c.ID, "user_id", userID)
		return nil
	})
}

func (s *CoupleService) SetMySharedKey(ctx context.Context, userID uuid.UUID, key string) (*SharedKeyResponse, error) {
	return s.setSharedKey(ctx, userID, key, false)
}

// SetPartnerSharedKey stores a key wrapped for the partner, written by the member who generated it.
func (s *CoupleService) SetPartnerSharedKey(ctx context.Context, userID uuid.UUID, key string) (*SharedKeyResponse, error) {
	return s.setSharedKey(ctx, userID, key, true)
}

func (s *CoupleService) setSharedKey(ctx context.Context, userID uuid.UUID, key string, forPartner bool) (*SharedKeyResponse, error) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	owner := userID
	if forPartner {
		p, ok := c.OtherMember(userID)
		if !ok {
			return nil, apperr.NotFound("Partner not found")
		}
		owner = p
	}
	c.SetSharedKeyFor(owner, key)
	if err := s.Couples.SaveCouple(ctx, c); err != nil {
		return nil, err
	}
	return sharedKeyOf(c.SharedKeyFor(owner)), nil
}

func (s *CoupleService) MySharedKey(ctx context.Context, userID uuid.UUID) (*SharedKeyResponse, error) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sharedKeyOf(c.SharedKeyFor(userID)), nil
}

func sharedKeyOf(k *string) *SharedKeyResponse {
	return &SharedKeyResponse{EncryptedSharedKey: k, HasSharedKey: k != nil && *k != ""}
}

// IsMember reports whether userID belongs to the live couple coupleID.
func (s *CoupleService) IsMember(ctx context.Context, coupleID, userID uuid.UUID) (bool, error) {
	c, err := s.Couples.GetCoupleByID(ctx, coupleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return c.HasMember(userID), nil
}

func (s *CoupleService) response(ctx context.Context, c *model.Couple, self uuid.UUID) (*CoupleResponse, error) {
	resp := &CoupleResponse{ID: c.ID, Anniversary: formatDatePtr(c.Anniversary), CreatedAt: c.CreatedAt}
	if partnerID, ok := c.OtherMember(self); ok {
		p, err := s.user(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		pr := NewUserResponse(p)
		resp.Partner = &pr
	}
	return resp, nil
}

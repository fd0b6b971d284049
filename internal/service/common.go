package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ieum/internal/apperr"
	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Broadcaster publishes a synchronization envelope to the couple topic of a feature area.
// An empty area is the bare couple topic.
type Broadcaster interface {
	Broadcast(ctx context.Context, coupleID uuid.UUID, area string, envelope any) error
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Deps bundles the collaborators shared by the feature services.
type Deps struct {
	Tx          repo.Transactor
	Users       repo.UserRepository
	Couples     repo.CoupleRepository
	Broadcaster Broadcaster
	Logger      *zap.SugaredLogger
	Now         func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) log() *zap.SugaredLogger {
	if d.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return d.Logger
}

// publish is fire-and-forget: a failed broadcast never fails the mutation that already committed.
func (d Deps) publish(ctx context.Context, coupleID uuid.UUID, area string, envelope any) {
	if d.Broadcaster == nil {
		return
	}
	if err := d.Broadcaster.Broadcast(ctx, coupleID, area, envelope); err != nil {
		d.log().Warnw("broadcast failed", "couple_id", coupleID, "area", area, "error", err)
	}
}

func (d Deps) user(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := d.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return u, nil
}

// coupleOf returns the live couple of userID.
func (d Deps) coupleOf(ctx context.Context, userID uuid.UUID) (*model.Couple, error) {
	c, err := d.Couples.GetCoupleByMember(ctx, userID)
	if err != nil {
		return nil, notFound(err, "Couple not found")
	}
	return c, nil
}

// completeCoupleOf is coupleOf for features that need both members.
func (d Deps) completeCoupleOf(ctx context.Context, userID uuid.UUID) (*model.Couple, error) {
	c, err := d.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !c.IsComplete() {
		return nil, apperr.BadRequest("Couple is not complete")
	}
	return c, nil
}

// notFound turns gorm.ErrRecordNotFound into a typed not-found error and passes other errors through.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s", msg)
	}
	return err
}

// ParseDate accepts "YYYY-MM-DD" and returns midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.BadRequest("Invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

// ParseDateTime accepts RFC3339 or a zone-less "YYYY-MM-DDTHH:MM:SS" (read as UTC).
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperr.BadRequest("Invalid date-time %q", s)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// parseOptionalDate parses a nullable date field; an empty string clears it.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PageRequest normalises page/size query values.
func PageRequest(page, size, defaultSize int) repo.Page {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > 100 {
		size = 100
	}
	return repo.Page{Number: page, Size: size}
}

package repo

import (
	"context"
	"time"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	GetEvent(ctx context.Context, coupleID, id uuid.UUID) (*model.Event, error)
	ListEvents(ctx context.Context, coupleID uuid.UUID) ([]model.Event, error)
	// ListEventsInRange returns events fully inside [from, to], ordered by start.
	ListEventsInRange(ctx context.Context, coupleID uuid.UUID, from, to time.Time) ([]model.Event, error)
	ListUpcomingEvents(ctx context.Context, coupleID uuid.UUID, from time.Time, limit int) ([]model.Event, error)
	SaveEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, coupleID, id uuid.UUID) error
}

type eventRepo struct {
	scoped[model.Event]
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{scoped[model.Event]{db: db}}
}

func (r *eventRepo) CreateEvent(ctx context.Context, e *model.Event) error {
	return r.create(ctx, e)
}

func (r *eventRepo) GetEvent(ctx context.Context, coupleID, id uuid.UUID) (*model.Event, error) {
	return r.get(ctx, coupleID, id)
}

func (r *eventRepo) ListEvents(ctx context.Context, coupleID uuid.UUID) ([]model.Event, error) {
	var out []model.Event
	err := conn(ctx, r.db).Where("couple_id = ?", coupleID).Order("start_date").Find(&out).Error
	return out, err
}

func (r *eventRepo) ListEventsInRange(ctx context.Context, coupleID uuid.UUID, from, to time.Time) ([]model.Event, error) {
	var out []model.Event
	err := conn(ctx, r.db).
		Where("couple_id = ? AND start_date >= ? AND end_date <= ?", coupleID, from, to).
		Order("start_date").
		Find(&out).Error
	return out, err
}

func (r *eventRepo) ListUpcomingEvents(ctx context.Context, coupleID uuid.UUID, from time.Time, limit int) ([]model.Event, error) {
	var out []model.Event
	err := conn(ctx, r.db).
		Where("couple_id = ? AND start_date >= ?", coupleID, from).
		Order("start_date").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *eventRepo) SaveEvent(ctx context.Context, e *model.Event) error {
	return r.save(ctx, e)
}

func (r *eventRepo) DeleteEvent(ctx context.Context, coupleID, id uuid.UUID) error {
	return r.delete(ctx, coupleID, id)
}

package repo

import (
	"context"
	"time"

	"ieum/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, m *model.ChatMessage) error
	// ListMessages returns one page newest first, with senders loaded, plus the total count.
	ListMessages(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.ChatMessage, int64, error)
	LatestMessage(ctx context.Context, coupleID uuid.UUID) (*model.ChatMessage, error)
	CountUnread(ctx context.Context, coupleID, readerID uuid.UUID) (int64, error)
	// MarkAllRead flips every unread message the reader did not send.
	MarkAllRead(ctx context.Context, coupleID, readerID uuid.UUID, at time.Time) (int64, error)
	// MarkRead flips the listed messages that qualify and returns the ids actually changed.
	MarkRead(ctx context.Context, coupleID, readerID uuid.UUID, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) CreateMessage(ctx context.Context, m *model.ChatMessage) error {
	return conn(ctx, r.db).Create(m).Error
}

func (r *chatRepo) ListMessages(ctx context.Context, coupleID uuid.UUID, page Page) ([]model.ChatMessage, int64, error) {
	db := conn(ctx, r.db)

	var total int64
	if err := db.Model(&model.ChatMessage{}).Where("couple_id = ?", coupleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []model.ChatMessage
	err := db.Preload("Sender").
		Where("couple_id = ?", coupleID).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *chatRepo) LatestMessage(ctx context.Context, coupleID uuid.UUID) (*model.ChatMessage, error) {
	var m model.ChatMessage
	err := conn(ctx, r.db).Preload("Sender").
		Where("couple_id = ?", coupleID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *chatRepo) unread(ctx context.Context, coupleID, readerID uuid.UUID) *gorm.DB {
	return conn(ctx, r.db).Model(&model.ChatMessage{}).
		Where("couple_id = ? AND sender_id <> ? AND is_read = ?", coupleID, readerID, false)
}

func (r *chatRepo) CountUnread(ctx context.Context, coupleID, readerID uuid.UUID) (int64, error) {
	var n int64
	err := r.unread(ctx, coupleID, readerID).Count(&n).Error
	return n, err
}

func (r *chatRepo) MarkAllRead(ctx context.Context, coupleID, readerID uuid.UUID, at time.Time) (int64, error) {
	res := r.unread(ctx, coupleID, readerID).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *chatRepo) MarkRead(ctx context.Context, coupleID, readerID uuid.UUID, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}

	var flipped []uuid.UUID
	if err := r.unread(ctx, coupleID, readerID).Where("id IN ?", ids).Pluck("id", &flipped).Error; err != nil {
		return nil, err
	}
	if len(flipped) == 0 {
		return []uuid.UUID{}, nil
	}
	err := r.unread(ctx, coupleID, readerID).Where("id IN ?", flipped).
		Updates(map[string]any{"is_read": true, "read_at": at}).Error
	if err != nil {
		return nil, err
	}
	return flipped, nil
}

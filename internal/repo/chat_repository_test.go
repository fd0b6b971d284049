package repo

import (
	"context"
	"testing"
	"time"

	"ieum/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessages(t *testing.T, r ChatRepository, coupleID, sender uuid.UUID, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		text := "hi"
		m := &model.ChatMessage{CoupleID: coupleID, SenderID: sender, Content: &text, Type: model.MessageText}
		require.NoError(t, r.CreateMessage(context.Background(), m))
		ids = append(ids, m.ID)
	}
	return ids
}

func TestChatRepository_UnreadExcludesOwnMessages(t *testing.T) {
	db := newTestDB(t)
	r := NewChatRepository(db)
	ctx := context.Background()

	a := mustUser(t, db, "a@ieum.app")
	b := mustUser(t, db, "b@ieum.app")
	coupleID := uuid.New()

	seedMessages(t, r, coupleID, a.ID, 3)
	seedMessages(t, r, coupleID, b.ID, 2)

	n, err := r.CountUnread(ctx, coupleID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = r.CountUnread(ctx, coupleID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestChatRepository_MarkReadIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := NewChatRepository(db)
	ctx := context.Background()

	a := mustUser(t, db, "a@ieum.app")
	b := mustUser(t, db, "b@ieum.app")
	coupleID := uuid.New()

	fromA := seedMessages(t, r, coupleID, a.ID, 2)
	fromB := seedMessages(t, r, coupleID, b.ID, 1)

	first := time.Now().UTC().Truncate(time.Second)
	flipped, err := r.MarkRead(ctx, coupleID, b.ID, append(fromA, fromB...), first)
	require.NoError(t, err)
	assert.ElementsMatch(t, fromA, flipped, "own message must not be flipped")

	flipped, err = r.MarkRead(ctx, coupleID, b.ID, fromA, first.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, flipped)

	var m model.ChatMessage
	require.NoError(t, db.First(&m, "id = ?", fromA[0]).Error)
	assert.True(t, m.IsRead)
	if assert.NotNil(t, m.ReadAt) {
		assert.True(t, m.ReadAt.Equal(first), "read timestamp must be unchanged")
	}

	// other couples are untouched
	flipped, err = r.MarkRead(ctx, uuid.New(), b.ID, fromA, first)
	require.NoError(t, err)
	assert.Empty(t, flipped)
}

func TestChatRepository_ListNewestFirstAndMarkAll(t *testing.T) {
	db := newTestDB(t)
	r := NewChatRepository(db)
	ctx := context.Background()

	a := mustUser(t, db, "a@ieum.app")
	b := mustUser(t, db, "b@ieum.app")
	coupleID := uuid.New()

	seedMessages(t, r, coupleID, a.ID, 3)

	msgs, total, err := r.ListMessages(ctx, coupleID, Page{Number: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, msgs, 2)
	assert.False(t, msgs[0].CreatedAt.Before(msgs[1].CreatedAt))
	if assert.NotNil(t, msgs[0].Sender) {
		assert.Equal(t, "a@ieum.app", msgs[0].Sender.Email)
	}

	n, err := r.MarkAllRead(ctx, coupleID, b.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = r.MarkAllRead(ctx, coupleID, b.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	last, err := r.LatestMessage(ctx, coupleID)
	require.NoError(t, err)
	assert.Equal(t, coupleID, last.CoupleID)
}

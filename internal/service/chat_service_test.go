package service

import (
	"context"
	"testing"

	"ieum/internal/apperr"
	"ieum/internal/model"
	"ieum/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_SendBroadcastsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewChatService(f.d, repo.NewChatRepository(f.db))
	a, _, coupleID := f.pair(t)

	msg, err := svc.SendMessage(ctx, a.ID, coupleID, SendMessageRequest{Content: strPtr("hello"), TempID: strPtr("tmp-1")})
	require.NoError(t, err)
	assert.Equal(t, model.MessageText, msg.Type)
	assert.Equal(t, a.ID, msg.SenderID)
	assert.Equal(t, a.Name, msg.SenderName)
	require.NotNil(t, msg.TempID)
	assert.Equal(t, "tmp-1", *msg.TempID)

	require.Len(t, f.bc.Calls, 1)
	call := f.bc.Calls[0]
	assert.Equal(t, coupleID, call.Arguments.Get(1))
	assert.Equal(t, AreaCouple, call.Arguments.String(2))
	sync, ok := call.Arguments.Get(3).(ChatSyncMessage)
	require.True(t, ok)
	assert.Equal(t, "NEW_MESSAGE", sync.EventType)
	assert.Equal(t, msg.ID, sync.Message.ID)
}

func TestChatService_SendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewChatService(f.d, repo.NewChatRepository(f.db))
	a, _, coupleID := f.pair(t)

	tests := []struct {
		name string
		req  SendMessageRequest
	}{
		{"blank text", SendMessageRequest{Type: model.MessageText, Content: strPtr("  ")}},
		{"image without url", SendMessageRequest{Type: model.MessageImage}},
		{"shared without content", SendMessageRequest{Type: model.MessageSharedPlace}},
		{"unknown type", SendMessageRequest{Type: "VIDEO", Content: strPtr("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctx, a.ID, coupleID, tt.req)
			assert.True(t, apperr.Is(err, apperr.KindBadRequest), "got %v", err)
		})
	}
	assert.Empty(t, f.bc.Calls)
}

func TestChatService_RoomChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewChatService(f.d, repo.NewChatRepository(f.db))
	a, _, _ := f.pair(t)

	_, err := svc.SendMessage(ctx, a.ID, uuid.New(), SendMessageRequest{Content: strPtr("hi")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Chat room not found")

	// a pending couple can look at its room but not post
	solo := f.user(t, "solo@example.com")
	inv, err := NewCoupleService(f.d).CreateInvite(ctx, solo.ID)
	require.NoError(t, err)
	require.NotEmpty(t, inv.InviteCode)

	room, err := svc.Room(ctx, solo.ID)
	require.NoError(t, err)
	assert.Nil(t, room.PartnerID)
	assert.Nil(t, room.LastMessage)

	_, err = svc.SendMessage(ctx, solo.ID, room.CoupleID, SendMessageRequest{Content: strPtr("hi")})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	assert.EqualError(t, err, "Couple is not complete")
}

func TestChatService_EncryptedKeepsNoPlaintext(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat := repo.NewChatRepository(f.db)
	svc := NewChatService(f.d, chat)
	a, _, coupleID := f.pair(t)

	_, err := svc.SendEncryptedMessage(ctx, a.ID, coupleID, E2EEMessageRequest{EncryptedContent: "c"})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	msg, err := svc.SendEncryptedMessage(ctx, a.ID, coupleID, E2EEMessageRequest{
		EncryptedContent: "Y2lwaGVy", EncryptedKey: "a2V5", IV: "aXY=",
	})
	require.NoError(t, err)
	assert.True(t, msg.IsEncrypted)
	assert.Nil(t, msg.Content)

	stored, err := chat.LatestMessage(ctx, coupleID)
	require.NoError(t, err)
	assert.Nil(t, stored.Content)
	assert.Equal(t, "Y2lwaGVy", *stored.EncryptedContent)
}

func TestChatService_ReadReceipts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewChatService(f.d, repo.NewChatRepository(f.db))
	a, b, coupleID := f.pair(t)

	m1, err := svc.SendMessage(ctx, a.ID, coupleID, SendMessageRequest{Content: strPtr("one")})
	require.NoError(t, err)
	m2, err := svc.SendMessage(ctx, a.ID, coupleID, SendMessageRequest{Content: strPtr("two")})
	require.NoError(t, err)

	room, err := svc.Room(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), room.UnreadCount)
	f.bc.reset()

	// the sender cannot mark its own messages
	receipt, err := svc.MarkRead(ctx, a.ID, coupleID, []uuid.UUID{m1.ID})
	require.NoError(t, err)
	assert.Empty(t, receipt.MessageIDs)
	assert.Empty(t, f.bc.Calls)

	receipt, err = svc.MarkRead(ctx, b.ID, coupleID, []uuid.UUID{m1.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{m1.ID}, receipt.MessageIDs)
	assert.Equal(t, []string{AreaRead}, f.bc.areas())

	receipt, err = svc.MarkRead(ctx, b.ID, coupleID, []uuid.UUID{m1.ID})
	require.NoError(t, err)
	assert.Empty(t, receipt.MessageIDs)
	assert.Len(t, f.bc.Calls, 1)

	list, err := svc.ListMessages(ctx, b.ID, coupleID, 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.Equal(t, 50, list.Size)
	assert.Equal(t, m2.ID, list.Messages[0].ID)

	room, err = svc.Room(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, room.UnreadCount)
}

func TestChatService_TypingAndPresence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewChatService(f.d, repo.NewChatRepository(f.db))
	a, _, coupleID := f.pair(t)

	require.NoError(t, svc.Typing(ctx, a.ID, coupleID, true))
	svc.Presence(ctx, a.ID, SystemUserConnected)
	assert.Equal(t, []string{AreaTyping, AreaCouple}, f.bc.areas())

	indicator, ok := f.bc.Calls[0].Arguments.Get(3).(TypingIndicator)
	require.True(t, ok)
	assert.True(t, indicator.IsTyping)

	// no couple, no presence
	f.bc.reset()
	svc.Presence(ctx, f.user(t, "lonely@example.com").ID, SystemUserConnected)
	assert.Empty(t, f.bc.Calls)
}

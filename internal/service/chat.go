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
	"gorm.io/gorm"
)

const defaultChatPageSize = 50

type SendMessageRequest struct {
	Type     model.MessageType `json:"type"`
	Content  *string           `json:"content"`
	ImageURL *string           `json:"imageUrl"`
	TempID   *string           `json:"tempId"`
}

type E2EEMessageRequest struct {
	Type             model.MessageType `json:"type"`
	EncryptedContent string            `json:"encryptedContent"`
	EncryptedKey     string            `json:"encryptedKey"`
	IV               string            `json:"iv"`
	ImageURL         *string           `json:"imageUrl"`
	TempID           *string           `json:"tempId"`
}

type MessageResponse struct {
	ID                 uuid.UUID         `json:"id"`
	SenderID           uuid.UUID         `json:"senderId"`
	SenderName         string            `json:"senderName"`
	SenderProfileImage *string           `json:"senderProfileImage"`
	Content            *string           `json:"content"`
	Type               model.MessageType `json:"type"`
	ImageURL           *string           `json:"imageUrl"`
	IsRead             bool              `json:"isRead"`
	ReadAt             *time.Time        `json:"readAt"`
	CreatedAt          time.Time         `json:"createdAt"`
	TempID             *string           `json:"tempId,omitempty"`
	IsEncrypted        bool              `json:"isEncrypted"`
	EncryptedContent   *string           `json:"encryptedContent,omitempty"`
	EncryptedKey       *string           `json:"encryptedKey,omitempty"`
	IV                 *string           `json:"iv,omitempty"`
}

func NewMessageResponse(m *model.ChatMessage, tempID *string) MessageResponse {
	resp := MessageResponse{
		ID:               m.ID,
		SenderID:         m.SenderID,
		Content:          m.Content,
		Type:             m.Type,
		ImageURL:         m.ImageURL,
		IsRead:           m.IsRead,
		ReadAt:           m.ReadAt,
		CreatedAt:        m.CreatedAt,
		TempID:           tempID,
		IsEncrypted:      m.IsEncrypted,
		EncryptedContent: m.EncryptedContent,
		EncryptedKey:     m.EncryptedKey,
		IV:               m.IV,
	}
	if m.Sender != nil {
		resp.SenderName = m.Sender.Name
		resp.SenderProfileImage = m.Sender.ProfileImage
	}
	return resp
}

type ChatRoomResponse struct {
	CoupleID            uuid.UUID        `json:"coupleId"`
	PartnerID           *uuid.UUID       `json:"partnerId"`
	PartnerName         *string          `json:"partnerName"`
	PartnerProfileImage *string          `json:"partnerProfileImage"`
	LastMessage         *MessageResponse `json:"lastMessage"`
	UnreadCount         int64            `json:"unreadCount"`
}

type MessageListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
}

// ChatService persists chat messages and read state and announces every change on the couple topics.
type ChatService struct {
	Deps
	Chat repo.ChatRepository
}

func NewChatService(d Deps, chat repo.ChatRepository) *ChatService {
	return &ChatService{Deps: d, Chat: chat}
}

// Room works for incomplete couples too so the client can render an empty room while waiting.
func (s *ChatService) Room(ctx context.Context, userID uuid.UUID) (*ChatRoomResponse, error) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := &ChatRoomResponse{CoupleID: c.ID}

	if partnerID, ok := c.OtherMember(userID); ok {
		p, err := s.user(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		resp.PartnerID = &p.ID
		resp.PartnerName = &p.Name
		resp.PartnerProfileImage = p.ProfileImage
	}

	last, err := s.Chat.LatestMessage(ctx, c.ID)
	switch {
	case err == nil:
		m := NewMessageResponse(last, nil)
		resp.LastMessage = &m
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if resp.UnreadCount, err = s.Chat.CountUnread(ctx, c.ID, userID); err != nil {
		return nil, err
	}
	return resp, nil
}

// room resolves the caller's couple and checks it is the addressed one.
func (s *ChatService) room(ctx context.Context, userID, roomID uuid.UUID) (*model.Couple, error) {
	c, err := s.completeCoupleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.ID != roomID {
		return nil, apperr.NotFound("Chat room not found")
	}
	return c, nil
}

func validateMessage(req SendMessageRequest) error {
	switch req.Type {
	case model.MessageText:
		if blank(req.Content) {
			return apperr.BadRequest("Text message requires content")
		}
	case model.MessageImage, model.MessageSticker:
		if blank(req.ImageURL) {
			return apperr.BadRequest("%s message requires imageUrl", req.Type)
		}
	case model.MessageSharedSchedule, model.MessageSharedPlace, model.MessageSharedBucket:
		if blank(req.Content) {
			return apperr.BadRequest("Shared content requires content")
		}
	default:
		return apperr.BadRequest("Unknown message type %q", req.Type)
	}
	return nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func (s *ChatService) SendMessage(ctx context.Context, userID, roomID uuid.UUID, req SendMessageRequest) (*MessageResponse, error) {
	if req.Type == "" {
		req.Type = model.MessageText
	}
	if err := validateMessage(req); err != nil {
		return nil, err
	}
	return s.persist(ctx, userID, roomID, req.TempID, &model.ChatMessage{
		Content:  req.Content,
		Type:     req.Type,
		ImageURL: req.ImageURL,
	})
}

// SendEncryptedMessage stores the ciphertext, wrapped key and IV verbatim. Content stays empty.
func (s *ChatService) SendEncryptedMessage(ctx context.Context, userID, roomID uuid.UUID, req E2EEMessageRequest) (*MessageResponse, error) {
	if req.Type == "" {
		req.Type = model.MessageText
	}
	if !req.Type.Valid() {
		return nil, apperr.BadRequest("Unknown message type %q", req.Type)
	}
	if req.EncryptedContent == "" || req.EncryptedKey == "" || req.IV == "" {
		return nil, apperr.BadRequest("Encrypted message requires encryptedContent, encryptedKey and iv")
	}
	return s.persist(ctx, userID, roomID, req.TempID, &model.ChatMessage{
		Type:             req.Type,
		ImageURL:         req.ImageURL,
		IsEncrypted:      true,
		EncryptedContent: &req.EncryptedContent,
		EncryptedKey:     &req.EncryptedKey,
		IV:               &req.IV,
	})
}

func (s *ChatService) persist(ctx context.Context, userID, roomID uuid.UUID, tempID *string, m *model.ChatMessage) (*MessageResponse, error) {
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.room(ctx, userID, roomID)
		if err != nil {
			return err
		}
		sender, err := s.user(ctx, userID)
		if err != nil {
			return err
		}
		m.CoupleID = c.ID
		m.SenderID = sender.ID
		if err := s.Chat.CreateMessage(ctx, m); err != nil {
			return err
		}
		m.Sender = sender
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := NewMessageResponse(m, tempID)
	s.log().Infow("message saved", "message_id", m.ID, "couple_id", m.CoupleID, "encrypted", m.IsEncrypted)
	s.publish(ctx, m.CoupleID, AreaCouple, newChatSync(resp, s.now()))
	return &resp, nil
}

// ListMessages marks the partner's unread messages read before returning the page.
func (s *ChatService) ListMessages(ctx context.Context, userID, roomID uuid.UUID, page, size int) (*MessageListResponse, error) {
	p := PageRequest(page, size, defaultChatPageSize)

	var (
		msgs  []model.ChatMessage
		total int64
	)
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.room(ctx, userID, roomID)
		if err != nil {
			return err
		}
		if _, err := s.Chat.MarkAllRead(ctx, c.ID, userID, s.now()); err != nil {
			return err
		}
		msgs, total, err = s.Chat.ListMessages(ctx, c.ID, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := &MessageListResponse{Messages: make([]MessageResponse, 0, len(msgs)), TotalCount: total, Page: p.Number, Size: p.Size}
	for i := range msgs {
		resp.Messages = append(resp.Messages, NewMessageResponse(&msgs[i], nil))
	}
	return resp, nil
}

// MarkRead flips the listed messages the caller received and announces the ids that changed.
// Repeating the call is a no-op.
func (s *ChatService) MarkRead(ctx context.Context, userID, roomID uuid.UUID, ids []uuid.UUID) (*ReadReceiptMessage, error) {
	at := s.now()
	var flipped []uuid.UUID
	err := s.Tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.room(ctx, userID, roomID)
		if err != nil {
			return err
		}
		flipped, err = s.Chat.MarkRead(ctx, c.ID, userID, ids, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	if flipped == nil {
		flipped = []uuid.UUID{}
	}

	receipt := &ReadReceiptMessage{Type: "READ_RECEIPT", MessageIDs: flipped, UserID: userID, ReadAt: at}
	if len(flipped) > 0 {
		s.publish(ctx, roomID, AreaRead, receipt)
	}
	return receipt, nil
}

func (s *ChatService) Typing(ctx context.Context, userID, roomID uuid.UUID, isTyping bool) error {
	c, err := s.room(ctx, userID, roomID)
	if err != nil {
		return err
	}
	s.publish(ctx, c.ID, AreaTyping, TypingIndicator{UserID: userID, IsTyping: isTyping})
	return nil
}

// Presence announces a connect or disconnect of userID to its couple, if it has one.
func (s *ChatService) Presence(ctx context.Context, userID uuid.UUID, event string) {
	c, err := s.coupleOf(ctx, userID)
	if err != nil {
		return
	}
	s.publish(ctx, c.ID, AreaCouple, SystemMessage{Type: "SYSTEM", Event: event, UserID: userID, Timestamp: s.now()})
}

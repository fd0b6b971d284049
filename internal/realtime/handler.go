package realtime

import (
	"context"
	"strings"
	"time"

	"ieum/internal/apperr"
	"ieum/internal/middleware"
	"ieum/internal/service"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	errorsDestination = "/user/queue/errors"
	appChatPrefix     = "/app/chat/"
)

// Error codes carried by WebSocketErrorResponse.
const (
	CodeAuthFailed     = "AUTH_FAILED"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotInCouple    = "NOT_IN_COUPLE"
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeSendFailed     = "SEND_FAILED"
)

// WebSocketErrorResponse is delivered to the originating session on /user/queue/errors.
type WebSocketErrorResponse struct {
	Type    string  `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
	TempID  *string `json:"tempId,omitempty"`
}

// ChatService is the chat surface reachable over STOMP.
type ChatService interface {
	SendMessage(ctx context.Context, userID, roomID uuid.UUID, req service.SendMessageRequest) (*service.MessageResponse, error)
	SendEncryptedMessage(ctx context.Context, userID, roomID uuid.UUID, req service.E2EEMessageRequest) (*service.MessageResponse, error)
	MarkRead(ctx context.Context, userID, roomID uuid.UUID, ids []uuid.UUID) (*service.ReadReceiptMessage, error)
	Typing(ctx context.Context, userID, roomID uuid.UUID, isTyping bool) error
	Presence(ctx context.Context, userID uuid.UUID, event string)
}

type MembershipChecker interface {
	IsMember(ctx context.Context, coupleID, userID uuid.UUID) (bool, error)
}

// topicAreas lists the suffixes a couple topic may carry.
var topicAreas = map[string]bool{
	service.AreaRead:           true,
	service.AreaTyping:         true,
	service.AreaSchedule:       true,
	service.AreaBucket:         true,
	service.AreaFinance:        true,
	service.AreaAnniversary:    true,
	service.AreaRecommendation: true,
}

func (s *Server) handleFrame(ctx context.Context, c *Client, f *Frame) {
	if f.Command == CmdConnect || f.Command == CmdStomp {
		s.onConnect(ctx, c, f)
		return
	}
	if !c.connected.Load() {
		c.log.Infow("frame before CONNECT", "command", f.Command)
		c.SendFrame(NewFrame(CmdError, "message", "CONNECT expected", "content-type", "text/plain"))
		c.Close()
		return
	}

	switch f.Command {
	case CmdSubscribe:
		s.onSubscribe(ctx, c, f)
	case CmdUnsubscribe:
		id := f.Header.Get("id")
		if sub, ok := c.removeSubscription(id); ok {
			c.log.Infow("unsubscribed", "subscription", id, "destination", sub.destination)
		}
	case CmdSend:
		s.onSend(ctx, c, f)
	case CmdDisconnect:
		c.log.Infow("stomp disconnect")
		s.receipt(c, f)
		c.Close()
		return
	default:
		c.SendFrame(NewFrame(CmdError, "message", "unsupported frame "+f.Command, "content-type", "text/plain"))
		c.Close()
		return
	}
	s.receipt(c, f)
}

func (s *Server) receipt(c *Client, f *Frame) {
	if id, ok := f.Header.Lookup("receipt"); ok {
		c.SendFrame(NewFrame(CmdReceipt, "receipt-id", id))
	}
}

// onConnect binds the session principal. A token in the CONNECT headers must name the same user.
func (s *Server) onConnect(ctx context.Context, c *Client, f *Frame) {
	if c.connected.Load() {
		c.SendFrame(NewFrame(CmdError, "message", "already connected", "content-type", "text/plain"))
		c.Close()
		return
	}
	if auth := f.Header.Get("Authorization"); auth != "" {
		token, _ := middleware.BearerToken(auth)
		claims, err := s.tokens.Parse(token)
		var uid uuid.UUID
		if err == nil {
			uid, err = claims.UserID()
		}
		if err != nil || uid != c.session.UserID {
			c.log.Infow("CONNECT token rejected")
			body, _ := json.Marshal(WebSocketErrorResponse{Type: "ERROR", Code: CodeAuthFailed, Message: "Authentication failed"})
			c.SendFrame(&Frame{Command: CmdError, Header: Header{{"message", CodeAuthFailed}, {"content-type", "application/json"}}, Body: body})
			c.Close()
			return
		}
	}

	c.connected.Store(true)
	c.SendFrame(NewFrame(CmdConnected,
		"version", "1.2",
		"heart-beat", "0,0",
		"server", "ieum",
		"user-name", c.session.UserID.String(),
	))
	c.log.Infow("stomp connected", "email", c.session.Email)
	s.chat.Presence(ctx, c.session.UserID, service.SystemUserConnected)
}

func (s *Server) disconnected(c *Client) {
	if !c.connected.Load() {
		return
	}
	c.log.Infow("stomp session closed", "duration", time.Since(c.session.ConnectedAt).Round(time.Second))
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), 5*time.Second)
	defer cancel()
	s.chat.Presence(ctx, c.session.UserID, service.SystemUserDisconnected)
}

func (s *Server) onSubscribe(ctx context.Context, c *Client, f *Frame) {
	id := f.Header.Get("id")
	dest := f.Header.Get("destination")
	c.log.Infow("subscribe", "subscription", id, "destination", dest)
	if id == "" || dest == "" {
		s.sendError(c, CodeInvalidMessage, "SUBSCRIBE requires id and destination", nil)
		return
	}

	if dest == errorsDestination {
		c.addSubscription(&subscription{id: id, destination: dest})
		return
	}

	coupleID, ok := parseCoupleTopic(dest)
	if !ok {
		s.sendError(c, CodeUnauthorized, "Unknown destination", nil)
		return
	}
	member, err := s.members.IsMember(ctx, coupleID, c.session.UserID)
	if err != nil {
		c.log.Errorw("membership check failed", "couple_id", coupleID, "error", err)
		s.sendError(c, CodeSendFailed, "Subscription failed", nil)
		return
	}
	if !member {
		s.sendError(c, CodeNotInCouple, "Not a member of this couple", nil)
		return
	}

	subCtx, cancel := context.WithCancel(c.ctx)
	msgs, err := s.broadcaster.Subscribe(subCtx, dest)
	if err != nil {
		cancel()
		c.log.Errorw("broadcaster subscribe failed", "destination", dest, "error", err)
		s.sendError(c, CodeSendFailed, "Subscription failed", nil)
		return
	}
	c.addSubscription(&subscription{id: id, destination: dest, cancel: cancel})

	go func() {
		for msg := range msgs {
			c.SendFrame(&Frame{
				Command: CmdMessage,
				Header: Header{
					{"destination", dest},
					{"subscription", id},
					{"message-id", msg.UUID},
					{"content-type", "application/json"},
				},
				Body: msg.Payload,
			})
			msg.Ack()
		}
	}()
}

// parseCoupleTopic accepts /topic/couple/{id} and /topic/couple/{id}/{area}.
func parseCoupleTopic(dest string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(dest, topicPrefix)
	if !ok {
		return uuid.Nil, false
	}
	idPart, area, hasArea := strings.Cut(rest, "/")
	if hasArea && !topicAreas[area] {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) onSend(ctx context.Context, c *Client, f *Frame) {
	dest := f.Header.Get("destination")
	c.log.Debugw("send", "destination", dest, "bytes", len(f.Body))

	rest, ok := strings.CutPrefix(dest, appChatPrefix)
	if !ok {
		s.sendError(c, CodeUnauthorized, "Unknown destination", nil)
		return
	}
	idPart, action, _ := strings.Cut(rest, "/")
	roomID, err := uuid.Parse(idPart)
	if err != nil {
		s.sendError(c, CodeInvalidMessage, "Invalid couple id", nil)
		return
	}
	userID := c.session.UserID

	switch action {
	case "":
		var req service.SendMessageRequest
		if err := json.Unmarshal(f.Body, &req); err != nil {
			s.sendError(c, CodeInvalidMessage, "Invalid message payload", nil)
			return
		}
		if _, err := s.chat.SendMessage(ctx, userID, roomID, req); err != nil {
			s.sendFailure(c, err, req.TempID)
		}

	case "e2ee":
		var req service.E2EEMessageRequest
		if err := json.Unmarshal(f.Body, &req); err != nil {
			s.sendError(c, CodeInvalidMessage, "Invalid message payload", nil)
			return
		}
		if _, err := s.chat.SendEncryptedMessage(ctx, userID, roomID, req); err != nil {
			s.sendFailure(c, err, req.TempID)
		}

	case "read":
		var ids []uuid.UUID
		if err := json.Unmarshal(f.Body, &ids); err != nil {
			s.sendError(c, CodeInvalidMessage, "Invalid message ids", nil)
			return
		}
		if _, err := s.chat.MarkRead(ctx, userID, roomID, ids); err != nil {
			s.sendFailure(c, err, nil)
		}

	case "typing":
		var req struct {
			IsTyping bool `json:"isTyping"`
		}
		if err := json.Unmarshal(f.Body, &req); err != nil {
			return
		}
		if err := s.chat.Typing(ctx, userID, roomID, req.IsTyping); err != nil {
			c.log.Debugw("typing dropped", "error", err)
		}

	default:
		s.sendError(c, CodeUnauthorized, "Unknown destination", nil)
	}
}

func (s *Server) sendFailure(c *Client, err error, tempID *string) {
	code, msg := CodeSendFailed, "Failed to send message"
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		code, msg = CodeNotInCouple, err.Error()
	case apperr.KindBadRequest:
		code, msg = CodeInvalidMessage, err.Error()
	case apperr.KindUnauthorized:
		code, msg = CodeUnauthorized, err.Error()
	default:
		c.log.Errorw("chat send failed", "error", err)
	}
	s.sendError(c, code, msg, tempID)
}

// sendError reaches the client only when it subscribed to its error queue.
func (s *Server) sendError(c *Client, code, message string, tempID *string) {
	sub := c.errorsSubscription()
	if sub == "" {
		c.log.Debugw("error dropped, no error subscription", "code", code, "message", message)
		return
	}
	body, err := json.Marshal(WebSocketErrorResponse{Type: "ERROR", Code: code, Message: message, TempID: tempID})
	if err != nil {
		return
	}
	c.SendFrame(&Frame{
		Command: CmdMessage,
		Header: Header{
			{"destination", errorsDestination},
			{"subscription", sub},
			{"message-id", uuid.NewString()},
			{"content-type", "application/json"},
		},
		Body: body,
	})
}

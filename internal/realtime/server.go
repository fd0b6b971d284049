package realtime

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ieum/internal/middleware"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ServerConfig wires the streaming endpoints.
type ServerConfig struct {
	Hub            *Hub
	Broadcaster    *Broadcaster
	Chat           ChatService
	Members        MembershipChecker
	Tokens         middleware.TokenParser
	AllowedOrigins []string
	Logger         *zap.SugaredLogger
}

// Server upgrades authenticated requests and speaks STOMP over them.
type Server struct {
	ctx         context.Context
	hub         *Hub
	broadcaster *Broadcaster
	chat        ChatService
	members     MembershipChecker
	tokens      middleware.TokenParser
	upgrader    websocket.Upgrader
	log         *zap.SugaredLogger
}

// NewServer binds connections to ctx; cancelling it ends every session.
func NewServer(ctx context.Context, cfg ServerConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{
		ctx:         ctx,
		hub:         cfg.Hub,
		broadcaster: cfg.Broadcaster,
		chat:        cfg.Chat,
		members:     cfg.Members,
		tokens:      cfg.Tokens,
		log:         log,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return s
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeStomp handles the raw websocket endpoint.
func (s *Server) ServeStomp(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, rawTransport{})
}

// ServeSockJS handles the websocket transport of a SockJS session.
func (s *Server) ServeSockJS(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, sockJSTransport{})
}

type sockJSInfo struct {
	WebSocket    bool     `json:"websocket"`
	Origins      []string `json:"origins"`
	CookieNeeded bool     `json:"cookie_needed"`
	Entropy      uint32   `json:"entropy"`
}

// SockJSInfo answers the SockJS handshake probe.
func (s *Server) SockJSInfo(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	_ = json.NewEncoder(w).Encode(sockJSInfo{
		WebSocket:    true,
		Origins:      []string{"*:*"},
		CookieNeeded: false,
		Entropy:      rand.Uint32(),
	})
}

// serve verifies the token before upgrading; a bad token never gets a socket.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, tr transport) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = middleware.BearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		http.Error(w, "Authentication token is required", http.StatusUnauthorized)
		return
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Infow("websocket upgrade failed", "error", err)
		return
	}

	session := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Email:       claims.Email,
		Token:       token,
		ConnectedAt: time.Now().UTC(),
	}
	c := newClient(s.ctx, s.hub, conn, tr, session, s, s.log)
	if !s.hub.add(c) {
		_ = conn.Close()
		return
	}
	c.log.Infow("websocket opened", "remote", r.RemoteAddr)
	c.start()
}

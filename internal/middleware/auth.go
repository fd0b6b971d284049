package middleware

import (
	"context"
	"net/http"
	"strings"

	"ieum/internal/auth"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	emailKey
	assertedUserIDKey
)

// UserIDHeader is the caller-asserted identity honoured only on routes without token auth.
const UserIDHeader = "X-User-Id"

const (
	msgHeaderRequired = "Authorization header is required"
	msgHeaderFormat   = "Invalid authorization header format"
	msgInvalidToken   = "Invalid or expired token"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// exempt lists "METHOD path" pairs served without a bearer token.
var exempt = map[string]bool{
	http.MethodPost + " /api/auth/google":   true,
	http.MethodPost + " /api/auth/logout":   true,
	http.MethodPost + " /api/users":         true,
	http.MethodGet + " /api/health":         true,
	http.MethodGet + " /api/mbti/questions": true,
}

// IsExempt reports whether the route is served without token authentication.
func IsExempt(method, path string) bool {
	return exempt[method+" "+strings.TrimSuffix(path, "/")]
}

// WithAuth rejects /api requests without a valid bearer token, except the exempt routes.
// On exempt routes a valid token is still attached, and X-User-Id is kept as an unverified assertion.
func WithAuth(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")

			if IsExempt(r.Method, r.URL.Path) {
				ctx := r.Context()
				if token, ok := BearerToken(header); ok {
					if claims, err := tokens.Parse(token); err == nil {
						ctx = withClaims(ctx, claims)
					}
				}
				if id, err := uuid.Parse(r.Header.Get(UserIDHeader)); err == nil {
					ctx = context.WithValue(ctx, assertedUserIDKey, id)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if header == "" {
				writeUnauthorized(w, msgHeaderRequired)
				return
			}
			token, ok := BearerToken(header)
			if !ok {
				writeUnauthorized(w, msgHeaderFormat)
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				log.Debugw("rejected token", "path", r.URL.Path, "error", err)
				writeUnauthorized(w, msgInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	id, _ := claims.UserID()
	ctx = context.WithValue(ctx, userIDKey, id)
	return context.WithValue(ctx, emailKey, claims.Email)
}

// WithUserID attaches a verified identity; used by tests and the streaming layer.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserIDFromContext returns the identity verified from a token. It never returns X-User-Id.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func GetEmailFromContext(ctx context.Context) string {
	s, _ := ctx.Value(emailKey).(string)
	return s
}

// GetAssertedUserID returns the verified identity if any, else the X-User-Id value of an exempt route.
func GetAssertedUserID(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := GetUserIDFromContext(ctx); ok {
		return id, true
	}
	id, ok := ctx.Value(assertedUserIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": http.StatusUnauthorized, "message": msg})
}

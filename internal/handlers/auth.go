package handlers

import (
	"net/http"

	"ieum/internal/middleware"
	"ieum/internal/service"
)

type AuthHandler struct {
	base
	Auth  *service.AuthService
	Users *service.UserService
}

// GoogleLogin exchanges a Google ID token for an access token.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.GoogleLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Auth.GoogleLogin(r.Context(), req.IDToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Users.Me(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout exists for client symmetry; tokens are stateless.
// Logout is stateless; the caller id is only logged, and may be the unverified X-User-Id.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := middleware.GetAssertedUserID(r.Context()); ok {
		h.Logger.Infow("logout", "user_id", id)
	}
	writeMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

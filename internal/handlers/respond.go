package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"ieum/internal/apperr"
	"ieum/internal/middleware"
	"ieum/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed REST call.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Status: status, Message: msg})
}

// writeError maps typed service errors to HTTP statuses. Anything untyped is a 500.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindBadRequest:
		status = http.StatusBadRequest
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindConflict:
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Errorw("request failed", "method", r.Method, "uri", r.RequestURI,
			"email", middleware.GetEmailFromContext(r.Context()), "error", err)
		writeMessage(w, status, "Internal server error")
		return
	}
	writeMessage(w, status, err.Error())
}

// decodeJSON reads a bounded body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return apperr.BadRequest("Request body too large")
		case errors.Is(err, io.EOF):
			return apperr.BadRequest("Request body is required")
		}
		return apperr.BadRequest("Invalid request body")
	}
	return validation.ValidateStruct(dst)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.BadRequest("Invalid %s", name)
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.BadRequest("%s must be a number", name)
	}
	return n, nil
}

func pageParams(r *http.Request) (page, size int, err error) {
	if page, err = queryInt(r, "page", 0); err != nil {
		return 0, 0, err
	}
	size, err = queryInt(r, "size", 0)
	return page, size, err
}

// currentUser is the verified caller. WithAuth guarantees it on protected routes.
func currentUser(r *http.Request) (uuid.UUID, error) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperr.Unauthorized("Authentication required")
	}
	return id, nil
}

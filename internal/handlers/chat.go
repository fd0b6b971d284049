package handlers

import (
	"net/http"

	"ieum/internal/service"

	"github.com/google/uuid"
)

type ChatHandler struct {
	base
	Chat *service.ChatService
}

type markReadRequest struct {
	MessageIDs []uuid.UUID `json:"messageIds" validate:"required,min=1,max=500"`
}

func (h *ChatHandler) Room(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Chat.Room(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	roomID, err := pathUUID(r, "roomId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req service.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Chat.SendMessage(r.Context(), userID, roomID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	roomID, err := pathUUID(r, "roomId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Chat.ListMessages(r.Context(), userID, roomID, page, size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkRead is the REST twin of the /app/chat/{id}/read destination.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	roomID, err := pathUUID(r, "roomId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req markReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Chat.MarkRead(r.Context(), userID, roomID, req.MessageIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

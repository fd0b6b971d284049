package handlers

import (
	"net/http"

	"ieum/internal/service"
)

type FileHandler struct {
	base
	Files *service.FileService
}

// Presign records the file row and hands back a PUT url for the upload.
func (h *FileHandler) Presign(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req service.PresignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Files.Presign(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "fileId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Files.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

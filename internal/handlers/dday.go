package handlers

import (
	"net/http"

	"ieum/internal/service"
)

type DdayHandler struct {
	base
	Ddays *service.DdayService
}

func (h *DdayHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Ddays.List(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

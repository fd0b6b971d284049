package handlers

import (
	"context"
	"net/http"

	"ieum/internal/service"

	"github.com/google/uuid"
)

type CoupleHandler struct {
	base
	Couples *service.CoupleService
}

func (h *CoupleHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Couples.CreateInvite(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CoupleHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req service.JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Couples.Join(r.Context(), userID, req.InviteCode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CoupleHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Couples.Me(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CoupleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req service.UpdateCoupleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Couples.UpdateAnniversary(r.Context(), userID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CoupleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Couples.Delete(r.Context(), userID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CoupleHandler) SetMySharedKey(w http.ResponseWriter, r *http.Request) {
	h.setSharedKey(w, r, h.Couples.SetMySharedKey)
}

func (h *CoupleHandler) SetPartnerSharedKey(w http.ResponseWriter, r *http.Request) {
	h.setSharedKey(w, r, h.Couples.SetPartnerSharedKey)
}

func (h *CoupleHandler) setSharedKey(w http.ResponseWriter, r *http.Request,
	set func(ctx context.Context, userID uuid.UUID, key string) (*service.SharedKeyResponse, error)) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req service.SharedKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := set(r.Context(), userID, req.EncryptedSharedKey)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CoupleHandler) MySharedKey(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.Couples.MySharedKey(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

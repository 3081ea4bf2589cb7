package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/rps-arena/services"
)

type GiveawayHandler struct {
	giveawayService services.GiveawayService
}

func NewGiveawayHandler(giveawayService services.GiveawayService) *GiveawayHandler {
	return &GiveawayHandler{giveawayService: giveawayService}
}

func (h *GiveawayHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	giveaways, err := h.giveawayService.ListActiveCards(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"giveaways": giveaways}, nil)
}

func (h *GiveawayHandler) ListJoined(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id query parameter is required"))
		return
	}

	joined, err := h.giveawayService.ListJoined(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joined, nil)
}

// Join идемпотентно вступает в активный розыгрыш.
func (h *GiveawayHandler) Join(w http.ResponseWriter, r *http.Request) {
	giveawayID, err := intURLParam(r, "giveawayID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID   int64   `json:"user_id"`
		Username *string `json:"username"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id is required"))
		return
	}

	if err := h.giveawayService.Join(r.Context(), giveawayID, input.UserID, input.Username); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"status": "joined"}, nil)
}

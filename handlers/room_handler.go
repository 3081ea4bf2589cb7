package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/rps-arena/services"
)

type RoomHandler struct {
	roomService services.RoomService
}

func NewRoomHandler(roomService services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// Join сажает игрока в открытую комнату или создаёт новую.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.roomService.Join(r.Context(), input.UserID, input.Username)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, nil)
}

func (h *RoomHandler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	roomID, err := intURLParam(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID     int64  `json:"user_id"`
		RoundIndex int    `json:"round_index"`
		GameIndex  int    `json:"game_index"`
		Move       string `json:"move"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id is required"))
		return
	}
	if input.RoundIndex < 1 || input.GameIndex < 1 {
		badRequestResponse(w, r, fmt.Errorf("round_index and game_index must be positive"))
		return
	}

	result, err := h.roomService.SubmitMove(r.Context(), roomID, input.UserID, input.RoundIndex, input.GameIndex, input.Move)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result, nil)
}

// GetState отдаёт снимок комнаты; user_id в query помечает место зрителя.
func (h *RoomHandler) GetState(w http.ResponseWriter, r *http.Request) {
	roomID, err := intURLParam(r, "roomID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var viewerID *int64
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid user_id query parameter"))
			return
		}
		viewerID = &id
	}

	state, err := h.roomService.GetState(r.Context(), roomID, viewerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state, nil)
}

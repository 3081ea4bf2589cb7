package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/rps-arena/services"
	"github.com/go-chi/chi/v5"
)

type PointsHandler struct {
	pointsService services.PointsService
}

func NewPointsHandler(pointsService services.PointsService) *PointsHandler {
	return &PointsHandler{pointsService: pointsService}
}

// EnsureUser регистрирует пользователя в глобальной таблице очков.
// Повторный вызов ничего не меняет.
func (h *PointsHandler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID    int64   `json:"user_id"`
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id is required"))
		return
	}

	if err := h.pointsService.EnsureUser(r.Context(), input.UserID, input.Username, input.FirstName); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	points, err := h.pointsService.GetPoints(r.Context(), input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"user_id": input.UserID, "points": points}, nil)
}

func (h *PointsHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID == 0 {
		badRequestResponse(w, r, fmt.Errorf("invalid userID parameter"))
		return
	}

	points, err := h.pointsService.GetPoints(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"user_id": userID, "points": points}, nil)
}

// AddPoints корректирует глобальный счёт. Только для администратора.
func (h *PointsHandler) AddPoints(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID int64 `json:"user_id"`
		Delta  int   `json:"delta"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id is required"))
		return
	}

	total, err := h.pointsService.AddPoints(r.Context(), input.UserID, input.Delta)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"user_id": input.UserID, "points": total}, nil)
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	roundService      services.RoundService
	matchService      services.MatchService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	roundService services.RoundService,
	matchService services.MatchService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		roundService:      roundService,
		matchService:      matchService,
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListUpcoming(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil)
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}

// Create добавляет турнир. Только для администратора.
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title        string    `json:"title"`
		Prize        *string   `json:"prize"`
		Description  *string   `json:"description"`
		StartsAt     time.Time `json:"starts_at"`
		HostUsername *string   `json:"host_username"`
		PlayersTotal *int      `json:"players_total"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Title == "" {
		badRequestResponse(w, r, fmt.Errorf("title is required"))
		return
	}
	if input.StartsAt.IsZero() {
		badRequestResponse(w, r, fmt.Errorf("starts_at is required"))
		return
	}

	tournament := &models.Tournament{
		Title:        input.Title,
		Prize:        input.Prize,
		Description:  input.Description,
		StartsAt:     input.StartsAt,
		HostUsername: input.HostUsername,
		PlayersTotal: input.PlayersTotal,
	}
	if err := h.tournamentService.Create(r.Context(), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil)
}

func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID int64 `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id is required"))
		return
	}

	player, err := h.tournamentService.RegisterPlayer(r.Context(), tournamentID, input.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"registration": player}, nil)
}

// Deactivate снимает игрока с турнира, не удаляя регистрацию.
// Только для администратора.
func (h *TournamentHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID int64 `json:"user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeactivatePlayer(r.Context(), tournamentID, input.UserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"status": "deactivated"}, nil)
}

// CreateRound формирует группы и матчи раунда. Повторный вызов с тем же
// номером возвращает уже созданный раунд. Только для администратора.
func (h *TournamentHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoundNumber int `json:"round_number"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.RoundNumber < 1 {
		badRequestResponse(w, r, fmt.Errorf("round_number must be positive"))
		return
	}

	round, err := h.roundService.CreateRound(r.Context(), tournamentID, input.RoundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil)
}

func (h *TournamentHandler) RoundStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNumber, err := intURLParam(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.roundService.RoundStandings(r.Context(), tournamentID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil)
}

// NextMatch возвращает ближайший незавершённый матч игрока либо
// {"match": null}, когда играть нечего.
func (h *TournamentHandler) NextMatch(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id query parameter is required"))
		return
	}

	match, err := h.matchService.NextMatchForPlayer(r.Context(), tournamentID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
}

func (h *TournamentHandler) SubmitMove(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := intURLParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := intURLParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID int64  `json:"user_id"`
		Move   string `json:"move"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID == 0 {
		badRequestResponse(w, r, fmt.Errorf("user_id is required"))
		return
	}

	outcome, err := h.matchService.SubmitMove(r.Context(), tournamentID, matchID, input.UserID, input.Move)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome, nil)
}

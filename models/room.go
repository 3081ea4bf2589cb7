package models

import "time"

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusActive   RoomStatus = "active"
	RoomStatusFinished RoomStatus = "finished"
)

// Room — контейнер для игры 1 на 1 ровно с двумя местами.
// Поля host_* информационные, никаких привилегий не дают.
type Room struct {
	ID            int        `json:"id"`
	HostUserID    *int64     `json:"host_user_id,omitempty"`
	HostUsername  *string    `json:"host_username,omitempty"`
	Status        RoomStatus `json:"status"`
	CurrentRound  int        `json:"current_round"`
	TotalRounds   int        `json:"total_rounds"`
	GamesPerRound int        `json:"games_per_round"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

type RoomPlayer struct {
	ID          int       `json:"id"`
	RoomID      int       `json:"room_id"`
	UserID      int64     `json:"user_id"`
	Username    *string   `json:"username,omitempty"`
	Seat        Seat      `json:"seat"`
	JoinedAt    time.Time `json:"joined_at"`
	IsActive    bool      `json:"is_active"`
	TotalPoints int       `json:"total_points"`
	RoundsWon   int       `json:"rounds_won"`
	RoundsLost  int       `json:"rounds_lost"`
	RoundsDraw  int       `json:"rounds_draw"`
}

type TurnStatus string

const (
	TurnStatusPending  TurnStatus = "pending"
	TurnStatusFinished TurnStatus = "finished"
)

// Turn — аналог Match в рамках комнаты, уникален по
// (room_id, round_index, game_index). WinnerSeat == nil у завершённого
// хода означает ничью.
type Turn struct {
	ID          int        `json:"id"`
	RoomID      int        `json:"room_id"`
	RoundIndex  int        `json:"round_index"`
	GameIndex   int        `json:"game_index"`
	Player1Move *Move      `json:"p1_choice,omitempty"`
	Player2Move *Move      `json:"p2_choice,omitempty"`
	WinnerSeat  *Seat      `json:"winner_seat,omitempty"`
	Status      TurnStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

func (t *Turn) MoveBySeat(seat Seat) *Move {
	if seat == Seat1 {
		return t.Player1Move
	}
	return t.Player2Move
}

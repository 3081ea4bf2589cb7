package models

import "time"

type TournamentStatus string

const (
	TournamentStatusScheduled TournamentStatus = "scheduled"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusFinished  TournamentStatus = "finished"
	TournamentStatusCanceled  TournamentStatus = "canceled"
)

type Tournament struct {
	ID           int              `json:"id"`
	Title        string           `json:"title"`
	Prize        *string          `json:"prize,omitempty"`
	Description  *string          `json:"description,omitempty"`
	StartsAt     time.Time        `json:"starts_at"`
	HostUsername *string          `json:"host_username,omitempty"`
	PlayersTotal *int             `json:"players_total,omitempty"`
	PlayersLeft  *int             `json:"players_left,omitempty"`
	Status       TournamentStatus `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
}

type TournamentPlayerStatus string

const (
	TournamentPlayerActive   TournamentPlayerStatus = "active"
	TournamentPlayerInactive TournamentPlayerStatus = "inactive"
)

// TournamentPlayer — регистрация пользователя в конкретном турнире.
// Уникальна по (tournament_id, user_id); никогда не удаляется,
// только переводится в inactive.
type TournamentPlayer struct {
	ID           int                    `json:"id"`
	TournamentID int                    `json:"tournament_id"`
	UserID       int64                  `json:"user_id"`
	Status       TournamentPlayerStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
}

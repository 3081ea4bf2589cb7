package models

import "time"

const RoundTypeGroup = "group"

type RoundStatus string

const (
	RoundStatusRunning  RoundStatus = "running"
	RoundStatusFinished RoundStatus = "finished"
)

// Round — одна генерация групп для турнира, уникальна по
// (tournament_id, round_number).
type Round struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	RoundNumber  int         `json:"round_number"`
	Type         string      `json:"type"`
	Status       RoundStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

type Group struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	RoundID      int         `json:"round_id"`
	GroupIndex   int         `json:"group_index"`
	Size         int         `json:"size"`
	Status       RoundStatus `json:"status"`
}

// GroupStanding — строка счёта игрока внутри группы раунда.
// Меняется только при завершении матча с участием этого игрока.
type GroupStanding struct {
	ID                 int  `json:"id"`
	TournamentID       int  `json:"tournament_id"`
	RoundID            int  `json:"round_id"`
	GroupID            int  `json:"group_id"`
	TournamentPlayerID int  `json:"tournament_player_id"`
	Score              int  `json:"score"`
	IsQualified        bool `json:"is_qualified"`
}

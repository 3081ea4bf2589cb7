package models

import "time"

// Seat — фиксированная позиция игрока в матче, ходе или комнате.
type Seat int

const (
	Seat1 Seat = 1
	Seat2 Seat = 2
)

func (s Seat) Opponent() Seat {
	if s == Seat1 {
		return Seat2
	}
	return Seat1
}

type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

type MatchResult string

const (
	MatchResultDraw       MatchResult = "draw"
	MatchResultPlayer1Win MatchResult = "p1_win"
	MatchResultPlayer2Win MatchResult = "p2_win"
)

type MatchStatus string

const (
	MatchStatusPending         MatchStatus = "pending"
	MatchStatusWaitingForMoves MatchStatus = "waiting_for_moves"
	MatchStatusFinished        MatchStatus = "finished"
)

// Match — турнирный поединок внутри группы. Пара (player1, player2)
// уникальна в пределах группы. После перехода в finished запись
// больше не изменяется.
type Match struct {
	ID           int          `json:"id"`
	TournamentID int          `json:"tournament_id"`
	RoundID      int          `json:"round_id"`
	GroupID      int          `json:"group_id"`
	Player1ID    int          `json:"player1_id"`
	Player2ID    int          `json:"player2_id"`
	Player1Move  *Move        `json:"player1_move,omitempty"`
	Player2Move  *Move        `json:"player2_move,omitempty"`
	Result       *MatchResult `json:"result,omitempty"`
	Status       MatchStatus  `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}

// SeatOf возвращает место участника в матче по id регистрации.
func (m *Match) SeatOf(tournamentPlayerID int) (Seat, bool) {
	switch tournamentPlayerID {
	case m.Player1ID:
		return Seat1, true
	case m.Player2ID:
		return Seat2, true
	}
	return 0, false
}

func (m *Match) MoveBySeat(seat Seat) *Move {
	if seat == Seat1 {
		return m.Player1Move
	}
	return m.Player2Move
}

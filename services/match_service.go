package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/rps-arena/game"
	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/repositories"
)

// Очки группового этапа: ничья 1/1, победа 3/0.
const (
	matchDrawPoints = 1
	matchWinPoints  = 3
)

// Статусы, возвращаемые клиенту после хода.
const (
	MoveStatusWaitingForOpponent = "waiting_for_opponent"
	MoveStatusFinished           = "finished"
	MoveStatusAlreadyFinished    = "already_finished"
)

// MoveOutcome — состояние матча после попытки хода.
type MoveOutcome struct {
	Status       string              `json:"status"`
	Result       *models.MatchResult `json:"result,omitempty"`
	Player1Move  *models.Move        `json:"player1_move,omitempty"`
	Player2Move  *models.Move        `json:"player2_move,omitempty"`
	Player1Delta *int                `json:"player1_delta,omitempty"`
	Player2Delta *int                `json:"player2_delta,omitempty"`
}

type MatchService interface {
	// NextMatchForPlayer возвращает незавершённый матч игрока с
	// наименьшим id; (nil, nil) означает "работы нет" и ошибкой
	// не является.
	NextMatchForPlayer(ctx context.Context, tournamentID int, userID int64) (*models.Match, error)
	// SubmitMove записывает ход в слот места игрока. Повторная запись
	// в занятый слот идемпотентна, завершённый матч возвращает
	// сохранённый результат без изменений.
	SubmitMove(ctx context.Context, tournamentID, matchID int, userID int64, rawMove string) (*MoveOutcome, error)
}

type matchService struct {
	tx           repositories.TxManager
	playerRepo   repositories.TournamentPlayerRepository
	matchRepo    repositories.MatchRepository
	standingRepo repositories.StandingRepository
	hub          *game.Hub
	logger       *slog.Logger
}

func NewMatchService(
	tx repositories.TxManager,
	playerRepo repositories.TournamentPlayerRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	hub *game.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:           tx,
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *matchService) NextMatchForPlayer(ctx context.Context, tournamentID int, userID int64) (*models.Match, error) {
	tp, err := s.playerRepo.GetByTournamentAndUser(ctx, nil, tournamentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentPlayerNotFound) {
			return nil, ErrPlayerNotRegistered
		}
		return nil, err
	}

	match, err := s.matchRepo.NextForPlayer(ctx, nil, tournamentID, tp.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) SubmitMove(ctx context.Context, tournamentID, matchID int, userID int64, rawMove string) (*MoveOutcome, error) {
	move, err := game.ParseMove(rawMove)
	if err != nil {
		return nil, err
	}

	var outcome *MoveOutcome
	var finished *models.Match

	// Вся последовательность чтение-валидация-запись-расчёт-начисление
	// выполняется под блокировкой строки матча: два одновременных хода
	// не могут оба увидеть пустой слот соперника, завершённый матч не
	// пересчитывается.
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tp, err := s.playerRepo.GetByTournamentAndUser(ctx, exec, tournamentID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentPlayerNotFound) {
				return ErrPlayerNotRegistered
			}
			return err
		}

		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, tournamentID, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		if match.Status == models.MatchStatusFinished {
			outcome = &MoveOutcome{
				Status:      MoveStatusAlreadyFinished,
				Result:      match.Result,
				Player1Move: match.Player1Move,
				Player2Move: match.Player2Move,
			}
			return nil
		}

		seat, ok := match.SeatOf(tp.ID)
		if !ok {
			return ErrPlayerNotInMatch
		}

		// слот уже занят — первый записанный ход сохраняется
		if match.MoveBySeat(seat) != nil {
			outcome = &MoveOutcome{
				Status:      string(match.Status),
				Result:      match.Result,
				Player1Move: match.Player1Move,
				Player2Move: match.Player2Move,
			}
			return nil
		}

		if err := s.matchRepo.SetMove(ctx, exec, match.ID, seat, move); err != nil {
			return err
		}
		if seat == models.Seat1 {
			match.Player1Move = &move
		} else {
			match.Player2Move = &move
		}

		if match.Player1Move == nil || match.Player2Move == nil {
			if err := s.matchRepo.UpdateStatus(ctx, exec, match.ID, models.MatchStatusWaitingForMoves); err != nil {
				return err
			}
			outcome = &MoveOutcome{
				Status:      MoveStatusWaitingForOpponent,
				Player1Move: match.Player1Move,
				Player2Move: match.Player2Move,
			}
			return nil
		}

		result := game.Resolve(*match.Player1Move, *match.Player2Move)
		if err := s.matchRepo.Finish(ctx, exec, match.ID, result); err != nil {
			return err
		}

		var p1Delta, p2Delta int
		switch result {
		case models.MatchResultDraw:
			p1Delta, p2Delta = matchDrawPoints, matchDrawPoints
		case models.MatchResultPlayer1Win:
			p1Delta, p2Delta = matchWinPoints, 0
		default:
			p1Delta, p2Delta = 0, matchWinPoints
		}

		if err := s.standingRepo.AddScore(ctx, exec, match.RoundID, match.GroupID, match.Player1ID, p1Delta); err != nil {
			return err
		}
		if err := s.standingRepo.AddScore(ctx, exec, match.RoundID, match.GroupID, match.Player2ID, p2Delta); err != nil {
			return err
		}

		outcome = &MoveOutcome{
			Status:       MoveStatusFinished,
			Result:       &result,
			Player1Move:  match.Player1Move,
			Player2Move:  match.Player2Move,
			Player1Delta: &p1Delta,
			Player2Delta: &p2Delta,
		}
		match.Result = &result
		finished = match
		return nil
	})
	if err != nil {
		return nil, err
	}

	if finished != nil && s.hub != nil {
		s.hub.Broadcast(fmt.Sprintf("tournament_%d", tournamentID), game.Event{
			Type: "MATCH_FINISHED",
			Payload: map[string]interface{}{
				"match_id": finished.ID,
				"result":   finished.Result,
			},
		})
	}
	if finished != nil && s.logger != nil {
		s.logger.InfoContext(ctx, "match finished",
			slog.Int("tournament_id", tournamentID),
			slog.Int("match_id", finished.ID),
			slog.String("result", string(*finished.Result)))
	}

	return outcome, nil
}

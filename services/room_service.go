package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/rps-arena/game"
	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/repositories"
	"golang.org/x/sync/errgroup"
)

// Очки комнатной игры: ничья 1/1, победа 2/0.
const (
	roomDrawPoints = 1
	roomWinPoints  = 2
)

const (
	defaultRoomTotalRounds   = 1
	defaultRoomGamesPerRound = 3
)

// RoomJoinResult — итог подбора комнаты для игрока.
type RoomJoinResult struct {
	Room    *models.Room         `json:"room"`
	Seat    models.Seat          `json:"seat"`
	Players []*models.RoomPlayer `json:"players"`
}

// RoomMoveResult — состояние хода после записи выбора игрока.
type RoomMoveResult struct {
	Turn    *models.Turn         `json:"turn"`
	Status  models.TurnStatus    `json:"status"`
	Players []*models.RoomPlayer `json:"players,omitempty"`
}

// RoomState — снимок комнаты для наблюдателя или участника.
type RoomState struct {
	Room       *models.Room         `json:"room"`
	Players    []*models.RoomPlayer `json:"players"`
	Turns      []*models.Turn       `json:"turns"`
	ViewerSeat *models.Seat         `json:"viewer_seat,omitempty"`
}

type RoomService interface {
	// Join сажает игрока в старейшую комнату со свободным местом либо
	// создаёт новую. Повторный вызов возвращает уже занятое место.
	Join(ctx context.Context, userID int64, username *string) (*RoomJoinResult, error)
	// SubmitMove записывает выбор игрока в ход (roundIndex, gameIndex).
	// Первый записанный выбор в слоте сохраняется, завершённый ход
	// возвращается как есть.
	SubmitMove(ctx context.Context, roomID int, userID int64, roundIndex, gameIndex int, rawMove string) (*RoomMoveResult, error)
	GetState(ctx context.Context, roomID int, viewerID *int64) (*RoomState, error)
}

type roomService struct {
	tx         repositories.TxManager
	roomRepo   repositories.RoomRepository
	playerRepo repositories.RoomPlayerRepository
	turnRepo   repositories.TurnRepository
	hub        *game.Hub
	logger     *slog.Logger
}

func NewRoomService(
	tx repositories.TxManager,
	roomRepo repositories.RoomRepository,
	playerRepo repositories.RoomPlayerRepository,
	turnRepo repositories.TurnRepository,
	hub *game.Hub,
	logger *slog.Logger,
) RoomService {
	return &roomService{
		tx:         tx,
		roomRepo:   roomRepo,
		playerRepo: playerRepo,
		turnRepo:   turnRepo,
		hub:        hub,
		logger:     logger,
	}
}

func (s *roomService) Join(ctx context.Context, userID int64, username *string) (*RoomJoinResult, error) {
	var result *RoomJoinResult
	var joinedNew bool

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		roomID, found, err := s.roomRepo.FindOpenRoomID(ctx, exec)
		if err != nil {
			return err
		}
		if !found {
			room := &models.Room{
				HostUserID:    &userID,
				HostUsername:  username,
				Status:        models.RoomStatusWaiting,
				CurrentRound:  1,
				TotalRounds:   defaultRoomTotalRounds,
				GamesPerRound: defaultRoomGamesPerRound,
			}
			if err := s.roomRepo.Create(ctx, exec, room); err != nil {
				return err
			}
			roomID = room.ID
		}

		// повторная проверка под блокировкой: между поиском и захватом
		// комнату мог занять конкурирующий Join
		room, err := s.roomRepo.GetByIDForUpdate(ctx, exec, roomID)
		if err != nil {
			return err
		}

		existing, err := s.playerRepo.GetByRoomAndUser(ctx, exec, room.ID, userID)
		if err == nil {
			players, listErr := s.playerRepo.ListByRoom(ctx, exec, room.ID)
			if listErr != nil {
				return listErr
			}
			result = &RoomJoinResult{Room: room, Seat: existing.Seat, Players: players}
			return nil
		}
		if !errors.Is(err, repositories.ErrRoomPlayerNotFound) {
			return err
		}

		players, err := s.playerRepo.ListByRoom(ctx, exec, room.ID)
		if err != nil {
			return err
		}
		seat, ok := freeSeat(players)
		if !ok {
			return ErrRoomFull
		}

		player := &models.RoomPlayer{
			RoomID:   room.ID,
			UserID:   userID,
			Username: username,
			Seat:     seat,
			IsActive: true,
		}
		if err := s.playerRepo.Create(ctx, exec, player); err != nil {
			return err
		}

		count, err := s.playerRepo.CountByRoom(ctx, exec, room.ID)
		if err != nil {
			return err
		}
		if count >= 2 && room.Status != models.RoomStatusActive {
			status, err := s.roomRepo.Activate(ctx, exec, room.ID)
			if err != nil {
				return err
			}
			room.Status = status
		}

		players, err = s.playerRepo.ListByRoom(ctx, exec, room.ID)
		if err != nil {
			return err
		}
		result = &RoomJoinResult{Room: room, Seat: seat, Players: players}
		joinedNew = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if joinedNew && s.hub != nil {
		s.hub.Broadcast(fmt.Sprintf("room_%d", result.Room.ID), game.Event{
			Type: "PLAYER_JOINED",
			Payload: map[string]interface{}{
				"room_id": result.Room.ID,
				"seat":    result.Seat,
				"status":  result.Room.Status,
			},
		})
	}
	return result, nil
}

func freeSeat(players []*models.RoomPlayer) (models.Seat, bool) {
	taken := make(map[models.Seat]bool, len(players))
	for _, p := range players {
		taken[p.Seat] = true
	}
	for _, seat := range []models.Seat{models.Seat1, models.Seat2} {
		if !taken[seat] {
			return seat, true
		}
	}
	return 0, false
}

func (s *roomService) SubmitMove(ctx context.Context, roomID int, userID int64, roundIndex, gameIndex int, rawMove string) (*RoomMoveResult, error) {
	move, err := game.ParseMove(rawMove)
	if err != nil {
		return nil, err
	}

	var result *RoomMoveResult
	var justFinished bool

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player, err := s.playerRepo.GetByRoomAndUser(ctx, exec, roomID, userID)
		if err != nil {
			if !errors.Is(err, repositories.ErrRoomPlayerNotFound) {
				return err
			}
			// различаем "нет комнаты" и "чужая комната"
			if _, roomErr := s.roomRepo.GetByID(ctx, exec, roomID); roomErr != nil {
				if errors.Is(roomErr, repositories.ErrRoomNotFound) {
					return ErrRoomNotFound
				}
				return roomErr
			}
			return ErrPlayerNotInRoom
		}

		if err := s.turnRepo.Ensure(ctx, exec, roomID, roundIndex, gameIndex); err != nil {
			return err
		}
		turn, err := s.turnRepo.GetForUpdate(ctx, exec, roomID, roundIndex, gameIndex)
		if err != nil {
			return err
		}

		if turn.Status == models.TurnStatusFinished {
			result = &RoomMoveResult{Turn: turn, Status: turn.Status}
			return nil
		}

		// первый записанный выбор в слоте сохраняется
		if turn.MoveBySeat(player.Seat) == nil {
			if err := s.turnRepo.SetMove(ctx, exec, turn.ID, player.Seat, move); err != nil {
				return err
			}
			if player.Seat == models.Seat1 {
				turn.Player1Move = &move
			} else {
				turn.Player2Move = &move
			}
		}

		if turn.Player1Move != nil && turn.Player2Move != nil {
			winner := game.WinnerSeat(game.Resolve(*turn.Player1Move, *turn.Player2Move))
			if winner == nil {
				if err := s.playerRepo.ApplyDraw(ctx, exec, roomID, roomDrawPoints); err != nil {
					return err
				}
			} else {
				if err := s.playerRepo.ApplyWin(ctx, exec, roomID, *winner, roomWinPoints); err != nil {
					return err
				}
			}
			if err := s.turnRepo.Finish(ctx, exec, turn.ID, winner); err != nil {
				return err
			}
			turn.WinnerSeat = winner
			turn.Status = models.TurnStatusFinished
			justFinished = true
		}

		players, err := s.playerRepo.ListByRoom(ctx, exec, roomID)
		if err != nil {
			return err
		}
		result = &RoomMoveResult{Turn: turn, Status: turn.Status, Players: players}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if justFinished && s.hub != nil {
		s.hub.Broadcast(fmt.Sprintf("room_%d", roomID), game.Event{
			Type: "TURN_FINISHED",
			Payload: map[string]interface{}{
				"room_id":     roomID,
				"round_index": roundIndex,
				"game_index":  gameIndex,
				"winner_seat": result.Turn.WinnerSeat,
			},
		})
	}
	if justFinished && s.logger != nil {
		s.logger.InfoContext(ctx, "turn finished",
			slog.Int("room_id", roomID),
			slog.Int("round_index", roundIndex),
			slog.Int("game_index", gameIndex))
	}
	return result, nil
}

func (s *roomService) GetState(ctx context.Context, roomID int, viewerID *int64) (*RoomState, error) {
	room, err := s.roomRepo.GetByID(ctx, nil, roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	var players []*models.RoomPlayer
	var turns []*models.Turn

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByRoom(gCtx, nil, roomID)
		return err
	})
	g.Go(func() error {
		var err error
		turns, err = s.turnRepo.ListByRoomAndRound(gCtx, nil, roomID, room.CurrentRound)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := &RoomState{Room: room, Players: players, Turns: turns}
	if viewerID != nil {
		for _, p := range players {
			if p.UserID == *viewerID {
				seat := p.Seat
				state.ViewerSeat = &seat
				break
			}
		}
	}
	return state, nil
}

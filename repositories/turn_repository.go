package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var ErrTurnNotFound = errors.New("turn not found")

type TurnRepository interface {
	// Ensure создаёт пустой pending-ход, если его ещё нет. Конфликт по
	// уникальному ключу (room, round, game) молча игнорируется, чтобы
	// гонка двух первых ходов сводилась к обычному слот-сценарию.
	Ensure(ctx context.Context, exec SQLExecutor, roomID, roundIndex, gameIndex int) error
	// GetForUpdate читает ход под эксклюзивной блокировкой строки.
	GetForUpdate(ctx context.Context, exec SQLExecutor, roomID, roundIndex, gameIndex int) (*models.Turn, error)
	SetMove(ctx context.Context, exec SQLExecutor, turnID int, seat models.Seat, move models.Move) error
	Finish(ctx context.Context, exec SQLExecutor, turnID int, winner *models.Seat) error
	ListByRoomAndRound(ctx context.Context, exec SQLExecutor, roomID, roundIndex int) ([]*models.Turn, error)
}

type postgresTurnRepository struct {
	db *sql.DB
}

func NewPostgresTurnRepository(db *sql.DB) TurnRepository {
	return &postgresTurnRepository{db: db}
}

const turnColumns = `id, room_id, round_index, game_index, p1_choice, p2_choice,
	       winner_seat, status, created_at, finished_at`

func (r *postgresTurnRepository) Ensure(ctx context.Context, exec SQLExecutor, roomID, roundIndex, gameIndex int) error {
	query := `
		INSERT INTO room_turns (room_id, round_index, game_index, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id, round_index, game_index) DO NOTHING`

	_, err := executor(r.db, exec).ExecContext(ctx, query, roomID, roundIndex, gameIndex, models.TurnStatusPending)
	if err != nil {
		return fmt.Errorf("failed to ensure turn (%d,%d,%d): %w", roomID, roundIndex, gameIndex, err)
	}
	return nil
}

func (r *postgresTurnRepository) scanTurn(rowScanner interface{ Scan(...interface{}) error }) (*models.Turn, error) {
	var t models.Turn
	err := rowScanner.Scan(
		&t.ID, &t.RoomID, &t.RoundIndex, &t.GameIndex, &t.Player1Move, &t.Player2Move,
		&t.WinnerSeat, &t.Status, &t.CreatedAt, &t.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTurnNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTurnRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, roomID, roundIndex, gameIndex int) (*models.Turn, error) {
	query := `
		SELECT ` + turnColumns + `
		FROM room_turns
		WHERE room_id = $1 AND round_index = $2 AND game_index = $3
		FOR UPDATE`

	turn, err := r.scanTurn(executor(r.db, exec).QueryRowContext(ctx, query, roomID, roundIndex, gameIndex))
	if err != nil {
		if errors.Is(err, ErrTurnNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock turn (%d,%d,%d): %w", roomID, roundIndex, gameIndex, err)
	}
	return turn, nil
}

func (r *postgresTurnRepository) SetMove(ctx context.Context, exec SQLExecutor, turnID int, seat models.Seat, move models.Move) error {
	var query string
	switch seat {
	case models.Seat1:
		query = `UPDATE room_turns SET p1_choice = $1 WHERE id = $2`
	case models.Seat2:
		query = `UPDATE room_turns SET p2_choice = $1 WHERE id = $2`
	default:
		return fmt.Errorf("invalid seat %d for turn %d", seat, turnID)
	}

	result, err := executor(r.db, exec).ExecContext(ctx, query, move, turnID)
	if err != nil {
		return fmt.Errorf("failed to set seat %d choice for turn %d: %w", seat, turnID, err)
	}
	return checkAffectedRows(result, ErrTurnNotFound)
}

func (r *postgresTurnRepository) Finish(ctx context.Context, exec SQLExecutor, turnID int, winner *models.Seat) error {
	query := `
		UPDATE room_turns
		SET winner_seat = $1, status = $2, finished_at = NOW()
		WHERE id = $3`

	result, err := executor(r.db, exec).ExecContext(ctx, query, winner, models.TurnStatusFinished, turnID)
	if err != nil {
		return fmt.Errorf("failed to finish turn %d: %w", turnID, err)
	}
	return checkAffectedRows(result, ErrTurnNotFound)
}

func (r *postgresTurnRepository) ListByRoomAndRound(ctx context.Context, exec SQLExecutor, roomID, roundIndex int) ([]*models.Turn, error) {
	query := `
		SELECT ` + turnColumns + `
		FROM room_turns
		WHERE room_id = $1 AND round_index = $2
		ORDER BY game_index`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, roomID, roundIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns for room %d round %d: %w", roomID, roundIndex, err)
	}
	defer rows.Close()

	turns := make([]*models.Turn, 0)
	for rows.Next() {
		t, scanErr := r.scanTurn(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", scanErr)
		}
		turns = append(turns, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during turn rows iteration: %w", err)
	}
	return turns, nil
}

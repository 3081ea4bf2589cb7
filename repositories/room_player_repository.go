package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
	"github.com/lib/pq"
)

var (
	ErrRoomPlayerNotFound = errors.New("room player not found")
	ErrSeatTaken          = errors.New("room seat is already taken")
)

type RoomPlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.RoomPlayer) error
	GetByRoomAndUser(ctx context.Context, exec SQLExecutor, roomID int, userID int64) (*models.RoomPlayer, error)
	ListByRoom(ctx context.Context, exec SQLExecutor, roomID int) ([]*models.RoomPlayer, error)
	CountByRoom(ctx context.Context, exec SQLExecutor, roomID int) (int, error)
	// ApplyDraw начисляет points обоим местам и инкрементирует rounds_draw.
	ApplyDraw(ctx context.Context, exec SQLExecutor, roomID, points int) error
	// ApplyWin начисляет points победителю (rounds_won) и отмечает
	// поражение проигравшему (rounds_lost).
	ApplyWin(ctx context.Context, exec SQLExecutor, roomID int, winner models.Seat, points int) error
}

type postgresRoomPlayerRepository struct {
	db *sql.DB
}

func NewPostgresRoomPlayerRepository(db *sql.DB) RoomPlayerRepository {
	return &postgresRoomPlayerRepository{db: db}
}

func (r *postgresRoomPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.RoomPlayer) error {
	query := `
		INSERT INTO room_players (room_id, user_id, username, seat, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, joined_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		player.RoomID, player.UserID, player.Username, player.Seat, player.IsActive,
	).Scan(&player.ID, &player.JoinedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "room_players_room_id_seat_key" {
			return ErrSeatTaken
		}
		return fmt.Errorf("failed to seat user %d in room %d: %w", player.UserID, player.RoomID, err)
	}
	return nil
}

func (r *postgresRoomPlayerRepository) scanPlayer(rowScanner interface{ Scan(...interface{}) error }) (*models.RoomPlayer, error) {
	var p models.RoomPlayer
	err := rowScanner.Scan(
		&p.ID, &p.RoomID, &p.UserID, &p.Username, &p.Seat, &p.JoinedAt,
		&p.IsActive, &p.TotalPoints, &p.RoundsWon, &p.RoundsLost, &p.RoundsDraw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

const roomPlayerColumns = `id, room_id, user_id, username, seat, joined_at,
	       is_active, total_points, rounds_won, rounds_lost, rounds_draw`

func (r *postgresRoomPlayerRepository) GetByRoomAndUser(ctx context.Context, exec SQLExecutor, roomID int, userID int64) (*models.RoomPlayer, error) {
	query := `
		SELECT ` + roomPlayerColumns + `
		FROM room_players
		WHERE room_id = $1 AND user_id = $2`

	player, err := r.scanPlayer(executor(r.db, exec).QueryRowContext(ctx, query, roomID, userID))
	if err != nil {
		if errors.Is(err, ErrRoomPlayerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan player u:%d in room %d: %w", userID, roomID, err)
	}
	return player, nil
}

func (r *postgresRoomPlayerRepository) ListByRoom(ctx context.Context, exec SQLExecutor, roomID int) ([]*models.RoomPlayer, error) {
	query := `
		SELECT ` + roomPlayerColumns + `
		FROM room_players
		WHERE room_id = $1
		ORDER BY seat`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for room %d: %w", roomID, err)
	}
	defer rows.Close()

	players := make([]*models.RoomPlayer, 0)
	for rows.Next() {
		p, scanErr := r.scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan room player row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during room player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresRoomPlayerRepository) CountByRoom(ctx context.Context, exec SQLExecutor, roomID int) (int, error) {
	var count int
	err := executor(r.db, exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_players WHERE room_id = $1`, roomID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players in room %d: %w", roomID, err)
	}
	return count, nil
}

func (r *postgresRoomPlayerRepository) ApplyDraw(ctx context.Context, exec SQLExecutor, roomID, points int) error {
	query := `
		UPDATE room_players
		SET total_points = total_points + $1,
		    rounds_draw = rounds_draw + 1
		WHERE room_id = $2 AND seat IN ($3, $4)`

	_, err := executor(r.db, exec).ExecContext(ctx, query, points, roomID, models.Seat1, models.Seat2)
	if err != nil {
		return fmt.Errorf("failed to apply draw in room %d: %w", roomID, err)
	}
	return nil
}

func (r *postgresRoomPlayerRepository) ApplyWin(ctx context.Context, exec SQLExecutor, roomID int, winner models.Seat, points int) error {
	ex := executor(r.db, exec)

	winQuery := `
		UPDATE room_players
		SET total_points = total_points + $1,
		    rounds_won = rounds_won + 1
		WHERE room_id = $2 AND seat = $3`
	if _, err := ex.ExecContext(ctx, winQuery, points, roomID, winner); err != nil {
		return fmt.Errorf("failed to apply win for seat %d in room %d: %w", winner, roomID, err)
	}

	loseQuery := `
		UPDATE room_players
		SET rounds_lost = rounds_lost + 1
		WHERE room_id = $1 AND seat = $2`
	if _, err := ex.ExecContext(ctx, loseQuery, roomID, winner.Opponent()); err != nil {
		return fmt.Errorf("failed to apply loss for seat %d in room %d: %w", winner.Opponent(), roomID, err)
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var ErrRoomNotFound = errors.New("room not found")

type RoomRepository interface {
	Create(ctx context.Context, exec SQLExecutor, room *models.Room) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Room, error)
	// GetByIDForUpdate берёт эксклюзивную блокировку строки комнаты,
	// делая назначение места атомарным. Только внутри транзакции.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Room, error)
	// FindOpenRoomID ищет старейшую комнату со свободным местом.
	FindOpenRoomID(ctx context.Context, exec SQLExecutor) (int, bool, error)
	Activate(ctx context.Context, exec SQLExecutor, id int) (models.RoomStatus, error)
}

type postgresRoomRepository struct {
	db *sql.DB
}

func NewPostgresRoomRepository(db *sql.DB) RoomRepository {
	return &postgresRoomRepository{db: db}
}

const roomColumns = `id, host_user_id, host_username, status, current_round,
	       total_rounds, games_per_round, created_at, started_at, finished_at`

func (r *postgresRoomRepository) Create(ctx context.Context, exec SQLExecutor, room *models.Room) error {
	query := `
		INSERT INTO rooms (host_user_id, host_username, status, current_round, total_rounds, games_per_round)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		room.HostUserID, room.HostUsername, room.Status,
		room.CurrentRound, room.TotalRounds, room.GamesPerRound,
	).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (r *postgresRoomRepository) scanRoom(rowScanner interface{ Scan(...interface{}) error }) (*models.Room, error) {
	var room models.Room
	err := rowScanner.Scan(
		&room.ID, &room.HostUserID, &room.HostUsername, &room.Status, &room.CurrentRound,
		&room.TotalRounds, &room.GamesPerRound, &room.CreatedAt, &room.StartedAt, &room.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *postgresRoomRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := r.scanRoom(executor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan room %d: %w", id, err)
	}
	return room, nil
}

func (r *postgresRoomRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`

	room, err := r.scanRoom(executor(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock room %d: %w", id, err)
	}
	return room, nil
}

// FindOpenRoomID: комната в статусе waiting или active, где занято
// меньше двух мест, старейшая по времени создания. Полные комнаты
// отфильтровываются самим запросом.
func (r *postgresRoomRepository) FindOpenRoomID(ctx context.Context, exec SQLExecutor) (int, bool, error) {
	query := `
		SELECT r.id
		FROM rooms r
		LEFT JOIN room_players p ON p.room_id = r.id
		WHERE r.status IN ($1, $2)
		GROUP BY r.id
		HAVING COUNT(p.id) < 2
		ORDER BY r.created_at
		LIMIT 1`

	var id int
	err := executor(r.db, exec).QueryRowContext(ctx, query,
		models.RoomStatusWaiting, models.RoomStatusActive,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to find open room: %w", err)
	}
	return id, true, nil
}

// Activate переводит комнату в active; started_at выставляется один раз
// и не перезаписывается.
func (r *postgresRoomRepository) Activate(ctx context.Context, exec SQLExecutor, id int) (models.RoomStatus, error) {
	query := `
		UPDATE rooms
		SET status = $1, started_at = COALESCE(started_at, NOW())
		WHERE id = $2
		RETURNING status`

	var status models.RoomStatus
	err := executor(r.db, exec).QueryRowContext(ctx, query, models.RoomStatusActive, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRoomNotFound
		}
		return "", fmt.Errorf("failed to activate room %d: %w", id, err)
	}
	return status, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository — глобальный реестр баллов пользователей.
type PlayerRepository interface {
	Ensure(ctx context.Context, userID int64, username, firstName *string) error
	GetPoints(ctx context.Context, userID int64) (int, error)
	AddPoints(ctx context.Context, userID int64, delta int) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Ensure(ctx context.Context, userID int64, username, firstName *string) error {
	query := `
		INSERT INTO players (user_id, username, first_name, points)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, username, firstName); err != nil {
		return fmt.Errorf("failed to ensure player %d: %w", userID, err)
	}
	return nil
}

// GetPoints гарантирует наличие строки игрока и возвращает текущие баллы.
func (r *postgresPlayerRepository) GetPoints(ctx context.Context, userID int64) (int, error) {
	if err := r.Ensure(ctx, userID, nil, nil); err != nil {
		return 0, err
	}

	var points int
	err := r.db.QueryRowContext(ctx,
		`SELECT points FROM players WHERE user_id = $1`, userID,
	).Scan(&points)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPlayerNotFound
		}
		return 0, fmt.Errorf("failed to get points for player %d: %w", userID, err)
	}
	return points, nil
}

// AddPoints добавляет delta (может быть отрицательной) и возвращает
// новый баланс. Отсутствующий игрок создаётся сразу с delta.
func (r *postgresPlayerRepository) AddPoints(ctx context.Context, userID int64, delta int) (int, error) {
	query := `
		INSERT INTO players (user_id, points)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET points = players.points + EXCLUDED.points
		RETURNING points`

	var points int
	if err := r.db.QueryRowContext(ctx, query, userID, delta).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to add %d points to player %d: %w", delta, userID, err)
	}
	return points, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var ErrGiveawayNotFound = errors.New("giveaway not found")

type GiveawayRepository interface {
	ListActive(ctx context.Context) ([]*models.Giveaway, error)
	GetByID(ctx context.Context, id int) (*models.Giveaway, error)
	ListJoinedByUser(ctx context.Context, userID int64) ([]*models.GiveawayPlayer, error)
	// AddPlayer идемпотентен: повторное вступление в тот же розыгрыш
	// молча игнорируется.
	AddPlayer(ctx context.Context, player *models.GiveawayPlayer) error
}

type postgresGiveawayRepository struct {
	db *sql.DB
}

func NewPostgresGiveawayRepository(db *sql.DB) GiveawayRepository {
	return &postgresGiveawayRepository{db: db}
}

const giveawayColumns = `id, kind, title, prize, description, ends_at, is_active, created_at`

func (r *postgresGiveawayRepository) scanGiveaway(rowScanner interface{ Scan(...interface{}) error }) (*models.Giveaway, error) {
	var g models.Giveaway
	err := rowScanner.Scan(
		&g.ID, &g.Kind, &g.Title, &g.Prize, &g.Description, &g.EndsAt, &g.IsActive, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGiveawayNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *postgresGiveawayRepository) ListActive(ctx context.Context) ([]*models.Giveaway, error) {
	query := `
		SELECT ` + giveawayColumns + `
		FROM giveaways
		WHERE is_active = TRUE AND (ends_at IS NULL OR ends_at > NOW())
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active giveaways: %w", err)
	}
	defer rows.Close()

	giveaways := make([]*models.Giveaway, 0)
	for rows.Next() {
		g, scanErr := r.scanGiveaway(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan giveaway row: %w", scanErr)
		}
		giveaways = append(giveaways, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during giveaway rows iteration: %w", err)
	}
	return giveaways, nil
}

func (r *postgresGiveawayRepository) GetByID(ctx context.Context, id int) (*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE id = $1`

	giveaway, err := r.scanGiveaway(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrGiveawayNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan giveaway %d: %w", id, err)
	}
	return giveaway, nil
}

func (r *postgresGiveawayRepository) ListJoinedByUser(ctx context.Context, userID int64) ([]*models.GiveawayPlayer, error) {
	query := `
		SELECT p.id, p.giveaway_id, p.user_id, p.username_snapshot, p.points_in_giveaway, g.kind, p.joined_at
		FROM giveaway_players p
		JOIN giveaways g ON g.id = p.giveaway_id
		WHERE p.user_id = $1
		ORDER BY p.joined_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query giveaways of user %d: %w", userID, err)
	}
	defer rows.Close()

	players := make([]*models.GiveawayPlayer, 0)
	for rows.Next() {
		var p models.GiveawayPlayer
		if err := rows.Scan(&p.ID, &p.GiveawayID, &p.UserID, &p.UsernameSnapshot, &p.Points, &p.Kind, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan giveaway player row: %w", err)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during giveaway player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresGiveawayRepository) AddPlayer(ctx context.Context, player *models.GiveawayPlayer) error {
	query := `
		INSERT INTO giveaway_players (giveaway_id, user_id, username_snapshot, points_in_giveaway)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (giveaway_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		player.GiveawayID, player.UserID, player.UsernameSnapshot, player.Points,
	)
	if err != nil {
		return fmt.Errorf("failed to add user %d to giveaway %d: %w", player.UserID, player.GiveawayID, err)
	}
	return nil
}

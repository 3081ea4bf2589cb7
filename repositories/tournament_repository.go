package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListUpcoming(ctx context.Context, limit int) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (title, prize, description, starts_at, host_username, players_total, players_left, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.Title,
		tournament.Prize,
		tournament.Description,
		tournament.StartsAt,
		tournament.HostUsername,
		tournament.PlayersTotal,
		tournament.PlayersLeft,
		tournament.Status,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := rowScanner.Scan(
		&t.ID, &t.Title, &t.Prize, &t.Description, &t.StartsAt,
		&t.HostUsername, &t.PlayersTotal, &t.PlayersLeft, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, title, prize, description, starts_at, host_username, players_total, players_left, status, created_at
		FROM tournaments
		WHERE id = $1`

	tournament, err := r.scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) ListUpcoming(ctx context.Context, limit int) ([]*models.Tournament, error) {
	query := `
		SELECT id, title, prize, description, starts_at, host_username, players_total, players_left, status, created_at
		FROM tournaments
		WHERE status IN ($1, $2)
		ORDER BY starts_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query,
		models.TournamentStatusScheduled, models.TournamentStatusActive, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

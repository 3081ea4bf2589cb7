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
	ErrTournamentPlayerNotFound = errors.New("tournament player not found")
	ErrTournamentPlayerConflict = errors.New("player is already registered in this tournament")
)

type TournamentPlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.TournamentPlayer) error
	GetByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID int, userID int64) (*models.TournamentPlayer, error)
	ListActiveIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentPlayerStatus) error
}

type postgresTournamentPlayerRepository struct {
	db *sql.DB
}

func NewPostgresTournamentPlayerRepository(db *sql.DB) TournamentPlayerRepository {
	return &postgresTournamentPlayerRepository{db: db}
}

func (r *postgresTournamentPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.TournamentPlayer) error {
	query := `
		INSERT INTO tournament_players (tournament_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		player.TournamentID, player.UserID, player.Status,
	).Scan(&player.ID, &player.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "tournament_players_tournament_id_user_id_key" {
			return ErrTournamentPlayerConflict
		}
		return fmt.Errorf("failed to register player %d in tournament %d: %w", player.UserID, player.TournamentID, err)
	}
	return nil
}

func (r *postgresTournamentPlayerRepository) GetByTournamentAndUser(ctx context.Context, exec SQLExecutor, tournamentID int, userID int64) (*models.TournamentPlayer, error) {
	query := `
		SELECT id, tournament_id, user_id, status, created_at
		FROM tournament_players
		WHERE tournament_id = $1 AND user_id = $2`

	var tp models.TournamentPlayer
	err := executor(r.db, exec).QueryRowContext(ctx, query, tournamentID, userID).Scan(
		&tp.ID, &tp.TournamentID, &tp.UserID, &tp.Status, &tp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament player t:%d u:%d: %w", tournamentID, userID, err)
	}
	return &tp, nil
}

// ListActiveIDs возвращает id регистраций со статусом active,
// отсортированные по id.
func (r *postgresTournamentPlayerRepository) ListActiveIDs(ctx context.Context, exec SQLExecutor, tournamentID int) ([]int, error) {
	query := `
		SELECT id
		FROM tournament_players
		WHERE tournament_id = $1 AND status = $2
		ORDER BY id`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, tournamentID, models.TournamentPlayerActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active players for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament player id: %w", scanErr)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament player rows iteration: %w", err)
	}
	return ids, nil
}

func (r *postgresTournamentPlayerRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentPlayerStatus) error {
	query := `UPDATE tournament_players SET status = $1 WHERE id = $2`

	result, err := executor(r.db, exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status for tournament player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentPlayerNotFound)
}

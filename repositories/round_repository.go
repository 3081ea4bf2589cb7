package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrGroupNotFound = errors.New("group not found")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByTournamentAndNumber(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.Round, error)
	CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error
	ListGroupsByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Group, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	query := `
		INSERT INTO tournament_rounds (tournament_id, round_number, type, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		round.TournamentID, round.RoundNumber, round.Type, round.Status,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round %d for tournament %d: %w", round.RoundNumber, round.TournamentID, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByTournamentAndNumber(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) (*models.Round, error) {
	query := `
		SELECT id, tournament_id, round_number, type, status, created_at
		FROM tournament_rounds
		WHERE tournament_id = $1 AND round_number = $2`

	var round models.Round
	err := executor(r.db, exec).QueryRowContext(ctx, query, tournamentID, roundNumber).Scan(
		&round.ID, &round.TournamentID, &round.RoundNumber, &round.Type, &round.Status, &round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to scan round %d of tournament %d: %w", roundNumber, tournamentID, err)
	}
	return &round, nil
}

func (r *postgresRoundRepository) CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	query := `
		INSERT INTO tournament_groups (tournament_id, round_id, group_index, status, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		group.TournamentID, group.RoundID, group.GroupIndex, group.Status, group.Size,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("failed to create group %d in round %d: %w", group.GroupIndex, group.RoundID, err)
	}
	return nil
}

func (r *postgresRoundRepository) ListGroupsByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.Group, error) {
	query := `
		SELECT id, tournament_id, round_id, group_index, size, status
		FROM tournament_groups
		WHERE round_id = $1
		ORDER BY group_index`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for round %d: %w", roundID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		var g models.Group
		if scanErr := rows.Scan(&g.ID, &g.TournamentID, &g.RoundID, &g.GroupIndex, &g.Size, &g.Status); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, &g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

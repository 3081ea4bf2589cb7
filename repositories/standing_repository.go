package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var ErrStandingNotFound = errors.New("group standing not found")

// StandingRepository хранит строки счёта игроков в группах.
// Начисления делает только завершающая матч транзакция.
type StandingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, standing *models.GroupStanding) error
	AddScore(ctx context.Context, exec SQLExecutor, roundID, groupID, tournamentPlayerID, delta int) error
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.GroupStanding, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.GroupStanding, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) Create(ctx context.Context, exec SQLExecutor, standing *models.GroupStanding) error {
	query := `
		INSERT INTO tournament_group_players (tournament_id, round_id, group_id, tournament_player_id, score, is_qualified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		standing.TournamentID, standing.RoundID, standing.GroupID,
		standing.TournamentPlayerID, standing.Score, standing.IsQualified,
	).Scan(&standing.ID)
	if err != nil {
		return fmt.Errorf("failed to create standing for player %d in group %d: %w", standing.TournamentPlayerID, standing.GroupID, err)
	}
	return nil
}

func (r *postgresStandingRepository) AddScore(ctx context.Context, exec SQLExecutor, roundID, groupID, tournamentPlayerID, delta int) error {
	query := `
		UPDATE tournament_group_players
		SET score = score + $1
		WHERE round_id = $2 AND group_id = $3 AND tournament_player_id = $4`

	result, err := executor(r.db, exec).ExecContext(ctx, query, delta, roundID, groupID, tournamentPlayerID)
	if err != nil {
		return fmt.Errorf("failed to add %d to standing of player %d in group %d: %w", delta, tournamentPlayerID, groupID, err)
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.GroupStanding, error) {
	var s models.GroupStanding
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.RoundID, &s.GroupID,
		&s.TournamentPlayerID, &s.Score, &s.IsQualified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.GroupStanding, error) {
	query := `
		SELECT id, tournament_id, round_id, group_id, tournament_player_id, score, is_qualified
		FROM tournament_group_players
		WHERE group_id = $1
		ORDER BY score DESC, tournament_player_id ASC`

	return r.list(ctx, exec, query, groupID)
}

func (r *postgresStandingRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID int) ([]*models.GroupStanding, error) {
	query := `
		SELECT id, tournament_id, round_id, group_id, tournament_player_id, score, is_qualified
		FROM tournament_group_players
		WHERE round_id = $1
		ORDER BY group_id ASC, score DESC, tournament_player_id ASC`

	return r.list(ctx, exec, query, roundID)
}

func (r *postgresStandingRepository) list(ctx context.Context, exec SQLExecutor, query string, arg interface{}) ([]*models.GroupStanding, error) {
	rows, err := executor(r.db, exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	standings := make([]*models.GroupStanding, 0)
	for rows.Next() {
		s, scanErr := r.scanStanding(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", scanErr)
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// GetByIDForUpdate читает матч под эксклюзивной блокировкой строки.
	// Вызывается только внутри транзакции.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, matchID int) (*models.Match, error)
	NextForPlayer(ctx context.Context, exec SQLExecutor, tournamentID, tournamentPlayerID int) (*models.Match, error)
	SetMove(ctx context.Context, exec SQLExecutor, matchID int, seat models.Seat, move models.Move) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, matchID int, status models.MatchStatus) error
	Finish(ctx context.Context, exec SQLExecutor, matchID int, result models.MatchResult) error
	ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, round_id, group_id, player1_id, player2_id,
	       player1_move, player2_move, result, status, created_at, finished_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, round_id, group_id, player1_id, player2_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		match.TournamentID, match.RoundID, match.GroupID,
		match.Player1ID, match.Player2ID, match.Status,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match %d vs %d in group %d: %w", match.Player1ID, match.Player2ID, match.GroupID, err)
	}
	return nil
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.RoundID, &m.GroupID, &m.Player1ID, &m.Player2ID,
		&m.Player1Move, &m.Player2Move, &m.Result, &m.Status, &m.CreatedAt, &m.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, tournamentID, matchID int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE id = $1 AND tournament_id = $2
		FOR UPDATE`

	match, err := r.scanMatch(executor(r.db, exec).QueryRowContext(ctx, query, matchID, tournamentID))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock match %d: %w", matchID, err)
	}
	return match, nil
}

// NextForPlayer возвращает незавершённый матч игрока с наименьшим id.
func (r *postgresMatchRepository) NextForPlayer(ctx context.Context, exec SQLExecutor, tournamentID, tournamentPlayerID int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		  AND (player1_id = $2 OR player2_id = $2)
		  AND status <> $3
		ORDER BY id
		LIMIT 1`

	match, err := r.scanMatch(executor(r.db, exec).QueryRowContext(ctx, query,
		tournamentID, tournamentPlayerID, models.MatchStatusFinished))
	if err != nil {
		if errors.Is(err, ErrMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find next match for player %d: %w", tournamentPlayerID, err)
	}
	return match, nil
}

// SetMove записывает ход в слот места. Слот выбирается типизированным
// Seat, а не динамическим именем колонки.
func (r *postgresMatchRepository) SetMove(ctx context.Context, exec SQLExecutor, matchID int, seat models.Seat, move models.Move) error {
	var query string
	switch seat {
	case models.Seat1:
		query = `UPDATE matches SET player1_move = $1 WHERE id = $2`
	case models.Seat2:
		query = `UPDATE matches SET player2_move = $1 WHERE id = $2`
	default:
		return fmt.Errorf("invalid seat %d for match %d", seat, matchID)
	}

	result, err := executor(r.db, exec).ExecContext(ctx, query, move, matchID)
	if err != nil {
		return fmt.Errorf("failed to set seat %d move for match %d: %w", seat, matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, matchID int, status models.MatchStatus) error {
	query := `UPDATE matches SET status = $1 WHERE id = $2`

	result, err := executor(r.db, exec).ExecContext(ctx, query, status, matchID)
	if err != nil {
		return fmt.Errorf("failed to update status of match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Finish(ctx context.Context, exec SQLExecutor, matchID int, result models.MatchResult) error {
	query := `
		UPDATE matches
		SET result = $1, status = $2, finished_at = NOW()
		WHERE id = $3`

	res, err := executor(r.db, exec).ExecContext(ctx, query, result, models.MatchStatusFinished, matchID)
	if err != nil {
		return fmt.Errorf("failed to finish match %d: %w", matchID, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE group_id = $1
		ORDER BY id`

	rows, err := executor(r.db, exec).QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for group %d: %w", groupID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

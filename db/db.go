package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate приводит схему к актуальному виду. Все выражения
// идемпотентны, повторный запуск безопасен.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS players (
			user_id BIGINT PRIMARY KEY,
			username TEXT,
			first_name TEXT,
			points INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tournaments (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			prize TEXT,
			description TEXT,
			starts_at TIMESTAMPTZ NOT NULL,
			host_username TEXT,
			players_total INTEGER,
			players_left INTEGER,
			status TEXT NOT NULL DEFAULT 'scheduled',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_players (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
			user_id BIGINT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT tournament_players_tournament_id_user_id_key UNIQUE (tournament_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_rounds (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
			round_number INTEGER NOT NULL,
			type TEXT NOT NULL DEFAULT 'group',
			status TEXT NOT NULL DEFAULT 'running',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT tournament_rounds_tournament_id_round_number_key UNIQUE (tournament_id, round_number)
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_groups (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
			round_id INTEGER NOT NULL REFERENCES tournament_rounds(id),
			group_index INTEGER NOT NULL,
			size INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'running',
			CONSTRAINT tournament_groups_round_id_group_index_key UNIQUE (round_id, group_index)
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_group_players (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
			round_id INTEGER NOT NULL REFERENCES tournament_rounds(id),
			group_id INTEGER NOT NULL REFERENCES tournament_groups(id),
			tournament_player_id INTEGER NOT NULL REFERENCES tournament_players(id),
			score INTEGER NOT NULL DEFAULT 0,
			is_qualified BOOLEAN NOT NULL DEFAULT FALSE,
			CONSTRAINT tournament_group_players_group_id_player_key UNIQUE (group_id, tournament_player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
			round_id INTEGER NOT NULL REFERENCES tournament_rounds(id),
			group_id INTEGER NOT NULL REFERENCES tournament_groups(id),
			player1_id INTEGER NOT NULL REFERENCES tournament_players(id),
			player2_id INTEGER NOT NULL REFERENCES tournament_players(id),
			player1_move TEXT,
			player2_move TEXT,
			result TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ,
			CONSTRAINT matches_group_id_players_key UNIQUE (group_id, player1_id, player2_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id SERIAL PRIMARY KEY,
			host_user_id BIGINT,
			host_username TEXT,
			status TEXT NOT NULL DEFAULT 'waiting',
			current_round INTEGER NOT NULL DEFAULT 1,
			total_rounds INTEGER NOT NULL DEFAULT 1,
			games_per_round INTEGER NOT NULL DEFAULT 3,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			started_at TIMESTAMPTZ,
			finished_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS room_players (
			id SERIAL PRIMARY KEY,
			room_id INTEGER NOT NULL REFERENCES rooms(id),
			user_id BIGINT NOT NULL,
			username TEXT,
			seat INTEGER NOT NULL CHECK (seat IN (1, 2)),
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			total_points INTEGER NOT NULL DEFAULT 0,
			rounds_won INTEGER NOT NULL DEFAULT 0,
			rounds_lost INTEGER NOT NULL DEFAULT 0,
			rounds_draw INTEGER NOT NULL DEFAULT 0,
			CONSTRAINT room_players_room_id_user_id_key UNIQUE (room_id, user_id),
			CONSTRAINT room_players_room_id_seat_key UNIQUE (room_id, seat)
		)`,
		`CREATE TABLE IF NOT EXISTS room_turns (
			id SERIAL PRIMARY KEY,
			room_id INTEGER NOT NULL REFERENCES rooms(id),
			round_index INTEGER NOT NULL,
			game_index INTEGER NOT NULL,
			p1_choice TEXT,
			p2_choice TEXT,
			winner_seat INTEGER CHECK (winner_seat IN (1, 2)),
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ,
			CONSTRAINT room_turns_room_id_round_index_game_index_key UNIQUE (room_id, round_index, game_index)
		)`,
		`CREATE TABLE IF NOT EXISTS giveaways (
			id SERIAL PRIMARY KEY,
			kind TEXT NOT NULL DEFAULT 'normal',
			title TEXT NOT NULL,
			prize TEXT,
			description TEXT,
			ends_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS giveaway_players (
			id SERIAL PRIMARY KEY,
			giveaway_id INTEGER NOT NULL REFERENCES giveaways(id),
			user_id BIGINT NOT NULL,
			username_snapshot TEXT,
			points_in_giveaway INTEGER NOT NULL DEFAULT 0,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT giveaway_players_giveaway_id_user_id_key UNIQUE (giveaway_id, user_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

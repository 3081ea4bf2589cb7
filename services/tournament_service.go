package services

import (
	"context"
	"errors"

	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/repositories"
)

const upcomingTournamentsLimit = 20

type TournamentService interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListUpcoming(ctx context.Context) ([]*models.Tournament, error)
	// RegisterPlayer идемпотентна: повторная регистрация возвращает
	// существующую запись.
	RegisterPlayer(ctx context.Context, tournamentID int, userID int64) (*models.TournamentPlayer, error)
	DeactivatePlayer(ctx context.Context, tournamentID int, userID int64) error
}

type tournamentService struct {
	tx             repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.TournamentPlayerRepository
}

func NewTournamentService(
	tx repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.TournamentPlayerRepository,
) TournamentService {
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
	}
}

func (s *tournamentService) Create(ctx context.Context, tournament *models.Tournament) error {
	if tournament.Status == "" {
		tournament.Status = models.TournamentStatusScheduled
	}
	return s.tournamentRepo.Create(ctx, tournament)
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListUpcoming(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournamentRepo.ListUpcoming(ctx, upcomingTournamentsLimit)
}

func (s *tournamentService) RegisterPlayer(ctx context.Context, tournamentID int, userID int64) (*models.TournamentPlayer, error) {
	if _, err := s.GetByID(ctx, tournamentID); err != nil {
		return nil, err
	}

	var registered *models.TournamentPlayer
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		player := &models.TournamentPlayer{
			TournamentID: tournamentID,
			UserID:       userID,
			Status:       models.TournamentPlayerActive,
		}
		err := s.playerRepo.Create(ctx, exec, player)
		if err == nil {
			registered = player
			return nil
		}
		if !errors.Is(err, repositories.ErrTournamentPlayerConflict) {
			return err
		}

		existing, err := s.playerRepo.GetByTournamentAndUser(ctx, exec, tournamentID, userID)
		if err != nil {
			return err
		}
		if existing.Status != models.TournamentPlayerActive {
			if err := s.playerRepo.UpdateStatus(ctx, exec, existing.ID, models.TournamentPlayerActive); err != nil {
				return err
			}
			existing.Status = models.TournamentPlayerActive
		}
		registered = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return registered, nil
}

func (s *tournamentService) DeactivatePlayer(ctx context.Context, tournamentID int, userID int64) error {
	player, err := s.playerRepo.GetByTournamentAndUser(ctx, nil, tournamentID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentPlayerNotFound) {
			return ErrPlayerNotRegistered
		}
		return err
	}
	return s.playerRepo.UpdateStatus(ctx, nil, player.ID, models.TournamentPlayerInactive)
}

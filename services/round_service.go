package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/rps-arena/game"
	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/repositories"
)

// RoundService нарезает активных игроков турнира на группы и создаёт
// круговые матчи внутри каждой группы.
type RoundService interface {
	// CreateRound идемпотентен: существующий (tournament, round_number)
	// возвращается как есть, без перегенерации групп.
	CreateRound(ctx context.Context, tournamentID, roundNumber int) (*models.Round, error)
	RoundStandings(ctx context.Context, tournamentID, roundNumber int) ([]*models.GroupStanding, error)
}

type roundService struct {
	tx           repositories.TxManager
	playerRepo   repositories.TournamentPlayerRepository
	roundRepo    repositories.RoundRepository
	standingRepo repositories.StandingRepository
	matchRepo    repositories.MatchRepository
	shuffler     game.Shuffler
}

func NewRoundService(
	tx repositories.TxManager,
	playerRepo repositories.TournamentPlayerRepository,
	roundRepo repositories.RoundRepository,
	standingRepo repositories.StandingRepository,
	matchRepo repositories.MatchRepository,
	shuffler game.Shuffler,
) RoundService {
	return &roundService{
		tx:           tx,
		playerRepo:   playerRepo,
		roundRepo:    roundRepo,
		standingRepo: standingRepo,
		matchRepo:    matchRepo,
		shuffler:     shuffler,
	}
}

func (s *roundService) CreateRound(ctx context.Context, tournamentID, roundNumber int) (*models.Round, error) {
	var round *models.Round

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		existing, err := s.roundRepo.GetByTournamentAndNumber(ctx, exec, tournamentID, roundNumber)
		if err == nil {
			round = existing
			return nil
		}
		if !errors.Is(err, repositories.ErrRoundNotFound) {
			return err
		}

		newRound := &models.Round{
			TournamentID: tournamentID,
			RoundNumber:  roundNumber,
			Type:         models.RoundTypeGroup,
			Status:       models.RoundStatusRunning,
		}
		if err := s.roundRepo.Create(ctx, exec, newRound); err != nil {
			return err
		}

		ids, err := s.playerRepo.ListActiveIDs(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(ids) < 2 {
			return ErrNotEnoughPlayers
		}

		// единственный источник недетерминизма — перемешивание
		s.shuffler.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

		pos := 0
		for i, size := range game.GroupSizes(len(ids)) {
			group := &models.Group{
				TournamentID: tournamentID,
				RoundID:      newRound.ID,
				GroupIndex:   i + 1,
				Size:         size,
				Status:       models.RoundStatusRunning,
			}
			if err := s.roundRepo.CreateGroup(ctx, exec, group); err != nil {
				return err
			}

			members := ids[pos : pos+size]
			pos += size

			for _, tpID := range members {
				standing := &models.GroupStanding{
					TournamentID:       tournamentID,
					RoundID:            newRound.ID,
					GroupID:            group.ID,
					TournamentPlayerID: tpID,
				}
				if err := s.standingRepo.Create(ctx, exec, standing); err != nil {
					return err
				}
			}

			for _, pair := range game.Pairings(members) {
				match := &models.Match{
					TournamentID: tournamentID,
					RoundID:      newRound.ID,
					GroupID:      group.ID,
					Player1ID:    pair[0],
					Player2ID:    pair[1],
					Status:       models.MatchStatusPending,
				}
				if err := s.matchRepo.Create(ctx, exec, match); err != nil {
					return err
				}
			}
		}

		round = newRound
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create round %d for tournament %d: %w", roundNumber, tournamentID, err)
	}
	return round, nil
}

func (s *roundService) RoundStandings(ctx context.Context, tournamentID, roundNumber int) ([]*models.GroupStanding, error) {
	round, err := s.roundRepo.GetByTournamentAndNumber(ctx, nil, tournamentID, roundNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return []*models.GroupStanding{}, nil
		}
		return nil, err
	}
	return s.standingRepo.ListByRound(ctx, nil, round.ID)
}

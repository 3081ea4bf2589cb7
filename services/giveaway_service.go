package services

import (
	"context"
	"errors"

	"github.com/Dosada05/rps-arena/models"
	"github.com/Dosada05/rps-arena/repositories"
)

// JoinedGiveaways — карточки пользователя плюс отдельный список id
// обычных (не промо) розыгрышей для клиентских фильтров.
type JoinedGiveaways struct {
	Cards     []*models.GiveawayPlayer `json:"cards"`
	NormalIDs []int                    `json:"normal_ids"`
}

type GiveawayService interface {
	ListActiveCards(ctx context.Context) ([]*models.Giveaway, error)
	ListJoined(ctx context.Context, userID int64) (*JoinedGiveaways, error)
	Join(ctx context.Context, giveawayID int, userID int64, username *string) error
}

type giveawayService struct {
	giveawayRepo repositories.GiveawayRepository
}

func NewGiveawayService(giveawayRepo repositories.GiveawayRepository) GiveawayService {
	return &giveawayService{giveawayRepo: giveawayRepo}
}

func (s *giveawayService) ListActiveCards(ctx context.Context) ([]*models.Giveaway, error) {
	return s.giveawayRepo.ListActive(ctx)
}

func (s *giveawayService) ListJoined(ctx context.Context, userID int64) (*JoinedGiveaways, error) {
	cards, err := s.giveawayRepo.ListJoinedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	joined := &JoinedGiveaways{Cards: cards, NormalIDs: make([]int, 0, len(cards))}
	for _, card := range cards {
		if card.Kind == models.GiveawayKindNormal {
			joined.NormalIDs = append(joined.NormalIDs, card.GiveawayID)
		}
	}
	return joined, nil
}

func (s *giveawayService) Join(ctx context.Context, giveawayID int, userID int64, username *string) error {
	giveaway, err := s.giveawayRepo.GetByID(ctx, giveawayID)
	if err != nil {
		if errors.Is(err, repositories.ErrGiveawayNotFound) {
			return ErrGiveawayNotFound
		}
		return err
	}
	if !giveaway.IsActive {
		return ErrGiveawayNotFound
	}

	return s.giveawayRepo.AddPlayer(ctx, &models.GiveawayPlayer{
		GiveawayID:       giveawayID,
		UserID:           userID,
		UsernameSnapshot: username,
		Points:           1,
	})
}

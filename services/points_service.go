package services

import (
	"context"

	"github.com/Dosada05/rps-arena/repositories"
)

// PointsService оперирует глобальным счётом пользователя, не зависящим
// от турниров и комнат.
type PointsService interface {
	EnsureUser(ctx context.Context, userID int64, username, firstName *string) error
	GetPoints(ctx context.Context, userID int64) (int, error)
	AddPoints(ctx context.Context, userID int64, delta int) (int, error)
}

type pointsService struct {
	playerRepo repositories.PlayerRepository
}

func NewPointsService(playerRepo repositories.PlayerRepository) PointsService {
	return &pointsService{playerRepo: playerRepo}
}

func (s *pointsService) EnsureUser(ctx context.Context, userID int64, username, firstName *string) error {
	return s.playerRepo.Ensure(ctx, userID, username, firstName)
}

func (s *pointsService) GetPoints(ctx context.Context, userID int64) (int, error) {
	return s.playerRepo.GetPoints(ctx, userID)
}

func (s *pointsService) AddPoints(ctx context.Context, userID int64, delta int) (int, error) {
	return s.playerRepo.AddPoints(ctx, userID, delta)
}

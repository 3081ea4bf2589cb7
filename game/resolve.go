package game

import (
	"errors"
	"strings"

	"github.com/Dosada05/rps-arena/models"
)

var ErrInvalidMove = errors.New("move must be one of rock, paper, scissors")

var beats = map[models.Move]models.Move{
	models.MoveRock:     models.MoveScissors,
	models.MoveScissors: models.MovePaper,
	models.MovePaper:    models.MoveRock,
}

// ParseMove нормализует сырой ввод клиента и проверяет, что ход входит
// в допустимый домен.
func ParseMove(raw string) (models.Move, error) {
	move := models.Move(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := beats[move]; !ok {
		return "", ErrInvalidMove
	}
	return move, nil
}

// Resolve вычисляет исход матча по двум уже валидным ходам.
// Чистая функция без побочных эффектов.
func Resolve(m1, m2 models.Move) models.MatchResult {
	if m1 == m2 {
		return models.MatchResultDraw
	}
	if beats[m1] == m2 {
		return models.MatchResultPlayer1Win
	}
	return models.MatchResultPlayer2Win
}

// WinnerSeat переводит результат в номер победившего места.
// Для ничьей возвращает nil.
func WinnerSeat(result models.MatchResult) *models.Seat {
	var seat models.Seat
	switch result {
	case models.MatchResultPlayer1Win:
		seat = models.Seat1
	case models.MatchResultPlayer2Win:
		seat = models.Seat2
	default:
		return nil
	}
	return &seat
}

package services

import "errors"

// Общие ошибки сервисного слоя, используемые в HTTP-маппинге.
var (
	// Клиентские ошибки (вход не прошёл валидацию или не найден ресурс)
	ErrPlayerNotRegistered = errors.New("player is not registered in this tournament")
	ErrPlayerNotInMatch    = errors.New("player is not a participant of this match")
	ErrPlayerNotInRoom     = errors.New("player does not hold a seat in this room")
	ErrMatchNotFound       = errors.New("match not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrGiveawayNotFound    = errors.New("giveaway not found or not active")
	ErrNotEnoughPlayers    = errors.New("at least 2 active players are required to create a round")

	// Нарушение внутреннего инварианта: при корректном поиске комнаты
	// недостижимо, наружу уходит как 5xx.
	ErrRoomFull = errors.New("room already has both seats taken")

	// Аутентификация
	ErrAuthInvalidCredentials = errors.New("invalid credentials")
)

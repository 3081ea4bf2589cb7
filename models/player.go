package models

// Player — глобальный счёт пользователя, общий для всех режимов.
type Player struct {
	UserID    int64   `json:"user_id"`
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	Points    int     `json:"points"`
}

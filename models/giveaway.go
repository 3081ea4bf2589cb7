package models

import "time"

type GiveawayKind string

const (
	GiveawayKindNormal GiveawayKind = "normal"
	GiveawayKindPromo  GiveawayKind = "promo"
)

type Giveaway struct {
	ID          int          `json:"id"`
	Kind        GiveawayKind `json:"kind"`
	Title       string       `json:"title"`
	Prize       *string      `json:"prize,omitempty"`
	Description *string      `json:"description,omitempty"`
	EndsAt      *time.Time   `json:"ends_at,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
}

type GiveawayPlayer struct {
	ID               int          `json:"id"`
	GiveawayID       int          `json:"giveaway_id"`
	UserID           int64        `json:"user_id"`
	UsernameSnapshot *string      `json:"username_snapshot,omitempty"`
	Points           int          `json:"points_in_giveaway"`
	Kind             GiveawayKind `json:"kind"`
	JoinedAt         time.Time    `json:"joined_at"`
}

package models

import "time"

// DefaultPlayerName is used when join_room carries no display name.
const DefaultPlayerName = "Player"

// Player is a room member, keyed by connection ID. The connection ID doubles
// as the player ID in all messages.
type Player struct {
	ID       string
	Name     string
	Score    int
	Team     TeamID
	JoinedAt time.Time
}

// NewPlayer creates a player record for connID. An empty name falls back to
// DefaultPlayerName.
func NewPlayer(connID, name string, now time.Time) *Player {
	if name == "" {
		name = DefaultPlayerName
	}
	return &Player{
		ID:       connID,
		Name:     name,
		JoinedAt: now,
	}
}

package models

import "time"

// Mode describes how a room tallies points.
type Mode string

const (
	ModeFreeplay Mode = "freeplay"
	ModeTeams    Mode = "teams"
)

// TeamID identifies one of the two fixed team slots.
type TeamID string

const (
	TeamNone TeamID = ""
	TeamA    TeamID = "A"
	TeamB    TeamID = "B"
)

// Team is one of the two team slots of a room. Score is a derived total of
// member deltas and, unlike player scores, is not clamped at zero.
type Team struct {
	Name  string
	Score int
}

// Room is the authoritative state of one game session. All access goes through
// the room store; nothing outside it holds a mutable reference.
type Room struct {
	Code       string
	HostConnID string
	Mode       Mode
	Players    map[string]*Player
	BuzzWinner string
	BuzzLocked bool
	BuzzQueue  []string
	Teams      map[TeamID]*Team
	CreatedAt  time.Time
}

// NewRoom creates a room owned by hostConnID with both team slots present.
func NewRoom(code, hostConnID string, now time.Time) *Room {
	return &Room{
		Code:       code,
		HostConnID: hostConnID,
		Mode:       ModeFreeplay,
		Players:    make(map[string]*Player),
		Teams: map[TeamID]*Team{
			TeamA: {},
			TeamB: {},
		},
		CreatedAt: now,
	}
}

// Member reports whether connID has a player record in the room.
func (r *Room) Member(connID string) bool {
	_, ok := r.Players[connID]
	return ok
}

// HasBuzzed reports whether connID already appears in the buzz queue for the
// current round.
func (r *Room) HasBuzzed(connID string) bool {
	for _, id := range r.BuzzQueue {
		if id == connID {
			return true
		}
	}
	return false
}

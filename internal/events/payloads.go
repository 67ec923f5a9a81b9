package events

import "github.com/mcourt/buzzroom/internal/models"

// PlayerView is the client-facing shape of a room member.
type PlayerView struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Score int           `json:"score"`
	Team  models.TeamID `json:"team,omitempty"`
}

// TeamView is the client-facing shape of a team slot.
type TeamView struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoomSnapshot is the denormalized, read-only view of a room sent with every
// room_update. Players are ordered by join time.
type RoomSnapshot struct {
	Code       string                     `json:"code"`
	HostID     string                     `json:"host_id"`
	Mode       models.Mode                `json:"mode"`
	Players    []PlayerView               `json:"players"`
	BuzzWinner string                     `json:"buzz_winner,omitempty"`
	BuzzQueue  []string                   `json:"buzz_queue"`
	BuzzLocked bool                       `json:"buzz_locked"`
	Teams      map[models.TeamID]TeamView `json:"teams"`
}

// QueueUpdatePayload carries the buzz arrival order for the current round.
type QueueUpdatePayload struct {
	PlayerIDs []string `json:"player_ids"`
}

// ShowScorePopupPayload carries team totals at a round boundary.
type ShowScorePopupPayload struct {
	TeamScores map[models.TeamID]TeamView `json:"team_scores"`
}

// ErrorMessagePayload is sent only to the originating connection on a
// validation or not-found failure.
type ErrorMessagePayload struct {
	Text string `json:"text"`
}

// EmptyPayload is the body of events that carry no data.
type EmptyPayload struct{}

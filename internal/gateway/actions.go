package gateway

import "encoding/json"

// ActionType tags the closed set of client-initiated actions. Anything else
// is rejected at the boundary.
type ActionType string

const (
	ActionCreateRoom     ActionType = "create_room"
	ActionJoinRoom       ActionType = "join_room"
	ActionBuzz           ActionType = "buzz"
	ActionResetBuzz      ActionType = "reset_buzz"
	ActionLockBuzzers    ActionType = "lock_buzzers"
	ActionUnlockBuzzers  ActionType = "unlock_buzzers"
	ActionSetTeams       ActionType = "set_teams"
	ActionAssignTeam     ActionType = "assign_team"
	ActionAwardPoints    ActionType = "award_points"
	ActionStartGame      ActionType = "start_game"
	ActionStartNextRound ActionType = "start_next_round"
)

// Action is the envelope for every inbound client message.
type Action struct {
	Type ActionType      `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Payload field names follow the wire protocol the web client speaks.

type CreateRoomPayload struct {
	RoomCode string `json:"roomCode" validate:"required"`
}

type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode" validate:"required"`
	PlayerName string `json:"playerName"`
}

// RoomActionPayload covers buzz, reset_buzz, lock/unlock, start_game and
// start_next_round, which carry only the room code.
type RoomActionPayload struct {
	RoomCode string `json:"roomCode" validate:"required"`
}

type SetTeamsPayload struct {
	RoomCode string `json:"roomCode" validate:"required"`
	TeamA    string `json:"teamA"`
	TeamB    string `json:"teamB"`
}

type AssignTeamPayload struct {
	RoomCode string `json:"roomCode" validate:"required"`
	PlayerID string `json:"playerId" validate:"required"`
	Team     string `json:"team" validate:"omitempty,oneof=A B"`
}

type AwardPointsPayload struct {
	RoomCode string `json:"roomCode" validate:"required"`
	PlayerID string `json:"playerId" validate:"required"`
	Points   int    `json:"points"`
}

package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/mcourt/buzzroom/internal/models"
	"github.com/mcourt/buzzroom/internal/rooms"
)

// Router decodes inbound actions, validates their shape and dispatches them
// to the rooms app. Only validation and not-found rejections are surfaced to
// the caller; authority rejections stay silent.
type Router struct {
	app      *rooms.App
	validate *validator.Validate
}

// NewRouter creates a router over the rooms app.
func NewRouter(app *rooms.App) *Router {
	return &Router{
		app:      app,
		validate: validator.New(),
	}
}

// HandleMessage processes one raw client message.
func (rt *Router) HandleMessage(conn *Connection, data []byte) {
	var action Action
	if err := json.Unmarshal(data, &action); err != nil {
		rt.app.SendError(conn.ID, "", "malformed message")
		return
	}

	var (
		res      rooms.Result
		roomCode string
	)

	switch action.Type {
	case ActionCreateRoom:
		var p CreateRoomPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.CreateRoom(conn.ID, p.RoomCode)

	case ActionJoinRoom:
		var p JoinRoomPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.JoinRoom(conn.ID, p.RoomCode, p.PlayerName)

	case ActionBuzz:
		var p RoomActionPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.Buzz(conn.ID, p.RoomCode)

	case ActionResetBuzz:
		var p RoomActionPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.ResetBuzz(conn.ID, p.RoomCode)

	case ActionLockBuzzers:
		var p RoomActionPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.LockBuzzers(conn.ID, p.RoomCode)

	case ActionUnlockBuzzers:
		var p RoomActionPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.UnlockBuzzers(conn.ID, p.RoomCode)

	case ActionSetTeams:
		var p SetTeamsPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.SetTeams(conn.ID, p.RoomCode, p.TeamA, p.TeamB)

	case ActionAssignTeam:
		var p AssignTeamPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "invalid assign_team payload")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.AssignTeam(conn.ID, p.RoomCode, p.PlayerID, models.TeamID(p.Team))

	case ActionAwardPoints:
		var p AwardPointsPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "invalid award_points payload")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.AwardPoints(conn.ID, p.RoomCode, p.PlayerID, p.Points)

	case ActionStartGame:
		var p RoomActionPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.StartGame(conn.ID, p.RoomCode)

	case ActionStartNextRound:
		var p RoomActionPayload
		if err := rt.decode(action.Data, &p); err != nil {
			rt.app.SendError(conn.ID, "", "missing room code")
			return
		}
		roomCode = p.RoomCode
		res = rt.app.StartNextRound(conn.ID, p.RoomCode)

	default:
		rt.app.SendError(conn.ID, "", fmt.Sprintf("unknown action %q", action.Type))
		return
	}

	if !res.Accepted {
		log.Debug().
			Str("conn_id", conn.ID).
			Str("action", string(action.Type)).
			Str("reason", string(res.Reason)).
			Msg("action rejected")
		if res.Surfaceable() {
			rt.app.SendError(conn.ID, roomCode, res.Message)
		}
	}
}

// decode unmarshals an action payload and validates its shape.
func (rt *Router) decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := rt.validate.Struct(v); err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	return nil
}

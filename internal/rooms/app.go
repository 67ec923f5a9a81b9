package rooms

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcourt/buzzroom/internal/events"
	"github.com/mcourt/buzzroom/internal/models"
	"github.com/mcourt/buzzroom/internal/roomcode"
)

// Broadcaster is what the app needs from the connection layer: room channel
// membership plus fire-and-forget delivery. Sends must never block a caller,
// and DropRoom must not discard events already queued for the room.
type Broadcaster interface {
	Attach(connID, roomCode string)
	Detach(connID, roomCode string)
	DropRoom(roomCode string)
	BroadcastToRoom(roomCode string, evt *events.Event)
	SendToConnection(connID string, evt *events.Event)
}

// EventSink receives a copy of every broadcast event, e.g. for relaying to an
// external stream. Publish must not block.
type EventSink interface {
	Publish(evt *events.Event)
}

// App owns all game logic. Every handler validates authority and
// preconditions, mutates the room table under the room's lock as one
// run-to-completion unit, and broadcasts the recomputed snapshot.
type App struct {
	store       *Store
	broadcaster Broadcaster
	sink        EventSink
	clock       clockwork.Clock
}

// NewApp creates the room coordination app. sink may be nil.
func NewApp(store *Store, broadcaster Broadcaster, sink EventSink, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		store:       store,
		broadcaster: broadcaster,
		sink:        sink,
		clock:       clock,
	}
}

type pendingEvent struct {
	typ     events.Type
	payload any
}

// emit builds the envelope for a pending event and fans it out to the room.
func (a *App) emit(roomCode string, pe pendingEvent) {
	evt, err := events.New(pe.typ, roomCode, a.clock.Now(), pe.payload)
	if err != nil {
		log.Error().Err(err).Str("room_code", roomCode).Str("event_type", string(pe.typ)).Msg("failed to build event")
		return
	}
	a.broadcaster.BroadcastToRoom(roomCode, evt)
	if a.sink != nil {
		a.sink.Publish(evt)
	}
}

// SendError delivers an error_message to a single connection.
func (a *App) SendError(connID, roomCode, text string) {
	evt, err := events.New(events.TypeErrorMessage, roomCode, a.clock.Now(), events.ErrorMessagePayload{Text: text})
	if err != nil {
		log.Error().Err(err).Msg("failed to build error_message event")
		return
	}
	a.broadcaster.SendToConnection(connID, evt)
}

// withRoom runs fn with the room's entry lock held and enqueues its pending
// events before releasing it. Enqueueing is non-blocking, and holding the
// lock through it keeps the broadcast queue in mutation order.
func (a *App) withRoom(code string, fn func(r *models.Room) (Result, []pendingEvent)) Result {
	norm := roomcode.Normalize(code)
	if norm == "" {
		return rejected(ReasonMissingCode, "missing room code")
	}
	e := a.store.get(norm)
	if e == nil {
		return rejected(ReasonRoomNotFound, "room not found")
	}

	e.mu.Lock()
	res, pending := fn(e.room)
	for _, pe := range pending {
		a.emit(norm, pe)
	}
	e.mu.Unlock()

	return res
}

// CreateRoom creates a room for code, or reassigns the host to connID if the
// code is already in use. An empty code after normalization is a validation
// rejection.
func (a *App) CreateRoom(connID, code string) Result {
	norm := roomcode.Normalize(code)
	if norm == "" {
		return rejected(ReasonMissingCode, "missing room code")
	}

	e, created := a.store.create(norm, connID, a.clock.Now())

	e.mu.Lock()
	e.room.HostConnID = connID
	a.broadcaster.Attach(connID, norm)
	a.emit(norm, pendingEvent{events.TypeRoomUpdate, snapshotRoom(e.room)})
	e.mu.Unlock()

	log.Info().
		Str("room_code", norm).
		Str("conn_id", connID).
		Bool("created", created).
		Msg("room claimed")

	return accepted()
}

// JoinRoom adds connID to the room as a player. Re-joining is idempotent and
// keeps the existing record.
func (a *App) JoinRoom(connID, code, name string) Result {
	norm := roomcode.Normalize(code)
	if norm == "" {
		return rejected(ReasonMissingCode, "missing room code")
	}
	e := a.store.get(norm)
	if e == nil {
		return rejected(ReasonRoomNotFound, "room not found")
	}

	e.mu.Lock()
	if !e.room.Member(connID) {
		e.room.Players[connID] = models.NewPlayer(connID, name, a.clock.Now())
	}
	a.broadcaster.Attach(connID, norm)
	a.emit(norm, pendingEvent{events.TypeRoomUpdate, snapshotRoom(e.room)})
	e.mu.Unlock()

	log.Info().
		Str("room_code", norm).
		Str("conn_id", connID).
		Msg("player joined room")

	return accepted()
}

// Buzz arbitrates the shared buzzer. The first accepted buzz in an open round
// wins; a winner is decided by server receipt order only. Later buzzes from
// other members are queued once each; repeats are no-ops.
func (a *App) Buzz(connID, code string) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if !r.Member(connID) {
			return rejected(ReasonNotMember, "not a member of this room"), nil
		}
		if r.BuzzLocked {
			return rejected(ReasonLocked, "buzzers are locked"), nil
		}
		if r.HasBuzzed(connID) {
			return rejected(ReasonAlreadyBuzzed, "already buzzed this round"), nil
		}

		if r.BuzzWinner == "" {
			r.BuzzWinner = connID
			log.Debug().
				Str("room_code", r.Code).
				Str("conn_id", connID).
				Msg("buzz winner set")
		}
		r.BuzzQueue = append(r.BuzzQueue, connID)

		return accepted(), []pendingEvent{
			{events.TypeRoomUpdate, snapshotRoom(r)},
			{events.TypeQueueUpdate, events.QueueUpdatePayload{PlayerIDs: append([]string(nil), r.BuzzQueue...)}},
		}
	})
}

// ResetBuzz returns the room to an open round: no winner, empty queue. Host
// only; non-host callers are dropped silently.
func (a *App) ResetBuzz(connID, code string) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can reset the buzzer"), nil
		}
		r.BuzzWinner = ""
		r.BuzzQueue = nil

		return accepted(), []pendingEvent{
			{events.TypeRoomUpdate, snapshotRoom(r)},
			{events.TypeQueueUpdate, events.QueueUpdatePayload{PlayerIDs: []string{}}},
		}
	})
}

// LockBuzzers closes the global buzz gate. Host only. The gate is orthogonal
// to the open/won state of the current round.
func (a *App) LockBuzzers(connID, code string) Result {
	return a.setLocked(connID, code, true)
}

// UnlockBuzzers opens the global buzz gate. Host only.
func (a *App) UnlockBuzzers(connID, code string) Result {
	return a.setLocked(connID, code, false)
}

func (a *App) setLocked(connID, code string, locked bool) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can toggle the buzzers"), nil
		}
		r.BuzzLocked = locked

		gate := events.TypeUnlockAll
		if locked {
			gate = events.TypeLockAll
		}
		return accepted(), []pendingEvent{
			{gate, events.EmptyPayload{}},
			{events.TypeRoomUpdate, snapshotRoom(r)},
		}
	})
}

// AwardPoints adjusts a player's score by delta, floored at zero. If the
// player is on a team the team total moves by the raw delta; team totals are
// derived and deliberately unclamped.
func (a *App) AwardPoints(connID, code, playerID string, delta int) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can award points"), nil
		}
		p, ok := r.Players[playerID]
		if !ok {
			return rejected(ReasonUnknownPlayer, "unknown player"), nil
		}

		p.Score += delta
		if p.Score < 0 {
			p.Score = 0
		}
		if t, ok := r.Teams[p.Team]; ok && p.Team != models.TeamNone {
			t.Score += delta
		}

		log.Debug().
			Str("room_code", r.Code).
			Str("player_id", playerID).
			Int("delta", delta).
			Int("score", p.Score).
			Msg("points awarded")

		return accepted(), []pendingEvent{
			{events.TypeRoomUpdate, snapshotRoom(r)},
		}
	})
}

// SetTeams sets the two team display names and switches the room to team
// mode. Host only; re-calling overwrites.
func (a *App) SetTeams(connID, code, nameA, nameB string) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can set teams"), nil
		}
		r.Teams[models.TeamA].Name = nameA
		r.Teams[models.TeamB].Name = nameB
		r.Mode = models.ModeTeams

		return accepted(), []pendingEvent{
			{events.TypeRoomUpdate, snapshotRoom(r)},
		}
	})
}

// AssignTeam sets one player's team membership. Host only. An empty team
// clears membership.
func (a *App) AssignTeam(connID, code, playerID string, team models.TeamID) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can assign teams"), nil
		}
		p, ok := r.Players[playerID]
		if !ok {
			return rejected(ReasonUnknownPlayer, "unknown player"), nil
		}
		p.Team = team

		return accepted(), []pendingEvent{
			{events.TypeRoomUpdate, snapshotRoom(r)},
		}
	})
}

// StartGame begins play: any standing score popup is dismissed, the buzz
// state is cleared and the gate opened. Host only.
func (a *App) StartGame(connID, code string) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can start the game"), nil
		}
		r.BuzzWinner = ""
		r.BuzzQueue = nil
		r.BuzzLocked = false

		return accepted(), []pendingEvent{
			{events.TypeCloseScorePopup, events.EmptyPayload{}},
			{events.TypeRoomUpdate, snapshotRoom(r)},
			{events.TypeQueueUpdate, events.QueueUpdatePayload{PlayerIDs: []string{}}},
		}
	})
}

// StartNextRound marks a round boundary: team totals are shown to everyone
// and the buzz state is cleared for the next round. The popup stays up until
// the next StartGame. Host only.
func (a *App) StartNextRound(connID, code string) Result {
	return a.withRoom(code, func(r *models.Room) (Result, []pendingEvent) {
		if r.HostConnID != connID {
			return rejected(ReasonNotHost, "only the host can advance the round"), nil
		}
		popup := events.ShowScorePopupPayload{TeamScores: teamViews(r)}
		r.BuzzWinner = ""
		r.BuzzQueue = nil

		return accepted(), []pendingEvent{
			{events.TypeShowScorePopup, popup},
			{events.TypeRoomUpdate, snapshotRoom(r)},
			{events.TypeQueueUpdate, events.QueueUpdatePayload{PlayerIDs: []string{}}},
		}
	})
}

// Disconnect reconciles a dropped connection. The player is removed from any
// room it was in, an in-flight buzz it held is cleared, and rooms it hosted
// are closed for everyone. No host migration happens here; only a live
// create_room re-claim moves the host.
func (a *App) Disconnect(connID string) {
	for _, e := range a.store.entries() {
		var (
			code     string
			removed  bool
			hostGone bool
		)

		e.mu.Lock()
		r := e.room
		code = r.Code
		if r.Member(connID) {
			delete(r.Players, connID)
			if r.BuzzWinner == connID {
				r.BuzzWinner = ""
			}
			queue := r.BuzzQueue[:0:0]
			for _, id := range r.BuzzQueue {
				if id != connID {
					queue = append(queue, id)
				}
			}
			r.BuzzQueue = queue
			removed = true
			a.broadcaster.Detach(connID, code)
			a.emit(code, pendingEvent{events.TypeRoomUpdate, snapshotRoom(r)})
			a.emit(code, pendingEvent{events.TypeQueueUpdate, events.QueueUpdatePayload{PlayerIDs: append([]string{}, queue...)}})
		}
		hostGone = r.HostConnID == connID
		if hostGone {
			a.emit(code, pendingEvent{events.TypeRoomClosed, events.EmptyPayload{}})
		}
		e.mu.Unlock()

		if removed {
			log.Info().
				Str("room_code", code).
				Str("conn_id", connID).
				Msg("player removed after disconnect")
		}
		if hostGone {
			a.store.remove(code)
			a.broadcaster.DropRoom(code)
			log.Info().
				Str("room_code", code).
				Str("conn_id", connID).
				Msg("room closed after host disconnect")
		}
	}
}

// RoomSummary is the ops-facing listing of a live room.
type RoomSummary struct {
	Code        string      `json:"code"`
	Mode        models.Mode `json:"mode"`
	PlayerCount int         `json:"player_count"`
	BuzzLocked  bool        `json:"buzz_locked"`
}

// Snapshot returns the current client view of a room, if it exists.
func (a *App) Snapshot(code string) (events.RoomSnapshot, bool) {
	e := a.store.get(roomcode.Normalize(code))
	if e == nil {
		return events.RoomSnapshot{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshotRoom(e.room), true
}

// ActiveRooms summarizes all live rooms.
func (a *App) ActiveRooms() []RoomSummary {
	entries := a.store.entries()
	out := make([]RoomSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, RoomSummary{
			Code:        e.room.Code,
			Mode:        e.room.Mode,
			PlayerCount: len(e.room.Players),
			BuzzLocked:  e.room.BuzzLocked,
		})
		e.mu.Unlock()
	}
	return out
}

package gateway

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcourt/buzzroom/internal/events"
	"github.com/mcourt/buzzroom/internal/rooms"
)

// stubBroadcaster satisfies rooms.Broadcaster for router tests; only direct
// sends and room broadcasts are recorded.
type stubBroadcaster struct {
	mu         sync.Mutex
	broadcasts []*events.Event
	directs    map[string][]*events.Event
}

func newStubBroadcaster() *stubBroadcaster {
	return &stubBroadcaster{directs: make(map[string][]*events.Event)}
}

func (s *stubBroadcaster) Attach(connID, roomCode string) {}
func (s *stubBroadcaster) Detach(connID, roomCode string) {}
func (s *stubBroadcaster) DropRoom(roomCode string)       {}

func (s *stubBroadcaster) BroadcastToRoom(roomCode string, evt *events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcasts = append(s.broadcasts, evt)
}

func (s *stubBroadcaster) SendToConnection(connID string, evt *events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directs[connID] = append(s.directs[connID], evt)
}

func (s *stubBroadcaster) errorsFor(t *testing.T, connID string) []string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, evt := range s.directs[connID] {
		if evt.Type != events.TypeErrorMessage {
			continue
		}
		var p events.ErrorMessagePayload
		require.NoError(t, json.Unmarshal(evt.Data, &p))
		out = append(out, p.Text)
	}
	return out
}

func newTestRouter(t *testing.T) (*Router, *stubBroadcaster) {
	t.Helper()
	sb := newStubBroadcaster()
	app := rooms.NewApp(rooms.NewStore(), sb, nil, nil)
	return NewRouter(app), sb
}

func action(t *testing.T, typ ActionType, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(Action{Type: typ, Data: data})
	require.NoError(t, err)
	return raw
}

func TestRouter_MalformedMessage(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	conn := &Connection{ID: "c1"}

	rt.HandleMessage(conn, []byte("{not json"))

	req.Equal([]string{"malformed message"}, sb.errorsFor(t, "c1"))
}

func TestRouter_UnknownActionRejected(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	conn := &Connection{ID: "c1"}

	rt.HandleMessage(conn, action(t, ActionType("teleport"), RoomActionPayload{RoomCode: "AB12"}))

	errs := sb.errorsFor(t, "c1")
	req.Len(errs, 1)
	req.Contains(errs[0], "unknown action")
}

func TestRouter_MissingRoomCodeValidated(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	conn := &Connection{ID: "c1"}

	rt.HandleMessage(conn, action(t, ActionBuzz, RoomActionPayload{}))

	req.Equal([]string{"missing room code"}, sb.errorsFor(t, "c1"))
	req.Empty(sb.broadcasts)
}

func TestRouter_NotFoundSurfaced(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	conn := &Connection{ID: "c1"}

	rt.HandleMessage(conn, action(t, ActionJoinRoom, JoinRoomPayload{RoomCode: "NOPE", PlayerName: "Ann"}))

	req.Equal([]string{"room not found"}, sb.errorsFor(t, "c1"))
}

func TestRouter_AuthorityRejectionStaysSilent(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	host := &Connection{ID: "host"}
	player := &Connection{ID: "p1"}

	rt.HandleMessage(host, action(t, ActionCreateRoom, CreateRoomPayload{RoomCode: "AB12"}))
	rt.HandleMessage(player, action(t, ActionJoinRoom, JoinRoomPayload{RoomCode: "AB12", PlayerName: "Ann"}))
	rt.HandleMessage(player, action(t, ActionResetBuzz, RoomActionPayload{RoomCode: "AB12"}))

	req.Empty(sb.errorsFor(t, "p1"), "authority rejections must not leak to the caller")
}

func TestRouter_AssignTeamValidatesTeam(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	host := &Connection{ID: "host"}

	rt.HandleMessage(host, action(t, ActionCreateRoom, CreateRoomPayload{RoomCode: "AB12"}))
	rt.HandleMessage(host, action(t, ActionAssignTeam, AssignTeamPayload{RoomCode: "AB12", PlayerID: "p1", Team: "C"}))

	errs := sb.errorsFor(t, "host")
	req.Len(errs, 1)
	req.Contains(errs[0], "assign_team")
}

func TestRouter_FullActionFlow(t *testing.T) {
	req := require.New(t)
	rt, sb := newTestRouter(t)
	host := &Connection{ID: "host"}
	player := &Connection{ID: "p1"}

	rt.HandleMessage(host, action(t, ActionCreateRoom, CreateRoomPayload{RoomCode: "ab12"}))
	rt.HandleMessage(player, action(t, ActionJoinRoom, JoinRoomPayload{RoomCode: "AB12", PlayerName: "Ann"}))
	rt.HandleMessage(player, action(t, ActionBuzz, RoomActionPayload{RoomCode: "AB12"}))
	rt.HandleMessage(host, action(t, ActionAwardPoints, AwardPointsPayload{RoomCode: "AB12", PlayerID: "p1", Points: 2}))
	rt.HandleMessage(host, action(t, ActionResetBuzz, RoomActionPayload{RoomCode: "AB12"}))

	var last events.RoomSnapshot
	for _, evt := range sb.broadcasts {
		if evt.Type == events.TypeRoomUpdate {
			req.NoError(json.Unmarshal(evt.Data, &last))
		}
	}
	req.Equal("AB12", last.Code)
	req.Len(last.Players, 1)
	req.Equal(2, last.Players[0].Score)
	req.Empty(last.BuzzWinner)
	req.Empty(sb.errorsFor(t, "p1"))
	req.Empty(sb.errorsFor(t, "host"))
}

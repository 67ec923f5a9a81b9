package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcourt/buzzroom/internal/models"
)

func TestNewAndParsePayload(t *testing.T) {
	req := require.New(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	snap := RoomSnapshot{
		Code:   "AB12",
		HostID: "host-1",
		Mode:   models.ModeTeams,
		Players: []PlayerView{
			{ID: "p1", Name: "Ann", Score: 3, Team: models.TeamA},
		},
		BuzzWinner: "p1",
		BuzzQueue:  []string{"p1"},
		Teams: map[models.TeamID]TeamView{
			models.TeamA: {Name: "Reds", Score: 3},
			models.TeamB: {Name: "Blues"},
		},
	}

	evt, err := New(TypeRoomUpdate, "AB12", ts, snap)
	req.NoError(err)
	req.NotEmpty(evt.ID)
	req.Equal("AB12", evt.RoomCode)
	req.Equal(ts, evt.Timestamp)

	parsed, err := ParsePayload(evt)
	req.NoError(err)
	req.Equal(snap, parsed)
}

func TestParsePayload_ErrorMessage(t *testing.T) {
	req := require.New(t)

	evt, err := New(TypeErrorMessage, "", time.Now(), ErrorMessagePayload{Text: "room not found"})
	req.NoError(err)

	parsed, err := ParsePayload(evt)
	req.NoError(err)
	req.Equal(ErrorMessagePayload{Text: "room not found"}, parsed)
}

func TestParsePayload_EmptyBodied(t *testing.T) {
	req := require.New(t)

	for _, typ := range []Type{TypeCloseScorePopup, TypeLockAll, TypeUnlockAll, TypeRoomClosed} {
		evt, err := New(typ, "AB12", time.Now(), EmptyPayload{})
		req.NoError(err)

		parsed, err := ParsePayload(evt)
		req.NoError(err)
		req.Equal(EmptyPayload{}, parsed)
	}
}

func TestParsePayload_UnknownType(t *testing.T) {
	req := require.New(t)

	evt, err := New(Type("mystery"), "AB12", time.Now(), EmptyPayload{})
	req.NoError(err)

	parsed, err := ParsePayload(evt)
	req.NoError(err)
	req.Nil(parsed)
}

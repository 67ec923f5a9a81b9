package rooms

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mcourt/buzzroom/internal/events"
	"github.com/mcourt/buzzroom/internal/models"
)

// snapshotRoom computes the denormalized client view of a room. It is a pure
// function of room state and is recomputed on every broadcast, never cached.
// Caller must hold the room's entry lock.
func snapshotRoom(r *models.Room) events.RoomSnapshot {
	players := lo.Values(r.Players)
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})

	views := lo.Map(players, func(p *models.Player, _ int) events.PlayerView {
		return events.PlayerView{
			ID:    p.ID,
			Name:  p.Name,
			Score: p.Score,
			Team:  p.Team,
		}
	})

	queue := make([]string, len(r.BuzzQueue))
	copy(queue, r.BuzzQueue)

	return events.RoomSnapshot{
		Code:       r.Code,
		HostID:     r.HostConnID,
		Mode:       r.Mode,
		Players:    views,
		BuzzWinner: r.BuzzWinner,
		BuzzQueue:  queue,
		BuzzLocked: r.BuzzLocked,
		Teams:      teamViews(r),
	}
}

// teamViews returns the two team slots with their display names and derived
// totals. Caller must hold the room's entry lock.
func teamViews(r *models.Room) map[models.TeamID]events.TeamView {
	out := make(map[models.TeamID]events.TeamView, len(r.Teams))
	for id, t := range r.Teams {
		out[id] = events.TeamView{Name: t.Name, Score: t.Score}
	}
	return out
}

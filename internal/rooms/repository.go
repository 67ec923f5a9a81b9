package rooms

import (
	"sync"
	"time"

	"github.com/mcourt/buzzroom/internal/models"
)

// Store is the authoritative room table. It exclusively owns all Room and
// Player records; callers mutate them only while holding the room's entry
// lock, so each room's mutations are run-to-completion units.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	room *models.Room
}

// NewStore creates an empty room table.
func NewStore() *Store {
	return &Store{rooms: make(map[string]*roomEntry)}
}

// create returns the entry for code, creating the room if absent. Codes must
// already be normalized. The second return reports whether a room was created.
func (s *Store) create(code, hostConnID string, now time.Time) (*roomEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.rooms[code]; ok {
		return e, false
	}
	e := &roomEntry{room: models.NewRoom(code, hostConnID, now)}
	s.rooms[code] = e
	return e, true
}

// get returns the entry for a normalized code, or nil.
func (s *Store) get(code string) *roomEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[code]
}

// remove deletes a room from the table.
func (s *Store) remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// entries returns all current entries, for the disconnect sweep.
func (s *Store) entries() []*roomEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*roomEntry, 0, len(s.rooms))
	for _, e := range s.rooms {
		out = append(out, e)
	}
	return out
}

// Codes returns the codes of all live rooms.
func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		out = append(out, code)
	}
	return out
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcourt/buzzroom/internal/events"
	"github.com/mcourt/buzzroom/internal/roomcode"
	"github.com/mcourt/buzzroom/internal/rooms"
)

// StateProvider defines the read-only room state the HTTP surface needs.
type StateProvider interface {
	Snapshot(code string) (events.RoomSnapshot, bool)
	ActiveRooms() []rooms.RoomSummary
}

// StateHandler serves read-only room state over plain HTTP, for ops tooling
// and the lobby page.
type StateHandler struct {
	stateProvider StateProvider
}

// NewStateHandler creates a new state handler.
func NewStateHandler(provider StateProvider) *StateHandler {
	return &StateHandler{
		stateProvider: provider,
	}
}

// HandleActiveRooms handles GET /api/rooms/active.
func (h *StateHandler) HandleActiveRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summaries := h.stateProvider.ActiveRooms()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		log.Error().Err(err).Msg("failed to encode active rooms response")
	}
}

// HandleNewRoomCode handles GET /api/rooms/code. It hands out a fresh
// unambiguous code for the client to claim with create_room.
func (h *StateHandler) HandleNewRoomCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"code": roomcode.Generate()}); err != nil {
		log.Error().Err(err).Msg("failed to encode room code response")
	}
}

// HandleRoomState handles GET /api/rooms/{code}/state.
func (h *StateHandler) HandleRoomState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := extractRoomCodeFromPath(r.URL.Path)
	if code == "" {
		http.Error(w, "Room code is required", http.StatusBadRequest)
		return
	}

	snap, ok := h.stateProvider.Snapshot(code)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Error().Err(err).Msg("failed to encode room state response")
	}
}

// RegisterStateRoutes registers state-related HTTP routes.
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/rooms/active", h.HandleActiveRooms)
	mux.HandleFunc("/api/rooms/code", h.HandleNewRoomCode)

	mux.HandleFunc("/api/rooms/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/state") {
			h.HandleRoomState(w, r)
		} else {
			http.NotFound(w, r)
		}
	})
}

// extractRoomCodeFromPath extracts the code from a path like
// /api/rooms/{code}/state.
func extractRoomCodeFromPath(path string) string {
	const prefix = "/api/rooms/"
	const suffix = "/state"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	code := path[len(prefix) : len(path)-len(suffix)]
	if code == "" || strings.Contains(code, "/") {
		return ""
	}
	return code
}

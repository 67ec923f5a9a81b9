package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcourt/buzzroom/internal/rooms"
)

// Service ties the connection manager, router and HTTP handlers together.
type Service struct {
	connectionManager *ConnectionManager
	router            *Router
	wsHandler         *WebSocketHandler
	stateHandler      *StateHandler
}

// NewService wires the gateway around an already-constructed rooms app. The
// app must have been built with the same connection manager as its
// broadcaster.
func NewService(cm *ConnectionManager, app *rooms.App) *Service {
	router := NewRouter(app)
	cm.SetMessageHandler(router.HandleMessage)
	cm.SetDisconnectHandler(app.Disconnect)

	return &Service{
		connectionManager: cm,
		router:            router,
		wsHandler:         NewWebSocketHandler(cm),
		stateHandler:      NewStateHandler(app),
	}
}

// Start runs the gateway until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	log.Info().Msg("starting gateway service")
	s.connectionManager.Start(ctx)
	log.Info().Msg("gateway service stopped")
}

// RegisterRoutes registers the WebSocket and state HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.wsHandler.RegisterRoutes(mux)
	s.stateHandler.RegisterStateRoutes(mux)
	log.Info().Msg("gateway routes registered")
}

// Stats returns connection statistics.
func (s *Service) Stats() Stats {
	return s.connectionManager.GetStats()
}

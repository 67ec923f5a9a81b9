package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/mcourt/buzzroom/internal/gateway"
	"github.com/mcourt/buzzroom/internal/relay"
	"github.com/mcourt/buzzroom/internal/rooms"
)

// Services holds the wired application components.
type Services struct {
	Store   *rooms.Store
	App     *rooms.App
	Gateway *gateway.Service
	Relay   *relay.Publisher
}

// setupServices wires the dependency chain:
// store → connection manager → rooms app → gateway service, with an optional
// relay tee.
func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	store := rooms.NewStore()

	connCfg := gateway.DefaultConnectionConfig()
	connCfg.WriteTimeout = cfg.writeTimeout()
	connCfg.ReadTimeout = cfg.readTimeout()
	connCfg.PingInterval = cfg.pingInterval()
	connCfg.MaxMessageSize = cfg.Gateway.MaxMessageSize
	cm := gateway.NewConnectionManager(connCfg)

	var (
		sink rooms.EventSink
		pub  *relay.Publisher
	)
	if cfg.Relay.Enabled {
		var err error
		pub, err = relay.NewPublisher(ctx, cfg.relayConfig())
		if err != nil {
			return nil, fmt.Errorf("setup relay publisher: %w", err)
		}
		sink = pub
	}

	app := rooms.NewApp(store, cm, sink, clockwork.NewRealClock())
	svc := gateway.NewService(cm, app)

	return &Services{
		Store:   store,
		App:     app,
		Gateway: svc,
		Relay:   pub,
	}, nil
}

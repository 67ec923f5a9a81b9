package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcourt/buzzroom/internal/events"
)

// Config holds configuration for the JetStream event relay.
type Config struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	BufferSize    int
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default relay configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		StreamName:    "BUZZER_EVENTS",
		SubjectPrefix: "buzzer.rooms",
		BufferSize:    256,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher tees every broadcast game event onto a JetStream stream so
// external consumers (projections, analytics) can follow room activity.
// Publish never blocks the game loop; the buffer drops on overflow.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config

	ch       chan *events.Event
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu      sync.Mutex
	running bool
}

// NewPublisher connects to NATS and ensures the target stream exists.
func NewPublisher(ctx context.Context, config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &Publisher{
		nc:       nc,
		js:       js,
		config:   config,
		ch:       make(chan *events.Event, config.BufferSize),
		stopChan: make(chan struct{}),
	}

	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

// ensureStream creates or updates the relay stream.
func (p *Publisher) ensureStream(ctx context.Context) error {
	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Buzzer room event relay",
		Subjects:    []string{p.config.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("create stream: %w", err)
	}

	log.Info().
		Str("stream", p.config.StreamName).
		Str("subjects", p.config.SubjectPrefix+".>").
		Msg("relay stream ready")
	return nil
}

// Start begins draining queued events onto the stream.
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("relay publisher already running")
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	log.Info().
		Str("stream", p.config.StreamName).
		Int("buffer", p.config.BufferSize).
		Msg("relay publisher started")
	return nil
}

// Stop drains the worker and closes the NATS connection.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return fmt.Errorf("relay publisher not running")
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
	p.nc.Close()

	log.Info().Msg("relay publisher stopped")
	return nil
}

// Publish queues an event for relay. It implements rooms.EventSink and never
// blocks; events are dropped when the buffer is full.
func (p *Publisher) Publish(evt *events.Event) {
	select {
	case p.ch <- evt:
	default:
		log.Warn().
			Str("room_code", evt.RoomCode).
			Str("event_type", string(evt.Type)).
			Msg("relay buffer full, dropping event")
	}
}

func (p *Publisher) run(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case evt := <-p.ch:
			p.publish(ctx, evt)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, evt *events.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for relay")
		return
	}

	subject := subjectFor(p.config.SubjectPrefix, evt)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		log.Error().
			Err(err).
			Str("subject", subject).
			Msg("failed to publish event to JetStream")
		return
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", evt.ID).
		Msg("event relayed")
}

// subjectFor maps an event to its relay subject,
// <prefix>.<ROOM_CODE>.<event_type>.
func subjectFor(prefix string, evt *events.Event) string {
	code := evt.RoomCode
	if code == "" {
		code = "_global"
	}
	return fmt.Sprintf("%s.%s.%s", prefix, code, evt.Type)
}

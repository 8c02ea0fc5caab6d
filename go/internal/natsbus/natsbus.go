// Package natsbus bridges game events over NATS so the API process and
// any external display processes can run separately: the API publishes
// every event to a subject per event type, and a consumer feeds them
// into the local websocket hub.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/michalkopec1981/saper-gra/go/internal/events"
)

// Config holds NATS connection settings.
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default NATS configuration.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "saper.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Connect dials NATS with reconnect handling.
func Connect(cfg Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
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
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Publisher publishes events to NATS. It implements events.Bus.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

func NewPublisher(nc *nats.Conn, subjectPrefix string) *Publisher {
	return &Publisher{nc: nc, prefix: subjectPrefix}
}

// Publish sends the event on "<prefix>.<event_type>". Events are
// ephemeral UI updates; no persistence or replay is wanted, so this is
// plain core NATS.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	subject := fmt.Sprintf("%s.%s", p.prefix, event.Type)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	log.Debug().Str("subject", subject).Int("size", len(data)).Msg("event published to NATS")
	return nil
}

// Consumer subscribes to the event subjects and forwards every event
// into a local bus (the websocket hub).
type Consumer struct {
	nc     *nats.Conn
	bus    events.Bus
	prefix string
}

func NewConsumer(nc *nats.Conn, bus events.Bus, subjectPrefix string) *Consumer {
	return &Consumer{nc: nc, bus: bus, prefix: subjectPrefix}
}

// Start subscribes and blocks until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	subject := c.prefix + ".>"
	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		var event events.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Error().Err(err).Str("subject", msg.Subject).Msg("failed to unmarshal event")
			return
		}
		if err := c.bus.Publish(ctx, event); err != nil {
			log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to hand event to hub")
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	log.Info().Str("subject", subject).Msg("NATS consumer started")

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		log.Error().Err(err).Msg("failed to unsubscribe")
	}
	log.Info().Msg("NATS consumer shutting down")
	return nil
}

package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// JetStreamPublisher publishes events to NATS JetStream on
// "<subject prefix>.<game id>", backed by one stream covering the prefix.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	prefix string
}

// NewJetStreamPublisher connects to url and makes sure the stream exists.
func NewJetStreamPublisher(url, stream, subjectPrefix string) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("scorekeeper-service"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	if _, err := js.StreamInfo(stream); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			nc.Close()
			return nil, fmt.Errorf("stream info %s: %w", stream, err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     stream,
			Subjects: []string{subjectPrefix + ".>"},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("add stream %s: %w", stream, err)
		}
	}
	return &JetStreamPublisher{nc: nc, js: js, prefix: subjectPrefix}, nil
}

// Subject returns the subject events of gameID are published on.
func (p *JetStreamPublisher) Subject(gameID string) string {
	return p.prefix + "." + gameID
}

func (p *JetStreamPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := nats.NewMsg(p.Subject(ev.GameID))
	msg.Data = data
	msg.Header.Set("Event-Type", string(ev.Type))
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return fmt.Errorf("jetstream publish: %w", err)
	}
	return nil
}

// Ping round-trips to the server, bounded by ctx.
func (p *JetStreamPublisher) Ping(ctx context.Context) error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats: %s", p.nc.Status())
	}
	return p.nc.FlushWithContext(ctx)
}

func (p *JetStreamPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

package pubsub

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Publisher ships events to a broker outside the process.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	// Ping reports whether the broker is reachable; it backs readiness.
	Ping(ctx context.Context) error
	Close() error
}

// Noop drops every event. It is the publisher of the "none" events driver.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Ping(context.Context) error           { return nil }
func (Noop) Close() error                         { return nil }

const publishTimeout = 5 * time.Second

// Forwarder drains the broker's catch-all subscription into a Publisher.
// Clock ticks are skipped unless ForwardTicks is set.
type Forwarder struct {
	broker       *Broker
	pub          Publisher
	log          zerolog.Logger
	ForwardTicks bool
}

// NewForwarder wires broker to pub.
func NewForwarder(broker *Broker, pub Publisher, log zerolog.Logger) *Forwarder {
	return &Forwarder{
		broker: broker,
		pub:    pub,
		log:    log.With().Str("module", "pubsub").Str("component", "forwarder").Logger(),
	}
}

// Run forwards until ctx is done or the broker closes. Publish failures are
// logged and the event is dropped.
func (f *Forwarder) Run(ctx context.Context) {
	ch := f.broker.SubscribeAll()
	defer f.broker.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Type == EventClockTick && !f.ForwardTicks {
				continue
			}
			pctx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := f.pub.Publish(pctx, ev); err != nil {
				f.log.Warn().Err(err).Str("game_id", ev.GameID).Str("type", string(ev.Type)).Msg("event publish failed")
			}
			cancel()
		}
	}
}

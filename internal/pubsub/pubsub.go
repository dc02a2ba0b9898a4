// Package pubsub fans game changes out to in-process subscribers (websocket
// clients) and forwards them to an external broker.
package pubsub

import (
	"sync"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// EventType names what changed.
type EventType string

const (
	EventGameCreated EventType = "game.created"
	EventGameUpdated EventType = "game.updated"
	EventClockTick   EventType = "game.clock"
	EventPlayAdded   EventType = "game.play"
	EventGameEnded   EventType = "game.ended"
	EventGameDeleted EventType = "game.deleted"

	// EventSnapshot is the first message of a stream: the game as it is now.
	EventSnapshot EventType = "game.snapshot"
)

// Event is one change notification. Game is the full snapshot after the
// change; Play is set when the change appended a play.
type Event struct {
	Type   EventType   `json:"type"`
	GameID string      `json:"gameId"`
	Game   *model.Game `json:"game,omitempty"`
	Play   *model.Play `json:"play,omitempty"`
	At     int64       `json:"at"`
}

const subscriberBuffer = 64

// allGames is the subscription key that receives every game's events.
const allGames = "*"

// Broker is an in-process, per-game publish/subscribe hub. Publish never
// blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string][]chan Event
	closed bool
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]chan Event)}
}

// Subscribe returns a channel receiving the events of gameID.
func (b *Broker) Subscribe(gameID string) chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[gameID] = append(b.subs[gameID], ch)
	return ch
}

// SubscribeAll returns a channel receiving the events of every game.
func (b *Broker) SubscribeAll() chan Event {
	return b.Subscribe(allGames)
}

// Unsubscribe removes and closes ch.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, subs := range b.subs {
		for i, sub := range subs {
			if sub != ch {
				continue
			}
			close(ch)
			subs = append(subs[:i], subs[i+1:]...)
			if len(subs) == 0 {
				delete(b.subs, key)
			} else {
				b.subs[key] = subs
			}
			return
		}
	}
}

// Publish delivers ev to the game's subscribers and the catch-all ones.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[ev.GameID] {
		trySend(ch, ev)
	}
	for _, ch := range b.subs[allGames] {
		trySend(ch, ev)
	}
}

func trySend(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}

// Subscribers counts open subscriptions for gameID.
func (b *Broker) Subscribers(gameID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[gameID])
}

// Close closes every subscription channel. Later publishes are dropped.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subs = nil
}

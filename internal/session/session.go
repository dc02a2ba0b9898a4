// Package session holds live games in memory and serializes their transitions.
// A Session is the single writer of one Game: every transition and every clock
// tick runs under the same lock, so read-modify-write of score, fouls and stats
// never interleaves.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/scorekeeper-service/internal/game"
	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// ErrClosed is returned by Apply once the session was torn down.
var ErrClosed = errors.New("session closed")

// DefaultTickInterval is one game-clock second.
const DefaultTickInterval = time.Second

// Transition maps one game snapshot to the next.
type Transition func(model.Game) model.Game

// Cause tells a change hook what produced the change.
type Cause int

const (
	CauseTransition Cause = iota
	CauseTick
)

// Change is handed to Options.OnChange after a new snapshot is installed.
type Change struct {
	Game  model.Game
	Cause Cause
	// Added holds the plays appended by this change, oldest first.
	Added []model.Play
}

// Options tunes a session. OnChange runs while the session lock is held, in
// change order; it must not block or call back into the session.
type Options struct {
	TickInterval time.Duration
	OnChange     func(Change)
	Logger       zerolog.Logger
}

// Session owns one live game and its clock ticker.
type Session struct {
	mu       sync.Mutex
	g        model.Game
	interval time.Duration
	onChange func(Change)
	log      zerolog.Logger

	tickCancel context.CancelFunc
	tickers    sync.WaitGroup
	closed     bool
}

// New wraps g in a session. If g already has a running clock the ticker starts.
func New(g model.Game, opts Options) *Session {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	s := &Session{
		g:        g.Clone(),
		interval: interval,
		onChange: opts.OnChange,
		log:      opts.Logger.With().Str("module", "session").Str("game_id", g.ID).Logger(),
	}
	s.mu.Lock()
	s.syncTickerLocked()
	s.mu.Unlock()
	return s
}

// ID returns the id of the owned game.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.ID
}

// Snapshot returns a deep copy of the current game.
func (s *Session) Snapshot() model.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Clone()
}

// Apply runs fn against the current game and installs its result.
// It returns the previous and the new snapshot.
func (s *Session) Apply(fn Transition) (prev, next model.Game, err error) {
	return s.Try(func(g model.Game) (model.Game, error) { return fn(g), nil })
}

// Try is Apply for transitions that can refuse: when fn returns an error
// nothing is installed and no change is reported.
func (s *Session) Try(fn func(model.Game) (model.Game, error)) (prev, next model.Game, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Game{}, model.Game{}, ErrClosed
	}
	out, err := fn(s.g.Clone())
	if err != nil {
		return model.Game{}, model.Game{}, err
	}
	prev = s.g
	s.g = out
	s.syncTickerLocked()
	s.notifyLocked(prev, CauseTransition)
	return prev, s.g.Clone(), nil
}

func (s *Session) notifyLocked(prev model.Game, cause Cause) {
	if s.onChange == nil {
		return
	}
	c := Change{Game: s.g.Clone(), Cause: cause}
	if n := len(prev.Plays); len(s.g.Plays) > n {
		c.Added = append([]model.Play(nil), s.g.Plays[n:]...)
	}
	s.onChange(c)
}

// Close stops the ticker and waits for it to exit. No tick is applied after
// Close returns. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTickerLocked()
	s.mu.Unlock()
	s.tickers.Wait()
}

// syncTickerLocked starts the ticker while the clock runs with time left on
// an unfinished game and stops it otherwise.
func (s *Session) syncTickerLocked() {
	want := !s.closed && s.g.IsClockRunning && s.g.GameClockSeconds > 0 && s.g.Status != model.StatusCompleted
	switch {
	case want && s.tickCancel == nil:
		ctx, cancel := context.WithCancel(context.Background())
		s.tickCancel = cancel
		s.tickers.Add(1)
		go s.runTicker(ctx)
		s.log.Debug().Int("clock", s.g.GameClockSeconds).Msg("clock ticker started")
	case !want && s.tickCancel != nil:
		s.stopTickerLocked()
		s.log.Debug().Int("clock", s.g.GameClockSeconds).Msg("clock ticker stopped")
	}
}

func (s *Session) stopTickerLocked() {
	if s.tickCancel != nil {
		s.tickCancel()
	}
	s.tickCancel = nil
}

func (s *Session) runTicker(ctx context.Context) {
	defer s.tickers.Done()
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !s.tick(ctx) {
				return
			}
		}
	}
}

// tick applies one clock second. It re-checks ctx under the lock so a ticker
// stopped concurrently never writes. Returns false when the ticker should exit.
func (s *Session) tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	prev := s.g
	s.g = game.Tick(s.g)
	if s.g.GameClockSeconds != prev.GameClockSeconds {
		s.notifyLocked(prev, CauseTick)
	}
	if s.g.GameClockSeconds == 0 {
		// clock keeps "running" at zero; nothing left to tick
		s.stopTickerLocked()
		s.log.Debug().Msg("clock expired")
		return false
	}
	return true
}

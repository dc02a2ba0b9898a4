package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/maxviazov/scorekeeper-service/internal/game"
	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/pubsub"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
	"github.com/maxviazov/scorekeeper-service/internal/session"
)

// EventSink receives game change events. *pubsub.Broker satisfies it.
type EventSink interface {
	Publish(ev pubsub.Event)
}

type noopSink struct{}

func (noopSink) Publish(pubsub.Event) {}

// Options tunes the scorekeeping rules the service enforces on top of the engine.
type Options struct {
	MaxOnCourt   int
	MaxOvertimes int
	TickInterval time.Duration
}

const (
	defaultMaxOnCourt   = 5
	defaultMaxOvertimes = 3
)

// reopenAttempts bounds retries when a session is torn down under a command.
const reopenAttempts = 2

// errUnchanged lets a step report a silent no-op without installing a snapshot.
var errUnchanged = errors.New("unchanged")

// Service implements GameService and LiveService over one repository and a
// registry of live sessions. Every write to a live game runs inside its
// session, and the snapshot is persisted before it is installed.
type Service struct {
	games    repository.GameRepository
	engine   game.Engine
	sessions *session.Registry
	events   EventSink
	validate *validator.Validate
	opts     Options
	log      zerolog.Logger
	now      func() time.Time
}

var (
	_ GameService = (*Service)(nil)
	_ LiveService = (*Service)(nil)
)

// New wires the service. A nil events sink drops every event.
func New(games repository.GameRepository, events EventSink, opts Options, logger zerolog.Logger) *Service {
	if opts.MaxOnCourt <= 0 {
		opts.MaxOnCourt = defaultMaxOnCourt
	}
	if opts.MaxOvertimes < 0 {
		opts.MaxOvertimes = defaultMaxOvertimes
	}
	if events == nil {
		events = noopSink{}
	}
	s := &Service{
		games:    games,
		engine:   game.NewEngine(),
		events:   events,
		validate: newValidator(),
		opts:     opts,
		log:      logger.With().Str("module", "service").Str("component", "game").Logger(),
		now:      time.Now,
	}
	s.sessions = session.NewRegistry(func(string) session.Options {
		return session.Options{TickInterval: opts.TickInterval, OnChange: s.onChange, Logger: logger}
	})
	return s
}

// Live reports whether id currently has an in-memory session.
func (s *Service) Live(id string) bool {
	_, err := s.sessions.Get(id)
	return err == nil
}

// Close stops every live session, then persists its final snapshot,
// including clock ticks not yet saved.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	for _, sess := range s.sessions.CloseAll() {
		g := sess.Snapshot()
		if err := s.games.Save(ctx, g); err != nil {
			s.log.Error().Err(err).Str("game_id", g.ID).Msg("final save failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) CreateGame(ctx context.Context, setup model.GameSetup) (model.Game, error) {
	if err := validateSetup(s.validate, setup); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("game setup validation failed")
		return model.Game{}, err
	}
	g, err := s.games.Create(ctx, s.engine.New(setup, s.opts.MaxOnCourt))
	if err != nil {
		s.log.Error().Err(err).Str("sport", string(setup.Sport)).Msg("create game failed")
		return model.Game{}, err
	}
	s.publish(pubsub.EventGameCreated, g)
	s.log.Info().Str("game_id", g.ID).Str("sport", string(g.Sport)).Str("rules", string(g.Rules)).Msg("game created")
	return g, nil
}

// GetGame prefers the live snapshot: it carries clock ticks not yet persisted.
func (s *Service) GetGame(ctx context.Context, id string) (model.Game, error) {
	if sess, err := s.sessions.Get(id); err == nil {
		return sess.Snapshot(), nil
	}
	return s.games.GetByID(ctx, id)
}

func (s *Service) ListGames(ctx context.Context, page repository.Page) (repository.PageResult[model.Game], error) {
	p := page.Sanitize()
	res, err := s.games.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list games failed")
		return repository.PageResult[model.Game]{}, err
	}
	for i, g := range res.Items {
		if sess, err := s.sessions.Get(g.ID); err == nil {
			res.Items[i] = sess.Snapshot()
		}
	}
	return res, nil
}

// ReplaceGame overwrites the stored game wholesale. It is how a client saves
// a snapshot it edited itself.
func (s *Service) ReplaceGame(ctx context.Context, g model.Game) (model.Game, error) {
	if g.ID == "" {
		return model.Game{}, invalidField("id", "is required")
	}
	return s.change(ctx, g.ID, false,
		func(cur model.Game) (model.Game, error) {
			next := g.Clone()
			if next.Plays == nil {
				next.Plays = []model.Play{}
			}
			next.CreatedAt = cur.CreatedAt
			return next, nil
		},
		s.save)
}

func (s *Service) PatchGame(ctx context.Context, id string, p model.GamePatch) (model.Game, error) {
	if p.Status != nil && !validStatus(*p.Status) {
		return model.Game{}, invalidField("status", "must be one of setup|active|paused|completed")
	}
	return s.change(ctx, id, false,
		func(g model.Game) (model.Game, error) { return p.Apply(g), nil },
		func(ctx context.Context, _, _ model.Game) error {
			_, err := s.games.Update(ctx, id, p)
			return err
		})
}

// DeleteGame removes the stored game before dropping its session, so a
// command racing the delete cannot reopen a session from the old row.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	if err := s.games.Delete(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("game_id", id).Msg("delete game failed")
		}
		return err
	}
	s.sessions.Close(id)
	s.events.Publish(pubsub.Event{Type: pubsub.EventGameDeleted, GameID: id, At: s.now().UnixMilli()})
	s.log.Info().Str("game_id", id).Msg("game deleted")
	return nil
}

// AppendPlay records a play through the engine, so stats derived from a stat
// play always agree with the live path.
func (s *Service) AppendPlay(ctx context.Context, id string, in model.PlayInput) (model.Game, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return model.Game{}, err
	}
	if !in.Type.Valid() {
		return model.Game{}, invalidField("type", "unknown play type")
	}
	return s.change(ctx, id, false,
		func(g model.Game) (model.Game, error) {
			side, ok := game.SideOf(g, in.TeamID)
			if !ok {
				return g, invalidField("teamId", "team is not playing in this game")
			}
			switch in.Type {
			case model.PlayTimeout:
				next := s.engine.CallTimeout(g, side)
				if len(next.Plays) == len(g.Plays) {
					return g, invalidField("teamId", "no timeouts remaining")
				}
				return next, nil
			case model.PlaySubstitution:
				if g.Team(side).PlayerIndex(in.PlayerID) < 0 {
					return g, invalidField("playerId", "player is not on this team")
				}
				return s.engine.Substitute(g, side, in.PlayerID), nil
			default:
				return s.recordStat(g, side, in.PlayerID, model.StatType(in.Type), "playerId")
			}
		},
		func(ctx context.Context, prev, next model.Game) error {
			last := next.Plays[len(next.Plays)-1]
			if last.Type == model.PlaySubstitution {
				_, err := s.games.AppendPlay(ctx, id, last)
				return err
			}
			return s.games.Save(ctx, next)
		})
}

func (s *Service) PatchTeam(ctx context.Context, id string, side model.Side, p model.TeamPatch) (model.Game, error) {
	if err := parseSide(side); err != nil {
		return model.Game{}, err
	}
	return s.change(ctx, id, false,
		func(g model.Game) (model.Game, error) {
			t := g.Team(side)
			*t = p.Apply(t.Clone())
			return g, nil
		},
		func(ctx context.Context, _, _ model.Game) error {
			_, err := s.games.UpdateTeam(ctx, id, side, p)
			return err
		})
}

func (s *Service) PatchPlayer(ctx context.Context, id string, side model.Side, playerID string, p model.PlayerPatch) (model.Game, error) {
	if err := parseSide(side); err != nil {
		return model.Game{}, err
	}
	return s.change(ctx, id, false,
		func(g model.Game) (model.Game, error) {
			t := g.Team(side)
			idx := t.PlayerIndex(playerID)
			if idx < 0 {
				return g, repository.ErrNotFound
			}
			*t = t.Clone()
			t.Players[idx] = p.Apply(t.Players[idx])
			return g, nil
		},
		func(ctx context.Context, _, _ model.Game) error {
			_, err := s.games.UpdatePlayer(ctx, id, side, playerID, p)
			return err
		})
}

func (s *Service) BoxScore(ctx context.Context, id string) (model.BoxScore, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return model.BoxScore{}, err
	}
	return game.BoxScore(g), nil
}

func (s *Service) Scoreboard(ctx context.Context, id string) (model.Scoreboard, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return model.Scoreboard{}, err
	}
	return game.Scoreboard(g), nil
}

func (s *Service) PlayByPlay(ctx context.Context, id string, newestFirst bool) ([]model.Play, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return game.PlayByPlay(g, newestFirst), nil
}

func validStatus(st model.Status) bool {
	switch st {
	case model.StatusSetup, model.StatusActive, model.StatusPaused, model.StatusCompleted:
		return true
	}
	return false
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/maxviazov/scorekeeper-service/internal/game"
	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/pubsub"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
	"github.com/maxviazov/scorekeeper-service/internal/session"
)

// step computes the next game from the current one. It may refuse with an
// error, or report a silent no-op with errUnchanged.
type step func(model.Game) (model.Game, error)

// persistFunc stores the outcome of a step before it becomes visible.
type persistFunc func(ctx context.Context, prev, next model.Game) error

func (s *Service) save(ctx context.Context, _, next model.Game) error {
	return s.games.Save(ctx, next)
}

// open returns the live session of id, starting one from storage when needed.
// Completed games get no session; their stored snapshot is returned instead.
func (s *Service) open(ctx context.Context, id string) (*session.Session, model.Game, error) {
	if sess, err := s.sessions.Get(id); err == nil {
		return sess, model.Game{}, nil
	}
	g, err := s.games.GetByID(ctx, id)
	if err != nil {
		return nil, model.Game{}, err
	}
	if g.Status == model.StatusCompleted {
		return nil, g, nil
	}
	s.log.Debug().Str("game_id", id).Msg("session opened")
	return s.sessions.Open(g), model.Game{}, nil
}

// change runs fn against the authoritative state of game id and persists the
// result before installing it. live marks scorekeeping commands, which a
// completed game refuses.
func (s *Service) change(ctx context.Context, id string, live bool, fn step, persist persistFunc) (model.Game, error) {
	for attempt := 0; ; attempt++ {
		sess, stored, err := s.open(ctx, id)
		if err != nil {
			return model.Game{}, err
		}
		if sess == nil {
			return s.changeStored(ctx, stored, live, fn, persist)
		}

		var persistErr error
		_, next, err := sess.Try(func(cur model.Game) (model.Game, error) {
			if live && cur.Status == model.StatusCompleted {
				return cur, ErrGameCompleted
			}
			out, err := fn(cur)
			if err != nil {
				return cur, err
			}
			if persistErr = persist(ctx, cur, out); persistErr != nil {
				return cur, persistErr
			}
			return out, nil
		})
		switch {
		case err == nil:
		case errors.Is(err, session.ErrClosed) && attempt < reopenAttempts:
			continue
		case errors.Is(err, errUnchanged):
			return sess.Snapshot(), nil
		case persistErr != nil:
			s.log.Error().Err(persistErr).Str("game_id", id).Msg("persist game failed")
			if errors.Is(persistErr, repository.ErrNotFound) {
				// deleted underneath the session
				s.sessions.Close(id)
			}
			return model.Game{}, persistErr
		default:
			return model.Game{}, err
		}

		if next.Status == model.StatusCompleted {
			s.sessions.Close(id)
			s.log.Info().Str("game_id", id).Int("home", next.HomeTeam.Score).Int("away", next.AwayTeam.Score).Msg("game completed")
		}
		return next, nil
	}
}

// changeStored edits a completed game directly in storage. Only corrections
// reach it; live commands are refused.
func (s *Service) changeStored(ctx context.Context, g model.Game, live bool, fn step, persist persistFunc) (model.Game, error) {
	if live {
		return model.Game{}, ErrGameCompleted
	}
	next, err := fn(g.Clone())
	if errors.Is(err, errUnchanged) {
		return g, nil
	}
	if err != nil {
		return model.Game{}, err
	}
	if err := persist(ctx, g, next); err != nil {
		s.log.Error().Err(err).Str("game_id", g.ID).Msg("persist game failed")
		return model.Game{}, err
	}
	s.publish(pubsub.EventGameUpdated, next)
	return next, nil
}

// onChange turns a session change into an event. It runs under the session
// lock; the sink must not block.
func (s *Service) onChange(c session.Change) {
	g := c.Game
	ev := pubsub.Event{GameID: g.ID, Game: &g, At: s.now().UnixMilli()}
	switch {
	case c.Cause == session.CauseTick:
		ev.Type = pubsub.EventClockTick
	case g.Status == model.StatusCompleted:
		ev.Type = pubsub.EventGameEnded
	case len(c.Added) > 0:
		ev.Type = pubsub.EventPlayAdded
		ev.Play = &c.Added[len(c.Added)-1]
	default:
		ev.Type = pubsub.EventGameUpdated
	}
	s.events.Publish(ev)
}

func (s *Service) publish(t pubsub.EventType, g model.Game) {
	s.events.Publish(pubsub.Event{Type: t, GameID: g.ID, Game: &g, At: s.now().UnixMilli()})
}

// recordStat gates a stat on roster membership and the foul-out rule, then
// applies it. field names the request field carrying the player id.
func (s *Service) recordStat(g model.Game, side model.Side, playerID string, st model.StatType, field string) (model.Game, error) {
	if err := parseStatType(st); err != nil {
		return g, err
	}
	t := g.Team(side)
	idx := t.PlayerIndex(playerID)
	if idx < 0 {
		return g, invalidField(field, "player is not on this team")
	}
	if st == model.StatFoul && t.Players[idx].Fouls >= game.FoulOut {
		return g, invalidField(field, "player has fouled out")
	}
	return s.engine.RecordStat(g, side, playerID, st), nil
}

func (s *Service) RecordStat(ctx context.Context, id string, side model.Side, playerID string, st model.StatType) (model.Game, error) {
	if err := parseSide(side); err != nil {
		return model.Game{}, err
	}
	if err := parseStatType(st); err != nil {
		return model.Game{}, err
	}
	return s.change(ctx, id, true, func(g model.Game) (model.Game, error) {
		if g.Team(side).PlayerIndex(playerID) < 0 {
			return g, errUnchanged
		}
		return s.recordStat(g, side, playerID, st, "playerId")
	}, s.save)
}

func (s *Service) ToggleClock(ctx context.Context, id string) (model.Game, error) {
	return s.change(ctx, id, true, pure(game.ToggleClock), s.save)
}

func (s *Service) ResetClock(ctx context.Context, id string) (model.Game, error) {
	return s.change(ctx, id, true, pure(game.ResetClock), s.save)
}

func (s *Service) AdvancePeriod(ctx context.Context, id string) (model.Game, error) {
	return s.change(ctx, id, true, func(g model.Game) (model.Game, error) {
		if !game.CanAdvancePeriod(g, s.opts.MaxOvertimes) {
			return g, ErrPeriodLimit
		}
		return game.AdvancePeriod(g), nil
	}, s.save)
}

func (s *Service) TogglePossession(ctx context.Context, id string) (model.Game, error) {
	return s.change(ctx, id, true, pure(game.TogglePossession), s.save)
}

// CallTimeout with no timeouts left returns the game unchanged.
func (s *Service) CallTimeout(ctx context.Context, id string, side model.Side) (model.Game, error) {
	if err := parseSide(side); err != nil {
		return model.Game{}, err
	}
	return s.change(ctx, id, true, func(g model.Game) (model.Game, error) {
		if g.Team(side).TimeoutsRemaining <= 0 {
			return g, errUnchanged
		}
		return s.engine.CallTimeout(g, side), nil
	}, s.save)
}

// ToggleOnCourt moves a player on or off the court. Bringing a player on is
// refused once the side has MaxOnCourt players out.
func (s *Service) ToggleOnCourt(ctx context.Context, id string, side model.Side, playerID string) (model.Game, error) {
	if err := parseSide(side); err != nil {
		return model.Game{}, err
	}
	return s.change(ctx, id, true, func(g model.Game) (model.Game, error) {
		t := g.Team(side)
		idx := t.PlayerIndex(playerID)
		if idx < 0 {
			return g, errUnchanged
		}
		if !t.Players[idx].IsOnCourt && t.OnCourt() >= s.opts.MaxOnCourt {
			return g, invalidField("playerId", fmt.Sprintf("on-court limit of %d reached", s.opts.MaxOnCourt))
		}
		return game.ToggleOnCourt(g, side, playerID), nil
	}, s.save)
}

func (s *Service) EndGame(ctx context.Context, id string) (model.Game, error) {
	return s.change(ctx, id, true, pure(game.EndGame), s.save)
}

func pure(fn func(model.Game) model.Game) step {
	return func(g model.Game) (model.Game, error) { return fn(g), nil }
}

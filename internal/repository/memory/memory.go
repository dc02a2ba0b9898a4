// Package memory is the in-process GameRepository used for development and
// tests. Stored values are deep-copied on the way in and out.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
)

type Store struct {
	mu    sync.RWMutex
	games map[string]model.Game
}

func New() *Store {
	return &Store{games: make(map[string]model.Game)}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) Create(_ context.Context, g model.Game) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return model.Game{}, repository.ErrAlreadyExists
	}
	if g.Plays == nil {
		g.Plays = []model.Play{}
	}
	s.games[g.ID] = g.Clone()
	return g.Clone(), nil
}

func (s *Store) GetByID(_ context.Context, id string) (model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	return g.Clone(), nil
}

func (s *Store) List(_ context.Context, p repository.Page) (repository.PageResult[model.Game], error) {
	p = p.Sanitize()
	s.mu.RLock()
	all := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		all = append(all, g)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID > all[j].ID
	})

	res := repository.PageResult[model.Game]{Items: []model.Game{}, Total: len(all)}
	if p.Offset >= len(all) {
		return res, nil
	}
	end := min(p.Offset+p.Limit, len(all))
	for _, g := range all[p.Offset:end] {
		res.Items = append(res.Items, g.Clone())
	}
	return res, nil
}

func (s *Store) Save(_ context.Context, g model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return repository.ErrNotFound
	}
	s.games[g.ID] = g.Clone()
	return nil
}

func (s *Store) Update(_ context.Context, id string, p model.GamePatch) (model.Game, error) {
	return s.mutate(id, func(g model.Game) (model.Game, error) {
		return p.Apply(g), nil
	})
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.games, id)
	return nil
}

func (s *Store) AppendPlay(_ context.Context, id string, play model.Play) (model.Game, error) {
	return s.mutate(id, func(g model.Game) (model.Game, error) {
		for _, existing := range g.Plays {
			if existing.ID == play.ID {
				return g, repository.ErrAlreadyExists
			}
		}
		g.Plays = append(g.Plays, play)
		return g, nil
	})
}

func (s *Store) UpdateTeam(_ context.Context, id string, side model.Side, p model.TeamPatch) (model.Game, error) {
	if !side.Valid() {
		return model.Game{}, repository.ErrNotFound
	}
	return s.mutate(id, func(g model.Game) (model.Game, error) {
		t := g.Team(side)
		*t = p.Apply(*t)
		return g, nil
	})
}

func (s *Store) UpdatePlayer(_ context.Context, id string, side model.Side, playerID string, p model.PlayerPatch) (model.Game, error) {
	if !side.Valid() {
		return model.Game{}, repository.ErrNotFound
	}
	return s.mutate(id, func(g model.Game) (model.Game, error) {
		t := g.Team(side)
		idx := t.PlayerIndex(playerID)
		if idx < 0 {
			return g, repository.ErrNotFound
		}
		t.Players[idx] = p.Apply(t.Players[idx])
		return g, nil
	})
}

// mutate runs fn on a private copy and installs it only when fn succeeds.
func (s *Store) mutate(id string, fn func(model.Game) (model.Game, error)) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.games[id]
	if !ok {
		return model.Game{}, repository.ErrNotFound
	}
	next, err := fn(cur.Clone())
	if err != nil {
		return model.Game{}, err
	}
	s.games[id] = next
	return next.Clone(), nil
}

var (
	_ repository.GameRepository = (*Store)(nil)
	_ repository.Pinger         = (*Store)(nil)
)

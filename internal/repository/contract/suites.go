// Package contract holds backend-agnostic test suites. Each storage backend
// runs them against its own factory.
package contract

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/maxviazov/scorekeeper-service/internal/model"
	"github.com/maxviazov/scorekeeper-service/internal/repository"
)

type GameFactory func(t *testing.T) (repo repository.GameRepository, cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, games repository.GameRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// SampleGame builds a small but complete game: two rosters, one play, a
// running clock and possession set, so every column and nested field round-trips.
func SampleGame(id string, createdAt int64) model.Game {
	team := func(prefix, color string) model.Team {
		return model.Team{
			ID:           prefix + "-team",
			Name:         prefix + " Team",
			Abbreviation: "T" + prefix[:1],
			Color:        color,
			Players: []model.Player{
				{ID: prefix + "-p1", Name: prefix + " One", Number: 1, Position: "PG", IsActive: true, IsOnCourt: true},
				{ID: prefix + "-p2", Name: prefix + " Two", Number: 22, Position: "C", Fouls: 2,
					Stats: model.PlayerStats{Points: 5, FieldGoalsMade: 2, FieldGoalsAttempted: 4, ThreePointersMade: 1, ThreePointersAttempted: 2}},
			},
			TimeoutsRemaining: 5,
			TeamFouls:         2,
			Score:             5,
		}
	}
	return model.Game{
		ID:               id,
		Sport:            model.SportBasketball,
		Rules:            model.RulesCollege,
		Status:           model.StatusActive,
		HomeTeam:         team("home", "#1E88E5"),
		AwayTeam:         team("away", "#E53935"),
		CurrentPeriod:    2,
		PeriodLength:     8,
		TotalPeriods:     4,
		GameClockSeconds: 301,
		IsClockRunning:   true,
		Possession:       model.PossessionAway,
		Plays: []model.Play{
			samplePlay(id+"-play-0", 0),
		},
		CreatedAt: createdAt,
	}
}

func samplePlay(id string, n int) model.Play {
	return model.Play{
		ID:          id,
		Timestamp:   int64(1_700_000_000_000 + n),
		Period:      1,
		GameTime:    "7:59",
		PlayerID:    "home-p2",
		PlayerName:  "home Two",
		TeamID:      "home-team",
		Type:        model.PlayType(model.StatFieldGoal3),
		Description: "home Two 3PT made",
	}
}

func RunGameRepositoryContract(t *testing.T, makeRepo GameFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-1", 1000)
		created, err := repo.Create(ctx, g)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !reflect.DeepEqual(created, g) {
			t.Fatalf("create returned %+v, want %+v", created, g)
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !reflect.DeepEqual(got, g) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, g)
		}
	})

	t.Run("create_duplicate_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, SampleGame("dup", 1)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := repo.Create(ctx, SampleGame("dup", 2))
		if !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), "missing")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_newest_first_with_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			if _, err := repo.Create(ctx, SampleGame(fmt.Sprintf("g-%d", i), int64(100+i))); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		if res.Items[0].ID != "g-6" || res.Items[2].ID != "g-4" {
			t.Fatalf("expected newest first, got %s..%s", res.Items[0].ID, res.Items[2].ID)
		}
		last, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(last.Items) != 1 || last.Items[0].ID != "g-0" {
			t.Fatalf("unexpected last page: %+v", last.Items)
		}
	})

	t.Run("save_replaces_snapshot", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-save", 1)
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}

		g.HomeTeam.Score = 8
		g.HomeTeam.Players[0].Stats.Points = 3
		g.GameClockSeconds = 250
		g.IsClockRunning = false
		g.Plays = append(g.Plays, samplePlay("p-1", 1), samplePlay("p-2", 2))
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save: %v", err)
		}
		assertStored(t, repo, g)

		g.Plays = append(g.Plays, samplePlay("p-3", 3))
		g.Status = model.StatusCompleted
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save tail: %v", err)
		}
		assertStored(t, repo, g)

		g.Plays = []model.Play{samplePlay("p-x", 9)}
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save rewritten log: %v", err)
		}
		assertStored(t, repo, g)

		if err := repo.Save(ctx, SampleGame("nope", 1)); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on save of unknown game, got %v", err)
		}
	})

	t.Run("update_is_shallow_merge", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-upd", 1)
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		status := model.StatusPaused
		none := model.PossessionNone
		out, err := repo.Update(ctx, g.ID, model.GamePatch{Status: &status, Possession: &none})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		want := g
		want.Status = model.StatusPaused
		want.Possession = model.PossessionNone
		if !reflect.DeepEqual(out, want) {
			t.Fatalf("update returned %+v, want %+v", out, want)
		}
		assertStored(t, repo, want)

		plays := []model.Play{samplePlay("only", 5)}
		out, err = repo.Update(ctx, g.ID, model.GamePatch{Plays: &plays})
		if err != nil {
			t.Fatalf("update plays: %v", err)
		}
		if len(out.Plays) != 1 || out.Plays[0].ID != "only" {
			t.Fatalf("plays not replaced: %+v", out.Plays)
		}

		if _, err := repo.Update(ctx, "missing", model.GamePatch{Status: &status}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("append_play_keeps_order", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-plays", 1)
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		for i := 1; i <= 3; i++ {
			if _, err := repo.AppendPlay(ctx, g.ID, samplePlay(fmt.Sprintf("a-%d", i), 10-i)); err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		ids := make([]string, 0, len(got.Plays))
		for _, p := range got.Plays {
			ids = append(ids, p.ID)
		}
		want := []string{g.Plays[0].ID, "a-1", "a-2", "a-3"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("play order %v, want %v", ids, want)
		}
		if _, err := repo.AppendPlay(ctx, g.ID, samplePlay("a-1", 0)); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists for duplicate play id, got %v", err)
		}
		if _, err := repo.AppendPlay(ctx, "missing", samplePlay("z", 0)); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update_team", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-team", 1)
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		name, timeouts := "Renamed", 1
		out, err := repo.UpdateTeam(ctx, g.ID, model.SideAway, model.TeamPatch{Name: &name, TimeoutsRemaining: &timeouts})
		if err != nil {
			t.Fatalf("update team: %v", err)
		}
		if out.AwayTeam.Name != name || out.AwayTeam.TimeoutsRemaining != 1 {
			t.Fatalf("patch not applied: %+v", out.AwayTeam)
		}
		if !reflect.DeepEqual(out.AwayTeam.Players, g.AwayTeam.Players) || !reflect.DeepEqual(out.HomeTeam, g.HomeTeam) {
			t.Fatalf("untouched fields changed")
		}
		assertStored(t, repo, out)

		if _, err := repo.UpdateTeam(ctx, g.ID, model.Side("middle"), model.TeamPatch{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for bad side, got %v", err)
		}
	})

	t.Run("update_player", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-player", 1)
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		fouls := 4
		stats := model.PlayerStats{Points: 12, Assists: 3}
		out, err := repo.UpdatePlayer(ctx, g.ID, model.SideHome, "home-p2", model.PlayerPatch{Fouls: &fouls, Stats: &stats})
		if err != nil {
			t.Fatalf("update player: %v", err)
		}
		p := out.HomeTeam.Players[1]
		if p.Fouls != 4 || p.Stats != stats || p.Name != "home Two" || p.Number != 22 {
			t.Fatalf("unexpected player after patch: %+v", p)
		}
		assertStored(t, repo, out)

		if _, err := repo.UpdatePlayer(ctx, g.ID, model.SideHome, "away-p1", model.PlayerPatch{Fouls: &fouls}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for player of the other side, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-del", 1)
		if _, err := repo.Create(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := repo.Delete(ctx, g.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
		// the id is free again, with an empty log
		fresh := SampleGame("g-del", 2)
		fresh.Plays = []model.Play{}
		if _, err := repo.Create(ctx, fresh); err != nil {
			t.Fatalf("recreate: %v", err)
		}
		assertStored(t, repo, fresh)
	})
}

func assertStored(t *testing.T, repo repository.GameRepository, want model.Game) {
	t.Helper()
	got, err := repo.GetByID(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("get %s: %v", want.ID, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("stored game mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, games, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := games.Create(ctx, SampleGame("tx-commit", 1)); err != nil {
				return err
			}
			_, err := games.AppendPlay(ctx, "tx-commit", samplePlay("tx-play", 1))
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		got, err := games.GetByID(ctx, "tx-commit")
		if err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
		if len(got.Plays) != 2 {
			t.Fatalf("expected both plays committed, got %d", len(got.Plays))
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, games, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := games.Create(ctx, SampleGame("tx-rollback", 1)); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := games.GetByID(ctx, "tx-rollback"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

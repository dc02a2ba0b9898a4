package game

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

var pointsFor = map[model.StatType]int{
	model.StatFieldGoal2: 2,
	model.StatFieldGoal3: 3,
	model.StatFreeThrow:  1,
}

type statEvent struct {
	side model.Side
	idx  int
	st   model.StatType
}

func drawEvents(t *rapid.T, g model.Game) []statEvent {
	n := rapid.IntRange(0, 60).Draw(t, "events")
	out := make([]statEvent, n)
	for i := range out {
		side := rapid.SampledFrom([]model.Side{model.SideHome, model.SideAway}).Draw(t, "side")
		out[i] = statEvent{
			side: side,
			idx:  rapid.IntRange(0, len(g.Team(side).Players)-1).Draw(t, "player"),
			st:   rapid.SampledFrom(model.StatTypes).Draw(t, "stat"),
		}
	}
	return out
}

// Team score equals the points awarded by every applied event, and also the
// sum of the players' points.
func TestScoreMatchesAwardedPointsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := newTestGame(t, model.RulesPro)
		e := testEngine()
		awarded := map[model.Side]int{}
		for _, ev := range drawEvents(rt, g) {
			id := g.Team(ev.side).Players[ev.idx].ID
			g = e.RecordStat(g, ev.side, id, ev.st)
			awarded[ev.side] += pointsFor[ev.st]
		}
		for _, side := range []model.Side{model.SideHome, model.SideAway} {
			team := g.Team(side)
			if team.Score != awarded[side] {
				rt.Fatalf("%s score %d, awarded %d", side, team.Score, awarded[side])
			}
			sum := 0
			for _, p := range team.Players {
				sum += p.Stats.Points
			}
			if sum != team.Score {
				rt.Fatalf("%s player points %d != score %d", side, sum, team.Score)
			}
		}
	})
}

// Every event appends exactly one play and counters never decrease.
func TestEventsAppendOnePlayAndCountersMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := newTestGame(t, model.RulesCollege)
		e := testEngine()
		for _, ev := range drawEvents(rt, g) {
			prev := g
			id := g.Team(ev.side).Players[ev.idx].ID
			g = e.RecordStat(g, ev.side, id, ev.st)
			if len(g.Plays) != len(prev.Plays)+1 {
				rt.Fatalf("expected one play appended, got %d -> %d", len(prev.Plays), len(g.Plays))
			}
			before := prev.Team(ev.side).Players[ev.idx].Stats
			after := g.Team(ev.side).Players[ev.idx].Stats
			if !monotonic(before, after) {
				rt.Fatalf("counters decreased: %+v -> %+v", before, after)
			}
		}
	})
}

func monotonic(a, b model.PlayerStats) bool {
	return b.Points >= a.Points && b.FieldGoalsMade >= a.FieldGoalsMade &&
		b.FieldGoalsAttempted >= a.FieldGoalsAttempted && b.ThreePointersMade >= a.ThreePointersMade &&
		b.ThreePointersAttempted >= a.ThreePointersAttempted && b.FreeThrowsMade >= a.FreeThrowsMade &&
		b.FreeThrowsAttempted >= a.FreeThrowsAttempted && b.OffensiveRebounds >= a.OffensiveRebounds &&
		b.DefensiveRebounds >= a.DefensiveRebounds && b.Assists >= a.Assists &&
		b.Steals >= a.Steals && b.Blocks >= a.Blocks && b.Turnovers >= a.Turnovers
}

// A made three always moves the FG and 3PT made/attempted counters together.
func TestThreePointerCountersMoveTogetherProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := newTestGame(t, model.RulesPro)
		e := testEngine()
		for _, ev := range drawEvents(rt, g) {
			id := g.Team(ev.side).Players[ev.idx].ID
			prev := g.Team(ev.side).Players[ev.idx].Stats
			g = e.RecordStat(g, ev.side, id, ev.st)
			cur := g.Team(ev.side).Players[ev.idx].Stats
			if ev.st != model.StatFieldGoal3 {
				continue
			}
			if cur.ThreePointersMade-prev.ThreePointersMade != 1 ||
				cur.ThreePointersAttempted-prev.ThreePointersAttempted != 1 ||
				cur.FieldGoalsMade-prev.FieldGoalsMade != 1 ||
				cur.FieldGoalsAttempted-prev.FieldGoalsAttempted != 1 {
				rt.Fatalf("3PT made did not move all four counters: %+v -> %+v", prev, cur)
			}
		}
	})
}

// The clock never goes negative and only moves while running.
func TestClockNeverNegativeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := model.Game{PeriodLength: 1, GameClockSeconds: rapid.IntRange(0, 60).Draw(rt, "start")}
		ops := rapid.SliceOf(rapid.SampledFrom([]string{"tick", "toggle", "reset"})).Draw(rt, "ops")
		for _, op := range ops {
			prev := g
			switch op {
			case "tick":
				g = Tick(g)
				if !prev.IsClockRunning || prev.GameClockSeconds == 0 {
					if g.GameClockSeconds != prev.GameClockSeconds {
						rt.Fatalf("clock moved while stopped or at zero")
					}
				} else if g.GameClockSeconds != prev.GameClockSeconds-1 {
					rt.Fatalf("running clock did not drop by one")
				}
			case "toggle":
				g = ToggleClock(g)
			case "reset":
				g = ResetClock(g)
			}
			if g.GameClockSeconds < 0 {
				rt.Fatalf("negative clock %d", g.GameClockSeconds)
			}
		}
	})
}

// Timeouts strictly decrement and log while available and are no-ops after.
func TestTimeoutProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := newTestGame(t, model.RulesHighSchool)
		e := testEngine()
		calls := rapid.IntRange(0, 10).Draw(rt, "calls")
		for i := 0; i < calls; i++ {
			prev := g
			g = e.CallTimeout(g, model.SideHome)
			if prev.HomeTeam.TimeoutsRemaining == 0 {
				if len(g.Plays) != len(prev.Plays) || g.HomeTeam.TimeoutsRemaining != 0 {
					rt.Fatalf("timeout with none left changed state")
				}
				continue
			}
			if g.HomeTeam.TimeoutsRemaining != prev.HomeTeam.TimeoutsRemaining-1 || len(g.Plays) != len(prev.Plays)+1 {
				rt.Fatalf("timeout did not decrement and log")
			}
		}
		if g.HomeTeam.TimeoutsRemaining < 0 {
			rt.Fatalf("negative timeouts")
		}
	})
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

func TestFormatClock(t *testing.T) {
	cases := map[int]string{0: "0:00", 5: "0:05", 59: "0:59", 60: "1:00", 65: "1:05", 720: "12:00", -3: "0:00"}
	for in, want := range cases {
		assert.Equal(t, want, FormatClock(in), "seconds=%d", in)
	}
}

func TestTick(t *testing.T) {
	g := model.Game{GameClockSeconds: 2}

	assert.Equal(t, 2, Tick(g).GameClockSeconds, "stopped clock must not move")

	g.IsClockRunning = true
	g = Tick(g)
	assert.Equal(t, 1, g.GameClockSeconds)
	g = Tick(g)
	assert.Equal(t, 0, g.GameClockSeconds)
	g = Tick(g)
	assert.Equal(t, 0, g.GameClockSeconds)
	assert.True(t, g.IsClockRunning)
}

func TestToggleClock_AllowedAtZero(t *testing.T) {
	g := ToggleClock(model.Game{GameClockSeconds: 0})
	assert.True(t, g.IsClockRunning)
	assert.Equal(t, 0, Tick(g).GameClockSeconds)
	assert.False(t, ToggleClock(g).IsClockRunning)
}

func TestResetClock(t *testing.T) {
	g := model.Game{PeriodLength: 12, GameClockSeconds: 17, IsClockRunning: true, CurrentPeriod: 2}
	g.HomeTeam.TeamFouls = 3
	g.HomeTeam.Score = 40

	g = ResetClock(g)

	assert.Equal(t, 720, g.GameClockSeconds)
	assert.False(t, g.IsClockRunning)
	assert.Equal(t, 2, g.CurrentPeriod)
	assert.Equal(t, 3, g.HomeTeam.TeamFouls)
	assert.Equal(t, 40, g.HomeTeam.Score)
}

func TestAdvancePeriod(t *testing.T) {
	g := newTestGame(t, model.RulesPro)
	e := testEngine()
	g = e.RecordStat(g, model.SideHome, g.HomeTeam.Players[0].ID, model.StatFoul)
	g = e.RecordStat(g, model.SideAway, g.AwayTeam.Players[0].ID, model.StatFieldGoal3)
	g = e.CallTimeout(g, model.SideAway)
	g.GameClockSeconds = 12
	g.IsClockRunning = true

	next := AdvancePeriod(g)

	assert.Equal(t, 2, next.CurrentPeriod)
	assert.Equal(t, g.PeriodLength*60, next.GameClockSeconds)
	assert.False(t, next.IsClockRunning)
	assert.Zero(t, next.HomeTeam.TeamFouls)
	assert.Zero(t, next.AwayTeam.TeamFouls)
	assert.Equal(t, 1, next.HomeTeam.Players[0].Fouls)
	assert.Equal(t, 3, next.AwayTeam.Score)
	assert.Equal(t, 6, next.AwayTeam.TimeoutsRemaining)
	assert.Equal(t, 1, g.HomeTeam.TeamFouls, "input must not change")
}

func TestCanAdvancePeriod(t *testing.T) {
	g := model.Game{TotalPeriods: 4, CurrentPeriod: 6}
	assert.True(t, CanAdvancePeriod(g, 3))
	g.CurrentPeriod = 7
	assert.False(t, CanAdvancePeriod(g, 3))
}

func TestTogglePossession_Cycle(t *testing.T) {
	g := model.Game{Possession: model.PossessionHome}
	g = TogglePossession(g)
	assert.Equal(t, model.PossessionAway, g.Possession)
	g = TogglePossession(g)
	assert.Equal(t, model.PossessionNone, g.Possession)
	g = TogglePossession(g)
	assert.Equal(t, model.PossessionHome, g.Possession)
}

func TestToggleOnCourt(t *testing.T) {
	g := newTestGame(t, model.RulesPro)
	id := g.HomeTeam.Players[0].ID

	next := ToggleOnCourt(g, model.SideHome, id)

	assert.False(t, next.HomeTeam.Players[0].IsOnCourt)
	assert.True(t, g.HomeTeam.Players[0].IsOnCourt, "input must not change")
	assert.Equal(t, g, ToggleOnCourt(g, model.SideHome, "missing"))
}

func TestEndGame(t *testing.T) {
	g := EndGame(model.Game{Status: model.StatusActive, IsClockRunning: true})
	assert.Equal(t, model.StatusCompleted, g.Status)
	assert.False(t, g.IsClockRunning)
}

func TestPeriodLabel(t *testing.T) {
	g := model.Game{Sport: model.SportBasketball, TotalPeriods: 4, CurrentPeriod: 4}
	assert.Equal(t, "Q4", PeriodLabel(g))
	g.CurrentPeriod = 6
	assert.Equal(t, "OT2", PeriodLabel(g))
	g.Sport = model.SportHockey
	assert.Equal(t, "P6", PeriodLabel(g))
}

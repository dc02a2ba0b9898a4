package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

func TestBoxScore_TotalsAreSums(t *testing.T) {
	g := newTestGame(t, model.RulesPro)
	e := testEngine()
	h0, h1 := g.HomeTeam.Players[0].ID, g.HomeTeam.Players[1].ID
	g = e.RecordStat(g, model.SideHome, h0, model.StatFieldGoal3)
	g = e.RecordStat(g, model.SideHome, h0, model.StatMiss2)
	g = e.RecordStat(g, model.SideHome, h1, model.StatFreeThrow)
	g = e.RecordStat(g, model.SideHome, h1, model.StatOffensiveRebound)
	g = e.RecordStat(g, model.SideHome, h1, model.StatDefensiveRebound)
	for i := 0; i < 4; i++ {
		g = e.RecordStat(g, model.SideHome, h1, model.StatFoul)
	}

	bs := BoxScore(g)

	home := bs.Home
	assert.Equal(t, 4, home.Totals.Points)
	assert.Equal(t, home.Score, home.Totals.Points)
	assert.Equal(t, 2, home.Totals.FieldGoalsAttempted)
	assert.Equal(t, 2, home.Rebounds)
	assert.Equal(t, 4, home.Fouls)
	require.NotNil(t, home.FGPct)
	assert.InDelta(t, 50.0, *home.FGPct, 0.001)
	assert.Nil(t, bs.Away.FGPct)
	assert.True(t, home.Lines[1].FoulWarning)
	assert.False(t, home.Lines[1].FouledOut)
	assert.Equal(t, "Q1", bs.Period)
	assert.Len(t, bs.Away.Lines, 6)
}

func TestPlayByPlay_Order(t *testing.T) {
	g := model.Game{Plays: []model.Play{
		{ID: "a", Timestamp: 10},
		{ID: "b", Timestamp: 30},
		{ID: "c", Timestamp: 20},
		{ID: "d", Timestamp: 30},
	}}

	asc := PlayByPlay(g, false)
	desc := PlayByPlay(g, true)

	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(asc))
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids(desc))
	assert.Equal(t, "a", g.Plays[0].ID, "source order untouched")
}

func ids(ps []model.Play) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestScoreboard(t *testing.T) {
	g := newTestGame(t, model.RulesPro)
	g = TogglePossession(g)
	g.GameClockSeconds = 75

	sb := Scoreboard(g)

	assert.Equal(t, "1:15", sb.Clock)
	assert.Equal(t, model.PossessionHome, sb.Possession)
	assert.Equal(t, "HAW", sb.Home.Abbreviation)
	assert.Equal(t, 7, sb.Away.TimeoutsRemaining)
}

func TestSideOf(t *testing.T) {
	g := newTestGame(t, model.RulesPro)
	s, ok := SideOf(g, g.AwayTeam.ID)
	assert.True(t, ok)
	assert.Equal(t, model.SideAway, s)
	_, ok = SideOf(g, "nope")
	assert.False(t, ok)
}

package game

import (
	"sort"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// BoxScore derives the box score from player stats. Team totals are sums of
// the player lines; they are never stored.
func BoxScore(g model.Game) model.BoxScore {
	return model.BoxScore{
		GameID: g.ID,
		Status: g.Status,
		Period: PeriodLabel(g),
		Away:   teamBoxScore(g.AwayTeam),
		Home:   teamBoxScore(g.HomeTeam),
	}
}

func teamBoxScore(t model.Team) model.TeamBoxScore {
	out := model.TeamBoxScore{
		TeamID:       t.ID,
		Name:         t.Name,
		Abbreviation: t.Abbreviation,
		Score:        t.Score,
		TeamFouls:    t.TeamFouls,
		Lines:        make([]model.BoxScoreLine, 0, len(t.Players)),
	}
	for _, p := range t.Players {
		s := p.Stats
		out.Lines = append(out.Lines, model.BoxScoreLine{
			PlayerID:    p.ID,
			Name:        p.Name,
			Number:      p.Number,
			Position:    p.Position,
			IsOnCourt:   p.IsOnCourt,
			Fouls:       p.Fouls,
			FoulWarning: p.Fouls >= FoulWarning,
			FouledOut:   p.Fouls >= FoulOut,
			Stats:       s,
			Rebounds:    s.OffensiveRebounds + s.DefensiveRebounds,
			FGPct:       pct(s.FieldGoalsMade, s.FieldGoalsAttempted),
			ThreePct:    pct(s.ThreePointersMade, s.ThreePointersAttempted),
			FTPct:       pct(s.FreeThrowsMade, s.FreeThrowsAttempted),
		})
		out.Totals = out.Totals.Add(s)
		out.Fouls += p.Fouls
	}
	tot := out.Totals
	out.Rebounds = tot.OffensiveRebounds + tot.DefensiveRebounds
	out.FGPct = pct(tot.FieldGoalsMade, tot.FieldGoalsAttempted)
	out.ThreePct = pct(tot.ThreePointersMade, tot.ThreePointersAttempted)
	out.FTPct = pct(tot.FreeThrowsMade, tot.FreeThrowsAttempted)
	return out
}

func pct(made, attempted int) *float64 {
	if attempted == 0 {
		return nil
	}
	v := float64(made) / float64(attempted) * 100
	return &v
}

// Scoreboard builds the header view of g.
func Scoreboard(g model.Game) model.Scoreboard {
	line := func(t model.Team) model.TeamLine {
		return model.TeamLine{
			Name:              t.Name,
			Abbreviation:      t.Abbreviation,
			Color:             t.Color,
			Score:             t.Score,
			TimeoutsRemaining: t.TimeoutsRemaining,
			TeamFouls:         t.TeamFouls,
		}
	}
	return model.Scoreboard{
		GameID:         g.ID,
		Status:         g.Status,
		Period:         PeriodLabel(g),
		Clock:          FormatClock(g.GameClockSeconds),
		IsClockRunning: g.IsClockRunning,
		Possession:     g.Possession,
		Home:           line(g.HomeTeam),
		Away:           line(g.AwayTeam),
	}
}

// PlayByPlay returns a copy of the play log ordered by timestamp. Plays with
// equal timestamps keep insertion order (reversed when newestFirst).
func PlayByPlay(g model.Game, newestFirst bool) []model.Play {
	out := make([]model.Play, len(g.Plays))
	copy(out, g.Plays)
	if newestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// SideOf reports which side teamID plays on.
func SideOf(g model.Game, teamID string) (model.Side, bool) {
	switch teamID {
	case g.HomeTeam.ID:
		return model.SideHome, true
	case g.AwayTeam.ID:
		return model.SideAway, true
	}
	return "", false
}

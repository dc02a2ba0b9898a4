// Package game is the transition engine of a scored game.
//
// Every transition takes a Game value and returns the next Game value. Inputs
// are never mutated: touched rosters and the play log are copied first, so a
// caller holding the previous snapshot never observes a half-applied event.
// Invalid targets (unknown player, no timeouts left, clock at zero) are
// silent no-ops that return the input unchanged.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maxviazov/scorekeeper-service/internal/model"
)

const (
	proTimeouts     = 7
	defaultTimeouts = 5

	proPeriodMinutes     = 12
	defaultPeriodMinutes = 8

	hockeyPeriods  = 3
	defaultPeriods = 4

	defaultHomeColor = "#1E88E5"
	defaultAwayColor = "#E53935"

	// FoulWarning and FoulOut are the personal-foul display thresholds.
	FoulWarning = 4
	FoulOut     = 5
)

// Engine carries the two impure inputs of transitions: id and time sources.
// The zero value is usable and falls back to uuid and wall-clock time.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

// NewEngine returns an engine backed by random UUIDs and time.Now.
func NewEngine() Engine {
	return Engine{NewID: uuid.NewString, Now: time.Now}
}

func (e Engine) id() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

func (e Engine) nowMillis() int64 {
	if e.Now == nil {
		return time.Now().UnixMilli()
	}
	return e.Now().UnixMilli()
}

// TimeoutsFor returns the per-team timeout allotment of a rule set.
func TimeoutsFor(r model.Rules) int {
	if r == model.RulesPro {
		return proTimeouts
	}
	return defaultTimeouts
}

// New builds the initial game from a validated setup. The first maxOnCourt
// players of each roster start on court.
func (e Engine) New(s model.GameSetup, maxOnCourt int) model.Game {
	periodLength := s.PeriodLength
	if periodLength <= 0 {
		periodLength = defaultPeriodMinutes
		if s.Rules == model.RulesPro {
			periodLength = proPeriodMinutes
		}
	}
	totalPeriods := s.TotalPeriods
	if totalPeriods <= 0 {
		totalPeriods = defaultPeriods
		if s.Sport == model.SportHockey {
			totalPeriods = hockeyPeriods
		}
	}
	timeouts := TimeoutsFor(s.Rules)

	return model.Game{
		ID:               e.id(),
		Sport:            s.Sport,
		Rules:            s.Rules,
		Status:           model.StatusActive,
		HomeTeam:         e.newTeam(s.HomeTeam, defaultHomeColor, timeouts, maxOnCourt),
		AwayTeam:         e.newTeam(s.AwayTeam, defaultAwayColor, timeouts, maxOnCourt),
		CurrentPeriod:    1,
		PeriodLength:     periodLength,
		TotalPeriods:     totalPeriods,
		GameClockSeconds: periodLength * 60,
		Possession:       model.PossessionNone,
		Plays:            []model.Play{},
		CreatedAt:        e.nowMillis(),
	}
}

func (e Engine) newTeam(ts model.TeamSetup, color string, timeouts, maxOnCourt int) model.Team {
	if ts.Color != "" {
		color = ts.Color
	}
	players := make([]model.Player, 0, len(ts.Players))
	for i, ps := range ts.Players {
		players = append(players, model.Player{
			ID:        e.id(),
			Name:      ps.Name,
			Number:    ps.Number,
			Position:  ps.Position,
			IsActive:  ps.IsActive,
			IsOnCourt: i < maxOnCourt,
		})
	}
	return model.Team{
		ID:                e.id(),
		Name:              ts.Name,
		Abbreviation:      ts.Abbreviation,
		Color:             color,
		Players:           players,
		TimeoutsRemaining: timeouts,
	}
}

// RecordStat applies one stat event to a player and appends its play.
// An unknown player or stat type returns g unchanged.
func (e Engine) RecordStat(g model.Game, side model.Side, playerID string, st model.StatType) model.Game {
	team := g.Team(side)
	idx := team.PlayerIndex(playerID)
	if idx < 0 || !st.Valid() {
		return g
	}

	next := g.Clone()
	team = next.Team(side)
	player := &team.Players[idx]

	points := applyStat(player, st)
	team.Score += points
	if st == model.StatFoul {
		team.TeamFouls++
	}

	next.Plays = append(next.Plays, model.Play{
		ID:          e.id(),
		Timestamp:   e.nowMillis(),
		Period:      next.CurrentPeriod,
		GameTime:    FormatClock(next.GameClockSeconds),
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		TeamID:      team.ID,
		Type:        model.PlayType(st),
		Description: describe(player, st),
	})
	return next
}

// applyStat bumps the player's counters and returns the points scored.
func applyStat(p *model.Player, st model.StatType) int {
	s := &p.Stats
	switch st {
	case model.StatFieldGoal2:
		s.FieldGoalsMade++
		s.FieldGoalsAttempted++
		s.Points += 2
		return 2
	case model.StatFieldGoal3:
		s.ThreePointersMade++
		s.ThreePointersAttempted++
		s.FieldGoalsMade++
		s.FieldGoalsAttempted++
		s.Points += 3
		return 3
	case model.StatFreeThrow:
		s.FreeThrowsMade++
		s.FreeThrowsAttempted++
		s.Points++
		return 1
	case model.StatMiss2:
		s.FieldGoalsAttempted++
	case model.StatMiss3:
		s.ThreePointersAttempted++
		s.FieldGoalsAttempted++
	case model.StatMissFT:
		s.FreeThrowsAttempted++
	case model.StatOffensiveRebound:
		s.OffensiveRebounds++
	case model.StatDefensiveRebound:
		s.DefensiveRebounds++
	case model.StatAssist:
		s.Assists++
	case model.StatSteal:
		s.Steals++
	case model.StatBlock:
		s.Blocks++
	case model.StatTurnover:
		s.Turnovers++
	case model.StatFoul:
		p.Fouls++
	}
	return 0
}

var statLabels = map[model.StatType]string{
	model.StatFieldGoal2:       "2PT made",
	model.StatFieldGoal3:       "3PT made",
	model.StatFreeThrow:        "FT made",
	model.StatMiss2:            "2PT missed",
	model.StatMiss3:            "3PT missed",
	model.StatMissFT:           "FT missed",
	model.StatOffensiveRebound: "offensive rebound",
	model.StatDefensiveRebound: "defensive rebound",
	model.StatAssist:           "assist",
	model.StatSteal:            "steal",
	model.StatBlock:            "block",
	model.StatTurnover:         "turnover",
}

// describe must run after applyStat: the foul label carries the new foul count.
func describe(p *model.Player, st model.StatType) string {
	if st == model.StatFoul {
		return fmt.Sprintf("%s personal foul (%d)", p.Name, p.Fouls)
	}
	return p.Name + " " + statLabels[st]
}

// CallTimeout charges side a timeout, stops the clock and logs it.
// With no timeouts left g is returned unchanged.
func (e Engine) CallTimeout(g model.Game, side model.Side) model.Game {
	if g.Team(side).TimeoutsRemaining <= 0 {
		return g
	}
	next := g.Clone()
	team := next.Team(side)
	team.TimeoutsRemaining--
	next.IsClockRunning = false
	next.Plays = append(next.Plays, model.Play{
		ID:          e.id(),
		Timestamp:   e.nowMillis(),
		Period:      next.CurrentPeriod,
		GameTime:    FormatClock(next.GameClockSeconds),
		TeamID:      team.ID,
		Type:        model.PlayTimeout,
		Description: team.Abbreviation + " timeout",
	})
	return next
}

// Substitute logs a substitution play for a player entering or leaving the court.
// It does not flip court presence; pair it with ToggleOnCourt.
func (e Engine) Substitute(g model.Game, side model.Side, playerID string) model.Game {
	team := g.Team(side)
	idx := team.PlayerIndex(playerID)
	if idx < 0 {
		return g
	}
	p := team.Players[idx]
	verb := "checks out"
	if p.IsOnCourt {
		verb = "checks in"
	}
	next := g.Clone()
	next.Plays = append(next.Plays, model.Play{
		ID:          e.id(),
		Timestamp:   e.nowMillis(),
		Period:      next.CurrentPeriod,
		GameTime:    FormatClock(next.GameClockSeconds),
		PlayerID:    p.ID,
		PlayerName:  p.Name,
		TeamID:      team.ID,
		Type:        model.PlaySubstitution,
		Description: p.Name + " " + verb,
	})
	return next
}

package game

import (
	"fmt"

	"github.com/maxviazov/scorekeeper-service/internal/model"
)

// FormatClock renders remaining seconds as M:SS with no leading zero on minutes.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ToggleClock starts or stops the clock. Allowed at zero; ticks then do nothing.
func ToggleClock(g model.Game) model.Game {
	g.IsClockRunning = !g.IsClockRunning
	return g
}

// Tick removes one second while the clock runs and has time left.
func Tick(g model.Game) model.Game {
	if !g.IsClockRunning || g.GameClockSeconds <= 0 {
		return g
	}
	g.GameClockSeconds--
	return g
}

// ResetClock puts a full period back on the clock and stops it.
func ResetClock(g model.Game) model.Game {
	g.GameClockSeconds = g.PeriodLength * 60
	g.IsClockRunning = false
	return g
}

// AdvancePeriod moves to the next period, resets the clock and clears both
// teams' foul counts. Score, timeouts and personal fouls carry over.
// No upper bound is enforced here; see CanAdvancePeriod.
func AdvancePeriod(g model.Game) model.Game {
	g = ResetClock(g)
	g.CurrentPeriod++
	g.HomeTeam.TeamFouls = 0
	g.AwayTeam.TeamFouls = 0
	return g
}

// CanAdvancePeriod gates AdvancePeriod to regulation plus maxOvertimes.
func CanAdvancePeriod(g model.Game, maxOvertimes int) bool {
	return g.CurrentPeriod < g.TotalPeriods+maxOvertimes
}

// TogglePossession cycles home -> away -> none -> home.
func TogglePossession(g model.Game) model.Game {
	switch g.Possession {
	case model.PossessionHome:
		g.Possession = model.PossessionAway
	case model.PossessionAway:
		g.Possession = model.PossessionNone
	default:
		g.Possession = model.PossessionHome
	}
	return g
}

// ToggleOnCourt flips one player's court presence. The on-court cap is the
// caller's to enforce.
func ToggleOnCourt(g model.Game, side model.Side, playerID string) model.Game {
	idx := g.Team(side).PlayerIndex(playerID)
	if idx < 0 {
		return g
	}
	next := g
	team := next.Team(side)
	*team = team.Clone()
	team.Players[idx].IsOnCourt = !team.Players[idx].IsOnCourt
	return next
}

// EndGame marks the game completed and stops the clock.
func EndGame(g model.Game) model.Game {
	g.Status = model.StatusCompleted
	g.IsClockRunning = false
	return g
}

// PeriodLabel names the current period: Q1..Q4 then OT1.. for basketball,
// P<n> for everything else.
func PeriodLabel(g model.Game) string {
	if g.Sport == model.SportBasketball {
		if g.CurrentPeriod <= g.TotalPeriods {
			return fmt.Sprintf("Q%d", g.CurrentPeriod)
		}
		return fmt.Sprintf("OT%d", g.CurrentPeriod-g.TotalPeriods)
	}
	return fmt.Sprintf("P%d", g.CurrentPeriod)
}

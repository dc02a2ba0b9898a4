// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes; transitions live in package game.
package model

// Sport is the kind of game being scored.
type Sport string

const (
	SportBasketball Sport = "basketball"
	SportHockey     Sport = "hockey"
	SportFootball   Sport = "football"
	SportBaseball   Sport = "baseball"
	SportVolleyball Sport = "volleyball"
	SportSoccer     Sport = "soccer"
)

// Rules selects the rule set; it drives timeout allotment and default period length.
type Rules string

const (
	RulesHighSchool Rules = "high_school"
	RulesCollege    Rules = "college"
	RulesPro        Rules = "pro"
)

// Status is the lifecycle tag of a game.
type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Side distinguishes the two teams of a game.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Valid reports whether s is home or away.
func (s Side) Valid() bool { return s == SideHome || s == SideAway }

// Possession is a three-state marker: nobody, home or away.
// The zero value is PossessionNone so a fresh game starts without possession.
type Possession string

const (
	PossessionNone Possession = ""
	PossessionHome Possession = "home"
	PossessionAway Possession = "away"
)

// StatType is the closed set of scorekeeping stat events.
type StatType string

const (
	StatFieldGoal2       StatType = "field_goal_2"
	StatFieldGoal3       StatType = "field_goal_3"
	StatFreeThrow        StatType = "free_throw"
	StatMiss2            StatType = "miss_2"
	StatMiss3            StatType = "miss_3"
	StatMissFT           StatType = "miss_ft"
	StatOffensiveRebound StatType = "offensive_rebound"
	StatDefensiveRebound StatType = "defensive_rebound"
	StatAssist           StatType = "assist"
	StatSteal            StatType = "steal"
	StatBlock            StatType = "block"
	StatTurnover         StatType = "turnover"
	StatFoul             StatType = "foul"
)

// StatTypes lists every recordable stat type in button order.
var StatTypes = []StatType{
	StatFieldGoal2, StatFieldGoal3, StatFreeThrow,
	StatMiss2, StatMiss3, StatMissFT,
	StatOffensiveRebound, StatDefensiveRebound,
	StatAssist, StatSteal, StatBlock, StatTurnover, StatFoul,
}

// PlayType is the kind of a play-log entry: any stat type plus timeout and substitution.
type PlayType string

const (
	PlayTimeout      PlayType = "timeout"
	PlaySubstitution PlayType = "substitution"
)

// Valid reports whether t is a member of the closed stat set.
func (t StatType) Valid() bool {
	for _, st := range StatTypes {
		if st == t {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known play type.
func (t PlayType) Valid() bool {
	return t == PlayTimeout || t == PlaySubstitution || StatType(t).Valid()
}

// PlayerStats is the fixed-shape counter record of one player in one game.
type PlayerStats struct {
	Points                 int `json:"points"`
	FieldGoalsMade         int `json:"fieldGoalsMade"`
	FieldGoalsAttempted    int `json:"fieldGoalsAttempted"`
	ThreePointersMade      int `json:"threePointersMade"`
	ThreePointersAttempted int `json:"threePointersAttempted"`
	FreeThrowsMade         int `json:"freeThrowsMade"`
	FreeThrowsAttempted    int `json:"freeThrowsAttempted"`
	OffensiveRebounds      int `json:"offensiveRebounds"`
	DefensiveRebounds      int `json:"defensiveRebounds"`
	Assists                int `json:"assists"`
	Steals                 int `json:"steals"`
	Blocks                 int `json:"blocks"`
	Turnovers              int `json:"turnovers"`
}

// Add returns the field-wise sum of s and o.
func (s PlayerStats) Add(o PlayerStats) PlayerStats {
	return PlayerStats{
		Points:                 s.Points + o.Points,
		FieldGoalsMade:         s.FieldGoalsMade + o.FieldGoalsMade,
		FieldGoalsAttempted:    s.FieldGoalsAttempted + o.FieldGoalsAttempted,
		ThreePointersMade:      s.ThreePointersMade + o.ThreePointersMade,
		ThreePointersAttempted: s.ThreePointersAttempted + o.ThreePointersAttempted,
		FreeThrowsMade:         s.FreeThrowsMade + o.FreeThrowsMade,
		FreeThrowsAttempted:    s.FreeThrowsAttempted + o.FreeThrowsAttempted,
		OffensiveRebounds:      s.OffensiveRebounds + o.OffensiveRebounds,
		DefensiveRebounds:      s.DefensiveRebounds + o.DefensiveRebounds,
		Assists:                s.Assists + o.Assists,
		Steals:                 s.Steals + o.Steals,
		Blocks:                 s.Blocks + o.Blocks,
		Turnovers:              s.Turnovers + o.Turnovers,
	}
}

// Player is an athlete on a game roster.
type Player struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Number    int         `json:"number"`
	Position  string      `json:"position"`
	IsActive  bool        `json:"isActive"`
	IsOnCourt bool        `json:"isOnCourt"`
	Fouls     int         `json:"fouls"`
	Stats     PlayerStats `json:"stats"`
}

// Team is one side of a game. Home and away are structurally identical.
type Team struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Abbreviation      string   `json:"abbreviation"`
	Color             string   `json:"color"`
	Players           []Player `json:"players"`
	TimeoutsRemaining int      `json:"timeoutsRemaining"`
	TeamFouls         int      `json:"teamFouls"`
	Score             int      `json:"score"`
}

// Play is an immutable play-log entry. Timestamp is epoch milliseconds.
type Play struct {
	ID          string   `json:"id"`
	Timestamp   int64    `json:"timestamp"`
	Period      int      `json:"period"`
	GameTime    string   `json:"gameTime"`
	PlayerID    string   `json:"playerId,omitempty"`
	PlayerName  string   `json:"playerName,omitempty"`
	TeamID      string   `json:"teamId"`
	Type        PlayType `json:"type"`
	Description string   `json:"description"`
}

// Game is the root aggregate of a scored session. CreatedAt is epoch milliseconds.
type Game struct {
	ID               string     `json:"id"`
	Sport            Sport      `json:"sport"`
	Rules            Rules      `json:"rules"`
	Status           Status     `json:"status"`
	HomeTeam         Team       `json:"homeTeam"`
	AwayTeam         Team       `json:"awayTeam"`
	CurrentPeriod    int        `json:"currentPeriod"`
	PeriodLength     int        `json:"periodLength"`
	TotalPeriods     int        `json:"totalPeriods"`
	GameClockSeconds int        `json:"gameClockSeconds"`
	IsClockRunning   bool       `json:"isClockRunning"`
	Possession       Possession `json:"possession,omitempty"`
	Plays            []Play     `json:"plays"`
	CreatedAt        int64      `json:"createdAt"`
}

// Team returns the team playing on side s.
func (g *Game) Team(s Side) *Team {
	if s == SideAway {
		return &g.AwayTeam
	}
	return &g.HomeTeam
}

// Clone returns a deep copy: rosters and the play log do not share backing arrays.
func (g Game) Clone() Game {
	out := g
	out.HomeTeam = g.HomeTeam.Clone()
	out.AwayTeam = g.AwayTeam.Clone()
	if g.Plays != nil {
		out.Plays = append(make([]Play, 0, len(g.Plays)), g.Plays...)
	}
	return out
}

// Clone returns a copy of t with its own player slice.
func (t Team) Clone() Team {
	out := t
	if t.Players != nil {
		out.Players = append(make([]Player, 0, len(t.Players)), t.Players...)
	}
	return out
}

// PlayerIndex returns the roster index of the player with id, or -1.
func (t *Team) PlayerIndex(id string) int {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// OnCourt counts the players currently on court.
func (t *Team) OnCourt() int {
	n := 0
	for _, p := range t.Players {
		if p.IsOnCourt {
			n++
		}
	}
	return n
}

package model

// GameSetup is what the setup wizard hands over to start a game.
// Zero PeriodLength / TotalPeriods mean "use the defaults for these rules".
type GameSetup struct {
	Sport        Sport     `json:"sport" validate:"required,oneof=basketball hockey football baseball volleyball soccer"`
	Rules        Rules     `json:"rules" validate:"required,oneof=high_school college pro"`
	HomeTeam     TeamSetup `json:"homeTeam"`
	AwayTeam     TeamSetup `json:"awayTeam"`
	PeriodLength int       `json:"periodLength,omitempty" validate:"gte=0,lte=60"`
	TotalPeriods int       `json:"totalPeriods,omitempty" validate:"gte=0,lte=20"`
}

// TeamSetup describes one roster before the game exists.
type TeamSetup struct {
	Name         string        `json:"name" validate:"required,max=100"`
	Abbreviation string        `json:"abbreviation" validate:"required,max=4"`
	Color        string        `json:"color,omitempty"`
	Players      []PlayerSetup `json:"players" validate:"dive"`
}

// PlayerSetup describes one roster entry.
type PlayerSetup struct {
	Name     string `json:"name" validate:"required"`
	Number   int    `json:"number" validate:"gte=0,lte=99"`
	Position string `json:"position"`
	IsActive bool   `json:"isActive"`
}

// GamePatch is a shallow partial update of a stored game. Nil fields are left alone.
type GamePatch struct {
	Status           *Status     `json:"status,omitempty"`
	HomeTeam         *Team       `json:"homeTeam,omitempty"`
	AwayTeam         *Team       `json:"awayTeam,omitempty"`
	CurrentPeriod    *int        `json:"currentPeriod,omitempty"`
	PeriodLength     *int        `json:"periodLength,omitempty"`
	TotalPeriods     *int        `json:"totalPeriods,omitempty"`
	GameClockSeconds *int        `json:"gameClockSeconds,omitempty"`
	IsClockRunning   *bool       `json:"isClockRunning,omitempty"`
	Possession       *Possession `json:"possession,omitempty"`
	Plays            *[]Play     `json:"plays,omitempty"`
}

// Apply merges p into g, last write wins per field.
func (p GamePatch) Apply(g Game) Game {
	if p.Status != nil {
		g.Status = *p.Status
	}
	if p.HomeTeam != nil {
		g.HomeTeam = p.HomeTeam.Clone()
	}
	if p.AwayTeam != nil {
		g.AwayTeam = p.AwayTeam.Clone()
	}
	if p.CurrentPeriod != nil {
		g.CurrentPeriod = *p.CurrentPeriod
	}
	if p.PeriodLength != nil {
		g.PeriodLength = *p.PeriodLength
	}
	if p.TotalPeriods != nil {
		g.TotalPeriods = *p.TotalPeriods
	}
	if p.GameClockSeconds != nil {
		g.GameClockSeconds = *p.GameClockSeconds
	}
	if p.IsClockRunning != nil {
		g.IsClockRunning = *p.IsClockRunning
	}
	if p.Possession != nil {
		g.Possession = *p.Possession
	}
	if p.Plays != nil {
		g.Plays = append([]Play(nil), (*p.Plays)...)
	}
	return g
}

// TeamPatch is a shallow partial update of one team.
type TeamPatch struct {
	Name              *string   `json:"name,omitempty"`
	Abbreviation      *string   `json:"abbreviation,omitempty"`
	Color             *string   `json:"color,omitempty"`
	Players           *[]Player `json:"players,omitempty"`
	TimeoutsRemaining *int      `json:"timeoutsRemaining,omitempty"`
	TeamFouls         *int      `json:"teamFouls,omitempty"`
	Score             *int      `json:"score,omitempty"`
}

// Apply merges p into t.
func (p TeamPatch) Apply(t Team) Team {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Abbreviation != nil {
		t.Abbreviation = *p.Abbreviation
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Players != nil {
		t.Players = append([]Player(nil), (*p.Players)...)
	}
	if p.TimeoutsRemaining != nil {
		t.TimeoutsRemaining = *p.TimeoutsRemaining
	}
	if p.TeamFouls != nil {
		t.TeamFouls = *p.TeamFouls
	}
	if p.Score != nil {
		t.Score = *p.Score
	}
	return t
}

// PlayerPatch is a shallow partial update of one player; it is the
// correction path for stats written from outside the live session.
type PlayerPatch struct {
	Name      *string      `json:"name,omitempty"`
	Number    *int         `json:"number,omitempty"`
	Position  *string      `json:"position,omitempty"`
	IsActive  *bool        `json:"isActive,omitempty"`
	IsOnCourt *bool        `json:"isOnCourt,omitempty"`
	Fouls     *int         `json:"fouls,omitempty"`
	Stats     *PlayerStats `json:"stats,omitempty"`
}

// Apply merges p into pl.
func (p PlayerPatch) Apply(pl Player) Player {
	if p.Name != nil {
		pl.Name = *p.Name
	}
	if p.Number != nil {
		pl.Number = *p.Number
	}
	if p.Position != nil {
		pl.Position = *p.Position
	}
	if p.IsActive != nil {
		pl.IsActive = *p.IsActive
	}
	if p.IsOnCourt != nil {
		pl.IsOnCourt = *p.IsOnCourt
	}
	if p.Fouls != nil {
		pl.Fouls = *p.Fouls
	}
	if p.Stats != nil {
		pl.Stats = *p.Stats
	}
	return pl
}

// PlayInput is a play submitted through the persistence path. Stats, timeouts
// and substitutions are re-derived from it; the client never supplies counters.
type PlayInput struct {
	Type     PlayType `json:"type" validate:"required"`
	TeamID   string   `json:"teamId" validate:"required"`
	PlayerID string   `json:"playerId,omitempty"`
}

package model

// BoxScoreLine is one player's row in the box score.
// Percentages are nil when nothing was attempted.
type BoxScoreLine struct {
	PlayerID    string      `json:"playerId"`
	Name        string      `json:"name"`
	Number      int         `json:"number"`
	Position    string      `json:"position"`
	IsOnCourt   bool        `json:"isOnCourt"`
	Fouls       int         `json:"fouls"`
	FoulWarning bool        `json:"foulWarning"`
	FouledOut   bool        `json:"fouledOut"`
	Stats       PlayerStats `json:"stats"`
	Rebounds    int         `json:"rebounds"`
	FGPct       *float64    `json:"fgPct,omitempty"`
	ThreePct    *float64    `json:"threePct,omitempty"`
	FTPct       *float64    `json:"ftPct,omitempty"`
}

// TeamBoxScore holds per-player lines and totals derived from them.
// Totals are recomputed on every read; nothing here is stored.
type TeamBoxScore struct {
	TeamID       string         `json:"teamId"`
	Name         string         `json:"name"`
	Abbreviation string         `json:"abbreviation"`
	Score        int            `json:"score"`
	TeamFouls    int            `json:"teamFouls"`
	Lines        []BoxScoreLine `json:"lines"`
	Totals       PlayerStats    `json:"totals"`
	Fouls        int            `json:"fouls"`
	Rebounds     int            `json:"rebounds"`
	FGPct        *float64       `json:"fgPct,omitempty"`
	ThreePct     *float64       `json:"threePct,omitempty"`
	FTPct        *float64       `json:"ftPct,omitempty"`
}

// BoxScore is the read model for the box score view. Away is listed first, as printed.
type BoxScore struct {
	GameID string       `json:"gameId"`
	Status Status       `json:"status"`
	Period string       `json:"period"`
	Away   TeamBoxScore `json:"away"`
	Home   TeamBoxScore `json:"home"`
}

// Scoreboard is the compact header view of a live game.
type Scoreboard struct {
	GameID         string     `json:"gameId"`
	Status         Status     `json:"status"`
	Period         string     `json:"period"`
	Clock          string     `json:"clock"`
	IsClockRunning bool       `json:"isClockRunning"`
	Possession     Possession `json:"possession,omitempty"`
	Home           TeamLine   `json:"home"`
	Away           TeamLine   `json:"away"`
}

// TeamLine is one team's scoreboard cell.
type TeamLine struct {
	Name              string `json:"name"`
	Abbreviation      string `json:"abbreviation"`
	Color             string `json:"color"`
	Score             int    `json:"score"`
	TimeoutsRemaining int    `json:"timeoutsRemaining"`
	TeamFouls         int    `json:"teamFouls"`
}

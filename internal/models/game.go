package models

import "time"

// Game types as reported by the schedule endpoint
const (
	GameTypePreseason  = "PR"
	GameTypeRegular    = "R"
	GameTypePostseason = "P"
	GameTypeAllStar    = "A"
)

// StatusFinal is the detailed state of a completed game
const StatusFinal = "Final"

// ScheduleSide is one team's side of a scheduled game
type ScheduleSide struct {
	Score int `json:"score"`
	Team  struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	LeagueRecord struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
		OT     int `json:"ot"`
	} `json:"leagueRecord"`
}

// ScheduleGame is a read-only projection of one schedule entry
type ScheduleGame struct {
	GamePK   int    `json:"gamePk"`
	GameType string `json:"gameType"`
	Season   string `json:"season"`
	GameDate string `json:"gameDate"`
	Status   struct {
		AbstractGameState string `json:"abstractGameState"`
		DetailedState     string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Home ScheduleSide `json:"home"`
		Away ScheduleSide `json:"away"`
	} `json:"teams"`
}

// IsFinal returns true if the game is completed
func (g *ScheduleGame) IsFinal() bool {
	return g.Status.DetailedState == StatusFinal
}

// IsPreseason returns true for exhibition games
func (g *ScheduleGame) IsPreseason() bool {
	return g.GameType == GameTypePreseason
}

// IsPostseason returns true for playoff games
func (g *ScheduleGame) IsPostseason() bool {
	return g.GameType == GameTypePostseason
}

// Date parses the game's start time; zero time when absent or malformed
func (g *ScheduleGame) Date() time.Time {
	t, err := time.Parse(time.RFC3339, g.GameDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Sides returns (team, opponent) relative to teamID and whether the team played
// at home. ok is false when teamID is on neither side.
func (g *ScheduleGame) Sides(teamID int) (team, opponent ScheduleSide, home, ok bool) {
	switch teamID {
	case g.Teams.Home.Team.ID:
		return g.Teams.Home, g.Teams.Away, true, true
	case g.Teams.Away.Team.ID:
		return g.Teams.Away, g.Teams.Home, false, true
	default:
		return ScheduleSide{}, ScheduleSide{}, false, false
	}
}

// BoxScoreTeam is one team's half of a game box score
type BoxScoreTeam struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	TeamStats struct {
		TeamSkaterStats map[string]interface{} `json:"teamSkaterStats"`
	} `json:"teamStats"`
}

// SkaterStats converts the team skater stats into table values
func (b *BoxScoreTeam) SkaterStats() map[string]Value {
	out := make(map[string]Value, len(b.TeamStats.TeamSkaterStats))
	for k, v := range b.TeamStats.TeamSkaterStats {
		out[k] = ValueOf(v)
	}
	return out
}

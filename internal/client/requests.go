package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"nhlstats/ingestion/internal/models"
)

// ReportType selects the stat aggregation of the player stats endpoint.
// The value is passed through to the provider as-is.
type ReportType string

// Regular season report types
const (
	ReportSingleSeason         ReportType = "statsSingleSeason"
	ReportGameLog              ReportType = "gameLog"
	ReportHomeAndAway          ReportType = "homeAndAway"
	ReportWinLoss              ReportType = "winLoss"
	ReportByMonth              ReportType = "byMonth"
	ReportByDayOfWeek          ReportType = "byDayOfWeek"
	ReportVsDivision           ReportType = "vsDivision"
	ReportVsConference         ReportType = "vsConference"
	ReportVsTeam               ReportType = "vsTeam"
	ReportYearByYear           ReportType = "yearByYear"
	ReportYearByYearRank       ReportType = "yearByYearRank"
	ReportCareerRegularSeason  ReportType = "careerRegularSeason"
	ReportRegularSeasonRanks   ReportType = "regularSeasonStatRankings"
	ReportGoalsByGameSituation ReportType = "goalsByGameSituation"
	ReportOnPaceRegularSeason  ReportType = "onPaceRegularSeason"
)

// Playoff report types
const (
	ReportPlayoffGameLog              ReportType = "playoffGameLog"
	ReportSingleSeasonPlayoffs        ReportType = "statsSingleSeasonPlayoffs"
	ReportHomeAndAwayPlayoffs         ReportType = "homeAndAwayPlayoffs"
	ReportWinLossPlayoffs             ReportType = "winLossPlayoffs"
	ReportByMonthPlayoffs             ReportType = "byMonthPlayoffs"
	ReportByDayOfWeekPlayoffs         ReportType = "byDayOfWeekPlayoffs"
	ReportVsDivisionPlayoffs          ReportType = "vsDivisionPlayoffs"
	ReportVsConferencePlayoffs        ReportType = "vsConferencePlayoffs"
	ReportVsTeamPlayoffs              ReportType = "vsTeamPlayoffs"
	ReportYearByYearPlayoffs          ReportType = "yearByYearPlayoffs"
	ReportYearByYearPlayoffsRank      ReportType = "yearByYearPlayoffsRank"
	ReportCareerPlayoffs              ReportType = "careerPlayoffs"
	ReportPlayoffStatRankings         ReportType = "playoffStatRankings"
	ReportGoalsByGameSituationPlayoff ReportType = "goalsByGameSituationPlayoffs"
)

// Request describes one provider call. Building a Request performs no I/O.
type Request struct {
	// Endpoint is a low-cardinality label used for metrics and logs
	Endpoint string
	Path     string
	Params   url.Values
}

// URL joins the request onto a base URL
func (r Request) URL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Params) > 0 {
		u += "?" + r.Params.Encode()
	}
	return u
}

// CurrentSeasonRequest resolves the provider's current season
func CurrentSeasonRequest() Request {
	return Request{Endpoint: "seasons_current", Path: "seasons/current"}
}

// TeamsRequest lists all teams
func TeamsRequest() Request {
	return Request{Endpoint: "teams", Path: "teams"}
}

// RosterRequest fetches a team roster, optionally for a past season
func RosterRequest(teamID int, season models.Season) Request {
	req := Request{
		Endpoint: "roster",
		Path:     fmt.Sprintf("teams/%d/roster", teamID),
	}
	if season != "" {
		req.Params = url.Values{
			"expand": {"team.roster"},
			"season": {season.String()},
		}
	}
	return req
}

// PlayerStatsRequest fetches one player's stats for a season and report type
func PlayerStatsRequest(playerID int, season models.Season, reportType ReportType) Request {
	return Request{
		Endpoint: "player_stats",
		Path:     fmt.Sprintf("people/%d/stats", playerID),
		Params: url.Values{
			"stats":  {string(reportType)},
			"season": {season.String()},
		},
	}
}

// ScheduleRequest fetches a team's schedule for a season
func ScheduleRequest(teamID int, season models.Season) Request {
	return Request{
		Endpoint: "schedule",
		Path:     "schedule",
		Params: url.Values{
			"season": {season.String()},
			"teamId": {strconv.Itoa(teamID)},
		},
	}
}

// BoxScoreRequest fetches the box score of a game
func BoxScoreRequest(gameID int) Request {
	return Request{
		Endpoint: "boxscore",
		Path:     fmt.Sprintf("game/%d/boxscore", gameID),
	}
}

// LiveFeedRequest fetches a game's live feed. With a start timecode
// ("yyyymmdd_hhmmss") only the changes since that moment are requested.
func LiveFeedRequest(gameID int, startTimecode string) Request {
	if startTimecode != "" {
		return Request{
			Endpoint: "live_feed_diff",
			Path:     fmt.Sprintf("game/%d/feed/live/diffPatch", gameID),
			Params:   url.Values{"startTimecode": {startTimecode}},
		}
	}
	return Request{
		Endpoint: "live_feed",
		Path:     fmt.Sprintf("game/%d/feed/live", gameID),
	}
}

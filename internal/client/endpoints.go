package client

import (
	"context"
	"encoding/json"
	"fmt"

	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// CurrentSeason fetches the provider's current season code
func (c *Client) CurrentSeason(ctx context.Context) (models.Season, error) {
	var resp struct {
		Seasons []struct {
			SeasonID string `json:"seasonId"`
		} `json:"seasons"`
	}
	if err := c.fetchJSON(ctx, CurrentSeasonRequest(), &resp); err != nil {
		return "", fmt.Errorf("failed to fetch current season: %w", err)
	}
	if len(resp.Seasons) == 0 {
		return "", fmt.Errorf("failed to fetch current season: empty seasons list")
	}

	return models.ParseSeason(resp.Seasons[0].SeasonID)
}

// ResolveSeason returns season unchanged, or the current season when it is empty.
// Callers resolve once per operation and pass the result down.
func (c *Client) ResolveSeason(ctx context.Context, season models.Season) (models.Season, error) {
	if season != "" {
		return season, nil
	}
	return c.CurrentSeason(ctx)
}

// Teams fetches all teams in provider order, optionally only active ones
func (c *Client) Teams(ctx context.Context, activeOnly bool) ([]models.Team, error) {
	var resp struct {
		Teams []models.TeamInput `json:"teams"`
	}
	if err := c.fetchJSON(ctx, TeamsRequest(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	teams := make([]models.Team, 0, len(resp.Teams))
	for i := range resp.Teams {
		if activeOnly && !resp.Teams[i].Active {
			continue
		}
		teams = append(teams, resp.Teams[i].ToTeam())
	}

	return teams, nil
}

// Roster fetches a team's roster for a season; an empty season resolves to the current one
func (c *Client) Roster(ctx context.Context, teamID int, season models.Season) ([]models.Player, error) {
	season, err := c.ResolveSeason(ctx, season)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Roster []models.RosterEntryInput `json:"roster"`
	}
	if err := c.fetchJSON(ctx, RosterRequest(teamID, season), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch roster for team %d: %w", teamID, err)
	}

	players := make([]models.Player, 0, len(resp.Roster))
	for i := range resp.Roster {
		players = append(players, resp.Roster[i].ToPlayer(teamID))
	}

	return players, nil
}

// PlayerStats fetches one player's stat splits. A response without splits
// yields Absent rather than an error.
func (c *Client) PlayerStats(ctx context.Context, playerID int, season models.Season, reportType ReportType) (models.PlayerStats, error) {
	season, err := c.ResolveSeason(ctx, season)
	if err != nil {
		return models.PlayerStats{}, err
	}

	var resp struct {
		Stats []struct {
			Splits []models.StatSplit `json:"splits"`
		} `json:"stats"`
	}
	if err := c.fetchJSON(ctx, PlayerStatsRequest(playerID, season, reportType), &resp); err != nil {
		return models.PlayerStats{}, fmt.Errorf("failed to fetch stats for player %d: %w", playerID, err)
	}

	result := models.PlayerStats{PlayerID: playerID}
	if len(resp.Stats) == 0 || len(resp.Stats[0].Splits) == 0 {
		result.Absent = true
		log.Debug().
			Int("player_id", playerID).
			Str("season", season.String()).
			Str("report_type", string(reportType)).
			Msg("No stats for player")
		return result, nil
	}

	result.Splits = resp.Stats[0].Splits
	return result, nil
}

// Schedule fetches a team's games for a season in the order the provider lists them
func (c *Client) Schedule(ctx context.Context, teamID int, season models.Season) ([]models.ScheduleGame, error) {
	season, err := c.ResolveSeason(ctx, season)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Dates []struct {
			Date  string                `json:"date"`
			Games []models.ScheduleGame `json:"games"`
		} `json:"dates"`
	}
	if err := c.fetchJSON(ctx, ScheduleRequest(teamID, season), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for team %d: %w", teamID, err)
	}

	var games []models.ScheduleGame
	for _, date := range resp.Dates {
		games = append(games, date.Games...)
	}

	return games, nil
}

// BoxScore fetches the home and away halves of a game's box score
func (c *Client) BoxScore(ctx context.Context, gameID int) (home, away models.BoxScoreTeam, err error) {
	var resp struct {
		Teams *struct {
			Home models.BoxScoreTeam `json:"home"`
			Away models.BoxScoreTeam `json:"away"`
		} `json:"teams"`
	}
	if err := c.fetchJSON(ctx, BoxScoreRequest(gameID), &resp); err != nil {
		return home, away, fmt.Errorf("failed to fetch box score for game %d: %w", gameID, err)
	}
	if resp.Teams == nil {
		return home, away, fmt.Errorf("box score for game %d has no teams", gameID)
	}

	return resp.Teams.Home, resp.Teams.Away, nil
}

// LiveFeed fetches a game's live data. Without a start timecode it returns the
// "liveData" object; with one it returns the provider's diff payload unchanged.
func (c *Client) LiveFeed(ctx context.Context, gameID int, startTimecode string) (json.RawMessage, error) {
	req := LiveFeedRequest(gameID, startTimecode)

	if startTimecode != "" {
		body, err := c.Fetch(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch live feed diff for game %d: %w", gameID, err)
		}
		return json.RawMessage(body), nil
	}

	var resp struct {
		LiveData json.RawMessage `json:"liveData"`
	}
	if err := c.fetchJSON(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch live feed for game %d: %w", gameID, err)
	}

	return resp.LiveData, nil
}

// FixedSeason is a season resolver that never consults the provider
type FixedSeason models.Season

// ResolveSeason returns season, or the fixed value when season is empty
func (f FixedSeason) ResolveSeason(_ context.Context, season models.Season) (models.Season, error) {
	if season != "" {
		return season, nil
	}
	return models.Season(f), nil
}

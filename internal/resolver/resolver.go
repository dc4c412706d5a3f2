// Package resolver builds the per-season identifier snapshot from team rosters.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// TeamChangePolicy decides what is kept when a player appears on more than one roster
type TeamChangePolicy string

const (
	// LastRosterWins maps the player to the last roster fetched that lists them
	LastRosterWins TeamChangePolicy = "last_roster_wins"
	// KeepHistory maps like LastRosterWins and also records every team in fetch order
	KeepHistory TeamChangePolicy = "keep_history"
)

// ParseTeamChangePolicy accepts the policy names used in configuration
func ParseTeamChangePolicy(s string) (TeamChangePolicy, error) {
	switch TeamChangePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LastRosterWins:
		return LastRosterWins, nil
	case KeepHistory:
		return KeepHistory, nil
	default:
		return "", fmt.Errorf("unknown team change policy %q", s)
	}
}

// RosterSource lists teams and their rosters
type RosterSource interface {
	Teams(ctx context.Context, activeOnly bool) ([]models.Team, error)
	Roster(ctx context.Context, teamID int, season models.Season) ([]models.Player, error)
}

// SeasonResolver turns an empty season into a concrete one
type SeasonResolver interface {
	ResolveSeason(ctx context.Context, season models.Season) (models.Season, error)
}

// Resolver builds IdentifierMaps
type Resolver struct {
	source  RosterSource
	seasons SeasonResolver
	policy  TeamChangePolicy
}

// NewResolver creates a resolver; an empty policy means LastRosterWins
func NewResolver(source RosterSource, seasons SeasonResolver, policy TeamChangePolicy) *Resolver {
	if policy == "" {
		policy = LastRosterWins
	}
	return &Resolver{
		source:  source,
		seasons: seasons,
		policy:  policy,
	}
}

// BuildMaps fetches every team's roster for the season and derives the identifier maps.
// A single roster failure fails the whole call and nothing is returned.
func (r *Resolver) BuildMaps(ctx context.Context, season models.Season, activeOnly bool) (*models.IdentifierMaps, error) {
	season, err := r.seasons.ResolveSeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve season: %w", err)
	}

	teams, err := r.source.Teams(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	rosters := make([][]models.Player, len(teams))
	for i, team := range teams {
		players, err := r.source.Roster(ctx, team.ID, season)
		if err != nil {
			return nil, fmt.Errorf("failed to build maps for season %s: roster of team %d: %w", season, team.ID, err)
		}
		rosters[i] = players
	}

	maps := r.derive(season, teams, rosters)

	log.Info().
		Str("season", season.String()).
		Int("teams", len(maps.TeamIDs)).
		Int("players", len(maps.PlayerIDs)).
		Int("name_collisions", len(maps.NameCollisions)).
		Msg("Built identifier maps")

	return maps, nil
}

// derive is the pure part of BuildMaps; rosters[i] belongs to teams[i]
func (r *Resolver) derive(season models.Season, teams []models.Team, rosters [][]models.Player) *models.IdentifierMaps {
	maps := models.NewIdentifierMaps(season)
	if r.policy == KeepHistory {
		maps.PlayerTeamHistory = make(map[int][]int)
	}

	for i, team := range teams {
		maps.TeamIDs = append(maps.TeamIDs, team.ID)
		maps.TeamIDToName[team.ID] = team.Name
		maps.TeamNameToID[team.Name] = team.ID
		maps.TeamIDToPlayers[team.ID] = make([]int, 0, len(rosters[i]))

		for _, player := range rosters[i] {
			r.addPlayer(maps, team.ID, player)
		}
	}

	return maps
}

func (r *Resolver) addPlayer(maps *models.IdentifierMaps, teamID int, player models.Player) {
	prevTeam, seen := maps.PlayerIDToTeam[player.ID]
	if !seen {
		maps.PlayerIDs = append(maps.PlayerIDs, player.ID)
	}

	if !containsInt(maps.TeamIDToPlayers[teamID], player.ID) {
		maps.TeamIDToPlayers[teamID] = append(maps.TeamIDToPlayers[teamID], player.ID)
	}

	if seen && prevTeam != teamID {
		log.Debug().
			Int("player_id", player.ID).
			Int("previous_team", prevTeam).
			Int("team", teamID).
			Msg("Player listed on more than one roster")
	}
	maps.PlayerIDToTeam[player.ID] = teamID

	if maps.PlayerTeamHistory != nil {
		history := maps.PlayerTeamHistory[player.ID]
		if len(history) == 0 || history[len(history)-1] != teamID {
			maps.PlayerTeamHistory[player.ID] = append(history, teamID)
		}
	}

	maps.PlayerIDToName[player.ID] = player.FullName

	if existing, ok := maps.PlayerNameToID[player.FullName]; ok && existing != player.ID {
		ids := maps.NameCollisions[player.FullName]
		if len(ids) == 0 {
			ids = append(ids, existing)
		}
		if !containsInt(ids, player.ID) {
			ids = append(ids, player.ID)
		}
		maps.NameCollisions[player.FullName] = ids

		log.Warn().
			Str("name", player.FullName).
			Ints("player_ids", ids).
			Msg("Player name collision, name lookup keeps the last id")
	}
	maps.PlayerNameToID[player.FullName] = player.ID
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Package store persists identifier maps and stat tables partitioned by season.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"nhlstats/ingestion/internal/models"
	"nhlstats/ingestion/internal/normalizer"
)

// ErrNotFound is returned by Get for a season/scope/key that was never written
var ErrNotFound = errors.New("not found")

// ErrPartialWrite marks a multi-key write that failed after some keys were replaced.
// Each key is replaced atomically on its own; there is no cross-key transaction.
var ErrPartialWrite = errors.New("partial write")

// Identifier map keys
const (
	PlayerNameToID  = "player_name_to_id"
	PlayerIDToName  = "player_id_to_name"
	TeamIDToPlayers = "team_id_to_players"
	PlayerIDToTeam  = "player_id_to_team"
	TeamIDToName    = "team_id_to_name"
	TeamNameToID    = "team_name_to_id"
	PlayerIDs       = "player_ids"
	TeamIDs         = "team_ids"

	NameCollisions    = "name_collisions"
	PlayerTeamHistory = "player_team_history"
)

// Stat table keys, stored under a report type scope
const (
	GoalieStats = "goalie_stats"
	SkaterStats = "skater_stats"
)

// singleSeasonReport is stored under a shorter directory name
const singleSeasonReport = "statsSingleSeason"

// MapKeys lists every identifier map key in the order PutMaps writes them
var MapKeys = []string{
	PlayerNameToID, PlayerIDToName, TeamIDToPlayers, PlayerIDToTeam,
	TeamIDToName, TeamNameToID, PlayerIDs, TeamIDs,
	NameCollisions, PlayerTeamHistory,
}

// optionalMapKeys may be missing from snapshots written before they existed
var optionalMapKeys = map[string]bool{
	NameCollisions:    true,
	PlayerTeamHistory: true,
}

// IsMapKey reports whether name is an identifier map key
func IsMapKey(name string) bool {
	for _, k := range MapKeys {
		if k == name {
			return true
		}
	}
	return false
}

// Key names one entry inside a season partition
type Key struct {
	// Scope is the report type for stat tables and empty for identifier maps
	Scope string
	Name  string
}

// MapKey addresses an identifier map
func MapKey(name string) Key {
	return Key{Name: name}
}

// TableKey addresses a stat table of a report type
func TableKey(reportType, table string) Key {
	return Key{Scope: reportType, Name: table}
}

// Path is the key's location relative to the season partition
func (k Key) Path() string {
	if k.Scope == "" {
		return k.Name
	}
	return path.Join(ReportDir(k.Scope), k.Name)
}

func (k Key) String() string {
	return k.Path()
}

// Validate rejects keys that would escape their partition
func (k Key) Validate() error {
	if k.Name == "" {
		return fmt.Errorf("empty store key")
	}
	for _, part := range []string{k.Scope, k.Name} {
		if part == "." || part == ".." || containsSeparator(part) {
			return fmt.Errorf("invalid store key %q", k.Path())
		}
	}
	return nil
}

// ReportDir maps a report type to its directory name
func ReportDir(reportType string) string {
	if reportType == singleSeasonReport {
		return "SingleSeason"
	}
	return reportType
}

// Store is a season-partitioned key-value store. Put overwrites the whole
// entry and never merges; Get returns ErrNotFound for unknown entries.
type Store interface {
	Put(ctx context.Context, season models.Season, key Key, value interface{}) error
	Get(ctx context.Context, season models.Season, key Key, out interface{}) error
}

// PutMaps writes every identifier map of the snapshot. Collisions and team
// history are always written, empty when absent, so a rebuild clears stale ones.
func PutMaps(ctx context.Context, s Store, maps *models.IdentifierMaps) error {
	collisions := maps.NameCollisions
	if collisions == nil {
		collisions = map[string][]int{}
	}
	history := maps.PlayerTeamHistory
	if history == nil {
		history = map[int][]int{}
	}

	values := map[string]interface{}{
		PlayerNameToID:  maps.PlayerNameToID,
		PlayerIDToName:  maps.PlayerIDToName,
		TeamIDToPlayers: maps.TeamIDToPlayers,
		PlayerIDToTeam:  maps.PlayerIDToTeam,
		TeamIDToName:    maps.TeamIDToName,
		TeamNameToID:    maps.TeamNameToID,
		PlayerIDs:       maps.PlayerIDs,
		TeamIDs:         maps.TeamIDs,

		NameCollisions:    collisions,
		PlayerTeamHistory: history,
	}

	for i, name := range MapKeys {
		if err := s.Put(ctx, maps.Season, MapKey(name), values[name]); err != nil {
			return writeError(name, maps.Season, MapKeys[:i], err)
		}
	}
	return nil
}

// GetMaps reads a full identifier snapshot back
func GetMaps(ctx context.Context, s Store, season models.Season) (*models.IdentifierMaps, error) {
	maps := models.NewIdentifierMaps(season)
	targets := map[string]interface{}{
		PlayerNameToID:  &maps.PlayerNameToID,
		PlayerIDToName:  &maps.PlayerIDToName,
		TeamIDToPlayers: &maps.TeamIDToPlayers,
		PlayerIDToTeam:  &maps.PlayerIDToTeam,
		TeamIDToName:    &maps.TeamIDToName,
		TeamNameToID:    &maps.TeamNameToID,
		PlayerIDs:       &maps.PlayerIDs,
		TeamIDs:         &maps.TeamIDs,

		NameCollisions:    &maps.NameCollisions,
		PlayerTeamHistory: &maps.PlayerTeamHistory,
	}

	for _, name := range MapKeys {
		err := s.Get(ctx, season, MapKey(name), targets[name])
		if errors.Is(err, ErrNotFound) && optionalMapKeys[name] {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s for season %s: %w", name, season, err)
		}
	}
	if len(maps.PlayerTeamHistory) == 0 {
		maps.PlayerTeamHistory = nil
	}
	return maps, nil
}

// GetPlayerIDs reads the player id list of a season
func GetPlayerIDs(ctx context.Context, s Store, season models.Season) ([]int, error) {
	var ids []int
	if err := s.Get(ctx, season, MapKey(PlayerIDs), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// PutTables writes both tables of a normalizer result under its report type
func PutTables(ctx context.Context, s Store, result *normalizer.Result) error {
	tables := []struct {
		name  string
		table models.StatTable
	}{
		{GoalieStats, result.Goalies},
		{SkaterStats, result.Skaters},
	}

	var written []string
	for _, t := range tables {
		if err := s.Put(ctx, result.Season, TableKey(result.ReportType, t.name), t.table); err != nil {
			return writeError(t.name, result.Season, written, err)
		}
		written = append(written, t.name)
	}
	return nil
}

func writeError(name string, season models.Season, written []string, err error) error {
	if len(written) == 0 {
		return fmt.Errorf("failed to store %s for season %s: %w", name, season, err)
	}
	return fmt.Errorf("failed to store %s for season %s after replacing %v: %w: %w",
		name, season, written, ErrPartialWrite, err)
}

// GetTable reads one stat table
func GetTable(ctx context.Context, s Store, season models.Season, reportType, table string) (models.StatTable, error) {
	var out models.StatTable
	if err := s.Get(ctx, season, TableKey(reportType, table), &out); err != nil {
		return models.StatTable{}, err
	}
	return out, nil
}

func containsSeparator(s string) bool {
	for _, r := range s {
		if r == '/' || r == '\\' || r == ':' {
			return true
		}
	}
	return false
}

// Package normalizer turns raw per-player stat splits into goalie and skater tables.
package normalizer

import (
	"sort"

	"nhlstats/ingestion/internal/metrics"
	"nhlstats/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Classifier reports whether a stat object belongs to a goaltender
type Classifier func(stat map[string]interface{}) bool

// IsGoalie tests for the overtime-loss counter, which only goaltender stats carry
func IsGoalie(stat map[string]interface{}) bool {
	_, ok := stat["ot"]
	return ok
}

// Result holds the normalized tables of one season and report type
type Result struct {
	Season     models.Season
	ReportType string
	Goalies    models.StatTable
	Skaters    models.StatTable

	// Absent lists players without stat splits for the season
	Absent []int
	// Malformed lists players whose splits lack the stat object
	Malformed []int
}

// PlayerIDs returns every player that made it into a table, goalies first
func (r *Result) PlayerIDs() []int {
	return append(r.Goalies.PlayerIDs(), r.Skaters.PlayerIDs()...)
}

// Normalizer partitions and flattens stat splits
type Normalizer struct {
	// Classify decides the bucket of a player; nil means IsGoalie
	Classify Classifier
}

// New returns a normalizer using IsGoalie
func New() *Normalizer {
	return &Normalizer{Classify: IsGoalie}
}

// Normalize builds the goalie and skater tables for playerIDs from raw.
// A player missing from raw, or marked absent, is reported as Absent; a
// player with a split that has no stat object is reported as Malformed.
// Neither appears in a table.
func (n *Normalizer) Normalize(season models.Season, reportType string, playerIDs []int, raw map[int]models.PlayerStats) Result {
	classify := n.Classify
	if classify == nil {
		classify = IsGoalie
	}

	result := Result{Season: season, ReportType: reportType}
	var goalies, skaters []models.StatRecord

	seen := make(map[int]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		stats, ok := raw[id]
		if !ok || stats.Absent || len(stats.Splits) == 0 {
			result.Absent = append(result.Absent, id)
			continue
		}

		records, goalie, ok := n.playerRecords(season, id, stats.Splits, classify)
		if !ok {
			log.Warn().
				Int("player_id", id).
				Str("season", season.String()).
				Str("report_type", reportType).
				Msg("Stat split without stat object, treating player as absent")
			result.Malformed = append(result.Malformed, id)
			continue
		}

		if goalie {
			goalies = append(goalies, records...)
		} else {
			skaters = append(skaters, records...)
		}
	}

	result.Goalies = models.NewStatTable(season, reportType, goalies)
	result.Skaters = models.NewStatTable(season, reportType, skaters)

	sort.Ints(result.Absent)
	sort.Ints(result.Malformed)

	metrics.UpdateNormalizedRows(len(result.Goalies.Rows), len(result.Skaters.Rows))

	return result
}

// playerRecords flattens every split of one player. The player is a goalie
// when any split classifies as one, so all their rows land in one bucket.
func (n *Normalizer) playerRecords(season models.Season, playerID int, splits []models.StatSplit, classify Classifier) ([]models.StatRecord, bool, bool) {
	records := make([]models.StatRecord, 0, len(splits))
	goalie := false

	for i, split := range splits {
		stat, ok := split.Stat()
		if !ok {
			return nil, false, false
		}
		if classify(stat) {
			goalie = true
		}
		records = append(records, models.StatRecord{
			PlayerID: playerID,
			Season:   season,
			Split:    i,
			Fields:   Flatten(split),
		})
	}

	return records, goalie, true
}

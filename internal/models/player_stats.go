package models

// PlayerStats is the outcome of one player-stats lookup.
// Absent is the expected result for a player who did not play in the season;
// it is not an error and carries no splits.
type PlayerStats struct {
	PlayerID int
	Splits   []StatSplit
	Absent   bool
}

package models

// IdentifierMaps is the per-season identifier snapshot built from team rosters.
//
// PlayerIDToName is keyed by the provider id and covers every rostered player.
// PlayerNameToID is a best-effort secondary index: when two players share a
// full name the later roster wins and the clash is recorded in NameCollisions.
type IdentifierMaps struct {
	Season Season `json:"season"`

	PlayerNameToID  map[string]int `json:"player_name_to_id"`
	PlayerIDToName  map[int]string `json:"player_id_to_name"`
	TeamIDToPlayers map[int][]int  `json:"team_id_to_players"`
	PlayerIDToTeam  map[int]int    `json:"player_id_to_team"`
	TeamIDToName    map[int]string `json:"team_id_to_name"`
	TeamNameToID    map[string]int `json:"team_name_to_id"`

	PlayerIDs []int `json:"player_ids"`
	TeamIDs   []int `json:"team_ids"`

	// NameCollisions lists every id seen for a full name shared by more than one player
	NameCollisions map[string][]int `json:"name_collisions,omitempty"`

	// PlayerTeamHistory is populated only under the keep-history team change policy
	PlayerTeamHistory map[int][]int `json:"player_team_history,omitempty"`
}

// NewIdentifierMaps returns an empty snapshot for a season
func NewIdentifierMaps(season Season) *IdentifierMaps {
	return &IdentifierMaps{
		Season:          season,
		PlayerNameToID:  make(map[string]int),
		PlayerIDToName:  make(map[int]string),
		TeamIDToPlayers: make(map[int][]int),
		PlayerIDToTeam:  make(map[int]int),
		TeamIDToName:    make(map[int]string),
		TeamNameToID:    make(map[string]int),
		NameCollisions:  make(map[string][]int),
	}
}

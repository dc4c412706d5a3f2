package models

// Team represents an NHL franchise as returned by the teams endpoint
type Team struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// TeamInput is the raw team object from the API; unknown fields are ignored
type TeamInput struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Active       bool   `json:"active"`
}

// ToTeam converts TeamInput (from API) to Team model
func (ti *TeamInput) ToTeam() Team {
	return Team{
		ID:     ti.ID,
		Name:   ti.Name,
		Active: ti.Active,
	}
}

// Position is a roster position descriptor
type Position struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Abbreviation string `json:"abbreviation"`
}

// Player is one roster entry bound to the team whose roster it came from
type Player struct {
	ID           int      `json:"id"`
	FullName     string   `json:"fullName"`
	TeamID       int      `json:"teamId"`
	Position     Position `json:"position"`
	JerseyNumber string   `json:"jerseyNumber"`
}

// RosterEntryInput is the raw roster element from the API
type RosterEntryInput struct {
	Person struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
		Link     string `json:"link"`
	} `json:"person"`
	JerseyNumber string   `json:"jerseyNumber"`
	Position     Position `json:"position"`
}

// ToPlayer converts RosterEntryInput (from API) to Player model.
// Team membership is not part of the payload, so the caller supplies it.
func (ri *RosterEntryInput) ToPlayer(teamID int) Player {
	return Player{
		ID:           ri.Person.ID,
		FullName:     ri.Person.FullName,
		TeamID:       teamID,
		Position:     ri.Position,
		JerseyNumber: ri.JerseyNumber,
	}
}

package models

// Event is the normalized view of an upstream fixture. It is rebuilt on
// every dashboard query and never stored.
type Event struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Venue     string `json:"venue"`
	Sport     string `json:"sport"`
	League    string `json:"league"`
	Season    string `json:"season"`
	Status    string `json:"status"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
}

// Played reports whether the event has a score. Events without one are
// treated as not yet played.
func (e Event) Played() bool {
	return e.HomeScore != nil && e.AwayScore != nil
}

package sports

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ayush/sports-events-hub/internal/models"
)

// Sport is an entry of the sports catalog.
type Sport struct {
	ID     string `json:"sport_id"`
	Name   string `json:"sport_name"`
	Format string `json:"format,omitempty"`
	Thumb  string `json:"thumb,omitempty"`
}

// League is a competition within a sport.
type League struct {
	ID      string `json:"league_id"`
	Name    string `json:"league_name"`
	Sport   string `json:"sport_name"`
	Country string `json:"country,omitempty"`
}

// Team is a club or franchise.
type Team struct {
	ID        string `json:"team_id"`
	Name      string `json:"team_name"`
	Alternate string `json:"alternate_name,omitempty"`
	League    string `json:"league"`
	LeagueID  string `json:"league_id,omitempty"`
	Sport     string `json:"sport"`
	Country   string `json:"country,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Location  string `json:"location,omitempty"`
	Founded   string `json:"founded,omitempty"`
	Badge     string `json:"logo,omitempty"`
}

// RawEvent is an event as TheSportsDB returns it.
type RawEvent struct {
	ID        string `json:"idEvent"`
	Event     string `json:"strEvent"`
	HomeTeam  string `json:"strHomeTeam"`
	AwayTeam  string `json:"strAwayTeam"`
	Date      string `json:"dateEvent"`
	Time      string `json:"strTime"`
	Venue     string `json:"strVenue"`
	Sport     string `json:"strSport"`
	League    string `json:"strLeague"`
	Season    string `json:"strSeason"`
	Status    string `json:"strStatus"`
	HomeScore Score  `json:"intHomeScore"`
	AwayScore Score  `json:"intAwayScore"`
}

// Normalize projects the upstream event onto models.Event.
func (e RawEvent) Normalize() models.Event {
	name := e.Event
	if e.HomeTeam != "" || e.AwayTeam != "" {
		name = e.HomeTeam + " vs " + e.AwayTeam
	}
	return models.Event{
		ID:        e.ID,
		Name:      name,
		HomeTeam:  e.HomeTeam,
		AwayTeam:  e.AwayTeam,
		Date:      e.Date,
		Time:      e.Time,
		Venue:     e.Venue,
		Sport:     e.Sport,
		League:    e.League,
		Season:    e.Season,
		Status:    e.Status,
		HomeScore: e.HomeScore.Int(),
		AwayScore: e.AwayScore.Int(),
	}
}

// Score is a score field that upstream sends as a string, a number or
// null. Anything that is not an integer reads as no score.
type Score struct {
	v *int
}

// Int returns the score, or nil when there is none.
func (s Score) Int() *int {
	if s.v == nil {
		return nil
	}
	n := *s.v
	return &n
}

func (s *Score) UnmarshalJSON(data []byte) error {
	s.v = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		s.v = &n
	}
	return nil
}

// Wire shapes of the upstream responses.

type sportsResponse struct {
	Sports []struct {
		ID     string `json:"idSport"`
		Name   string `json:"strSport"`
		Format string `json:"strFormat"`
		Thumb  string `json:"strSportThumb"`
	} `json:"sports"`
}

type upstreamLeague struct {
	ID      string `json:"idLeague"`
	Name    string `json:"strLeague"`
	Sport   string `json:"strSport"`
	Country string `json:"strCountry"`
}

type leaguesResponse struct {
	Countries []upstreamLeague `json:"countries"`
	Countrys  []upstreamLeague `json:"countrys"`
	Leagues   []upstreamLeague `json:"leagues"`
}

type teamsResponse struct {
	Teams []struct {
		ID         string `json:"idTeam"`
		Name       string `json:"strTeam"`
		Alternate  string `json:"strAlternate"`
		League     string `json:"strLeague"`
		LeagueID   string `json:"idLeague"`
		Sport      string `json:"strSport"`
		Country    string `json:"strCountry"`
		Stadium    string `json:"strStadium"`
		Location   string `json:"strLocation"`
		FormedYear string `json:"intFormedYear"`
		Badge      string `json:"strBadge"`
		TeamBadge  string `json:"strTeamBadge"`
	} `json:"teams"`
}

type eventsResponse struct {
	Events  []RawEvent `json:"events"`
	Results []RawEvent `json:"results"`
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Selection identifies a followed team or league.
//
// Older preference files stored teams and leagues as bare id strings, newer
// ones store objects. UnmarshalJSON accepts both and always yields the
// object shape.
type Selection struct {
	ID    string `json:"id"    bson:"id"`
	Name  string `json:"name"  bson:"name"`
	Sport string `json:"sport" bson:"sport"`
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Selection{}
		return nil
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*s = Selection{ID: id}
		return nil
	case '{':
		type plain Selection
		var v plain
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = Selection(v)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("selection: unsupported value %s", data)
		}
		*s = Selection{ID: n.String()}
		return nil
	}
}

// Preferences is one user's followed sports, teams and leagues. Saves
// replace the whole record.
type Preferences struct {
	SelectedSports  []string    `json:"selectedSports"  bson:"selected_sports"`
	SelectedTeams   []Selection `json:"selectedTeams"   bson:"selected_teams"`
	SelectedLeagues []Selection `json:"selectedLeagues" bson:"selected_leagues"`
}

// Unset reports whether neither sports nor leagues are selected.
func (p Preferences) Unset() bool {
	return len(p.SelectedSports) == 0 && len(p.SelectedLeagues) == 0
}

// Normalize replaces nil sets with empty ones and drops selections without
// an id, so the record always serializes as arrays.
func (p Preferences) Normalize() Preferences {
	out := Preferences{
		SelectedSports:  make([]string, 0, len(p.SelectedSports)),
		SelectedTeams:   make([]Selection, 0, len(p.SelectedTeams)),
		SelectedLeagues: make([]Selection, 0, len(p.SelectedLeagues)),
	}
	for _, s := range p.SelectedSports {
		if s != "" {
			out.SelectedSports = append(out.SelectedSports, s)
		}
	}
	for _, t := range p.SelectedTeams {
		if t.ID != "" {
			out.SelectedTeams = append(out.SelectedTeams, t)
		}
	}
	for _, l := range p.SelectedLeagues {
		if l.ID != "" {
			out.SelectedLeagues = append(out.SelectedLeagues, l)
		}
	}
	return out
}

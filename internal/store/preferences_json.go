package store

import (
	"context"

	"github.com/ayush/sports-events-hub/internal/models"
)

// preferencesDoc holds per-user records. The embedded Preferences are the
// top-level fields of the old single global record; they are kept as a
// read-only fallback for users without a record of their own.
type preferencesDoc struct {
	models.Preferences
	Users map[string]models.Preferences `json:"users"`
}

func emptyPreferencesDoc() preferencesDoc {
	return preferencesDoc{Users: map[string]models.Preferences{}}
}

// JSONPreferenceStore keeps preference records in a JSON table keyed by
// username.
type JSONPreferenceStore struct {
	table *Table[preferencesDoc]
}

func NewJSONPreferenceStore(blob Blob) *JSONPreferenceStore {
	return &JSONPreferenceStore{table: NewTable(blob, emptyPreferencesDoc).ResetOnCorrupt()}
}

func (s *JSONPreferenceStore) GetPreferences(ctx context.Context, username string) (models.Preferences, error) {
	doc, err := s.table.Load(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	if p, ok := doc.Users[username]; ok {
		return p, nil
	}
	legacy := doc.Preferences
	if !legacy.Unset() || len(legacy.SelectedTeams) > 0 {
		return legacy, nil
	}
	return models.Preferences{}, ErrNotFound
}

func (s *JSONPreferenceStore) SavePreferences(ctx context.Context, username string, p models.Preferences) error {
	return s.table.Update(ctx, func(doc *preferencesDoc) error {
		if doc.Users == nil {
			doc.Users = map[string]models.Preferences{}
		}
		doc.Users[username] = p
		return nil
	})
}

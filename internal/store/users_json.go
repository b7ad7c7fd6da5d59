package store

import (
	"context"
	"strings"
	"time"

	"github.com/ayush/sports-events-hub/internal/models"
)

type usersDoc struct {
	Users    map[string]*models.User    `json:"users"`
	Sessions map[string]*models.Session `json:"sessions"`
}

func emptyUsersDoc() usersDoc {
	return usersDoc{
		Users:    map[string]*models.User{},
		Sessions: map[string]*models.Session{},
	}
}

// JSONUserStore keeps users and sessions in one JSON table, users keyed by
// username and sessions keyed by token.
type JSONUserStore struct {
	table *Table[usersDoc]
}

func NewJSONUserStore(blob Blob) *JSONUserStore {
	return &JSONUserStore{table: NewTable(blob, emptyUsersDoc)}
}

func (s *JSONUserStore) load(ctx context.Context) (usersDoc, error) {
	doc, err := s.table.Load(ctx)
	if err != nil {
		return doc, err
	}
	if doc.Users == nil {
		doc.Users = map[string]*models.User{}
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]*models.Session{}
	}
	return doc, nil
}

func (s *JSONUserStore) update(ctx context.Context, fn func(*usersDoc) error) error {
	return s.table.Update(ctx, func(doc *usersDoc) error {
		if doc.Users == nil {
			doc.Users = map[string]*models.User{}
		}
		if doc.Sessions == nil {
			doc.Sessions = map[string]*models.Session{}
		}
		return fn(doc)
	})
}

func (s *JSONUserStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := doc.Users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *JSONUserStore) UsernameExistsFold(ctx context.Context, username string) (bool, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for name := range doc.Users {
		if strings.EqualFold(name, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *JSONUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range doc.Users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *JSONUserStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.update(ctx, func(doc *usersDoc) error {
		if _, ok := doc.Users[u.Username]; ok {
			return ErrDuplicateUsername
		}
		for _, existing := range doc.Users {
			if existing.Email == u.Email {
				return ErrDuplicateEmail
			}
		}
		doc.Users[u.Username] = u
		return nil
	})
}

func (s *JSONUserStore) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	return s.update(ctx, func(doc *usersDoc) error {
		u, ok := doc.Users[username]
		if !ok {
			return ErrNotFound
		}
		u.LastLogin = &at
		return nil
	})
}

func (s *JSONUserStore) CreateSession(ctx context.Context, sess *models.Session) error {
	return s.update(ctx, func(doc *usersDoc) error {
		doc.Sessions[sess.Token] = sess
		return nil
	})
}

func (s *JSONUserStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sess, ok := doc.Sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *JSONUserStore) DeleteSession(ctx context.Context, token string) error {
	return s.update(ctx, func(doc *usersDoc) error {
		delete(doc.Sessions, token)
		return nil
	})
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/sports-events-hub/internal/models"
	"github.com/ayush/sports-events-hub/internal/store"
)

const (
	SessionTTL         = 24 * time.Hour
	RememberSessionTTL = 30 * 24 * time.Hour

	tokenBytes = 32
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
	UsernameExistsFold(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
}

// SessionStore defines the interface for session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service registers users and issues, validates and revokes sessions.
type Service struct {
	users    UserStore
	sessions SessionStore
	log      *slog.Logger

	now      func() time.Time
	hashCost int
}

func NewService(users UserStore, sessions SessionStore, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		log:      log,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
	}
}

// Authenticate checks credentials and records the login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.Profile, error) {
	u, err := s.users.GetUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return models.Profile{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("load user: %w", err)
	}
	if !u.Active {
		return models.Profile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return models.Profile{}, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, u.Username, s.now().UTC()); err != nil {
		return models.Profile{}, fmt.Errorf("update last login: %w", err)
	}
	return u.Profile(), nil
}

// CreateSession issues a new session for user. It lasts 30 days when
// rememberMe is set and 1 day otherwise.
func (s *Service) CreateSession(ctx context.Context, user models.Profile, rememberMe bool) (*models.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ttl := SessionTTL
	if rememberMe {
		ttl = RememberSessionTTL
	}
	now := s.now().UTC()
	sess := &models.Session{
		Token:      token,
		Username:   user.Username,
		User:       user,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		RememberMe: rememberMe,
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// ValidateSession returns the profile embedded in the session. An expired
// session is deleted as part of the check.
func (s *Service) ValidateSession(ctx context.Context, token string) (models.Profile, error) {
	if token == "" {
		return models.Profile{}, ErrNoToken
	}

	sess, err := s.sessions.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return models.Profile{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("load session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.log.Warn("evict expired session", "username", sess.Username, "error", err)
		}
		return models.Profile{}, ErrSessionExpired
	}
	return sess.User, nil
}

// DestroySession removes the session. Unknown or empty tokens are not an
// error.
func (s *Service) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, token)
}

// RegisterUser validates req and creates the account. The first broken rule
// is returned as a *ValidationError. The username is validated as sent;
// surrounding whitespace makes it invalid.
//
// The taken-username check compares the exact username, while
// CheckUsernameAvailable ignores case. "alice" can therefore register next
// to "Alice" even though the availability check reports it as taken.
func (s *Service) RegisterUser(ctx context.Context, req models.RegisterRequest) (models.Profile, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if err := validateFields(req); err != nil {
		return models.Profile{}, err
	}

	_, err := s.users.GetUser(ctx, req.Username)
	if err == nil {
		return models.Profile{}, invalid(UsernameTaken, "Username already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.Profile{}, fmt.Errorf("check username: %w", err)
	}

	taken, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return models.Profile{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return models.Profile{}, invalid(EmailTaken, "Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return models.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}
	u := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  displayName,
		PasswordHash: string(hashed),
		Newsletter:   req.Newsletter,
		CreatedAt:    s.now().UTC(),
		Active:       true,
	}

	switch err := s.users.CreateUser(ctx, u); {
	case errors.Is(err, store.ErrDuplicateUsername):
		return models.Profile{}, invalid(UsernameTaken, "Username already exists")
	case errors.Is(err, store.ErrDuplicateEmail):
		return models.Profile{}, invalid(EmailTaken, "Email already registered")
	case err != nil:
		return models.Profile{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", "username", u.Username)
	return u.Profile(), nil
}

// CheckUsernameAvailable reports whether no user has name, ignoring case.
// Storage errors report the name as unavailable.
func (s *Service) CheckUsernameAvailable(ctx context.Context, name string) bool {
	exists, err := s.users.UsernameExistsFold(ctx, name)
	if err != nil {
		s.log.Warn("username availability check failed", "error", err)
		return false
	}
	return !exists
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

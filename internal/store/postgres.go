package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayush/sports-events-hub/internal/models"
)

const pgUniqueViolation = "23505"

// PostgresStore handles users and sessions in PostgreSQL. Every write is a
// single-row statement, so concurrent registrations cannot overwrite each
// other.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users and sessions tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			username      VARCHAR(20)  UNIQUE NOT NULL,
			email         VARCHAR(255) UNIQUE NOT NULL,
			display_name  VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL,
			newsletter    BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			last_login    TIMESTAMPTZ,
			active        BOOLEAN      NOT NULL DEFAULT TRUE
		);
		CREATE TABLE IF NOT EXISTS sessions (
			token       VARCHAR(128) PRIMARY KEY,
			username    VARCHAR(20)  NOT NULL REFERENCES users(username),
			profile     JSONB        NOT NULL,
			created_at  TIMESTAMPTZ  NOT NULL,
			expires_at  TIMESTAMPTZ  NOT NULL,
			remember_me BOOLEAN      NOT NULL DEFAULT FALSE
		)
	`)
	return err
}

func (s *PostgresStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, email, display_name, password_hash, newsletter, created_at, last_login, active
		 FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Newsletter, &u.CreatedAt, &u.LastLogin, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UsernameExistsFold(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1))`, username,
	).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	return exists, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, display_name, password_hash, newsletter, created_at, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.DisplayName, u.PasswordHash, u.Newsletter, u.CreatedAt, u.Active,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if pgErr.ConstraintName == "users_email_key" {
			return ErrDuplicateEmail
		}
		return ErrDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE username = $1`, username, at)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.Session) error {
	profile, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (token, username, profile, created_at, expires_at, remember_me)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.Token, sess.Username, profile, sess.CreatedAt, sess.ExpiresAt, sess.RememberMe,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, token string) (*models.Session, error) {
	var (
		sess    models.Session
		profile []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT token, username, profile, created_at, expires_at, remember_me
		 FROM sessions WHERE token = $1`, token,
	).Scan(&sess.Token, &sess.Username, &profile, &sess.CreatedAt, &sess.ExpiresAt, &sess.RememberMe)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal(profile, &sess.User); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/sports-events-hub/internal/auth"
	"github.com/ayush/sports-events-hub/internal/config"
	"github.com/ayush/sports-events-hub/internal/preferences"
	"github.com/ayush/sports-events-hub/internal/store"
)

const (
	usersTable       = "users.json"
	preferencesTable = "preferences.json"
)

// stores bundles the persistence backends selected by STORE_BACKEND.
type stores struct {
	users    auth.UserStore
	sessions auth.SessionStore
	prefs    preferences.Store
	closers  []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.BackendDatabase:
		return openDatabaseStores(ctx, cfg)

	case config.BackendMinio:
		client, err := store.NewMinioClient(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, err
		}
		users := store.NewJSONUserStore(store.NewMinioBlob(client, cfg.MinioBucket, usersTable))
		logger.Info("using minio json tables", "bucket", cfg.MinioBucket)
		return &stores{
			users:    users,
			sessions: users,
			prefs:    store.NewJSONPreferenceStore(store.NewMinioBlob(client, cfg.MinioBucket, preferencesTable)),
		}, nil

	default:
		users := store.NewJSONUserStore(store.NewFileBlob(filepath.Join(cfg.DataDir, usersTable)))
		logger.Info("using file json tables", "dir", cfg.DataDir)
		return &stores{
			users:    users,
			sessions: users,
			prefs:    store.NewJSONPreferenceStore(store.NewFileBlob(filepath.Join(cfg.DataDir, preferencesTable))),
		}, nil
	}
}

// openDatabaseStores keeps users and sessions in PostgreSQL and
// preferences in MongoDB.
func openDatabaseStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}

	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	s.closers = append(s.closers, pgPool.Close)

	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	s.users = pgStore
	s.sessions = pgStore

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	s.closers = append(s.closers, func() { mongoClient.Disconnect(context.Background()) })
	s.prefs = store.NewMongoPreferenceStore(mongoClient.Database(cfg.MongoDB))

	return s, nil
}

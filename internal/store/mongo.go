package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/sports-events-hub/internal/models"
)

type preferencesDocument struct {
	Username           string `bson:"_id"`
	models.Preferences `bson:",inline"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

// MongoPreferenceStore keeps one preferences document per user, replaced
// with an upsert on every save.
type MongoPreferenceStore struct {
	col *mongo.Collection
}

func NewMongoPreferenceStore(db *mongo.Database) *MongoPreferenceStore {
	return &MongoPreferenceStore{col: db.Collection("preferences")}
}

func (s *MongoPreferenceStore) GetPreferences(ctx context.Context, username string) (models.Preferences, error) {
	var doc preferencesDocument
	err := s.col.FindOne(ctx, bson.M{"_id": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Preferences{}, ErrNotFound
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("mongo find preferences: %w", err)
	}
	return doc.Preferences, nil
}

func (s *MongoPreferenceStore) SavePreferences(ctx context.Context, username string, p models.Preferences) error {
	doc := preferencesDocument{Username: username, Preferences: p, UpdatedAt: time.Now()}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": username}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save preferences: %w", err)
	}
	return nil
}

// Package mongo provides MongoDB implementations of the profile, meal plan
// and rating repositories
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names
const (
	CollectionUsers     = "users"
	CollectionMealPlans = "meal_plans"
	CollectionRatings   = "exercise_ratings"
)

// Connect opens a client for uri and pings the server
func Connect(ctx context.Context, uri string, timeout time.Duration, logger *zap.Logger) (*mongo.Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB")
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on. The rating
// index is unique so upserts cannot create duplicates.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionRatings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "exercise_title", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("idx_ratings_user_exercise"),
	})
	if err != nil {
		return fmt.Errorf("create rating index: %w", err)
	}

	_, err = db.Collection(CollectionMealPlans).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_meal_plans_user_created"),
	})
	if err != nil {
		return fmt.Errorf("create meal plan index: %w", err)
	}
	return nil
}

package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartmeals/v2/internal/domain/exercise"
	"github.com/smartmeals/v2/internal/ports/outbound"
)

// RatingRepository stores exercise ratings, one document per user and title
type RatingRepository struct {
	collection *mongo.Collection
}

var _ outbound.RatingRepository = (*RatingRepository)(nil)

// NewRatingRepository creates a rating repository on db
func NewRatingRepository(db *mongo.Database) *RatingRepository {
	return &RatingRepository{collection: db.Collection(CollectionRatings)}
}

func (r *RatingRepository) Upsert(ctx context.Context, rating exercise.Rating) error {
	filter := bson.M{
		"user_id":        rating.UserID.String(),
		"exercise_title": rating.ExerciseTitle,
	}
	update := bson.M{
		"$set":         bson.M{"rating": rating.Value, "updated_at": rating.RatedAt},
		"$setOnInsert": bson.M{"created_at": rating.RatedAt},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *RatingRepository) ListAll(ctx context.Context) ([]exercise.Rating, error) {
	return r.list(ctx, bson.M{})
}

func (r *RatingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]exercise.Rating, error) {
	return r.list(ctx, bson.M{"user_id": userID.String()})
}

func (r *RatingRepository) list(ctx context.Context, filter bson.M) ([]exercise.Rating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []ratingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}

	ratings := make([]exercise.Rating, 0, len(docs))
	for _, doc := range docs {
		rating, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, nil
}

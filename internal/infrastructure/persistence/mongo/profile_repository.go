package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/ports/outbound"
	apperrors "github.com/smartmeals/v2/pkg/errors"
)

// ProfileRepository stores profiles as documents in the users collection.
// Progress entries are embedded in the profile document.
type ProfileRepository struct {
	collection *mongo.Collection
}

var _ outbound.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a profile repository on db
func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{collection: db.Collection(CollectionUsers)}
}

func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	if _, err := r.collection.InsertOne(ctx, toProfileDocument(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewAppError(apperrors.CodeConflict, "Profile already exists", p.ID.String())
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	doc := toProfileDocument(p)
	update := bson.M{"$set": bson.M{
		"name":               doc.Name,
		"weight":             doc.Weight,
		"height":             doc.Height,
		"age":                doc.Age,
		"sex":                doc.Sex,
		"activity_level":     doc.ActivityLevel,
		"goal":               doc.Goal,
		"target_weight":      doc.TargetWeight,
		"diet_preference":    doc.DietPreference,
		"allergies":          doc.Allergies,
		"preferred_cuisines": doc.PreferredCuisines,
		"health_status":      doc.HealthStatus,
		"health_conditions":  doc.HealthConditions,
		"bmi":                doc.BMI,
		"updated_at":         doc.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewProfileNotFoundError(p.ID.String())
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	var doc profileDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewProfileNotFoundError(id.String())
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return doc.toDomain()
}

func (r *ProfileRepository) RecordProgress(ctx context.Context, p *profile.Profile, entry profile.ProgressEntry) error {
	update := bson.M{
		"$set": bson.M{
			"weight":        p.Weight,
			"bmi":           p.BMI,
			"health_status": p.HealthStatus,
			"updated_at":    p.UpdatedAt,
		},
		"$push": bson.M{"progress_history": toProgressDocument(entry)},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": p.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewProfileNotFoundError(p.ID.String())
	}
	return nil
}

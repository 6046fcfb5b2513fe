package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/ports/outbound"
	apperrors "github.com/smartmeals/v2/pkg/errors"
)

// MealPlanRepository stores one document per generated plan
type MealPlanRepository struct {
	collection *mongo.Collection
}

var _ outbound.MealPlanRepository = (*MealPlanRepository)(nil)

// NewMealPlanRepository creates a meal plan repository on db
func NewMealPlanRepository(db *mongo.Database) *MealPlanRepository {
	return &MealPlanRepository{collection: db.Collection(CollectionMealPlans)}
}

func (r *MealPlanRepository) Save(ctx context.Context, plan *mealplan.MealPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	if _, err := r.collection.InsertOne(ctx, toMealPlanDocument(plan)); err != nil {
		return fmt.Errorf("insert meal plan: %w", err)
	}
	return nil
}

func (r *MealPlanRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc mealPlanDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID.String()}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewMealPlanNotFoundError(userID.String())
		}
		return nil, fmt.Errorf("find latest meal plan: %w", err)
	}
	return doc.toDomain()
}

func (r *MealPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*mealplan.MealPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mealPlanDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode meal plans: %w", err)
	}

	plans := make([]*mealplan.MealPlan, 0, len(docs))
	for _, doc := range docs {
		plan, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (r *MealPlanRepository) SetDayLogged(ctx context.Context, planID uuid.UUID, day int, logged bool) error {
	var doc mealPlanDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": planID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NewMealPlanNotFoundError(planID.String())
		}
		return fmt.Errorf("find meal plan: %w", err)
	}
	if day < 1 || day > len(doc.Plan.Days) {
		return apperrors.NewDayOutOfRangeError(day, len(doc.Plan.Days))
	}

	field := fmt.Sprintf("days.%d.logged", day-1)
	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": planID.String()},
		bson.M{"$set": bson.M{field: logged}},
	)
	if err != nil {
		return fmt.Errorf("update meal plan day: %w", err)
	}
	return nil
}

package gorm

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartmeals/v2/internal/domain/mealplan"
	"github.com/smartmeals/v2/internal/ports/outbound"
	apperrors "github.com/smartmeals/v2/pkg/errors"
)

// MealPlanRepository implements the meal plan repository interface using GORM
type MealPlanRepository struct {
	db *gorm.DB
}

// NewMealPlanRepository creates a new meal plan repository
func NewMealPlanRepository(db *gorm.DB) outbound.MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Save stores a new plan snapshot
func (r *MealPlanRepository) Save(ctx context.Context, plan *mealplan.MealPlan) error {
	model, err := MealPlanToModel(plan)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	plan.ID = model.ID
	return nil
}

// FindLatestByUser returns the user's most recent plan
func (r *MealPlanRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*mealplan.MealPlan, error) {
	var model MealPlanModel

	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&model)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewMealPlanNotFoundError(userID.String())
		}
		return nil, result.Error
	}

	return ModelToMealPlan(&model)
}

// ListByUser returns up to limit plans, newest first
func (r *MealPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*mealplan.MealPlan, error) {
	var models []MealPlanModel

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	plans := make([]*mealplan.MealPlan, len(models))
	for i := range models {
		plan, err := ModelToMealPlan(&models[i])
		if err != nil {
			return nil, err
		}
		plans[i] = plan
	}
	return plans, nil
}

// SetDayLogged rewrites the logged flag of one day inside the stored days
// document
func (r *MealPlanRepository) SetDayLogged(ctx context.Context, planID uuid.UUID, day int, logged bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model MealPlanModel
		query := tx
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := query.First(&model, "id = ?", planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewMealPlanNotFoundError(planID.String())
			}
			return err
		}

		var days []mealplan.Day
		if err := json.Unmarshal(model.Days, &days); err != nil {
			return err
		}
		if day < 1 || day > len(days) {
			return apperrors.NewDayOutOfRangeError(day, len(days))
		}
		days[day-1].Logged = logged

		encoded, err := json.Marshal(days)
		if err != nil {
			return err
		}
		return tx.Model(&MealPlanModel{}).
			Where("id = ?", planID).
			Update("days", datatypes.JSON(encoded)).Error
	})
}

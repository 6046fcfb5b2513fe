package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartmeals/v2/internal/domain/profile"
	"github.com/smartmeals/v2/internal/ports/outbound"
	apperrors "github.com/smartmeals/v2/pkg/errors"
)

// ProfileRepository implements the profile repository interface using GORM
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) outbound.ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile and any progress entries it already carries
func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := ProfileToModel(p)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		p.ID = model.ID
		for _, e := range p.ProgressHistory {
			if err := tx.Create(progressModel(p.ID, e)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update overwrites the profile's own columns. Progress history is left
// untouched.
func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	model := ProfileToModel(p)

	result := r.db.WithContext(ctx).Model(&ProfileModel{}).
		Where("id = ?", p.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperrors.NewProfileNotFoundError(p.ID.String())
	}

	return nil
}

// FindByID finds a profile by ID with its progress history
func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	var model ProfileModel

	result := r.db.WithContext(ctx).
		Preload("Progress", func(db *gorm.DB) *gorm.DB {
			return db.Order("recorded_at ASC, id ASC")
		}).
		First(&model, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewProfileNotFoundError(id.String())
		}
		return nil, result.Error
	}

	return ModelToProfile(&model), nil
}

// RecordProgress appends the entry and updates the current metrics in one
// transaction
func (r *ProfileRepository) RecordProgress(ctx context.Context, p *profile.Profile, entry profile.ProgressEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ProfileModel{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"weight":        p.Weight,
				"bmi":           p.BMI,
				"health_status": p.HealthStatus,
				"updated_at":    p.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NewProfileNotFoundError(p.ID.String())
		}
		return tx.Create(progressModel(p.ID, entry)).Error
	})
}

func progressModel(profileID uuid.UUID, e profile.ProgressEntry) *ProgressEntryModel {
	return &ProgressEntryModel{
		ProfileID:  profileID,
		RecordedAt: e.Timestamp,
		Weight:     e.Weight,
		BMI:        e.BMI,
	}
}

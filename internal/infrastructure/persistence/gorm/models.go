// Package gorm provides GORM model definitions and repositories for the
// relational stores (sqlite and postgres)
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProfileModel represents the GORM model for user profiles
type ProfileModel struct {
	ID                uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Name              string      `gorm:"type:varchar(100)"`
	Weight            float64     `gorm:"not null"`
	Height            float64     `gorm:"not null"`
	Age               int         `gorm:"not null"`
	Sex               string      `gorm:"type:varchar(20);not null"`
	ActivityLevel     string      `gorm:"type:varchar(40);not null"`
	Goal              string      `gorm:"type:varchar(40);not null;index"`
	TargetWeight      float64     `gorm:"default:0"`
	DietPreference    string      `gorm:"type:varchar(40);not null"`
	Allergies         StringSlice `gorm:"type:json"`
	PreferredCuisines StringSlice `gorm:"type:json"`
	HealthStatus      string      `gorm:"type:varchar(40)"`
	HealthConditions  string      `gorm:"type:text"`
	BMI               float64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Relationships
	Progress []ProgressEntryModel `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}

// ProgressEntryModel represents one weigh-in
type ProgressEntryModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	ProfileID  uuid.UUID `gorm:"type:char(36);not null;index:idx_progress_profile_time,priority:1"`
	RecordedAt time.Time `gorm:"not null;index:idx_progress_profile_time,priority:2"`
	Weight     float64   `gorm:"not null"`
	BMI        float64
}

// MealPlanModel represents a stored meal plan snapshot. Days are kept as a
// JSON document so a plan is written and read in one row.
type MealPlanModel struct {
	ID            uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserID        uuid.UUID      `gorm:"type:char(36);not null;index:idx_meal_plans_user_created,priority:1"`
	DailyCalories float64        `gorm:"not null"`
	Protein       float64
	Carbs         float64
	Fat           float64
	Days          datatypes.JSON `gorm:"type:json;not null"`
	CreatedAt     time.Time      `gorm:"index:idx_meal_plans_user_created,priority:2"`
}

// RatingModel represents an exercise rating. (user_id, exercise_title) is
// unique so ratings can be upserted.
type RatingModel struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID        uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_ratings_user_exercise,priority:1"`
	ExerciseTitle string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_ratings_user_exercise,priority:2"`
	Rating        int       `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StringSlice custom type for handling string arrays in JSON
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// BeforeCreate hook for ProfileModel
func (p *ProfileModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for MealPlanModel
func (m *MealPlanModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RatingModel
func (r *RatingModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (ProfileModel) TableName() string {
	return "profiles"
}

func (ProgressEntryModel) TableName() string {
	return "progress_entries"
}

func (MealPlanModel) TableName() string {
	return "meal_plans"
}

func (RatingModel) TableName() string {
	return "exercise_ratings"
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&ProfileModel{},
		&ProgressEntryModel{},
		&MealPlanModel{},
		&RatingModel{},
	}
}

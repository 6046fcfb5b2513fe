// Package profile holds the user profile aggregate: body metrics, goal and
// dietary preferences, and the append-only progress history.
package profile

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/shared"
)

// Defaults applied when a profile reaches the planner with missing metrics.
const (
	DefaultWeightKg = 70.0
	DefaultHeightCm = 170.0
	DefaultAge      = 30
)

// Health status labels derived from BMI.
const (
	StatusUnderweight = "Underweight"
	StatusHealthy     = "Healthy"
	StatusOverweight  = "Overweight"
	StatusObese       = "Obese"
)

// Profile is the user aggregate the planner works from.
type Profile struct {
	shared.AggregateRoot

	ID                uuid.UUID
	Name              string
	Weight            float64 // kg
	Height            float64 // cm
	Age               int
	Sex               Sex
	ActivityLevel     ActivityLevel
	Goal              Goal
	TargetWeight      float64 // kg, zero when unset
	DietPreference    DietPreference
	Allergies         []string
	PreferredCuisines []string
	HealthStatus      string
	HealthConditions  string
	BMI               float64
	ProgressHistory   []ProgressEntry
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// New normalizes p, derives BMI and health status, and stamps creation times.
// A nil ID is replaced with a fresh one.
func New(p Profile, now time.Time) *Profile {
	n := Normalize(p)
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	n.refreshDerived()
	n.AddEvent(ProfileCreatedEvent{UserID: n.ID, CreatedAt: now})
	return &n
}

// Normalize returns a copy of p with every missing or invalid field replaced
// by its documented default. Enum fields outside their value set are reset.
func Normalize(p Profile) Profile {
	out := p
	out.AggregateRoot = shared.AggregateRoot{}
	if out.Weight <= 0 || math.IsNaN(out.Weight) {
		out.Weight = DefaultWeightKg
	}
	if out.Height <= 0 || math.IsNaN(out.Height) {
		out.Height = DefaultHeightCm
	}
	if out.Age <= 0 {
		out.Age = DefaultAge
	}
	out.Sex, _ = ParseSex(string(out.Sex))
	out.ActivityLevel, _ = ParseActivityLevel(string(out.ActivityLevel))
	if out.Goal == "" {
		out.Goal = GoalMaintainWeight
	} else if g, ok := ParseGoal(string(out.Goal)); ok {
		out.Goal = g
	} else {
		out.Goal = GoalUnspecified
	}
	out.DietPreference, _ = ParseDietPreference(string(out.DietPreference))
	if out.TargetWeight < 0 {
		out.TargetWeight = 0
	}
	out.Allergies = cleanTerms(out.Allergies)
	out.PreferredCuisines = cleanTerms(out.PreferredCuisines)
	out.ProgressHistory = append([]ProgressEntry(nil), p.ProgressHistory...)
	out.BMI = ComputeBMI(out.Weight, out.Height)
	if strings.TrimSpace(out.HealthStatus) == "" {
		out.HealthStatus = HealthStatusFor(out.BMI)
	}
	return out
}

// HasDurableID reports whether the profile is backed by a stored record.
func (p *Profile) HasDurableID() bool {
	return p.ID != uuid.Nil
}

// UpdateMetrics changes weight and height and recomputes BMI and a derived
// status.
// Non-positive values leave the corresponding field unchanged.
func (p *Profile) UpdateMetrics(weight, height float64, now time.Time) {
	if weight > 0 {
		p.Weight = weight
	}
	if height > 0 {
		p.Height = height
	}
	p.refreshDerived()
	p.UpdatedAt = now
	p.AddEvent(ProfileUpdatedEvent{UserID: p.ID, UpdatedAt: now})
}

// RecordProgress appends a progress snapshot and makes weight current.
func (p *Profile) RecordProgress(weight float64, at time.Time) (ProgressEntry, error) {
	if weight <= 0 || math.IsNaN(weight) {
		return ProgressEntry{}, ErrInvalidWeight
	}
	p.Weight = weight
	p.refreshDerived()
	entry := ProgressEntry{Timestamp: at, Weight: weight, BMI: p.BMI}
	p.ProgressHistory = append(p.ProgressHistory, entry)
	p.UpdatedAt = at
	p.AddEvent(ProgressRecordedEvent{UserID: p.ID, Weight: weight, BMI: p.BMI, RecordedAt: at})
	return entry, nil
}

// refreshDerived recomputes BMI. The health status follows the new BMI only
// when it was empty or derived from the previous BMI; a status the user
// supplied is kept.
func (p *Profile) refreshDerived() {
	derived := strings.TrimSpace(p.HealthStatus) == "" || p.HealthStatus == HealthStatusFor(p.BMI)
	p.BMI = ComputeBMI(p.Weight, p.Height)
	if derived {
		p.HealthStatus = HealthStatusFor(p.BMI)
	}
}

// ComputeBMI returns weight / height_m² rounded to one decimal, or 0 when
// either input is not positive.
func ComputeBMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return math.Round(weightKg/(h*h)*10) / 10
}

// HealthStatusFor maps a BMI to its status label.
func HealthStatusFor(bmi float64) string {
	switch {
	case bmi < 18.5:
		return StatusUnderweight
	case bmi < 25:
		return StatusHealthy
	case bmi < 30:
		return StatusOverweight
	default:
		return StatusObese
	}
}

func cleanTerms(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

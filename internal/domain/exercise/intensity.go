package exercise

import (
	"math"
	"strings"

	"github.com/smartmeals/v2/internal/domain/profile"
)

// Tier is the coarse exercise difficulty. Tiers are ordered, Beginner lowest.
type Tier int

const (
	TierBeginner Tier = iota + 1
	TierIntermediate
	TierExpert
)

func (t Tier) String() string {
	switch t {
	case TierBeginner:
		return "Beginner"
	case TierIntermediate:
		return "Intermediate"
	case TierExpert:
		return "Expert"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseTier parses a difficulty label case-insensitively. Empty or unknown
// labels are treated as Beginner.
func ParseTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expert", "advanced":
		return TierExpert
	case "intermediate":
		return TierIntermediate
	default:
		return TierBeginner
	}
}

// Easier returns the next easier tier, or t when already Beginner.
func (t Tier) Easier() Tier {
	if t <= TierBeginner {
		return TierBeginner
	}
	return t - 1
}

// AllowedTiers returns t and the next easier tier.
func (t Tier) AllowedTiers() []Tier {
	if t == TierBeginner {
		return []Tier{TierBeginner}
	}
	return []Tier{t, t.Easier()}
}

// ActivityCap bounds tier and training volume for an activity level.
type ActivityCap struct {
	Tier        Tier
	DaysPerWeek int
	Sets        int
}

var activityCaps = map[profile.ActivityLevel]ActivityCap{
	profile.ActivitySedentary:        {TierBeginner, 3, 2},
	profile.ActivityLightlyActive:    {TierBeginner, 3, 3},
	profile.ActivityModeratelyActive: {TierIntermediate, 4, 3},
	profile.ActivityVeryActive:       {TierExpert, 5, 4},
	profile.ActivityExtraActive:      {TierExpert, 6, 4},
}

// CapFor returns the activity cap for a level.
func CapFor(level profile.ActivityLevel) ActivityCap {
	if c, ok := activityCaps[level]; ok {
		return c
	}
	return activityCaps[profile.ActivityModeratelyActive]
}

var riskKeywords = []string{"heart", "diabetes", "respiratory", "joint", "knee pain", "back pain"}

var poorHealthMarkers = []string{"underweight", "obese", "poor"}

// Body fat thresholds for plan levels 7 down to 2.
var fatBands = map[profile.Sex][]float64{
	profile.SexMale:   {10, 14, 18, 22, 26, 30},
	profile.SexFemale: {18, 22, 26, 30, 34, 38},
	profile.SexOther:  {14, 18, 22, 26, 30, 34},
}

// EstimateBodyFat estimates body fat percent from lean body mass with the
// Boer formula, clamped to [5, 50].
func EstimateBodyFat(weightKg, heightCm float64, sex profile.Sex) float64 {
	var lbm float64
	if sex == profile.SexMale {
		lbm = 0.407*weightKg + 0.267*heightCm - 19.2
	} else {
		lbm = 0.252*weightKg + 0.473*heightCm - 48.3
	}
	bf := (weightKg - lbm) / weightKg * 100
	return math.Max(5, math.Min(50, bf))
}

// PlanLevel maps body fat and BMI to a readiness level from 1 to 7.
func PlanLevel(bodyFat, bmi float64, sex profile.Sex) int {
	bands, ok := fatBands[sex]
	if !ok {
		bands = fatBands[profile.SexMale]
	}
	level := 7
	for _, limit := range bands {
		if bodyFat < limit {
			break
		}
		level--
	}

	switch {
	case bmi >= 35:
		level = min(level, 1)
	case bmi >= 30:
		level = min(level, 2)
	case bmi >= 25:
		level = min(level, 4)
	case bmi < 18.5:
		level = min(level, 3)
	}
	return level
}

// TierForLevel maps a plan level to a tier.
func TierForLevel(level int) Tier {
	switch {
	case level <= 3:
		return TierBeginner
	case level >= 6:
		return TierExpert
	default:
		return TierIntermediate
	}
}

// Intensity is the outcome of the intensity assessment.
type Intensity struct {
	BodyFat     float64  `json:"body_fat"`
	PlanLevel   int      `json:"plan_level"`
	Tier        Tier     `json:"tier"`
	DaysPerWeek int      `json:"days_per_week"`
	Sets        int      `json:"sets"`
	Reasons     []string `json:"reasons,omitempty"`
}

// AssessIntensity computes the tier for p. Health flags force Beginner,
// age at or above olderAge drops one tier, and the activity cap bounds the
// result from above.
func AssessIntensity(p profile.Profile, olderAge int) Intensity {
	p = profile.Normalize(p)
	bf := EstimateBodyFat(p.Weight, p.Height, p.Sex)
	level := PlanLevel(bf, p.BMI, p.Sex)
	in := Intensity{BodyFat: math.Round(bf*10) / 10, PlanLevel: level, Tier: TierForLevel(level)}

	status := strings.ToLower(p.HealthStatus)
	for _, m := range poorHealthMarkers {
		if strings.Contains(status, m) {
			in.Tier = TierBeginner
			in.Reasons = append(in.Reasons, "health status: "+p.HealthStatus)
			break
		}
	}
	conditions := strings.ToLower(p.HealthConditions)
	for _, k := range riskKeywords {
		if strings.Contains(conditions, k) {
			in.Tier = TierBeginner
			in.Reasons = append(in.Reasons, "health condition: "+k)
			break
		}
	}
	if olderAge > 0 && p.Age >= olderAge && in.Tier > TierBeginner {
		in.Tier = in.Tier.Easier()
		in.Reasons = append(in.Reasons, "age")
	}

	limit := CapFor(p.ActivityLevel)
	if limit.Tier < in.Tier {
		in.Tier = limit.Tier
		in.Reasons = append(in.Reasons, "activity level: "+string(p.ActivityLevel))
	}
	in.DaysPerWeek = limit.DaysPerWeek
	in.Sets = limit.Sets
	return in
}

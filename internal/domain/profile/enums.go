package profile

import "strings"

// Sex is the biological sex category used by the metabolic formulas.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel is the self-reported activity category.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

// Goal is the user's stated fitness goal.
type Goal string

const (
	GoalWeightLoss     Goal = "weight_loss"
	GoalWeightGain     Goal = "weight_gain"
	GoalMaintainWeight Goal = "maintain_weight"
	GoalMuscleGain     Goal = "muscle_gain"
	GoalUnspecified    Goal = "unspecified"
)

// DietPreference drives the meat and animal-product filter.
type DietPreference string

const (
	DietVegetarian    DietPreference = "vegetarian"
	DietVegan         DietPreference = "vegan"
	DietNonVegetarian DietPreference = "non_vegetarian"
	DietBoth          DietPreference = "both"
)

// AllSexes lists every Sex value.
var AllSexes = []Sex{SexMale, SexFemale, SexOther}

// AllActivityLevels lists every ActivityLevel value, least active first.
var AllActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLightlyActive,
	ActivityModeratelyActive,
	ActivityVeryActive,
	ActivityExtraActive,
}

// AllGoals lists every Goal value.
var AllGoals = []Goal{GoalWeightLoss, GoalWeightGain, GoalMaintainWeight, GoalMuscleGain, GoalUnspecified}

// AllDietPreferences lists every DietPreference value.
var AllDietPreferences = []DietPreference{DietVegetarian, DietVegan, DietNonVegetarian, DietBoth}

// canonical lowercases s and folds spaces and hyphens into underscores so
// "Weight Loss", "weight-loss" and "weight_loss" compare equal.
func canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

// ParseSex parses a sex label. Unknown or empty input yields SexMale and false.
func ParseSex(s string) (Sex, bool) {
	switch canonical(s) {
	case "male", "m":
		return SexMale, true
	case "female", "f":
		return SexFemale, true
	case "other":
		return SexOther, true
	}
	return SexMale, false
}

// ParseActivityLevel parses an activity label. Unknown input yields
// ActivityModeratelyActive and false.
func ParseActivityLevel(s string) (ActivityLevel, bool) {
	c := canonical(s)
	for _, a := range AllActivityLevels {
		if c == string(a) {
			return a, true
		}
	}
	return ActivityModeratelyActive, false
}

// ParseGoal parses a goal label. "maintain" is accepted as a short form of
// maintain_weight. Unknown input yields GoalUnspecified and false.
func ParseGoal(s string) (Goal, bool) {
	c := canonical(s)
	switch c {
	case "maintain", "maintenance":
		return GoalMaintainWeight, true
	case "not_specified", "":
		return GoalUnspecified, c != ""
	}
	for _, g := range AllGoals {
		if c == string(g) {
			return g, true
		}
	}
	return GoalUnspecified, false
}

// ParseDietPreference parses a diet label. "non_veg" and "non_vegetarian" are
// equivalent. Unknown input yields DietBoth and false.
func ParseDietPreference(s string) (DietPreference, bool) {
	switch c := canonical(s); c {
	case "vegetarian", "veg":
		return DietVegetarian, true
	case "vegan":
		return DietVegan, true
	case "non_vegetarian", "non_veg", "nonveg":
		return DietNonVegetarian, true
	case "both":
		return DietBoth, true
	}
	return DietBoth, false
}

// Label returns the display form of a goal, e.g. "Weight Loss".
func (g Goal) Label() string {
	switch g {
	case GoalWeightLoss:
		return "Weight Loss"
	case GoalWeightGain:
		return "Weight Gain"
	case GoalMaintainWeight:
		return "Maintain Weight"
	case GoalMuscleGain:
		return "Muscle Gain"
	default:
		return "Not Specified"
	}
}

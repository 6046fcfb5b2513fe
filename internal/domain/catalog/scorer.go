package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/smartmeals/v2/internal/domain/profile"
)

// ScoredRecipe is a recipe with its goal score and sanitized nutrients.
type ScoredRecipe struct {
	Recipe    RecipeDetail
	Score     float64
	Calories  float64
	Protein   float64
	Fibre     float64
	Fat       float64
	Carbs     float64
	Sugars    float64
	Salt      float64
	Saturates float64
}

// ParseNumeric strips everything except digits and '.' and parses the rest.
// Empty or unparseable text yields 0.
func ParseNumeric(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// ScoreRecipes scores every recipe for goal and returns the topN with a
// positive score, best first. Recipes without positive calories score -1.
func ScoreRecipes(goal profile.Goal, recipes []RecipeDetail, topN int) []ScoredRecipe {
	if topN <= 0 {
		return nil
	}
	scored := make([]ScoredRecipe, len(recipes))
	for i, r := range recipes {
		scored[i] = scoreRecipe(goal, r)
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	out := make([]ScoredRecipe, 0, min(topN, len(scored)))
	for _, s := range scored {
		if len(out) >= topN {
			break
		}
		if s.Score > 0 {
			out = append(out, s)
		}
	}
	return out
}

func scoreRecipe(goal profile.Goal, r RecipeDetail) ScoredRecipe {
	s := ScoredRecipe{
		Recipe:    r,
		Protein:   ParseNumeric(r.Protein),
		Fibre:     ParseNumeric(r.Fibre),
		Fat:       ParseNumeric(r.FatPercent),
		Carbs:     ParseNumeric(r.Carbs),
		Sugars:    ParseNumeric(r.SugarsPercent),
		Salt:      ParseNumeric(r.SaltPercent),
		Saturates: ParseNumeric(r.SaturatesPercent),
	}
	if r.Calories == nil || *r.Calories <= 0 {
		s.Score = -1
		return s
	}
	cal := *r.Calories
	s.Calories = cal

	switch goal {
	case profile.GoalWeightLoss:
		s.Score = s.Protein/cal*5 + s.Fibre/cal*3 - s.Sugars*0.1
	case profile.GoalWeightGain:
		s.Score = cal/100*3 + s.Protein/cal*2
	case profile.GoalMuscleGain:
		s.Score = s.Protein*2 + s.Protein/cal*5
	case profile.GoalMaintainWeight, profile.GoalUnspecified:
		s.Score = (s.Protein + s.Fibre*2) / cal * 5
	default:
		s.Score = (s.Protein + s.Fibre*2) / cal * 5
	}
	return s
}

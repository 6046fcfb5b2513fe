package exercise

import (
	"math"

	"github.com/smartmeals/v2/internal/domain/profile"
)

// Weights is the share of recommendations per category. Shares sum to 1.
type Weights map[Category]float64

var (
	balancedWeights = Weights{CategoryCardio: 0.3, CategoryStrength: 0.4, CategoryFlexibility: 0.3}

	goalWeights = map[profile.Goal]Weights{
		profile.GoalWeightLoss:     {CategoryCardio: 0.5, CategoryStrength: 0.2, CategoryFlexibility: 0.3},
		profile.GoalMuscleGain:     {CategoryCardio: 0.2, CategoryStrength: 0.6, CategoryFlexibility: 0.2},
		profile.GoalWeightGain:     balancedWeights,
		profile.GoalMaintainWeight: balancedWeights,
		profile.GoalUnspecified:    balancedWeights,
	}
)

// CategoryWeights returns goal weights adjusted for sex and age band.
func CategoryWeights(goal profile.Goal, sex profile.Sex, older bool) Weights {
	base, ok := goalWeights[goal]
	if !ok {
		base = balancedWeights
	}
	w := make(Weights, len(base))
	for c, v := range base {
		w[c] = v
	}

	if sex == profile.SexFemale {
		w[CategoryFlexibility] += 0.1
		w[CategoryStrength] -= 0.05
	}
	if older {
		w[CategoryFlexibility] += 0.1
		w[CategoryCardio] -= 0.1
	}

	var sum float64
	for _, c := range Categories {
		if w[c] < 0 {
			w[c] = 0
		}
		sum += w[c]
	}
	for _, c := range Categories {
		w[c] /= sum
	}
	return w
}

// Quotas returns round(n × weight) per category.
func (w Weights) Quotas(n int) map[Category]int {
	q := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		q[c] = int(math.Round(float64(n)*w[c] + 1e-9))
	}
	return q
}

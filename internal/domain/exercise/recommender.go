package exercise

import (
	"sort"

	"github.com/google/uuid"

	"github.com/smartmeals/v2/internal/domain/catalog"
	"github.com/smartmeals/v2/internal/domain/profile"
)

// Config tunes the recommender.
type Config struct {
	// Neighbors is the maximum k for the nearest-neighbor step.
	Neighbors int
	// OlderAge is the age at which intensity drops a tier and the mix
	// shifts toward flexibility.
	OlderAge int
	// DefaultRating is the prediction for exercises no neighbor has rated.
	DefaultRating float64
}

// DefaultConfig returns k = 5, an older-age band starting at 55 and a
// neutral default rating.
func DefaultConfig() Config {
	return Config{Neighbors: 5, OlderAge: 55, DefaultRating: DefaultPredictedRating}
}

// ScoredExercise is a catalog exercise with its classification and
// predicted rating.
type ScoredExercise struct {
	Exercise        catalog.Exercise
	Category        Category
	MuscleGroup     MuscleGroup
	PredictedRating float64
	// FromHistory is true when the prediction came from stored ratings
	// rather than the neutral default.
	FromHistory bool
}

// Recommendation is the output of Recommend.
type Recommendation struct {
	Intensity   Intensity
	Weights     Weights
	Quotas      map[Category]int
	Categories  map[Category][]ScoredExercise
	UsedHistory bool
}

// Total returns the number of recommended exercises across categories.
func (r *Recommendation) Total() int {
	n := 0
	for _, list := range r.Categories {
		n += len(list)
	}
	return n
}

// Recommender selects exercises for a profile.
type Recommender struct {
	cfg Config
}

// NewRecommender creates a recommender. Zero config values use defaults.
func NewRecommender(cfg Config) *Recommender {
	def := DefaultConfig()
	if cfg.Neighbors <= 0 {
		cfg.Neighbors = def.Neighbors
	}
	if cfg.OlderAge <= 0 {
		cfg.OlderAge = def.OlderAge
	}
	if cfg.DefaultRating < MinRating || cfg.DefaultRating > MaxRating {
		cfg.DefaultRating = def.DefaultRating
	}
	return &Recommender{cfg: cfg}
}

// Recommend returns up to n exercises split across categories by goal
// weight. ratings is the full rating history of all users and may be empty.
func (r *Recommender) Recommend(p profile.Profile, exercises []catalog.Exercise, ratings []Rating, n int) (*Recommendation, error) {
	if n <= 0 {
		return nil, ErrNoRecommendations
	}
	if len(exercises) == 0 {
		return nil, ErrCatalogEmpty
	}

	p = profile.Normalize(p)
	older := p.Age >= r.cfg.OlderAge
	intensity := AssessIntensity(p, r.cfg.OlderAge)
	weights := CategoryWeights(p.Goal, p.Sex, older)
	quotas := weights.Quotas(n)

	safe := ApplyExclusions(exercises, p.HealthConditions)
	scored, usedHistory := r.score(safe, ratings, p.ID)

	allowed := make(map[Tier]bool, 2)
	for _, t := range intensity.Tier.AllowedTiers() {
		allowed[t] = true
	}
	eligible := make([]ScoredExercise, 0, len(scored))
	for _, s := range scored {
		if allowed[ParseTier(s.Exercise.Level)] {
			eligible = append(eligible, s)
		}
	}
	rankByPrediction(eligible, usedHistory)

	byCategory := Partition(eligible)
	fallback := Partition(rankByCatalogRating(scored))

	out := make(map[Category][]ScoredExercise, len(Categories))
	for _, c := range Categories {
		q := quotas[c]
		var picked []ScoredExercise
		if c == CategoryStrength {
			picked = allocateStrength(byCategory[c], q)
		} else {
			picked = take(byCategory[c], q)
		}
		if len(picked) < q {
			picked = topUp(picked, fallback[c], q)
		}
		out[c] = picked
	}

	return &Recommendation{
		Intensity:   intensity,
		Weights:     weights,
		Quotas:      quotas,
		Categories:  out,
		UsedHistory: usedHistory,
	}, nil
}

func (r *Recommender) score(exercises []catalog.Exercise, ratings []Rating, userID uuid.UUID) ([]ScoredExercise, bool) {
	var predictor *Predictor
	if len(ratings) > 0 {
		matrix := NewRatingMatrix(ratings)
		predictor = NewPredictor(matrix, userID, min(r.cfg.Neighbors, matrix.Users()))
	}

	used := false
	out := make([]ScoredExercise, len(exercises))
	for i, ex := range exercises {
		s := ScoredExercise{
			Exercise:        ex,
			Category:        Categorize(ex),
			MuscleGroup:     MuscleGroupOf(ex.BodyPart),
			PredictedRating: r.cfg.DefaultRating,
		}
		if predictor != nil {
			if rating, ok := predictor.Predict(ex.Title); ok {
				s.PredictedRating, s.FromHistory = rating, true
				used = true
			}
		}
		out[i] = s
	}
	return out, used
}

// rankByPrediction orders by predicted rating, then catalog rating. Without
// usable history every prediction is the default, so the catalog rating
// alone decides.
func rankByPrediction(items []ScoredExercise, usedHistory bool) {
	if !usedHistory {
		sort.SliceStable(items, func(a, b int) bool {
			return catalogRating(items[a]) > catalogRating(items[b])
		})
		return
	}
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].PredictedRating != items[b].PredictedRating {
			return items[a].PredictedRating > items[b].PredictedRating
		}
		return catalogRating(items[a]) > catalogRating(items[b])
	})
}

func rankByCatalogRating(items []ScoredExercise) []ScoredExercise {
	out := append([]ScoredExercise(nil), items...)
	sort.SliceStable(out, func(a, b int) bool {
		return catalogRating(out[a]) > catalogRating(out[b])
	})
	return out
}

func catalogRating(s ScoredExercise) float64 {
	if !s.Exercise.HasRating {
		return 0
	}
	return s.Exercise.Rating
}

// allocateStrength spreads q strength slots over muscle groups, about 40%
// upper body, 40% core and the remainder lower body, then fills any
// shortfall from the rest of the ranked pool.
func allocateStrength(ranked []ScoredExercise, q int) []ScoredExercise {
	if q <= 0 {
		return nil
	}
	groups := PartitionByMuscle(ranked)

	upper := min(q, max(1, int(float64(q)*0.4)))
	core := min(q-upper, max(1, int(float64(q)*0.4)))
	lower := q - upper - core
	want := map[MuscleGroup]int{GroupUpperBody: upper, GroupCore: core, GroupLowerBody: lower}

	picked := make([]ScoredExercise, 0, q)
	for _, g := range MuscleGroups {
		picked = append(picked, take(groups[g], want[g])...)
	}
	return topUp(picked, ranked, q)
}

func take(items []ScoredExercise, n int) []ScoredExercise {
	if n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return append([]ScoredExercise(nil), items[:n]...)
}

// topUp appends items from pool not already picked until picked has q items.
func topUp(picked, pool []ScoredExercise, q int) []ScoredExercise {
	seen := make(map[string]bool, len(picked))
	for _, s := range picked {
		seen[s.Exercise.Title] = true
	}
	for _, s := range pool {
		if len(picked) >= q {
			break
		}
		if seen[s.Exercise.Title] {
			continue
		}
		seen[s.Exercise.Title] = true
		picked = append(picked, s)
	}
	return picked
}

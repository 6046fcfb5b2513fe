package catalog

import (
	"math"
	"sort"
)

// Vector is a nutrient vector in feature order: calories, fat, carbs, protein.
type Vector [4]float64

// Features returns the item's nutrient vector.
func (i Item) Features() Vector {
	return Vector{i.Calories, i.Fat, i.Carbs, i.Protein}
}

// MinMaxScaler rescales each feature to [0, 1] over the rows it was fitted on.
// A constant feature is shifted to zero rather than divided.
type MinMaxScaler struct {
	min   Vector
	scale Vector
}

// FitMinMax fits a scaler over rows. rows must not be empty.
func FitMinMax(rows []Vector) MinMaxScaler {
	var s MinMaxScaler
	if len(rows) == 0 {
		s.scale = Vector{1, 1, 1, 1}
		return s
	}
	lo, hi := rows[0], rows[0]
	for _, r := range rows[1:] {
		for j := range r {
			lo[j] = math.Min(lo[j], r[j])
			hi[j] = math.Max(hi[j], r[j])
		}
	}
	s.min = lo
	for j := range hi {
		span := hi[j] - lo[j]
		if span == 0 {
			span = 1
		}
		s.scale[j] = span
	}
	return s
}

// Transform scales v with the fitted bounds. Values outside the fitted range
// map outside [0, 1].
func (s MinMaxScaler) Transform(v Vector) Vector {
	var out Vector
	for j := range v {
		out[j] = (v[j] - s.min[j]) / s.scale[j]
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when either is the zero vector.
func CosineSimilarity(a, b Vector) float64 {
	var dot, na, nb float64
	for j := range a {
		dot += a[j] * b[j]
		na += a[j] * a[j]
		nb += b[j] * b[j]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Ranked is a catalog item with its similarity to a target.
type Ranked struct {
	Item  Item
	Score float64
}

// RankBySimilarity fits a scaler over items, scales target the same way,
// and returns at most topK items ordered by descending cosine similarity.
// Ties keep catalog order.
func RankBySimilarity(items []Item, target Vector, topK int) []Ranked {
	if len(items) == 0 || topK <= 0 {
		return nil
	}

	rows := make([]Vector, len(items))
	for i, it := range items {
		rows[i] = it.Features()
	}
	scaler := FitMinMax(rows)
	t := scaler.Transform(target)

	ranked := make([]Ranked, len(items))
	for i, it := range items {
		ranked[i] = Ranked{Item: it, Score: CosineSimilarity(t, scaler.Transform(rows[i]))}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

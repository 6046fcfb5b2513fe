package exercise

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// DefaultPredictedRating is the neutral prior used when no neighbor has
// rated an exercise.
const DefaultPredictedRating = 3.0

// RatingMatrix is a dense user × exercise matrix. Zero means unrated.
type RatingMatrix struct {
	users  []uuid.UUID
	titles []string
	userIx map[uuid.UUID]int
	itemIx map[string]int
	values [][]float64
}

// NewRatingMatrix builds the matrix from ratings. Users and titles are
// ordered by first appearance; a later rating for the same pair wins.
func NewRatingMatrix(ratings []Rating) *RatingMatrix {
	m := &RatingMatrix{
		userIx: make(map[uuid.UUID]int),
		itemIx: make(map[string]int),
	}
	for _, r := range ratings {
		if _, ok := m.userIx[r.UserID]; !ok {
			m.userIx[r.UserID] = len(m.users)
			m.users = append(m.users, r.UserID)
		}
		if _, ok := m.itemIx[r.ExerciseTitle]; !ok {
			m.itemIx[r.ExerciseTitle] = len(m.titles)
			m.titles = append(m.titles, r.ExerciseTitle)
		}
	}
	m.values = make([][]float64, len(m.users))
	for i := range m.values {
		m.values[i] = make([]float64, len(m.titles))
	}
	for _, r := range ratings {
		m.values[m.userIx[r.UserID]][m.itemIx[r.ExerciseTitle]] = float64(r.Value)
	}
	return m
}

// Users returns the number of users in the matrix.
func (m *RatingMatrix) Users() int {
	return len(m.users)
}

// Empty reports whether the matrix holds no ratings.
func (m *RatingMatrix) Empty() bool {
	return len(m.users) == 0
}

type neighbor struct {
	row        int
	similarity float64
}

// Predictor predicts a user's rating of exercises from similar users.
type Predictor struct {
	matrix    *RatingMatrix
	neighbors []neighbor
	row       int
}

// NewPredictor finds up to k nearest users to userID by cosine similarity
// of their rating rows. The user is not its own neighbor.
func NewPredictor(m *RatingMatrix, userID uuid.UUID, k int) *Predictor {
	p := &Predictor{matrix: m, row: -1}
	row, ok := m.userIx[userID]
	if !ok {
		return p
	}
	p.row = row

	candidates := make([]neighbor, 0, len(m.users)-1)
	for i := range m.users {
		if i == row {
			continue
		}
		candidates = append(candidates, neighbor{row: i, similarity: cosine(m.values[row], m.values[i])})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].similarity > candidates[b].similarity
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	if k < 0 {
		k = 0
	}
	p.neighbors = candidates[:k]
	return p
}

// Predict returns the predicted rating for title and whether it came from
// actual ratings. The user's own rating wins; otherwise it is the
// similarity-weighted mean over neighbors who rated the title.
func (p *Predictor) Predict(title string) (float64, bool) {
	col, ok := p.matrix.itemIx[title]
	if !ok || p.row < 0 {
		return DefaultPredictedRating, false
	}
	if own := p.matrix.values[p.row][col]; own > 0 {
		return own, true
	}

	var num, den float64
	for _, n := range p.neighbors {
		r := p.matrix.values[n.row][col]
		if r == 0 || n.similarity <= 0 {
			continue
		}
		num += n.similarity * r
		den += n.similarity
	}
	if den == 0 {
		return DefaultPredictedRating, false
	}
	return num / den, true
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

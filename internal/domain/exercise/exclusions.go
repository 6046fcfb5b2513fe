package exercise

import (
	"strings"

	"github.com/smartmeals/v2/internal/domain/catalog"
)

// Exclusion removes exercises by body part or type when a health condition
// mentions its keyword.
type Exclusion struct {
	Keyword   string
	BodyParts []string
	Types     []string
}

var conditionExclusions = []Exclusion{
	{Keyword: "knee pain", BodyParts: []string{"quadriceps", "hamstrings", "calves"}, Types: []string{"hiit", "plyometrics"}},
	{Keyword: "back pain", BodyParts: []string{"lower back", "middle back"}, Types: []string{"powerlifting", "olympic weightlifting", "strongman"}},
	{Keyword: "shoulder", BodyParts: []string{"shoulders", "traps"}, Types: []string{"olympic weightlifting"}},
	{Keyword: "heart", Types: []string{"hiit", "plyometrics", "strongman", "powerlifting"}},
	{Keyword: "respiratory", Types: []string{"hiit", "plyometrics"}},
	{Keyword: "asthma", Types: []string{"hiit", "plyometrics"}},
	{Keyword: "joint", Types: []string{"plyometrics", "strongman"}},
	{Keyword: "diabetes", Types: []string{"strongman"}},
	{Keyword: "pregnan", BodyParts: []string{"abdominals"}, Types: []string{"plyometrics", "strongman", "powerlifting", "olympic weightlifting"}},
}

// ExclusionsFor returns every exclusion whose keyword appears in conditions.
func ExclusionsFor(conditions string) []Exclusion {
	text := strings.ToLower(conditions)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []Exclusion
	for _, ex := range conditionExclusions {
		if strings.Contains(text, ex.Keyword) {
			out = append(out, ex)
		}
	}
	return out
}

// Excludes reports whether e removes the exercise.
func (e Exclusion) Excludes(ex catalog.Exercise) bool {
	bp := strings.ToLower(strings.TrimSpace(ex.BodyPart))
	for _, b := range e.BodyParts {
		if bp == b {
			return true
		}
	}
	t := strings.ToLower(strings.TrimSpace(ex.Type))
	for _, x := range e.Types {
		if t == x {
			return true
		}
	}
	return false
}

// ApplyExclusions drops exercises matched by any exclusion for conditions.
// Order is preserved.
func ApplyExclusions(exercises []catalog.Exercise, conditions string) []catalog.Exercise {
	rules := ExclusionsFor(conditions)
	if len(rules) == 0 {
		return append([]catalog.Exercise(nil), exercises...)
	}
	out := make([]catalog.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		excluded := false
		for _, r := range rules {
			if r.Excludes(ex) {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, ex)
		}
	}
	return out
}

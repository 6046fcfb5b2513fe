// Package exercise recommends exercises from a catalog, combining rule-based
// intensity and category weighting with neighbor-based rating prediction.
package exercise

import (
	"strings"

	"github.com/smartmeals/v2/internal/domain/catalog"
)

// Category is the broad training category of an exercise.
type Category string

const (
	CategoryCardio      Category = "Cardio"
	CategoryStrength    Category = "Strength"
	CategoryFlexibility Category = "Flexibility"
)

// Categories lists the categories in output order.
var Categories = []Category{CategoryCardio, CategoryStrength, CategoryFlexibility}

// MuscleGroup is the anatomical bucket used to spread strength work.
type MuscleGroup string

const (
	GroupUpperBody MuscleGroup = "Upper Body"
	GroupCore      MuscleGroup = "Core"
	GroupLowerBody MuscleGroup = "Lower Body"
)

// MuscleGroups lists the groups in allocation order.
var MuscleGroups = []MuscleGroup{GroupUpperBody, GroupCore, GroupLowerBody}

var typeKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryCardio, []string{"cardio", "hiit", "aerobic", "plyometric"}},
	{CategoryFlexibility, []string{"stretch", "yoga", "mobility", "flexibility"}},
	{CategoryStrength, []string{"strength", "resistance", "weight", "bodyweight", "powerlifting", "strongman"}},
}

var muscleKeywords = []struct {
	group    MuscleGroup
	keywords []string
}{
	{GroupUpperBody, []string{
		"shoulder", "upper arm", "forearm", "chest", "middle back", "lats", "latissimus",
		"neck", "deltoid", "triceps", "biceps", "pectoralis", "trapezius", "traps",
	}},
	{GroupCore, []string{"abdominal", "abs", "waist", "core", "lower back", "erector spinae", "oblique"}},
	{GroupLowerBody, []string{
		"hip", "thigh", "calves", "calf", "glute", "quadriceps", "hamstring",
		"gastrocnemius", "soleus", "adductor", "abductor",
	}},
}

// Categorize returns the category of an exercise from its type. Exercises
// with an unrecognized type count as Strength when they target a known
// muscle and as Flexibility otherwise.
func Categorize(ex catalog.Exercise) Category {
	t := strings.ToLower(ex.Type)
	for _, tk := range typeKeywords {
		for _, k := range tk.keywords {
			if strings.Contains(t, k) {
				return tk.category
			}
		}
	}
	if _, ok := matchMuscleGroup(ex.BodyPart); ok {
		return CategoryStrength
	}
	return CategoryFlexibility
}

// MuscleGroupOf buckets a body part. Unmatched body parts go to Core.
func MuscleGroupOf(bodyPart string) MuscleGroup {
	if g, ok := matchMuscleGroup(bodyPart); ok {
		return g
	}
	return GroupCore
}

func matchMuscleGroup(bodyPart string) (MuscleGroup, bool) {
	bp := strings.ToLower(bodyPart)
	if bp == "" {
		return "", false
	}
	for _, mk := range muscleKeywords {
		for _, k := range mk.keywords {
			if strings.Contains(bp, k) {
				return mk.group, true
			}
		}
	}
	return "", false
}

// Partition groups scored exercises by category, keeping input order
// within each group.
func Partition(items []ScoredExercise) map[Category][]ScoredExercise {
	out := make(map[Category][]ScoredExercise, len(Categories))
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it)
	}
	return out
}

// PartitionByMuscle groups scored exercises by muscle group, keeping input
// order within each group.
func PartitionByMuscle(items []ScoredExercise) map[MuscleGroup][]ScoredExercise {
	out := make(map[MuscleGroup][]ScoredExercise, len(MuscleGroups))
	for _, it := range items {
		out[it.MuscleGroup] = append(out[it.MuscleGroup], it)
	}
	return out
}

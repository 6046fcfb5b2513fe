// Package catalog loads the reference datasets (meals, foods, recipe
// details and exercises) from CSV files into an immutable catalog.
package catalog

import (
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/smartmeals/v2/internal/domain/catalog"
)

//go:embed seed/*.csv
var seedFS embed.FS

// Seed file names inside the embedded filesystem.
const (
	seedMeals     = "seed/meals.csv"
	seedFoods     = "seed/foods.csv"
	seedRecipes   = "seed/recipes.csv"
	seedExercises = "seed/exercises.csv"
)

// Paths locates the four datasets. An empty path selects the embedded seed.
type Paths struct {
	Meals     string
	Foods     string
	Recipes   string
	Exercises string
}

// Loader reads datasets into a catalog.Catalog.
type Loader struct {
	paths  Paths
	logger *zap.Logger
}

// NewLoader creates a loader for the given paths.
func NewLoader(paths Paths, logger *zap.Logger) *Loader {
	return &Loader{paths: paths, logger: logger.Named("catalog-loader")}
}

// Load reads every dataset. A malformed file is an error; a row with
// unparseable numbers keeps zero values for them.
func (l *Loader) Load() (*catalog.Catalog, error) {
	meals, err := l.readItems(l.paths.Meals, seedMeals)
	if err != nil {
		return nil, fmt.Errorf("load meals: %w", err)
	}
	foods, err := l.readItems(l.paths.Foods, seedFoods)
	if err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}
	recipes, err := l.readRecipes(l.paths.Recipes, seedRecipes)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	exercises, err := l.readExercises(l.paths.Exercises, seedExercises)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}

	cat := catalog.New(meals, foods, recipes, exercises)
	stats := cat.Stats()
	l.logger.Info("Catalog loaded",
		zap.Int("meals", stats.Meals),
		zap.Int("foods", stats.Foods),
		zap.Int("recipes", stats.Recipes),
		zap.Int("exercises", stats.Exercises),
	)
	return cat, nil
}

// LoadSeed loads the embedded seed catalog.
func LoadSeed() (*catalog.Catalog, error) {
	return NewLoader(Paths{}, zap.NewNop()).Load()
}

func (l *Loader) open(path, seed string) (io.ReadCloser, error) {
	if path == "" {
		l.logger.Debug("Using embedded dataset", zap.String("file", seed))
		return seedFS.Open(seed)
	}
	return os.Open(path)
}

// table is a CSV file with a case-insensitive header index.
type table struct {
	header map[string]int
	rows   [][]string
}

func (l *Loader) readTable(path, seed string) (*table, error) {
	f, err := l.open(path, seed)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTable(f)
}

func parseTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	t := &table{header: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, name := range records[0] {
		key := headerKey(name)
		if _, dup := t.header[key]; !dup {
			t.header[key] = i
		}
	}
	return t, nil
}

func headerKey(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// col returns the first non-empty field among the aliases.
func (t *table) col(row []string, aliases ...string) string {
	for _, a := range aliases {
		if i, ok := t.header[headerKey(a)]; ok && i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func (t *table) has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := t.header[headerKey(a)]; ok {
			return true
		}
	}
	return false
}

func (t *table) num(row []string, aliases ...string) float64 {
	v, _ := parseFloat(t.col(row, aliases...))
	return v
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var (
	nameColumns = []string{"name", "title", "food", "recipe_name", "product_name"}
	slotColumns = []string{"meal_type", "meal", "slot"}
)

func (l *Loader) readItems(path, seed string) ([]catalog.Item, error) {
	t, err := l.readTable(path, seed)
	if err != nil {
		return nil, err
	}
	if !t.has(nameColumns...) {
		return nil, fmt.Errorf("no name column")
	}

	items := make([]catalog.Item, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.col(row, nameColumns...)
		if name == "" {
			continue
		}
		items = append(items, catalog.Item{
			Name:        name,
			MealType:    strings.ToLower(t.col(row, slotColumns...)),
			Calories:    t.num(row, "calories", "energy", "kcal"),
			Protein:     t.num(row, "protein"),
			Carbs:       t.num(row, "carbs", "carbohydrates"),
			Fat:         t.num(row, "fat", "total_fat"),
			Fibre:       t.num(row, "fibre", "fiber", "dietary_fiber"),
			Sugar:       t.num(row, "sugar", "sugars"),
			Tags:        SplitList(t.col(row, "tags", "cuisine")),
			Ingredients: SplitList(t.col(row, "ingredients")),
		})
	}
	return items, nil
}

func (l *Loader) readRecipes(path, seed string) ([]catalog.RecipeDetail, error) {
	t, err := l.readTable(path, seed)
	if err != nil {
		return nil, err
	}

	recipes := make([]catalog.RecipeDetail, 0, len(t.rows))
	for _, row := range t.rows {
		name := t.col(row, nameColumns...)
		if name == "" {
			continue
		}
		r := catalog.RecipeDetail{
			Name:             name,
			Category:         t.col(row, "category"),
			URL:              t.col(row, "url", "link"),
			Protein:          t.col(row, "protein"),
			Fibre:            t.col(row, "fibre", "fiber"),
			FatPercent:       t.col(row, "fat_percent", "fat"),
			Carbs:            t.col(row, "carbs", "carbohydrates"),
			SugarsPercent:    t.col(row, "sugars_percent", "sugars"),
			SaltPercent:      t.col(row, "salt_percent", "salt"),
			SaturatesPercent: t.col(row, "saturates_percent", "saturates"),
		}
		if v, ok := parseFloat(t.col(row, "calories", "kcal")); ok {
			r.Calories = &v
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (l *Loader) readExercises(path, seed string) ([]catalog.Exercise, error) {
	t, err := l.readTable(path, seed)
	if err != nil {
		return nil, err
	}

	exercises := make([]catalog.Exercise, 0, len(t.rows))
	for _, row := range t.rows {
		title := t.col(row, "title", "exercise", "name")
		if title == "" {
			continue
		}
		ex := catalog.Exercise{
			Title:       title,
			Description: t.col(row, "desc", "description"),
			Type:        t.col(row, "type"),
			BodyPart:    t.col(row, "bodypart", "body_part", "main_muscle"),
			Equipment:   t.col(row, "equipment", "equipment_type"),
			Level:       t.col(row, "level"),
		}
		ex.Rating, ex.HasRating = parseFloat(t.col(row, "rating"))
		exercises = append(exercises, ex)
	}
	return exercises, nil
}

// SplitList parses a list column. A JSON array is decoded as such;
// otherwise the value is split on '|' or, failing that, ','.
func SplitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			return trimAll(list)
		}
		raw = strings.Trim(raw, "[]")
	}
	sep := ","
	if strings.Contains(raw, "|") {
		sep = "|"
	}
	return trimAll(strings.Split(raw, sep))
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Trim(strings.TrimSpace(s), `"'`)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

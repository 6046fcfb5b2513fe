package catalog

import (
	"strings"
	"unicode"

	"github.com/smartmeals/v2/internal/domain/profile"
)

var meatKeywords = []string{
	"beef", "chicken", "pork", "lamb", "turkey", "duck", "veal", "ham", "bacon",
	"sausage", "salmon", "fish", "seafood", "shrimp", "crab", "lobster",
	"meatball", "meatloaf", "steak",
}

var animalProductKeywords = []string{
	"cheese", "milk", "cream", "butter", "egg", "yogurt", "honey", "meat",
	"whey", "casein", "gelatin",
}

// Filter drops items that match any allergy, then keeps only items tagged
// with a preferred cuisine. The cuisine pass is skipped when the allergy pass
// leaves nothing or no cuisine is preferred. Order is preserved.
func Filter(items []Item, allergies, cuisines []string) []Item {
	allergies = lowerTerms(allergies)
	cuisines = lowerTerms(cuisines)

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !matchesAllergy(it, allergies) {
			out = append(out, it)
		}
	}

	if len(out) == 0 || len(cuisines) == 0 {
		return out
	}

	kept := out[:0:0]
	for _, it := range out {
		if matchesCuisine(it, cuisines) {
			kept = append(kept, it)
		}
	}
	return kept
}

// FilterByDiet removes items whose name contains a meat keyword (vegetarian)
// or a meat or animal-product keyword (vegan). Other preferences pass
// everything through.
func FilterByDiet(items []Item, diet profile.DietPreference) []Item {
	var blocked []string
	switch diet {
	case profile.DietVegetarian:
		blocked = meatKeywords
	case profile.DietVegan:
		blocked = append(append([]string{}, meatKeywords...), animalProductKeywords...)
	case profile.DietNonVegetarian, profile.DietBoth:
		return append([]Item(nil), items...)
	default:
		return append([]Item(nil), items...)
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		name := strings.ToLower(it.Name)
		if !containsAny(name, blocked) {
			out = append(out, it)
		}
	}
	return out
}

// matchesAllergy checks ingredients by substring and the name by whole word.
func matchesAllergy(it Item, allergies []string) bool {
	if len(allergies) == 0 {
		return false
	}
	words := " " + strings.Join(nameWords(it.Name), " ") + " "
	for _, a := range allergies {
		for _, ing := range it.Ingredients {
			if strings.Contains(strings.ToLower(ing), a) {
				return true
			}
		}
		if strings.Contains(words, " "+a+" ") {
			return true
		}
	}
	return false
}

func nameWords(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func matchesCuisine(it Item, cuisines []string) bool {
	for _, tag := range it.Tags {
		if containsAny(strings.ToLower(tag), cuisines) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func lowerTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

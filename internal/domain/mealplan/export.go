package mealplan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var portionSuffix = regexp.MustCompile(`\s*\(x[0-9.]+\)$`)

type shoppingCategory struct {
	name     string
	keywords []string
}

// Checked in order; the first category with a matching keyword wins.
var shoppingCategories = []shoppingCategory{
	{"Fruits", []string{"apple", "banana", "orange", "berries", "fruit", "pear", "peach", "grape"}},
	{"Vegetables", []string{"broccoli", "spinach", "lettuce", "carrot", "tomato", "onion", "potato", "vegetable", "salad", "pepper", "cucumber"}},
	{"Meat & Seafood", []string{"chicken", "beef", "pork", "fish", "salmon", "shrimp", "tuna", "meat", "turkey", "lamb"}},
	{"Dairy & Eggs", []string{"milk", "cheese", "yogurt", "cream", "butter", "egg"}},
	{"Grains & Bread", []string{"bread", "rice", "pasta", "oats", "cereal", "flour", "grain", "wheat", "barley", "quinoa"}},
	{"Legumes & Nuts", []string{"beans", "lentils", "peanut", "almond", "cashew", "nut", "seed", "tofu"}},
	{"Snacks & Sweets", []string{"chocolate", "cookie", "cake", "snack", "chips", "candy", "dessert", "sweet"}},
	{"Beverages", []string{"water", "juice", "coffee", "tea", "drink", "beverage", "smoothie"}},
	{"Oils & Condiments", []string{"oil", "vinegar", "sauce", "dressing", "mayonnaise", "ketchup", "mustard", "honey", "syrup"}},
}

// CategoryOther collects foods that match no shopping category.
const CategoryOther = "Other"

// ShoppingItem is a food and how many times it appears in the plan.
type ShoppingItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ShoppingGroup is one aisle of the shopping list.
type ShoppingGroup struct {
	Category string         `json:"category"`
	Items    []ShoppingItem `json:"items"`
}

// CategorizeFood returns the shopping category for a food name.
func CategorizeFood(name string) string {
	lower := strings.ToLower(name)
	for _, c := range shoppingCategories {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.name
			}
		}
	}
	return CategoryOther
}

// ShoppingList counts every food across the plan, folding fractional
// portions into their base food, and groups them by category. Categories
// and items are sorted alphabetically.
func ShoppingList(plan *MealPlan) []ShoppingGroup {
	counts := make(map[string]int)
	for _, d := range plan.Days {
		for _, m := range d.Meals {
			for _, f := range m.Foods {
				counts[portionSuffix.ReplaceAllString(f.Name, "")]++
			}
		}
	}

	grouped := make(map[string][]ShoppingItem)
	for name, n := range counts {
		c := CategorizeFood(name)
		grouped[c] = append(grouped[c], ShoppingItem{Name: name, Count: n})
	}

	groups := make([]ShoppingGroup, 0, len(grouped))
	for c, items := range grouped {
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
		groups = append(groups, ShoppingGroup{Category: c, Items: items})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

// RenderShoppingList formats groups as a printable checklist.
func RenderShoppingList(groups []ShoppingGroup) string {
	var b strings.Builder
	b.WriteString("SHOPPING LIST\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "--- %s ---\n", strings.ToUpper(g.Category))
		for _, it := range g.Items {
			fmt.Fprintf(&b, "[ ] %s (x%d)\n", it.Name, it.Count)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nNote: counts are the number of times each item appears in your meal plan.\n")
	return b.String()
}

// RenderText formats the plan as plain text for download.
func RenderText(plan *MealPlan, owner string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "MEAL PLAN FOR %s\n", strings.ToUpper(owner))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Daily Calorie Target: %.0f kcal\n", plan.DailyCalories)
	fmt.Fprintf(&b, "Protein: %.0fg, Carbs: %.0fg, Fat: %.0fg\n\n", plan.Macros.Protein, plan.Macros.Carbs, plan.Macros.Fat)

	for _, d := range plan.Days {
		fmt.Fprintf(&b, "DAY %d\n", d.Number)
		b.WriteString(strings.Repeat("-", 30) + "\n")
		fmt.Fprintf(&b, "Total Calories: %.0f kcal\n", d.TotalCalories)
		fmt.Fprintf(&b, "Protein: %.1fg, Carbs: %.1fg, Fat: %.1fg\n\n", d.TotalProtein, d.TotalCarbs, d.TotalFat)
		for _, m := range d.Meals {
			b.WriteString(m.Name + "\n")
			for _, f := range m.Foods {
				fmt.Fprintf(&b, "  - %s - %.0f kcal (P: %.1fg, C: %.1fg, F: %.1fg)\n", f.Name, f.Calories, f.Protein, f.Carbs, f.Fat)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

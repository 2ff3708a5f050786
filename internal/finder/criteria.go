package finder

import (
	"strings"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// Any matches every value on a categorical dimension, like an empty value
const Any = "any"

// Criteria narrows the accumulated meals
// Dimensions are combined with AND; the text dimension matches name OR description
type Criteria struct {
	Text        string
	CuisineType string
	CookingMode string
	CookingEase string
}

// IsEmpty reports whether the criteria match every meal
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == "" &&
		isWildcard(c.CuisineType) &&
		isWildcard(c.CookingMode) &&
		isWildcard(c.CookingEase)
}

// Matches reports whether the meal satisfies every active criterion
func (c Criteria) Matches(meal models.Meal) bool {
	if term := strings.ToLower(strings.TrimSpace(c.Text)); term != "" {
		name := strings.ToLower(meal.Name)
		desc := strings.ToLower(meal.Description)
		if !strings.Contains(name, term) && !strings.Contains(desc, term) {
			return false
		}
	}
	if !isWildcard(c.CuisineType) && meal.CuisineType != c.CuisineType {
		return false
	}
	if !isWildcard(c.CookingMode) && meal.CookingMode != c.CookingMode {
		return false
	}
	if !isWildcard(c.CookingEase) && meal.CookingEase != c.CookingEase {
		return false
	}
	return true
}

// Filter returns the ordered subsequence of meals matching the criteria
func (c Criteria) Filter(meals []models.Meal) []models.Meal {
	filtered := make([]models.Meal, 0, len(meals))
	for _, meal := range meals {
		if c.Matches(meal) {
			filtered = append(filtered, meal)
		}
	}
	return filtered
}

func isWildcard(value string) bool {
	return value == "" || strings.EqualFold(value, Any)
}

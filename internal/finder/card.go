package finder

import (
	"fmt"
	"strings"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// NeverMarker is displayed as the recency of a meal that was never cooked
const NeverMarker = "never"

// Card is a meal prepared for display
// DisplayCount and DisplayRecency are derived and never written back to the meal
type Card struct {
	Meal           models.Meal
	DisplayCount   int
	DisplayRecency string
}

// NewCard derives the display values of a meal from its stats
func NewCard(meal models.Meal) Card {
	card := Card{
		Meal:           meal,
		DisplayCount:   0,
		DisplayRecency: NeverMarker,
	}

	if stats := meal.Stats(); stats != nil {
		card.DisplayCount = stats.MealCount
		if stats.RecentMealDate != nil && *stats.RecentMealDate != "" {
			card.DisplayRecency = *stats.RecentMealDate
		}
	}

	return card
}

// NewCards derives cards for meals, keeping their order
func NewCards(meals []models.Meal) []Card {
	cards := make([]Card, len(meals))
	for i, meal := range meals {
		cards[i] = NewCard(meal)
	}
	return cards
}

// Summary renders the card as a short multi-line text block
func (c Card) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d %s\n", c.Meal.ID, c.Meal.Name)

	description := c.Meal.Description
	if description == "" {
		description = "No description available."
	}
	fmt.Fprintf(&b, "  %s\n", description)
	fmt.Fprintf(&b, "  Meal count: %d | Most recent meal: %s\n", c.DisplayCount, c.DisplayRecency)

	var badges []string
	for _, badge := range []string{c.Meal.CuisineType, c.Meal.CookingMode, c.Meal.CookingEase} {
		if badge != "" {
			badges = append(badges, "["+badge+"]")
		}
	}
	if len(badges) > 0 {
		fmt.Fprintf(&b, "  %s\n", strings.Join(badges, " "))
	}

	return b.String()
}

package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// RatingPolicy decides what is sent as the rating of a log entry
type RatingPolicy string

const (
	// RatingSentinel always sends models.RatingSentinel, whatever was typed
	RatingSentinel RatingPolicy = "sentinel"
	// RatingPassthrough sends the typed rating, or the sentinel when it is blank
	RatingPassthrough RatingPolicy = "passthrough"
)

// ParseRatingPolicy maps a configuration value to a policy
func ParseRatingPolicy(s string) (RatingPolicy, error) {
	switch RatingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case RatingSentinel, "":
		return RatingSentinel, nil
	case RatingPassthrough:
		return RatingPassthrough, nil
	default:
		return "", fmt.Errorf("unknown rating policy: %q", s)
	}
}

// Options controls serialization
type Options struct {
	RatingPolicy RatingPolicy
}

// Serialize assembles the request payload from the form
// Text is trimmed and blank optional fields become null. Ingredient rows without
// a name, direction rows without a description and log entry rows without a date
// are skipped. Directions are numbered from 1 over the rows that remain.
func (f *Form) Serialize(opts Options) (*models.MealPayload, error) {
	payload := &models.MealPayload{
		Name:        f.trimmed(FieldName),
		Description: f.trimmed(FieldDescription),
		CuisineType: f.optional(FieldCuisineType),
		CookingMode: f.optional(FieldCookingMode),
		CookingEase: f.optional(FieldCookingEase),
		ImagePath:   f.optional(FieldImagePath),
		SourceURL:   f.optional(FieldSourceURL),
		Ingredients: []models.Ingredient{},
		Directions:  []models.Direction{},
		LogEntries:  []models.LogEntry{},
	}

	if raw := f.trimmed(FieldCookingTime); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid cooking time %q: %w", raw, err)
		}
		payload.CookingTime = &minutes
	}

	for _, row := range f.Ingredients.Rows() {
		name := strings.TrimSpace(row.Values.Name)
		if name == "" {
			continue
		}
		ing := models.Ingredient{Name: name, Unit: optionalText(row.Values.Unit)}
		if raw := strings.TrimSpace(row.Values.Quantity); raw != "" {
			qty, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity %q for %s: %w", raw, name, err)
			}
			ing.Quantity = &qty
		}
		payload.Ingredients = append(payload.Ingredients, ing)
	}

	step := 0
	for _, row := range f.Directions.Rows() {
		description := strings.TrimSpace(row.Values.Description)
		if description == "" {
			continue
		}
		step++
		payload.Directions = append(payload.Directions, models.Direction{
			StepNumber:  step,
			Description: description,
		})
	}

	for _, row := range f.LogEntries.Rows() {
		date := strings.TrimSpace(row.Values.Date)
		if date == "" {
			continue
		}
		rating, err := serializeRating(row.Values.Rating, opts.RatingPolicy)
		if err != nil {
			return nil, fmt.Errorf("invalid rating for %s: %w", date, err)
		}
		payload.LogEntries = append(payload.LogEntries, models.LogEntry{
			Date:   date,
			Rating: &rating,
			Notes:  optionalText(row.Values.Notes),
		})
	}

	return payload, nil
}

func serializeRating(raw string, policy RatingPolicy) (int, error) {
	raw = strings.TrimSpace(raw)
	if policy != RatingPassthrough || raw == "" {
		return models.RatingSentinel, nil
	}
	return strconv.Atoi(raw)
}

func (f *Form) optional(field Field) *string {
	return optionalText(f.values[field])
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

package models

// NewMealID is the identifier bound to a meal that has not been persisted yet
const NewMealID int64 = -1

// RatingSentinel is sent for a log entry whose rating is not carried through
const RatingSentinel = -1

// Meal represents a meal record as returned by the meals API
type Meal struct {
	ID          int64        `json:"meal_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CuisineType string       `json:"cuisine_type"`
	CookingMode string       `json:"cooking_mode"`
	CookingEase string       `json:"cooking_ease"`
	CookingTime *int         `json:"cooking_time"`
	ImagePath   string       `json:"image_path"`
	SourceURL   string       `json:"source_url"`
	Ingredients []Ingredient `json:"ingredients"`
	Directions  []Direction  `json:"directions"`
	LogEntries  []LogEntry   `json:"log_entries"`
	MealStats   []MealStats  `json:"meal_stats"`
}

// Stats returns the aggregate stats of the meal, or nil if it was never cooked
func (m Meal) Stats() *MealStats {
	if len(m.MealStats) == 0 {
		return nil
	}
	return &m.MealStats[0]
}

// Ingredient is a single ingredient line of a meal
type Ingredient struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

// Direction is one numbered preparation step
type Direction struct {
	StepNumber  int    `json:"step_number"`
	Description string `json:"description"`
}

// LogEntry records one time the meal was cooked
type LogEntry struct {
	Date   string  `json:"date"`
	Rating *int    `json:"rating"`
	Notes  *string `json:"notes"`
}

// MealStats holds metrics derived from a meal's log entries
type MealStats struct {
	MealID         int64   `json:"meal_id"`
	FirstMealDate  *string `json:"first_meal_date"`
	RecentMealDate *string `json:"recent_meal_date"`
	MealCount      int     `json:"meal_count"`
	AvgRating      float64 `json:"avg_rating"`
}

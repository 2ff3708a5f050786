package models

// MealPayload is the request body for creating or updating a meal
// Optional scalars are pointers so blank values encode as null
type MealPayload struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CuisineType *string      `json:"cuisine_type"`
	CookingMode *string      `json:"cooking_mode"`
	CookingEase *string      `json:"cooking_ease"`
	CookingTime *int         `json:"cooking_time"`
	ImagePath   *string      `json:"image_path"`
	SourceURL   *string      `json:"source_url"`
	Ingredients []Ingredient `json:"ingredients"`
	Directions  []Direction  `json:"directions"`
	LogEntries  []LogEntry   `json:"log_entries"`
}

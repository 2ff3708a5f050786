package mealapitest

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

var (
	ErrMealNotFound = errors.New("meal not found")
)

// Repository is an in-memory meal store backing the fake API
type Repository struct {
	mu     sync.RWMutex
	meals  map[int64]models.Meal
	images map[int64][]string
	nextID int64
}

// NewRepository creates a repository seeded with the given meals, assigned IDs 1..n
func NewRepository(seed ...models.MealPayload) *Repository {
	r := &Repository{
		meals:  make(map[int64]models.Meal),
		images: make(map[int64][]string),
		nextID: 1,
	}
	for i := range seed {
		r.Create(context.Background(), &seed[i])
	}
	return r
}

// List returns meals ordered by ID in [skip, skip+limit), with stats attached
// Negative bounds are treated as 0
func (r *Repository) List(ctx context.Context, skip, limit int) []models.Meal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.meals))
	for id := range r.meals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	meals := make([]models.Meal, 0, limit)
	for i := skip; i < len(ids) && i < skip+limit; i++ {
		meals = append(meals, withStats(r.meals[ids[i]]))
	}
	return meals
}

// Get returns a meal by its ID
func (r *Repository) Get(ctx context.Context, id int64) (*models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meal, exists := r.meals[id]
	if !exists {
		return nil, ErrMealNotFound
	}
	meal = withStats(meal)
	return &meal, nil
}

// Create stores a new meal and returns it with its assigned ID
func (r *Repository) Create(ctx context.Context, p *models.MealPayload) models.Meal {
	r.mu.Lock()
	defer r.mu.Unlock()

	meal := fromPayload(r.nextID, p)
	r.meals[meal.ID] = meal
	r.nextID++
	return withStats(meal)
}

// Update replaces the meal identified by id
func (r *Repository) Update(ctx context.Context, id int64, p *models.MealPayload) (*models.Meal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meals[id]; !exists {
		return nil, ErrMealNotFound
	}
	meal := fromPayload(id, p)
	r.meals[id] = meal
	meal = withStats(meal)
	return &meal, nil
}

// Delete removes the meal identified by id
func (r *Repository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meals[id]; !exists {
		return ErrMealNotFound
	}
	delete(r.meals, id)
	delete(r.images, id)
	return nil
}

// AddImage records an uploaded image file name for the meal and returns its image ID
func (r *Repository) AddImage(ctx context.Context, id int64, filename string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.meals[id]; !exists {
		return 0, ErrMealNotFound
	}
	r.images[id] = append(r.images[id], filename)
	return len(r.images[id]), nil
}

// Images returns the image file names uploaded for the meal
func (r *Repository) Images(id int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.images[id]...)
}

// Count returns the number of stored meals
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.meals)
}

func fromPayload(id int64, p *models.MealPayload) models.Meal {
	return models.Meal{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		CuisineType: deref(p.CuisineType),
		CookingMode: deref(p.CookingMode),
		CookingEase: deref(p.CookingEase),
		CookingTime: p.CookingTime,
		ImagePath:   deref(p.ImagePath),
		SourceURL:   deref(p.SourceURL),
		Ingredients: append([]models.Ingredient{}, p.Ingredients...),
		Directions:  append([]models.Direction{}, p.Directions...),
		LogEntries:  append([]models.LogEntry{}, p.LogEntries...),
	}
}

// withStats derives the meal_stats list from the meal's log entries
func withStats(meal models.Meal) models.Meal {
	meal.MealStats = []models.MealStats{}
	if len(meal.LogEntries) == 0 {
		return meal
	}

	stats := models.MealStats{MealID: meal.ID, MealCount: len(meal.LogEntries)}
	first, recent := meal.LogEntries[0].Date, meal.LogEntries[0].Date
	ratingSum, rated := 0, 0
	for _, entry := range meal.LogEntries {
		if entry.Date < first {
			first = entry.Date
		}
		if entry.Date > recent {
			recent = entry.Date
		}
		if entry.Rating != nil && *entry.Rating >= 0 {
			ratingSum += *entry.Rating
			rated++
		}
	}
	stats.FirstMealDate = &first
	stats.RecentMealDate = &recent
	if rated > 0 {
		stats.AvgRating = float64(ratingSum) / float64(rated)
	}

	meal.MealStats = []models.MealStats{stats}
	return meal
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

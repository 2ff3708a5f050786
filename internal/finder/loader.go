package finder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/notify"
)

var (
	ErrNoMoreMeals    = errors.New("no more meals")
	ErrLoadInProgress = errors.New("a page is already loading")
)

// PageSource fetches one page of meals; an empty page marks the end of data
type PageSource interface {
	ListMeals(ctx context.Context, skip, limit int) ([]models.Meal, error)
}

// Loader accumulates meal pages in fetch order and keeps a filtered view of them
type Loader struct {
	source   PageSource
	notifier notify.Notifier
	logger   *slog.Logger
	pageSize int

	mu          sync.Mutex
	offset      int
	accumulated []models.Meal
	criteria    Criteria
	view        []Card
	exhausted   bool
	inFlight    bool
}

// NewLoader creates a loader reading pages of pageSize meals from source
func NewLoader(source PageSource, pageSize int, notifier notify.Notifier, logger *slog.Logger) *Loader {
	return &Loader{
		source:   source,
		notifier: notifier,
		logger:   logger,
		pageSize: pageSize,
		view:     []Card{},
	}
}

// LoadNextPage fetches the next page and refreshes the filtered view
// It returns the number of meals appended. An empty page puts the loader in a
// terminal state reported by ErrNoMoreMeals. A failed request leaves the state
// unchanged so the call can be retried.
func (l *Loader) LoadNextPage(ctx context.Context) (int, error) {
	l.mu.Lock()
	if l.exhausted {
		l.mu.Unlock()
		return 0, ErrNoMoreMeals
	}
	if l.inFlight {
		l.mu.Unlock()
		return 0, ErrLoadInProgress
	}
	l.inFlight = true
	offset := l.offset
	l.mu.Unlock()

	meals, err := l.source.ListMeals(ctx, offset, l.pageSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false

	if err != nil {
		l.logger.Error("failed to fetch meals", "skip", offset, "limit", l.pageSize, "error", err)
		l.notifier.Notify(ctx, notify.New(notify.Error, "Error", "Error fetching meals. Please try again later."))
		return 0, fmt.Errorf("failed to load meals at offset %d: %w", offset, err)
	}

	if len(meals) == 0 {
		l.exhausted = true
		l.logger.Info("no more meals", "skip", offset)
		return 0, ErrNoMoreMeals
	}

	l.accumulated = append(l.accumulated, meals...)
	l.offset += l.pageSize
	l.view = NewCards(l.criteria.Filter(l.accumulated))

	l.logger.Debug("meals page loaded", "skip", offset, "count", len(meals), "total", len(l.accumulated))
	return len(meals), nil
}

// ApplyFilter sets the active criteria and returns the matching cards
func (l *Loader) ApplyFilter(criteria Criteria) []Card {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.criteria = criteria
	l.view = NewCards(criteria.Filter(l.accumulated))
	return l.copyView()
}

// ClearFilter resets every criterion and returns all accumulated cards
func (l *Loader) ClearFilter() []Card {
	return l.ApplyFilter(Criteria{})
}

// View returns the cards produced by the last filter evaluation
func (l *Loader) View() []Card {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.copyView()
}

// Meals returns every accumulated meal in fetch order
func (l *Loader) Meals() []models.Meal {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]models.Meal(nil), l.accumulated...)
}

// Criteria returns the active criteria
func (l *Loader) Criteria() Criteria {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.criteria
}

// Offset returns the start of the next page to fetch
func (l *Loader) Offset() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.offset
}

// Exhausted reports whether an empty page has been observed
func (l *Loader) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.exhausted
}

func (l *Loader) copyView() []Card {
	return append([]Card{}, l.view...)
}

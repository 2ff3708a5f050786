package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/mealapi"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/notify"
)

const (
	// DeletePrompt is the question asked before a meal is deleted
	DeletePrompt = "Are you sure you want to delete this meal?"

	fallbackMessage = "Please check your input and try again."
)

var ErrCancelled = errors.New("cancelled by user")

// MealAPI is the part of the meals API the form writes to
type MealAPI interface {
	CreateMeal(ctx context.Context, payload *models.MealPayload) (*models.Meal, error)
	UpdateMeal(ctx context.Context, id int64, payload *models.MealPayload) (*models.Meal, error)
	DeleteMeal(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, id int64, filename string, image io.Reader) error
}

// Navigator moves the user to another page once an action completes
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls fn
func (fn NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return fn(ctx, path)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls fn
func (fn ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return fn(ctx, prompt)
}

// ValidationError is returned when the form fails validation; nothing was sent
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the message of every field error in order
func (e *ValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		messages[i] = fe.Message
	}
	return messages
}

// SubmitterConfig holds the settings of a Submitter
type SubmitterConfig struct {
	Options       Options
	RedirectDelay time.Duration
	ListingPath   string
}

// Submitter saves forms through the meals API and reports the outcome
type Submitter struct {
	api       MealAPI
	notifier  notify.Notifier
	navigator Navigator
	cfg       SubmitterConfig
	logger    *slog.Logger
}

// NewSubmitter creates a submitter saving through api
func NewSubmitter(api MealAPI, notifier notify.Notifier, navigator Navigator, cfg SubmitterConfig, logger *slog.Logger) *Submitter {
	return &Submitter{
		api:       api,
		notifier:  notifier,
		navigator: navigator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Submit validates, serializes and saves the form
// A new meal is created, a bound one is updated. After a successful save the
// returned ID is bound to the form, the selected image is uploaded and the user
// is sent to the listing page once the redirect delay has passed. Failures leave
// the form as it was so the user can retry.
func (s *Submitter) Submit(ctx context.Context, f *Form) (*models.Meal, error) {
	if errs := f.Validate(s.cfg.Options); len(errs) > 0 {
		verr := &ValidationError{Errors: errs}
		s.notifier.Notify(ctx, notify.New(notify.Error, "Validation Error", strings.Join(verr.Messages(), "\n")))
		return nil, verr
	}

	payload, err := f.Serialize(s.cfg.Options)
	if err != nil {
		s.notifier.Notify(ctx, notify.New(notify.Error, "Validation Error", err.Error()))
		return nil, err
	}

	var saved *models.Meal
	if f.IsNew() {
		saved, err = s.api.CreateMeal(ctx, payload)
	} else {
		saved, err = s.api.UpdateMeal(ctx, f.ID(), payload)
	}
	if err != nil {
		s.logger.Error("failed to save meal", "meal_id", f.ID(), "error", err)
		s.notifier.Notify(ctx, notify.New(notify.Error, "Failed to Save Meal", FormatError(err)))
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	f.Bind(saved.ID)
	s.logger.Info("meal saved", "meal_id", saved.ID)

	if img := f.Image(); img != nil && saved.ID >= 0 {
		s.uploadImage(ctx, saved.ID, img)
		f.ClearImage()
	}

	s.notifier.Notify(ctx, notify.New(notify.Success, "Success", "Meal has been saved!"))

	return saved, s.redirect(ctx)
}

// Delete asks for confirmation, deletes the meal and returns to the listing page
func (s *Submitter) Delete(ctx context.Context, id int64, confirmer Confirmer) error {
	ok, err := confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return fmt.Errorf("failed to confirm deletion: %w", err)
	}
	if !ok {
		return ErrCancelled
	}

	if err := s.api.DeleteMeal(ctx, id); err != nil {
		s.logger.Error("failed to delete meal", "meal_id", id, "error", err)
		s.notifier.Notify(ctx, notify.New(notify.Error, "Delete Failed", "Error deleting meal. Please try again later."))
		return err
	}

	s.logger.Info("meal deleted", "meal_id", id)
	return s.navigate(ctx)
}

// uploadImage never fails the save; problems are logged and reported as a warning
func (s *Submitter) uploadImage(ctx context.Context, id int64, img *Image) {
	if err := s.api.UploadImage(ctx, id, img.Filename, img.Content); err != nil {
		s.logger.Error("failed to upload image", "meal_id", id, "filename", img.Filename, "error", err)
		s.notifier.Notify(ctx, notify.New(notify.Warning, "Image Upload Failed",
			"The meal was saved but the image could not be uploaded."))
		return
	}
	s.logger.Info("image uploaded", "meal_id", id, "filename", img.Filename)
}

func (s *Submitter) redirect(ctx context.Context) error {
	if s.cfg.RedirectDelay > 0 {
		timer := time.NewTimer(s.cfg.RedirectDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.logger.Debug("redirect abandoned", "error", ctx.Err())
			return nil
		case <-timer.C:
		}
	}
	return s.navigate(ctx)
}

func (s *Submitter) navigate(ctx context.Context) error {
	if err := s.navigator.Navigate(ctx, s.cfg.ListingPath); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", s.cfg.ListingPath, err)
	}
	return nil
}

// FormatError turns a save failure into the text shown to the user
// Structured field errors are listed one per line as "<field path>: <message>".
func FormatError(err error) string {
	var apiErr *mealapi.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.FieldErrors) > 0 {
			return strings.Join(apiErr.Messages(), "\n")
		}
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fallbackMessage
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallbackMessage
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"gopkg.in/yaml.v2"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/form"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/mealapi/mealapitest"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// fakeAPI serves the in-memory meals API until the context is cancelled
func (a *app) fakeAPI(ctx context.Context, args []string) error {
	fs := a.flagSet("fake-api")
	addr := fs.String("addr", "localhost:8000", "listen address")
	seedFile := fs.String("seed", "", "YAML list of drafts to preload")
	origins := fs.String("origins", "*", "comma separated CORS origins")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var seed []models.MealPayload
	if *seedFile != "" {
		var err error
		if seed, err = loadSeed(*seedFile); err != nil {
			return err
		}
	}
	repo := mealapitest.NewRepository(seed...)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      fakeAPIHandler(repo, a.log, strings.Split(*origins, ",")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("fake meals api listening", "address", *addr, "meals", repo.Count())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fake api failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down fake api...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("fake api forced to shutdown: %w", err)
	}

	a.log.Info("fake api stopped gracefully")
	return nil
}

// fakeAPIHandler lets browser pages on other origins call the fake API
func fakeAPIHandler(repo *mealapitest.Repository, log *slog.Logger, origins []string) http.Handler {
	return mealapitest.NewHandler(repo, log, cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// loadSeed reads a YAML list of drafts and serializes each one
// Ratings are carried through so seeded stats are meaningful.
func loadSeed(path string) ([]models.MealPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var drafts []form.Draft
	if err := yaml.UnmarshalStrict(data, &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	payloads := make([]models.MealPayload, 0, len(drafts))
	for i, d := range drafts {
		payload, err := d.Form().Serialize(form.Options{RatingPolicy: form.RatingPassthrough})
		if err != nil {
			return nil, fmt.Errorf("seed meal %d: %w", i+1, err)
		}
		payloads = append(payloads, *payload)
	}
	return payloads, nil
}

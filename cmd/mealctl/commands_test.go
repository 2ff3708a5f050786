package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/config"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/finder"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/mealapi/mealapitest"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
	"github.com/Lixing-Zhang/meal-tracker/client/pkg/logger"
)

func strPtr(s string) *string { return &s }

func finderCriteria() finder.Criteria {
	return finder.Criteria{CookingMode: "Oven"}
}

func newTestApp(t *testing.T, stdin string, seed ...models.MealPayload) (*app, *mealapitest.Server, *bytes.Buffer) {
	t.Helper()

	log := logger.New("error")
	srv := mealapitest.NewServer(mealapitest.NewRepository(seed...), log)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		API:      config.APIConfig{BaseURL: srv.URL, Timeout: 5},
		Finder:   config.FinderConfig{PageSize: 2},
		Form:     config.FormConfig{RedirectDelayMs: 0, ListingPath: "/find", RatingPolicy: "sentinel"},
		LogLevel: "error",
	}

	var out bytes.Buffer
	a, err := newApp(cfg, log, strings.NewReader(stdin), &out)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	return a, srv, &out
}

func sampleSeed() []models.MealPayload {
	return []models.MealPayload{
		{Name: "Green Curry", Description: "Thai curry", CuisineType: strPtr("Thai")},
		{Name: "Chili", Description: "Beef chili", CuisineType: strPtr("American")},
		{Name: "Pad Thai", Description: "Noodles", CuisineType: strPtr("Thai"),
			LogEntries: []models.LogEntry{{Date: "2024-01-01"}}},
	}
}

func TestList(t *testing.T) {
	a, _, out := newTestApp(t, "", sampleSeed()...)

	if err := a.dispatch(context.Background(), "list", []string{"-cuisine", "Thai"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "#1 Green Curry") || !strings.Contains(got, "#3 Pad Thai") {
		t.Errorf("missing Thai meals in output:\n%s", got)
	}
	if strings.Contains(got, "Chili") {
		t.Errorf("filtered meal printed:\n%s", got)
	}
	if !strings.Contains(got, "2 of 3 meals") {
		t.Errorf("missing summary line:\n%s", got)
	}
}

func TestBrowse(t *testing.T) {
	script := "next\nfilter text=pad thai\nnext\nnext\nclear\nquit\n"
	a, srv, out := newTestApp(t, script, sampleSeed()...)

	if err := a.dispatch(context.Background(), "browse", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Loaded 2 meals.") || !strings.Contains(got, "Loaded 1 meals.") {
		t.Errorf("missing load messages:\n%s", got)
	}
	if !strings.Contains(got, "No more meals to load.") {
		t.Errorf("missing end of data message:\n%s", got)
	}
	// three "next" commands hit pages at 0, 2 and 4
	if n := len(srv.Requests()); n != 3 {
		t.Errorf("server saw %d requests, want 3", n)
	}
}

func TestBrowse_ShowReportsFilter(t *testing.T) {
	script := "show\nfilter cuisine=Thai\nshow\nclear\nshow\nquit\n"
	a, _, out := newTestApp(t, script, sampleSeed()...)

	if err := a.dispatch(context.Background(), "browse", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if n := strings.Count(got, "No filter active."); n != 2 {
		t.Errorf("got %d empty filter lines, want 2:\n%s", n, got)
	}
	if !strings.Contains(got, `Filter: text="" cuisine=Thai mode=any ease=any`) {
		t.Errorf("missing active filter line:\n%s", got)
	}
}

func TestParseCriteria(t *testing.T) {
	criteria, err := parseCriteria(finderCriteria(), []string{"text=green", "curry", "cuisine=Thai"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if criteria.Text != "green curry" || criteria.CuisineType != "Thai" || criteria.CookingMode != "Oven" {
		t.Errorf("criteria = %+v", criteria)
	}

	if _, err := parseCriteria(finderCriteria(), []string{"color=red"}); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := parseCriteria(finderCriteria(), []string{"curry"}); err == nil {
		t.Error("expected error for bare token")
	}
}

func TestSaveCreatesMealWithImage(t *testing.T) {
	a, srv, out := newTestApp(t, "")

	dir := t.TempDir()
	draft := "name: Pho\ndescription: Noodle soup\nimage_file: pho.jpg\ndirections:\n  - Simmer\n"
	if err := os.WriteFile(filepath.Join(dir, "pho.yaml"), []byte(draft), 0644); err != nil {
		t.Fatalf("failed to write draft: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pho.jpg"), []byte("jpeg"), 0644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	if err := a.dispatch(context.Background(), "save", []string{filepath.Join(dir, "pho.yaml")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "Saved #1 Pho") {
		t.Errorf("output:\n%s", out.String())
	}
	if images := srv.Repo.Images(1); len(images) != 1 || images[0] != "pho.jpg" {
		t.Errorf("images = %v", images)
	}
	meal, err := srv.Repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("meal not stored: %v", err)
	}
	if meal.ImagePath != "pho.jpg" {
		t.Errorf("image path = %q, want pho.jpg", meal.ImagePath)
	}
}

// failingWriter rejects any write containing marker
type failingWriter struct {
	bytes.Buffer
	marker string
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if strings.Contains(string(p), w.marker) {
		return 0, errors.New("broken pipe")
	}
	return w.Buffer.Write(p)
}

func TestSaveReportsMealWhenNavigationFails(t *testing.T) {
	a, srv, _ := newTestApp(t, "")
	out := &failingWriter{marker: "Back to"}
	a.out = out

	path := filepath.Join(t.TempDir(), "pho.yaml")
	if err := os.WriteFile(path, []byte("name: Pho\ndescription: Noodle soup\n"), 0644); err != nil {
		t.Fatalf("failed to write draft: %v", err)
	}

	if err := a.dispatch(context.Background(), "save", []string{path}); err == nil {
		t.Fatal("expected navigation error, got nil")
	}
	if srv.Repo.Count() != 1 {
		t.Errorf("count = %d, want 1", srv.Repo.Count())
	}
	if !strings.Contains(out.String(), "Saved #1 Pho") {
		t.Errorf("saved meal not reported:\n%s", out.String())
	}
}

func TestSaveInvalidDraftSendsNothing(t *testing.T) {
	a, srv, out := newTestApp(t, "")

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: \"\"\ndescription: \"\"\n"), 0644); err != nil {
		t.Fatalf("failed to write draft: %v", err)
	}

	if err := a.dispatch(context.Background(), "save", []string{path}); err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
	if !strings.Contains(out.String(), "[error] Validation Error") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestExportThenSaveUpdates(t *testing.T) {
	a, srv, _ := newTestApp(t, "", sampleSeed()...)

	path := filepath.Join(t.TempDir(), "meal.yaml")
	if err := a.dispatch(context.Background(), "export", []string{"-o", path, "3"}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	edited := strings.Replace(string(data), "Pad Thai", "Pad See Ew", 1)
	if err := os.WriteFile(path, []byte(edited), 0644); err != nil {
		t.Fatalf("failed to write draft: %v", err)
	}

	if err := a.dispatch(context.Background(), "save", []string{path}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meal, err := srv.Repo.Get(context.Background(), 3)
	if err != nil {
		t.Fatalf("meal 3 missing: %v", err)
	}
	if meal.Name != "Pad See Ew" || len(meal.LogEntries) != 1 {
		t.Errorf("meal 3 = %q with %d log entries", meal.Name, len(meal.LogEntries))
	}
	if srv.Repo.Count() != 3 {
		t.Errorf("count = %d, want 3 (update, not create)", srv.Repo.Count())
	}
}

func TestExportUnknownMeal(t *testing.T) {
	a, _, _ := newTestApp(t, "", sampleSeed()...)

	if err := a.dispatch(context.Background(), "export", []string{"42"}); err == nil {
		t.Error("expected error for unknown meal")
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		stdin     string
		wantCount int
	}{
		{name: "confirmed on prompt", args: []string{"1"}, stdin: "y\n", wantCount: 2},
		{name: "declined on prompt", args: []string{"1"}, stdin: "n\n", wantCount: 3},
		{name: "no answer", args: []string{"1"}, stdin: "", wantCount: 3},
		{name: "skip prompt", args: []string{"-yes", "2"}, stdin: "", wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, srv, _ := newTestApp(t, tt.stdin, sampleSeed()...)

			if err := a.dispatch(context.Background(), "delete", tt.args); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv.Repo.Count() != tt.wantCount {
				t.Errorf("count = %d, want %d", srv.Repo.Count(), tt.wantCount)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _, out := newTestApp(t, "")

	if err := a.dispatch(context.Background(), "cook", nil); err == nil {
		t.Error("expected error for unknown command")
	}
	if !strings.Contains(out.String(), "usage: mealctl") {
		t.Errorf("expected usage in output:\n%s", out.String())
	}
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := "- name: Pho\n  description: Soup\n  log_entries:\n    - date: 2024-01-01\n      rating: 9\n- name: Chili\n  description: Stew\n"
	if err := os.WriteFile(path, []byte(seed), 0644); err != nil {
		t.Fatalf("failed to write seed: %v", err)
	}

	payloads, err := loadSeed(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payloads) != 2 {
		t.Fatalf("got %d payloads, want 2", len(payloads))
	}
	if rating := payloads[0].LogEntries[0].Rating; rating == nil || *rating != 9 {
		t.Errorf("rating = %v, want 9", rating)
	}
}

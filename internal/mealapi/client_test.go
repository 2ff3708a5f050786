package mealapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/mealapi/mealapitest"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
	"github.com/Lixing-Zhang/meal-tracker/client/pkg/logger"
)

func strPtr(s string) *string { return &s }

func newTestClient(t *testing.T, seed ...models.MealPayload) (*Client, *mealapitest.Server) {
	t.Helper()

	log := logger.New("error")
	srv := mealapitest.NewServer(mealapitest.NewRepository(seed...), log)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, WithLogger(log))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client, srv
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "absolute url", baseURL: "http://localhost:8000", wantErr: false},
		{name: "trailing slash", baseURL: "http://localhost:8000/", wantErr: false},
		{name: "relative url", baseURL: "/meals", wantErr: true},
		{name: "empty", baseURL: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClient(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestWithTimeout_LeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c, err := NewClient("http://localhost:8000", WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shared.Timeout != time.Minute {
		t.Errorf("caller client timeout = %v, want %v", shared.Timeout, time.Minute)
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want 5s", c.httpClient.Timeout)
	}
	if c.httpClient == shared {
		t.Error("client still points at the caller's http.Client")
	}
}

func TestClient_ListMeals(t *testing.T) {
	client, srv := newTestClient(t,
		models.MealPayload{Name: "Chili", Description: "Beef chili"},
		models.MealPayload{Name: "Pho", Description: "Noodle soup"},
		models.MealPayload{Name: "Tacos", Description: "Fish tacos"},
	)
	ctx := context.Background()

	meals, err := client.ListMeals(ctx, 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(meals))
	}

	empty, err := client.ListMeals(ctx, 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}

	requests := srv.Requests()
	if requests[0].Query != "limit=2&skip=0" {
		t.Errorf("query = %q, want limit=2&skip=0", requests[0].Query)
	}
}

func TestClient_CreateAndUpdate(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()

	payload := &models.MealPayload{
		Name:        "Pancakes",
		Description: "Fluffy",
		CuisineType: strPtr("American"),
		Directions:  []models.Direction{{StepNumber: 1, Description: "Mix"}},
	}

	created, err := client.CreateMeal(ctx, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("created ID = %d, want 1", created.ID)
	}

	payload.Description = "Extra fluffy"
	updated, err := client.UpdateMeal(ctx, created.ID, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Description != "Extra fluffy" {
		t.Errorf("description = %q, want Extra fluffy", updated.Description)
	}

	requests := srv.Requests()
	if requests[0].Method != http.MethodPost || requests[0].Path != "/meals/" {
		t.Errorf("first request = %s %s, want POST /meals/", requests[0].Method, requests[0].Path)
	}
	if requests[1].Method != http.MethodPut || requests[1].Path != "/meals/1" {
		t.Errorf("second request = %s %s, want PUT /meals/1", requests[1].Method, requests[1].Path)
	}
	if requests[0].ContentType != "application/json" {
		t.Errorf("content type = %q, want application/json", requests[0].ContentType)
	}

	// Blank optional scalars must be sent as null
	var body map[string]interface{}
	if err := json.Unmarshal(requests[0].Body, &body); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	if v, ok := body["cooking_time"]; !ok || v != nil {
		t.Errorf("cooking_time = %v (present=%v), want null", v, ok)
	}
}

func TestClient_ValidationError(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.CreateMeal(context.Background(), &models.MealPayload{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", apiErr.StatusCode)
	}

	messages := apiErr.Messages()
	want := []string{"body > name: Field required", "body > description: Field required"}
	if len(messages) != len(want) {
		t.Fatalf("messages = %v, want %v", messages, want)
	}
	for i := range want {
		if messages[i] != want[i] {
			t.Errorf("message %d = %q, want %q", i, messages[i], want[i])
		}
	}
}

func TestClient_UpdateNotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.UpdateMeal(context.Background(), 7, &models.MealPayload{Name: "x", Description: "y"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "Meal not found" {
		t.Errorf("detail = %q, want Meal not found", apiErr.Detail)
	}
}

func TestClient_DeleteMeal(t *testing.T) {
	client, srv := newTestClient(t, models.MealPayload{Name: "Chili", Description: "Beef"})
	ctx := context.Background()

	if err := client.DeleteMeal(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.Repo.Count() != 0 {
		t.Errorf("expected meal to be deleted")
	}
	if err := client.DeleteMeal(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClient_UploadImage(t *testing.T) {
	client, srv := newTestClient(t, models.MealPayload{Name: "Chili", Description: "Beef"})

	err := client.UploadImage(context.Background(), 1, "chili.jpg", strings.NewReader("jpeg-bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	images := srv.Repo.Images(1)
	if len(images) != 1 || images[0] != "chili.jpg" {
		t.Errorf("images = %v, want [chili.jpg]", images)
	}

	requests := srv.Requests()
	last := requests[len(requests)-1]
	if last.Path != "/meals/1/upload-image/" {
		t.Errorf("path = %q, want /meals/1/upload-image/", last.Path)
	}
	if !strings.HasPrefix(last.ContentType, "multipart/form-data") {
		t.Errorf("content type = %q, want multipart/form-data", last.ContentType)
	}
}

func TestClient_ServerErrorWithoutJSON(t *testing.T) {
	client, srv := newTestClient(t)
	srv.FailNext(http.StatusBadGateway, "<html>bad gateway</html>")

	_, err := client.ListMeals(context.Background(), 0, 10)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Detail != "" || len(apiErr.FieldErrors) != 0 {
		t.Errorf("expected empty detail, got %+v", apiErr)
	}
	if !strings.Contains(apiErr.Error(), "502") {
		t.Errorf("error %q does not mention status", apiErr.Error())
	}
}

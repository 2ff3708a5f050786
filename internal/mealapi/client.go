package mealapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/middleware"
	"github.com/Lixing-Zhang/meal-tracker/client/internal/models"
)

// Client talks to the meals REST API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
// The HTTP client is copied so a client passed to WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = timeout
		c.httpClient = &hc
	}
}

// WithLogger logs every request made by the client
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger != nil {
		wrapped := *c.httpClient
		wrapped.Transport = middleware.Transport(c.logger, c.httpClient.Transport)
		c.httpClient = &wrapped
	}

	return c, nil
}

// ListMeals fetches the meals in [skip, skip+limit)
// An empty slice means there are no more meals
func (c *Client) ListMeals(ctx context.Context, skip, limit int) ([]models.Meal, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var meals []models.Meal
	if err := c.doJSON(ctx, http.MethodGet, "/meals/", query, nil, &meals); err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	if meals == nil {
		meals = []models.Meal{}
	}
	return meals, nil
}

// CreateMeal posts a new meal to the collection
func (c *Client) CreateMeal(ctx context.Context, payload *models.MealPayload) (*models.Meal, error) {
	var meal models.Meal
	if err := c.doJSON(ctx, http.MethodPost, "/meals/", nil, payload, &meal); err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return &meal, nil
}

// UpdateMeal replaces the meal identified by id
func (c *Client) UpdateMeal(ctx context.Context, id int64, payload *models.MealPayload) (*models.Meal, error) {
	var meal models.Meal
	if err := c.doJSON(ctx, http.MethodPut, mealPath(id), nil, payload, &meal); err != nil {
		return nil, fmt.Errorf("failed to update meal %d: %w", id, err)
	}
	return &meal, nil
}

// DeleteMeal removes the meal identified by id
func (c *Client) DeleteMeal(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, mealPath(id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete meal %d: %w", id, err)
	}
	return nil
}

// UploadImage posts an image file for the meal as multipart form data
func (c *Client) UploadImage(ctx context.Context, id int64, filename string, image io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, mealPath(id)+"/upload-image/", nil, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to upload image for meal %d: %w", id, err)
	}
	return nil
}

func mealPath(id int64) string {
	return "/meals/" + strconv.FormatInt(id, 10)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, out)
}

// do executes req, turning non-2xx responses into *APIError and decoding
// successful bodies into out when out is non-nil
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

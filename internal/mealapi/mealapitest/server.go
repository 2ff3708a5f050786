// Package mealapitest provides an in-process fake of the meals REST API for
// tests and local runs.
package mealapitest

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/Lixing-Zhang/meal-tracker/client/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Request is a request received by the fake API
type Request struct {
	Method      string
	Path        string
	Query       string
	ContentType string
	Body        []byte
}

type failure struct {
	status int
	body   string
}

// Server is a running fake meals API
type Server struct {
	*httptest.Server
	Repo *Repository

	mu       sync.Mutex
	requests []Request
	failures []failure
}

// NewServer starts a fake API backed by repo; callers must Close it
func NewServer(repo *Repository, logger *slog.Logger) *Server {
	s := &Server{Repo: repo}
	s.Server = httptest.NewServer(NewHandler(repo, logger, s.record, s.injectFailures))
	return s
}

// NewHandler routes the meals API to repo
// Extra middleware runs after request logging and panic recovery.
func NewHandler(repo *Repository, logger *slog.Logger, mw ...func(http.Handler) http.Handler) http.Handler {
	handler := NewMealHandler(repo, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw...)

	r.Get("/health", handler.Health)
	r.Get("/meals/", handler.ListMeals)
	r.Post("/meals/", handler.CreateMeal)
	r.Route("/meals/{mealId}", func(r chi.Router) {
		r.Put("/", handler.UpdateMeal)
		r.Delete("/", handler.DeleteMeal)
		r.Post("/upload-image/", handler.UploadImage)
	})

	return r
}

// FailNext makes the next request fail with the given status and raw body
// Calls queue up; each failure is consumed by one request
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, failure{status: status, body: body})
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Request(nil), s.requests...)
}

// record keeps a copy of each request before routing
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	})
}

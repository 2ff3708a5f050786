package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Lixing-Zhang/meal-tracker/client/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to decode log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug")

	handler := Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/meals/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0]["status"] != float64(http.StatusCreated) {
		t.Errorf("status = %v, want 201", entries[0]["status"])
	}
	if entries[0]["path"] != "/meals/" {
		t.Errorf("path = %v, want /meals/", entries[0]["path"])
	}
}

func TestTransport(t *testing.T) {
	t.Run("logs response status", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "info")

		next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody, Request: r}, nil
		})
		client := &http.Client{Transport: Transport(log, next)}

		resp, err := client.Get("http://meals.test/meals/7")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		entries := decodeLines(t, &buf)
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		if entries[0]["status"] != float64(http.StatusNotFound) {
			t.Errorf("status = %v, want 404", entries[0]["status"])
		}
		if entries[0]["method"] != http.MethodGet {
			t.Errorf("method = %v, want GET", entries[0]["method"])
		}
	})

	t.Run("logs transport errors", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "info")

		next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})
		client := &http.Client{Transport: Transport(log, next)}

		if _, err := client.Get("http://meals.test/meals/"); err == nil {
			t.Fatal("expected error, got nil")
		}

		entries := decodeLines(t, &buf)
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		if entries[0]["level"] != "ERROR" {
			t.Errorf("level = %v, want ERROR", entries[0]["level"])
		}
	})
}

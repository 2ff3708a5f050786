package mealapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound = errors.New("meal not found")
)

// FieldError is one entry of a structured validation error returned by the API
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type,omitempty"`
}

// Path joins the error location, e.g. "body > ingredients > 0 > name"
func (f FieldError) Path() string {
	if len(f.Loc) == 0 {
		return "Unknown field"
	}
	parts := make([]string, len(f.Loc))
	for i, part := range f.Loc {
		switch v := part.(type) {
		case float64:
			parts[i] = fmt.Sprintf("%d", int64(v))
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, " > ")
}

// APIError is returned for any non-success response from the meals API
type APIError struct {
	StatusCode  int
	Detail      string
	FieldErrors []FieldError
}

func (e *APIError) Error() string {
	if len(e.FieldErrors) > 0 {
		return fmt.Sprintf("meals api: status %d: %s", e.StatusCode, strings.Join(e.Messages(), "; "))
	}
	if e.Detail != "" {
		return fmt.Sprintf("meals api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("meals api: unexpected status code: %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Messages renders each field error as "<field path>: <message>"
func (e *APIError) Messages() []string {
	messages := make([]string, len(e.FieldErrors))
	for i, fe := range e.FieldErrors {
		messages[i] = fmt.Sprintf("%s: %s", fe.Path(), fe.Msg)
	}
	return messages
}

// parseAPIError decodes an error body of the form {"detail": string | [{loc, msg}]}
// Bodies that are not JSON leave Detail empty
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var fieldErrors []FieldError
	if err := json.Unmarshal(envelope.Detail, &fieldErrors); err == nil {
		apiErr.FieldErrors = fieldErrors
	}

	return apiErr
}

package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/vidgen/internal/shared"
	"golang.org/x/oauth2"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v: status %d: %s", shared.ErrAPIRequest, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%v: status %d", shared.ErrAPIRequest, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// newAPIError builds an [APIError] from a response status and body.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Detail: ParseDetail(body), Body: body}
}

// ParseDetail extracts the "detail" member of a FastAPI error body.
//
// String details are returned as-is; any other JSON value is returned in compact JSON form.
// Bodies without a detail yield "".
func ParseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	raw := bytes.TrimSpace(envelope.Detail)
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

// DetailMessage returns the backend's detail for err, or fallback when there is none
// (transport failures, empty bodies).
func DetailMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if detail := ParseDetail(retrieveErr.Body); detail != "" {
			return detail
		}
	}

	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

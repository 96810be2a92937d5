// API service for making raw HTTP requests to the video generation backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// APIService provides methods for making raw HTTP requests to the backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the backend at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns an [*APIError] for non-2xx responses and nil otherwise.
func (r *APIResponse) Err() error {
	if r.OK() {
		return nil
	}
	return newAPIError(r.StatusCode, r.Body)
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// RequestOption decorates an outgoing request.
type RequestOption func(*http.Request)

// WithBearer attaches tok as an Authorization bearer credential.
func WithBearer(tok *oauth2.Token) RequestOption {
	return func(r *http.Request) {
		if tok != nil {
			tok.SetAuthHeader(r)
		}
	}
}

// WithHeader sets a single request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// URL joins path onto the base URL.
func (a *APIService) URL(path string) string {
	return a.baseURL + path
}

// Client returns the underlying [http.Client].
func (a *APIService) Client() *http.Client {
	return a.httpClient
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string, opts ...RequestOption) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, nil, "", opts...)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte, opts ...RequestOption) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json", opts...)
}

// PostForm performs a POST request with an application/x-www-form-urlencoded body.
func (a *APIService) PostForm(ctx context.Context, path string, form url.Values, opts ...RequestOption) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", opts...)
}

// Do performs a request and buffers the whole response body.
func (a *APIService) Do(ctx context.Context, method, path string, body io.Reader, contentType string, opts ...RequestOption) (*APIResponse, error) {
	resp, err := a.send(ctx, method, path, body, contentType, opts...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Stream performs a GET request and hands back the live response for 2xx statuses.
// The caller must close the body. Non-2xx responses are drained and returned as [*APIError].
func (a *APIService) Stream(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	opts = append([]RequestOption{WithHeader("Accept", "*/*")}, opts...)
	resp, err := a.send(ctx, http.MethodGet, path, nil, "", opts...)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, newAPIError(resp.StatusCode, data)
	}

	return resp, nil
}

func (a *APIService) send(ctx context.Context, method, path string, body io.Reader, contentType string, opts ...RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.URL(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(req)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/vidgen/internal/shared"
	tu "github.com/desertthunder/vidgen/internal/testing"
	"golang.org/x/oauth2"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != DefaultBaseURL {
				t.Errorf("expected default baseURL %q, got %s", DefaultBaseURL, srv.baseURL)
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.Client() != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected Accept application/json, got %q", r.Header.Get("Accept"))
				}
				tu.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
			if resp.JSONData == nil {
				t.Error("expected JSONData to be populated")
			}
			if resp.Err() != nil {
				t.Errorf("expected nil Err for 2xx, got %v", resp.Err())
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				_, _ = w.Write([]byte("plain text"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response not to be JSON")
			}
			if string(resp.Body) != "plain text" {
				t.Errorf("expected body 'plain text', got %q", resp.Body)
			}
		})

		t.Run("Bearer Option", func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				tu.WriteJSON(w, http.StatusOK, map[string]any{})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			_, err := srv.Get(context.Background(), "/test", WithBearer(&oauth2.Token{AccessToken: "abc", TokenType: "bearer"}))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "Bearer abc" {
				t.Errorf("expected 'Bearer abc', got %q", got)
			}
		})

		t.Run("Nil Bearer Sends No Header", func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				tu.WriteJSON(w, http.StatusOK, map[string]any{})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			if _, err := srv.Get(context.Background(), "/test", WithBearer(nil)); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "" {
				t.Errorf("expected no Authorization header, got %q", got)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("://invalid", nil)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("unexpected error message: %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}
			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("unexpected error message: %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     make(http.Header),
				}, nil),
			}
			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("unexpected error message: %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewAPIService(server.URL, nil)
			if _, err := srv.Get(ctx, "/test"); err == nil {
				t.Fatal("expected error for canceled context")
			}
		})

		t.Run("Response Headers Are Preserved", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Custom-Header", "custom-value")
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Headers.Get("X-Custom-Header") != "custom-value" {
				t.Errorf("expected custom header, got %q", resp.Headers.Get("X-Custom-Header"))
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected Content-Type application/json, got %s", ct)
				}

				var body map[string]any
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Errorf("failed to decode request body: %v", err)
				}
				if body["prompt"] != "a cat" {
					t.Errorf("expected prompt 'a cat', got %v", body["prompt"])
				}
				tu.WriteJSON(w, http.StatusOK, map[string]string{"video_id": "abc"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Post(context.Background(), "/generate-video", []byte(`{"prompt":"a cat"}`))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var out struct {
				VideoID string `json:"video_id"`
			}
			if err := resp.Decode(&out); err != nil {
				t.Fatalf("expected decode to succeed, got %v", err)
			}
			if out.VideoID != "abc" {
				t.Errorf("expected video_id 'abc', got %s", out.VideoID)
			}
		})

		t.Run("Empty Request Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if len(body) != 0 {
					t.Errorf("expected empty body, got %q", body)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			if _, err := srv.Post(context.Background(), "/test", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}
			srv := NewAPIService("http://example.com", client)
			if _, err := srv.Post(context.Background(), "/test", []byte(`{}`)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	})

	t.Run("PostForm", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("expected form content type, got %s", ct)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.PostForm.Get("username") != "alice" {
				t.Errorf("expected username alice, got %s", r.PostForm.Get("username"))
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil)
		if _, err := srv.PostForm(context.Background(), "/auth/register", url.Values{"username": {"alice"}}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Stream", func(t *testing.T) {
		t.Run("Returns Live Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept") != "*/*" {
					t.Errorf("expected Accept */*, got %q", r.Header.Get("Accept"))
				}
				w.Header().Set("Content-Type", "video/mp4")
				_, _ = w.Write([]byte("mp4 bytes"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Stream(context.Background(), "/public-video/abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			defer resp.Body.Close()

			data, _ := io.ReadAll(resp.Body)
			if string(data) != "mp4 bytes" {
				t.Errorf("expected body 'mp4 bytes', got %q", data)
			}
		})

		t.Run("Non-2xx Is APIError", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tu.WriteDetail(w, http.StatusNotFound, "Video not found")
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			_, err := srv.Stream(context.Background(), "/public-video/abc")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != http.StatusNotFound || apiErr.Detail != "Video not found" {
				t.Errorf("unexpected error contents: %+v", apiErr)
			}
		})
	})

	t.Run("APIResponse", func(t *testing.T) {
		t.Run("Err For Non-2xx", func(t *testing.T) {
			resp := &APIResponse{StatusCode: 400, Body: []byte(`{"detail":"Username already registered"}`)}

			err := resp.Err()
			if err == nil {
				t.Fatal("expected error for 400")
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest in chain, got %v", err)
			}
			if DetailMessage(err, "fallback") != "Username already registered" {
				t.Errorf("unexpected detail: %q", DetailMessage(err, "fallback"))
			}
		})

		t.Run("Decode Invalid JSON", func(t *testing.T) {
			resp := &APIResponse{StatusCode: 200, Body: []byte("not json")}

			var out map[string]any
			if err := resp.Decode(&out); err == nil {
				t.Error("expected decode error")
			}
		})
	})
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/desertthunder/groove/internal/testing"
	"github.com/goccy/go-json"
)

func TestAPIClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			c := NewAPIClient("http://example.com/api", customClient)

			if c.baseURL != "http://example.com/api" {
				t.Errorf("expected baseURL 'http://example.com/api', got %s", c.baseURL)
			}
			if c.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			c := NewAPIClient("", nil)

			if c.baseURL != defaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", defaultBaseURL, c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/api/tracks" {
					t.Errorf("expected path '/api/tracks', got %s", r.URL.Path)
				}
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected Accept header, got %q", r.Header.Get("Accept"))
				}
				w.Header().Set("X-Custom-Header", "test-value")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"tracks": []}`))
			}))
			defer server.Close()

			resp, err := NewAPIClient(server.URL+"/api", nil).Get(context.Background(), "/tracks")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected OK response, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected JSON data to be populated")
			}
			if resp.Headers.Get("X-Custom-Header") != "test-value" {
				t.Errorf("expected header to be preserved, got %q", resp.Headers.Get("X-Custom-Header"))
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("upstream down"))
			}))
			defer server.Close()

			resp, err := NewAPIClient(server.URL, nil).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() {
				t.Error("expected non-OK response")
			}
			if resp.IsJSON {
				t.Error("expected response to not be JSON")
			}
			if string(resp.Body) != "upstream down" {
				t.Errorf("unexpected body %q", resp.Body)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIClient("http://example.com", nil).Get(context.Background(), "/test\x00invalid")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}

			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/test")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := NewAPIClient(server.URL, nil).Get(ctx, "/test"); err == nil {
				t.Error("expected error for canceled context")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
			}

			var data map[string]string
			if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}
			if data["name"] != "Road trip" {
				t.Errorf("expected name 'Road trip', got %v", data)
			}

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": "123"}`))
		}))
		defer server.Close()

		resp, err := NewAPIClient(server.URL, nil).Post(context.Background(), "/playlists", []byte(`{"name":"Road trip"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}
	})

	t.Run("Put And Delete", func(t *testing.T) {
		var methods []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			if r.Method == http.MethodDelete && r.Header.Get("Content-Type") != "" {
				t.Error("expected no Content-Type on bodiless request")
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		c := NewAPIClient(server.URL, nil)
		if _, err := c.Put(context.Background(), "/genres/g1", []byte(`{}`)); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if _, err := c.Delete(context.Background(), "/genres/g1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if len(methods) != 2 || methods[0] != http.MethodPut || methods[1] != http.MethodDelete {
			t.Errorf("unexpected methods %v", methods)
		}
	})
}

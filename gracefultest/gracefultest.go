// Package gracefultest provides typed test helpers for driving graceful
// resources over a real HTTP server.
package gracefultest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient creates a test client from any http.Handler (typically a
// *graceful.API).
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Envelope mirrors the {content, meta} success shape with typed content.
type Envelope[T any] struct {
	Content T              `json:"content"`
	Meta    map[string]any `json:"meta"`
}

// Response holds a decoded API response.
type Response[T any] struct {
	Status  int
	Headers http.Header
	Body    *T
	Raw     *http.Response
}

// Get sends a GET request and decodes the JSON response body into T.
func Get[T any](t testing.TB, c *Client, path string) *Response[T] {
	t.Helper()
	return do[T](t, c, http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body.
func Post[T any](t testing.TB, c *Client, path string, body any) *Response[T] {
	t.Helper()
	return do[T](t, c, http.MethodPost, path, body)
}

// Put sends a PUT request with a JSON body.
func Put[T any](t testing.TB, c *Client, path string, body any) *Response[T] {
	t.Helper()
	return do[T](t, c, http.MethodPut, path, body)
}

// Patch sends a PATCH request with a JSON body.
func Patch[T any](t testing.TB, c *Client, path string, body any) *Response[T] {
	t.Helper()
	return do[T](t, c, http.MethodPatch, path, body)
}

// Delete sends a DELETE request.
func Delete[T any](t testing.TB, c *Client, path string) *Response[T] {
	t.Helper()
	return do[T](t, c, http.MethodDelete, path, nil)
}

// Options sends an OPTIONS request (self-description).
func Options[T any](t testing.TB, c *Client, path string) *Response[T] {
	t.Helper()
	return do[T](t, c, http.MethodOptions, path, nil)
}

func do[T any](t testing.TB, c *Client, method, path string, body any) *Response[T] {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("gracefultest: marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("gracefultest: create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("gracefultest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("gracefultest: close body: %v", closeErr)
		}
	}()

	result := &Response[T]{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Raw:     resp,
	}

	if resp.StatusCode != http.StatusNoContent && resp.ContentLength != 0 {
		var decoded T
		if decErr := json.NewDecoder(resp.Body).Decode(&decoded); decErr != nil && decErr != io.EOF {
			return result
		}
		result.Body = &decoded
	}

	return result
}

// Package apiclient is the typed HTTP client the page handlers use to talk to
// the backend API. Methods forward the browser's cookies so the backend sees
// the same session, and return either decoded DTOs or the raw response when
// the handler needs to relay it (login cookies, attachment streams).
package apiclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIClient handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a client for the backend at baseURL, e.g. "http://api:8080".
func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// do is the single, unified helper for JSON API requests.
// It accepts an optional slice of cookies to be attached to the request.
func (c *APIClient) do(method, path string, body io.Reader, cookies ...*http.Cookie) (*http.Response, error) {
	return c.doContentType(method, path, "application/json", body, cookies...)
}

// doContentType is do with an explicit Content-Type, for multipart uploads
// relayed from the browser.
func (c *APIClient) doContentType(method, path, contentType string, body io.Reader, cookies ...*http.Cookie) (*http.Response, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// responseError turns a non-2xx response into an error carrying the backend's
// message, so handlers can flash it to the user.
func responseError(action string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	msg := strings.TrimSpace(string(bodyBytes))
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("failed to %s: %s", action, msg)
}

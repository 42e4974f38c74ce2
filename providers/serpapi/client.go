// Copyright 2025 Itinera
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serpapi fetches raw flight, hotel, and venue search payloads from
// SerpApi's Google engines and canonicalizes them through the travel package.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the SerpApi endpoint.
	DefaultBaseURL = "https://serpapi.com"

	// DefaultTimeout is the default search request timeout.
	DefaultTimeout = 30 * time.Second
)

// HTTPClient interface for making HTTP requests (allows mocking in tests)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues search requests against SerpApi engines.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPClient
}

// Config holds SerpApi client configuration.
type Config struct {
	APIKey  string        // Required: SerpApi API key
	BaseURL string        // Optional: defaults to https://serpapi.com
	Timeout time.Duration // Optional: defaults to 30 seconds
}

// APIError represents a failed search request.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("serpapi error (status %d): %s", e.StatusCode, e.Message)
}

// NewClient creates a new SerpApi client with the given configuration.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("serpapi API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// search performs a GET against /search with the given engine parameters and
// decodes the JSON payload. SerpApi signals engine-level failures inside an
// HTTP 200 body, so both the status code and the error field are checked.
func (c *Client) search(ctx context.Context, params url.Values) (map[string]any, error) {
	params.Set("api_key", c.apiKey)
	params.Set("output", "json")

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    truncateBody(body),
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search payload: %w", err)
	}

	if msg, ok := payload["error"].(string); ok && msg != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if meta, ok := payload["search_metadata"].(map[string]any); ok {
		if status, _ := meta["status"].(string); status == "Error" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: "search failed"}
		}
	}

	return payload, nil
}

func truncateBody(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}

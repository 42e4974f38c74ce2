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

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"itinera/platform/llm"
)

// MockHTTPClient is a mock implementation of HTTPClient
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func chatBody(content string) string {
	resp := map[string]any{
		"id":    "chatcmpl-1",
		"model": "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

// =============================================================================
// Provider Creation Tests
// =============================================================================

func TestNewProvider_Success(t *testing.T) {
	provider, err := NewProvider(Config{
		APIKey: "test-api-key",
	})

	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.Equal(t, DefaultBaseURL, provider.baseURL)
	assert.Equal(t, DefaultModel, provider.model)
	assert.Equal(t, DefaultTimeout, provider.timeout)
	assert.True(t, provider.IsHealthy())
}

func TestNewProvider_CustomConfig(t *testing.T) {
	provider, err := NewProvider(Config{
		APIKey:  "test-api-key",
		BaseURL: "https://proxy.example.com",
		Model:   ModelGPT4oStructured,
		Timeout: 30 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example.com", provider.baseURL)
	assert.Equal(t, ModelGPT4oStructured, provider.model)
	assert.Equal(t, 30*time.Second, provider.timeout)
}

func TestNewProvider_MissingAPIKey(t *testing.T) {
	provider, err := NewProvider(Config{})

	assert.Error(t, err)
	assert.Nil(t, provider)
	assert.Contains(t, err.Error(), "API key is required")
}

// =============================================================================
// Complete Tests
// =============================================================================

func TestComplete_Success(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(200, chatBody(`{"ok":true}`)), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	resp, err := provider.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "You are a ranker.",
		Prompt:       "rank these",
		MaxTokens:    256,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 19, resp.Usage.TotalTokens)
	assert.True(t, provider.IsHealthy())
	mockClient.AssertExpectations(t)
}

func TestComplete_SendsStructuredOutputFormat(t *testing.T) {
	mockClient := new(MockHTTPClient)
	var captured chatRequest
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		body, _ := io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))
		return json.Unmarshal(body, &captured) == nil
	})).Return(jsonResponse(200, chatBody(`{}`)), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	seed := 42
	schema := &llm.Schema{Type: "object", AdditionalProperties: llm.NoExtraProps()}
	_, err = provider.Complete(context.Background(), llm.CompletionRequest{
		Prompt:      "rank",
		Model:       ModelGPT4oStructured,
		Temperature: 0.2,
		TopP:        0.9,
		Seed:        &seed,
		ResponseFormat: &llm.ResponseFormat{
			Name:   "RankResult",
			Schema: schema,
			Strict: true,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, ModelGPT4oStructured, captured.Model)
	require.NotNil(t, captured.Temperature)
	assert.InDelta(t, 0.2, *captured.Temperature, 1e-9)
	require.NotNil(t, captured.Seed)
	assert.Equal(t, 42, *captured.Seed)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_schema", captured.ResponseFormat.Type)
	require.NotNil(t, captured.ResponseFormat.JSONSchema)
	assert.Equal(t, "RankResult", captured.ResponseFormat.JSONSchema.Name)
	assert.True(t, captured.ResponseFormat.JSONSchema.Strict)
}

func TestComplete_TransportError(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeUnavailable, perr.Code)
	assert.False(t, provider.IsHealthy())
}

func TestComplete_Timeout(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(nil, context.DeadlineExceeded)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeTimeout, perr.Code)
}

func TestComplete_AuthError(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(
		jsonResponse(401, `{"error":{"type":"invalid_request_error","message":"bad key"}}`), nil)

	provider, err := NewProvider(Config{APIKey: "bad-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeAuth, perr.Code)
	assert.Equal(t, 401, perr.StatusCode)
	assert.Contains(t, perr.Message, "bad key")
}

func TestComplete_RateLimitError(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(
		jsonResponse(429, `{"error":{"type":"rate_limit_error","message":"slow down"}}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeRateLimit, perr.Code)
}

func TestComplete_ServerErrorMarksUnhealthy(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(
		jsonResponse(503, `{"error":{"type":"server_error","message":"overloaded"}}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeServerError, perr.Code)
	assert.False(t, provider.IsHealthy())
}

func TestComplete_Refusal(t *testing.T) {
	body := `{
		"id": "chatcmpl-2",
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "", "refusal": "I cannot do that"},
			"finish_reason": "stop"
		}]
	}`
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(200, body), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.IsRefusal())
	assert.Contains(t, perr.Message, "I cannot do that")
}

func TestComplete_ContentFilter(t *testing.T) {
	body := `{
		"id": "chatcmpl-3",
		"model": "gpt-4o-mini",
		"choices": [{
			"index": 0,
			"message": {"role": "assistant", "content": "partial"},
			"finish_reason": "content_filter"
		}]
	}`
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(jsonResponse(200, body), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeRefusal, perr.Code)
}

func TestComplete_EmptyChoices(t *testing.T) {
	mockClient := new(MockHTTPClient)
	mockClient.On("Do", mock.Anything).Return(
		jsonResponse(200, `{"id":"chatcmpl-4","model":"gpt-4o-mini","choices":[]}`), nil)

	provider, err := NewProvider(Config{APIKey: "test-key"})
	require.NoError(t, err)
	provider.client = mockClient

	_, err = provider.Complete(context.Background(), llm.CompletionRequest{Prompt: "hi"})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, llm.ErrCodeEmptyResponse, perr.Code)
}

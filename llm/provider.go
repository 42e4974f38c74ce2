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

// Package llm defines the generative-model boundary: a unified provider
// interface, schema-constrained completion requests, and typed errors.
// The pipeline treats any concrete provider as an opaque text-to-JSON
// function; implementations must be safe for concurrent use.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider is the unified interface for generative-model backends.
//
// Complete is single-shot: one outbound request, one parse attempt. Retry
// policy belongs to the caller.
type Provider interface {
	// Name returns the identifier used for routing, logging, and metrics.
	Name() string

	// Complete generates a completion for the given request. The context
	// carries cancellation and timeout.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsHealthy reports whether the provider is believed operational.
	IsHealthy() bool
}

// ResponseFormat constrains the model output to a JSON schema. Providers
// that support structured output enforce the schema server-side; the caller
// still validates the returned document against the same schema.
type ResponseFormat struct {
	// Name labels the schema in the provider request.
	Name string `json:"name"`

	// Schema is the schema-as-data definition sent with the request.
	// Callers may validate the completion against it, or against a
	// relaxed variant when they post-process enum fields.
	Schema *Schema `json:"schema"`

	// Strict requests exact schema conformance from the provider.
	Strict bool `json:"strict"`
}

// CompletionRequest encapsulates the parameters for a completion.
type CompletionRequest struct {
	// SystemPrompt sets the fixed instruction for the call.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Prompt is the user content (serialized entities and preferences).
	Prompt string `json:"prompt"`

	// Model overrides the provider's default model.
	Model string `json:"model,omitempty"`

	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness. Negative means provider default.
	Temperature float64 `json:"temperature,omitempty"`

	// TopP is the nucleus sampling parameter. 0 means provider default.
	TopP float64 `json:"top_p,omitempty"`

	// Seed requests reproducible sampling where supported.
	Seed *int `json:"seed,omitempty"`

	// ResponseFormat, when set, constrains output to a JSON schema.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// CompletionResponse contains the result of a completion.
type CompletionResponse struct {
	// Content is the generated text, expected to be a JSON document when a
	// ResponseFormat was supplied.
	Content string `json:"content"`

	// Model is the model that actually served the request.
	Model string `json:"model"`

	// StopReason indicates why generation stopped.
	StopReason string `json:"stop_reason,omitempty"`

	// Usage contains token counts.
	Usage UsageStats `json:"usage"`

	// Latency is the wall time of the call.
	Latency time.Duration `json:"latency"`
}

// UsageStats tracks token usage.
type UsageStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Error codes used by ProviderError.
const (
	ErrCodeTimeout       = "timeout"
	ErrCodeAuth          = "authentication_error"
	ErrCodeRateLimit     = "rate_limit"
	ErrCodeServerError   = "server_error"
	ErrCodeRefusal       = "refusal"
	ErrCodeEmptyResponse = "empty_response"
	ErrCodeUnavailable   = "unavailable"
)

// ProviderError is a typed error from a model provider. A refusal signal is
// modeled as an error with code ErrCodeRefusal; callers treat it like any
// other call failure.
type ProviderError struct {
	Provider   string `json:"provider"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Cause      error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d, code %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error (code %s): %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsRefusal reports whether the provider declined to answer.
func (e *ProviderError) IsRefusal() bool {
	return e.Code == ErrCodeRefusal
}

// NewProviderError creates a ProviderError.
func NewProviderError(provider, code, message string) *ProviderError {
	return &ProviderError{Provider: provider, Code: code, Message: message}
}

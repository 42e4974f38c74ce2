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

package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"itinera/platform/llm"
	"itinera/platform/shared/logger"
)

const (
	planTemperature = 0.4
	planMaxTokens   = 6000

	// DefaultCallTimeout bounds the single generation call. Plan authorship
	// has no deterministic substitute, so a timeout surfaces as a PlanError
	// rather than a fallback.
	DefaultCallTimeout = 90 * time.Second
)

// Generator authors trip plans through a schema-constrained model call.
// One shot, no retries: a failed generation is reported, never papered over.
type Generator struct {
	provider llm.Provider
	log      *logger.Logger
	model    string
	timeout  time.Duration
}

// GeneratorConfig configures a plan Generator.
type GeneratorConfig struct {
	Provider llm.Provider   // Required
	Logger   *logger.Logger // Optional: defaults to a "planner" component logger
	Model    string         // Optional: model override forwarded to the provider
	Timeout  time.Duration  // Optional: per-call timeout (default 90s)
}

// NewGenerator creates a plan generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Provider == nil {
		return nil, errors.New("plan generator requires a model provider")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.New("planner")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultCallTimeout
	}
	return &Generator{
		provider: cfg.Provider,
		log:      log,
		model:    cfg.Model,
		timeout:  timeout,
	}, nil
}

// Generate authors a normalized TripPlan for the given context. Failures
// return a *PlanError naming the failed stage: model_call for transport or
// provider errors, parse for malformed or schema-violating output, range for
// a day outside the trip's date bounds.
func (g *Generator) Generate(ctx context.Context, pc PlanContext) (*TripPlan, error) {
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	planCtx := buildPlanningContext(pc)
	completion, err := g.provider.Complete(callCtx, llm.CompletionRequest{
		SystemPrompt: planSystemPrompt,
		Prompt:       planCtx.prompt(),
		Model:        g.model,
		MaxTokens:    planMaxTokens,
		Temperature:  planTemperature,
		ResponseFormat: &llm.ResponseFormat{
			Name:   "TripPlan",
			Schema: tripPlanSchema,
			Strict: true,
		},
	})
	if err != nil {
		g.log.ErrorWithErr("", "plan model call failed", err, map[string]any{
			"origin":      pc.Origin,
			"destination": pc.Destination,
		})
		return nil, &PlanError{Stage: StageModelCall, Err: err}
	}

	plan, err := parsePlanContent(completion.Content)
	if err != nil {
		g.log.ErrorWithErr("", "plan output rejected", err, map[string]any{
			"model": completion.Model,
		})
		return nil, &PlanError{Stage: StageParse, Err: err}
	}

	normalized, err := Normalize(plan)
	if err != nil {
		var rangeErr *RangeError
		if errors.As(err, &rangeErr) {
			g.log.ErrorWithErr("", "plan contains out-of-range day", err, nil)
			return nil, &PlanError{Stage: StageRange, Err: err}
		}
		return nil, &PlanError{Stage: StageParse, Err: err}
	}

	if err := validateEventWindows(normalized); err != nil {
		g.log.ErrorWithErr("", "plan contains invalid event window", err, nil)
		return nil, &PlanError{Stage: StageParse, Err: err}
	}

	g.log.InfoWithDuration("", "trip plan generated", float64(time.Since(start).Milliseconds()), map[string]any{
		"model": completion.Model,
		"days":  len(normalized.Days),
	})
	return normalized, nil
}

// parsePlanContent validates the raw completion against the relaxed inbound
// schema and decodes it. Enum folding happens later in Normalize.
func parsePlanContent(content string) (*TripPlan, error) {
	if _, err := tripPlanInboundSchema.ValidateJSON([]byte(content)); err != nil {
		return nil, err
	}
	var plan TripPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode trip plan: %w", err)
	}
	return &plan, nil
}

// validateEventWindows rejects events whose end does not come after their
// start. Both instants must parse; the schema only guarantees string shape.
func validateEventWindows(plan *TripPlan) error {
	for _, day := range plan.Days {
		for _, ev := range day.Events {
			startAt, err := time.Parse(time.RFC3339, ev.Start)
			if err != nil {
				return fmt.Errorf("event %q has unparseable start %q", ev.Title, ev.Start)
			}
			endAt, err := time.Parse(time.RFC3339, ev.End)
			if err != nil {
				return fmt.Errorf("event %q has unparseable end %q", ev.Title, ev.End)
			}
			if !endAt.After(startAt) {
				return fmt.Errorf("event %q ends at or before its start", ev.Title)
			}
		}
	}
	return nil
}

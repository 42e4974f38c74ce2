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
	"fmt"
	"strings"
	"time"

	"itinera/platform/llm"
)

const cultureMaxTokens = 2000

// Tip categories form a closed vocabulary so the frontend can group and
// icon them.
var tipCategoryEnum = []string{
	"greeting_etiquette", "dress_code", "behavioral_norms", "taboos",
	"dining_etiquette", "tipping", "religion_holidays", "transport_customs",
}

// CultureTip is one actionable etiquette tip for a destination.
type CultureTip struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Tip      string `json:"tip"`
	Do       string `json:"do"`
	Avoid    string `json:"avoid"`
	Emoji    string `json:"emoji"`
}

// CultureGuide is a short etiquette briefing: a summary plus 3-4 tips.
type CultureGuide struct {
	Destination string       `json:"destination"`
	Summary     string       `json:"summary"`
	Tips        []CultureTip `json:"tips"`
}

const cultureSystemPrompt = `You are a concise travel etiquette expert.
Return STRICT JSON that matches the provided schema.
Focus on culture-specific, practical advice for short-term visitors.
Use neutral tone; avoid stereotyping; be respectful and factual.
If the destination is a city, bias to local norms; otherwise use country-level norms.
Keep each tip clear and actionable. Avoid repeating the same idea across tips.`

var cultureGuideSchema = &llm.Schema{
	Type:     "object",
	Required: []string{"destination", "summary", "tips"},
	Properties: map[string]*llm.Schema{
		"destination": {Type: "string"},
		"summary":     {Type: "string", Description: "1-2 sentence overview"},
		"tips": {
			Type:     "array",
			MinItems: 3,
			MaxItems: 4,
			Items: &llm.Schema{
				Type:     "object",
				Required: []string{"category", "title", "tip", "do", "avoid", "emoji"},
				Properties: map[string]*llm.Schema{
					"category": {Type: "string", Enum: tipCategoryEnum},
					"title":    {Type: "string", Description: "Short, 3-6 words"},
					"tip":      {Type: "string"},
					"do":       {Type: "string"},
					"avoid":    {Type: "string"},
					"emoji":    {Type: "string"},
				},
				AdditionalProperties: llm.NoExtraProps(),
			},
		},
	},
	AdditionalProperties: llm.NoExtraProps(),
}

// CultureGuide authors an etiquette briefing for a destination. Language
// defaults to "en". Like Generate, failures surface as *PlanError: model_call
// for provider errors, parse for output that violates the guide schema.
func (g *Generator) CultureGuide(ctx context.Context, destination, language string) (*CultureGuide, error) {
	start := time.Now()

	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, &PlanError{Stage: StageParse, Err: fmt.Errorf("destination is required")}
	}
	if language == "" {
		language = "en"
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Destination: %s\nLanguage: %s\nGenerate 3-4 tips only. Make 'summary' 1-2 sentences. Keep 'title' short (3-6 words).",
		destination, language,
	)
	completion, err := g.provider.Complete(callCtx, llm.CompletionRequest{
		SystemPrompt: cultureSystemPrompt,
		Prompt:       prompt,
		Model:        g.model,
		MaxTokens:    cultureMaxTokens,
		Temperature:  planTemperature,
		ResponseFormat: &llm.ResponseFormat{
			Name:   "CultureGuide",
			Schema: cultureGuideSchema,
			Strict: true,
		},
	})
	if err != nil {
		g.log.ErrorWithErr("", "culture guide model call failed", err, map[string]any{
			"destination": destination,
		})
		return nil, &PlanError{Stage: StageModelCall, Err: err}
	}

	guide, err := parseCultureContent(completion.Content)
	if err != nil {
		g.log.ErrorWithErr("", "culture guide output rejected", err, map[string]any{
			"model": completion.Model,
		})
		return nil, &PlanError{Stage: StageParse, Err: err}
	}

	g.log.InfoWithDuration("", "culture guide generated", float64(time.Since(start).Milliseconds()), map[string]any{
		"destination": guide.Destination,
		"tips":        len(guide.Tips),
	})
	return guide, nil
}

func parseCultureContent(content string) (*CultureGuide, error) {
	if _, err := cultureGuideSchema.ValidateJSON([]byte(content)); err != nil {
		return nil, err
	}
	var guide CultureGuide
	if err := json.Unmarshal([]byte(content), &guide); err != nil {
		return nil, fmt.Errorf("failed to decode culture guide: %w", err)
	}
	guide.Destination = strings.TrimSpace(guide.Destination)
	return &guide, nil
}

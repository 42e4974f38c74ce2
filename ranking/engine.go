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

package ranking

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
	rankTemperature = 0.2
	rankTopP        = 0.9
	rankSeed        = 42
	rankMaxTokens   = 4096

	// DefaultCallTimeout bounds a single model call. Timeouts are treated
	// like any other provider failure and trigger the heuristic fallback.
	DefaultCallTimeout = 45 * time.Second
)

var (
	errNoProvider = errors.New("no model provider configured")

	// errIncompleteRanking flags a payload that omitted input entities.
	// The subset invariant requires every input id to be covered, so a
	// partial ranking is treated like any other schema violation.
	errIncompleteRanking = errors.New("model ranking did not cover all input entities")
)

// Engine ranks canonical entities through a generative model, delegating to
// the heuristic scorer on any failure. Rank calls never hard-fail: degraded
// quality, never degraded availability.
type Engine struct {
	provider llm.Provider
	log      *logger.Logger
	model    string
	timeout  time.Duration
}

// EngineConfig configures a ranking Engine.
type EngineConfig struct {
	Provider llm.Provider   // Optional: nil means every call uses the heuristic path
	Logger   *logger.Logger // Optional: defaults to a "ranking" component logger
	Model    string         // Optional: model override forwarded to the provider
	Timeout  time.Duration  // Optional: per-call timeout (default 45s)
}

// NewEngine creates a ranking engine.
func NewEngine(cfg EngineConfig) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.New("ranking")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultCallTimeout
	}
	return &Engine{
		provider: cfg.Provider,
		log:      log,
		model:    cfg.Model,
		timeout:  timeout,
	}
}

// RankFlights ranks flight itineraries. On any model failure the heuristic
// scorer produces the response.
func (e *Engine) RankFlights(ctx context.Context, req FlightRankRequest) *RankResponse {
	flights := req.Flights
	if len(flights) > MaxFlights {
		flights = flights[:MaxFlights]
	}
	ids := make([]string, len(flights))
	entities := make([]any, len(flights))
	for i, f := range flights {
		ids[i] = f.ID
		entities[i] = flightSummary(f)
	}

	prompt := buildPrompt(req.PreferencesPrompt, nil, req.Locale, entities)
	resp, err := e.rankWithModel(ctx, "flights", req.SearchID, flightSystemPrompt, prompt, ids)
	if err != nil {
		e.logFallback(req.SearchID, "flights", err)
		trimmed := req
		trimmed.Flights = flights
		return HeuristicFlights(trimmed)
	}
	return resp
}

// RankHotels ranks hotel options with heuristic fallback.
func (e *Engine) RankHotels(ctx context.Context, req HotelRankRequest) *RankResponse {
	hotels := req.Hotels
	if len(hotels) > MaxHotels {
		hotels = hotels[:MaxHotels]
	}
	ids := make([]string, len(hotels))
	entities := make([]any, len(hotels))
	for i, h := range hotels {
		ids[i] = h.ID
		entities[i] = hotelSummary(h)
	}

	prompt := buildPrompt(req.PreferencesPrompt, nil, req.Locale, entities)
	resp, err := e.rankWithModel(ctx, "hotels", req.SearchID, hotelSystemPrompt, prompt, ids)
	if err != nil {
		e.logFallback(req.SearchID, "hotels", err)
		trimmed := req
		trimmed.Hotels = hotels
		return HeuristicHotels(trimmed)
	}
	return resp
}

// RankVenues ranks entertainment venues with heuristic fallback.
func (e *Engine) RankVenues(ctx context.Context, req VenueRankRequest) *RankResponse {
	venues := req.Venues
	if len(venues) > MaxVenues {
		venues = venues[:MaxVenues]
	}
	ids := make([]string, len(venues))
	entities := make([]any, len(venues))
	for i, v := range venues {
		ids[i] = v.PlaceID
		entities[i] = venueSummary(v)
	}

	prompt := buildPrompt(req.PreferencesPrompt, req.InterestTags, req.Locale, entities)
	resp, err := e.rankWithModel(ctx, "venues", req.SearchID, venueSystemPrompt, prompt, ids)
	if err != nil {
		e.logFallback(req.SearchID, "venues", err)
		trimmed := req
		trimmed.Venues = venues
		return HeuristicVenues(trimmed)
	}
	return resp
}

// rankWithModel performs the single-shot model call and validates the
// response. Any returned error routes the caller to the heuristic path.
func (e *Engine) rankWithModel(ctx context.Context, kind, searchID, system, prompt string, ids []string) (*RankResponse, error) {
	if e.provider == nil {
		return nil, errNoProvider
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no entities to rank")
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	seed := rankSeed
	completion, err := e.provider.Complete(callCtx, llm.CompletionRequest{
		SystemPrompt: system,
		Prompt:       prompt,
		Model:        e.model,
		MaxTokens:    rankMaxTokens,
		Temperature:  rankTemperature,
		TopP:         rankTopP,
		Seed:         &seed,
		ResponseFormat: &llm.ResponseFormat{
			Name:   "RankResult",
			Schema: rankResponseSchema,
			Strict: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	resp, err := parseRankContent(completion.Content, searchID, ids)
	if err != nil {
		return nil, err
	}
	resp.Meta.UsedModel = completion.Model
	e.log.Info("", fmt.Sprintf("model ranking succeeded for %s", kind), map[string]any{
		"search_id": searchID,
		"entities":  len(ids),
		"model":     completion.Model,
	})
	return resp, nil
}

// rankPayload mirrors rankResponseSchema for typed decoding.
type rankPayload struct {
	OrderedIDs []string `json:"ordered_ids"`
	Items      []struct {
		ID             string   `json:"id"`
		Score          float64  `json:"score"`
		Title          string   `json:"title"`
		RationaleShort string   `json:"rationale_short"`
		ProsKeywords   []string `json:"pros_keywords"`
		ConsKeywords   []string `json:"cons_keywords"`
		Tags           []string `json:"tags"`
	} `json:"items"`
	Meta struct {
		UsedModel     string   `json:"used_model"`
		Deterministic bool     `json:"deterministic"`
		Notes         []string `json:"notes"`
	} `json:"meta"`
}

// parseRankContent validates the model output against the response schema
// and the subset invariant. Items referencing ids outside the input set are
// filtered out rather than trusted; a payload that then fails to cover every
// input id is rejected so the heuristic path can produce a complete ranking.
func parseRankContent(content, searchID string, inputIDs []string) (*RankResponse, error) {
	if _, err := rankResponseSchema.ValidateJSON([]byte(content)); err != nil {
		return nil, err
	}

	var payload rankPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode ranking payload: %w", err)
	}

	inputOrder := make(map[string]int, len(inputIDs))
	for i, id := range inputIDs {
		inputOrder[id] = i
	}

	seen := make(map[string]bool, len(inputIDs))
	var items []RankItem
	for _, item := range payload.Items {
		if _, ok := inputOrder[item.ID]; !ok {
			// Invented id: never surface it.
			continue
		}
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		items = append(items, RankItem{
			ID:             item.ID,
			Score:          clampScore(item.Score),
			Title:          capString(item.Title, maxTitleLen),
			RationaleShort: capString(item.RationaleShort, maxRationaleLen),
			ProsKeywords:   capStrings(item.ProsKeywords, maxKeywords),
			ConsKeywords:   capStrings(item.ConsKeywords, maxKeywords),
			Tags:           capStrings(item.Tags, maxKeywords),
		})
	}

	if len(items) != len(inputIDs) {
		return nil, errIncompleteRanking
	}

	return &RankResponse{
		SearchID:   searchID,
		OrderedIDs: orderByScore(items, inputOrder),
		Items:      items,
		Meta: RankMeta{
			Deterministic: payload.Meta.Deterministic,
			Notes:         payload.Meta.Notes,
		},
	}, nil
}

func (e *Engine) logFallback(searchID, kind string, err error) {
	e.log.Warn("", "model ranking failed, using heuristic fallback", map[string]any{
		"search_id": searchID,
		"kind":      kind,
		"error":     err.Error(),
	})
}

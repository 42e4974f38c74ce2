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

// Package ranking scores and orders canonical travel entities. The AI
// engine asks a generative model for a schema-constrained ranking and falls
// back to the deterministic heuristic scorer on any failure, so a ranking
// call never hard-fails.
package ranking

import (
	"sort"

	"itinera/platform/travel"
)

// Entity-count caps applied before ranking. Truncation is a deliberate
// cost-control measure; callers needing to rank more entities pre-filter.
const (
	MaxFlights = 30
	MaxHotels  = 30
	MaxVenues  = 15
)

// Caps on the generated text fields, mirrored in the response schema.
const (
	maxTitleLen     = 140
	maxRationaleLen = 240
	maxKeywords     = 8
)

// HeuristicModelName is the meta.used_model value reported whenever the
// deterministic fallback produced the response.
const HeuristicModelName = "heuristic_fallback"

// Locale carries presentation preferences forwarded to the model.
type Locale struct {
	Language string `json:"hl"`
	Currency string `json:"currency"`
	Timezone string `json:"tz,omitempty"`
}

// FlightRankRequest asks for a ranking of flight itineraries.
type FlightRankRequest struct {
	SearchID          string             `json:"search_id"`
	PreferencesPrompt string             `json:"preferences_prompt"`
	Flights           []travel.Itinerary `json:"flights"`
	Locale            *Locale            `json:"locale,omitempty"`
}

// HotelRankRequest asks for a ranking of hotel options.
type HotelRankRequest struct {
	SearchID          string               `json:"search_id"`
	PreferencesPrompt string               `json:"preferences_prompt"`
	Hotels            []travel.HotelOption `json:"hotels"`
	Locale            *Locale              `json:"locale,omitempty"`
}

// VenueRankRequest asks for a ranking of entertainment venues.
type VenueRankRequest struct {
	SearchID          string         `json:"search_id"`
	PreferencesPrompt string         `json:"preferences_prompt"`
	InterestTags      []string       `json:"interest_tags,omitempty"`
	Venues            []travel.Venue `json:"venues"`
	Locale            *Locale        `json:"locale,omitempty"`
}

// RankItem is one ranked entity. ID always references an input entity.
type RankItem struct {
	ID             string   `json:"id"`
	Score          float64  `json:"score"`
	Title          string   `json:"title"`
	RationaleShort string   `json:"rationale_short"`
	ProsKeywords   []string `json:"pros_keywords"`
	ConsKeywords   []string `json:"cons_keywords"`
	Tags           []string `json:"tags,omitempty"`
}

// RankMeta describes how a ranking was produced.
type RankMeta struct {
	UsedModel     string   `json:"used_model"`
	Deterministic bool     `json:"deterministic"`
	Notes         []string `json:"notes,omitempty"`
}

// RankResponse is the result of a ranking call.
//
// Invariants: OrderedIDs is a permutation of the (possibly truncated) input
// ids, sorted by score descending with ties broken by input order, and every
// item score lies in [0, 1].
type RankResponse struct {
	SearchID   string     `json:"search_id"`
	OrderedIDs []string   `json:"ordered_ids"`
	Items      []RankItem `json:"items"`
	Meta       RankMeta   `json:"meta"`
}

// orderByScore rebuilds OrderedIDs from the items: score descending, ties
// broken by position in the original input order.
func orderByScore(items []RankItem, inputOrder map[string]int) []string {
	sorted := make([]RankItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return inputOrder[sorted[i].ID] < inputOrder[sorted[j].ID]
	})
	ids := make([]string, len(sorted))
	for i, item := range sorted {
		ids[i] = item.ID
	}
	return ids
}

func capStrings(vals []string, n int) []string {
	if len(vals) > n {
		return vals[:n]
	}
	return vals
}

func capString(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

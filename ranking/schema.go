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
	"encoding/json"
	"time"

	"itinera/platform/llm"
	"itinera/platform/travel"
)

// rankResponseSchema is the structured-output contract shared by every
// ranking kind. additionalProperties is disallowed at every object level so
// the model cannot smuggle extra fields. The schema is read-only and
// initialized once.
var rankResponseSchema = &llm.Schema{
	Type:     "object",
	Required: []string{"ordered_ids", "items", "meta"},
	Properties: map[string]*llm.Schema{
		"ordered_ids": {
			Type:     "array",
			Items:    &llm.Schema{Type: "string"},
			MinItems: 1,
		},
		"items": {
			Type: "array",
			Items: &llm.Schema{
				Type:     "object",
				Required: []string{"id", "score", "title", "rationale_short", "pros_keywords", "cons_keywords"},
				Properties: map[string]*llm.Schema{
					"id":              {Type: "string"},
					"score":           {Type: "number", Minimum: llm.Float(0), Maximum: llm.Float(1)},
					"title":           {Type: "string", MaxLength: maxTitleLen},
					"rationale_short": {Type: "string", MaxLength: maxRationaleLen},
					"pros_keywords":   {Type: "array", Items: &llm.Schema{Type: "string"}, MaxItems: maxKeywords},
					"cons_keywords":   {Type: "array", Items: &llm.Schema{Type: "string"}, MaxItems: maxKeywords},
					"tags":            {Type: "array", Items: &llm.Schema{Type: "string"}, MaxItems: maxKeywords},
				},
				AdditionalProperties: llm.NoExtraProps(),
			},
		},
		"meta": {
			Type:     "object",
			Required: []string{"used_model", "deterministic", "notes"},
			Properties: map[string]*llm.Schema{
				"used_model":    {Type: "string"},
				"deterministic": {Type: "boolean"},
				"notes":         {Type: "array", Items: &llm.Schema{Type: "string"}},
			},
			AdditionalProperties: llm.NoExtraProps(),
		},
	},
	AdditionalProperties: llm.NoExtraProps(),
}

const flightSystemPrompt = `You are a flight concierge expert. Rank flight itineraries based on user preferences.

Rules:
1. Obey hard constraints (budget, max stops, date/time windows)
2. Optimize for user's stated priorities (price, time, comfort, etc.)
3. Penalize risky connections (<70 min domestic, <90 min international unless same terminal)
4. Consider overnight flights (red-eyes) negatively unless user specifically wants them
5. Add concise, relevant pros/cons keywords
6. Never invent prices, durations, or flight details
7. Score from 0.0 to 1.0 where 1.0 is perfect match for user preferences

Return ONLY valid JSON matching the exact schema.`

const hotelSystemPrompt = `You are an expert hotel booking advisor. Rank hotels based on user preferences.

Consider: location, value for money, rating and review volume, amenities,
star class, cancellation flexibility, and any specific needs the user states.
Never invent prices, ratings, or amenities. Score from 0.0 to 1.0.

Return ONLY valid JSON matching the exact schema.`

const venueSystemPrompt = `You are a local entertainment expert. Rank venues based on user preferences and interests.

Consider: relevance to stated interests, rating and review volume, price
tier, and location. Never invent ratings or details. Score from 0.0 to 1.0.

Return ONLY valid JSON matching the exact schema.`

// promptPayload is the serialized user content sent to the model.
type promptPayload struct {
	PreferencesPrompt string  `json:"preferences_prompt"`
	InterestTags      []string `json:"interest_tags,omitempty"`
	Locale            Locale  `json:"locale"`
	Entities          []any   `json:"entities"`
}

func buildPrompt(preferences string, tags []string, locale *Locale, entities []any) string {
	loc := Locale{Language: "en", Currency: "USD"}
	if locale != nil {
		loc = *locale
	}
	payload := promptPayload{
		PreferencesPrompt: preferences,
		InterestTags:      tags,
		Locale:            loc,
		Entities:          entities,
	}
	out, _ := json.MarshalIndent(payload, "", "  ")
	return string(out)
}

// Compact entity summaries keep prompts small; only ranking-relevant fields
// are serialized.

func flightSummary(f travel.Itinerary) any {
	legs := make([]map[string]any, 0, len(f.Legs))
	for _, leg := range f.Legs {
		legs = append(legs, map[string]any{
			"dep_iata":     leg.DepIATA,
			"dep_time":     leg.DepTime.Format(time.RFC3339),
			"arr_iata":     leg.ArrIATA,
			"arr_time":     leg.ArrTime.Format(time.RFC3339),
			"marketing":    leg.Marketing,
			"flight_no":    leg.FlightNo,
			"duration_min": leg.DurationMin,
		})
	}
	summary := map[string]any{
		"id":                 f.ID,
		"price":              map[string]any{"amount": f.Price.Amount, "currency": f.Price.Currency},
		"total_duration_min": f.TotalDurationMin,
		"stops":              f.Stops,
		"legs":               legs,
	}
	if f.EmissionsKg != nil {
		summary["emissions_kg"] = *f.EmissionsKg
	}
	if len(f.LayoversMin) > 0 {
		summary["layovers_min"] = f.LayoversMin
	}
	return summary
}

func hotelSummary(h travel.HotelOption) any {
	return map[string]any{
		"id":                h.ID,
		"name":              h.Name,
		"location":          h.Location,
		"price_per_night":   h.PricePerNight,
		"total_price":       h.TotalPrice,
		"currency":          h.Currency,
		"rating":            h.Rating,
		"reviews_count":     h.ReviewsCount,
		"hotel_class":       h.HotelClass,
		"property_type":     h.PropertyType,
		"amenities":         h.Amenities,
		"free_cancellation": h.FreeCancellation,
	}
}

func venueSummary(v travel.Venue) any {
	return map[string]any{
		"id":         v.PlaceID,
		"title":      v.Title,
		"rating":     v.Rating,
		"reviews":    v.Reviews,
		"price_tier": v.PriceTier,
		"type":       v.Type,
		"types":      v.Types,
		"address":    v.Address,
	}
}

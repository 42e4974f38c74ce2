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
	"encoding/json"
	"fmt"
	"strings"

	"itinera/platform/llm"
)

// planSystemPrompt enumerates the closed vocabularies and the date
// containment requirement. The same constraints are enforced again after
// parsing; the prompt is the first line of defense, not the last.
const planSystemPrompt = `You are a meticulous human-quality travel planner.
Generate a bespoke daily plan (no rigid templates), respecting user preferences, wake windows, city logistics, jet lag, check-in windows, mealtimes, and rest. All days MUST be within [start_date, end_date].
Enums:
- transport_reco: walk, bus, metro, tram, train, car, taxi, ferry, bike, rideshare, plane, other
- priority: essential, nice_to_have, optional
- diet: halal, vegetarian, gluten_free, no_restrictions
Output MUST conform to the TripPlan schema exactly.`

var transportEnum = []string{
	TransportWalk, TransportBus, TransportMetro, TransportTram,
	TransportTrain, TransportCar, TransportTaxi, TransportFerry,
	TransportBike, TransportRideshare, TransportPlane, TransportOther,
}

var priorityEnum = []string{PriorityEssential, PriorityNiceToHave, PriorityOptional}

// makeEventSchema builds the event schema. The strict variant pins transport
// and priority to their closed vocabularies and goes out on the request; the
// relaxed variant accepts any string for the fields Normalize folds, so model
// synonyms ("uber", "must") survive parsing and reach the synonym tables.
func makeEventSchema(strict bool) *llm.Schema {
	transport := &llm.Schema{Type: "string"}
	priority := &llm.Schema{Type: "string"}
	if strict {
		transport.Enum = transportEnum
		priority.Enum = priorityEnum
	}
	return &llm.Schema{
		Type:     "object",
		Required: []string{"title", "start", "end"},
		Properties: map[string]*llm.Schema{
			"title":           {Type: "string"},
			"start":           {Type: "string", Description: "ISO 8601 datetime with timezone, e.g. 2025-12-14T09:00:00+09:00"},
			"end":             {Type: "string", Description: "ISO 8601 datetime with timezone, e.g. 2025-12-14T10:00:00+09:00"},
			"location_name":   {Type: "string"},
			"address":         {Type: "string"},
			"notes":           {Type: "string"},
			"tags":            {Type: "array", Items: &llm.Schema{Type: "string"}},
			"transport_reco":  transport,
			"transport_notes": {Type: "string"},
			"priority":        priority,
		},
		AdditionalProperties: llm.NoExtraProps(),
	}
}

func makeTripPlanSchema(strict bool) *llm.Schema {
	event := makeEventSchema(strict)
	diet := &llm.Schema{Type: "string"}
	if strict {
		diet.Enum = []string{"halal", "vegetarian", "gluten_free", "no_restrictions"}
	}
	return &llm.Schema{
		Type:     "object",
		Required: []string{"title", "timezone", "start_date", "end_date", "days"},
		Properties: map[string]*llm.Schema{
			"title":      {Type: "string"},
			"timezone":   {Type: "string"},
			"start_date": {Type: "string", Description: "Date YYYY-MM-DD in trip timezone"},
			"end_date":   {Type: "string", Description: "Date YYYY-MM-DD in trip timezone"},
			"origin":     {Type: "string"},
			"destinations": {
				Type:  "array",
				Items: &llm.Schema{Type: "string"},
			},
			"adults":         {Type: "integer", Minimum: llm.Float(0)},
			"children":       {Type: "integer", Minimum: llm.Float(0)},
			"budget_tier":    {Type: "string", Enum: []string{BudgetTierBudget, BudgetTierMid, BudgetTierLuxury}},
			"preferences":    {Type: "array", Items: &llm.Schema{Type: "string"}},
			"diet":           {Type: "array", Items: diet},
			"avoid_patterns": {Type: "boolean"},
			"pacing":         {Type: "string", Enum: []string{"chill", "balanced", "intense"}},
			"wake_window":    {Type: "array", Items: &llm.Schema{Type: "integer"}, MinItems: 2, MaxItems: 2},
			"hard_events":    {Type: "array", Items: event},
			"days": {
				Type: "array",
				Items: &llm.Schema{
					Type:     "object",
					Required: []string{"date", "events"},
					Properties: map[string]*llm.Schema{
						"date":    {Type: "string", Description: "Date YYYY-MM-DD in trip timezone"},
						"summary": {Type: "string"},
						"city":    {Type: "string"},
						"country": {Type: "string"},
						"events":  {Type: "array", Items: event},
					},
					AdditionalProperties: llm.NoExtraProps(),
				},
			},
		},
		AdditionalProperties: llm.NoExtraProps(),
	}
}

// tripPlanSchema is the structured-output contract sent with the request.
// Read-only, initialized once.
var tripPlanSchema = makeTripPlanSchema(true)

// tripPlanInboundSchema validates what actually came back. Enum fields that
// Normalize owns are unconstrained here: rejecting "uber" at parse time would
// make the synonym tables unreachable.
var tripPlanInboundSchema = makeTripPlanSchema(false)

// planningContext is the serialized user content for the generation call.
type planningContext struct {
	Title        string      `json:"title"`
	Timezone     string      `json:"timezone"`
	StartDate    string      `json:"start_date"`
	EndDate      string      `json:"end_date"`
	Origin       string      `json:"origin"`
	Destinations []string    `json:"destinations"`
	Adults       int         `json:"adults"`
	Children     int         `json:"children"`
	BudgetTier   string      `json:"budget_tier"`
	Preferences  []string    `json:"preferences"`
	Notes        string      `json:"notes"`
	HardEvents   []TripEvent `json:"hard_events"`
}

// buildPlanningContext folds the caller's trip details, selected hotel, and
// selected venues into the model request. Hotel and venue selections travel
// as notes so the model weaves them into the schedule rather than treating
// them as fixed events.
func buildPlanningContext(pc PlanContext) planningContext {
	tz := pc.Timezone
	if tz == "" {
		tz = "UTC"
	}

	notes := []string{}
	if pc.Notes != "" {
		notes = append(notes, pc.Notes)
	}
	if pc.Hotel != nil {
		var sb strings.Builder
		sb.WriteString("Hotel: " + pc.Hotel.Name)
		if pc.Hotel.Location != "" {
			sb.WriteString(" in " + pc.Hotel.Location)
		}
		sb.WriteString(".")
		if pc.Hotel.CheckIn != "" || pc.Hotel.CheckOut != "" {
			sb.WriteString(" Check-in: " + pc.Hotel.CheckIn + ", Check-out: " + pc.Hotel.CheckOut + ".")
		}
		sb.WriteString(" Plan activities around this accommodation.")
		notes = append(notes, sb.String())
	}
	if len(pc.Venues) > 0 {
		var sb strings.Builder
		sb.WriteString("Selected entertainment venues (user wants to visit these):\n")
		for i, v := range pc.Venues {
			fmt.Fprintf(&sb, "%d. %s", i+1, v.Title)
			if v.Type != "" {
				fmt.Fprintf(&sb, " (%s)", v.Type)
			}
			if v.Address != "" {
				sb.WriteString("\n   Address: " + v.Address)
			}
			if len(v.Highlights) > 0 {
				sb.WriteString("\n   Highlights: " + strings.Join(capList(v.Highlights, 4), ", "))
			}
			sb.WriteString("\n")
		}
		notes = append(notes, sb.String())
	}

	hardEvents := pc.HardEvents
	if hardEvents == nil {
		hardEvents = []TripEvent{}
	}

	return planningContext{
		Title:        "Trip from " + pc.Origin + " to " + pc.Destination,
		Timezone:     tz,
		StartDate:    pc.StartDate,
		EndDate:      pc.EndDate,
		Origin:       pc.Origin,
		Destinations: []string{pc.Destination},
		Adults:       pc.Adults,
		Children:     pc.Children,
		BudgetTier:   pc.BudgetTier(),
		Preferences:  pc.Preferences,
		Notes:        strings.Join(notes, "\n\n"),
		HardEvents:   hardEvents,
	}
}

func (c planningContext) prompt() string {
	out, _ := json.Marshal(c)
	return "Produce TripPlan JSON for this request.\n" + string(out)
}

func capList(vals []string, n int) []string {
	if len(vals) > n {
		return vals[:n]
	}
	return vals
}

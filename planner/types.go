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

// Package planner generates day-by-day trip plans through a schema-
// constrained model call and normalizes the result into closed vocabularies.
// Unlike ranking there is no heuristic substitute for itinerary authorship,
// so plan generation surfaces failures to the caller.
package planner

import (
	"fmt"

	"itinera/platform/travel"
)

// Closed transport vocabulary for TripEvent.TransportReco.
const (
	TransportWalk      = "walk"
	TransportBus       = "bus"
	TransportMetro     = "metro"
	TransportTram      = "tram"
	TransportTrain     = "train"
	TransportCar       = "car"
	TransportTaxi      = "taxi"
	TransportFerry     = "ferry"
	TransportBike      = "bike"
	TransportRideshare = "rideshare"
	TransportPlane     = "plane"
	TransportOther     = "other"
)

// Closed priority vocabulary for TripEvent.Priority.
const (
	PriorityEssential  = "essential"
	PriorityNiceToHave = "nice_to_have"
	PriorityOptional   = "optional"
)

// Budget tiers inferred from the caller's maximum budget.
const (
	BudgetTierBudget = "budget"
	BudgetTierMid    = "mid"
	BudgetTierLuxury = "luxury"
)

// TripEvent is a single scheduled item in a day. Start and End are ISO 8601
// instants with timezone offsets; End must be after Start.
type TripEvent struct {
	Title          string   `json:"title"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	LocationName   string   `json:"location_name,omitempty"`
	Address        string   `json:"address,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	TransportReco  string   `json:"transport_reco,omitempty"`
	TransportNotes string   `json:"transport_notes,omitempty"`
	Priority       string   `json:"priority"`
}

// TripDay is one day of the plan. Events keep the order the model emitted;
// chronological ordering within a day is caller-visible but not enforced
// here.
type TripDay struct {
	Date    string      `json:"date"`
	Summary string      `json:"summary,omitempty"`
	City    string      `json:"city,omitempty"`
	Country string      `json:"country,omitempty"`
	Events  []TripEvent `json:"events"`
}

// TripPlan is the full generated itinerary.
// Invariant: every TripDay.Date lies within [StartDate, EndDate].
type TripPlan struct {
	Title         string      `json:"title"`
	Timezone      string      `json:"timezone"`
	StartDate     string      `json:"start_date"`
	EndDate       string      `json:"end_date"`
	Origin        string      `json:"origin,omitempty"`
	Destinations  []string    `json:"destinations"`
	Adults        int         `json:"adults"`
	Children      int         `json:"children"`
	BudgetTier    string      `json:"budget_tier"`
	Preferences   []string    `json:"preferences,omitempty"`
	Diet          []string    `json:"diet,omitempty"`
	AvoidPatterns bool        `json:"avoid_patterns"`
	Pacing        string      `json:"pacing"`
	WakeWindow    []int       `json:"wake_window"`
	HardEvents    []TripEvent `json:"hard_events,omitempty"`
	Days          []TripDay   `json:"days"`
}

// HotelStay describes the accommodation the traveler already selected.
type HotelStay struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	CheckIn  string `json:"check_in,omitempty"`
	CheckOut string `json:"check_out,omitempty"`
}

// SelectedVenue is an entertainment venue the traveler wants included.
type SelectedVenue struct {
	Title      string   `json:"title"`
	Type       string   `json:"type,omitempty"`
	Address    string   `json:"address,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

// PlanContext carries everything the generator needs to author a plan.
// Hard events (for example a booked flight) are non-negotiable and injected
// into the request with essential priority.
type PlanContext struct {
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Timezone    string          `json:"timezone,omitempty"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Adults      int             `json:"adults"`
	Children    int             `json:"children"`
	BudgetMax   float64         `json:"budget_max,omitempty"`
	Preferences []string        `json:"preferences,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	HardEvents  []TripEvent     `json:"hard_events,omitempty"`
	Hotel       *HotelStay      `json:"hotel,omitempty"`
	Venues      []SelectedVenue `json:"venues,omitempty"`
}

// BudgetTier maps the maximum budget onto a tier: below 1000 is budget,
// below 5000 is mid, anything else luxury. Zero (unset) defaults to mid.
func (c PlanContext) BudgetTier() string {
	switch {
	case c.BudgetMax == 0:
		return BudgetTierMid
	case c.BudgetMax < 1000:
		return BudgetTierBudget
	case c.BudgetMax < 5000:
		return BudgetTierMid
	default:
		return BudgetTierLuxury
	}
}

// HardFlightEvent builds the fixed plan event for an already-booked flight
// itinerary. The event spans the first departure to the last arrival.
func HardFlightEvent(it travel.Itinerary) (TripEvent, bool) {
	if len(it.Legs) == 0 {
		return TripEvent{}, false
	}
	first := it.Legs[0]
	last := it.Legs[len(it.Legs)-1]
	return TripEvent{
		Title:         fmt.Sprintf("Flight %s", first.FlightNo),
		Start:         first.DepTime.Format("2006-01-02T15:04:05-07:00"),
		End:           last.ArrTime.Format("2006-01-02T15:04:05-07:00"),
		LocationName:  fmt.Sprintf("%s to %s", first.DepIATA, last.ArrIATA),
		Notes:         fmt.Sprintf("Flight from %s to %s", first.DepIATA, last.ArrIATA),
		TransportReco: TransportPlane,
		Priority:      PriorityEssential,
	}, true
}

// Stage identifies where plan generation failed.
type Stage string

const (
	StageModelCall Stage = "model_call"
	StageParse     Stage = "parse"
	StageRange     Stage = "range"
)

// PlanError is the caller-visible failure from plan generation. It names the
// failed stage so the caller can decide whether to retry or report.
type PlanError struct {
	Stage Stage
	Err   error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan generation failed at %s: %v", e.Stage, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// RangeError reports a generated day outside the requested date bounds.
// It is never silently corrected: an out-of-range day means the schema
// contract was violated, and clamping would drop user-visible content.
type RangeError struct {
	Date      string
	StartDate string
	EndDate   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("day %s is outside the trip range [%s, %s]", e.Date, e.StartDate, e.EndDate)
}

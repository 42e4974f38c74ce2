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

package api

import (
	"context"

	"itinera/platform/planner"
	"itinera/platform/providers/serpapi"
	"itinera/platform/ranking"
	"itinera/platform/travel"
)

// Searcher fetches canonical search results from the travel data provider.
type Searcher interface {
	SearchFlights(ctx context.Context, q serpapi.FlightQuery) (*travel.FlightSearchResult, error)
	SearchHotels(ctx context.Context, q serpapi.HotelQuery) (*travel.HotelSearchResult, error)
	SearchVenues(ctx context.Context, q serpapi.VenueQuery) (*travel.VenueSearchResult, error)
}

// Ranker orders canonical entities. Implementations never hard-fail.
type Ranker interface {
	RankFlights(ctx context.Context, req ranking.FlightRankRequest) *ranking.RankResponse
	RankHotels(ctx context.Context, req ranking.HotelRankRequest) *ranking.RankResponse
	RankVenues(ctx context.Context, req ranking.VenueRankRequest) *ranking.RankResponse
}

// PlanGenerator authors trip plans and culture guides.
type PlanGenerator interface {
	Generate(ctx context.Context, pc planner.PlanContext) (*planner.TripPlan, error)
	CultureGuide(ctx context.Context, destination, language string) (*planner.CultureGuide, error)
}

// FlightSearchRequest is the flight search request body.
type FlightSearchRequest struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	OutboundDate string `json:"outbound_date"`
	ReturnDate   string `json:"return_date,omitempty"`
	Adults       int    `json:"adults,omitempty"`
	Children     int    `json:"children,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Language     string `json:"language,omitempty"`
}

// HotelSearchRequest is the hotel search request body.
type HotelSearchRequest struct {
	Location     string `json:"location"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Adults       int    `json:"adults,omitempty"`
	Children     int    `json:"children,omitempty"`
	Currency     string `json:"currency,omitempty"`
	Language     string `json:"language,omitempty"`
}

// VenueSearchRequest is the venue search request body.
type VenueSearchRequest struct {
	Destination string   `json:"destination"`
	Query       string   `json:"query,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
}

// RankRequest asks for a ranking of a previously returned search. The search
// id must reference a cached search; preferences steer the model ranking.
type RankRequest struct {
	SearchID          string          `json:"search_id"`
	PreferencesPrompt string          `json:"preferences_prompt,omitempty"`
	InterestTags      []string        `json:"interest_tags,omitempty"`
	Locale            *ranking.Locale `json:"locale,omitempty"`
}

// PlanRequest is the plan generation request body.
type PlanRequest struct {
	UserID  string              `json:"user_id,omitempty"`
	Context planner.PlanContext `json:"context"`
}

// CultureGuideRequest is the culture guide request body.
type CultureGuideRequest struct {
	Destination string `json:"destination"`
	Language    string `json:"language,omitempty"`
}

// PlanResponse wraps a generated plan with its storage id.
type PlanResponse struct {
	PlanID string            `json:"plan_id"`
	Plan   *planner.TripPlan `json:"plan"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

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

// Package travel defines the canonical travel entities (flight itineraries,
// hotel options, entertainment venues) and the canonicalizers that transform
// raw third-party provider payloads into them. Canonicalizers are pure
// functions of their input: no network calls, no shared state.
package travel

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TripType identifies whether an itinerary covers one or both directions.
type TripType string

const (
	TripTypeOneWay    TripType = "ONE_WAY"
	TripTypeRoundTrip TripType = "ROUND_TRIP"
)

// Price is a monetary amount in a specific currency.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// FlightLeg is a single flight segment within an itinerary.
// Invariant: ArrTime is strictly after DepTime.
type FlightLeg struct {
	DepIATA     string    `json:"dep_iata"`
	DepTime     time.Time `json:"dep_time"`
	ArrIATA     string    `json:"arr_iata"`
	ArrTime     time.Time `json:"arr_time"`
	Marketing   string    `json:"marketing"`
	Operating   string    `json:"operating,omitempty"`
	FlightNo    string    `json:"flight_no"`
	DurationMin int       `json:"duration_min"`
}

// Itinerary is a canonical flight itinerary.
//
// Invariants: Stops == len(Legs)-1, and TotalDurationMin is at least the sum
// of the leg durations. The ID is a stable hash of the ordered legs plus the
// price, so repeated searches produce identical IDs for identical itineraries.
type Itinerary struct {
	ID               string            `json:"id"`
	Type             TripType          `json:"type"`
	Price            Price             `json:"price"`
	TotalDurationMin int               `json:"total_duration_min"`
	Stops            int               `json:"stops"`
	EmissionsKg      *int              `json:"emissions_kg,omitempty"`
	LayoversMin      []int             `json:"layovers_min,omitempty"`
	Legs             []FlightLeg       `json:"legs"`
	Tokens           map[string]string `json:"tokens,omitempty"`
}

// HotelOption is a canonical hotel search result.
type HotelOption struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Location         string   `json:"location"`
	PricePerNight    float64  `json:"price_per_night"`
	TotalPrice       float64  `json:"total_price"`
	Currency         string   `json:"currency"`
	Rating           float64  `json:"rating,omitempty"`
	ReviewsCount     int      `json:"reviews_count,omitempty"`
	HotelClass       int      `json:"hotel_class,omitempty"`
	PropertyType     string   `json:"property_type,omitempty"`
	Amenities        []string `json:"amenities,omitempty"`
	FreeCancellation bool     `json:"free_cancellation"`
	Thumbnail        string   `json:"thumbnail,omitempty"`
	Link             string   `json:"link,omitempty"`
}

// GPSCoordinates is a latitude/longitude pair.
type GPSCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is a canonical entertainment venue from a maps provider.
type Venue struct {
	PlaceID     string          `json:"place_id"`
	Title       string          `json:"title"`
	Rating      float64         `json:"rating,omitempty"`
	Reviews     int             `json:"reviews,omitempty"`
	PriceTier   string          `json:"price_tier,omitempty"`
	Type        string          `json:"type,omitempty"`
	Types       []string        `json:"types,omitempty"`
	Address     string          `json:"address,omitempty"`
	GPS         *GPSCoordinates `json:"gps,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Website     string          `json:"website,omitempty"`
	Description string          `json:"description,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
}

// PriceLevel classifies how the current lowest price compares to typical.
type PriceLevel string

const (
	PriceLevelLow     PriceLevel = "low"
	PriceLevelTypical PriceLevel = "typical"
	PriceLevelHigh    PriceLevel = "high"
)

// SearchInsights summarizes provider-reported price intelligence.
type SearchInsights struct {
	Lowest       float64    `json:"lowest"`
	TypicalRange []float64  `json:"typical_range,omitempty"`
	Level        PriceLevel `json:"level,omitempty"`
}

// FlightSearchResult is the canonical output of a flight search.
type FlightSearchResult struct {
	SearchID    string          `json:"search_id"`
	Currency    string          `json:"currency"`
	Insights    *SearchInsights `json:"insights,omitempty"`
	Itineraries []Itinerary     `json:"itineraries"`
	// Skipped counts provider records dropped during canonicalization.
	// Malformed records are expected from best-effort feeds and are not errors.
	Skipped int `json:"-"`
}

// HotelSearchResult is the canonical output of a hotel search.
type HotelSearchResult struct {
	SearchID string        `json:"search_id"`
	Currency string        `json:"currency"`
	Hotels   []HotelOption `json:"hotels"`
	Skipped  int           `json:"-"`
}

// VenueSearchResult is the canonical output of a venue search.
type VenueSearchResult struct {
	SearchID string  `json:"search_id"`
	Query    string  `json:"query,omitempty"`
	Venues   []Venue `json:"venues"`
	Skipped  int     `json:"-"`
}

// stableHash returns the first n hex characters of an MD5 digest.
// MD5 is used purely as a cheap stable fingerprint, not for security.
func stableHash(s string, n int) string {
	sum := md5.Sum([]byte(s))
	h := hex.EncodeToString(sum[:])
	if n > 0 && n < len(h) {
		return h[:n]
	}
	return h
}

// ItineraryID computes the stable, idempotent identifier for an itinerary:
// a hash of the ordered (departure, arrival, flight number, departure time)
// tuples plus the price. Identical itineraries across repeated searches hash
// to the same ID, which enables downstream caching and dedup.
func ItineraryID(legs []FlightLeg, price Price) string {
	var sb strings.Builder
	for i, leg := range legs {
		if i > 0 {
			sb.WriteByte('_')
		}
		sb.WriteString(leg.DepIATA)
		sb.WriteString(leg.ArrIATA)
		sb.WriteString(leg.FlightNo)
		sb.WriteString(leg.DepTime.Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "_%g_%s", price.Amount, price.Currency)
	return stableHash(sb.String(), 16)
}

// SearchID computes a stable 12-character identifier from the given search
// parameter values, joined in order.
func SearchID(parts ...string) string {
	return stableHash(strings.Join(parts, "_"), 12)
}

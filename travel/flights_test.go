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

package travel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leg(depIATA, depTime, arrIATA, arrTime string, extra map[string]any) map[string]any {
	m := map[string]any{
		"departure_airport": map[string]any{"id": depIATA, "name": depIATA},
		"arrival_airport":   map[string]any{"id": arrIATA, "name": arrIATA},
		"departure_time":    depTime,
		"arrival_time":      arrTime,
		"airline":           "DL",
		"flight_number":     "DL 123",
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// =============================================================================
// ParseFlights Tests
// =============================================================================

func TestParseFlights_SingleLeg(t *testing.T) {
	payload := map[string]any{
		"best_flights": []any{
			map[string]any{
				"flights": []any{
					leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30",
						map[string]any{"duration": float64(330)}),
				},
				"total_duration": float64(330),
				"price":          float64(450),
				"carbon_emissions": map[string]any{
					"this_flight": float64(412),
				},
				"departure_token": "tok-abc",
			},
		},
	}

	result := ParseFlights(payload, FlightParseOptions{Currency: "USD"})

	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, 0, result.Skipped)

	it := result.Itineraries[0]
	assert.Len(t, it.ID, 16)
	assert.Equal(t, TripTypeOneWay, it.Type)
	assert.Equal(t, 450.0, it.Price.Amount)
	assert.Equal(t, "USD", it.Price.Currency)
	assert.Equal(t, 330, it.TotalDurationMin)
	assert.Equal(t, 0, it.Stops)
	assert.Empty(t, it.LayoversMin)
	require.NotNil(t, it.EmissionsKg)
	assert.Equal(t, 412, *it.EmissionsKg)
	assert.Equal(t, "tok-abc", it.Tokens["departure_token"])

	require.Len(t, it.Legs, 1)
	assert.Equal(t, "JFK", it.Legs[0].DepIATA)
	assert.Equal(t, "LAX", it.Legs[0].ArrIATA)
	assert.Equal(t, "DL DL 123", it.Legs[0].FlightNo)
	assert.Equal(t, 330, it.Legs[0].DurationMin)
}

func TestParseFlights_LayoverComputation(t *testing.T) {
	payload := map[string]any{
		"other_flights": []any{
			map[string]any{
				"flights": []any{
					leg("JFK", "2025-12-01 08:00", "ORD", "2025-12-01 10:00",
						map[string]any{"duration": float64(120)}),
					leg("ORD", "2025-12-01 11:30", "LAX", "2025-12-01 14:00",
						map[string]any{"duration": float64(150)}),
				},
				"price": float64(380),
			},
		},
	}

	result := ParseFlights(payload, FlightParseOptions{})

	require.Len(t, result.Itineraries, 1)
	it := result.Itineraries[0]
	assert.Equal(t, 1, it.Stops)
	require.Len(t, it.LayoversMin, 1)
	assert.Equal(t, 90, it.LayoversMin[0])
	// No reported total: legs sum.
	assert.Equal(t, 270, it.TotalDurationMin)
	assert.Equal(t, "USD", result.Currency)
}

func TestParseFlights_NegativeLayoverClampedToZero(t *testing.T) {
	payload := map[string]any{
		"best_flights": []any{
			map[string]any{
				"flights": []any{
					leg("JFK", "2025-12-01 08:00", "ORD", "2025-12-01 12:00", nil),
					// Departs before the previous leg arrives.
					leg("ORD", "2025-12-01 11:00", "LAX", "2025-12-01 14:00", nil),
				},
				"price": float64(300),
			},
		},
	}

	result := ParseFlights(payload, FlightParseOptions{})

	require.Len(t, result.Itineraries, 1)
	require.Len(t, result.Itineraries[0].LayoversMin, 1)
	assert.Equal(t, 0, result.Itineraries[0].LayoversMin[0])
}

func TestParseFlights_ReportedTotalWinsOnlyWhenConsistent(t *testing.T) {
	mk := func(total float64) map[string]any {
		return map[string]any{
			"best_flights": []any{
				map[string]any{
					"flights": []any{
						leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30",
							map[string]any{"duration": float64(330)}),
					},
					"total_duration": total,
					"price":          float64(450),
				},
			},
		}
	}

	// Reported >= sum of legs: trusted (accounts for ground time).
	result := ParseFlights(mk(350), FlightParseOptions{})
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, 350, result.Itineraries[0].TotalDurationMin)

	// Reported < sum of legs: inconsistent, recomputed.
	result = ParseFlights(mk(100), FlightParseOptions{})
	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, 330, result.Itineraries[0].TotalDurationMin)
}

func TestParseFlights_DropsMalformedRecords(t *testing.T) {
	payload := map[string]any{
		"best_flights": []any{
			// Valid itinerary.
			map[string]any{
				"flights": []any{leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30", nil)},
				"price":   float64(450),
			},
			// Missing arrival airport id.
			map[string]any{
				"flights": []any{
					map[string]any{
						"departure_airport": map[string]any{"id": "JFK"},
						"arrival_airport":   map[string]any{},
						"departure_time":    "2025-12-01 08:00",
						"arrival_time":      "2025-12-01 11:30",
					},
				},
			},
			// Arrival before departure.
			map[string]any{
				"flights": []any{leg("JFK", "2025-12-01 11:30", "LAX", "2025-12-01 08:00", nil)},
			},
			// No legs at all.
			map[string]any{"price": float64(200)},
			// Not even an object.
			"garbage",
		},
	}

	result := ParseFlights(payload, FlightParseOptions{})

	assert.Len(t, result.Itineraries, 1)
	assert.Equal(t, 4, result.Skipped)
}

func TestParseFlights_RoundTripType(t *testing.T) {
	payload := map[string]any{
		"best_flights": []any{
			map[string]any{
				"flights": []any{leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30", nil)},
				"price":   float64(450),
			},
		},
	}

	result := ParseFlights(payload, FlightParseOptions{RoundTrip: true})

	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, TripTypeRoundTrip, result.Itineraries[0].Type)
}

func TestParseFlights_PriceInsights(t *testing.T) {
	payload := map[string]any{
		"price_insights": map[string]any{
			"lowest_price":        float64(420),
			"price_level":         "low",
			"typical_price_range": []any{float64(400), float64(650)},
		},
	}

	result := ParseFlights(payload, FlightParseOptions{})

	require.NotNil(t, result.Insights)
	assert.Equal(t, 420.0, result.Insights.Lowest)
	assert.Equal(t, PriceLevel("low"), result.Insights.Level)
	assert.Equal(t, []float64{400, 650}, result.Insights.TypicalRange)
}

func TestParseFlights_PriceObjectForm(t *testing.T) {
	payload := map[string]any{
		"best_flights": []any{
			map[string]any{
				"flights": []any{leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30", nil)},
				"price":   map[string]any{"value": float64(512.5)},
			},
		},
	}

	result := ParseFlights(payload, FlightParseOptions{})

	require.Len(t, result.Itineraries, 1)
	assert.Equal(t, 512.5, result.Itineraries[0].Price.Amount)
}

// =============================================================================
// Stable ID Tests
// =============================================================================

func TestItineraryID_Idempotent(t *testing.T) {
	payload := map[string]any{
		"best_flights": []any{
			map[string]any{
				"flights": []any{leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30", nil)},
				"price":   float64(450),
			},
		},
	}

	first := ParseFlights(payload, FlightParseOptions{})
	second := ParseFlights(payload, FlightParseOptions{})

	require.Len(t, first.Itineraries, 1)
	require.Len(t, second.Itineraries, 1)
	assert.Equal(t, first.Itineraries[0].ID, second.Itineraries[0].ID)
}

func TestItineraryID_ChangesWithPrice(t *testing.T) {
	mk := func(price float64) map[string]any {
		return map[string]any{
			"best_flights": []any{
				map[string]any{
					"flights": []any{leg("JFK", "2025-12-01 08:00", "LAX", "2025-12-01 11:30", nil)},
					"price":   price,
				},
			},
		}
	}

	a := ParseFlights(mk(450), FlightParseOptions{})
	b := ParseFlights(mk(460), FlightParseOptions{})

	require.Len(t, a.Itineraries, 1)
	require.Len(t, b.Itineraries, 1)
	assert.NotEqual(t, a.Itineraries[0].ID, b.Itineraries[0].ID)
}

func TestSearchID_StableAndShort(t *testing.T) {
	a := SearchID("JFK", "LAX", "2025-12-01")
	b := SearchID("JFK", "LAX", "2025-12-01")
	c := SearchID("JFK", "LAX", "2025-12-02")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 12)
}

// =============================================================================
// Duration and Time Parsing Tests
// =============================================================================

func TestParseDurationMin(t *testing.T) {
	tests := []struct {
		input    any
		expected int
	}{
		{float64(135), 135},
		{"3h 15m", 195},
		{"1h", 60},
		{"45m", 45},
		{"2h 5m", 125},
		{"", 0},
		{"junk", 0},
		{nil, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseDurationMin(tt.input), "input %v", tt.input)
	}
}

func TestParseFlightTime(t *testing.T) {
	valid := []string{
		"2025-12-01 08:00",
		"2025-12-01 08:00:00",
		"2025-12-01T08:00:00",
		"2025-12-01T08:00:00+09:00",
		"2025-12-01T08:00:00Z",
	}
	for _, s := range valid {
		_, ok := parseFlightTime(s)
		assert.True(t, ok, "expected %q to parse", s)
	}

	invalid := []string{"", "tomorrow", "12/01/2025"}
	for _, s := range invalid {
		_, ok := parseFlightTime(s)
		assert.False(t, ok, "expected %q to fail", s)
	}
}

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
	"strconv"
	"strings"
	"time"
)

// FlightParseOptions carries search context needed during canonicalization.
type FlightParseOptions struct {
	Currency  string
	RoundTrip bool
}

// ParseFlights canonicalizes a raw flight-search payload. The payload shape
// follows the Google Flights engine: itineraries live under "best_flights"
// and "other_flights", each holding a "flights" array of legs.
//
// Records that cannot be parsed (missing airports, unparseable times, no
// legs) are dropped and counted in Skipped rather than raised as errors;
// partial, malformed payloads are expected from best-effort feeds.
func ParseFlights(payload map[string]any, opts FlightParseOptions) FlightSearchResult {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}

	result := FlightSearchResult{Currency: opts.Currency}

	raw := append(asSlice(payload["best_flights"]), asSlice(payload["other_flights"])...)
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			result.Skipped++
			continue
		}
		it, ok := parseItinerary(m, opts)
		if !ok {
			result.Skipped++
			continue
		}
		result.Itineraries = append(result.Itineraries, it)
	}

	result.Insights = parseInsights(payload)
	return result
}

// parseItinerary transforms a single provider flight record. Returns false
// when the record is missing required fields.
func parseItinerary(m map[string]any, opts FlightParseOptions) (Itinerary, bool) {
	rawLegs := asSlice(m["flights"])
	if len(rawLegs) == 0 {
		return Itinerary{}, false
	}

	var (
		legs     []FlightLeg
		layovers []int
		sum      int
	)
	for i, rawLeg := range rawLegs {
		lm, ok := rawLeg.(map[string]any)
		if !ok {
			return Itinerary{}, false
		}
		leg, ok := parseLeg(lm)
		if !ok {
			return Itinerary{}, false
		}
		legs = append(legs, leg)
		sum += leg.DurationMin

		if i < len(rawLegs)-1 {
			next, ok := rawLegs[i+1].(map[string]any)
			if !ok {
				continue
			}
			if lay, ok := layoverMinutes(lm, next); ok {
				// A negative layover means the provider emitted legs out of
				// order or with inconsistent times; clamp to zero.
				if lay < 0 {
					lay = 0
				}
				layovers = append(layovers, lay)
			}
		}
	}

	// Provider-reported total wins only when it is at least the sum of the
	// legs; anything smaller is inconsistent and gets recomputed.
	total := sum
	if reported, ok := asInt(m["total_duration"]); ok && reported >= sum {
		total = reported
	}

	amount, _ := priceAmount(m["price"])
	price := Price{Amount: amount, Currency: opts.Currency}

	it := Itinerary{
		ID:               ItineraryID(legs, price),
		Type:             TripTypeOneWay,
		Price:            price,
		TotalDurationMin: total,
		Stops:            len(legs) - 1,
		LayoversMin:      layovers,
		Legs:             legs,
	}
	if opts.RoundTrip {
		it.Type = TripTypeRoundTrip
	}

	if ce, ok := m["carbon_emissions"].(map[string]any); ok {
		if kg, ok := asInt(ce["this_flight"]); ok {
			it.EmissionsKg = &kg
		}
	}

	tokens := map[string]string{}
	for _, key := range []string{"departure_token", "booking_token"} {
		if v, ok := m[key].(string); ok && v != "" {
			tokens[key] = v
		}
	}
	if len(tokens) > 0 {
		it.Tokens = tokens
	}

	return it, true
}

// parseLeg transforms a single leg record. Legs with missing airports,
// unparseable times, or arrival not after departure are rejected.
func parseLeg(m map[string]any) (FlightLeg, bool) {
	dep, _ := m["departure_airport"].(map[string]any)
	arr, _ := m["arrival_airport"].(map[string]any)
	depIATA, _ := dep["id"].(string)
	arrIATA, _ := arr["id"].(string)
	if depIATA == "" || arrIATA == "" {
		return FlightLeg{}, false
	}

	depTime, okDep := parseFlightTime(asString(m["departure_time"]))
	arrTime, okArr := parseFlightTime(asString(m["arrival_time"]))
	if !okDep || !okArr || !arrTime.After(depTime) {
		return FlightLeg{}, false
	}

	airline := asString(m["airline"])
	number := asString(m["flight_number"])
	flightNo := number
	if airline != "" && number != "" {
		flightNo = airline + " " + number
	}

	return FlightLeg{
		DepIATA:     depIATA,
		DepTime:     depTime,
		ArrIATA:     arrIATA,
		ArrTime:     arrTime,
		Marketing:   airline,
		FlightNo:    flightNo,
		DurationMin: parseDurationMin(m["duration"]),
	}, true
}

// layoverMinutes computes the gap between one leg's arrival and the next
// leg's departure.
func layoverMinutes(cur, next map[string]any) (int, bool) {
	arrTime, okArr := parseFlightTime(asString(cur["arrival_time"]))
	depTime, okDep := parseFlightTime(asString(next["departure_time"]))
	if !okArr || !okDep {
		return 0, false
	}
	return int(depTime.Sub(arrTime).Minutes()), true
}

// parseInsights extracts price intelligence when the provider reports it.
func parseInsights(payload map[string]any) *SearchInsights {
	pi, ok := payload["price_insights"].(map[string]any)
	if !ok {
		return nil
	}
	lowest, ok := asFloat(pi["lowest_price"])
	if !ok {
		return nil
	}
	insights := &SearchInsights{Lowest: lowest}
	if level, ok := pi["price_level"].(string); ok {
		insights.Level = PriceLevel(level)
	}
	if tr := asSlice(pi["typical_price_range"]); len(tr) == 2 {
		lo, okLo := asFloat(tr[0])
		hi, okHi := asFloat(tr[1])
		if okLo && okHi {
			insights.TypicalRange = []float64{lo, hi}
		}
	}
	return insights
}

// parseFlightTime parses provider timestamps. The Google Flights engine emits
// "2006-01-02 15:04" local strings; ISO 8601 forms are accepted too.
func parseFlightTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	s = strings.Replace(s, "Z", "+00:00", 1)
	for _, layout := range []string{
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseDurationMin parses a leg duration. Providers emit either an integer
// number of minutes or strings of the form "3h 15m", "1h", "45m".
func parseDurationMin(v any) int {
	if n, ok := asInt(v); ok {
		return n
	}
	s := strings.ToLower(strings.TrimSpace(asString(v)))
	if s == "" {
		return 0
	}

	total := 0
	if idx := strings.Index(s, "h"); idx >= 0 {
		if hours, err := strconv.Atoi(strings.TrimSpace(s[:idx])); err == nil {
			total += hours * 60
		}
		rest := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s[idx+1:]), "m"))
		if rest != "" {
			if mins, err := strconv.Atoi(rest); err == nil {
				total += mins
			}
		}
		return total
	}
	if strings.HasSuffix(s, "m") {
		if mins, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "m"))); err == nil {
			return mins
		}
	}
	return 0
}

// priceAmount extracts a numeric price from either a bare number or a
// {"value": n} object.
func priceAmount(v any) (float64, bool) {
	if m, ok := v.(map[string]any); ok {
		return asFloat(m["value"])
	}
	return asFloat(v)
}

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
	"strings"
	"time"
)

// Closed vocabularies and synonym tables for normalization. Read-only,
// initialized once.
var (
	allowedTransport = map[string]bool{
		TransportWalk: true, TransportBus: true, TransportMetro: true,
		TransportTram: true, TransportTrain: true, TransportCar: true,
		TransportTaxi: true, TransportFerry: true, TransportBike: true,
		TransportRideshare: true, TransportPlane: true, TransportOther: true,
	}

	transportSynonyms = map[string]string{
		"boat":       TransportFerry,
		"ship":       TransportFerry,
		"speedboat":  TransportFerry,
		"water_taxi": TransportFerry,
		"uber":       TransportRideshare,
		"lyft":       TransportRideshare,
		"grab":       TransportRideshare,
		"scooter":    TransportBike,
	}

	allowedPriority = map[string]bool{
		PriorityEssential: true, PriorityNiceToHave: true, PriorityOptional: true,
	}

	prioritySynonyms = map[string]string{
		"must":   PriorityEssential,
		"high":   PriorityEssential,
		"nice":   PriorityNiceToHave,
		"medium": PriorityNiceToHave,
		"low":    PriorityOptional,
	}

	allowedDiet = map[string]bool{
		"halal": true, "vegetarian": true, "gluten_free": true, "no_restrictions": true,
	}
)

const dateLayout = "2006-01-02"

// Normalize rewrites free-text enum fields into the closed vocabularies and
// validates the plan's date containment. Transport values that resolve to
// nothing become "other"; unrecognized priorities default to "essential"
// (fail-safe toward stricter scheduling). A day outside [StartDate, EndDate]
// returns a RangeError: out-of-range days indicate a generation defect, not
// noise worth correcting.
func Normalize(plan *TripPlan) (*TripPlan, error) {
	start, startErr := time.Parse(dateLayout, plan.StartDate)
	end, endErr := time.Parse(dateLayout, plan.EndDate)
	checkRange := startErr == nil && endErr == nil

	for di := range plan.Days {
		day := &plan.Days[di]

		if checkRange {
			d, err := time.Parse(dateLayout, day.Date)
			if err != nil || d.Before(start) || d.After(end) {
				return nil, &RangeError{Date: day.Date, StartDate: plan.StartDate, EndDate: plan.EndDate}
			}
		}

		for ei := range day.Events {
			normalizeEvent(&day.Events[ei])
		}
	}

	for i := range plan.HardEvents {
		normalizeEvent(&plan.HardEvents[i])
	}

	plan.Diet = normalizeDiet(plan.Diet)
	return plan, nil
}

func normalizeEvent(ev *TripEvent) {
	if ev.TransportReco != "" {
		v := strings.ToLower(strings.TrimSpace(ev.TransportReco))
		if !allowedTransport[v] {
			if syn, ok := transportSynonyms[v]; ok {
				v = syn
			} else {
				v = TransportOther
			}
		}
		ev.TransportReco = v
	}

	if ev.Priority != "" {
		v := strings.ToLower(strings.TrimSpace(ev.Priority))
		if syn, ok := prioritySynonyms[v]; ok {
			v = syn
		}
		if !allowedPriority[v] {
			v = PriorityEssential
		}
		ev.Priority = v
	} else {
		ev.Priority = PriorityEssential
	}

	ev.Tags = cleanTags(ev.Tags)
}

// cleanTags lower-cases, trims, and drops empty tags.
func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeDiet keeps only recognized diet tags; an empty result means no
// restrictions.
func normalizeDiet(diet []string) []string {
	var out []string
	for _, d := range diet {
		d = strings.ToLower(strings.TrimSpace(d))
		if allowedDiet[d] {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []string{"no_restrictions"}
	}
	return out
}

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

package serpapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"itinera/platform/travel"
)

// tagQueries expands interest tags into richer Google Maps search phrases.
// Unknown tags pass through verbatim.
var tagQueries = map[string]string{
	"culture":     "museums, art galleries, cultural centers",
	"food":        "restaurants, food markets, culinary experiences",
	"nightlife":   "bars, clubs, night entertainment",
	"sightseeing": "landmarks, attractions, viewpoints",
	"museums":     "museums, exhibitions, galleries",
	"shopping":    "shopping centers, markets, boutiques",
	"outdoor":     "parks, outdoor activities, nature",
	"sports":      "sports venues, stadiums, activities",
	"theater":     "theaters, shows, performances",
	"family":      "family attractions, kids activities",
	"adventure":   "adventure activities, experiences",
	"relaxation":  "spas, wellness centers, relaxation",
}

// VenueQuery describes a venue search against the Google Maps engine. Query
// wins over Tags when both are set; with neither, a generic entertainment
// search runs for the destination.
type VenueQuery struct {
	Destination string
	Query       string   // free-text search, optional
	Tags        []string // interest tags, expanded via tagQueries
	Latitude    float64  // optional map center
	Longitude   float64
	Zoom        int // optional, used with coordinates (default 14)
}

// buildQuery resolves the effective search phrase.
func (q VenueQuery) buildQuery() string {
	if q.Query != "" {
		return q.Query
	}
	if len(q.Tags) > 0 {
		tags := q.Tags
		if len(tags) > 3 {
			tags = tags[:3]
		}
		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if expanded, ok := tagQueries[tag]; ok {
				parts = append(parts, expanded)
			} else {
				parts = append(parts, tag)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ") + " in " + q.Destination
		}
	}
	return "entertainment attractions in " + q.Destination
}

// SearchVenues runs a venue search and canonicalizes the payload. Without
// explicit coordinates the destination is folded into the query text and
// SerpApi geocodes it.
func (c *Client) SearchVenues(ctx context.Context, q VenueQuery) (*travel.VenueSearchResult, error) {
	if q.Destination == "" {
		return nil, fmt.Errorf("venue search requires a destination")
	}

	searchQuery := q.buildQuery()

	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("type", "search")
	if q.Latitude != 0 || q.Longitude != 0 {
		zoom := q.Zoom
		if zoom == 0 {
			zoom = 14
		}
		params.Set("q", searchQuery)
		params.Set("ll", fmt.Sprintf("@%f,%f,%dz", q.Latitude, q.Longitude, zoom))
	} else {
		params.Set("q", searchQuery+" near "+q.Destination)
	}

	payload, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	result := travel.ParseVenues(payload)
	result.Query = searchQuery
	result.SearchID = travel.SearchID(q.Destination, searchQuery)
	return &result, nil
}

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

// ParseVenues canonicalizes a raw venue-search payload. The payload shape
// follows the Google Maps engine: results live under "local_results".
// Entries without a place id or title are dropped and counted in Skipped.
func ParseVenues(payload map[string]any) VenueSearchResult {
	var result VenueSearchResult
	for _, entry := range asSlice(payload["local_results"]) {
		m, ok := entry.(map[string]any)
		if !ok {
			result.Skipped++
			continue
		}
		venue, ok := parseVenue(m)
		if !ok {
			result.Skipped++
			continue
		}
		result.Venues = append(result.Venues, venue)
	}
	return result
}

func parseVenue(m map[string]any) (Venue, bool) {
	placeID := asString(m["place_id"])
	title := asString(m["title"])
	if placeID == "" || title == "" {
		return Venue{}, false
	}

	venue := Venue{
		PlaceID:     placeID,
		Title:       title,
		PriceTier:   asString(m["price"]),
		Type:        asString(m["type"]),
		Address:     asString(m["address"]),
		Phone:       asString(m["phone"]),
		Website:     asString(m["website"]),
		Description: asString(m["description"]),
		Thumbnail:   asString(m["thumbnail"]),
	}

	if rating, ok := asFloat(m["rating"]); ok {
		venue.Rating = rating
	}
	if reviews, ok := asInt(m["reviews"]); ok {
		venue.Reviews = reviews
	}
	for _, t := range asSlice(m["types"]) {
		if s, ok := t.(string); ok && s != "" {
			venue.Types = append(venue.Types, s)
		}
	}
	if gps, ok := m["gps_coordinates"].(map[string]any); ok {
		lat, okLat := asFloat(gps["latitude"])
		lng, okLng := asFloat(gps["longitude"])
		if okLat && okLng {
			venue.GPS = &GPSCoordinates{Latitude: lat, Longitude: lng}
		}
	}

	return venue, true
}

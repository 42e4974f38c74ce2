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

import "strconv"

// HotelParseOptions carries search context needed during canonicalization.
type HotelParseOptions struct {
	Currency string
	Nights   int
}

// ParseHotels canonicalizes a raw hotel-search payload. The payload shape
// follows the Google Hotels engine: results live under "properties", with
// rates as display strings ("$128") plus extracted numeric variants.
//
// Entries without a name or a parseable price are dropped and counted in
// Skipped.
func ParseHotels(payload map[string]any, opts HotelParseOptions) HotelSearchResult {
	if opts.Currency == "" {
		opts.Currency = "USD"
	}
	if opts.Nights <= 0 {
		opts.Nights = 1
	}

	result := HotelSearchResult{Currency: opts.Currency}
	for _, entry := range asSlice(payload["properties"]) {
		m, ok := entry.(map[string]any)
		if !ok {
			result.Skipped++
			continue
		}
		hotel, ok := parseHotel(m, opts)
		if !ok {
			result.Skipped++
			continue
		}
		result.Hotels = append(result.Hotels, hotel)
	}
	return result
}

func parseHotel(m map[string]any, opts HotelParseOptions) (HotelOption, bool) {
	name := asString(m["name"])
	if name == "" {
		return HotelOption{}, false
	}

	perNight, okNight := rateAmount(m["rate_per_night"])
	total, okTotal := rateAmount(m["total_rate"])
	switch {
	case !okNight && !okTotal:
		return HotelOption{}, false
	case !okTotal:
		total = perNight * float64(opts.Nights)
	case !okNight:
		perNight = total / float64(opts.Nights)
	}

	id := asString(m["property_token"])
	if id == "" {
		// Providers occasionally omit the token; fall back to a stable hash
		// so ranking still has a subject id to reference.
		id = stableHash(name+"_"+asString(m["link"]), 16)
	}

	hotel := HotelOption{
		ID:            id,
		Name:          name,
		Location:      firstNonEmpty(asString(m["address"]), asString(m["neighborhood"]), asString(m["description"])),
		PricePerNight: perNight,
		TotalPrice:    total,
		Currency:      opts.Currency,
		PropertyType:  asString(m["type"]),
		Thumbnail:     asString(m["thumbnail"]),
		Link:          asString(m["link"]),
	}

	if rating, ok := asFloat(m["overall_rating"]); ok {
		hotel.Rating = rating
	}
	if reviews, ok := asInt(m["reviews"]); ok {
		hotel.ReviewsCount = reviews
	}
	if class, ok := asInt(m["extracted_hotel_class"]); ok {
		hotel.HotelClass = class
	} else if class, ok := hotelClassFromLabel(asString(m["hotel_class"])); ok {
		hotel.HotelClass = class
	}
	for _, a := range asSlice(m["amenities"]) {
		if s, ok := a.(string); ok && s != "" {
			hotel.Amenities = append(hotel.Amenities, s)
		}
	}
	if fc, ok := m["free_cancellation"].(bool); ok {
		hotel.FreeCancellation = fc
	}

	return hotel, true
}

// rateAmount extracts a price from a rate object, preferring the extracted
// numeric field over the display string.
func rateAmount(v any) (float64, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return parseMoney(v)
	}
	if f, ok := asFloat(m["extracted_lowest"]); ok {
		return f, true
	}
	return parseMoney(m["lowest"])
}

// hotelClassFromLabel parses labels like "4-star hotel" into a star count.
func hotelClassFromLabel(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= '1' && s[i] <= '5' {
			n, err := strconv.Atoi(string(s[i]))
			return n, err == nil
		}
	}
	return 0, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

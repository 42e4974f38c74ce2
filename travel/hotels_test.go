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

func TestParseHotels_FullProperty(t *testing.T) {
	payload := map[string]any{
		"properties": []any{
			map[string]any{
				"property_token":    "tok-123",
				"name":              "Grand Sakura Hotel",
				"address":           "1-1 Marunouchi, Tokyo",
				"rate_per_night":    map[string]any{"lowest": "$128", "extracted_lowest": float64(128)},
				"total_rate":        map[string]any{"extracted_lowest": float64(384)},
				"overall_rating":    float64(4.6),
				"reviews":           float64(2104),
				"hotel_class":       "4-star hotel",
				"type":              "hotel",
				"amenities":         []any{"Free Wi-Fi", "Pool", "Spa"},
				"free_cancellation": true,
				"link":              "https://example.com/grand-sakura",
			},
		},
	}

	result := ParseHotels(payload, HotelParseOptions{Currency: "USD", Nights: 3})

	require.Len(t, result.Hotels, 1)
	assert.Equal(t, 0, result.Skipped)

	h := result.Hotels[0]
	assert.Equal(t, "tok-123", h.ID)
	assert.Equal(t, "Grand Sakura Hotel", h.Name)
	assert.Equal(t, "1-1 Marunouchi, Tokyo", h.Location)
	assert.Equal(t, 128.0, h.PricePerNight)
	assert.Equal(t, 384.0, h.TotalPrice)
	assert.Equal(t, "USD", h.Currency)
	assert.Equal(t, 4.6, h.Rating)
	assert.Equal(t, 2104, h.ReviewsCount)
	assert.Equal(t, 4, h.HotelClass)
	assert.Equal(t, []string{"Free Wi-Fi", "Pool", "Spa"}, h.Amenities)
	assert.True(t, h.FreeCancellation)
}

func TestParseHotels_DerivesMissingRates(t *testing.T) {
	payload := map[string]any{
		"properties": []any{
			map[string]any{
				"name":           "Per-Night Only",
				"rate_per_night": map[string]any{"extracted_lowest": float64(100)},
			},
			map[string]any{
				"name":       "Total Only",
				"total_rate": map[string]any{"extracted_lowest": float64(400)},
			},
		},
	}

	result := ParseHotels(payload, HotelParseOptions{Nights: 4})

	require.Len(t, result.Hotels, 2)
	assert.Equal(t, 400.0, result.Hotels[0].TotalPrice)
	assert.Equal(t, 100.0, result.Hotels[1].PricePerNight)
}

func TestParseHotels_DisplayStringRate(t *testing.T) {
	payload := map[string]any{
		"properties": []any{
			map[string]any{
				"name":           "Display Rate Inn",
				"rate_per_night": map[string]any{"lowest": "$1,250"},
			},
		},
	}

	result := ParseHotels(payload, HotelParseOptions{Nights: 2})

	require.Len(t, result.Hotels, 1)
	assert.Equal(t, 1250.0, result.Hotels[0].PricePerNight)
	assert.Equal(t, 2500.0, result.Hotels[0].TotalPrice)
}

func TestParseHotels_DropsUnusableEntries(t *testing.T) {
	payload := map[string]any{
		"properties": []any{
			map[string]any{
				"name":           "Keeper",
				"rate_per_night": map[string]any{"extracted_lowest": float64(90)},
			},
			// No name.
			map[string]any{"rate_per_night": map[string]any{"extracted_lowest": float64(50)}},
			// No parseable price anywhere.
			map[string]any{"name": "Priceless"},
			// Not an object.
			"garbage",
		},
	}

	result := ParseHotels(payload, HotelParseOptions{})

	assert.Len(t, result.Hotels, 1)
	assert.Equal(t, 3, result.Skipped)
}

func TestParseHotels_FallbackIDIsStable(t *testing.T) {
	payload := map[string]any{
		"properties": []any{
			map[string]any{
				"name":           "No Token Hotel",
				"link":           "https://example.com/no-token",
				"rate_per_night": map[string]any{"extracted_lowest": float64(75)},
			},
		},
	}

	first := ParseHotels(payload, HotelParseOptions{})
	second := ParseHotels(payload, HotelParseOptions{})

	require.Len(t, first.Hotels, 1)
	require.Len(t, second.Hotels, 1)
	assert.NotEmpty(t, first.Hotels[0].ID)
	assert.Equal(t, first.Hotels[0].ID, second.Hotels[0].ID)
}

func TestHotelClassFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected int
		ok       bool
	}{
		{"4-star hotel", 4, true},
		{"5-star luxury", 5, true},
		{"boutique", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := hotelClassFromLabel(tt.label)
		assert.Equal(t, tt.ok, ok, tt.label)
		assert.Equal(t, tt.expected, got, tt.label)
	}
}

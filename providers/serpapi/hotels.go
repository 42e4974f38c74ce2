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
	"strconv"
	"time"

	"itinera/platform/travel"
)

// HotelQuery describes a hotel search against the Google Hotels engine.
type HotelQuery struct {
	Location     string // free-text location, e.g. "Tokyo"
	CheckInDate  string // YYYY-MM-DD
	CheckOutDate string // YYYY-MM-DD
	Adults       int
	Children     int
	Currency     string // defaults to USD
	Language     string // hl parameter
}

// nights computes the stay length for total-price derivation. A stay that
// fails to parse or is non-positive counts as one night.
func (q HotelQuery) nights() int {
	in, errIn := time.Parse("2006-01-02", q.CheckInDate)
	out, errOut := time.Parse("2006-01-02", q.CheckOutDate)
	if errIn != nil || errOut != nil {
		return 1
	}
	n := int(out.Sub(in).Hours() / 24)
	if n <= 0 {
		return 1
	}
	return n
}

// SearchHotels runs a hotel search and canonicalizes the payload.
func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) (*travel.HotelSearchResult, error) {
	if q.Location == "" {
		return nil, fmt.Errorf("hotel search requires a location")
	}
	if q.CheckInDate == "" || q.CheckOutDate == "" {
		return nil, fmt.Errorf("hotel search requires check-in and check-out dates")
	}
	if q.Adults <= 0 {
		q.Adults = 1
	}
	if q.Currency == "" {
		q.Currency = "USD"
	}

	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", q.Location)
	params.Set("check_in_date", q.CheckInDate)
	params.Set("check_out_date", q.CheckOutDate)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("currency", q.Currency)
	if q.Children > 0 {
		params.Set("children", strconv.Itoa(q.Children))
	}
	if q.Language != "" {
		params.Set("hl", q.Language)
	}

	payload, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}

	result := travel.ParseHotels(payload, travel.HotelParseOptions{
		Currency: q.Currency,
		Nights:   q.nights(),
	})
	result.SearchID = travel.SearchID(
		q.Location, q.CheckInDate, q.CheckOutDate,
		strconv.Itoa(q.Adults), strconv.Itoa(q.Children), q.Currency,
	)
	return &result, nil
}

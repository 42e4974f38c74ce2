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

	"itinera/platform/travel"
)

// Google Flights trip type codes.
const (
	tripTypeRoundTrip = "1"
	tripTypeOneWay    = "2"
)

// FlightQuery describes a flight search against the Google Flights engine.
type FlightQuery struct {
	DepartureID  string // IATA code, e.g. "JFK"
	ArrivalID    string // IATA code, e.g. "NRT"
	OutboundDate string // YYYY-MM-DD
	ReturnDate   string // YYYY-MM-DD; empty means one-way
	Adults       int
	Children     int
	Currency     string // defaults to USD
	Language     string // hl parameter, e.g. "en"
}

// SearchFlights runs a flight search and canonicalizes the payload. The
// search id is stable for identical query parameters so repeated searches
// share cache and session keys.
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) (*travel.FlightSearchResult, error) {
	if q.DepartureID == "" || q.ArrivalID == "" {
		return nil, fmt.Errorf("flight search requires departure and arrival airports")
	}
	if q.OutboundDate == "" {
		return nil, fmt.Errorf("flight search requires an outbound date")
	}
	if q.Adults <= 0 {
		q.Adults = 1
	}
	if q.Currency == "" {
		q.Currency = "USD"
	}

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.DepartureID)
	params.Set("arrival_id", q.ArrivalID)
	params.Set("outbound_date", q.OutboundDate)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("currency", q.Currency)
	if q.ReturnDate != "" {
		params.Set("type", tripTypeRoundTrip)
		params.Set("return_date", q.ReturnDate)
	} else {
		params.Set("type", tripTypeOneWay)
	}
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

	result := travel.ParseFlights(payload, travel.FlightParseOptions{
		Currency:  q.Currency,
		RoundTrip: q.ReturnDate != "",
	})
	result.SearchID = travel.SearchID(
		q.DepartureID, q.ArrivalID, q.OutboundDate, q.ReturnDate,
		strconv.Itoa(q.Adults), strconv.Itoa(q.Children), q.Currency,
	)
	return &result, nil
}

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

package ranking

import (
	"fmt"
	"math"
	"sort"

	"itinera/platform/travel"
)

// The heuristic scorer is the fallback of record: fully deterministic,
// no I/O, and it never fails on canonical input. It is also invoked
// standalone as a baseline for end-to-end testing.

// HeuristicFlights ranks flights by (price asc, stops asc, duration asc)
// and assigns scores by rank position.
func HeuristicFlights(req FlightRankRequest) *RankResponse {
	flights := req.Flights
	if len(flights) > MaxFlights {
		flights = flights[:MaxFlights]
	}

	sorted := make([]travel.Itinerary, len(flights))
	copy(sorted, flights)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Price.Amount != sorted[j].Price.Amount {
			return sorted[i].Price.Amount < sorted[j].Price.Amount
		}
		if sorted[i].Stops != sorted[j].Stops {
			return sorted[i].Stops < sorted[j].Stops
		}
		return sorted[i].TotalDurationMin < sorted[j].TotalDurationMin
	})

	resp := &RankResponse{
		SearchID: req.SearchID,
		Meta: RankMeta{
			UsedModel:     HeuristicModelName,
			Deterministic: true,
			Notes:         []string{"model unavailable, used heuristic ranking"},
		},
	}
	for i, f := range sorted {
		item := RankItem{
			ID:             f.ID,
			Score:          math.Max(0.1, 1.0-0.1*float64(i)),
			Title:          flightTitle(f),
			RationaleShort: fmt.Sprintf("Ranked #%d by price, stops, and duration", i+1),
			ProsKeywords:   flightPros(f, i == 0),
			ConsKeywords:   flightCons(f),
		}
		if i == 0 {
			item.Tags = []string{"heuristic"}
		}
		resp.OrderedIDs = append(resp.OrderedIDs, f.ID)
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func flightPros(f travel.Itinerary, isBest bool) []string {
	var pros []string
	if isBest {
		pros = append(pros, "lowest price")
	}
	switch f.Stops {
	case 0:
		pros = append(pros, "nonstop")
	case 1:
		pros = append(pros, "1 stop")
	}
	if len(f.LayoversMin) > 0 && allBetween(f.LayoversMin, 60, 120) {
		pros = append(pros, "reasonable layovers")
	}
	if f.TotalDurationMin < 360 {
		pros = append(pros, "short flight")
	}
	if f.EmissionsKg != nil && *f.EmissionsKg < 500 {
		pros = append(pros, "low emissions")
	}
	for _, leg := range f.Legs {
		h := leg.DepTime.Hour()
		if h >= 6 && h <= 10 {
			pros = append(pros, "morning departure")
			break
		}
		if h >= 14 && h <= 18 {
			pros = append(pros, "afternoon departure")
			break
		}
	}
	return capStrings(pros, 5)
}

func flightCons(f travel.Itinerary) []string {
	var cons []string
	if f.Stops >= 2 {
		cons = append(cons, "multiple stops")
	}
	if anyBelow(f.LayoversMin, 60) {
		cons = append(cons, "tight connection")
	} else if anyAbove(f.LayoversMin, 300) {
		cons = append(cons, "long layover")
	}
	if f.TotalDurationMin > 720 {
		cons = append(cons, "long flight")
	}
	for _, leg := range f.Legs {
		h := leg.DepTime.Hour()
		if h >= 22 || h <= 5 {
			cons = append(cons, "red-eye")
			break
		}
	}
	return capStrings(cons, 5)
}

func flightTitle(f travel.Itinerary) string {
	stops := "Nonstop"
	if f.Stops == 1 {
		stops = "1 stop"
	} else if f.Stops > 1 {
		stops = fmt.Sprintf("%d stops", f.Stops)
	}

	airline := "Multi"
	for _, leg := range f.Legs {
		if leg.Marketing != "" {
			airline = leg.Marketing
			break
		}
	}

	return fmt.Sprintf("%s • %dh%02dm • %s • $%d",
		stops, f.TotalDurationMin/60, f.TotalDurationMin%60, airline, int(f.Price.Amount))
}

// HeuristicHotels scores hotels as a weighted sum of rating (0-0.5), price
// competitiveness relative to the batch (0-0.3), and a review-count bonus
// capped at 0.2.
func HeuristicHotels(req HotelRankRequest) *RankResponse {
	hotels := req.Hotels
	if len(hotels) > MaxHotels {
		hotels = hotels[:MaxHotels]
	}

	var prices []float64
	var priceSum float64
	for _, h := range hotels {
		if h.TotalPrice > 0 {
			prices = append(prices, h.TotalPrice)
			priceSum += h.TotalPrice
		}
	}
	minPrice, maxPrice := minMax(prices)

	type scored struct {
		hotel travel.HotelOption
		score float64
		pros  []string
		cons  []string
	}
	var ranked []scored
	for _, h := range hotels {
		rating := h.Rating
		if rating == 0 {
			rating = 3.0
		}
		score := rating / 10.0

		switch {
		case h.TotalPrice <= 0:
			// No price data: neutral competitiveness, never an advantage.
			score += 0.2
		case maxPrice > minPrice:
			score += 0.3 * (1 - (h.TotalPrice-minPrice)/(maxPrice-minPrice))
		default:
			score += 0.3
		}
		score += math.Min(0.2, float64(h.ReviewsCount)/1000*0.2)
		score = clampScore(score)

		var pros, cons []string
		if h.Rating >= 4.5 {
			pros = append(pros, "highly rated")
		}
		if h.FreeCancellation {
			pros = append(pros, "free cancellation")
		}
		if len(h.Amenities) > 5 {
			pros = append(pros, "many amenities")
		}
		if h.HotelClass >= 4 {
			pros = append(pros, fmt.Sprintf("%d-star", h.HotelClass))
		}
		if !h.FreeCancellation {
			cons = append(cons, "no free cancellation")
		}
		if len(prices) > 0 && h.TotalPrice > priceSum/float64(len(prices)) {
			cons = append(cons, "higher price")
		}
		if len(pros) == 0 {
			pros = []string{"good option"}
		}

		ranked = append(ranked, scored{hotel: h, score: score, pros: pros, cons: cons})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	resp := &RankResponse{
		SearchID: req.SearchID,
		Meta: RankMeta{
			UsedModel:     HeuristicModelName,
			Deterministic: true,
			Notes:         []string{"heuristic ranking based on rating, price, and reviews"},
		},
	}
	for _, r := range ranked {
		h := r.hotel
		rating := "N/A"
		if h.Rating > 0 {
			rating = fmt.Sprintf("%.1f", h.Rating)
		}
		resp.OrderedIDs = append(resp.OrderedIDs, h.ID)
		resp.Items = append(resp.Items, RankItem{
			ID:             h.ID,
			Score:          math.Round(r.score*100) / 100,
			Title:          capString(h.Name+" - "+h.Location, maxTitleLen),
			RationaleShort: capString(fmt.Sprintf("Rating %s/5, $%.0f total, %d reviews", rating, h.TotalPrice, h.ReviewsCount), maxRationaleLen),
			ProsKeywords:   r.pros,
			ConsKeywords:   r.cons,
		})
	}
	return resp
}

// HeuristicVenues scores venues by rating weighted by review volume.
func HeuristicVenues(req VenueRankRequest) *RankResponse {
	venues := req.Venues
	if len(venues) > MaxVenues {
		venues = venues[:MaxVenues]
	}

	type scored struct {
		venue travel.Venue
		score float64
		pros  []string
		cons  []string
	}
	var ranked []scored
	for _, v := range venues {
		rating := v.Rating
		if rating == 0 {
			rating = 3.0
		}
		score := clampScore(rating * (1 + math.Sqrt(float64(v.Reviews)/1000)) / 6.0)

		var pros, cons []string
		if v.Rating >= 4.5 {
			pros = append(pros, "highly-rated")
		}
		if v.Reviews > 500 {
			pros = append(pros, "popular")
		}
		if v.PriceTier == "$" || v.PriceTier == "$$" {
			pros = append(pros, "affordable")
		}
		if v.Description != "" {
			pros = append(pros, "detailed-info")
		}
		if v.Rating > 0 && v.Rating < 4.0 {
			cons = append(cons, "lower-rating")
		}
		if v.Reviews < 50 {
			cons = append(cons, "limited-reviews")
		}
		if v.PriceTier == "$$$" || v.PriceTier == "$$$$" {
			cons = append(cons, "expensive")
		}
		if len(pros) == 0 {
			pros = []string{"available"}
		}
		if len(cons) == 0 {
			cons = []string{"none-noted"}
		}

		ranked = append(ranked, scored{venue: v, score: score, pros: pros, cons: cons})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	resp := &RankResponse{
		SearchID: req.SearchID,
		Meta: RankMeta{
			UsedModel:     HeuristicModelName,
			Deterministic: true,
			Notes:         []string{"fallback heuristic ranking used"},
		},
	}
	for _, r := range ranked {
		v := r.venue
		kind := v.Type
		if kind == "" {
			kind = "Venue"
		}
		rating := "N/A"
		if v.Rating > 0 {
			rating = fmt.Sprintf("%.1f", v.Rating)
		}
		resp.OrderedIDs = append(resp.OrderedIDs, v.PlaceID)
		resp.Items = append(resp.Items, RankItem{
			ID:             v.PlaceID,
			Score:          r.score,
			Title:          capString(v.Title+" - "+kind, maxTitleLen),
			RationaleShort: capString(fmt.Sprintf("Rating %s, %d reviews", rating, v.Reviews), maxRationaleLen),
			ProsKeywords:   r.pros,
			ConsKeywords:   r.cons,
			Tags:           capStrings(v.Types, 3),
		})
	}
	return resp
}

func allBetween(vals []int, lo, hi int) bool {
	for _, v := range vals {
		if v < lo || v > hi {
			return false
		}
	}
	return true
}

func anyBelow(vals []int, limit int) bool {
	for _, v := range vals {
		if v < limit {
			return true
		}
	}
	return false
}

func anyAbove(vals []int, limit int) bool {
	for _, v := range vals {
		if v > limit {
			return true
		}
	}
	return false
}

func minMax(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

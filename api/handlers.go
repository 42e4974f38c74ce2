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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"itinera/platform/planner"
	"itinera/platform/providers/serpapi"
	"itinera/platform/ranking"
	"itinera/platform/session"
	"itinera/platform/store"
	"itinera/platform/travel"
)

// Session key prefixes per search kind.
const (
	flightsKeyPrefix = "flights:"
	hotelsKeyPrefix  = "hotels:"
	venuesKeyPrefix  = "venues:"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ============================================================
// Search handlers
// ============================================================

func (s *Server) handleFlightSearch(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req FlightSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Origin == "" || req.Destination == "" || req.OutboundDate == "" {
		writeError(w, http.StatusBadRequest, "origin, destination, and outbound_date are required")
		return
	}

	result, err := s.searcher.SearchFlights(r.Context(), serpapi.FlightQuery{
		DepartureID:  req.Origin,
		ArrivalID:    req.Destination,
		OutboundDate: req.OutboundDate,
		ReturnDate:   req.ReturnDate,
		Adults:       req.Adults,
		Children:     req.Children,
		Currency:     req.Currency,
		Language:     req.Language,
	})
	if err != nil {
		s.log.ErrorWithErr(requestID, "flight search failed", err, nil)
		writeError(w, http.StatusBadGateway, "flight search failed")
		return
	}

	s.cacheResult(r, requestID, flightsKeyPrefix+result.SearchID, result)
	s.log.Info(requestID, "flight search completed", map[string]any{
		"search_id":   result.SearchID,
		"itineraries": len(result.Itineraries),
		"skipped":     result.Skipped,
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHotelSearch(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req HotelSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Location == "" || req.CheckInDate == "" || req.CheckOutDate == "" {
		writeError(w, http.StatusBadRequest, "location, check_in_date, and check_out_date are required")
		return
	}

	result, err := s.searcher.SearchHotels(r.Context(), serpapi.HotelQuery{
		Location:     req.Location,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		Adults:       req.Adults,
		Children:     req.Children,
		Currency:     req.Currency,
		Language:     req.Language,
	})
	if err != nil {
		s.log.ErrorWithErr(requestID, "hotel search failed", err, nil)
		writeError(w, http.StatusBadGateway, "hotel search failed")
		return
	}

	s.cacheResult(r, requestID, hotelsKeyPrefix+result.SearchID, result)
	s.log.Info(requestID, "hotel search completed", map[string]any{
		"search_id": result.SearchID,
		"hotels":    len(result.Hotels),
		"skipped":   result.Skipped,
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleVenueSearch(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	var req VenueSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Destination == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	result, err := s.searcher.SearchVenues(r.Context(), serpapi.VenueQuery{
		Destination: req.Destination,
		Query:       req.Query,
		Tags:        req.Tags,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		s.log.ErrorWithErr(requestID, "venue search failed", err, nil)
		writeError(w, http.StatusBadGateway, "venue search failed")
		return
	}

	s.cacheResult(r, requestID, venuesKeyPrefix+result.SearchID, result)
	s.log.Info(requestID, "venue search completed", map[string]any{
		"search_id": result.SearchID,
		"venues":    len(result.Venues),
		"skipped":   result.Skipped,
	})
	writeJSON(w, http.StatusOK, result)
}

// ============================================================
// Ranking handlers
// ============================================================

func (s *Server) handleRankFlights(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRankRequest(w, r)
	if !ok {
		return
	}

	var cached travel.FlightSearchResult
	if !s.loadCached(w, r, flightsKeyPrefix+req.SearchID, &cached) {
		return
	}

	resp := s.ranker.RankFlights(r.Context(), ranking.FlightRankRequest{
		SearchID:          req.SearchID,
		PreferencesPrompt: req.PreferencesPrompt,
		Flights:           cached.Itineraries,
		Locale:            req.Locale,
	})
	s.finishRanking(r, "flights", resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRankHotels(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRankRequest(w, r)
	if !ok {
		return
	}

	var cached travel.HotelSearchResult
	if !s.loadCached(w, r, hotelsKeyPrefix+req.SearchID, &cached) {
		return
	}

	resp := s.ranker.RankHotels(r.Context(), ranking.HotelRankRequest{
		SearchID:          req.SearchID,
		PreferencesPrompt: req.PreferencesPrompt,
		Hotels:            cached.Hotels,
		Locale:            req.Locale,
	})
	s.finishRanking(r, "hotels", resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRankVenues(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRankRequest(w, r)
	if !ok {
		return
	}

	var cached travel.VenueSearchResult
	if !s.loadCached(w, r, venuesKeyPrefix+req.SearchID, &cached) {
		return
	}

	resp := s.ranker.RankVenues(r.Context(), ranking.VenueRankRequest{
		SearchID:          req.SearchID,
		PreferencesPrompt: req.PreferencesPrompt,
		InterestTags:      req.InterestTags,
		Venues:            cached.Venues,
		Locale:            req.Locale,
	})
	s.finishRanking(r, "venues", resp)
	writeJSON(w, http.StatusOK, resp)
}

func decodeRankRequest(w http.ResponseWriter, r *http.Request) (RankRequest, bool) {
	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.SearchID == "" {
		writeError(w, http.StatusBadRequest, "search_id is required")
		return req, false
	}
	return req, true
}

// finishRanking records ranking metrics and persists the result best-effort.
func (s *Server) finishRanking(r *http.Request, kind string, resp *ranking.RankResponse) {
	source := "model"
	if resp.Meta.UsedModel == ranking.HeuristicModelName {
		source = "heuristic"
	}
	promRankingsTotal.WithLabelValues(kind, source).Inc()

	if s.repo != nil {
		record := &store.RankingRecord{SearchID: resp.SearchID, Kind: kind, Response: resp}
		if err := s.repo.SaveRanking(r.Context(), record); err != nil {
			s.log.Warn(requestIDFrom(r), "failed to persist ranking", map[string]any{
				"search_id": resp.SearchID,
				"kind":      kind,
				"error":     err.Error(),
			})
		}
	}
}

// ============================================================
// Plan handlers
// ============================================================

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "plan generation is not configured")
		return
	}

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	pc := req.Context
	if pc.Origin == "" || pc.Destination == "" || pc.StartDate == "" || pc.EndDate == "" {
		writeError(w, http.StatusBadRequest, "origin, destination, start_date, and end_date are required")
		return
	}

	plan, err := s.generator.Generate(r.Context(), pc)
	if err != nil {
		var planErr *planner.PlanError
		if errors.As(err, &planErr) {
			promPlansTotal.WithLabelValues(string(planErr.Stage)).Inc()
			status := http.StatusBadGateway
			if planErr.Stage == planner.StageParse || planErr.Stage == planner.StageRange {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, ErrorResponse{Error: planErr.Error(), Stage: string(planErr.Stage)})
			return
		}
		promPlansTotal.WithLabelValues("error").Inc()
		s.log.ErrorWithErr(requestID, "plan generation failed", err, nil)
		writeError(w, http.StatusInternalServerError, "plan generation failed")
		return
	}
	promPlansTotal.WithLabelValues("ok").Inc()

	planID := uuid.New().String()
	if s.repo != nil {
		record := &store.PlanRecord{ID: planID, UserID: req.UserID, Plan: plan}
		if err := s.repo.SavePlan(r.Context(), record); err != nil {
			s.log.Warn(requestID, "failed to persist plan", map[string]any{
				"plan_id": planID,
				"error":   err.Error(),
			})
		}
	}

	s.log.Info(requestID, "trip plan generated", map[string]any{
		"plan_id": planID,
		"days":    len(plan.Days),
	})
	writeJSON(w, http.StatusOK, PlanResponse{PlanID: planID, Plan: plan})
}

func (s *Server) handleCultureGuide(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFrom(r)

	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "culture guide generation is not configured")
		return
	}

	var req CultureGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	guide, err := s.generator.CultureGuide(r.Context(), req.Destination, req.Language)
	if err != nil {
		var planErr *planner.PlanError
		if errors.As(err, &planErr) {
			promCultureGuidesTotal.WithLabelValues(string(planErr.Stage)).Inc()
			status := http.StatusBadGateway
			if planErr.Stage == planner.StageParse {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, ErrorResponse{Error: planErr.Error(), Stage: string(planErr.Stage)})
			return
		}
		promCultureGuidesTotal.WithLabelValues("error").Inc()
		s.log.ErrorWithErr(requestID, "culture guide generation failed", err, nil)
		writeError(w, http.StatusInternalServerError, "culture guide generation failed")
		return
	}
	promCultureGuidesTotal.WithLabelValues("ok").Inc()

	s.log.Info(requestID, "culture guide generated", map[string]any{
		"destination": guide.Destination,
		"tips":        len(guide.Tips),
	})
	writeJSON(w, http.StatusOK, guide)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "plan storage is not configured")
		return
	}

	id := mux.Vars(r)["id"]
	record, err := s.repo.GetPlan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	if err != nil {
		s.log.ErrorWithErr(requestIDFrom(r), "failed to load plan", err, map[string]any{"plan_id": id})
		writeError(w, http.StatusInternalServerError, "failed to load plan")
		return
	}
	writeJSON(w, http.StatusOK, PlanResponse{PlanID: record.ID, Plan: record.Plan})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "plan storage is not configured")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	records, err := s.repo.ListPlans(r.Context(), userID, limit)
	if err != nil {
		s.log.ErrorWithErr(requestIDFrom(r), "failed to list plans", err, map[string]any{"user_id": userID})
		writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}
	if records == nil {
		records = []*store.PlanRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ============================================================
// Helpers
// ============================================================

// cacheResult stores a search result in the session cache. Caching is
// best-effort: a failed write only disables ranking for this search.
func (s *Server) cacheResult(r *http.Request, requestID, key string, value any) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Put(r.Context(), key, value, 0); err != nil {
		s.log.Warn(requestID, "failed to cache search result", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// loadCached retrieves a cached search result, writing the appropriate error
// response on failure.
func (s *Server) loadCached(w http.ResponseWriter, r *http.Request, key string, dest any) bool {
	if s.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session cache is not configured")
		return false
	}
	err := s.sessions.Get(r.Context(), key, dest)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "search not found or expired")
		return false
	}
	if err != nil {
		s.log.ErrorWithErr(requestIDFrom(r), "failed to load cached search", err, map[string]any{"key": key})
		writeError(w, http.StatusInternalServerError, "failed to load cached search")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Printf("Warning: failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

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

// Package api exposes the travel pipeline over HTTP: search, ranking, and
// plan generation endpoints plus health and Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"itinera/platform/session"
	"itinera/platform/shared/logger"
	"itinera/platform/store"
)

// Server holds the HTTP handler dependencies. Sessions, repo, and generator
// are optional: missing pieces degrade the matching endpoints to 503 instead
// of preventing startup.
type Server struct {
	searcher  Searcher
	ranker    Ranker
	generator PlanGenerator
	sessions  session.Store
	repo      store.Repository
	log       *logger.Logger
}

// ServerConfig configures an API server.
type ServerConfig struct {
	Searcher  Searcher         // Required
	Ranker    Ranker           // Required
	Generator PlanGenerator    // Optional
	Sessions  session.Store    // Optional
	Repo      store.Repository // Optional
	Logger    *logger.Logger   // Optional: defaults to an "api" component logger
}

// NewServer creates an API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Searcher == nil {
		return nil, fmt.Errorf("api server requires a searcher")
	}
	if cfg.Ranker == nil {
		return nil, fmt.Errorf("api server requires a ranker")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.New("api")
	}
	return &Server{
		searcher:  cfg.Searcher,
		ranker:    cfg.Ranker,
		generator: cfg.Generator,
		sessions:  cfg.Sessions,
		repo:      cfg.Repo,
		log:       log,
	}, nil
}

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDFrom returns the request id attached by the instrumentation
// middleware, or empty when the handler runs outside it.
func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// instrument wraps a handler with request id assignment and Prometheus
// request accounting.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		promRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", rec.status)).Inc()
		promRequestDuration.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Router builds the HTTP handler with CORS and metrics endpoints attached.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check
	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Search endpoints
	r.HandleFunc("/api/v1/flights/search", s.instrument("flights_search", s.handleFlightSearch)).Methods("POST")
	r.HandleFunc("/api/v1/hotels/search", s.instrument("hotels_search", s.handleHotelSearch)).Methods("POST")
	r.HandleFunc("/api/v1/venues/search", s.instrument("venues_search", s.handleVenueSearch)).Methods("POST")

	// Ranking endpoints
	r.HandleFunc("/api/v1/flights/rank", s.instrument("flights_rank", s.handleRankFlights)).Methods("POST")
	r.HandleFunc("/api/v1/hotels/rank", s.instrument("hotels_rank", s.handleRankHotels)).Methods("POST")
	r.HandleFunc("/api/v1/venues/rank", s.instrument("venues_rank", s.handleRankVenues)).Methods("POST")

	// Plan endpoints
	r.HandleFunc("/api/v1/plans", s.instrument("plans_generate", s.handleGeneratePlan)).Methods("POST")
	r.HandleFunc("/api/v1/plans", s.instrument("plans_list", s.handleListPlans)).Methods("GET")
	r.HandleFunc("/api/v1/plans/{id}", s.instrument("plans_get", s.handleGetPlan)).Methods("GET")

	// Culture guide
	r.HandleFunc("/api/v1/culture-guide", s.instrument("culture_guide", s.handleCultureGuide)).Methods("POST")

	return c.Handler(r)
}

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

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics
var (
	promRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinera_requests_total",
			Help: "Total number of API requests processed",
		},
		[]string{"endpoint", "status"},
	)
	promRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itinera_request_duration_milliseconds",
			Help:    "Request duration in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000},
		},
		[]string{"endpoint"},
	)
	promRankingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinera_rankings_total",
			Help: "Total number of ranking responses by kind and source",
		},
		[]string{"kind", "source"},
	)
	promPlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinera_plans_total",
			Help: "Total number of plan generation attempts by outcome",
		},
		[]string{"status"},
	)
	promCultureGuidesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itinera_culture_guides_total",
			Help: "Total number of culture guide generation attempts by outcome",
		},
		[]string{"status"},
	)
)

func init() {
	// Register Prometheus metrics
	prometheus.MustRegister(promRequestsTotal)
	prometheus.MustRegister(promRequestDuration)
	prometheus.MustRegister(promRankingsTotal)
	prometheus.MustRegister(promPlansTotal)
	prometheus.MustRegister(promCultureGuidesTotal)
}

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

// Package main is the entry point for the Itinera travel service.
//
// The service runs the full travel pipeline:
// - Flight, hotel, and venue search via SerpApi's Google engines
// - Model-assisted ranking with deterministic heuristic fallback
// - Schema-constrained trip plan generation
//
// Usage:
//
//	./server
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8080)
//	CONFIG_FILE - optional YAML configuration file
//	SERPAPI_KEY - SerpApi API key (required)
//	OPENAI_API_KEY - OpenAI API key (optional: heuristic-only without it)
//	REDIS_URL - session cache connection string (optional)
//	DATABASE_URL - PostgreSQL connection string (optional)
package main

import (
	"itinera/platform/api"
)

func main() {
	api.Run()
}

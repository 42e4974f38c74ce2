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
	"fmt"
	"log"
	"net/http"
	"os"

	"itinera/platform/config"
	"itinera/platform/llm/openai"
	"itinera/platform/planner"
	"itinera/platform/providers/serpapi"
	"itinera/platform/ranking"
	"itinera/platform/session"
	"itinera/platform/shared/logger"
	"itinera/platform/store"
)

// Run wires the full service from configuration and serves HTTP until the
// process exits. Configuration comes from CONFIG_FILE when set, otherwise
// from environment variables alone.
func Run() {
	appLog := logger.New("server")

	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	searcher, err := serpapi.NewClient(serpapi.Config{
		APIKey:  cfg.SerpAPI.APIKey,
		BaseURL: cfg.SerpAPI.BaseURL,
		Timeout: cfg.SerpAPI.Timeout,
	})
	if err != nil {
		log.Fatalf("failed to create search client: %v", err)
	}

	// Without an OpenAI key the service still runs: ranking degrades to the
	// heuristic path and plan generation returns 503.
	var rankerProvider *openai.Provider
	var generator PlanGenerator
	if cfg.OpenAI.APIKey != "" {
		rankerProvider, err = openai.NewProvider(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.RankModel,
			Timeout: cfg.OpenAI.Timeout,
		})
		if err != nil {
			log.Fatalf("failed to create model provider: %v", err)
		}

		planProvider, err := openai.NewProvider(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.PlanModel,
			Timeout: cfg.OpenAI.Timeout,
		})
		if err != nil {
			log.Fatalf("failed to create plan provider: %v", err)
		}
		generator, err = planner.NewGenerator(planner.GeneratorConfig{Provider: planProvider})
		if err != nil {
			log.Fatalf("failed to create plan generator: %v", err)
		}
	} else {
		appLog.Warn("", "no OpenAI key configured, running heuristic-only", nil)
	}

	engineCfg := ranking.EngineConfig{}
	if rankerProvider != nil {
		engineCfg.Provider = rankerProvider
	}
	engine := ranking.NewEngine(engineCfg)

	var sessions session.Store
	if cfg.Redis.URL != "" {
		redisStore, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
	} else {
		appLog.Warn("", "no Redis configured, ranking endpoints disabled", nil)
	}

	var repo store.Repository
	if cfg.Database.URL != "" {
		db, err := store.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = store.NewPostgresRepository(db)
	} else {
		appLog.Warn("", "no database configured, plans will not persist", nil)
	}

	server, err := NewServer(ServerConfig{
		Searcher:  searcher,
		Ranker:    engine,
		Generator: generator,
		Sessions:  sessions,
		Repo:      repo,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Itinera travel service listening on port %d", cfg.Server.Port)
	log.Fatal(httpServer.ListenAndServe())
}

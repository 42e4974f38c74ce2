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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearServiceEnv unsets the override variables so tests see only what they
// set themselves.
func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SERPAPI_KEY", "OPENAI_API_KEY", "REDIS_URL", "DATABASE_URL", "PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// =============================================================================
// File Loading Tests
// =============================================================================

func TestLoad_Success(t *testing.T) {
	clearServiceEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 15s
serpapi:
  api_key: serp-key
openai:
  api_key: openai-key
  rank_model: gpt-4o-mini
  plan_model: gpt-4o
redis:
  url: redis://localhost:6379/0
database:
  url: postgres://localhost/itinera
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "serp-key", cfg.SerpAPI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.RankModel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "postgres://localhost/itinera", cfg.Database.URL)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	clearServiceEnv(t)
	path := writeConfig(t, `
serpapi:
  api_key: serp-key
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: valid")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_RequiresSerpAPIKey(t *testing.T) {
	clearServiceEnv(t)
	path := writeConfig(t, `
server:
  port: 8080
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "serpapi api_key is required")
}

func TestLoad_OpenAIKeyIsOptional(t *testing.T) {
	clearServiceEnv(t)
	path := writeConfig(t, `
serpapi:
  api_key: serp-key
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, cfg.OpenAI.APIKey)
}

// =============================================================================
// Environment Variable Expansion Tests
// =============================================================================

func TestLoad_ExpandsEnvVars(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("TEST_SERP_KEY", "expanded-key")
	path := writeConfig(t, `
serpapi:
  api_key: ${TEST_SERP_KEY}
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.SerpAPI.APIKey)
}

func TestLoad_ExpandsDefaultFallback(t *testing.T) {
	clearServiceEnv(t)
	os.Unsetenv("TEST_UNSET_VAR")
	path := writeConfig(t, `
serpapi:
  api_key: serp-key
redis:
  url: ${TEST_UNSET_VAR:-redis://fallback:6379}
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "redis://fallback:6379", cfg.Redis.URL)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_EXPAND_A", "alpha")
	os.Unsetenv("TEST_EXPAND_B")

	tests := []struct {
		input    string
		expected string
	}{
		{"$TEST_EXPAND_A", "alpha"},
		{"${TEST_EXPAND_A}", "alpha"},
		{"${TEST_EXPAND_B:-beta}", "beta"},
		{"${TEST_EXPAND_A:-beta}", "alpha"},
		{"${TEST_EXPAND_B}", ""},
		{"prefix-${TEST_EXPAND_A}-suffix", "prefix-alpha-suffix"},
		{"no vars here", "no vars here"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, expandEnvVars(tt.input), "input %q", tt.input)
	}
}

// =============================================================================
// Environment Override Tests
// =============================================================================

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("SERPAPI_KEY", "env-key")
	t.Setenv("PORT", "7070")
	path := writeConfig(t, `
server:
  port: 9090
serpapi:
  api_key: file-key
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.SerpAPI.APIKey)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_IgnoresInvalidPortOverride(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("SERPAPI_KEY", "serp-key")
	t.Setenv("PORT", "not-a-port")
	path := writeConfig(t, `
server:
  port: 9090
serpapi:
  api_key: file-key
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestFromEnv(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("SERPAPI_KEY", "env-serp")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("REDIS_URL", "redis://env:6379")
	t.Setenv("DATABASE_URL", "postgres://env/itinera")

	cfg, err := FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "env-serp", cfg.SerpAPI.APIKey)
	assert.Equal(t, "env-openai", cfg.OpenAI.APIKey)
	assert.Equal(t, "redis://env:6379", cfg.Redis.URL)
	assert.Equal(t, "postgres://env/itinera", cfg.Database.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestFromEnv_RequiresSerpAPIKey(t *testing.T) {
	clearServiceEnv(t)

	_, err := FromEnv()

	assert.Error(t, err)
}

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

// Package store persists generated trip plans and ranking results to
// PostgreSQL for later retrieval and audit.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"itinera/platform/planner"
	"itinera/platform/ranking"
)

// Repository persists plans and rankings.
type Repository interface {
	SavePlan(ctx context.Context, record *PlanRecord) error
	GetPlan(ctx context.Context, id string) (*PlanRecord, error)
	ListPlans(ctx context.Context, userID string, limit int) ([]*PlanRecord, error)
	SaveRanking(ctx context.Context, record *RankingRecord) error
	GetRanking(ctx context.Context, searchID, kind string) (*RankingRecord, error)
}

// PlanRecord is a stored trip plan.
type PlanRecord struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Plan      *planner.TripPlan `json:"plan"`
	CreatedAt time.Time         `json:"created_at"`
}

// RankingRecord is a stored ranking result. Kind is flights, hotels, or
// venues; together with SearchID it uniquely identifies a ranking.
type RankingRecord struct {
	SearchID  string                `json:"search_id"`
	Kind      string                `json:"kind"`
	Response  *ranking.RankResponse `json:"response"`
	CreatedAt time.Time             `json:"created_at"`
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sql.DB
}

// Ensure PostgresRepository implements Repository
var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Connect opens and pings a PostgreSQL connection.
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return db, nil
}

// SavePlan upserts a trip plan record.
func (r *PostgresRepository) SavePlan(ctx context.Context, record *PlanRecord) error {
	if record == nil || record.ID == "" || record.Plan == nil {
		return ErrInvalidInput
	}

	planJSON, err := json.Marshal(record.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	query := `
		INSERT INTO trip_plans (id, user_id, plan, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			plan = EXCLUDED.plan`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
		record.CreatedAt = createdAt
	}

	if _, err := r.db.ExecContext(ctx, query, record.ID, record.UserID, planJSON, createdAt); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// GetPlan retrieves a trip plan by id.
func (r *PostgresRepository) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	query := `
		SELECT id, user_id, plan, created_at
		FROM trip_plans
		WHERE id = $1`

	var record PlanRecord
	var planJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.UserID, &planJSON, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if err := json.Unmarshal(planJSON, &record.Plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &record, nil
}

// ListPlans retrieves the most recent plans for a user, newest first.
func (r *PostgresRepository) ListPlans(ctx context.Context, userID string, limit int) ([]*PlanRecord, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, plan, created_at
		FROM trip_plans
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var records []*PlanRecord
	for rows.Next() {
		var record PlanRecord
		var planJSON []byte
		if err := rows.Scan(&record.ID, &record.UserID, &planJSON, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		if err := json.Unmarshal(planJSON, &record.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan rows: %w", err)
	}
	return records, nil
}

// SaveRanking upserts a ranking result keyed by search id and kind.
func (r *PostgresRepository) SaveRanking(ctx context.Context, record *RankingRecord) error {
	if record == nil || record.SearchID == "" || record.Kind == "" || record.Response == nil {
		return ErrInvalidInput
	}

	respJSON, err := json.Marshal(record.Response)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}

	query := `
		INSERT INTO rankings (search_id, kind, response, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (search_id, kind) DO UPDATE SET
			response = EXCLUDED.response,
			created_at = EXCLUDED.created_at`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
		record.CreatedAt = createdAt
	}

	if _, err := r.db.ExecContext(ctx, query, record.SearchID, record.Kind, respJSON, createdAt); err != nil {
		return fmt.Errorf("failed to save ranking: %w", err)
	}
	return nil
}

// GetRanking retrieves a ranking by search id and kind.
func (r *PostgresRepository) GetRanking(ctx context.Context, searchID, kind string) (*RankingRecord, error) {
	if searchID == "" || kind == "" {
		return nil, ErrInvalidInput
	}

	query := `
		SELECT search_id, kind, response, created_at
		FROM rankings
		WHERE search_id = $1 AND kind = $2`

	var record RankingRecord
	var respJSON []byte
	err := r.db.QueryRowContext(ctx, query, searchID, kind).Scan(
		&record.SearchID, &record.Kind, &respJSON, &record.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}

	if err := json.Unmarshal(respJSON, &record.Response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ranking: %w", err)
	}
	return &record, nil
}

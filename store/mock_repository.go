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

package store

import (
	"context"
	"sync"
)

// MockRepository is a mock implementation of Repository for testing
type MockRepository struct {
	mu       sync.RWMutex
	plans    map[string]*PlanRecord
	rankings map[string]*RankingRecord

	// Error injection for testing
	SavePlanErr    error
	GetPlanErr     error
	ListPlansErr   error
	SaveRankingErr error
	GetRankingErr  error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		plans:    make(map[string]*PlanRecord),
		rankings: make(map[string]*RankingRecord),
	}
}

// Ensure MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

func (r *MockRepository) SavePlan(ctx context.Context, record *PlanRecord) error {
	if r.SavePlanErr != nil {
		return r.SavePlanErr
	}
	if record == nil || record.ID == "" || record.Plan == nil {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.plans[record.ID] = &copied
	return nil
}

func (r *MockRepository) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	if r.GetPlanErr != nil {
		return nil, r.GetPlanErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *MockRepository) ListPlans(ctx context.Context, userID string, limit int) ([]*PlanRecord, error) {
	if r.ListPlansErr != nil {
		return nil, r.ListPlansErr
	}
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*PlanRecord
	for _, record := range r.plans {
		if record.UserID != userID {
			continue
		}
		copied := *record
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MockRepository) SaveRanking(ctx context.Context, record *RankingRecord) error {
	if r.SaveRankingErr != nil {
		return r.SaveRankingErr
	}
	if record == nil || record.SearchID == "" || record.Kind == "" || record.Response == nil {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.rankings[record.SearchID+":"+record.Kind] = &copied
	return nil
}

func (r *MockRepository) GetRanking(ctx context.Context, searchID, kind string) (*RankingRecord, error) {
	if r.GetRankingErr != nil {
		return nil, r.GetRankingErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.rankings[searchID+":"+kind]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *record
	return &copied, nil
}

// Package memory provides an in-memory journal store for tests and
// single-shot runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DeploymentRun // keyed by run_id
}

// NewRunStore creates an empty in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{data: make(map[string]*domain.DeploymentRun)}
}

var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, run *domain.DeploymentRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *run
	s.data[run.RunID] = &copy
	return nil
}

// Update rewrites a run's mutable fields. Returns ErrNotFound if the
// run does not exist.
func (s *RunStore) Update(_ context.Context, run *domain.DeploymentRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[run.RunID]
	if !exists {
		return storage.ErrNotFound
	}

	existing.Network = run.Network
	existing.Status = run.Status
	existing.FA2Address = run.FA2Address
	existing.QuorumAddress = run.QuorumAddress
	existing.MinterAddress = run.MinterAddress
	existing.FailureMsg = run.FailureMsg
	existing.UpdatedAt = run.UpdatedAt
	return nil
}

// Get retrieves a run by its id. Returns ErrNotFound if not exists.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.DeploymentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *run
	return &copy, nil
}

// List returns runs most recently started first.
func (s *RunStore) List(_ context.Context, limit int) ([]*domain.DeploymentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.DeploymentRun, 0, len(s.data))
	for _, run := range s.data {
		copy := *run
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].RunID < result[j].RunID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

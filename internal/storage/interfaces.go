// Package storage defines the deployment journal interface and its
// shared error values. Implementations live in the memory and postgres
// subpackages.
package storage

import (
	"context"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
)

// RunStore persists deployment runs.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if the run id
	// already exists.
	Insert(ctx context.Context, run *domain.DeploymentRun) error

	// Update rewrites a run's status, addresses, failure message, and
	// updated_at. StartedAt is never touched. Returns ErrNotFound if
	// the run does not exist.
	Update(ctx context.Context, run *domain.DeploymentRun) error

	// Get retrieves a run by its id. Returns ErrNotFound if it does
	// not exist.
	Get(ctx context.Context, runID string) (*domain.DeploymentRun, error)

	// List returns up to limit runs, most recently started first.
	// limit <= 0 means all runs.
	List(ctx context.Context, limit int) ([]*domain.DeploymentRun, error)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.DeploymentRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO deployment_runs (
			run_id, network, status,
			fa2_address, quorum_address, minter_address,
			failure_msg, started_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		run.RunID, run.Network, string(run.Status),
		run.FA2Address, run.QuorumAddress, run.MinterAddress,
		run.FailureMsg, run.StartedAt, run.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert deployment run: %w", err)
	}
	return nil
}

// Update rewrites a run's mutable fields. Returns ErrNotFound if the
// run does not exist.
func (s *RunStore) Update(ctx context.Context, run *domain.DeploymentRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE deployment_runs SET
			network = $2, status = $3,
			fa2_address = $4, quorum_address = $5, minter_address = $6,
			failure_msg = $7, updated_at = $8
		WHERE run_id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		run.RunID, run.Network, string(run.Status),
		run.FA2Address, run.QuorumAddress, run.MinterAddress,
		run.FailureMsg, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update deployment run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Get retrieves a run by its id. Returns ErrNotFound if not exists.
func (s *RunStore) Get(ctx context.Context, runID string) (*domain.DeploymentRun, error) {
	query := `
		SELECT run_id, network, status,
			fa2_address, quorum_address, minter_address,
			failure_msg, started_at, updated_at
		FROM deployment_runs
		WHERE run_id = $1
	`

	row := s.pool.QueryRow(ctx, query, runID)
	run, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get deployment run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs, most recently started first.
func (s *RunStore) List(ctx context.Context, limit int) ([]*domain.DeploymentRun, error) {
	query := `
		SELECT run_id, network, status,
			fa2_address, quorum_address, minter_address,
			failure_msg, started_at, updated_at
		FROM deployment_runs
		ORDER BY started_at DESC, run_id ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deployment runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.DeploymentRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployment run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployment run rows: %w", err)
	}
	return runs, nil
}

// scanRun scans a single row into a DeploymentRun.
func scanRun(row pgx.Row) (*domain.DeploymentRun, error) {
	var run domain.DeploymentRun
	var status string

	err := row.Scan(
		&run.RunID, &run.Network, &status,
		&run.FA2Address, &run.QuorumAddress, &run.MinterAddress,
		&run.FailureMsg, &run.StartedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.Status(status)
	return &run, nil
}

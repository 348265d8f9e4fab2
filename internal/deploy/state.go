package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
)

// StateFile is the deployment snapshot's file name inside the workdir.
const StateFile = "state.json"

// ReadState loads a persisted deployment state. A missing file yields
// a fresh init state.
func ReadState(path string) (*domain.DeploymentState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		now := time.Now().UTC()
		return &domain.DeploymentState{Status: domain.StatusInit, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("deploy: read state: %w", err)
	}
	var state domain.DeploymentState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("deploy: parse %s: %w", path, err)
	}
	if !state.Status.Known() {
		return nil, fmt.Errorf("deploy: state %s has unknown status %q", path, state.Status)
	}
	return &state, nil
}

// WriteState persists the deployment state, replacing the file whole.
func WriteState(path string, state *domain.DeploymentState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("deploy: marshal state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("deploy: write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("deploy: write state: %w", err)
	}
	return nil
}

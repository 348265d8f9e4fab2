package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/storage"
)

func testRun(id string, startedAt time.Time) *domain.DeploymentRun {
	return &domain.DeploymentRun{
		RunID:     id,
		Network:   "ghostnet",
		Status:    domain.StatusInit,
		StartedAt: startedAt,
		UpdatedAt: startedAt,
	}
}

func TestRunStore_InsertAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := testRun("run1", time.Now().UTC())
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, "run1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Network != "ghostnet" || got.Status != domain.StatusInit {
		t.Errorf("Run mismatch: %+v", got)
	}

	// The returned record is a copy.
	got.FA2Address = "KT1Mutated"
	again, err := store.Get(ctx, "run1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.FA2Address != "" {
		t.Error("mutating a returned run leaked into the store")
	}
}

func TestRunStore_DuplicateKey(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := testRun("run1", time.Now().UTC())
	if err := store.Insert(ctx, run); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, run)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestRunStore_InvalidInput(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil run, got %v", err)
	}
	if err := store.Insert(ctx, &domain.DeploymentRun{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty run id, got %v", err)
	}
}

func TestRunStore_Update(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Second)
	if err := store.Insert(ctx, testRun("run1", started)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	update := &domain.DeploymentRun{
		RunID:         "run1",
		Network:       "ghostnet",
		Status:        domain.StatusMinterDeployed,
		FA2Address:    "KT1Fa2",
		QuorumAddress: "KT1Quorum",
		MinterAddress: "KT1Minter",
		UpdatedAt:     started.Add(time.Minute),
	}
	if err := store.Update(ctx, update); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get(ctx, "run1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != domain.StatusMinterDeployed || got.MinterAddress != "KT1Minter" {
		t.Errorf("Update not applied: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt changed by update: %v, want %v", got.StartedAt, started)
	}
}

func TestRunStore_UpdateMissing(t *testing.T) {
	store := NewRunStore()

	err := store.Update(context.Background(), testRun("ghost", time.Now()))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_GetMissing(t *testing.T) {
	store := NewRunStore()

	_, err := store.Get(context.Background(), "ghost")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRunStore_ListOrdering(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.Insert(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Insert %s failed: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if runs[i].RunID != want {
			t.Errorf("runs[%d] = %s, want %s", i, runs[i].RunID, want)
		}
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 2 || limited[0].RunID != "new" {
		t.Errorf("Limited list = %v", limited)
	}
}

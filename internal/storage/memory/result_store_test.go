package memory

import (
	"context"
	"errors"
	"testing"

	"wager-lab/internal/storage"
)

func TestResultStore_InsertAndGet_PreservesOrder(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	stakes := []float64{120, 0, 80.5, 0, 3000}
	if err := store.InsertBulk(ctx, "run-1", stakes); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	// Caller's slice is not retained
	stakes[0] = -1

	got, err := store.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	want := []float64{120, 0, 80.5, 0, 3000}
	if len(got) != len(want) {
		t.Fatalf("expected %d stakes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trial %d: got %f, want %f", i, got[i], want[i])
		}
	}
}

func TestResultStore_DuplicateKey(t *testing.T) {
	store := NewResultStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", []float64{1}); err != nil {
		t.Fatalf("First InsertBulk failed: %v", err)
	}
	if err := store.InsertBulk(ctx, "run-1", []float64{2}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestResultStore_InvalidInput(t *testing.T) {
	store := NewResultStore()

	if err := store.InsertBulk(context.Background(), "", []float64{1}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestResultStore_NotFound(t *testing.T) {
	store := NewResultStore()

	_, err := store.GetByRunID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

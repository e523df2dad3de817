package storage

import (
	"errors"
	"testing"
)

func TestMissing(t *testing.T) {
	err := Missing("run", "run-7")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Missing() = %v, want ErrNotFound", err)
	}
	if got, want := err.Error(), `run "run-7": not found`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if got, want := Missing("results", "").Error(), "results: not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

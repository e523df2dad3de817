package storage

import (
	"errors"
	"fmt"
)

// Sentinels returned by every backend. Match them with errors.Is.
var (
	// ErrNotFound: no run, results or cache entry under the requested key.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey: runs and their results are written once and never replaced.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput: nil run or empty run ID.
	ErrInvalidInput = errors.New("invalid input")
)

// Missing wraps ErrNotFound with the kind of record and the key that was looked up.
func Missing(kind, key string) error {
	if key == "" {
		return fmt.Errorf("%s: %w", kind, ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}

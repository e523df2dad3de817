// Package rng provides the injectable uniform random sources used by the trial engine.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// Source yields uniform samples in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Factory returns the random source for a stream index.
// Distinct indices must yield independent sources.
type Factory func(stream int) Source

// NewSeeded returns a deterministic generator for seed.
func NewSeeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// StreamSeed derives the seed of sub-stream `stream` from a base seed.
// SHA256(base|stream) keeps neighbouring streams uncorrelated.
func StreamSeed(base int64, stream int) int64 {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d|%d", base, stream)))
	return int64(binary.BigEndian.Uint64(hash[:8]))
}

// SeededFactory returns a Factory whose streams are seeded from base.
func SeededFactory(base int64) Factory {
	return func(stream int) Source {
		return NewSeeded(StreamSeed(base, stream))
	}
}

// TimeSeed returns a non-zero seed from the wall clock.
func TimeSeed() int64 {
	seed := time.Now().UnixNano()
	if seed == 0 {
		seed = 1
	}
	return seed
}

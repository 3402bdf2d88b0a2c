// SPDX-License-Identifier: MIT
// File: rng.go
// Role: Deterministic random streams for tie-breaking.
// Concurrency:
//   - *rand.Rand is not goroutine-safe; every algorithm instance owns its stream.

package algorithm

import "math/rand"

// defaultSeed replaces a zero seed so the default run is still reproducible.
const defaultSeed int64 = 1

// NewRand returns the stream-th independent generator derived from seed.
func NewRand(seed int64, stream uint64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}

	return rand.New(rand.NewSource(deriveSeed(seed, stream)))
}

// deriveSeed mixes a parent seed and a stream id with the SplitMix64 finalizer.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}

// pick returns a uniformly chosen element of ties. ties must not be empty.
func pick[T any](r *rand.Rand, ties []T) T {
	if len(ties) == 1 {
		return ties[0]
	}

	return ties[r.Intn(len(ties))]
}

// shuffle permutes a in place (Fisher-Yates).
func shuffle[T any](r *rand.Rand, a []T) {
	for i := len(a) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

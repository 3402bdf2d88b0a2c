// SPDX-License-Identifier: MIT
// File: types.go
// Role: Lifecycle states, the runtime surface algorithms run against, the hook set
//       every concrete strategy implements, and sentinel errors.

package algorithm

import (
	"context"
	"errors"
	"math/rand"

	"github.com/Fs0ociety/CityScover-sub000/problem"
	"github.com/Fs0ociety/CityScover-sub000/progress"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Sentinel errors.
var (
	// ErrUnsupportedAlgorithm is returned by New for a stage flow with no implementation.
	ErrUnsupportedAlgorithm = errors.New("algorithm: unsupported algorithm type")

	// ErrNoSuccessor is returned when a tour walk finds no valid successor.
	ErrNoSuccessor = errors.New("algorithm: no valid successor")

	// ErrNoStartingSolution is returned by improvement algorithms started without a tour.
	ErrNoStartingSolution = errors.New("algorithm: no starting solution")
)

// Status is the lifecycle state of an algorithm.
type Status int32

const (
	StatusCreated Status = iota
	StatusInitializing
	StatusRunning
	StatusTerminating
	StatusTerminated
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusInitializing:
		return "initializing"
	case StatusRunning:
		return "running"
	case StatusTerminating:
		return "terminating"
	case StatusTerminated:
		return "terminated"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Runtime is what an algorithm needs from the solver running it.
type Runtime interface {
	// CityMap is the read-only template every tour imports from.
	CityMap() *tour.Graph
	Problem() *problem.Problem

	// BestSolution returns the best candidate published so far, or nil.
	BestSolution() *solution.Candidate
	// PublishBest replaces the best candidate when c beats it and reports whether it did.
	PublishBest(c *solution.Candidate) bool

	// Enqueue hands c to the validation pipeline.
	Enqueue(ctx context.Context, c *solution.Candidate) error
	// Await blocks until every candidate has been validated and evaluated.
	Await(ctx context.Context, cs ...*solution.Candidate) error

	Reporter() *progress.Reporter

	// Rand returns a fresh random stream, independent of the ones handed out before.
	Rand() *rand.Rand
}

// hooks is the set of steps a concrete strategy plugs into the lifecycle.
type hooks interface {
	initialize(ctx context.Context) error
	performStep(ctx context.Context) error
	stopConditions() bool
	onError(err error)
	finalize(ctx context.Context) error
	release()
}

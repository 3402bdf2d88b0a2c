// SPDX-License-Identifier: MIT

package solver

import (
	"github.com/google/uuid"

	"github.com/Fs0ociety/CityScover-sub000/progress"
)

// Option customizes a Solver.
type Option func(*Solver)

// WithQueueSize sets the buffer of every pipeline channel. Zero makes each hand-off synchronous.
func WithQueueSize(n int) Option {
	if n < 0 {
		panic("solver: WithQueueSize(n<0)")
	}
	return func(s *Solver) { s.queueSize = n }
}

// WithObserver subscribes o for the lifetime of the Solver.
func WithObserver(o progress.Observer) Option {
	if o == nil {
		panic("solver: WithObserver(nil)")
	}
	return func(s *Solver) { s.reporter.Subscribe(o) }
}

// WithID replaces the generated run id.
func WithID(id uuid.UUID) Option {
	return func(s *Solver) { s.id = id }
}

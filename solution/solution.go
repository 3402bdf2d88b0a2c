// Package solution defines the candidate solution exchanged between algorithms and
// the validation/evaluation pipeline.
//
// A Candidate owns its tour graph. Its identity comes from a process-wide counter and
// never changes. Validity and cost are written by the pipeline stages, in that order,
// before the candidate's completion channel is closed; readers observe them only after
// awaiting that channel.
package solution

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// ErrAlreadyEvaluated is returned by Evaluate on its second call.
var ErrAlreadyEvaluated = errors.New("solution: candidate already evaluated")

var lastID atomic.Int64

// NextID returns a fresh, strictly increasing identifier.
func NextID() int64 { return lastID.Add(1) }

// Move describes a 2-opt exchange by the two routes it removed. Each route is stored
// as an unordered pair and the two pairs are sorted, so equal exchanges compare equal
// whatever the orientation they were derived in.
type Move struct {
	First  tour.RouteKey
	Second tour.RouteKey
}

// NewMove builds the normalized move removing routes a and b.
func NewMove(a, b tour.RouteKey) Move {
	a, b = a.Undirected(), b.Undirected()
	if b.From < a.From || (b.From == a.From && b.To < a.To) {
		a, b = b, a
	}

	return Move{First: a, Second: b}
}

func (m Move) String() string {
	return fmt.Sprintf("{%d-%d, %d-%d}", m.First.From, m.First.To, m.Second.From, m.Second.To)
}

// Candidate is one tour proposed by an algorithm.
type Candidate struct {
	id   int64
	Tour *tour.Graph

	// Move is the exchange that produced the candidate, nil for constructive steps.
	Move *Move

	// Filled by the validator stage.
	Validity map[string]bool
	TourTime time.Duration

	// Filled by the evaluator stage through Evaluate.
	score     int
	cost      float64
	penalty   float64
	evaluated bool

	err error
}

// New wraps t in a candidate with a fresh id.
func New(t *tour.Graph) *Candidate {
	return &Candidate{id: NextID(), Tour: t, Validity: make(map[string]bool)}
}

// ID returns the candidate identifier.
func (c *Candidate) ID() int64 { return c.id }

// SetValidity records whether the named constraint holds.
func (c *Candidate) SetValidity(name string, ok bool) { c.Validity[name] = ok }

// Valid reports whether every recorded constraint holds. A candidate with a
// pipeline error is never valid.
func (c *Candidate) Valid() bool {
	if c.err != nil {
		return false
	}
	for _, ok := range c.Validity {
		if !ok {
			return false
		}
	}

	return true
}

// Violations returns the names of the violated constraints, sorted.
func (c *Candidate) Violations() []string {
	var out []string
	for name, ok := range c.Validity {
		if !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)

	return out
}

// Evaluate stores score, cost and penalty. It may be called once.
func (c *Candidate) Evaluate(score int, cost, penalty float64) error {
	if c.evaluated {
		return fmt.Errorf("%w: %d", ErrAlreadyEvaluated, c.id)
	}
	c.score, c.cost, c.penalty = score, cost, penalty
	c.evaluated = true

	return nil
}

// Score returns the summed score of the tour's points.
func (c *Candidate) Score() int { return c.score }

// Cost returns the evaluated cost, score minus penalty.
func (c *Candidate) Cost() float64 { return c.cost }

// Penalty returns the penalty charged for violated constraints.
func (c *Candidate) Penalty() float64 { return c.penalty }

// Evaluated reports whether Evaluate has run.
func (c *Candidate) Evaluated() bool { return c.evaluated }

// Fail records a pipeline error for the candidate.
func (c *Candidate) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Err returns the pipeline error, if any.
func (c *Candidate) Err() error { return c.err }

func (c *Candidate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d cost=%.2f penalty=%.2f", c.id, c.cost, c.penalty)
	if c.Tour != nil {
		fmt.Fprintf(&b, " %s", c.Tour)
	}
	if v := c.Violations(); len(v) > 0 {
		fmt.Fprintf(&b, " violates=%s", strings.Join(v, ","))
	}

	return b.String()
}

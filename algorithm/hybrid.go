// SPDX-License-Identifier: MIT
// File: hybrid.go
// Role: Insertion/update improvement heuristic. One driver runs a hybridPolicy that
//       proposes moves on a working tour; accepted moves are kept, rejected or
//       non-improving ones are undone. When insertion runs dry without adding a
//       point, the update policy takes over; a successful update restarts insertion.
//       Restarts are bounded by HybridMaxRestarts.

package algorithm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// errSkipMove marks a move the city map cannot realize; the driver moves on.
var errSkipMove = errors.New("algorithm: move not realizable")

// hybridMove describes one insertion or replacement around pred → … → succ.
type hybridMove struct {
	in   int // point entering the tour
	out  int // point leaving the tour, 0 for a pure insertion
	pred int
	succ int
}

// hybridPolicy selects and applies moves for the hybrid driver.
type hybridPolicy interface {
	name() string
	// prepare builds the move queue against the current working tour.
	prepare(h *hybrid) error
	// next pops the following move; false when the queue is empty.
	next(h *hybrid) (hybridMove, bool)
	apply(h *hybrid, m hybridMove) error
	undo(h *hybrid, m hybridMove) error
}

type hybrid struct {
	*Algorithm
	base

	initial     hybridPolicy
	policy      hybridPolicy
	maxRestarts int
	threshold   time.Duration

	start    int
	working  *tour.Graph
	current  *solution.Candidate
	restarts int
	applied  int // successful moves under the active policy
	done     bool
}

func newHybrid(a *Algorithm, p hybridPolicy) (*hybrid, error) {
	restarts, err := a.flow.Parameters.Int(stageflow.HybridMaxRestarts)
	if err != nil {
		return nil, err
	}
	h := &hybrid{Algorithm: a, initial: p, maxRestarts: restarts}
	if v, ok := a.flow.Parameters.Get(stageflow.HybridTimeWalkThreshold); ok {
		if h.threshold, err = v.AsDuration(); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func (h *hybrid) initialize(context.Context) error {
	start, err := h.startingSolution()
	if err != nil {
		return err
	}
	h.start = h.rt.Problem().Settings.StartPoint
	h.current = start
	h.consider(start)
	h.working = start.Tour.DeepCopy()
	h.restarts = 0
	h.done = false

	return h.switchTo(h.initial)
}

func (h *hybrid) switchTo(p hybridPolicy) error {
	h.policy = p
	h.applied = 0

	return p.prepare(h)
}

func (h *hybrid) performStep(ctx context.Context) error {
	m, ok := h.policy.next(h)
	if !ok {
		return h.exhausted()
	}
	if err := h.policy.apply(h, m); err != nil {
		if errors.Is(err, errSkipMove) {
			return nil
		}
		return err
	}
	c := solution.New(h.working.DeepCopy())
	if err := h.submit(ctx, c); err != nil {
		return err
	}
	if !c.Valid() || !h.rt.Problem().Better(c, h.current) {
		return h.policy.undo(h, m)
	}
	h.current = c
	h.consider(c)
	h.applied++
	ctxlog.FromContext(ctx).Debug("hybrid move kept", "policy", h.policy.name(), "in", m.in, "out", m.out, "cost", c.Cost())

	if _, isUpdate := h.policy.(*updatePolicy); isUpdate {
		return h.restart()
	}

	return nil
}

// exhausted handles an empty queue: insertion that added nothing hands over to
// update; anything else ends the run.
func (h *hybrid) exhausted() error {
	if _, isInsertion := h.policy.(*insertionPolicy); isInsertion {
		switch {
		case h.applied == 0 && h.threshold > 0:
			return h.switchTo(&updatePolicy{})
		case h.applied > 0 && h.restarts < h.maxRestarts:
			// The tour changed; another pass may fit points skipped earlier.
			h.restarts++
			return h.switchTo(&insertionPolicy{})
		}
	}
	h.done = true

	return nil
}

// restart returns to insertion after a successful update.
func (h *hybrid) restart() error {
	if h.restarts >= h.maxRestarts {
		h.done = true
		return nil
	}
	h.restarts++

	return h.switchTo(&insertionPolicy{})
}

func (h *hybrid) stopConditions() bool { return h.failed() || h.done }

func (h *hybrid) finalize(context.Context) error {
	h.publish()
	return nil
}

func (h *hybrid) release() { h.working = nil }

// excluded returns the city points outside the working tour, by descending score
// then ascending id.
func (h *hybrid) excluded() []*tour.PointWorker {
	var out []*tour.PointWorker
	for _, w := range h.rt.CityMap().Points() {
		if !h.working.ContainsPoint(w.ID()) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entity.Score > out[j].Entity.Score })

	return out
}

// insertionPolicy splices excluded points, highest score first, between the tour's
// last point and the start.
type insertionPolicy struct {
	ids []int
	// pred is where the closing route was detached by the last apply.
	pred int
}

func (*insertionPolicy) name() string { return "insertion" }

func (ip *insertionPolicy) prepare(h *hybrid) error {
	ip.ids = ip.ids[:0]
	for _, w := range h.excluded() {
		ip.ids = append(ip.ids, w.ID())
	}

	return nil
}

func (ip *insertionPolicy) next(*hybrid) (hybridMove, bool) {
	if len(ip.ids) == 0 {
		return hybridMove{}, false
	}
	id := ip.ids[0]
	ip.ids = ip.ids[1:]

	return hybridMove{in: id}, true
}

func (ip *insertionPolicy) apply(h *hybrid, m hybridMove) error {
	city := h.rt.CityMap()
	end := h.start
	if h.working.PointCount() > 1 {
		var err error
		if end, err = h.working.Prev(h.start); err != nil {
			return fmt.Errorf("%w: %w", ErrNoSuccessor, err)
		}
	}
	if !city.ContainsRoute(end, m.in) || !city.ContainsRoute(m.in, h.start) {
		return errSkipMove
	}
	if end != h.start {
		if err := h.working.RemoveRoute(end, h.start); err != nil {
			return err
		}
	}
	if err := h.working.ImportPoint(city, m.in); err != nil {
		return err
	}
	if err := h.working.ImportRoute(city, end, m.in); err != nil {
		return err
	}
	ip.pred = end

	return h.working.ImportRoute(city, m.in, h.start)
}

func (ip *insertionPolicy) undo(h *hybrid, m hybridMove) error {
	if err := h.working.RemovePoint(m.in); err != nil {
		return err
	}
	if ip.pred == h.start {
		return nil
	}

	return h.working.ImportRoute(h.rt.CityMap(), ip.pred, h.start)
}

// updatePolicy replaces a low-score tour point by a higher-score excluded point
// reachable from its predecessor within the walking-time threshold.
type updatePolicy struct {
	moves []hybridMove
}

func (*updatePolicy) name() string { return "update" }

func (u *updatePolicy) prepare(h *hybrid) error {
	city := h.rt.CityMap()
	speed := h.rt.Problem().Settings.WalkingSpeed
	u.moves = u.moves[:0]

	inTour := h.working.Points()
	// Lowest score first; equal scores in random order.
	shuffle(h.rng, inTour)
	sort.SliceStable(inTour, func(i, j int) bool { return inTour[i].Entity.Score < inTour[j].Entity.Score })
	candidates := h.excluded()

	for _, old := range inTour {
		if old.ID() == h.start {
			continue
		}
		pred, err := h.working.Prev(old.ID())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoSuccessor, err)
		}
		succ, err := h.working.Next(old.ID())
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoSuccessor, err)
		}
		for _, w := range candidates {
			if w.Entity.Score <= old.Entity.Score {
				break
			}
			meters, ok := routeMeters(city, pred, w.ID())
			if !ok || !city.ContainsRoute(w.ID(), succ) {
				continue
			}
			if tour.TravelTime(meters, speed) >= h.threshold {
				continue
			}
			u.moves = append(u.moves, hybridMove{in: w.ID(), out: old.ID(), pred: pred, succ: succ})
		}
	}

	return nil
}

func (u *updatePolicy) next(*hybrid) (hybridMove, bool) {
	if len(u.moves) == 0 {
		return hybridMove{}, false
	}
	m := u.moves[0]
	u.moves = u.moves[1:]

	return m, true
}

func (u *updatePolicy) apply(h *hybrid, m hybridMove) error {
	return h.replace(m.out, m.in, m.pred, m.succ)
}

func (u *updatePolicy) undo(h *hybrid, m hybridMove) error {
	return h.replace(m.in, m.out, m.pred, m.succ)
}

// replace swaps point out for point in between pred and succ.
func (h *hybrid) replace(out, in, pred, succ int) error {
	city := h.rt.CityMap()
	if err := h.working.RemovePoint(out); err != nil {
		return err
	}
	if err := h.working.ImportPoint(city, in); err != nil {
		return err
	}
	if err := h.working.ImportRoute(city, pred, in); err != nil {
		return err
	}

	return h.working.ImportRoute(city, in, succ)
}

// SPDX-License-Identifier: MIT

package algorithm

import (
	"context"
	"math"

	"github.com/Fs0ociety/CityScover-sub000/problem"
	"github.com/Fs0ociety/CityScover-sub000/solution"
)

// insertion places point between the consecutive tour points from and to. On a
// lone starting point from and to are both the start.
type insertion struct {
	point    int
	from, to int
	detour   float64
}

// cheapestInsertion keeps a closed cycle and, at every step, inserts the point whose
// detour d(from,p) + d(p,to) - d(from,to) is smallest.
type cheapestInsertion struct {
	greedy
}

func newCheapestInsertion(a *Algorithm) *cheapestInsertion {
	return &cheapestInsertion{greedy: greedy{Algorithm: a}}
}

func (ci *cheapestInsertion) initialize(context.Context) error { return ci.initGreedy() }

func (ci *cheapestInsertion) selectInsertion() (insertion, bool) {
	city := ci.rt.CityMap()
	type gap struct{ from, to int }
	var gaps []gap
	if ci.working.PointCount() == 1 {
		gaps = []gap{{ci.start, ci.start}}
	} else {
		for _, r := range ci.working.Routes() {
			gaps = append(gaps, gap{r.Entity.From, r.Entity.To})
		}
	}

	var ties []insertion
	for _, id := range city.PointIDs() {
		if !ci.processable(id) {
			continue
		}
		for _, gp := range gaps {
			in, ok := routeMeters(city, gp.from, id)
			if !ok {
				continue
			}
			out, ok := routeMeters(city, id, gp.to)
			if !ok {
				continue
			}
			detour := in + out
			if gp.from != gp.to {
				direct, _ := routeMeters(city, gp.from, gp.to)
				detour -= direct
			}
			cand := insertion{point: id, from: gp.from, to: gp.to, detour: detour}
			switch {
			case len(ties) == 0 || detour < ties[0].detour-problem.Tolerance:
				ties = []insertion{cand}
			case math.Abs(detour-ties[0].detour) <= problem.Tolerance:
				ties = append(ties, cand)
			}
		}
	}
	if len(ties) == 0 {
		return insertion{}, false
	}

	return pick(ci.rng, ties), true
}

func (ci *cheapestInsertion) performStep(ctx context.Context) error {
	in, ok := ci.selectInsertion()
	if !ok {
		ci.exhausted = true
		return nil
	}
	if err := ci.apply(in); err != nil {
		return err
	}
	c := solution.New(ci.working.DeepCopy())
	if err := ci.submit(ctx, c); err != nil {
		return err
	}
	if !c.Valid() {
		ci.unprocessable[in.point] = true
		return ci.undo(in)
	}
	ci.consider(c)

	return nil
}

func (ci *cheapestInsertion) apply(in insertion) error {
	city := ci.rt.CityMap()
	if in.from != in.to {
		if err := ci.working.RemoveRoute(in.from, in.to); err != nil {
			return err
		}
	}
	if err := ci.working.ImportPoint(city, in.point); err != nil {
		return err
	}
	if err := ci.working.ImportRoute(city, in.from, in.point); err != nil {
		return err
	}

	return ci.working.ImportRoute(city, in.point, in.to)
}

func (ci *cheapestInsertion) undo(in insertion) error {
	if err := ci.working.RemovePoint(in.point); err != nil {
		return err
	}
	if in.from == in.to {
		return nil
	}

	return ci.working.ImportRoute(ci.rt.CityMap(), in.from, in.to)
}

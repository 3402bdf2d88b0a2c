// SPDX-License-Identifier: MIT
// Package problem defines what a good tour is: the objective, the named constraints,
// the penalty for violating them and the single comparison predicate every
// "is this candidate better" decision goes through.
package problem

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Constraint names.
const (
	Tmax        = "Tmax"
	TimeWindows = "TimeWindows"
)

const (
	// DefaultPenalty is charged once per violated, non-relaxed constraint.
	DefaultPenalty = 100.0

	// OvertimePenaltyPerMinute is charged on top of DefaultPenalty for each minute
	// the tour ends past its time budget.
	OvertimePenaltyPerMinute = 1.0

	// Tolerance is the absolute margin under which two costs are equal.
	Tolerance = 1e-9
)

// Sentinel errors.
var (
	ErrUnsupportedProblem = errors.New("problem: unsupported problem family")
	ErrUnknownConstraint  = errors.New("problem: unknown constraint")
)

// Family enumerates the problem families a configuration may request.
type Family int

const (
	TeamOrienteering Family = iota
	TravelingSalesman
	OrienteeringTW
)

var familyNames = map[Family]string{
	TeamOrienteering:  "team_orienteering",
	TravelingSalesman: "traveling_salesman",
	OrienteeringTW:    "orienteering_tw",
}

func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}

	return fmt.Sprintf("Family(%d)", int(f))
}

// ParseFamily maps a configuration name to a Family.
func ParseFamily(s string) (Family, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for f, name := range familyNames {
		if name == norm {
			return f, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnsupportedProblem, s)
}

// Settings are the tour parameters the constraints are checked against.
type Settings struct {
	StartPoint   int
	Arrival      time.Duration
	TourDuration time.Duration
	WalkingSpeed float64 // km/h

	// Relaxed constraints are always reported satisfied.
	Relaxed []string
}

// Constraint is a named boolean check on a validated candidate.
type Constraint struct {
	Name string

	// Satisfied inspects a candidate whose tour times are up to date.
	Satisfied func(p *Problem, c *solution.Candidate) bool

	// Extra is an optional penalty added to DefaultPenalty when violated.
	Extra func(p *Problem, c *solution.Candidate) float64
}

// Problem binds objective, constraints and comparison direction.
type Problem struct {
	Name        string
	Family      Family
	Maximize    bool
	Objective   func(t *tour.Graph) int
	Constraints []Constraint
	Penalty     float64
	Relaxed     map[string]bool
	Settings    Settings
}

// New builds the problem for family. Only TeamOrienteering is implemented.
func New(family Family, s Settings) (*Problem, error) {
	if family != TeamOrienteering {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProblem, family)
	}
	p := &Problem{
		Name:      "Team Orienteering Problem",
		Family:    family,
		Maximize:  true,
		Objective: func(t *tour.Graph) int { return t.TotalScore() },
		Constraints: []Constraint{
			{Name: Tmax, Satisfied: withinBudget, Extra: overtimePenalty},
			{Name: TimeWindows, Satisfied: insideOpeningHours},
		},
		Penalty:  DefaultPenalty,
		Relaxed:  make(map[string]bool, len(s.Relaxed)),
		Settings: s,
	}
	for _, name := range s.Relaxed {
		if !p.hasConstraint(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownConstraint, name)
		}
		p.Relaxed[name] = true
	}

	return p, nil
}

func (p *Problem) hasConstraint(name string) bool {
	for _, c := range p.Constraints {
		if c.Name == name {
			return true
		}
	}

	return false
}

// Deadline is the latest admissible completion time.
func (p *Problem) Deadline() time.Duration {
	return p.Settings.Arrival + p.Settings.TourDuration
}

func withinBudget(p *Problem, c *solution.Candidate) bool {
	return c.TourTime <= p.Deadline()
}

func overtimePenalty(p *Problem, c *solution.Candidate) float64 {
	over := c.TourTime - p.Deadline()
	if over <= 0 {
		return 0
	}

	return over.Minutes() * OvertimePenaltyPerMinute
}

func insideOpeningHours(_ *Problem, c *solution.Candidate) bool {
	for _, w := range c.Tour.Points() {
		if !w.Entity.Admits(w.Arrival) {
			return false
		}
	}

	return true
}

// CompareSolutionsCost reports whether cost a is better than cost b, or at least as
// good when considerEquality is set. Costs within Tolerance are equal.
func (p *Problem) CompareSolutionsCost(a, b float64, considerEquality bool) bool {
	if math.Abs(a-b) <= Tolerance {
		return considerEquality
	}
	if p.Maximize {
		return a > b
	}

	return a < b
}

// Better reports whether candidate a strictly beats b. A nil b is beaten by any a.
func (p *Problem) Better(a, b *solution.Candidate) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}

	return p.CompareSolutionsCost(a.Cost(), b.Cost(), false)
}

// Validate checks that the candidate's tour is a closed cycle through the starting
// point, recomputes its timing and records the outcome of every constraint.
func (p *Problem) Validate(c *solution.Candidate) error {
	start := p.Settings.StartPoint
	if err := c.Tour.ValidateCycle(start); err != nil {
		return fmt.Errorf("problem: validate #%d: %w", c.ID(), err)
	}
	done, err := c.Tour.UpdateTimes(start, p.Settings.Arrival, p.Settings.WalkingSpeed)
	if err != nil {
		return fmt.Errorf("problem: validate #%d: %w", c.ID(), err)
	}
	c.TourTime = done
	for _, k := range p.Constraints {
		c.SetValidity(k.Name, p.Relaxed[k.Name] || k.Satisfied(p, c))
	}

	return nil
}

// Evaluate writes score, penalty and cost of a validated candidate.
func (p *Problem) Evaluate(c *solution.Candidate) error {
	score := p.Objective(c.Tour)
	penalty := p.penalty(c)
	cost := float64(score) - penalty
	if !p.Maximize {
		cost = float64(score) + penalty
	}

	return c.Evaluate(score, cost, penalty)
}

func (p *Problem) penalty(c *solution.Candidate) float64 {
	total := 0.0
	for _, k := range p.Constraints {
		if ok, seen := c.Validity[k.Name]; !seen || ok {
			continue
		}
		total += p.Penalty
		if k.Extra != nil {
			total += k.Extra(p, c)
		}
	}

	return total
}

// Assess validates and evaluates t on a throwaway candidate and returns its cost.
// The arrival and departure times of t are updated as a side effect.
func (p *Problem) Assess(t *tour.Graph) (float64, error) {
	c := solution.New(t)
	if err := p.Validate(c); err != nil {
		return 0, err
	}
	if err := p.Evaluate(c); err != nil {
		return 0, err
	}

	return c.Cost(), nil
}

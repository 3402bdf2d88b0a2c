// SPDX-License-Identifier: MIT
// Package stageflow describes which algorithms a solver runs, how many times, with
// which parameters, and which improvement algorithms they chain into.
//
// A Flow is a tree: each node names an algorithm, carries its parameters and owns its
// child flows. Validate checks the whole tree once, before anything runs, so missing
// parameters surface as configuration errors instead of mid-run failures.
package stageflow

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	ErrMissingParameter = errors.New("stageflow: missing required parameter")
	ErrWrongKind        = errors.New("stageflow: parameter has the wrong kind")
	ErrUnknownParameter = errors.New("stageflow: unknown parameter")
	ErrUnknownAlgorithm = errors.New("stageflow: unknown algorithm type")
	ErrInvalidFlow      = errors.New("stageflow: invalid stage flow")
)

// AlgorithmType names a concrete algorithm.
type AlgorithmType int

const (
	NearestNeighbor AlgorithmType = iota + 1
	NearestNeighborKnapsack
	CheapestInsertion
	TwoOpt
	LinKernighan
	HybridInsertion
	HybridUpdate
	TabuSearch
)

var algorithmNames = map[AlgorithmType]string{
	NearestNeighbor:         "nearest_neighbor",
	NearestNeighborKnapsack: "nearest_neighbor_knapsack",
	CheapestInsertion:       "cheapest_insertion",
	TwoOpt:                  "two_opt",
	LinKernighan:            "lin_kernighan",
	HybridInsertion:         "hybrid_insertion",
	HybridUpdate:            "hybrid_update",
	TabuSearch:              "tabu_search",
}

func (a AlgorithmType) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}

	return fmt.Sprintf("AlgorithmType(%d)", int(a))
}

// ParseAlgorithmType maps a configuration name to an AlgorithmType.
func ParseAlgorithmType(s string) (AlgorithmType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for a, name := range algorithmNames {
		if name == norm {
			return a, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// IsConstructive reports whether a builds a tour from scratch.
func (a AlgorithmType) IsConstructive() bool {
	return a == NearestNeighbor || a == NearestNeighborKnapsack || a == CheapestInsertion
}

// IsImprovement reports whether a is an improvement heuristic run on stagnation.
func (a AlgorithmType) IsImprovement() bool {
	return a == LinKernighan || a == HybridInsertion || a == HybridUpdate
}

// Parameters is an insertion-ordered parameter set.
type Parameters struct {
	codes  []ParameterCode
	values map[ParameterCode]Value
}

// NewParameters returns an empty set.
func NewParameters() *Parameters {
	return &Parameters{values: make(map[ParameterCode]Value)}
}

// Set stores v under code, keeping the original position on overwrite.
func (p *Parameters) Set(code ParameterCode, v Value) *Parameters {
	if _, ok := p.values[code]; !ok {
		p.codes = append(p.codes, code)
	}
	p.values[code] = v

	return p
}

// Get returns the value under code.
func (p *Parameters) Get(code ParameterCode) (Value, bool) {
	if p == nil {
		return Value{}, false
	}
	v, ok := p.values[code]

	return v, ok
}

// Has reports whether code is set.
func (p *Parameters) Has(code ParameterCode) bool {
	_, ok := p.Get(code)
	return ok
}

// Codes returns the codes in insertion order.
func (p *Parameters) Codes() []ParameterCode {
	if p == nil {
		return nil
	}
	out := make([]ParameterCode, len(p.codes))
	copy(out, p.codes)

	return out
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}

	return len(p.codes)
}

// Int returns the integer parameter code.
func (p *Parameters) Int(code ParameterCode) (int, error) {
	v, ok := p.Get(code)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParameter, code)
	}

	return v.AsInt()
}

// IntOr returns the integer parameter code or def when unset.
func (p *Parameters) IntOr(code ParameterCode, def int) int {
	if n, err := p.Int(code); err == nil {
		return n
	}

	return def
}

// BoolOr returns the boolean parameter code or def when unset.
func (p *Parameters) BoolOr(code ParameterCode, def bool) bool {
	v, ok := p.Get(code)
	if !ok {
		return def
	}
	b, err := v.AsBool()
	if err != nil {
		return def
	}

	return b
}

// Value returns the raw value or ErrMissingParameter.
func (p *Parameters) Value(code ParameterCode) (Value, error) {
	v, ok := p.Get(code)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrMissingParameter, code)
	}

	return v, nil
}

// Flow is one stage of a solver plan.
type Flow struct {
	Algorithm    AlgorithmType
	RunningCount int
	Parameters   *Parameters
	Children     []*Flow
}

// New returns a flow running alg once with params and children. A nil params is an
// empty set.
func New(alg AlgorithmType, params *Parameters, children ...*Flow) *Flow {
	if params == nil {
		params = NewParameters()
	}

	return &Flow{Algorithm: alg, RunningCount: 1, Parameters: params, Children: children}
}

// required lists, per algorithm, the parameters that must be present.
var required = map[AlgorithmType][]ParameterCode{
	TwoOpt:          {MaxIterations},
	LinKernighan:    {LKMaxSteps},
	HybridInsertion: {HybridMaxRestarts},
	HybridUpdate:    {HybridMaxRestarts, HybridTimeWalkThreshold},
	TabuSearch:      {MaxIterations, TabuTenureFactor, TabuMaxDeadlockIterations},
}

// Validate checks the flow tree: known algorithm, positive running count, required
// parameters present with the right kinds, and child shapes that the algorithm can run.
func (f *Flow) Validate() error {
	return f.validate(f.Algorithm.String())
}

func (f *Flow) validate(path string) error {
	if _, ok := algorithmNames[f.Algorithm]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, path)
	}
	if f.RunningCount < 1 {
		return fmt.Errorf("%w: %s: running count %d", ErrInvalidFlow, path, f.RunningCount)
	}
	for _, code := range required[f.Algorithm] {
		if !f.Parameters.Has(code) {
			return fmt.Errorf("%w: %s needs %s", ErrMissingParameter, path, code)
		}
	}
	for _, code := range f.Parameters.Codes() {
		v, _ := f.Parameters.Get(code)
		if !v.accepts(code.Kind()) {
			return fmt.Errorf("%w: %s.%s: want %s, have %s", ErrWrongKind, path, code, code.Kind(), v.Kind())
		}
	}
	if err := f.validatePositive(path); err != nil {
		return err
	}
	if err := f.validateChildren(path); err != nil {
		return err
	}
	for _, c := range f.Children {
		if err := c.validate(path + "/" + c.Algorithm.String()); err != nil {
			return err
		}
	}

	return nil
}

func (f *Flow) validatePositive(path string) error {
	for _, code := range []ParameterCode{MaxIterations, LKMaxSteps, TabuTenureFactor} {
		if n, err := f.Parameters.Int(code); err == nil && n < 1 {
			return fmt.Errorf("%w: %s.%s must be positive", ErrInvalidFlow, path, code)
		}
	}

	return nil
}

func (f *Flow) validateChildren(path string) error {
	switch {
	case f.Algorithm.IsConstructive():
		for _, c := range f.Children {
			if c.Algorithm.IsConstructive() {
				return fmt.Errorf("%w: %s cannot chain into %s", ErrInvalidFlow, path, c.Algorithm)
			}
		}
	case f.Algorithm == TwoOpt:
		for _, c := range f.Children {
			if !c.Algorithm.IsImprovement() {
				return fmt.Errorf("%w: %s cannot chain into %s", ErrInvalidFlow, path, c.Algorithm)
			}
		}
		if len(f.Children) > 0 && !f.Parameters.Has(ImprovementThreshold) {
			return fmt.Errorf("%w: %s needs %s to run children", ErrMissingParameter, path, ImprovementThreshold)
		}
	case f.Algorithm == TabuSearch:
		if len(f.Children) != 1 || f.Children[0].Algorithm != TwoOpt {
			return fmt.Errorf("%w: %s wraps exactly one %s", ErrInvalidFlow, path, TwoOpt)
		}
	default:
		if len(f.Children) > 0 {
			return fmt.Errorf("%w: %s takes no children", ErrInvalidFlow, path)
		}
	}

	return nil
}

func (f *Flow) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s x%d", f.Algorithm, f.RunningCount)
	if n := f.Parameters.Len(); n > 0 {
		parts := make([]string, 0, n)
		for _, code := range f.Parameters.Codes() {
			v, _ := f.Parameters.Get(code)
			parts = append(parts, code.String()+"="+v.String())
		}
		fmt.Fprintf(&b, " {%s}", strings.Join(parts, ", "))
	}
	if len(f.Children) > 0 {
		kids := make([]string, len(f.Children))
		for i, c := range f.Children {
			kids[i] = c.String()
		}
		fmt.Fprintf(&b, " -> [%s]", strings.Join(kids, "; "))
	}

	return b.String()
}

// Default returns the plan used when a configuration names no stages: nearest
// neighbor chaining into a tabu-wrapped 2-opt that falls back to Lin-Kernighan.
func Default() []*Flow {
	lk := New(LinKernighan, NewParameters().Set(LKMaxSteps, Int(5)))
	twoOpt := New(TwoOpt, NewParameters().
		Set(MaxIterations, Int(10)).
		Set(ImprovementThreshold, Int(3)), lk)
	tabu := New(TabuSearch, NewParameters().
		Set(MaxIterations, Int(10)).
		Set(TabuTenureFactor, Int(2)).
		Set(TabuMaxDeadlockIterations, Int(3)), twoOpt)
	nn := New(NearestNeighbor, NewParameters().Set(CanDoImprovements, Bool(true)), tabu)

	return []*Flow{nn}
}

// SPDX-License-Identifier: MIT

package algorithm

import (
	"errors"
	"fmt"

	"github.com/Fs0ociety/CityScover-sub000/stageflow"
)

// New builds the algorithm a stage flow names. The flow is validated first, so a
// missing parameter surfaces here as a configuration error.
func New(flow *stageflow.Flow, rt Runtime) (*Algorithm, error) {
	if flow == nil {
		return nil, fmt.Errorf("%w: nil stage flow", ErrUnsupportedAlgorithm)
	}
	if err := flow.Validate(); err != nil {
		if errors.Is(err, stageflow.ErrUnknownAlgorithm) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm, err)
		}
		return nil, err
	}
	a := &Algorithm{flow: flow, rt: rt, rng: rt.Rand(), acceptImprovementsOnly: true}

	var err error
	switch flow.Algorithm {
	case stageflow.NearestNeighbor:
		a.impl = newNearestNeighbor(a, nearest)
	case stageflow.NearestNeighborKnapsack:
		a.impl = newNearestNeighbor(a, knapsack)
	case stageflow.CheapestInsertion:
		a.impl = newCheapestInsertion(a)
	case stageflow.TwoOpt:
		a.impl, err = newTwoOpt(a)
	case stageflow.LinKernighan:
		a.impl, err = newLinKernighan(a)
	case stageflow.HybridInsertion:
		a.impl, err = newHybrid(a, &insertionPolicy{})
	case stageflow.HybridUpdate:
		a.impl, err = newHybrid(a, &updatePolicy{})
	case stageflow.TabuSearch:
		a.impl, err = newTabu(a)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, flow.Algorithm)
	}
	if err != nil {
		return nil, err
	}

	return a, nil
}

// SPDX-License-Identifier: MIT
// Package metrics publishes pipeline counters through expvar. They are process-wide
// and show up under /debug/vars when the CLI serves them.
package metrics

import (
	"expvar"
	"math"
	"time"
)

// Candidate counters keyed by outcome, and per-algorithm stage timings.
var (
	candidates    = expvar.NewMap("cityscover_candidates_total")
	stageRuns     = expvar.NewMap("cityscover_stage_runs_total")
	stageDuration = expvar.NewMap("cityscover_stage_duration_ms")
)

var (
	bestCost = new(expvar.Float)
	runs     = new(expvar.Int)
)

// Outcome labels used with the candidates map.
const (
	Enqueued = "enqueued"
	Accepted = "accepted"
	Rejected = "rejected"
	Failed   = "failed"
)

func init() {
	expvar.Publish("cityscover_best_cost", bestCost)
	expvar.Publish("cityscover_runs_total", runs)
	bestCost.Set(math.NaN())
}

// Candidate counts one candidate under outcome.
func Candidate(outcome string) { candidates.Add(outcome, 1) }

// CandidateCount returns the counter for outcome.
func CandidateCount(outcome string) int64 { return mapInt(candidates, outcome) }

// StageDone records one completed stage run of algorithm.
func StageDone(algorithm string, elapsed time.Duration) {
	stageRuns.Add(algorithm, 1)
	stageDuration.Add(algorithm, elapsed.Milliseconds())
}

// StageRuns returns how many stages of algorithm completed.
func StageRuns(algorithm string) int64 { return mapInt(stageRuns, algorithm) }

// SetBestCost records the cost of the latest published best candidate.
func SetBestCost(v float64) { bestCost.Set(v) }

// BestCost returns the last published best cost, NaN before the first one.
func BestCost() float64 { return bestCost.Value() }

// RunStarted counts a solver run.
func RunStarted() { runs.Add(1) }

// Runs returns the number of solver runs started by this process.
func Runs() int64 { return runs.Value() }

func mapInt(m *expvar.Map, key string) int64 {
	if v, ok := m.Get(key).(*expvar.Int); ok {
		return v.Value()
	}

	return 0
}

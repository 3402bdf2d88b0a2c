// SPDX-License-Identifier: MIT
// Package cityscover plans walking tours: given a city of scored points of
// interest and a time budget, it searches for the closed tour from a starting
// point that collects the most score without breaking the tour's constraints.
//
// The module is organized in layers, each in its own package:
//
//	core/       generic thread-safe directed graph with weighted edges and undo-friendly mutation
//	tour/       points, routes and the tour graph built on core (cycles, splices, timing)
//	solution/   candidate solutions: a tour plus validity, score, cost and penalty
//	problem/    problem families (team orienteering, TSP, orienteering with time windows),
//	            constraints, penalties and the cost comparator
//	stageflow/  the recursive stage plan: which algorithms run, how often, with which parameters
//	algorithm/  the lifecycle framework and every strategy (nearest neighbor, cheapest insertion,
//	            2-opt, Lin-Kernighan, hybrid insertion/update, tabu search)
//	solver/     the orchestrator and its intake → validator → evaluator pipeline
//	progress/   progress events, observers, a slog tracker and a live stream
//	config/     configuration record, HCL loading, environment overrides and validation
//	citymap/    city sources: explicit records, complete graphs, street closure, synthetic cities, PostgreSQL
//	snapshot/   msgpack + zstd records of a run's best tour
//	metrics/    expvar counters
//	ctxlog/     slog logger carried through context.Context
//
// A typical run:
//
//	cfg, _ := config.Load("tour.hcl")
//	city, _ := citymap.Synthetic(30, citymap.WithSeed(cfg.Seed))
//	sv, _ := solver.New(cfg, city)
//	best, err := sv.Run(ctx)
//
// The cmd/cityscover command wires the same steps behind flags.
package cityscover

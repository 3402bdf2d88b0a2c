// SPDX-License-Identifier: MIT
// Command cityscover builds or loads a city map, runs the configured stage plan
// and prints the best walking tour found.
package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Fs0ociety/CityScover-sub000/citymap"
	"github.com/Fs0ociety/CityScover-sub000/config"
	"github.com/Fs0ociety/CityScover-sub000/ctxlog"
	"github.com/Fs0ociety/CityScover-sub000/progress"
	"github.com/Fs0ociety/CityScover-sub000/snapshot"
	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/solver"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

const defaultSyntheticPoints = 20

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	opts, help, err := parseFlags(args, stderr)
	if err != nil || help {
		return err
	}
	logger := newLogger(opts, stderr)
	ctx = ctxlog.WithLogger(ctx, logger)

	cfg, err := loadConfiguration(opts)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	city, err := loadCity(ctx, opts, cfg)
	if err != nil {
		return err
	}

	if opts.metricsAddr != "" {
		shutdown := serveMetrics(ctx, opts.metricsAddr)
		defer shutdown()
	}

	sv, err := solver.New(cfg, city, solver.WithObserver(progress.NewLogTracker(logger)))
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.resumePath != "" {
		if err = resume(ctx, sv, opts.resumePath); err != nil {
			return err
		}
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	best, runErr := sv.Run(ctx)
	if best == nil {
		if runErr != nil {
			return runErr
		}
		return &ExitError{Code: 1, Message: "no valid tour found"}
	}

	if err = printTour(stdout, cfg.StartPoint, best); err != nil {
		return err
	}
	if opts.snapshotPath != "" {
		if err = writeSnapshot(opts.snapshotPath, sv.ID().String(), cfg.StartPoint, best); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", opts.snapshotPath)
	}

	return runErr
}

func loadConfiguration(opts *options) (*config.Configuration, error) {
	if err := config.LoadDotEnv(opts.envFiles...); err != nil {
		return nil, err
	}
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// loadCity reads the city from PostgreSQL when a database is configured and
// generates a synthetic one otherwise.
func loadCity(ctx context.Context, opts *options, cfg *config.Configuration) (*tour.Graph, error) {
	if opts.databaseURL != "" {
		src, err := citymap.OpenPostgres(ctx, opts.databaseURL)
		if err != nil {
			return nil, err
		}
		defer src.Close()

		return src.Load(ctx, cfg.TourCategory, cfg.StartPoint, cfg.PointsCount)
	}

	n := opts.points
	if n == 0 {
		n = cfg.PointsCount
	}
	if n == 0 {
		n = defaultSyntheticPoints
	}
	cityOpts := []citymap.Option{citymap.WithSeed(cfg.Seed), citymap.WithCategory(cfg.TourCategory)}
	if opts.closes > opts.opens {
		cityOpts = append(cityOpts, citymap.WithOpeningHours(opts.opens, opts.closes))
	}

	return citymap.Synthetic(n, cityOpts...)
}

func resume(ctx context.Context, sv *solver.Solver, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	rec, err := snapshot.Read(f)
	if err != nil {
		return err
	}
	t, err := rec.Rebuild(sv.CityMap())
	if err != nil {
		return err
	}
	c, err := sv.Seed(t)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("resumed from snapshot", "path", path, "run", rec.RunID, "cost", c.Cost(), "valid", c.Valid())

	return nil
}

func writeSnapshot(path, runID string, start int, best *solution.Candidate) error {
	rec, err := snapshot.FromCandidate(runID, start, best)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = snapshot.Write(f, rec); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func printTour(w io.Writer, start int, best *solution.Candidate) error {
	seq, err := best.Tour.Sequence(start)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPOINT\tNAME\tSCORE\tARRIVAL\tDEPARTURE")
	for i, id := range seq {
		p, err := best.Tour.Point(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\n", i+1, id, p.Entity.Name, p.Entity.Score, clock(p.Arrival), clock(p.Departure))
	}
	if err = tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "score %d  cost %.2f  distance %.0f m  back at %s\n",
		best.Score(), best.Cost(), best.Tour.TotalDistance(), clock(best.TourTime))

	return err
}

// clock formats an offset from midnight as hh:mm.
func clock(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// serveMetrics exposes expvar on addr until the returned function is called.
func serveMetrics(ctx context.Context, addr string) (shutdown func()) {
	log := ctxlog.FromContext(ctx)
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Fs0ociety/CityScover-sub000/config"
)

// ExitError carries the process exit code for a failure.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// options are the parsed command-line flags.
type options struct {
	configPath   string
	envFiles     []string
	points       int
	databaseURL  string
	snapshotPath string
	resumePath   string
	metricsAddr  string
	opens        time.Duration
	closes       time.Duration
	timeout      time.Duration
	logFormat    string
	logLevel     slog.Level
}

const usage = `
cityscover plans a walking tour that maximizes the score of visited points of
interest within a time budget.

Usage:
  cityscover [options] [CONFIG]

Arguments:
  CONFIG
    HCL configuration file. Without one the default configuration and stage plan are used.

Environment:
  CITYSCOVER_* variables override configuration fields; .env files are loaded first.
  CITYSCOVER_DATABASE_URL is used when -database is not given.

Options:
`

// parseFlags reads args. help reports that usage was printed and nothing should run.
func parseFlags(args []string, output io.Writer) (opts *options, help bool, err error) {
	fs := flag.NewFlagSet("cityscover", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, usage)
		fs.PrintDefaults()
	}

	opts = &options{}
	var envFiles, logLevel, hours string
	fs.StringVar(&opts.configPath, "config", "", "HCL configuration file.")
	fs.StringVar(&envFiles, "env", ".env", "Comma separated .env files to load.")
	fs.IntVar(&opts.points, "points", 0, "Synthetic city size; 0 uses points_count from the configuration or 20.")
	fs.StringVar(&opts.databaseURL, "database", os.Getenv("CITYSCOVER_DATABASE_URL"), "PostgreSQL URL of the city map; empty generates a synthetic city.")
	fs.StringVar(&hours, "hours", "", "Opening hours of synthetic points, e.g. 09:00-18:00; empty means always open.")
	fs.StringVar(&opts.snapshotPath, "snapshot", "", "Write the best tour to this file.")
	fs.StringVar(&opts.resumePath, "resume", "", "Seed the run with the tour stored in this snapshot.")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve expvar metrics on this address while running.")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this long; 0 means no limit.")
	fs.StringVar(&opts.logFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	fs.StringVar(&logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")

	if err = fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.configPath == "" && fs.NArg() > 0 {
		opts.configPath = fs.Arg(0)
	}
	for _, f := range strings.Split(envFiles, ",") {
		if f = strings.TrimSpace(f); f != "" {
			opts.envFiles = append(opts.envFiles, f)
		}
	}

	opts.logFormat = strings.ToLower(opts.logFormat)
	if opts.logFormat != "text" && opts.logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	if err = opts.logLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn' or 'error'"}
	}
	if hours != "" {
		if opts.opens, opts.closes, err = parseHours(hours); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}
	if opts.points < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid points: must not be negative"}
	}

	return opts, false, nil
}

// parseHours reads "open-close" with both ends as accepted by config.ParseClock.
func parseHours(s string) (opens, closes time.Duration, err error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid hours %q: want open-close", s)
	}
	if opens, err = config.ParseClock(from); err != nil {
		return 0, 0, err
	}
	if closes, err = config.ParseClock(to); err != nil {
		return 0, 0, err
	}
	if closes <= opens {
		return 0, 0, fmt.Errorf("invalid hours %q: closes before it opens", s)
	}

	return opens, closes, nil
}

// newLogger builds the process logger from the parsed options.
func newLogger(opts *options, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: opts.logLevel}
	if opts.logFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

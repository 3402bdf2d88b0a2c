// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CITYSCOVER_"

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	return nil
}

// ApplyEnv overrides cfg fields from CITYSCOVER_* variables:
//
//	CITYSCOVER_PROBLEM, CITYSCOVER_POINTS_COUNT, CITYSCOVER_TOUR_CATEGORY,
//	CITYSCOVER_START_POINT, CITYSCOVER_WALKING_SPEED, CITYSCOVER_ARRIVAL,
//	CITYSCOVER_TOUR_DURATION, CITYSCOVER_RELAXED (comma separated), CITYSCOVER_SEED.
func ApplyEnv(cfg *Configuration) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Configuration, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	bad := func(key, v string) error {
		return fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, key, v)
	}

	if v, ok := get("PROBLEM"); ok {
		cfg.Problem = v
	}
	if v, ok := get("TOUR_CATEGORY"); ok {
		cfg.TourCategory = v
	}
	if v, ok := get("POINTS_COUNT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return bad("POINTS_COUNT", v)
		}
		cfg.PointsCount = n
	}
	if v, ok := get("START_POINT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return bad("START_POINT", v)
		}
		cfg.StartPoint = n
	}
	if v, ok := get("WALKING_SPEED"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return bad("WALKING_SPEED", v)
		}
		cfg.WalkingSpeed = f
	}
	if v, ok := get("ARRIVAL"); ok {
		d, err := ParseClock(v)
		if err != nil {
			return bad("ARRIVAL", v)
		}
		cfg.Arrival = d
	}
	if v, ok := get("TOUR_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return bad("TOUR_DURATION", v)
		}
		cfg.TourDuration = d
	}
	if v, ok := get("RELAXED"); ok {
		cfg.Relaxed = cfg.Relaxed[:0]
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Relaxed = append(cfg.Relaxed, name)
			}
		}
	}
	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return bad("SEED", v)
		}
		cfg.Seed = n
	}

	return nil
}

// SPDX-License-Identifier: MIT
// Package config holds the working configuration of a solver run: problem family,
// tour settings, the random seed and the stage flows to execute.
//
// A Configuration comes from Default, from an HCL document (Parse, Load) or from
// both, with CITYSCOVER_* environment variables applied on top (ApplyEnv).
// Validate checks field ranges through struct tags and the stage flows through
// stageflow.Flow.Validate.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Fs0ociety/CityScover-sub000/problem"
	"github.com/Fs0ociety/CityScover-sub000/stageflow"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Configuration is the working configuration record.
type Configuration struct {
	Problem      string        `validate:"required,oneof=team_orienteering traveling_salesman orienteering_tw"`
	PointsCount  int           `validate:"gte=0"`
	TourCategory string        `validate:"omitempty,max=64"`
	StartPoint   int           `validate:"gt=0"`
	WalkingSpeed float64       `validate:"gt=0,lte=30"` // km/h
	Arrival      time.Duration `validate:"gte=0,lt=24h"`
	TourDuration time.Duration `validate:"gt=0,lte=24h"`
	Relaxed      []string      `validate:"dive,oneof=Tmax TimeWindows"`
	Seed         int64

	// Stages run in order. Empty means stageflow.Default.
	Stages []*stageflow.Flow `validate:"-"`
}

// Default returns a one-day team orienteering configuration starting from point 1.
func Default() *Configuration {
	return &Configuration{
		Problem:      problem.TeamOrienteering.String(),
		StartPoint:   1,
		WalkingSpeed: 4,
		Arrival:      9 * time.Hour,
		TourDuration: 6 * time.Hour,
		Seed:         1,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and every stage flow.
func (c *Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	for i, f := range c.Stages {
		if f == nil {
			return fmt.Errorf("%w: stage %d is empty", ErrInvalid, i+1)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("stage %d: %w", i+1, err)
		}
	}

	return nil
}

// Family parses the problem family name.
func (c *Configuration) Family() (problem.Family, error) {
	return problem.ParseFamily(c.Problem)
}

// Settings returns the tour parameters the problem checks constraints against.
func (c *Configuration) Settings() problem.Settings {
	relaxed := make([]string, len(c.Relaxed))
	copy(relaxed, c.Relaxed)

	return problem.Settings{
		StartPoint:   c.StartPoint,
		Arrival:      c.Arrival,
		TourDuration: c.TourDuration,
		WalkingSpeed: c.WalkingSpeed,
		Relaxed:      relaxed,
	}
}

// Flows returns the configured stages, or the default plan when none are set.
func (c *Configuration) Flows() []*stageflow.Flow {
	if len(c.Stages) == 0 {
		return stageflow.Default()
	}

	return c.Stages
}

// ParseClock reads a time of day written "15:04" or as a Go duration ("9h30m").
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("15:04", s); err == nil {
		return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: time of day %q", ErrInvalid, s)
	}

	return d, nil
}

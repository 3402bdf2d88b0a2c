// SPDX-License-Identifier: MIT
// Package snapshot persists the outcome of a solver run as a compact record:
// msgpack encoded, zstd compressed.
//
// A Record keeps the visiting sequence and the per-stop timing of a tour, not the
// tour graph itself. Rebuild turns it back into a tour against the city map the
// run used, so a later run can be seeded with it.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Fs0ociety/CityScover-sub000/solution"
	"github.com/Fs0ociety/CityScover-sub000/tour"
)

// Version is written into every record; Decode refuses other versions.
const Version = 1

// Sentinel errors.
var (
	ErrVersion       = errors.New("snapshot: unsupported version")
	ErrEmptySequence = errors.New("snapshot: empty sequence")
)

// Stop is one visited point with its timing as of the run.
type Stop struct {
	Point     int           `msgpack:"point"`
	Name      string        `msgpack:"name,omitempty"`
	Score     int           `msgpack:"score"`
	Arrival   time.Duration `msgpack:"arrival"`
	Departure time.Duration `msgpack:"departure"`
}

// Record is the persisted form of a candidate.
type Record struct {
	Version    int           `msgpack:"v"`
	RunID      string        `msgpack:"run_id"`
	Candidate  int64         `msgpack:"candidate"`
	Stops      []Stop        `msgpack:"stops"`
	Distance   float64       `msgpack:"distance"`
	TourTime   time.Duration `msgpack:"tour_time"`
	Score      int           `msgpack:"score"`
	Cost       float64       `msgpack:"cost"`
	Penalty    float64       `msgpack:"penalty"`
	Valid      bool          `msgpack:"valid"`
	Violations []string      `msgpack:"violations,omitempty"`
	CreatedAt  time.Time     `msgpack:"created_at"`
}

// FromCandidate captures c, walking its tour from start.
func FromCandidate(runID string, start int, c *solution.Candidate) (*Record, error) {
	if c == nil || c.Tour == nil {
		return nil, ErrEmptySequence
	}
	seq, err := c.Tour.Sequence(start)
	if err != nil {
		return nil, fmt.Errorf("snapshot: candidate %d: %w", c.ID(), err)
	}
	stops := make([]Stop, 0, len(seq))
	for _, id := range seq {
		w, err := c.Tour.Point(id)
		if err != nil {
			return nil, fmt.Errorf("snapshot: candidate %d: %w", c.ID(), err)
		}
		stops = append(stops, Stop{
			Point:     id,
			Name:      w.Entity.Name,
			Score:     w.Entity.Score,
			Arrival:   w.Arrival,
			Departure: w.Departure,
		})
	}

	return &Record{
		Version:    Version,
		RunID:      runID,
		Candidate:  c.ID(),
		Stops:      stops,
		Distance:   c.Tour.TotalDistance(),
		TourTime:   c.TourTime,
		Score:      c.Score(),
		Cost:       c.Cost(),
		Penalty:    c.Penalty(),
		Valid:      c.Valid(),
		Violations: c.Violations(),
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

// Sequence returns the visited point ids in order.
func (r *Record) Sequence() []int {
	ids := make([]int, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.Point
	}

	return ids
}

// Rebuild imports the recorded cycle from city. The returned tour has fresh
// timing; validate it against a problem before trusting the recorded cost.
func (r *Record) Rebuild(city *tour.Graph) (*tour.Graph, error) {
	ids := r.Sequence()
	if len(ids) == 0 {
		return nil, ErrEmptySequence
	}
	t := tour.New()
	for _, id := range ids {
		if err := t.ImportPoint(city, id); err != nil {
			return nil, fmt.Errorf("snapshot: rebuild: %w", err)
		}
	}
	if len(ids) == 1 {
		return t, nil
	}
	for i, id := range ids {
		if err := t.ImportRoute(city, id, ids[(i+1)%len(ids)]); err != nil {
			return nil, fmt.Errorf("snapshot: rebuild: %w", err)
		}
	}

	return t, nil
}

// Encode returns the compressed msgpack form of r.
func Encode(r *Record) ([]byte, error) {
	raw, err := msgpack.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(raw, nil), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Record, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decompress: %w", err)
	}
	var r Record
	if err = msgpack.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}

	return &r, nil
}

// Write streams the encoded form of r to w.
func Write(w io.Writer, r *Record) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err = msgpack.NewEncoder(zw).Encode(r); err != nil {
		zw.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}

	return zw.Close()
}

// Read decodes one record written by Write or Encode.
func Read(rd io.Reader) (*Record, error) {
	zr, err := zstd.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	defer zr.Close()
	var r Record
	if err = msgpack.NewDecoder(zr).Decode(&r); err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}

	return &r, nil
}

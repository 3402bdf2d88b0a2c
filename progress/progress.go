// Package progress delivers solver events to observers: per-candidate acceptance or
// rejection, free-text messages and per-stage completion.
//
// A Reporter is the subject. Observers subscribe and receive every event published
// afterwards, synchronously and in subscription order. LogTracker writes events to a
// slog.Logger; Stream exposes them as a buffered channel.
package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one of SolutionAccepted, SolutionRejected, Message or Completed.
type Event interface{ isEvent() }

// SolutionAccepted reports a candidate satisfying every non-relaxed constraint.
type SolutionAccepted struct {
	ID   int64
	Cost float64
}

// SolutionRejected reports a candidate violating at least one constraint.
type SolutionRejected struct {
	ID         int64
	Cost       float64
	Penalty    float64
	Violations []string
}

// Message is a free-text progress line.
type Message struct {
	Text string
}

// Completed reports the end of a top-level stage.
type Completed struct {
	Stage     int
	Algorithm string
	Elapsed   time.Duration
}

func (SolutionAccepted) isEvent() {}
func (SolutionRejected) isEvent() {}
func (Message) isEvent()          {}
func (Completed) isEvent()        {}

// Observer receives events.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) { f(e) }

type subscription struct {
	id int
	o  Observer
}

// Reporter fans events out to its observers. The zero value is ready to use.
type Reporter struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

// NewReporter returns an empty reporter.
func NewReporter() *Reporter { return &Reporter{} }

// Subscribe registers o and returns the function that removes it. Calling the
// returned function more than once is a no-op.
func (r *Reporter) Subscribe(o Observer) (unsubscribe func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscription{id: id, o: o})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Reporter) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every observer.
func (r *Reporter) Publish(e Event) {
	r.mu.RLock()
	subs := make([]subscription, len(r.subs))
	copy(subs, r.subs)
	r.mu.RUnlock()

	for _, s := range subs {
		s.o.Notify(e)
	}
}

// Messagef publishes a formatted Message.
func (r *Reporter) Messagef(format string, args ...any) {
	r.Publish(Message{Text: fmt.Sprintf(format, args...)})
}

// Observers returns the number of subscribed observers.
func (r *Reporter) Observers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.subs)
}

// LogTracker writes events to a structured logger.
type LogTracker struct {
	Logger *slog.Logger
}

// NewLogTracker returns a tracker writing to logger, or to slog.Default when nil.
func NewLogTracker(logger *slog.Logger) *LogTracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogTracker{Logger: logger}
}

// Notify logs e. Accepted candidates are logged at debug level.
func (t *LogTracker) Notify(e Event) {
	switch ev := e.(type) {
	case SolutionAccepted:
		t.Logger.Debug("candidate accepted", "candidate", ev.ID, "cost", ev.Cost)
	case SolutionRejected:
		t.Logger.Debug("candidate rejected", "candidate", ev.ID, "cost", ev.Cost,
			"penalty", ev.Penalty, "violations", ev.Violations)
	case Message:
		t.Logger.Info(ev.Text)
	case Completed:
		t.Logger.Info("stage completed", "stage", ev.Stage, "algorithm", ev.Algorithm, "elapsed", ev.Elapsed)
	}
}

// Stream is an observer that forwards events to a buffered channel. Events that do
// not fit are dropped and counted.
type Stream struct {
	mu      sync.Mutex
	ch      chan Event
	closed  bool
	dropped atomic.Int64
}

// NewStream returns a stream buffering up to size events.
func NewStream(size int) *Stream {
	return &Stream{ch: make(chan Event, size)}
}

// Events returns the receive side of the stream.
func (s *Stream) Events() <-chan Event { return s.ch }

// Notify enqueues e without blocking.
func (s *Stream) Notify(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many events did not fit in the buffer.
func (s *Stream) Dropped() int64 { return s.dropped.Load() }

// Close closes the channel. Later events are discarded.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

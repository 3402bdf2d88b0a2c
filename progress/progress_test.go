package progress_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fs0ociety/CityScover-sub000/progress"
)

type recorder struct{ events []progress.Event }

func (r *recorder) Notify(e progress.Event) { r.events = append(r.events, e) }

func TestSubscribeAndUnsubscribe(t *testing.T) {
	r := progress.NewReporter()
	a, b := &recorder{}, &recorder{}
	unsubA := r.Subscribe(a)
	unsubB := r.Subscribe(b)
	require.Equal(t, 2, r.Observers())

	r.Publish(progress.SolutionAccepted{ID: 1, Cost: 10})
	unsubA()
	unsubA()
	r.Messagef("step %d", 2)
	unsubB()
	r.Publish(progress.Message{Text: "nobody"})

	assert.Equal(t, []progress.Event{progress.SolutionAccepted{ID: 1, Cost: 10}}, a.events)
	assert.Equal(t, []progress.Event{
		progress.SolutionAccepted{ID: 1, Cost: 10},
		progress.Message{Text: "step 2"},
	}, b.events)
	assert.Zero(t, r.Observers())
}

func TestObserverFunc(t *testing.T) {
	var got []string
	r := progress.NewReporter()
	r.Subscribe(progress.ObserverFunc(func(e progress.Event) {
		if m, ok := e.(progress.Message); ok {
			got = append(got, m.Text)
		}
	}))
	r.Messagef("a")
	r.Publish(progress.Completed{Stage: 1})
	r.Messagef("b")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestStreamDropsWhenFull(t *testing.T) {
	s := progress.NewStream(2)
	for i := 0; i < 5; i++ {
		s.Notify(progress.SolutionAccepted{ID: int64(i)})
	}
	assert.Equal(t, int64(3), s.Dropped())
	s.Close()
	s.Close()
	s.Notify(progress.Message{Text: "late"})

	var ids []int64
	for e := range s.Events() {
		ids = append(ids, e.(progress.SolutionAccepted).ID)
	}
	assert.Equal(t, []int64{0, 1}, ids)
}

func TestLogTracker(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := progress.NewLogTracker(logger)

	tr.Notify(progress.SolutionRejected{ID: 4, Cost: 1, Penalty: 100, Violations: []string{"Tmax"}})
	tr.Notify(progress.Completed{Stage: 2, Algorithm: "two_opt", Elapsed: time.Second})

	out := buf.String()
	assert.Contains(t, out, "candidate rejected")
	assert.Contains(t, out, "candidate=4")
	assert.Contains(t, out, "stage completed")
	assert.Contains(t, out, "algorithm=two_opt")
}

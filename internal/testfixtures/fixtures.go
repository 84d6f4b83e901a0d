package testfixtures

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
)

var eventCounter uint64

// Thursday morning; the weekday matters to several series fixtures.
var referenceTime = time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// EventOption configures a generated event fixture.
type EventOption func(*event.Event)

// WithStart overrides the fixture's start, keeping its duration.
func WithStart(start time.Time) EventOption {
	return func(ev *event.Event) {
		d := ev.Duration()
		ev.Start = start
		ev.End = start.Add(d)
	}
}

// WithSubject overrides the fixture's subject.
func WithSubject(subject string) EventOption {
	return func(ev *event.Event) {
		ev.Subject = subject
	}
}

// NewEvent returns a deterministic one-hour event fixture. Successive calls
// produce distinct subjects and starts, so fixtures never collide on the
// duplicate key unless a test arranges it.
func NewEvent(opts ...EventOption) event.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	ev, err := event.New(fmt.Sprintf("event-%03d", idx), start, start.Add(time.Hour))
	if err != nil {
		panic(err)
	}
	for _, opt := range opts {
		opt(&ev)
	}
	return ev
}

// NewTemplate returns a weekly Monday/Wednesday/Friday template starting at
// the reference time, terminated after three occurrences.
func NewTemplate() recurrence.Template {
	weekdays, err := recurrence.ParseWeekdaySet("MWF")
	if err != nil {
		panic(err)
	}
	return recurrence.Template{
		Subject:    "Class",
		Start:      referenceTime,
		End:        referenceTime.Add(time.Hour),
		Weekdays:   weekdays,
		Terminator: recurrence.ByCount(3),
	}
}

// IDGenerator produces deterministic identifiers for tests.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator that yields identifiers with the
// given prefix. When prefix is empty, "id" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}

// NextFunc exposes Next as a function suitable for dependency injection.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/calendar-planner/internal/event"
)

var (
	// ErrBadCount indicates a non-positive repeat count.
	ErrBadCount = errors.New("recurrence: repeat count must be positive")
	// ErrUntilBeforeStart indicates an until-date earlier than the template's
	// start date.
	ErrUntilBeforeStart = errors.New("recurrence: until-date precedes start")
)

// TerminatorKind selects how a series stops generating occurrences.
type TerminatorKind int

const (
	// TerminateByCount stops after a fixed number of occurrences.
	TerminateByCount TerminatorKind = iota
	// TerminateByDate stops once a candidate date passes an inclusive bound.
	TerminateByDate
)

// Terminator bounds occurrence generation. Exactly one of Count or Until is
// meaningful, selected by Kind.
type Terminator struct {
	Kind  TerminatorKind
	Count int
	Until time.Time
}

// ByCount builds a count terminator.
func ByCount(n int) Terminator {
	return Terminator{Kind: TerminateByCount, Count: n}
}

// ByDate builds an until-date terminator. Only until's calendar date is
// significant; its time-of-day is ignored.
func ByDate(until time.Time) Terminator {
	return Terminator{Kind: TerminateByDate, Until: until}
}

// Template is the generator state of a weekly series: the first occurrence's
// interval fixes the time-of-day and duration, the weekday set picks the
// dates, and the terminator bounds the expansion.
type Template struct {
	Subject    string
	Start      time.Time
	End        time.Time
	Weekdays   WeekdaySet
	Terminator Terminator
}

// Validate checks the template invariants without generating anything.
func (t Template) Validate() error {
	if t.Weekdays.IsEmpty() {
		return fmt.Errorf("%w: empty set", ErrBadWeekday)
	}
	if t.Start.After(t.End) {
		return event.ErrStartAfterEnd
	}
	switch t.Terminator.Kind {
	case TerminateByCount:
		if t.Terminator.Count <= 0 {
			return fmt.Errorf("%w: %d", ErrBadCount, t.Terminator.Count)
		}
	case TerminateByDate:
		if event.DaysBetween(t.Terminator.Until, t.Start) > 0 {
			return ErrUntilBeforeStart
		}
	}
	return nil
}

// Generate expands the template into its full occurrence list, in
// chronological order. The first occurrence falls on the first date on or
// after Start whose weekday is in the set; each occurrence carries the
// template's subject and duration at that date.
func (t Template) Generate() ([]event.Event, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	duration := t.End.Sub(t.Start)
	occurrences := make([]event.Event, 0)
	current := t.Start
	for {
		if t.Terminator.Kind == TerminateByCount && len(occurrences) >= t.Terminator.Count {
			break
		}
		if t.Terminator.Kind == TerminateByDate && event.DaysBetween(t.Terminator.Until, current) > 0 {
			break
		}
		if t.Weekdays.Contains(current.Weekday()) {
			ev, err := event.New(t.Subject, current, current.Add(duration))
			if err != nil {
				return nil, err
			}
			occurrences = append(occurrences, ev)
		}
		current = current.AddDate(0, 0, 1)
	}
	return occurrences, nil
}

// Package transfer computes the date/time arithmetic for moving occurrences
// between calendars. Every function returns structurally new values; inputs
// are never mutated and outputs never alias them.
//
// Three transformations exist, in increasing generality: Relocate moves one
// occurrence to an explicit new start, ToDate places an occurrence on a
// target date and applies a zone-offset delta, and RelativeShift moves an
// occurrence by the day distance between two anchor dates plus the delta.
// Offset deltas come from the timezone package and are taken per instant, so
// DST transitions are honored for the moment being converted.
package transfer

import (
	"time"

	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
)

// Relocate returns a copy of ev starting at newStart with its duration
// preserved.
func Relocate(ev event.Event, newStart time.Time) event.Event {
	return ev.MovedTo(newStart)
}

// ToDate places ev on targetDate keeping its original time-of-day, then
// applies the signed zone-offset delta. Large deltas may roll the result
// onto the day before or after targetDate; that roll is intentional and
// carries into the returned start and end.
func ToDate(ev event.Event, targetDate time.Time, offsetDelta time.Duration) event.Event {
	moved := ev.MovedTo(combine(targetDate, ev.Start))
	return moved.ShiftedBy(offsetDelta)
}

// RelativeShift moves ev by the signed number of days between originalRef's
// and newRef's dates, then applies the zone-offset delta. Range copies use
// it so every occurrence keeps its distance from the range anchor.
func RelativeShift(ev event.Event, originalRef, newRef time.Time, offsetDelta time.Duration) event.Event {
	days := event.DaysBetween(originalRef, newRef)
	return ev.ShiftedByDays(days).ShiftedBy(offsetDelta)
}

// ShiftTemplate applies the same day-and-offset movement to a series
// template. The weekday set is rotated by the number of calendar days the
// template's start actually crossed, so regenerating from the shifted
// template lands on the shifted dates. A count terminator is preserved
// verbatim; an until-date terminator is shifted by the same crossed days.
func ShiftTemplate(tmpl recurrence.Template, dayOffset int, offsetDelta time.Duration) recurrence.Template {
	out := tmpl
	out.Start = tmpl.Start.AddDate(0, 0, dayOffset).Add(offsetDelta)
	out.End = tmpl.End.AddDate(0, 0, dayOffset).Add(offsetDelta)

	crossed := event.DaysBetween(tmpl.Start, out.Start)
	out.Weekdays = tmpl.Weekdays.Rotated(crossed)
	if out.Terminator.Kind == recurrence.TerminateByDate {
		out.Terminator.Until = tmpl.Terminator.Until.AddDate(0, 0, crossed)
	}
	return out
}

// combine builds an instant on date's calendar date, in date's zone, at
// clock's time-of-day.
func combine(date, clock time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), date.Location())
}

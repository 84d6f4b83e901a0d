// Package event defines the calendar's core value type: one concrete
// occurrence with a subject, a start/end interval, and optional metadata.
// Events are plain values; copying one never shares state with the original,
// which is what makes cross-calendar copies aliasing-safe.
package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// All-day convention applied when an event is created without an explicit
// end: the event spans 08:00 to 17:00 of its start date.
const (
	allDayStartHour = 8
	allDayEndHour   = 17
)

var (
	// ErrStartAfterEnd indicates a construction or edit that would leave the
	// event's start after its end.
	ErrStartAfterEnd = errors.New("event: start must not be after end")
	// ErrUnknownProperty indicates an edit referencing a property name the
	// model does not define.
	ErrUnknownProperty = errors.New("event: unknown property")
	// ErrInvalidValue indicates an edit value that does not parse for the
	// targeted property.
	ErrInvalidValue = errors.New("event: invalid property value")
)

// Location describes where an event takes place.
type Location string

const (
	// LocationUnset means the caller never specified a location.
	LocationUnset Location = ""
	// LocationPhysical marks an in-person event.
	LocationPhysical Location = "physical"
	// LocationOnline marks a virtual event.
	LocationOnline Location = "online"
)

// Status describes an event's visibility.
type Status string

const (
	// StatusPublic is the default visibility for new events.
	StatusPublic Status = "public"
	// StatusPrivate hides the event's details from listings.
	StatusPrivate Status = "private"
)

// Event is one concrete occurrence. Identity for duplicate detection is the
// (Subject, Start, End) triple; the remaining fields are free metadata.
type Event struct {
	Subject     string
	Start       time.Time
	End         time.Time
	Description string
	Location    Location
	Status      Status
}

// New constructs an event spanning [start, end]. It fails when start is
// after end.
func New(subject string, start, end time.Time) (Event, error) {
	if start.After(end) {
		return Event{}, ErrStartAfterEnd
	}
	return Event{
		Subject: subject,
		Start:   start,
		End:     end,
		Status:  StatusPublic,
	}, nil
}

// NewAllDay constructs an event on start's date using the 08:00-17:00
// all-day convention. The supplied time-of-day is ignored.
func NewAllDay(subject string, start time.Time) Event {
	y, m, d := start.Date()
	loc := start.Location()
	ev, _ := New(subject,
		time.Date(y, m, d, allDayStartHour, 0, 0, 0, loc),
		time.Date(y, m, d, allDayEndHour, 0, 0, 0, loc))
	return ev
}

// Key is the duplicate key: the identity triple used for collision checks.
type Key struct {
	Subject string
	Start   time.Time
	End     time.Time
}

// Key returns the event's duplicate key.
func (e Event) Key() Key {
	return Key{Subject: e.Subject, Start: e.Start, End: e.End}
}

// Matches reports whether two keys identify the same occurrence. Times are
// compared as instants.
func (k Key) Matches(other Key) bool {
	return k.Subject == other.Subject &&
		k.Start.Equal(other.Start) &&
		k.End.Equal(other.End)
}

func (k Key) String() string {
	return fmt.Sprintf("%q %s..%s", k.Subject, k.Start.Format(time.RFC3339), k.End.Format(time.RFC3339))
}

// Duration returns the event's length.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// ContainsInstant reports whether t falls inside [Start, End], inclusive at
// both ends.
func (e Event) ContainsInstant(t time.Time) bool {
	return !t.Before(e.Start) && !t.After(e.End)
}

// StartsOn reports whether the event's start falls on the given calendar
// date, compared in the event's own zone.
func (e Event) StartsOn(date time.Time) bool {
	return SameDate(e.Start, date)
}

// Within reports whether the event's whole [Start, End] interval is
// contained in [from, to], inclusive. Partial overlap does not qualify.
func (e Event) Within(from, to time.Time) bool {
	return !e.Start.Before(from) && !e.End.After(to)
}

// SameDate reports whether a and b fall on the same calendar date, each
// read in its own zone.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay returns midnight of t's date in t's zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the signed number of calendar days from a's date to
// b's date, ignoring time-of-day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// ParseLocation parses a location value case-insensitively.
func ParseLocation(value string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "physical":
		return LocationPhysical, nil
	case "online":
		return LocationOnline, nil
	default:
		return LocationUnset, fmt.Errorf("%w: location %q", ErrInvalidValue, value)
	}
}

// ParseStatus parses a status value case-insensitively.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "public":
		return StatusPublic, nil
	case "private":
		return StatusPrivate, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrInvalidValue, value)
	}
}

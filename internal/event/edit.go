package event

import (
	"fmt"
	"strings"
	"time"
)

// Property names the editable fields of an event.
type Property string

const (
	PropertySubject     Property = "subject"
	PropertyStart       Property = "start"
	PropertyEnd         Property = "end"
	PropertyDescription Property = "description"
	PropertyLocation    Property = "location"
	PropertyStatus      Property = "status"
)

// ParseProperty maps a caller-supplied property name onto a Property. The
// match is case-insensitive; unknown names fail with ErrUnknownProperty.
func ParseProperty(name string) (Property, error) {
	switch Property(strings.ToLower(strings.TrimSpace(name))) {
	case PropertySubject, PropertyStart, PropertyEnd, PropertyDescription, PropertyLocation, PropertyStatus:
		return Property(strings.ToLower(strings.TrimSpace(name))), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
}

// Edit is a single property change. Start and end edits carry their value in
// Time; every other property carries it in Text.
type Edit struct {
	Property Property
	Text     string
	Time     time.Time
}

// TextEdit builds an edit for a text-valued property.
func TextEdit(p Property, value string) Edit {
	return Edit{Property: p, Text: value}
}

// TimeEdit builds an edit for the start or end property.
func TimeEdit(p Property, value time.Time) Edit {
	return Edit{Property: p, Time: value}
}

// ChangesKey reports whether applying the edit can alter the event's
// duplicate key.
func (ed Edit) ChangesKey() bool {
	switch ed.Property {
	case PropertySubject, PropertyStart, PropertyEnd:
		return true
	default:
		return false
	}
}

// WithEdit returns a copy of the event with the edit applied. The receiver
// is never modified; validation failures return the zero Event and an error
// wrapping ErrUnknownProperty, ErrInvalidValue, or ErrStartAfterEnd.
func (e Event) WithEdit(ed Edit) (Event, error) {
	out := e
	switch ed.Property {
	case PropertySubject:
		out.Subject = ed.Text
	case PropertyStart:
		if ed.Time.After(out.End) {
			return Event{}, ErrStartAfterEnd
		}
		out.Start = ed.Time
	case PropertyEnd:
		if out.Start.After(ed.Time) {
			return Event{}, ErrStartAfterEnd
		}
		out.End = ed.Time
	case PropertyDescription:
		out.Description = ed.Text
	case PropertyLocation:
		loc, err := ParseLocation(ed.Text)
		if err != nil {
			return Event{}, err
		}
		out.Location = loc
	case PropertyStatus:
		status, err := ParseStatus(ed.Text)
		if err != nil {
			return Event{}, err
		}
		out.Status = status
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownProperty, string(ed.Property))
	}
	return out, nil
}

// MovedTo returns a copy whose start becomes newStart with the original
// duration preserved. Copy operations use it for explicit relocation; it is
// not reachable through the named-property edit path.
func (e Event) MovedTo(newStart time.Time) Event {
	out := e
	out.Start = newStart
	out.End = newStart.Add(e.Duration())
	return out
}

// ShiftedBy returns a copy with start and end both advanced by d, which may
// be negative. Like MovedTo this is reserved for transfer arithmetic.
func (e Event) ShiftedBy(d time.Duration) Event {
	out := e
	out.Start = e.Start.Add(d)
	out.End = e.End.Add(d)
	return out
}

// ShiftedByDays returns a copy moved by a signed number of calendar days,
// keeping wall-clock times stable across DST boundaries.
func (e Event) ShiftedByDays(days int) Event {
	out := e
	out.Start = e.Start.AddDate(0, 0, days)
	out.End = e.End.AddDate(0, 0, days)
	return out
}

// InZone returns a copy whose times are expressed in loc. The absolute
// instants are unchanged; the wall-clock values shift by the zone delta.
func (e Event) InZone(loc *time.Location) Event {
	out := e
	out.Start = e.Start.In(loc)
	out.End = e.End.In(loc)
	return out
}

// Relabeled returns a copy carrying the same wall-clock times read in loc.
// Unlike InZone this changes the absolute instants and keeps the clock
// faces; retimezoning an inactive calendar uses it.
func (e Event) Relabeled(loc *time.Location) Event {
	out := e
	out.Start = Rebase(e.Start, loc)
	out.End = Rebase(e.End, loc)
	return out
}

// Rebase rebuilds t with identical wall-clock fields in loc. The absolute
// instant changes whenever loc's offset differs from t's.
func Rebase(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Package registry manages a set of named, independently-timezoned
// calendars, tracks the active one, and orchestrates cross-calendar copy
// operations through the transfer engine.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/calendar-planner/internal/calendar"
	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
	"github.com/example/calendar-planner/internal/timezone"
	"github.com/example/calendar-planner/internal/transfer"
)

var (
	// ErrCalendarExists indicates a create or rename targeting a name that is
	// already taken.
	ErrCalendarExists = errors.New("registry: calendar name already in use")
	// ErrCalendarNotFound indicates a reference to a calendar name the
	// registry does not know.
	ErrCalendarNotFound = errors.New("registry: calendar not found")
	// ErrNoActiveCalendar indicates an operation requiring an active calendar
	// was invoked before Select.
	ErrNoActiveCalendar = errors.New("registry: no active calendar selected")
	// ErrAmbiguousMatch indicates a single-occurrence lookup matched more
	// than one candidate.
	ErrAmbiguousMatch = errors.New("registry: more than one occurrence matches")
)

// Calendar is one named, timezoned occurrence container.
type Calendar struct {
	ID         string
	Name       string
	TimezoneID string
	Location   *time.Location
	Store      *calendar.Store
}

// Registry owns calendars and the active-calendar pointer. Calendars are
// created and renamed, never deleted.
type Registry struct {
	resolver  timezone.Resolver
	newID     func() string
	calendars map[string]*Calendar
	active    string
}

// New constructs an empty registry. The resolver validates timezone
// identifiers; when newID is nil, random UUIDs are used for calendar and
// series handles.
func New(resolver timezone.Resolver, newID func() string) *Registry {
	if resolver == nil {
		resolver = timezone.SystemResolver{}
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Registry{
		resolver:  resolver,
		newID:     newID,
		calendars: make(map[string]*Calendar),
	}
}

// Create registers a new calendar under a unique name with a recognized
// timezone identifier.
func (r *Registry) Create(name, timezoneID string) error {
	if _, exists := r.calendars[name]; exists {
		return fmt.Errorf("%w: %q", ErrCalendarExists, name)
	}
	loc, err := r.resolver.Resolve(timezoneID)
	if err != nil {
		return err
	}
	r.calendars[name] = &Calendar{
		ID:         r.newID(),
		Name:       name,
		TimezoneID: timezoneID,
		Location:   loc,
		Store:      calendar.NewStore(r.newID),
	}
	return nil
}

// Rename changes a calendar's name, keeping name uniqueness. The active
// pointer follows the rename.
func (r *Registry) Rename(name, newName string) error {
	cal, ok := r.calendars[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	if name == newName {
		return nil
	}
	if _, exists := r.calendars[newName]; exists {
		return fmt.Errorf("%w: %q", ErrCalendarExists, newName)
	}
	delete(r.calendars, name)
	cal.Name = newName
	r.calendars[newName] = cal
	if r.active == name {
		r.active = newName
	}
	return nil
}

// Retimezone changes a calendar's zone. For an inactive calendar only the
// zone label moves: stored occurrences keep their wall-clock times. For the
// active calendar every stored occurrence is converted to the new zone's
// wall-clock equivalent, series weekday sets rotating with any date roll.
// The duplicate invariant is not re-checked after an active-calendar
// conversion; instants are preserved, so keys cannot newly collide.
func (r *Registry) Retimezone(name, timezoneID string) error {
	cal, ok := r.calendars[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	loc, err := r.resolver.Resolve(timezoneID)
	if err != nil {
		return err
	}

	if r.active != name {
		cal.Store.TransformAll(func(ev event.Event) event.Event {
			return ev.Relabeled(loc)
		})
		cal.TimezoneID = timezoneID
		cal.Location = loc
		return nil
	}

	// Record how far each series' first occurrence rolls before converting,
	// so the weekday metadata can follow the dates.
	rolled := make(map[string]int)
	for _, id := range cal.Store.SeriesIDs() {
		members := cal.Store.SeriesMembers(id)
		if len(members) == 0 {
			continue
		}
		first := members[0].Event.Start
		rolled[id] = event.DaysBetween(first, first.In(loc))
	}

	cal.Store.TransformAll(func(ev event.Event) event.Event {
		return ev.InZone(loc)
	})
	for id, days := range rolled {
		meta, ok := cal.Store.Series(id)
		if !ok || days == 0 {
			continue
		}
		meta.Weekdays = meta.Weekdays.Rotated(days)
		if meta.Terminator.Kind == recurrence.TerminateByDate {
			meta.Terminator.Until = meta.Terminator.Until.AddDate(0, 0, days)
		}
		cal.Store.UpdateSeriesMeta(meta)
	}

	cal.TimezoneID = timezoneID
	cal.Location = loc
	return nil
}

// Select makes the named calendar the target of subsequent store and copy
// operations.
func (r *Registry) Select(name string) error {
	if _, ok := r.calendars[name]; !ok {
		return fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	r.active = name
	return nil
}

// Active returns the currently selected calendar.
func (r *Registry) Active() (*Calendar, error) {
	if r.active == "" {
		return nil, ErrNoActiveCalendar
	}
	cal, ok := r.calendars[r.active]
	if !ok {
		return nil, ErrNoActiveCalendar
	}
	return cal, nil
}

// Get returns the named calendar.
func (r *Registry) Get(name string) (*Calendar, error) {
	cal, ok := r.calendars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
	}
	return cal, nil
}

// Names lists the registered calendar names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.calendars))
	for name := range r.calendars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CopyEvent copies the unique occurrence matching (subject, start) from the
// active calendar into the target, starting at newStart in the target's
// zone. Zero matches fail with the store's not-found error, multiple matches
// with ErrAmbiguousMatch, and a key collision in the target with the store's
// duplicate error.
func (r *Registry) CopyEvent(subject string, start time.Time, targetName string, newStart time.Time) error {
	active, err := r.Active()
	if err != nil {
		return err
	}
	target, err := r.Get(targetName)
	if err != nil {
		return err
	}

	matches := active.Store.MatchingExact(subject, start)
	switch {
	case len(matches) == 0:
		return fmt.Errorf("%w: %q at %s", calendar.ErrNotFound, subject, start.Format(time.RFC3339))
	case len(matches) > 1:
		return fmt.Errorf("%w: %q at %s", ErrAmbiguousMatch, subject, start.Format(time.RFC3339))
	}

	moved := transfer.Relocate(matches[0].Event, event.Rebase(newStart, target.Location))
	if !target.Store.AddSingle(moved) {
		return fmt.Errorf("%w: %s", calendar.ErrDuplicate, moved.Key())
	}
	return nil
}

// CopyEventsOnDate copies every occurrence starting on date from the active
// calendar onto targetDate in the target calendar. Each occurrence keeps its
// time-of-day adjusted by the zone-offset delta at its own instant.
// Occurrences colliding in the target are skipped, not fatal; the return
// value reports whether at least one occurrence was copied.
func (r *Registry) CopyEventsOnDate(date time.Time, targetName string, targetDate time.Time) (bool, error) {
	active, err := r.Active()
	if err != nil {
		return false, err
	}
	target, err := r.Get(targetName)
	if err != nil {
		return false, err
	}

	anchor := event.Rebase(targetDate, target.Location)
	copied := false
	for _, occ := range active.Store.QueryOnDate(date) {
		delta := timezone.Delta(active.Location, target.Location, occ.Event.Start)
		moved := transfer.ToDate(occ.Event, anchor, delta).InZone(target.Location)
		if target.Store.AddSingle(moved) {
			copied = true
		}
	}
	return copied, nil
}

// CopyEventsInRange copies every occurrence contained in the inclusive date
// range [startDate, endDate] from the active calendar, anchored so that
// startDate maps onto newStartDate in the target. Series falling entirely
// inside the range are copied as series with rotated weekday metadata and an
// adjusted terminator; partial series become standalone events. Collisions
// in the target skip individual occurrences.
func (r *Registry) CopyEventsInRange(startDate, endDate time.Time, targetName string, newStartDate time.Time) (bool, error) {
	active, err := r.Active()
	if err != nil {
		return false, err
	}
	target, err := r.Get(targetName)
	if err != nil {
		return false, err
	}

	from := event.StartOfDay(event.Rebase(startDate, active.Location))
	to := event.StartOfDay(event.Rebase(endDate, active.Location)).AddDate(0, 0, 1).Add(-time.Nanosecond)
	inRange := active.Store.QueryRange(from, to)

	bySeries := make(map[string][]calendar.Occurrence)
	singles := make([]calendar.Occurrence, 0)
	for _, occ := range inRange {
		if occ.SeriesID == "" {
			singles = append(singles, occ)
			continue
		}
		bySeries[occ.SeriesID] = append(bySeries[occ.SeriesID], occ)
	}

	shift := func(ev event.Event) event.Event {
		delta := timezone.Delta(active.Location, target.Location, ev.Start)
		return transfer.RelativeShift(ev, startDate, newStartDate, delta).InZone(target.Location)
	}

	copied := false
	for _, occ := range singles {
		if target.Store.AddSingle(shift(occ.Event)) {
			copied = true
		}
	}

	seriesIDs := make([]string, 0, len(bySeries))
	for id := range bySeries {
		seriesIDs = append(seriesIDs, id)
	}
	sort.Strings(seriesIDs)

	dayOffset := event.DaysBetween(startDate, newStartDate)
	for _, id := range seriesIDs {
		members := bySeries[id]
		whole := len(members) == len(active.Store.SeriesMembers(id))
		if !whole {
			// Partial series: the matched occurrences travel as standalone
			// events reconstructed from their subject and timing.
			for _, occ := range members {
				if target.Store.AddSingle(shift(occ.Event)) {
					copied = true
				}
			}
			continue
		}

		meta, ok := active.Store.Series(id)
		if !ok {
			continue
		}
		first := members[0].Event
		shifted := transfer.ShiftTemplate(recurrence.Template{
			Subject:    first.Subject,
			Start:      first.Start,
			End:        first.End,
			Weekdays:   meta.Weekdays,
			Terminator: meta.Terminator,
		}, dayOffset, timezone.Delta(active.Location, target.Location, first.Start))

		events := make([]event.Event, 0, len(members))
		for _, occ := range members {
			events = append(events, shift(occ.Event))
		}
		inserted := target.Store.ImportSeries(calendar.SeriesMeta{
			Weekdays:   shifted.Weekdays,
			Terminator: shifted.Terminator,
		}, events)
		if inserted > 0 {
			copied = true
		}
	}
	return copied, nil
}

// Package calendar implements the single-calendar occurrence store. The
// store owns every occurrence, standalone events and generated series
// members alike, and enforces the no-duplicate-key invariant across all of
// them.
//
// Two batch policies apply, and they are deliberately distinct: additions
// and edit propagation are atomic (all-or-nothing), while bulk copies into a
// store are best-effort (collisions skip individual occurrences). See
// AddSeries/EditFuture for the former and ImportSeries for the latter.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
)

var (
	// ErrNotFound indicates no stored occurrence matched the lookup.
	ErrNotFound = errors.New("calendar: no matching occurrence")
	// ErrDuplicate indicates a mutation would violate the duplicate-key
	// invariant.
	ErrDuplicate = errors.New("calendar: duplicate occurrence")
)

// Occurrence pairs a stored event with the series that generated it.
// SeriesID is empty for standalone events; it is a handle into the store's
// series table, never a pointer into another occurrence.
type Occurrence struct {
	Event    event.Event
	SeriesID string
}

// SeriesMeta records the template metadata a series was generated from, so
// whole-series copies can reproduce it.
type SeriesMeta struct {
	ID         string
	Weekdays   recurrence.WeekdaySet
	Terminator recurrence.Terminator
}

// Store is an in-memory occurrence collection for one calendar. It assumes
// a single caller per the calendar model; embedders that share a store
// across goroutines must add their own locking.
type Store struct {
	occurrences []Occurrence
	series      map[string]SeriesMeta
	newID       func() string
}

// NewStore constructs an empty store. newID supplies series identifiers;
// when nil, random UUIDs are used.
func NewStore(newID func() string) *Store {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Store{
		series: make(map[string]SeriesMeta),
		newID:  newID,
	}
}

// Len returns the number of stored occurrences, counting series members
// individually.
func (s *Store) Len() int {
	return len(s.occurrences)
}

// hasKey reports whether any stored occurrence outside the excluded index
// set carries the key.
func (s *Store) hasKey(k event.Key, excluded map[int]bool) bool {
	for i, occ := range s.occurrences {
		if excluded[i] {
			continue
		}
		if occ.Event.Key().Matches(k) {
			return true
		}
	}
	return false
}

// AddSingle inserts one standalone event. It returns false, leaving the
// store unchanged, when an occurrence with the same duplicate key already
// exists anywhere in the store, including inside a series.
func (s *Store) AddSingle(ev event.Event) bool {
	if s.hasKey(ev.Key(), nil) {
		return false
	}
	s.occurrences = append(s.occurrences, Occurrence{Event: ev})
	return true
}

// AddSeries expands the template and inserts every generated occurrence
// under a fresh series handle. Template validation failures return an error
// before any mutation; a key collision on any generated occurrence rejects
// the entire series and returns false. The insert is atomic either way.
func (s *Store) AddSeries(tmpl recurrence.Template) (bool, error) {
	generated, err := tmpl.Generate()
	if err != nil {
		return false, err
	}
	for _, ev := range generated {
		if s.hasKey(ev.Key(), nil) {
			return false, nil
		}
	}

	id := s.newID()
	s.series[id] = SeriesMeta{
		ID:         id,
		Weekdays:   tmpl.Weekdays,
		Terminator: tmpl.Terminator,
	}
	for _, ev := range generated {
		s.occurrences = append(s.occurrences, Occurrence{Event: ev, SeriesID: id})
	}
	return true, nil
}

// EditSingle edits the unique occurrence whose duplicate key matches
// exactly. A key-changing edit is simulated first; if the new key would
// collide with any other stored occurrence the edit is rejected and the
// occurrence is left unchanged. The occurrence being edited is excluded
// from that check, so re-asserting a current value is not a collision.
func (s *Store) EditSingle(key event.Key, ed event.Edit) error {
	target := -1
	for i, occ := range s.occurrences {
		if occ.Event.Key().Matches(key) {
			target = i
			break
		}
	}
	if target < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	edited, err := s.occurrences[target].Event.WithEdit(ed)
	if err != nil {
		return err
	}
	if ed.ChangesKey() && s.hasKey(edited.Key(), map[int]bool{target: true}) {
		return fmt.Errorf("%w: %s", ErrDuplicate, edited.Key())
	}
	s.occurrences[target].Event = edited
	return nil
}

// EditFuture edits the occurrence matching (subject, start) and every
// chronologically later occurrence of the same series. A standalone event is
// treated as a series of one. The whole propagation is atomic: if any
// occurrence in scope fails validation or would collide after the edit,
// nothing is modified.
func (s *Store) EditFuture(subject string, start time.Time, ed event.Edit) error {
	return s.editScope(subject, start, ed, false)
}

// EditSeries edits every occurrence of the series owning the (subject,
// start) match, regardless of date. Same atomicity as EditFuture.
func (s *Store) EditSeries(subject string, start time.Time, ed event.Edit) error {
	return s.editScope(subject, start, ed, true)
}

func (s *Store) editScope(subject string, start time.Time, ed event.Edit, wholeSeries bool) error {
	affected := make(map[int]bool)
	for i, occ := range s.occurrences {
		if occ.Event.Subject != subject || !occ.Event.Start.Equal(start) {
			continue
		}
		if occ.SeriesID == "" {
			affected[i] = true
			continue
		}
		for j, sibling := range s.occurrences {
			if sibling.SeriesID != occ.SeriesID {
				continue
			}
			if wholeSeries || !sibling.Event.Start.Before(start) {
				affected[j] = true
			}
		}
	}
	if len(affected) == 0 {
		return fmt.Errorf("%w: %q at %s", ErrNotFound, subject, start.Format(time.RFC3339))
	}

	// Simulate the whole scope before committing anything.
	edited := make(map[int]event.Event, len(affected))
	for i := range affected {
		next, err := s.occurrences[i].Event.WithEdit(ed)
		if err != nil {
			return err
		}
		edited[i] = next
	}
	if ed.ChangesKey() {
		seen := make([]event.Key, 0, len(edited))
		for _, next := range edited {
			key := next.Key()
			if s.hasKey(key, affected) {
				return fmt.Errorf("%w: %s", ErrDuplicate, key)
			}
			for _, prior := range seen {
				if prior.Matches(key) {
					return fmt.Errorf("%w: %s", ErrDuplicate, key)
				}
			}
			seen = append(seen, key)
		}
	}

	for i, next := range edited {
		s.occurrences[i].Event = next
	}
	return nil
}

// QueryOnDate returns every occurrence starting on the given calendar date,
// in chronological order. An empty result is a normal outcome.
func (s *Store) QueryOnDate(date time.Time) []Occurrence {
	return s.collect(func(ev event.Event) bool {
		return ev.StartsOn(date)
	})
}

// QueryRange returns every occurrence whose [start, end] interval is
// entirely contained in [from, to], inclusive. Partial overlap does not
// qualify.
func (s *Store) QueryRange(from, to time.Time) []Occurrence {
	return s.collect(func(ev event.Event) bool {
		return ev.Within(from, to)
	})
}

// IsBusyAt reports whether any stored occurrence contains the instant,
// inclusive at both interval ends.
func (s *Store) IsBusyAt(t time.Time) bool {
	for _, occ := range s.occurrences {
		if occ.Event.ContainsInstant(t) {
			return true
		}
	}
	return false
}

// MatchingExact returns all occurrences with the given subject and start,
// in chronological order. Callers that need a unique match treat a longer
// result as ambiguous.
func (s *Store) MatchingExact(subject string, start time.Time) []Occurrence {
	return s.collect(func(ev event.Event) bool {
		return ev.Subject == subject && ev.Start.Equal(start)
	})
}

// SeriesMembers returns every occurrence generated by the series, in
// chronological order.
func (s *Store) SeriesMembers(id string) []Occurrence {
	if id == "" {
		return nil
	}
	matched := make([]Occurrence, 0)
	for _, occ := range s.occurrences {
		if occ.SeriesID == id {
			matched = append(matched, occ)
		}
	}
	sortByStart(matched)
	return matched
}

// Series returns the metadata of the identified series.
func (s *Store) Series(id string) (SeriesMeta, bool) {
	meta, ok := s.series[id]
	return meta, ok
}

// ImportSeries inserts pre-generated occurrences under one shared series
// handle carrying the supplied metadata. Unlike AddSeries this is the
// best-effort path used by bulk copies: occurrences whose key collides are
// skipped individually, and the count of inserted occurrences is returned.
// When nothing survives the collision filter, no series is registered.
func (s *Store) ImportSeries(meta SeriesMeta, events []event.Event) int {
	inserted := 0
	id := s.newID()
	for _, ev := range events {
		if s.hasKey(ev.Key(), nil) {
			continue
		}
		s.occurrences = append(s.occurrences, Occurrence{Event: ev, SeriesID: id})
		inserted++
	}
	if inserted > 0 {
		meta.ID = id
		s.series[id] = meta
	}
	return inserted
}

// TransformAll rewrites every stored occurrence through fn without
// re-validating the duplicate invariant. This is the retimezone path for an
// active calendar: the conversion preserves instants, so keys cannot newly
// collide.
func (s *Store) TransformAll(fn func(event.Event) event.Event) {
	for i := range s.occurrences {
		s.occurrences[i].Event = fn(s.occurrences[i].Event)
	}
}

// SeriesIDs lists the handles of every registered series.
func (s *Store) SeriesIDs() []string {
	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UpdateSeriesMeta replaces the metadata of an existing series.
func (s *Store) UpdateSeriesMeta(meta SeriesMeta) {
	if _, ok := s.series[meta.ID]; ok {
		s.series[meta.ID] = meta
	}
}

func (s *Store) collect(match func(event.Event) bool) []Occurrence {
	matched := make([]Occurrence, 0)
	for _, occ := range s.occurrences {
		if match(occ.Event) {
			matched = append(matched, occ)
		}
	}
	sortByStart(matched)
	return matched
}

func sortByStart(occurrences []Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Event.Start.Before(occurrences[j].Event.Start)
	})
}

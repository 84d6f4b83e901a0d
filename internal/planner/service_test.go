package planner

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/example/calendar-planner/internal/calendar"
	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
	"github.com/example/calendar-planner/internal/registry"
	"github.com/example/calendar-planner/internal/testfixtures"
	"github.com/example/calendar-planner/internal/timezone"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	resolver := timezone.FixedResolver{
		"UTC":   time.UTC,
		"UTC-5": time.FixedZone("UTC-5", -5*3600),
	}
	reg := registry.New(resolver, testfixtures.NewIDGenerator("id").NextFunc())
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	svc := NewService(reg, clock.NowFunc(), slog.New(slog.DiscardHandler))
	if err := svc.CreateCalendar(context.Background(), "work", "UTC"); err != nil {
		t.Fatalf("CreateCalendar failed: %v", err)
	}
	if err := svc.SelectCalendar(context.Background(), "work"); err != nil {
		t.Fatalf("SelectCalendar failed: %v", err)
	}
	return svc
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestAddEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := testfixtures.ReferenceTime()

	t.Run("requires an active calendar", func(t *testing.T) {
		t.Parallel()
		svc := NewService(registry.New(nil, nil), nil, slog.New(slog.DiscardHandler))
		_, err := svc.AddEvent(ctx, EventInput{Subject: "Meeting", Start: start})
		if !errors.Is(err, registry.ErrNoActiveCalendar) {
			t.Fatalf("expected ErrNoActiveCalendar, got %v", err)
		}
	})

	t.Run("an omitted end applies the all-day convention", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		added, err := svc.AddEvent(ctx, EventInput{Subject: "Offsite", Start: start})
		if err != nil || !added {
			t.Fatalf("AddEvent = %v, %v", added, err)
		}
		events, err := svc.EventsOn(ctx, start)
		if err != nil || len(events) != 1 {
			t.Fatalf("EventsOn = %d events, %v", len(events), err)
		}
		if events[0].Start.Hour() != 8 || events[0].End.Hour() != 17 {
			t.Fatalf("all-day window = %v to %v", events[0].Start, events[0].End)
		}
	})

	t.Run("a duplicate key is rejected without error", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		input := EventInput{Subject: "Meeting", Start: start, End: timePtr(start.Add(time.Hour))}
		if added, err := svc.AddEvent(ctx, input); err != nil || !added {
			t.Fatalf("first AddEvent = %v, %v", added, err)
		}
		added, err := svc.AddEvent(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added {
			t.Fatal("duplicate must not be added")
		}
	})

	t.Run("start after end is a field validation error", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		_, err := svc.AddEvent(ctx, EventInput{
			Subject: "Backwards",
			Start:   start,
			End:     timePtr(start.Add(-time.Hour)),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected *ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["end"]; !ok {
			t.Fatalf("field errors = %v, want an entry for end", vErr.FieldErrors)
		}
	})
}

func TestAddSeries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := testfixtures.ReferenceTime() // Thursday 2025-06-05 09:00

	t.Run("expands onto the requested weekdays", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		added, err := svc.AddSeries(ctx, SeriesInput{
			Subject:  "Class",
			Start:    start,
			End:      timePtr(start.Add(time.Hour)),
			Weekdays: "MWF",
			Count:    3,
		})
		if err != nil || !added {
			t.Fatalf("AddSeries = %v, %v", added, err)
		}

		events, err := svc.EventsBetween(ctx, start, start.AddDate(0, 0, 14))
		if err != nil {
			t.Fatalf("EventsBetween failed: %v", err)
		}
		wantDays := []int{6, 9, 11}
		if len(events) != len(wantDays) {
			t.Fatalf("got %d occurrences, want %d", len(events), len(wantDays))
		}
		for i, ev := range events {
			if ev.Start.Day() != wantDays[i] {
				t.Errorf("occurrence %d on day %d, want %d", i, ev.Start.Day(), wantDays[i])
			}
		}
	})

	t.Run("an until terminator wins over a count", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		until := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
		added, err := svc.AddSeries(ctx, SeriesInput{
			Subject:  "Class",
			Start:    start,
			End:      timePtr(start.Add(time.Hour)),
			Weekdays: "MWF",
			Until:    &until,
		})
		if err != nil || !added {
			t.Fatalf("AddSeries = %v, %v", added, err)
		}
		events, err := svc.EventsBetween(ctx, start, start.AddDate(0, 0, 30))
		if err != nil {
			t.Fatalf("EventsBetween failed: %v", err)
		}
		// Friday the 6th and Monday the 9th; the until date is inclusive.
		if len(events) != 2 {
			t.Fatalf("got %d occurrences, want 2", len(events))
		}
	})

	t.Run("rejects malformed weekday letters", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		_, err := svc.AddSeries(ctx, SeriesInput{
			Subject:  "Class",
			Start:    start,
			End:      timePtr(start.Add(time.Hour)),
			Weekdays: "MXZ",
			Count:    3,
		})
		if !errors.Is(err, recurrence.ErrBadWeekday) {
			t.Fatalf("expected ErrBadWeekday, got %v", err)
		}
	})

	t.Run("a collision on any occurrence rejects the whole series", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		// Occupy the slot the series would generate on Monday the 9th.
		blocker := time.Date(2025, time.June, 9, 9, 0, 0, 0, time.UTC)
		if added, err := svc.AddEvent(ctx, EventInput{
			Subject: "Class",
			Start:   blocker,
			End:     timePtr(blocker.Add(time.Hour)),
		}); err != nil || !added {
			t.Fatalf("blocker AddEvent = %v, %v", added, err)
		}

		added, err := svc.AddSeries(ctx, SeriesInput{
			Subject:  "Class",
			Start:    start,
			End:      timePtr(start.Add(time.Hour)),
			Weekdays: "MWF",
			Count:    3,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added {
			t.Fatal("colliding series must be rejected")
		}
		events, err := svc.EventsBetween(ctx, start, start.AddDate(0, 0, 14))
		if err != nil {
			t.Fatalf("EventsBetween failed: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("store holds %d occurrences, want only the blocker", len(events))
		}
	})
}

func TestEdit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := testfixtures.ReferenceTime()

	addClass := func(t *testing.T, svc *Service) {
		t.Helper()
		if added, err := svc.AddSeries(ctx, SeriesInput{
			Subject:  "Class",
			Start:    start,
			End:      timePtr(start.Add(time.Hour)),
			Weekdays: "MWF",
			Count:    3,
		}); err != nil || !added {
			t.Fatalf("AddSeries = %v, %v", added, err)
		}
	}

	t.Run("single scope touches one occurrence", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		addClass(t, svc)

		friday := time.Date(2025, time.June, 6, 9, 0, 0, 0, time.UTC)
		err := svc.Edit(ctx, ScopeSingle, "Class", friday, friday.Add(time.Hour),
			event.TextEdit(event.PropertySubject, "Lecture"))
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		events, err := svc.EventsBetween(ctx, start, start.AddDate(0, 0, 14))
		if err != nil {
			t.Fatalf("EventsBetween failed: %v", err)
		}
		renamed := 0
		for _, ev := range events {
			if ev.Subject == "Lecture" {
				renamed++
			}
		}
		if renamed != 1 {
			t.Fatalf("renamed %d occurrences, want 1", renamed)
		}
	})

	t.Run("series scope touches every occurrence", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		addClass(t, svc)

		monday := time.Date(2025, time.June, 9, 9, 0, 0, 0, time.UTC)
		err := svc.Edit(ctx, ScopeSeries, "Class", monday, time.Time{},
			event.TextEdit(event.PropertyDescription, "room 204"))
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		events, err := svc.EventsBetween(ctx, start, start.AddDate(0, 0, 14))
		if err != nil {
			t.Fatalf("EventsBetween failed: %v", err)
		}
		for _, ev := range events {
			if ev.Description != "room 204" {
				t.Fatalf("occurrence at %v not edited", ev.Start)
			}
		}
	})

	t.Run("future scope leaves earlier occurrences alone", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		addClass(t, svc)

		monday := time.Date(2025, time.June, 9, 9, 0, 0, 0, time.UTC)
		err := svc.Edit(ctx, ScopeFuture, "Class", monday, time.Time{},
			event.TextEdit(event.PropertySubject, "Seminar"))
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}

		events, err := svc.EventsBetween(ctx, start, start.AddDate(0, 0, 14))
		if err != nil {
			t.Fatalf("EventsBetween failed: %v", err)
		}
		for _, ev := range events {
			want := "Seminar"
			if ev.Start.Day() == 6 {
				want = "Class"
			}
			if ev.Subject != want {
				t.Errorf("occurrence on day %d has subject %q, want %q", ev.Start.Day(), ev.Subject, want)
			}
		}
	})

	t.Run("an unmatched key is not found", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		err := svc.Edit(ctx, ScopeSingle, "Ghost", start, start.Add(time.Hour),
			event.TextEdit(event.PropertySubject, "Anything"))
		if !errors.Is(err, calendar.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("an invalid enum value is a validation error", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		if added, err := svc.AddEvent(ctx, EventInput{
			Subject: "Meeting",
			Start:   start,
			End:     timePtr(start.Add(time.Hour)),
		}); err != nil || !added {
			t.Fatalf("AddEvent = %v, %v", added, err)
		}
		err := svc.Edit(ctx, ScopeSingle, "Meeting", start, start.Add(time.Hour),
			event.TextEdit(event.PropertyStatus, "secret"))
		if !errors.Is(err, event.ErrInvalidValue) {
			t.Fatalf("expected ErrInvalidValue, got %v", err)
		}
	})
}

func TestQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := testfixtures.ReferenceTime()

	t.Run("busy check is inclusive of interval ends", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		if added, err := svc.AddEvent(ctx, EventInput{
			Subject: "Meeting",
			Start:   start,
			End:     timePtr(start.Add(time.Hour)),
		}); err != nil || !added {
			t.Fatalf("AddEvent = %v, %v", added, err)
		}

		for _, tc := range []struct {
			name string
			at   time.Time
			want bool
		}{
			{"at start", start, true},
			{"at end", start.Add(time.Hour), true},
			{"before", start.Add(-time.Minute), false},
			{"after", start.Add(61 * time.Minute), false},
		} {
			busy, err := svc.IsBusyAt(ctx, tc.at)
			if err != nil {
				t.Fatalf("IsBusyAt failed: %v", err)
			}
			if busy != tc.want {
				t.Errorf("%s: busy = %v, want %v", tc.name, busy, tc.want)
			}
		}
	})

	t.Run("an empty day is a normal empty result", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(t)
		events, err := svc.EventsOn(ctx, start)
		if err != nil {
			t.Fatalf("EventsOn failed: %v", err)
		}
		if len(events) != 0 {
			t.Fatalf("got %d events, want none", len(events))
		}
	})

	t.Run("queries without an active calendar fail", func(t *testing.T) {
		t.Parallel()
		svc := NewService(registry.New(nil, nil), nil, slog.New(slog.DiscardHandler))
		if _, err := svc.EventsOn(ctx, start); !errors.Is(err, registry.ErrNoActiveCalendar) {
			t.Fatalf("expected ErrNoActiveCalendar, got %v", err)
		}
	})
}

func TestCalendars(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestService(t)
	if err := svc.CreateCalendar(ctx, "home", "UTC-5"); err != nil {
		t.Fatalf("CreateCalendar failed: %v", err)
	}

	views := svc.Calendars(ctx)
	if len(views) != 2 {
		t.Fatalf("got %d calendars, want 2", len(views))
	}
	// Names() sorts, so home precedes work.
	if views[0].Name != "home" || views[0].Active {
		t.Fatalf("views[0] = %+v, want inactive home", views[0])
	}
	if views[1].Name != "work" || !views[1].Active {
		t.Fatalf("views[1] = %+v, want active work", views[1])
	}
}

func TestCopyEventKinds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := testfixtures.ReferenceTime()

	svc := newTestService(t)
	if err := svc.CreateCalendar(ctx, "target", "UTC"); err != nil {
		t.Fatalf("CreateCalendar failed: %v", err)
	}
	if added, err := svc.AddEvent(ctx, EventInput{
		Subject: "Meeting",
		Start:   start,
		End:     timePtr(start.Add(time.Hour)),
	}); err != nil || !added {
		t.Fatalf("AddEvent = %v, %v", added, err)
	}

	if err := svc.CopyEvent(ctx, "Meeting", start, "target", start); err != nil {
		t.Fatalf("first copy failed: %v", err)
	}
	err := svc.CopyEvent(ctx, "Meeting", start, "target", start)
	if !errors.Is(err, calendar.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("end", "start must not be after end")

	for _, tc := range []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"duplicate", calendar.ErrDuplicate, "duplicate"},
		{"not found", calendar.ErrNotFound, "not_found"},
		{"calendar not found", registry.ErrCalendarNotFound, "not_found"},
		{"ambiguous", registry.ErrAmbiguousMatch, "ambiguous_match"},
		{"no active", registry.ErrNoActiveCalendar, "no_active_calendar"},
		{"exists", registry.ErrCalendarExists, "calendar_exists"},
		{"timezone", timezone.ErrUnrecognized, "unrecognized_timezone"},
		{"ordering", event.ErrStartAfterEnd, "validation"},
		{"weekday", recurrence.ErrBadWeekday, "validation"},
		{"field errors", vErr, "validation"},
		{"unknown", errors.New("boom"), "internal"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ErrorKind(tc.err); got != tc.want {
				t.Fatalf("ErrorKind = %q, want %q", got, tc.want)
			}
		})
	}
}

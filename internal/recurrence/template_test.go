package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/example/calendar-planner/internal/event"
)

func mustSet(t *testing.T, letters string) WeekdaySet {
	t.Helper()
	set, err := ParseWeekdaySet(letters)
	if err != nil {
		t.Fatalf("ParseWeekdaySet(%q) failed: %v", letters, err)
	}
	return set
}

func classTemplate(t *testing.T, letters string, terminator Terminator) Template {
	t.Helper()
	start := time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)
	return Template{
		Subject:    "Class",
		Start:      start,
		End:        start.Add(time.Hour),
		Weekdays:   mustSet(t, letters),
		Terminator: terminator,
	}
}

func TestTemplateGenerate(t *testing.T) {
	t.Parallel()

	t.Run("starts on the first matching weekday on or after start", func(t *testing.T) {
		t.Parallel()
		// 2025-06-05 is a Thursday; MWF therefore begins on Friday the 6th.
		generated, err := classTemplate(t, "MWF", ByCount(3)).Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantDates := []time.Time{
			time.Date(2025, time.June, 6, 9, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 9, 9, 0, 0, 0, time.UTC),
			time.Date(2025, time.June, 11, 9, 0, 0, 0, time.UTC),
		}
		if len(generated) != len(wantDates) {
			t.Fatalf("generated %d occurrences, want %d", len(generated), len(wantDates))
		}
		for i, want := range wantDates {
			if !generated[i].Start.Equal(want) {
				t.Fatalf("occurrence %d starts %v, want %v", i, generated[i].Start, want)
			}
			if generated[i].Duration() != time.Hour {
				t.Fatalf("occurrence %d duration %v", i, generated[i].Duration())
			}
			if generated[i].Subject != "Class" {
				t.Fatalf("occurrence %d subject %q", i, generated[i].Subject)
			}
		}
	})

	t.Run("count produces exactly n occurrences on selected weekdays", func(t *testing.T) {
		t.Parallel()
		tmpl := classTemplate(t, "TR", ByCount(8))
		generated, err := tmpl.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(generated) != 8 {
			t.Fatalf("generated %d occurrences, want 8", len(generated))
		}
		for i, ev := range generated {
			if !tmpl.Weekdays.Contains(ev.Start.Weekday()) {
				t.Fatalf("occurrence %d falls on %v", i, ev.Start.Weekday())
			}
			if i > 0 && ev.Start.Before(generated[i-1].Start) {
				t.Fatalf("occurrences out of order at %d", i)
			}
		}
	})

	t.Run("until-date bound is inclusive", func(t *testing.T) {
		t.Parallel()
		until := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
		generated, err := classTemplate(t, "MWF", ByDate(until)).Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Friday the 6th and Monday the 9th qualify; Wednesday the 11th is past the bound.
		if len(generated) != 2 {
			t.Fatalf("generated %d occurrences, want 2", len(generated))
		}
		last := generated[len(generated)-1].Start
		if !event.SameDate(last, until) {
			t.Fatalf("last occurrence on %v, want the until date", last)
		}
	})

	t.Run("rejects a non-positive count", func(t *testing.T) {
		t.Parallel()
		if _, err := classTemplate(t, "MW", ByCount(-1)).Generate(); !errors.Is(err, ErrBadCount) {
			t.Fatalf("expected ErrBadCount, got %v", err)
		}
		if _, err := classTemplate(t, "MW", ByCount(0)).Generate(); !errors.Is(err, ErrBadCount) {
			t.Fatalf("expected ErrBadCount, got %v", err)
		}
	})

	t.Run("rejects an until-date before start", func(t *testing.T) {
		t.Parallel()
		until := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		if _, err := classTemplate(t, "MW", ByDate(until)).Generate(); !errors.Is(err, ErrUntilBeforeStart) {
			t.Fatalf("expected ErrUntilBeforeStart, got %v", err)
		}
	})

	t.Run("rejects start after end", func(t *testing.T) {
		t.Parallel()
		tmpl := classTemplate(t, "MW", ByCount(2))
		tmpl.End = tmpl.Start.Add(-time.Minute)
		if _, err := tmpl.Generate(); !errors.Is(err, event.ErrStartAfterEnd) {
			t.Fatalf("expected ErrStartAfterEnd, got %v", err)
		}
	})

	t.Run("rejects an empty weekday set", func(t *testing.T) {
		t.Parallel()
		tmpl := classTemplate(t, "M", ByCount(2))
		tmpl.Weekdays = 0
		if _, err := tmpl.Generate(); !errors.Is(err, ErrBadWeekday) {
			t.Fatalf("expected ErrBadWeekday, got %v", err)
		}
	})
}

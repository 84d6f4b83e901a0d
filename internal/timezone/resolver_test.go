package timezone

import (
	"errors"
	"testing"
	"time"
)

func TestSystemResolver(t *testing.T) {
	t.Parallel()

	t.Run("resolves known identifiers", func(t *testing.T) {
		t.Parallel()
		loc, err := SystemResolver{}.Resolve("UTC")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if loc != time.UTC {
			t.Fatalf("loc = %v, want UTC", loc)
		}
	})

	for _, tc := range []struct {
		name string
		id   string
	}{
		{"rejects empty identifiers", ""},
		{"rejects blank identifiers", "   "},
		{"rejects unknown identifiers", "Mars/Olympus"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := (SystemResolver{}).Resolve(tc.id); !errors.Is(err, ErrUnrecognized) {
				t.Fatalf("Resolve(%q) = %v, want ErrUnrecognized", tc.id, err)
			}
		})
	}
}

func TestFixedResolver(t *testing.T) {
	t.Parallel()

	east := time.FixedZone("UTC+1", 3600)
	resolver := FixedResolver{"UTC+1": east}

	loc, err := resolver.Resolve(" UTC+1 ")
	if err != nil || loc != east {
		t.Fatalf("Resolve = %v, %v", loc, err)
	}
	if _, err := resolver.Resolve("UTC-5"); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestDelta(t *testing.T) {
	t.Parallel()

	west := time.FixedZone("UTC-5", -5*3600)
	east := time.FixedZone("UTC+1", 3600)
	at := time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name           string
		source, target *time.Location
		want           time.Duration
	}{
		{"west to east", west, east, 6 * time.Hour},
		{"east to west", east, west, -6 * time.Hour},
		{"same zone", east, east, 0},
		{"utc to west", time.UTC, west, -5 * time.Hour},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Delta(tc.source, tc.target, at); got != tc.want {
				t.Fatalf("Delta = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeltaHonorsDST(t *testing.T) {
	t.Parallel()

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	winter := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	summer := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

	if got := Delta(time.UTC, berlin, winter); got != time.Hour {
		t.Errorf("winter delta = %v, want 1h", got)
	}
	if got := Delta(time.UTC, berlin, summer); got != 2*time.Hour {
		t.Errorf("summer delta = %v, want 2h", got)
	}
}

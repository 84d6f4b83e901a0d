package planner

import "time"

// EventInput captures caller provided fields for a standalone event. A nil
// End applies the all-day convention (08:00-17:00 of Start's date).
type EventInput struct {
	Subject string
	Start   time.Time
	End     *time.Time
}

// SeriesInput captures caller provided fields for a weekly series. Weekdays
// uses the single-letter alphabet (U M T W R F S). Exactly one terminator
// applies: Until when non-nil, otherwise Count.
type SeriesInput struct {
	Subject  string
	Start    time.Time
	End      *time.Time
	Weekdays string
	Count    int
	Until    *time.Time
}

// EditScope selects how far a property edit propagates.
type EditScope string

const (
	// ScopeSingle edits exactly the occurrence identified by its full key.
	ScopeSingle EditScope = "single"
	// ScopeFuture edits the matched occurrence and the later occurrences of
	// its series.
	ScopeFuture EditScope = "future"
	// ScopeSeries edits every occurrence of the matched series.
	ScopeSeries EditScope = "series"
)

// CalendarView is the registry state exposed to the presentation layer.
type CalendarView struct {
	Name       string
	TimezoneID string
	Active     bool
}

// Package planner is the application-service surface of the calendar core.
// The presentation layer parses user text into the typed inputs here; the
// service validates them, drives the registry and stores, logs outcomes, and
// returns typed errors only, never rendered text.
package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/calendar-planner/internal/calendar"
	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/recurrence"
	"github.com/example/calendar-planner/internal/registry"
)

// Service orchestrates calendar operations against a registry.
type Service struct {
	registry *registry.Registry
	now      func() time.Time
	logger   *slog.Logger
}

// NewService wires a service around the registry. When now is nil, time.Now
// is used; the logger may be nil, in which case slog.Default applies unless
// a context logger overrides it.
func NewService(reg *registry.Registry, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		registry: reg,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// Registry exposes the underlying registry for callers that need direct
// calendar access, such as seeding at startup.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// CreateCalendar registers a new named calendar.
func (s *Service) CreateCalendar(ctx context.Context, name, timezoneID string) error {
	logger := serviceLogger(ctx, s.logger, "create_calendar", "calendar", name)
	if err := s.registry.Create(name, timezoneID); err != nil {
		logger.Warn("calendar not created", "kind", ErrorKind(err), "error", err)
		return err
	}
	logger.Info("calendar created", "timezone", timezoneID)
	return nil
}

// RenameCalendar changes a calendar's unique name.
func (s *Service) RenameCalendar(ctx context.Context, name, newName string) error {
	logger := serviceLogger(ctx, s.logger, "rename_calendar", "calendar", name)
	if err := s.registry.Rename(name, newName); err != nil {
		logger.Warn("calendar not renamed", "kind", ErrorKind(err), "error", err)
		return err
	}
	logger.Info("calendar renamed", "new_name", newName)
	return nil
}

// RetimezoneCalendar changes a calendar's zone, converting stored times when
// the calendar is the active one.
func (s *Service) RetimezoneCalendar(ctx context.Context, name, timezoneID string) error {
	logger := serviceLogger(ctx, s.logger, "retimezone_calendar", "calendar", name)
	if err := s.registry.Retimezone(name, timezoneID); err != nil {
		logger.Warn("calendar not retimezoned", "kind", ErrorKind(err), "error", err)
		return err
	}
	logger.Info("calendar retimezoned", "timezone", timezoneID)
	return nil
}

// SelectCalendar makes the named calendar active.
func (s *Service) SelectCalendar(ctx context.Context, name string) error {
	logger := serviceLogger(ctx, s.logger, "select_calendar", "calendar", name)
	if err := s.registry.Select(name); err != nil {
		logger.Warn("calendar not selected", "kind", ErrorKind(err), "error", err)
		return err
	}
	logger.Info("calendar selected")
	return nil
}

// Calendars lists every registered calendar.
func (s *Service) Calendars(ctx context.Context) []CalendarView {
	views := make([]CalendarView, 0)
	activeName := ""
	if active, err := s.registry.Active(); err == nil {
		activeName = active.Name
	}
	for _, name := range s.registry.Names() {
		cal, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		views = append(views, CalendarView{
			Name:       cal.Name,
			TimezoneID: cal.TimezoneID,
			Active:     cal.Name == activeName,
		})
	}
	return views
}

// AddEvent inserts one standalone event into the active calendar. The
// returned bool is false when the duplicate key already exists; validation
// failures return a ValidationError.
func (s *Service) AddEvent(ctx context.Context, input EventInput) (bool, error) {
	logger := serviceLogger(ctx, s.logger, "add_event", "subject", input.Subject)
	active, err := s.registry.Active()
	if err != nil {
		logger.Warn("event not added", "kind", ErrorKind(err), "error", err)
		return false, err
	}

	ev, err := s.buildEvent(input, active)
	if err != nil {
		logger.Warn("event not added", "kind", ErrorKind(err), "error", err)
		return false, err
	}

	added := active.Store.AddSingle(ev)
	if !added {
		logger.Info("event rejected as duplicate", "start", ev.Start)
		return false, nil
	}
	logger.Info("event added", "start", ev.Start, "end", ev.End)
	return true, nil
}

// AddSeries expands and inserts a weekly series into the active calendar.
// The insert is atomic: a collision on any generated occurrence rejects the
// whole series and returns false.
func (s *Service) AddSeries(ctx context.Context, input SeriesInput) (bool, error) {
	logger := serviceLogger(ctx, s.logger, "add_series", "subject", input.Subject)
	active, err := s.registry.Active()
	if err != nil {
		logger.Warn("series not added", "kind", ErrorKind(err), "error", err)
		return false, err
	}

	tmpl, err := s.buildTemplate(input, active)
	if err != nil {
		logger.Warn("series not added", "kind", ErrorKind(err), "error", err)
		return false, err
	}

	added, err := active.Store.AddSeries(tmpl)
	if err != nil {
		logger.Warn("series not added", "kind", ErrorKind(err), "error", err)
		return false, err
	}
	if !added {
		logger.Info("series rejected as duplicate", "start", tmpl.Start)
		return false, nil
	}
	logger.Info("series added", "weekdays", tmpl.Weekdays.String())
	return true, nil
}

// Edit applies one property edit at the requested propagation scope. Single
// scope requires the full (subject, start, end) key; future and series
// scopes match on (subject, start).
func (s *Service) Edit(ctx context.Context, scope EditScope, subject string, start time.Time, end time.Time, ed event.Edit) error {
	logger := serviceLogger(ctx, s.logger, "edit_event",
		"scope", string(scope), "subject", subject, "property", string(ed.Property))
	active, err := s.registry.Active()
	if err != nil {
		logger.Warn("edit rejected", "kind", ErrorKind(err), "error", err)
		return err
	}

	start = event.Rebase(start, active.Location)
	if ed.Property == event.PropertyStart || ed.Property == event.PropertyEnd {
		ed.Time = event.Rebase(ed.Time, active.Location)
	}

	switch scope {
	case ScopeFuture:
		err = active.Store.EditFuture(subject, start, ed)
	case ScopeSeries:
		err = active.Store.EditSeries(subject, start, ed)
	default:
		key := event.Key{Subject: subject, Start: start, End: event.Rebase(end, active.Location)}
		err = active.Store.EditSingle(key, ed)
	}
	if err != nil {
		logger.Warn("edit rejected", "kind", ErrorKind(err), "error", err)
		return err
	}
	logger.Info("edit applied")
	return nil
}

// EventsOn lists the active calendar's occurrences starting on the date.
func (s *Service) EventsOn(ctx context.Context, date time.Time) ([]event.Event, error) {
	active, err := s.registry.Active()
	if err != nil {
		return nil, err
	}
	return eventsOf(active.Store.QueryOnDate(event.Rebase(date, active.Location))), nil
}

// EventsBetween lists occurrences fully contained in [from, to].
func (s *Service) EventsBetween(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	active, err := s.registry.Active()
	if err != nil {
		return nil, err
	}
	from = event.Rebase(from, active.Location)
	to = event.Rebase(to, active.Location)
	return eventsOf(active.Store.QueryRange(from, to)), nil
}

// IsBusyAt reports whether any occurrence in the active calendar contains
// the instant.
func (s *Service) IsBusyAt(ctx context.Context, t time.Time) (bool, error) {
	active, err := s.registry.Active()
	if err != nil {
		return false, err
	}
	return active.Store.IsBusyAt(event.Rebase(t, active.Location)), nil
}

// CopyEvent copies one uniquely-matched occurrence into the target calendar
// at an explicit new start.
func (s *Service) CopyEvent(ctx context.Context, subject string, start time.Time, targetName string, newStart time.Time) error {
	logger := serviceLogger(ctx, s.logger, "copy_event", "subject", subject, "target", targetName)
	if active, err := s.registry.Active(); err == nil {
		start = event.Rebase(start, active.Location)
	}
	if err := s.registry.CopyEvent(subject, start, targetName, newStart); err != nil {
		logger.Warn("event not copied", "kind", ErrorKind(err), "error", err)
		return err
	}
	logger.Info("event copied")
	return nil
}

// CopyEventsOnDate copies every occurrence on a date into the target
// calendar on targetDate, skipping collisions.
func (s *Service) CopyEventsOnDate(ctx context.Context, date time.Time, targetName string, targetDate time.Time) (bool, error) {
	logger := serviceLogger(ctx, s.logger, "copy_events_on_date", "target", targetName)
	if active, err := s.registry.Active(); err == nil {
		date = event.Rebase(date, active.Location)
	}
	copied, err := s.registry.CopyEventsOnDate(date, targetName, targetDate)
	if err != nil {
		logger.Warn("events not copied", "kind", ErrorKind(err), "error", err)
		return false, err
	}
	logger.Info("date copy finished", "copied_any", copied)
	return copied, nil
}

// CopyEventsInRange copies every occurrence in an inclusive date range into
// the target calendar anchored at newStartDate, skipping collisions.
func (s *Service) CopyEventsInRange(ctx context.Context, startDate, endDate time.Time, targetName string, newStartDate time.Time) (bool, error) {
	logger := serviceLogger(ctx, s.logger, "copy_events_in_range", "target", targetName)
	if active, err := s.registry.Active(); err == nil {
		startDate = event.Rebase(startDate, active.Location)
		endDate = event.Rebase(endDate, active.Location)
	}
	copied, err := s.registry.CopyEventsInRange(startDate, endDate, targetName, newStartDate)
	if err != nil {
		logger.Warn("events not copied", "kind", ErrorKind(err), "error", err)
		return false, err
	}
	logger.Info("range copy finished", "copied_any", copied)
	return copied, nil
}

func (s *Service) buildEvent(input EventInput, active *registry.Calendar) (event.Event, error) {
	start := event.Rebase(input.Start, active.Location)
	if input.End == nil {
		return event.NewAllDay(input.Subject, start), nil
	}
	end := event.Rebase(*input.End, active.Location)
	ev, err := event.New(input.Subject, start, end)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("end", "start must not be after end")
		return event.Event{}, vErr
	}
	return ev, nil
}

func (s *Service) buildTemplate(input SeriesInput, active *registry.Calendar) (recurrence.Template, error) {
	weekdays, err := recurrence.ParseWeekdaySet(input.Weekdays)
	if err != nil {
		return recurrence.Template{}, err
	}

	base, err := s.buildEvent(EventInput{Subject: input.Subject, Start: input.Start, End: input.End}, active)
	if err != nil {
		return recurrence.Template{}, err
	}

	terminator := recurrence.ByCount(input.Count)
	if input.Until != nil {
		terminator = recurrence.ByDate(event.Rebase(*input.Until, active.Location))
	}

	tmpl := recurrence.Template{
		Subject:    base.Subject,
		Start:      base.Start,
		End:        base.End,
		Weekdays:   weekdays,
		Terminator: terminator,
	}
	if err := tmpl.Validate(); err != nil {
		return recurrence.Template{}, err
	}
	return tmpl, nil
}

func eventsOf(occurrences []calendar.Occurrence) []event.Event {
	events := make([]event.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		events = append(events, occ.Event)
	}
	return events
}

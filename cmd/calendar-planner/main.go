// Command calendar-planner runs an interactive console over the calendar
// core. All text parsing lives here; the core sees typed arguments only.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/calendar-planner/internal/config"
	"github.com/example/calendar-planner/internal/event"
	"github.com/example/calendar-planner/internal/logging"
	"github.com/example/calendar-planner/internal/planner"
	"github.com/example/calendar-planner/internal/registry"
	"github.com/example/calendar-planner/internal/timezone"
)

const (
	dateTimeLayout = "2006-01-02T15:04"
	dateLayout     = "2006-01-02"
)

func main() {
	// A missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stderr, cfg.LogLevel)
	ctx := logging.ContextWithLogger(context.Background(), logger)

	reg := registry.New(timezone.SystemResolver{}, nil)
	service := planner.NewService(reg, time.Now, logger)

	if err := seed(ctx, service, cfg); err != nil {
		logger.Error("failed to seed calendars", "error", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("calendar-planner ready; type 'help' for commands")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}
		if err := dispatch(ctx, service, strings.Fields(line)); err != nil {
			fmt.Printf("error (%s): %v\n", planner.ErrorKind(err), err)
		}
	}
}

func seed(ctx context.Context, service *planner.Service, cfg config.Config) error {
	if cfg.CalendarsFile == "" {
		if err := service.CreateCalendar(ctx, "default", cfg.DefaultTimezone); err != nil {
			return err
		}
		return service.SelectCalendar(ctx, "default")
	}

	parsed, err := config.LoadSeed(cfg.CalendarsFile)
	if err != nil {
		return err
	}
	for _, cal := range parsed.Calendars {
		if err := service.CreateCalendar(ctx, cal.Name, cal.Timezone); err != nil {
			return err
		}
	}
	if parsed.Active != "" {
		return service.SelectCalendar(ctx, parsed.Active)
	}
	return nil
}

func dispatch(ctx context.Context, service *planner.Service, args []string) error {
	switch args[0] {
	case "help":
		printHelp()
		return nil
	case "calendars":
		for _, view := range service.Calendars(ctx) {
			marker := " "
			if view.Active {
				marker = "*"
			}
			fmt.Printf("%s %s (%s)\n", marker, view.Name, view.TimezoneID)
		}
		return nil
	case "create":
		if len(args) != 3 {
			return errUsage("create <name> <timezone>")
		}
		return service.CreateCalendar(ctx, args[1], args[2])
	case "rename":
		if len(args) != 3 {
			return errUsage("rename <name> <new-name>")
		}
		return service.RenameCalendar(ctx, args[1], args[2])
	case "timezone":
		if len(args) != 3 {
			return errUsage("timezone <name> <timezone>")
		}
		return service.RetimezoneCalendar(ctx, args[1], args[2])
	case "select":
		if len(args) != 2 {
			return errUsage("select <name>")
		}
		return service.SelectCalendar(ctx, args[1])
	case "add":
		return addEvent(ctx, service, args[1:])
	case "series":
		return addSeries(ctx, service, args[1:])
	case "edit":
		return editEvent(ctx, service, args[1:])
	case "on":
		return listOn(ctx, service, args[1:])
	case "range":
		return listRange(ctx, service, args[1:])
	case "busy":
		return showBusy(ctx, service, args[1:])
	case "copy":
		return copyCmd(ctx, service, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func addEvent(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return errUsage("add <subject> <start> [<end>]")
	}
	start, err := time.Parse(dateTimeLayout, args[1])
	if err != nil {
		return fmt.Errorf("bad start: %w", err)
	}
	input := planner.EventInput{Subject: args[0], Start: start}
	if len(args) == 3 {
		end, err := time.Parse(dateTimeLayout, args[2])
		if err != nil {
			return fmt.Errorf("bad end: %w", err)
		}
		input.End = &end
	}
	added, err := service.AddEvent(ctx, input)
	if err != nil {
		return err
	}
	if !added {
		fmt.Println("not added: duplicate event")
		return nil
	}
	fmt.Println("added")
	return nil
}

func addSeries(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) != 6 {
		return errUsage("series <subject> <start> <end> <weekdays> count <n> | series <subject> <start> <end> <weekdays> until <date>")
	}
	start, err := time.Parse(dateTimeLayout, args[1])
	if err != nil {
		return fmt.Errorf("bad start: %w", err)
	}
	end, err := time.Parse(dateTimeLayout, args[2])
	if err != nil {
		return fmt.Errorf("bad end: %w", err)
	}
	input := planner.SeriesInput{Subject: args[0], Start: start, End: &end, Weekdays: args[3]}
	switch args[4] {
	case "count":
		n, err := strconv.Atoi(args[5])
		if err != nil {
			return fmt.Errorf("bad count: %w", err)
		}
		input.Count = n
	case "until":
		until, err := time.Parse(dateLayout, args[5])
		if err != nil {
			return fmt.Errorf("bad until date: %w", err)
		}
		input.Until = &until
	default:
		return errUsage("series ... count <n> | until <date>")
	}
	added, err := service.AddSeries(ctx, input)
	if err != nil {
		return err
	}
	if !added {
		fmt.Println("not added: series collides with existing events")
		return nil
	}
	fmt.Println("added")
	return nil
}

func editEvent(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) < 5 {
		return errUsage("edit <single|future|series> <property> <subject> <start> [<end>] <value>")
	}
	scope := planner.EditScope(args[0])
	property, err := event.ParseProperty(args[1])
	if err != nil {
		return err
	}
	subject := args[2]
	start, err := time.Parse(dateTimeLayout, args[3])
	if err != nil {
		return fmt.Errorf("bad start: %w", err)
	}

	rest := args[4:]
	var end time.Time
	if scope == planner.ScopeSingle {
		if len(rest) < 2 {
			return errUsage("edit single <property> <subject> <start> <end> <value>")
		}
		end, err = time.Parse(dateTimeLayout, rest[0])
		if err != nil {
			return fmt.Errorf("bad end: %w", err)
		}
		rest = rest[1:]
	}

	var ed event.Edit
	if property == event.PropertyStart || property == event.PropertyEnd {
		value, err := time.Parse(dateTimeLayout, rest[0])
		if err != nil {
			return fmt.Errorf("bad value: %w", err)
		}
		ed = event.TimeEdit(property, value)
	} else {
		ed = event.TextEdit(property, strings.Join(rest, " "))
	}
	if err := service.Edit(ctx, scope, subject, start, end, ed); err != nil {
		return err
	}
	fmt.Println("edited")
	return nil
}

func listOn(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) != 1 {
		return errUsage("on <date>")
	}
	date, err := time.Parse(dateLayout, args[0])
	if err != nil {
		return fmt.Errorf("bad date: %w", err)
	}
	events, err := service.EventsOn(ctx, date)
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func listRange(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) != 2 {
		return errUsage("range <start> <end>")
	}
	from, err := time.Parse(dateTimeLayout, args[0])
	if err != nil {
		return fmt.Errorf("bad start: %w", err)
	}
	to, err := time.Parse(dateTimeLayout, args[1])
	if err != nil {
		return fmt.Errorf("bad end: %w", err)
	}
	events, err := service.EventsBetween(ctx, from, to)
	if err != nil {
		return err
	}
	printEvents(events)
	return nil
}

func showBusy(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) != 1 {
		return errUsage("busy <datetime>")
	}
	at, err := time.Parse(dateTimeLayout, args[0])
	if err != nil {
		return fmt.Errorf("bad datetime: %w", err)
	}
	busy, err := service.IsBusyAt(ctx, at)
	if err != nil {
		return err
	}
	if busy {
		fmt.Println("busy")
	} else {
		fmt.Println("available")
	}
	return nil
}

func copyCmd(ctx context.Context, service *planner.Service, args []string) error {
	if len(args) == 0 {
		return errUsage("copy event|date|range ...")
	}
	switch args[0] {
	case "event":
		if len(args) != 5 {
			return errUsage("copy event <subject> <start> <target> <new-start>")
		}
		start, err := time.Parse(dateTimeLayout, args[2])
		if err != nil {
			return fmt.Errorf("bad start: %w", err)
		}
		newStart, err := time.Parse(dateTimeLayout, args[4])
		if err != nil {
			return fmt.Errorf("bad new start: %w", err)
		}
		if err := service.CopyEvent(ctx, args[1], start, args[3], newStart); err != nil {
			return err
		}
		fmt.Println("copied")
		return nil
	case "date":
		if len(args) != 4 {
			return errUsage("copy date <date> <target> <target-date>")
		}
		date, err := time.Parse(dateLayout, args[1])
		if err != nil {
			return fmt.Errorf("bad date: %w", err)
		}
		targetDate, err := time.Parse(dateLayout, args[3])
		if err != nil {
			return fmt.Errorf("bad target date: %w", err)
		}
		copied, err := service.CopyEventsOnDate(ctx, date, args[2], targetDate)
		if err != nil {
			return err
		}
		printCopied(copied)
		return nil
	case "range":
		if len(args) != 5 {
			return errUsage("copy range <start-date> <end-date> <target> <new-start-date>")
		}
		startDate, err := time.Parse(dateLayout, args[1])
		if err != nil {
			return fmt.Errorf("bad start date: %w", err)
		}
		endDate, err := time.Parse(dateLayout, args[2])
		if err != nil {
			return fmt.Errorf("bad end date: %w", err)
		}
		newStart, err := time.Parse(dateLayout, args[4])
		if err != nil {
			return fmt.Errorf("bad new start date: %w", err)
		}
		copied, err := service.CopyEventsInRange(ctx, startDate, endDate, args[3], newStart)
		if err != nil {
			return err
		}
		printCopied(copied)
		return nil
	default:
		return errUsage("copy event|date|range ...")
	}
}

func printEvents(events []event.Event) {
	if len(events) == 0 {
		fmt.Println("no events")
		return
	}
	for _, ev := range events {
		extra := ""
		if ev.Location != event.LocationUnset {
			extra = " @" + string(ev.Location)
		}
		if ev.Status == event.StatusPrivate {
			extra += " [private]"
		}
		fmt.Printf("%s  %s .. %s%s\n", ev.Subject,
			ev.Start.Format(dateTimeLayout), ev.End.Format(dateTimeLayout), extra)
	}
}

func printCopied(copied bool) {
	if copied {
		fmt.Println("copied")
	} else {
		fmt.Println("nothing copied")
	}
}

func errUsage(usage string) error {
	return errors.New("usage: " + usage)
}

func printHelp() {
	fmt.Print(`commands:
  calendars
  create <name> <timezone>
  rename <name> <new-name>
  timezone <name> <timezone>
  select <name>
  add <subject> <start> [<end>]
  series <subject> <start> <end> <weekdays> count <n>
  series <subject> <start> <end> <weekdays> until <date>
  edit <single|future|series> <property> <subject> <start> [<end>] <value>
  on <date>
  range <start> <end>
  busy <datetime>
  copy event <subject> <start> <target> <new-start>
  copy date <date> <target> <target-date>
  copy range <start-date> <end-date> <target> <new-start-date>
  quit

times use 2006-01-02T15:04, dates 2006-01-02; weekdays use letters UMTWRFS
`)
}

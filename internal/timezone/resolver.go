// Package timezone is the boundary between the calendar core and the
// platform's zone database. The core never calls time.LoadLocation directly;
// it asks a Resolver for zone data and computes offset deltas through the
// helpers here so DST transitions are honored per instant.
package timezone

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnrecognized indicates a timezone identifier string does not resolve to
// a known zone.
var ErrUnrecognized = errors.New("timezone: unrecognized identifier")

// Resolver maps timezone identifier strings to concrete zone data.
type Resolver interface {
	Resolve(id string) (*time.Location, error)
}

// SystemResolver resolves identifiers against the platform tz database.
type SystemResolver struct{}

// Resolve returns the location named by id, or ErrUnrecognized when the
// identifier is blank or unknown to the tz database.
func (SystemResolver) Resolve(id string) (*time.Location, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnrecognized)
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognized, trimmed)
	}
	return loc, nil
}

// FixedResolver resolves identifiers from a fixed table. Tests use it to pin
// zone offsets without depending on the platform tz database.
type FixedResolver map[string]*time.Location

// Resolve looks the identifier up in the table.
func (r FixedResolver) Resolve(id string) (*time.Location, error) {
	loc, ok := r[strings.TrimSpace(id)]
	if !ok || loc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognized, id)
	}
	return loc, nil
}

// OffsetAt returns the UTC offset of loc at instant t.
func OffsetAt(loc *time.Location, t time.Time) time.Duration {
	_, seconds := t.In(loc).Zone()
	return time.Duration(seconds) * time.Second
}

// Delta returns the offset of target minus the offset of source, both taken
// at instant t. The result is the signed duration an event's wall-clock time
// moves when converted from source to target.
func Delta(source, target *time.Location, t time.Time) time.Duration {
	return OffsetAt(target, t) - OffsetAt(source, t)
}

// Package recurrence expands weekly event templates into concrete
// occurrences. A template pairs a first-occurrence interval with a weekday
// set and a termination rule (repeat count or inclusive until-date).
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrBadWeekday indicates a weekday letter outside the U M T W R F S
// alphabet, or an empty selection.
var ErrBadWeekday = errors.New("recurrence: invalid weekday selection")

// weekdayLetters maps time.Weekday (Sunday-first) onto the single-letter
// alphabet. R is Thursday, S is Saturday, U is Sunday; the unusual letters
// exist to disambiguate Tuesday/Thursday and Saturday/Sunday.
var weekdayLetters = [7]rune{'U', 'M', 'T', 'W', 'R', 'F', 'S'}

// WeekdaySet is a set of weekdays encoded as a bitmask indexed by
// time.Weekday.
type WeekdaySet uint8

// ParseWeekdaySet parses the single-letter weekday alphabet, case
// insensitively. Repeated letters collapse into the set. An empty string or
// any letter outside the alphabet fails with ErrBadWeekday.
func ParseWeekdaySet(letters string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, r := range strings.ToUpper(strings.TrimSpace(letters)) {
		matched := false
		for day, letter := range weekdayLetters {
			if r == letter {
				set |= 1 << uint(day)
				matched = true
				break
			}
		}
		if !matched {
			return 0, fmt.Errorf("%w: letter %q", ErrBadWeekday, string(r))
		}
	}
	if set == 0 {
		return 0, fmt.Errorf("%w: empty set", ErrBadWeekday)
	}
	return set, nil
}

// Contains reports whether the set includes day.
func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

// IsEmpty reports whether no weekday is selected.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days lists the selected weekdays in Sunday-first order.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Contains(day) {
			days = append(days, day)
		}
	}
	return days
}

// Rotated returns the set with every weekday moved forward by the signed
// number of days, modulo one week. Transfer operations use it so a shifted
// series template regenerates on the shifted dates.
func (s WeekdaySet) Rotated(days int) WeekdaySet {
	shift := days % 7
	if shift < 0 {
		shift += 7
	}
	var out WeekdaySet
	for day := 0; day < 7; day++ {
		if s&(1<<uint(day)) != 0 {
			out |= 1 << uint((day+shift)%7)
		}
	}
	return out
}

// String renders the set in the letter alphabet, Sunday-first.
func (s WeekdaySet) String() string {
	var b strings.Builder
	for day := 0; day < 7; day++ {
		if s.Contains(time.Weekday(day)) {
			b.WriteRune(weekdayLetters[day])
		}
	}
	return b.String()
}

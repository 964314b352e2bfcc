// Package recurrence expands recurrence masters into concrete occurrence
// instants. Expansion always iterates from the start of the series (the
// rule iterator cannot seek), bounded by an occurrence budget and a time
// window so that a rule without an end condition can never run away.
package recurrence

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"davsync/record"
)

// Defaults applied when a Window leaves the corresponding bound unset.
const (
	DefaultMaxOccurrences = 100
	DefaultSpan           = 365 * 24 * time.Hour
)

// Window bounds an expansion. A zero Start means the master's own start; a
// zero End means Start plus DefaultSpan; a non-positive MaxOccurrences means
// DefaultMaxOccurrences.
type Window struct {
	Start          time.Time
	End            time.Time
	MaxOccurrences int
}

func (w Window) withDefaults(masterStart time.Time) Window {
	if w.Start.IsZero() {
		w.Start = masterStart
	}
	if w.End.IsZero() {
		w.End = w.Start.Add(DefaultSpan)
	}
	if w.MaxOccurrences <= 0 {
		w.MaxOccurrences = DefaultMaxOccurrences
	}
	return w
}

// Expand returns the ordered occurrence instants of master inside the
// window. Instants before the window start are dropped without consuming
// the occurrence budget; counting them would silently truncate the tail of
// old, long-running series. Excluded dates (EXDATE) are dropped the same
// way. A master without a start instant expands to nothing.
func Expand(master record.Event, w Window) ([]time.Time, error) {
	if master.Start.IsZero() {
		return nil, nil
	}
	w = w.withDefaults(master.Start)

	info := extractDates(master.Raw)

	if !master.IsRecurring || master.RecurrenceRule == "" {
		if inWindow(master.Start, w) && !excluded(master.Start, info.exdates) {
			return []time.Time{master.Start}, nil
		}
		return nil, nil
	}

	opts, err := rrule.StrToROption(master.RecurrenceRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE %q: %w", master.RecurrenceRule, err)
	}
	opts.Dtstart = master.Start
	rule, err := rrule.NewRRule(*opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build RRULE %q: %w", master.RecurrenceRule, err)
	}

	var out []time.Time
	next := rule.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if t.After(w.End) {
			break
		}
		if t.Before(w.Start) || excluded(t, info.exdates) {
			continue
		}
		out = append(out, t)
		if len(out) >= w.MaxOccurrences {
			return out, nil
		}
	}

	// RDATE instants are additional occurrences outside the rule.
	for _, t := range info.rdates {
		if inWindow(t, w) && !excluded(t, info.exdates) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	if len(out) > w.MaxOccurrences {
		out = out[:w.MaxOccurrences]
	}
	return out, nil
}

func inWindow(t time.Time, w Window) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func excluded(t time.Time, exdates []time.Time) bool {
	for _, ex := range exdates {
		if t.Equal(ex) {
			return true
		}
		// Date-only exclusions are stored as midnight UTC and exclude the
		// whole day.
		if ex.Hour() == 0 && ex.Minute() == 0 && ex.Second() == 0 && ex.Location() == time.UTC {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if day.Equal(ex) {
				return true
			}
		}
	}
	return false
}

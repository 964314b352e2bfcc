// Package codec is the bidirectional transformation layer between raw
// iCalendar/vCard text and the typed records in package record. The forward
// direction parses defensively (malformed objects are logged and skipped,
// never fatal); the reverse direction either builds a minimal new object or
// patches the existing raw text in place so that unrelated content survives
// byte-for-byte.
package codec

import (
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"

	"davsync/record"
)

// Parser converts raw markup fetched from the server into typed records.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Event parses one iCalendar object. A malformed or unsupported object
// yields None after a warning, so that one bad object cannot abort a whole
// collection fetch.
func (p *Parser) Event(raw, href, etag string) mo.Option[record.Event] {
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		p.logger.Warn("skipping unparseable calendar object", "url", href, "error", err)
		return mo.None[record.Event]()
	}

	// Timezones must be registered before any date/time value is read;
	// non-IANA TZIDs are only resolvable through the embedded definitions.
	reg := NewTimezoneRegistry()
	reg.AddCalendar(cal)

	master := masterEvent(cal)
	if master == nil {
		p.logger.Warn("skipping calendar object without VEVENT", "url", href)
		return mo.None[record.Event]()
	}

	uid, err := master.Props.Text(ical.PropUID)
	if err != nil || uid == "" {
		p.logger.Warn("skipping calendar object without UID", "url", href)
		return mo.None[record.Event]()
	}

	ev := record.Event{
		UID:  uid,
		URL:  href,
		ETag: etag,
		Raw:  raw,
	}
	ev.Summary, _ = master.Props.Text(ical.PropSummary)
	ev.Description, _ = master.Props.Text(ical.PropDescription)
	ev.Location, _ = master.Props.Text(ical.PropLocation)
	ev.Status, _ = master.Props.Text(ical.PropStatus)

	ev.Start, ev.End = eventTimes(master, reg)
	if dtstart := master.Props.Get(ical.PropDateTimeStart); dtstart != nil {
		ev.TimeZone = dtstart.Params.Get(ical.ParamTimezoneID)
	}

	ev.Attendees, ev.AttendeeDetails = parseAttendees(master)

	if rrule := master.Props.Get(ical.PropRecurrenceRule); rrule != nil && rrule.Value != "" {
		ev.IsRecurring = true
		ev.RecurrenceRule = rrule.Value
	}

	return mo.Some(ev)
}

// masterEvent picks the recurrence master: the first VEVENT without a
// RECURRENCE-ID, falling back to the first VEVENT.
func masterEvent(cal *ical.Calendar) *ical.Component {
	var first *ical.Component
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if first == nil {
			first = child
		}
		if child.Props.Get(ical.PropRecurrenceID) == nil {
			return child
		}
	}
	return first
}

// eventTimes extracts start and end, filling in the end from DURATION or the
// conventional defaults (one day for all-day events, instantaneous
// otherwise) when DTEND is absent.
func eventTimes(comp *ical.Component, reg *TimezoneRegistry) (start, end time.Time) {
	dtstart := comp.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil {
		return start, end
	}
	start, startDateOnly, err := resolveDateTime(dtstart, reg)
	if err != nil {
		return time.Time{}, time.Time{}
	}

	if dtend := comp.Props.Get(ical.PropDateTimeEnd); dtend != nil {
		if t, _, err := resolveDateTime(dtend, reg); err == nil {
			return start, t
		}
	}
	if durProp := comp.Props.Get(ical.PropDuration); durProp != nil {
		if dur, err := durProp.Duration(); err == nil {
			return start, start.Add(dur)
		}
	}
	if startDateOnly {
		return start, start.AddDate(0, 0, 1)
	}
	return start, start
}

// parseAttendees extracts both the flat display list and the structured
// attendee records. The display name parameter wins; the mailto address is
// the fallback.
func parseAttendees(comp *ical.Component) ([]string, []record.Attendee) {
	props := comp.Props.Values(ical.PropAttendee)
	if len(props) == 0 {
		return nil, nil
	}

	display := make([]string, 0, len(props))
	details := make([]record.Attendee, 0, len(props))
	for _, prop := range props {
		email := strings.TrimPrefix(strings.TrimPrefix(prop.Value, "mailto:"), "MAILTO:")
		att := record.Attendee{
			Name:   prop.Params.Get(ical.ParamCommonName),
			Email:  email,
			Status: prop.Params.Get(ical.ParamParticipationStatus),
			Role:   prop.Params.Get(ical.ParamRole),
			RSVP:   strings.EqualFold(prop.Params.Get(ical.ParamRSVP), "TRUE"),
		}
		if att.Name != "" {
			display = append(display, att.Name)
		} else {
			display = append(display, email)
		}
		details = append(details, att)
	}
	return display, details
}

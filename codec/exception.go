package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"davsync/record"
)

// BuildException adds a single-instance override to a recurring series. The
// master's raw text is patched to carry a second VEVENT with the same UID
// and a RECURRENCE-ID naming the overridden occurrence; the result replaces
// the master's resource on the server.
//
// The RECURRENCE-ID is encoded with exactly the value type and timezone of
// the master's DTSTART. Servers match exceptions to masters by comparing
// these encodings, so a date-only master gets a date-only override marker
// and a zoned master gets the same TZID.
//
// The exception carries no RRULE/RDATE/EXDATE (those belong to the master
// alone) and inherits the master's alarms only when cloneAlarms is set.
func BuildException(raw string, occurrence time.Time, changes record.UpdateEventInput, cloneAlarms bool) (string, error) {
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		return "", fmt.Errorf("failed to parse master calendar object: %w", err)
	}

	reg := NewTimezoneRegistry()
	reg.AddCalendar(cal)

	master := masterEvent(cal)
	if master == nil {
		return "", fmt.Errorf("master calendar object has no VEVENT")
	}
	if master.Props.Get(ical.PropRecurrenceRule) == nil {
		return "", fmt.Errorf("master event is not recurring")
	}
	uid, err := master.Props.Text(ical.PropUID)
	if err != nil || uid == "" {
		return "", fmt.Errorf("master event has no UID")
	}
	dtstart := master.Props.Get(ical.PropDateTimeStart)
	if dtstart == nil {
		return "", fmt.Errorf("master event has no DTSTART")
	}

	exc := ical.NewComponent(ical.CompEvent)
	exc.Props.SetText(ical.PropUID, uid)
	setUTCDateTime(exc.Props, ical.PropDateTimeStamp, time.Now())
	setDateTimeLike(exc.Props, ical.PropRecurrenceID, occurrence, dtstart, reg)
	setDateTimeLike(exc.Props, ical.PropDateTimeStart, occurrence, dtstart, reg)

	// Carry the occurrence's end over from the master's duration so that an
	// exception changing only a text field keeps its slot length.
	if start, _, err := resolveDateTime(dtstart, reg); err == nil {
		_, end := eventTimes(master, reg)
		if end.After(start) {
			setDateTimeLike(exc.Props, ical.PropDateTimeEnd, occurrence.Add(end.Sub(start)), master.Props.Get(ical.PropDateTimeEnd), reg)
		}
	}

	// Inherit the master's display fields as the baseline the changes are
	// applied over.
	for _, name := range []string{ical.PropSummary, ical.PropDescription, ical.PropLocation, ical.PropStatus} {
		if prop := master.Props.Get(name); prop != nil {
			copied := *prop
			exc.Props.Set(&copied)
		}
	}
	for _, att := range master.Props.Values(ical.PropAttendee) {
		copied := att
		exc.Props.Add(&copied)
	}

	if cloneAlarms {
		for _, child := range master.Children {
			if child.Name == ical.CompAlarm {
				exc.Children = append(exc.Children, child)
			}
		}
	}

	applyEventInput(exc, changes, reg)

	cal.Children = append(cal.Children, exc)
	return encodeCalendar(cal)
}

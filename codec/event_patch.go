package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"davsync/record"
)

// PatchEvent applies an update input onto existing raw iCalendar text. Only
// the properties the input names are touched; alarms, vendor extensions,
// attachments, parameters and anything else in the object survive unchanged
// because the decoded tree itself is re-serialized. LAST-MODIFIED and
// SEQUENCE are refreshed on every patch.
func PatchEvent(raw string, input record.UpdateEventInput) (string, error) {
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		return "", fmt.Errorf("failed to parse existing calendar object: %w", err)
	}

	reg := NewTimezoneRegistry()
	reg.AddCalendar(cal)

	master := masterEvent(cal)
	if master == nil {
		return "", fmt.Errorf("existing calendar object has no VEVENT")
	}

	applyEventInput(master, input, reg)
	touchEvent(master, time.Now())

	return encodeCalendar(cal)
}

// applyEventInput mutates only the properties named by the input.
func applyEventInput(comp *ical.Component, input record.UpdateEventInput, reg *TimezoneRegistry) {
	if v, ok := input.Summary.Get(); ok {
		comp.Props.SetText(ical.PropSummary, v)
	}
	if v, ok := input.Description.Get(); ok {
		comp.Props.SetText(ical.PropDescription, v)
	}
	if v, ok := input.Location.Get(); ok {
		comp.Props.SetText(ical.PropLocation, v)
	}
	if v, ok := input.Status.Get(); ok {
		comp.Props.SetText(ical.PropStatus, v)
	}
	if t, ok := input.Start.Get(); ok {
		setDateTimeLike(comp.Props, ical.PropDateTimeStart, t, comp.Props.Get(ical.PropDateTimeStart), reg)
	}
	if t, ok := input.End.Get(); ok {
		setDateTimeLike(comp.Props, ical.PropDateTimeEnd, t, comp.Props.Get(ical.PropDateTimeEnd), reg)
	}
	if v, ok := input.RecurrenceRule.Get(); ok {
		if v == "" {
			comp.Props.Del(ical.PropRecurrenceRule)
		} else {
			prop := ical.NewProp(ical.PropRecurrenceRule)
			prop.Value = v
			comp.Props.Set(prop)
		}
	}
	if atts, ok := input.Attendees.Get(); ok {
		comp.Props.Del(ical.PropAttendee)
		setAttendees(comp.Props, atts)
	}
}

// touchEvent refreshes the bookkeeping properties: modification timestamp
// now, revision counter incremented (absent counts as zero).
func touchEvent(comp *ical.Component, now time.Time) {
	setUTCDateTime(comp.Props, ical.PropLastModified, now)

	seq := 0
	if prop := comp.Props.Get(ical.PropSequence); prop != nil {
		if n, err := strconv.Atoi(prop.Value); err == nil {
			seq = n
		}
	}
	prop := ical.NewProp(ical.PropSequence)
	prop.Value = strconv.Itoa(seq + 1)
	comp.Props.Set(prop)
}

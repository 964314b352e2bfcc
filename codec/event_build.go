package codec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"davsync/record"
)

const prodID = "-//davsync//NONSGML v1.0//EN"

// BuildEvent synthesizes a complete minimal iCalendar object for a new
// event. The output round-trips through Parser.Event to equivalent
// structured data. Returns the serialized object and the generated UID.
func BuildEvent(input record.CreateEventInput) (raw string, uid string, err error) {
	if input.Summary == "" {
		return "", "", fmt.Errorf("event summary is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return "", "", fmt.Errorf("event start and end are required")
	}

	uid = uuid.New().String()

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetText(ical.PropSummary, input.Summary)
	setUTCDateTime(event.Props, ical.PropDateTimeStamp, time.Now())

	if input.AllDay {
		setDate(event.Props, ical.PropDateTimeStart, input.Start)
		setDate(event.Props, ical.PropDateTimeEnd, input.End)
	} else if tz, ok := input.TimeZone.Get(); ok {
		loc, locErr := time.LoadLocation(tz)
		if locErr != nil {
			return "", "", fmt.Errorf("unknown timezone %q: %w", tz, locErr)
		}
		setZonedDateTime(event.Props, ical.PropDateTimeStart, input.Start.In(loc), tz)
		setZonedDateTime(event.Props, ical.PropDateTimeEnd, input.End.In(loc), tz)
	} else {
		setUTCDateTime(event.Props, ical.PropDateTimeStart, input.Start)
		setUTCDateTime(event.Props, ical.PropDateTimeEnd, input.End)
	}

	if v, ok := input.Description.Get(); ok {
		event.Props.SetText(ical.PropDescription, v)
	}
	if v, ok := input.Location.Get(); ok {
		event.Props.SetText(ical.PropLocation, v)
	}
	if v, ok := input.Status.Get(); ok {
		event.Props.SetText(ical.PropStatus, v)
	}
	if v, ok := input.RecurrenceRule.Get(); ok {
		rrule := ical.NewProp(ical.PropRecurrenceRule)
		rrule.Value = v
		event.Props.Set(rrule)
	}
	setAttendees(event.Props, input.Attendees)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, prodID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, event.Component)

	raw, err = encodeCalendar(cal)
	if err != nil {
		return "", "", err
	}
	return raw, uid, nil
}

func setZonedDateTime(props ical.Props, name string, t time.Time, tzid string) {
	prop := ical.NewProp(name)
	prop.Params.Set(ical.ParamTimezoneID, tzid)
	prop.Value = t.Format(dateTimeFormat)
	props.Set(prop)
}

// setAttendees replaces all ATTENDEE properties with the given list.
func setAttendees(props ical.Props, attendees []record.Attendee) {
	if attendees == nil {
		return
	}
	props.Del(ical.PropAttendee)
	for _, att := range attendees {
		prop := ical.NewProp(ical.PropAttendee)
		prop.Value = "mailto:" + att.Email
		if att.Name != "" {
			prop.Params.Set(ical.ParamCommonName, att.Name)
		}
		if att.Status != "" {
			prop.Params.Set(ical.ParamParticipationStatus, att.Status)
		}
		if att.Role != "" {
			prop.Params.Set(ical.ParamRole, att.Role)
		}
		if att.RSVP {
			prop.Params.Set(ical.ParamRSVP, "TRUE")
		}
		props.Add(prop)
	}
}

func encodeCalendar(cal *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.String(), nil
}

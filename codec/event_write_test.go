package codec

import (
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davsync/record"
)

func TestBuildEventRoundTrip(t *testing.T) {
	input := record.CreateEventInput{
		Summary:     "Architecture review",
		Start:       time.Date(2026, 4, 10, 13, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 4, 10, 14, 30, 0, 0, time.UTC),
		Description: mo.Some("Bring the diagrams"),
		Location:    mo.Some("Room 2"),
		Attendees: []record.Attendee{
			{Name: "Maja Horvat", Email: "maja@example.org", Status: "NEEDS-ACTION", RSVP: true},
		},
	}

	raw, uid, err := BuildEvent(input)
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	ev, ok := NewParser(testLogger()).Event(raw, "/cal/new.ics", "").Get()
	require.True(t, ok, "built object must re-parse")

	assert.Equal(t, uid, ev.UID)
	assert.Equal(t, "Architecture review", ev.Summary)
	assert.Equal(t, "Bring the diagrams", ev.Description)
	assert.Equal(t, "Room 2", ev.Location)
	assert.Equal(t, input.Start, ev.Start.UTC())
	assert.Equal(t, input.End, ev.End.UTC())
	require.Len(t, ev.AttendeeDetails, 1)
	assert.Equal(t, "maja@example.org", ev.AttendeeDetails[0].Email)
	assert.True(t, ev.AttendeeDetails[0].RSVP)
}

func TestBuildEventAllDay(t *testing.T) {
	raw, _, err := BuildEvent(record.CreateEventInput{
		Summary: "Conference",
		Start:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC),
		AllDay:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, raw, "DTSTART;VALUE=DATE:20260501")
	assert.Contains(t, raw, "DTEND;VALUE=DATE:20260503")
}

func TestBuildEventRecurring(t *testing.T) {
	raw, _, err := BuildEvent(record.CreateEventInput{
		Summary:        "Weekly sync",
		Start:          time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC),
		End:            time.Date(2026, 2, 2, 9, 30, 0, 0, time.UTC),
		RecurrenceRule: mo.Some("FREQ=WEEKLY;BYDAY=MO"),
	})
	require.NoError(t, err)
	assert.Contains(t, raw, "RRULE:FREQ=WEEKLY;BYDAY=MO")
}

func TestBuildEventValidation(t *testing.T) {
	_, _, err := BuildEvent(record.CreateEventInput{Summary: "no times"})
	assert.Error(t, err)

	_, _, err = BuildEvent(record.CreateEventInput{
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
	})
	assert.Error(t, err)
}

// The object used for preservation tests carries an alarm, a vendor
// extension property and a parameterized attendee; none of them may change
// when an unrelated field is patched.
const preservationEvent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example Corp.//CalDAV Client//EN
BEGIN:VEVENT
UID:keep-1@example.org
DTSTAMP:20260110T120000Z
DTSTART:20260302T090000Z
DTEND:20260302T100000Z
SUMMARY:Original title
SEQUENCE:3
X-VENDOR-TAG;X-PARAM=zulu:keep-me-intact
ATTENDEE;CN=Maja;PARTSTAT=ACCEPTED;ROLE=CHAIR:mailto:maja@example.org
BEGIN:VALARM
ACTION:DISPLAY
DESCRIPTION:Reminder
TRIGGER:-PT15M
END:VALARM
END:VEVENT
END:VCALENDAR
`

func TestPatchEventPreservesUnrelatedContent(t *testing.T) {
	patched, err := PatchEvent(preservationEvent, record.UpdateEventInput{
		Location: mo.Some("Moved to room 9"),
	})
	require.NoError(t, err)

	// The named field changed.
	assert.Contains(t, patched, "LOCATION:Moved to room 9")
	// Everything unrelated survived verbatim.
	assert.Contains(t, patched, "X-VENDOR-TAG;X-PARAM=zulu:keep-me-intact")
	assert.Contains(t, patched, "ATTENDEE;CN=Maja;PARTSTAT=ACCEPTED;ROLE=CHAIR:mailto:maja@example.org")
	assert.Contains(t, patched, "ACTION:DISPLAY")
	assert.Contains(t, patched, "TRIGGER:-PT15M")
	assert.Contains(t, patched, "SUMMARY:Original title")
	// Bookkeeping refreshed: revision counter bumped from 3.
	assert.Contains(t, patched, "SEQUENCE:4")
	assert.Contains(t, patched, "LAST-MODIFIED:")
}

func TestPatchEventEmptyInputKeepsSemantics(t *testing.T) {
	patched, err := PatchEvent(preservationEvent, record.UpdateEventInput{})
	require.NoError(t, err)

	before, ok := NewParser(testLogger()).Event(preservationEvent, "/cal/keep-1.ics", "").Get()
	require.True(t, ok)
	after, ok := NewParser(testLogger()).Event(patched, "/cal/keep-1.ics", "").Get()
	require.True(t, ok)

	// Equivalent modulo the refreshed bookkeeping properties.
	assert.Equal(t, before.UID, after.UID)
	assert.Equal(t, before.Summary, after.Summary)
	assert.Equal(t, before.Start, after.Start)
	assert.Equal(t, before.End, after.End)
	assert.Equal(t, before.Attendees, after.Attendees)
	assert.Contains(t, patched, "SEQUENCE:4")
}

func TestPatchEventSequenceDefaultsToZero(t *testing.T) {
	raw := strings.Replace(preservationEvent, "SEQUENCE:3\n", "", 1)
	patched, err := PatchEvent(raw, record.UpdateEventInput{Summary: mo.Some("New title")})
	require.NoError(t, err)
	assert.Contains(t, patched, "SEQUENCE:1", "absent counter counts as zero before incrementing")
	assert.Contains(t, patched, "SUMMARY:New title")
}

func TestPatchEventKeepsDateEncoding(t *testing.T) {
	raw := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:allday@example.org
DTSTAMP:20260110T120000Z
DTSTART;VALUE=DATE:20260301
DTEND;VALUE=DATE:20260302
SUMMARY:Holiday
END:VEVENT
END:VCALENDAR
`
	patched, err := PatchEvent(raw, record.UpdateEventInput{
		Start: mo.Some(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)),
		End:   mo.Some(time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Contains(t, patched, "DTSTART;VALUE=DATE:20260305", "date-only encoding must be kept")
	assert.Contains(t, patched, "DTEND;VALUE=DATE:20260306")
}

func TestPatchEventRejectsGarbage(t *testing.T) {
	_, err := PatchEvent("not icalendar", record.UpdateEventInput{})
	assert.Error(t, err)
}

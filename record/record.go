// Package record holds the typed value objects shared between the codec,
// the services and their callers. No behavior beyond cloning lives here.
package record

import "time"

// Attendee is one structured participant entry extracted from an ATTENDEE
// property.
type Attendee struct {
	Name   string
	Email  string
	Status string // PARTSTAT value, e.g. ACCEPTED, DECLINED, NEEDS-ACTION
	Role   string // ROLE value, e.g. REQ-PARTICIPANT
	RSVP   bool
}

// Event is one calendar object as read from the server. Raw always carries
// the complete iCalendar text the server returned; updates are patched onto
// a freshly fetched Raw, never rebuilt from the typed fields.
type Event struct {
	UID             string
	Summary         string
	Description     string
	Location        string
	Start           time.Time
	End             time.Time
	Attendees       []string // display strings, parallel to AttendeeDetails
	AttendeeDetails []Attendee
	TimeZone        string // IANA label, empty when the event is UTC/floating
	Status          string
	IsRecurring     bool
	RecurrenceRule  string // raw RRULE value, empty unless IsRecurring
	URL             string // collection-relative object URL
	ETag            string // empty on a record that was never stored
	Raw             string
}

// Clone returns a deep copy; the cache hands out clones so callers can
// mutate results freely.
func (e Event) Clone() Event {
	dup := e
	dup.Attendees = append([]string(nil), e.Attendees...)
	dup.AttendeeDetails = append([]Attendee(nil), e.AttendeeDetails...)
	return dup
}

// ContactName is the structured name of a contact. Any part may be empty;
// an entirely unnamed contact is valid.
type ContactName struct {
	Formatted string
	Given     string
	Family    string
}

// Contact is one address book object as read from the server. The same Raw
// fidelity rule as Event applies.
type Contact struct {
	UID          string
	Name         ContactName
	Emails       []string
	Phones       []string
	Organization string
	Version      string // detected vCard version, "3.0" or "4.0"
	URL          string
	ETag         string
	Raw          string
}

func (c Contact) Clone() Contact {
	dup := c
	dup.Emails = append([]string(nil), c.Emails...)
	dup.Phones = append([]string(nil), c.Phones...)
	return dup
}

// WriteResult is the minimal outcome of a successful create or update.
type WriteResult struct {
	URL  string
	ETag string
}

package record

import (
	"time"

	"github.com/samber/mo"
)

// CreateEventInput describes a brand-new event. Summary, Start and End are
// required; everything else is attached only when present.
type CreateEventInput struct {
	Summary        string
	Start          time.Time
	End            time.Time
	AllDay         bool // encode Start/End as date-only values
	Description    mo.Option[string]
	Location       mo.Option[string]
	Status         mo.Option[string]
	TimeZone       mo.Option[string] // IANA label for Start/End encoding
	RecurrenceRule mo.Option[string]
	Attendees      []Attendee
}

// UpdateEventInput expresses intent to change. A present field replaces the
// corresponding property; an absent field leaves it untouched, so a caller
// can never wipe a property by omission.
type UpdateEventInput struct {
	Summary        mo.Option[string]
	Description    mo.Option[string]
	Location       mo.Option[string]
	Status         mo.Option[string]
	Start          mo.Option[time.Time]
	End            mo.Option[time.Time]
	RecurrenceRule mo.Option[string]
	Attendees      mo.Option[[]Attendee]
}

// IsZero reports whether the input names no properties at all.
func (in UpdateEventInput) IsZero() bool {
	return in.Summary.IsAbsent() &&
		in.Description.IsAbsent() &&
		in.Location.IsAbsent() &&
		in.Status.IsAbsent() &&
		in.Start.IsAbsent() &&
		in.End.IsAbsent() &&
		in.RecurrenceRule.IsAbsent() &&
		in.Attendees.IsAbsent()
}

// CreateContactInput describes a brand-new contact. Only the formatted name
// is required.
type CreateContactInput struct {
	FormattedName string
	Given         mo.Option[string]
	Family        mo.Option[string]
	Organization  mo.Option[string]
	Emails        []string
	Phones        []string
}

// UpdateContactInput mirrors UpdateEventInput for contacts.
type UpdateContactInput struct {
	FormattedName mo.Option[string]
	Given         mo.Option[string]
	Family        mo.Option[string]
	Organization  mo.Option[string]
	Emails        mo.Option[[]string]
	Phones        mo.Option[[]string]
}

package recurrence

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

type dateInfo struct {
	rdates  []time.Time
	exdates []time.Time
}

// extractDates pulls RDATE and EXDATE lists out of a master's raw text. A
// master without raw text (or with none of those properties) simply has no
// extra or excluded dates.
func extractDates(raw string) dateInfo {
	var info dateInfo
	if raw == "" {
		return info
	}
	cal, err := ical.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		return info
	}
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if child.Props.Get(ical.PropRecurrenceID) != nil {
			continue
		}
		for _, prop := range child.Props.Values(ical.PropRecurrenceDates) {
			info.rdates = append(info.rdates, parseDateList(prop)...)
		}
		for _, prop := range child.Props.Values(ical.PropExceptionDates) {
			info.exdates = append(info.exdates, parseDateList(prop)...)
		}
		break
	}
	return info
}

// parseDateList parses a comma separated RDATE/EXDATE value. Date-only
// entries are stored as midnight UTC.
func parseDateList(prop ical.Prop) []time.Time {
	dateOnly := strings.EqualFold(prop.Params.Get(ical.ParamValue), string(ical.ValueDate))

	var out []time.Time
	for _, part := range strings.Split(prop.Value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var t time.Time
		var err error
		if dateOnly || len(part) == 8 {
			t, err = time.Parse("20060102", part)
		} else {
			t, err = time.Parse("20060102T150405Z", part)
			if err != nil {
				t, err = time.Parse("20060102T150405", part)
			}
		}
		if err == nil {
			out = append(out, t)
		}
	}
	return out
}

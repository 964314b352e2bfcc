package codec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
)

// TimezoneRegistry maps TZID labels to resolved locations. A registry is
// built from the embedded VTIMEZONE definitions of one calendar object and
// must be populated before any date/time property of that object is read,
// otherwise values carrying a non-IANA TZID would silently resolve with the
// wrong UTC offset across DST boundaries.
type TimezoneRegistry struct {
	locations map[string]*time.Location
}

func NewTimezoneRegistry() *TimezoneRegistry {
	return &TimezoneRegistry{locations: make(map[string]*time.Location)}
}

// AddCalendar registers every VTIMEZONE component embedded in cal.
func (r *TimezoneRegistry) AddCalendar(cal *ical.Calendar) {
	for _, child := range cal.Children {
		if child.Name == ical.CompTimezone {
			r.addTimezone(child)
		}
	}
}

func (r *TimezoneRegistry) addTimezone(comp *ical.Component) {
	tzid, err := comp.Props.Text(ical.PropTimezoneID)
	if err != nil || tzid == "" {
		return
	}

	// An IANA TZID resolves through the system database and keeps full DST
	// transition data.
	if loc, err := time.LoadLocation(tzid); err == nil {
		r.locations[tzid] = loc
		return
	}

	// Otherwise fall back to a fixed offset derived from the STANDARD
	// sub-component's TZOFFSETTO.
	for _, sub := range comp.Children {
		if sub.Name != ical.CompTimezoneStandard {
			continue
		}
		prop := sub.Props.Get(ical.PropTimezoneOffsetTo)
		if prop == nil {
			continue
		}
		if secs, err := parseUTCOffset(prop.Value); err == nil {
			r.locations[tzid] = time.FixedZone(tzid, secs)
			return
		}
	}
}

// Location resolves a TZID, trying registered definitions first and the
// system database second. Unknown labels resolve to UTC.
func (r *TimezoneRegistry) Location(tzid string) *time.Location {
	if tzid == "" {
		return time.UTC
	}
	if loc, ok := r.locations[tzid]; ok {
		return loc
	}
	if loc, err := time.LoadLocation(tzid); err == nil {
		return loc
	}
	return time.UTC
}

// parseUTCOffset parses an iCalendar UTC offset such as "+0100", "-0530" or
// "+013045" into seconds east of UTC.
func parseUTCOffset(v string) (int, error) {
	if len(v) < 5 {
		return 0, fmt.Errorf("utc offset too short: %q", v)
	}
	sign := 1
	switch v[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("utc offset missing sign: %q", v)
	}

	hours, err := strconv.Atoi(v[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid utc offset %q: %w", v, err)
	}
	minutes, err := strconv.Atoi(v[3:5])
	if err != nil {
		return 0, fmt.Errorf("invalid utc offset %q: %w", v, err)
	}
	seconds := 0
	if len(v) >= 7 {
		if seconds, err = strconv.Atoi(v[5:7]); err != nil {
			return 0, fmt.Errorf("invalid utc offset %q: %w", v, err)
		}
	}

	return sign * (hours*3600 + minutes*60 + seconds), nil
}

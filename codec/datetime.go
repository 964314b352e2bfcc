package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

const (
	dateFormat        = "20060102"
	dateTimeFormat    = "20060102T150405"
	dateTimeUTCFormat = "20060102T150405Z"
)

// resolveDateTime reads a DATE or DATE-TIME property value through the
// timezone registry. dateOnly reports whether the value carried no time part.
func resolveDateTime(prop *ical.Prop, reg *TimezoneRegistry) (t time.Time, dateOnly bool, err error) {
	value := strings.TrimSpace(prop.Value)
	tzid := prop.Params.Get(ical.ParamTimezoneID)

	if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) || len(value) == len(dateFormat) {
		t, err = time.ParseInLocation(dateFormat, value, reg.Location(tzid))
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date value %q: %w", value, err)
		}
		return t, true, nil
	}

	if strings.HasSuffix(value, "Z") {
		t, err = time.Parse(dateTimeUTCFormat, value)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date-time value %q: %w", value, err)
		}
		return t, false, nil
	}

	t, err = time.ParseInLocation(dateTimeFormat, value, reg.Location(tzid))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date-time value %q: %w", value, err)
	}
	return t, false, nil
}

// setDateTimeLike writes t into props under name, reusing the value type and
// TZID of template so that the encoded form stays compatible with what the
// object already carries. A nil template encodes as UTC date-time.
func setDateTimeLike(props ical.Props, name string, t time.Time, template *ical.Prop, reg *TimezoneRegistry) {
	prop := ical.NewProp(name)
	if template == nil {
		prop.Value = t.UTC().Format(dateTimeUTCFormat)
		props.Set(prop)
		return
	}

	tzid := template.Params.Get(ical.ParamTimezoneID)
	switch {
	case template.Params.Get(ical.ParamValue) == string(ical.ValueDate) || len(template.Value) == len(dateFormat):
		prop.Params.Set(ical.ParamValue, string(ical.ValueDate))
		if tzid != "" {
			prop.Params.Set(ical.ParamTimezoneID, tzid)
			t = t.In(reg.Location(tzid))
		}
		prop.Value = t.Format(dateFormat)
	case tzid != "":
		prop.Params.Set(ical.ParamTimezoneID, tzid)
		prop.Value = t.In(reg.Location(tzid)).Format(dateTimeFormat)
	default:
		prop.Value = t.UTC().Format(dateTimeUTCFormat)
	}
	props.Set(prop)
}

// setUTCDateTime writes a plain UTC date-time property.
func setUTCDateTime(props ical.Props, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.UTC().Format(dateTimeUTCFormat)
	props.Set(prop)
}

// setDate writes a date-only property.
func setDate(props ical.Props, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Params.Set(ical.ParamValue, string(ical.ValueDate))
	prop.Value = t.Format(dateFormat)
	props.Set(prop)
}

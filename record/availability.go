package record

import "time"

// PeriodType classifies a busy interval.
type PeriodType string

const (
	PeriodBusy        PeriodType = "busy"
	PeriodTentative   PeriodType = "tentative"
	PeriodUnavailable PeriodType = "unavailable"
)

// AvailabilityPeriod is one busy interval inside a queried range.
type AvailabilityPeriod struct {
	Start time.Time
	End   time.Time
	Type  PeriodType
}

// AvailabilityResult echoes the query bounds alongside the busy periods
// found inside them. Produced by the calendar service, never cached.
type AvailabilityResult struct {
	From    time.Time
	To      time.Time
	Periods []AvailabilityPeriod
}

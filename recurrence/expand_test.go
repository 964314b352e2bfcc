package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davsync/record"
)

func dailyMaster(start time.Time) record.Event {
	return record.Event{
		UID:            "daily@example.org",
		Start:          start,
		End:            start.Add(time.Hour),
		IsRecurring:    true,
		RecurrenceRule: "FREQ=DAILY",
	}
}

func TestExpandBoundedByBudget(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	occs, err := Expand(dailyMaster(start), Window{
		Start:          start,
		End:            start.AddDate(10, 0, 0),
		MaxOccurrences: 5,
	})
	require.NoError(t, err)
	require.Len(t, occs, 5)
	assert.Equal(t, start, occs[0])
	assert.Equal(t, start.AddDate(0, 0, 4), occs[4])
}

func TestExpandBoundedByWindowEnd(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	occs, err := Expand(dailyMaster(start), Window{
		Start:          start,
		End:            start.AddDate(0, 0, 2),
		MaxOccurrences: 100,
	})
	require.NoError(t, err)
	assert.Len(t, occs, 3)
}

func TestExpandPreWindowInstantsKeepBudget(t *testing.T) {
	// A series running daily for a year before the window opens. If skipped
	// instants consumed the budget, the window would come back empty.
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	windowStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	occs, err := Expand(dailyMaster(start), Window{
		Start:          windowStart,
		End:            windowStart.AddDate(0, 0, 10),
		MaxOccurrences: 100,
	})
	require.NoError(t, err)
	require.Len(t, occs, 10)
	for _, occ := range occs {
		assert.False(t, occ.Before(windowStart))
	}
	assert.Equal(t, time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), occs[0])
}

func TestExpandOrdered(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	occs, err := Expand(dailyMaster(start), Window{
		Start:          start,
		End:            start.AddDate(0, 1, 0),
		MaxOccurrences: 100,
	})
	require.NoError(t, err)
	for i := 1; i < len(occs); i++ {
		assert.True(t, occs[i-1].Before(occs[i]))
	}
}

func TestExpandNonRecurring(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := record.Event{UID: "single@example.org", Start: start, End: start.Add(time.Hour)}

	occs, err := Expand(event, Window{Start: start.AddDate(0, 0, -1), End: start.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{start}, occs)

	// Outside the window it expands to nothing.
	occs, err = Expand(event, Window{Start: start.AddDate(0, 1, 0), End: start.AddDate(0, 2, 0)})
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestExpandNoStartInstant(t *testing.T) {
	occs, err := Expand(record.Event{UID: "broken@example.org", IsRecurring: true, RecurrenceRule: "FREQ=DAILY"}, Window{})
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestExpandDefaults(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	occs, err := Expand(dailyMaster(start), Window{})
	require.NoError(t, err)
	// A daily rule over the default one-year span hits the default budget
	// first.
	assert.Len(t, occs, DefaultMaxOccurrences)
}

func TestExpandInvalidRule(t *testing.T) {
	master := dailyMaster(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	master.RecurrenceRule = "FREQ=SOMETIMES"

	_, err := Expand(master, Window{})
	assert.Error(t, err)
}

func TestExpandHonorsExcludedDates(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	master := dailyMaster(start)
	master.Raw = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:daily@example.org
DTSTART:20260101T090000Z
DTEND:20260101T100000Z
RRULE:FREQ=DAILY
EXDATE:20260103T090000Z
EXDATE;VALUE=DATE:20260105
END:VEVENT
END:VCALENDAR
`

	occs, err := Expand(master, Window{
		Start:          start,
		End:            start.AddDate(0, 0, 6),
		MaxOccurrences: 100,
	})
	require.NoError(t, err)

	excludedExact := time.Date(2026, 1, 3, 9, 0, 0, 0, time.UTC)
	excludedDay := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	assert.NotContains(t, occs, excludedExact)
	assert.NotContains(t, occs, excludedDay)
	assert.Len(t, occs, 5)
}

func TestExpandMergesAdditionalDates(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	master := record.Event{
		UID:            "weekly@example.org",
		Start:          start,
		End:            start.Add(time.Hour),
		IsRecurring:    true,
		RecurrenceRule: "FREQ=WEEKLY",
		Raw: `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:weekly@example.org
DTSTART:20260105T090000Z
DTEND:20260105T100000Z
RRULE:FREQ=WEEKLY
RDATE:20260107T140000Z
END:VEVENT
END:VCALENDAR
`,
	}

	occs, err := Expand(master, Window{
		Start:          start,
		End:            start.AddDate(0, 0, 14),
		MaxOccurrences: 100,
	})
	require.NoError(t, err)

	extra := time.Date(2026, 1, 7, 14, 0, 0, 0, time.UTC)
	assert.Contains(t, occs, extra)
	// The extra instant sorts into place between the rule's occurrences.
	assert.Equal(t, []time.Time{start, extra, start.AddDate(0, 0, 7), start.AddDate(0, 0, 14)}, occs)
}

package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"davsync/record"
	"davsync/recurrence"
)

// Availability reports the busy periods inside [from, to], expanding
// recurring series into their concrete occurrences. Cancelled events do not
// block time.
func (s *Service) Availability(from, to time.Time) (record.AvailabilityResult, error) {
	result := record.AvailabilityResult{From: from, To: to}
	if !to.After(from) {
		return result, fmt.Errorf("availability range end must be after start")
	}

	events, err := s.FetchAll("")
	if err != nil {
		return result, err
	}

	for _, ev := range events {
		ptype, blocking := periodType(ev.Status)
		if !blocking {
			continue
		}
		if ev.Start.IsZero() {
			continue
		}
		duration := ev.End.Sub(ev.Start)
		if duration < 0 {
			duration = 0
		}

		if ev.IsRecurring {
			occurrences, err := recurrence.Expand(ev, recurrence.Window{Start: from.Add(-duration), End: to})
			if err != nil {
				s.logger.Warn("skipping unexpandable recurring event", "uid", ev.UID, "error", err)
				continue
			}
			for _, occ := range occurrences {
				appendOverlap(&result, occ, occ.Add(duration), ptype)
			}
			continue
		}

		appendOverlap(&result, ev.Start, ev.End, ptype)
	}

	sort.Slice(result.Periods, func(i, j int) bool {
		return result.Periods[i].Start.Before(result.Periods[j].Start)
	})
	return result, nil
}

// appendOverlap records the period if it intersects the queried range.
func appendOverlap(result *record.AvailabilityResult, start, end time.Time, ptype record.PeriodType) {
	if !start.Before(result.To) || !end.After(result.From) {
		return
	}
	result.Periods = append(result.Periods, record.AvailabilityPeriod{
		Start: start,
		End:   end,
		Type:  ptype,
	})
}

func periodType(status string) (record.PeriodType, bool) {
	switch strings.ToUpper(status) {
	case "CANCELLED":
		return "", false
	case "TENTATIVE":
		return record.PeriodTentative, true
	case "UNAVAILABLE", "BUSY-UNAVAILABLE":
		return record.PeriodUnavailable, true
	default:
		return record.PeriodBusy, true
	}
}

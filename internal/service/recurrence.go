package service

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// calendarDay truncates t to midnight UTC of its calendar date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpandRecurrence returns the dates in [start, end] whose weekday is in daysOfWeek (0 = Sunday),
// ascending and at midnight UTC. Values outside 0..6 are ignored.
func ExpandRecurrence(daysOfWeek []int, start, end time.Time) []time.Time {
	start, end = calendarDay(start), calendarDay(end)
	if start.After(end) {
		return []time.Time{}
	}

	seen := make(map[int]struct{}, len(daysOfWeek))
	byDay := make([]rrule.Weekday, 0, len(daysOfWeek))
	for _, d := range daysOfWeek {
		if d < 0 || d > 6 {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		byDay = append(byDay, rruleWeekdays[d])
	}
	if len(byDay) == 0 {
		return []time.Time{}
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Until:     end,
		Byweekday: byDay,
	})
	if err != nil {
		return []time.Time{}
	}

	dates := rule.All()
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		out = append(out, calendarDay(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is one VEVENT of an iCalendar feed.
type CalendarEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
}

// RenderICS publishes the events as an iCalendar document.
func RenderICS(name string, events []CalendarEvent, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//NexSpace//Shift Roster//EN")
	if name != "" {
		cal.SetXWRCalName(name)
	}
	for _, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("calendar event %q has no uid", ev.Summary)
		}
		if ev.End.Before(ev.Start) {
			return nil, fmt.Errorf("calendar event %s ends before it starts", ev.UID)
		}
		event := cal.AddEvent(ev.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(ev.Start)
		event.SetEndAt(ev.End)
		event.SetSummary(ev.Summary)
		if ev.Location != "" {
			event.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
	}
	return []byte(cal.Serialize()), nil
}

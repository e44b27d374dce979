package timeline

import "time"

// Category classifies a renderable calendar event.
type Category string

const (
	CategoryAppointment Category = "APPOINTMENT"
	CategoryNonWorking  Category = "NON_WORKING"
)

// Appointment is a booked visit as the compositor sees it: opaque, immutable,
// placed purely by its start and end instants.
type Appointment struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

// Event is a render-ready calendar entry. Events may overlap; the compositor
// never rejects or reshapes them.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Category Category  `json:"category"`
}

// ComposeDay merges the date's non-working blocks with the appointments whose
// start falls on the date. Bucketing is by year/month/day of the appointment
// start, so a visit spanning midnight is attributed to its start date only.
func ComposeDay(date time.Time, intervals []ResolvedInterval, appointments []Appointment) []Event {
	events := make([]Event, 0, len(intervals)+len(appointments))

	for _, iv := range intervals {
		if iv.Kind != KindNonWorking {
			continue
		}
		events = append(events, Event{
			ID:       iv.Source,
			Title:    "Unavailable",
			Start:    clockAt(date, iv.Start),
			End:      clockAt(date, iv.End),
			Category: CategoryNonWorking,
		})
	}

	for _, a := range appointments {
		if !SameDate(a.Start, date) {
			continue
		}
		events = append(events, Event{
			ID:       a.ID,
			Title:    a.Title,
			Start:    a.Start,
			End:      a.End,
			Category: CategoryAppointment,
		})
	}

	return events
}

// clockAt anchors a time of day on the given date. Minute 1440 maps to the
// first instant of the next day, which renders at the bottom edge of the
// column.
func clockAt(date time.Time, m Minute) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(m) * time.Minute)
}

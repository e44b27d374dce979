package timeline

import "time"

const dateLayout = "2006-01-02"

// Options tunes the rendered geometry of day and week views.
type Options struct {
	HourHeight     float64
	MinEventHeight float64
	Scroll         AutoScroll
}

// DefaultOptions returns the standard rendering configuration.
func DefaultOptions() Options {
	return Options{
		HourHeight:     DefaultHourHeight,
		MinEventHeight: DefaultMinEventHeight,
		Scroll:         NewAutoScroll(),
	}
}

func (o Options) normalized() Options {
	if o.HourHeight <= 0 {
		o.HourHeight = DefaultHourHeight
	}
	if o.MinEventHeight <= 0 {
		o.MinEventHeight = DefaultMinEventHeight
	}
	if o.Scroll.Offset <= 0 {
		o.Scroll.Offset = DefaultScrollOffset
	}
	return o
}

// EventBox is an event with its rendered geometry. Lane and LaneCount place
// overlapping appointments side by side; non-working blocks always span the
// full column width.
type EventBox struct {
	Event
	Top       float64 `json:"top"`
	Height    float64 `json:"height"`
	Lane      int     `json:"lane"`
	LaneCount int     `json:"lane_count"`
}

// NowLine marks the current time on a day column.
type NowLine struct {
	Visible bool    `json:"visible"`
	Top     float64 `json:"top"`
}

// DayLayout is the positioned single-day timeline: a fixed grid of hour rows
// with event boxes and the now line overlaid.
type DayLayout struct {
	Date        string             `json:"date"`
	HourHeight  float64            `json:"hour_height"`
	HourRows    int                `json:"hour_rows"`
	Intervals   []ResolvedInterval `json:"intervals"`
	Events      []EventBox         `json:"events"`
	Now         NowLine            `json:"now"`
	ScrollTop   float64            `json:"scroll_top"`
	ScrollApply bool               `json:"scroll_apply"`
}

// WeekLayout is seven consecutive day columns sharing one vertical axis. Only
// the column matching today carries a visible now line; the shared scroll
// target likewise derives from that column.
type WeekLayout struct {
	Start       string      `json:"start"`
	HourHeight  float64     `json:"hour_height"`
	Days        []DayLayout `json:"days"`
	ScrollTop   float64     `json:"scroll_top"`
	ScrollApply bool        `json:"scroll_apply"`
}

// BuildDay lays out one date: resolved availability blocks and the date's
// appointments become positioned boxes on a 24-row hour grid.
func BuildDay(date time.Time, intervals []ResolvedInterval, appointments []Appointment, now time.Time, opts Options) DayLayout {
	opts = opts.normalized()

	events := ComposeDay(date, intervals, appointments)
	boxes := make([]EventBox, len(events))

	appointmentIdx := make([]int, 0, len(events))
	appointmentEvents := make([]Event, 0, len(events))
	for i, e := range events {
		if e.Category == CategoryAppointment {
			appointmentIdx = append(appointmentIdx, i)
			appointmentEvents = append(appointmentEvents, e)
		}
	}
	lanes, counts := assignLanes(appointmentEvents)

	for i, e := range events {
		top := dayHourFraction(date, e.Start) * opts.HourHeight
		height := (dayHourFraction(date, e.End) - dayHourFraction(date, e.Start)) * opts.HourHeight
		if height < opts.MinEventHeight {
			height = opts.MinEventHeight
		}
		boxes[i] = EventBox{Event: e, Top: top, Height: height, Lane: 0, LaneCount: 1}
	}
	for j, i := range appointmentIdx {
		boxes[i].Lane = lanes[j]
		boxes[i].LaneCount = counts[j]
	}

	isToday := SameDate(date, now)
	target, apply := opts.Scroll.Target(date, now, opts.HourHeight)

	return DayLayout{
		Date:        date.Format(dateLayout),
		HourHeight:  opts.HourHeight,
		HourRows:    HoursInDay,
		Intervals:   intervals,
		Events:      boxes,
		Now:         NowLine{Visible: isToday, Top: PixelTop(now, opts.HourHeight)},
		ScrollTop:   target,
		ScrollApply: apply,
	}
}

// BuildWeek repeats the day pipeline across 7 consecutive dates starting at
// start. Each column resolves its own availability through the supplied
// resolve callback, since weekly rules differ per weekday.
func BuildWeek(start time.Time, resolve func(time.Time) []ResolvedInterval, appointments []Appointment, now time.Time, opts Options) WeekLayout {
	opts = opts.normalized()

	week := WeekLayout{
		Start:      start.Format(dateLayout),
		HourHeight: opts.HourHeight,
		Days:       make([]DayLayout, 7),
	}
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i)
		day := BuildDay(date, resolve(date), appointments, now, opts)
		if day.ScrollApply {
			week.ScrollTop = day.ScrollTop
			week.ScrollApply = true
		}
		week.Days[i] = day
	}
	return week
}

// dayHourFraction maps an instant to its hour fraction on the given date's
// column. Instants past the end of the date clamp to the bottom edge, so an
// appointment spanning midnight fills its start date's column to 24:00.
func dayHourFraction(date, t time.Time) float64 {
	if SameDate(date, t) {
		return HourFraction(t)
	}
	if t.Before(clockAt(date, 0)) {
		return 0
	}
	return HoursInDay
}

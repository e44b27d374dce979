package timeline

import (
	"encoding/json"
	"fmt"
	"time"
)

// Rendering defaults for the calendar timeline.
const (
	HoursInDay   = 24
	MinutesInDay = HoursInDay * 60

	DefaultHourHeight     = 72.0
	DefaultMinEventHeight = 32.0
	DefaultScrollOffset   = 200.0
)

// Minute is a wall-clock time of day expressed as minutes since midnight.
// The valid range is [0, 1440]; 1440 stands for the exclusive end of day.
type Minute int

// ParseClock parses "HH:MM" or "HH:MM:SS" into a Minute. "24:00" is accepted
// as the end-of-day boundary.
func ParseClock(s string) (Minute, error) {
	var h, m, sec int
	switch n, _ := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); n {
	case 2, 3:
	default:
		return 0, fmt.Errorf("parse clock %q: want HH:MM or HH:MM:SS", s)
	}
	if h == HoursInDay && m == 0 && sec == 0 {
		return MinutesInDay, nil
	}
	if h < 0 || h >= HoursInDay || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return Minute(h*60 + m), nil
}

// Clock formats the minute back into "HH:MM".
func (m Minute) Clock() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Hours returns the minute as a fractional hour count.
func (m Minute) Hours() float64 {
	return float64(m) / 60
}

// MarshalJSON encodes the minute as an "HH:MM" string.
func (m Minute) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Clock())
}

// UnmarshalJSON decodes an "HH:MM" string.
func (m *Minute) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// HourFraction returns the time of day as a real number of hours since
// midnight, e.g. 14:30 becomes 14.5. The result lies in [0, 24).
func HourFraction(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// PixelTop maps an instant to its vertical pixel position on a day column.
func PixelTop(t time.Time, hourHeight float64) float64 {
	return HourFraction(t) * hourHeight
}

// ClockPixelTop maps a time of day to its vertical pixel position.
func ClockPixelTop(m Minute, hourHeight float64) float64 {
	return m.Hours() * hourHeight
}

// PixelHeight returns the rendered height of a span, clamped to minHeight so
// that even degenerate (zero or negative duration) events stay visible and
// clickable. The clamp changes only the rendered box, never the event's time.
func PixelHeight(start, end time.Time, hourHeight, minHeight float64) float64 {
	h := (HourFraction(end) - HourFraction(start)) * hourHeight
	if h < minHeight {
		return minHeight
	}
	return h
}

// ClockPixelHeight is PixelHeight over times of day.
func ClockPixelHeight(start, end Minute, hourHeight, minHeight float64) float64 {
	h := (end.Hours() - start.Hours()) * hourHeight
	if h < minHeight {
		return minHeight
	}
	return h
}

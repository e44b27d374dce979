package timeline

import "time"

// AutoScroll computes the scroll offset that keeps the current time in view.
// It is a pure calculation: callers apply the returned target to their scroll
// container, and calling it again with the same inputs yields the same target.
type AutoScroll struct {
	Offset  float64
	Enabled bool
}

// NewAutoScroll returns the default controller configuration.
func NewAutoScroll() AutoScroll {
	return AutoScroll{Offset: DefaultScrollOffset, Enabled: true}
}

// Target returns the scroll position for the displayed date. The second
// return value is false when the position must be left untouched: the
// controller only acts when it is enabled and the displayed date is today.
// Targets never go negative; near midnight the viewport stays at the top.
func (a AutoScroll) Target(date, now time.Time, hourHeight float64) (float64, bool) {
	if !a.Enabled || !SameDate(date, now) {
		return 0, false
	}
	target := PixelTop(now, hourHeight) - a.Offset
	if target < 0 {
		target = 0
	}
	return target, true
}

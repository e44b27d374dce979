package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutoScrollTargetOnToday(t *testing.T) {
	scroll := NewAutoScroll()
	now := monday.Add(14*time.Hour + 30*time.Minute)

	target, apply := scroll.Target(monday, now, 72)
	assert.True(t, apply)
	assert.InDelta(t, 14.5*72-200, target, 1e-9)
}

func TestAutoScrollNearMidnightClampsToZero(t *testing.T) {
	scroll := NewAutoScroll()
	now := monday.Add(30 * time.Minute)

	target, apply := scroll.Target(monday, now, 72)
	assert.True(t, apply)
	assert.Equal(t, 0.0, target, "targets never go negative")
}

func TestAutoScrollLeavesOtherDatesAlone(t *testing.T) {
	scroll := NewAutoScroll()
	now := monday.Add(14 * time.Hour)

	_, apply := scroll.Target(monday.AddDate(0, 0, 1), now, 72)
	assert.False(t, apply)
}

func TestAutoScrollDisabled(t *testing.T) {
	scroll := AutoScroll{Offset: DefaultScrollOffset, Enabled: false}
	now := monday.Add(14 * time.Hour)

	_, apply := scroll.Target(monday, now, 72)
	assert.False(t, apply)
}

func TestAutoScrollIdempotent(t *testing.T) {
	scroll := NewAutoScroll()
	now := monday.Add(10 * time.Hour)

	first, _ := scroll.Target(monday, now, 72)
	second, _ := scroll.Target(monday, now, 72)
	assert.Equal(t, first, second)
}

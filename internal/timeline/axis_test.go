package timeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    Minute
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:30", want: 510},
		{in: "23:59", want: 1439},
		{in: "24:00", want: 1440},
		{in: "09:15:00", want: 555},
		{in: "25:00", wantErr: true},
		{in: "12:61", wantErr: true},
		{in: "noon", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestMinuteClockRoundTrip(t *testing.T) {
	m, err := ParseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30", m.Clock())
	assert.InDelta(t, 14.5, m.Hours(), 1e-9)
}

func TestMinuteJSON(t *testing.T) {
	raw, err := json.Marshal(Minute(510))
	require.NoError(t, err)
	assert.Equal(t, `"08:30"`, string(raw))

	var m Minute
	require.NoError(t, json.Unmarshal([]byte(`"17:45"`), &m))
	assert.Equal(t, Minute(17*60+45), m)
}

func TestHourFraction(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0.0, HourFraction(day))
	assert.InDelta(t, 14.5, HourFraction(day.Add(14*time.Hour+30*time.Minute)), 1e-9)
	assert.InDelta(t, 9.166667, HourFraction(day.Add(9*time.Hour+10*time.Minute)), 1e-5)
}

func TestPixelTopMonotonicAcrossDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	const hourHeight = 72.0

	assert.Equal(t, 0.0, PixelTop(day, hourHeight))

	prev := -1.0
	for m := 0; m < MinutesInDay; m += 7 {
		top := PixelTop(day.Add(time.Duration(m)*time.Minute), hourHeight)
		assert.Greater(t, top, prev)
		prev = top
	}

	lastMinute := PixelTop(day.Add(23*time.Hour+59*time.Minute), hourHeight)
	assert.InDelta(t, HoursInDay*hourHeight, lastMinute, hourHeight/60+1e-9)
}

func TestPixelHeightClampsShortEvents(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// 10-minute visit at 72px/hour is 12px of raw height.
	short := PixelHeight(day, day.Add(10*time.Minute), 72, 32)
	assert.Equal(t, 32.0, short)

	hour := PixelHeight(day, day.Add(time.Hour), 72, 32)
	assert.Equal(t, 72.0, hour)
}

func TestPixelHeightNeverBelowMinimum(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	zero := PixelHeight(day, day, 72, 32)
	assert.Equal(t, 32.0, zero)

	negative := PixelHeight(day, day.Add(-time.Hour), 72, 32)
	assert.Equal(t, 32.0, negative)
}

func TestClockPixelHelpers(t *testing.T) {
	assert.InDelta(t, 1044.0, ClockPixelTop(Minute(14*60+30), 72), 1e-9)
	assert.Equal(t, 32.0, ClockPixelHeight(540, 550, 72, 32))
	assert.InDelta(t, 648.0, ClockPixelHeight(480, 1020, 72, 32), 1e-9)
}

package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeDayNonWorkingBlocks(t *testing.T) {
	intervals := []ResolvedInterval{
		{Start: 0, End: 480, Kind: KindNonWorking},
		{Start: 480, End: 1020, Kind: KindWorking, Source: "rule:r1"},
		{Start: 1020, End: 1440, Kind: KindNonWorking},
	}

	events := ComposeDay(monday, intervals, nil)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, CategoryNonWorking, first.Category)
	assert.Equal(t, monday, first.Start)
	assert.Equal(t, monday.Add(8*time.Hour), first.End)

	second := events[1]
	assert.Equal(t, monday.Add(17*time.Hour), second.Start)
	assert.Equal(t, monday.AddDate(0, 0, 1), second.End)
}

func TestComposeDayAppointmentsBucketedByStartDate(t *testing.T) {
	appointments := []Appointment{
		{ID: "a1", Title: "Checkup", Start: monday.Add(9 * time.Hour), End: monday.Add(9*time.Hour + 30*time.Minute)},
		{ID: "a2", Title: "Tuesday visit", Start: monday.AddDate(0, 0, 1).Add(10 * time.Hour), End: monday.AddDate(0, 0, 1).Add(11 * time.Hour)},
	}

	events := ComposeDay(monday, nil, appointments)
	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].ID)
	assert.Equal(t, CategoryAppointment, events[0].Category)
}

func TestComposeDayMidnightSpanAttributedToStartDate(t *testing.T) {
	late := Appointment{
		ID:    "a1",
		Title: "Late consult",
		Start: monday.Add(23 * time.Hour),
		End:   monday.Add(25 * time.Hour), // ends 01:00 next day
	}

	mondayEvents := ComposeDay(monday, nil, []Appointment{late})
	require.Len(t, mondayEvents, 1)

	tuesdayEvents := ComposeDay(monday.AddDate(0, 0, 1), nil, []Appointment{late})
	assert.Empty(t, tuesdayEvents)
}

func TestComposeDayAppointmentMayCoexistWithNonWorkingBlock(t *testing.T) {
	intervals := []ResolvedInterval{
		{Start: 0, End: 1440, Kind: KindNonWorking, Source: "exception:x1"},
	}
	appointments := []Appointment{
		{ID: "a1", Title: "Emergency", Start: monday.Add(10 * time.Hour), End: monday.Add(11 * time.Hour)},
	}

	events := ComposeDay(monday, intervals, appointments)
	require.Len(t, events, 2)
	assert.Equal(t, CategoryNonWorking, events[0].Category)
	assert.Equal(t, CategoryAppointment, events[1].Category)
}

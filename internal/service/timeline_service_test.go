package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/timeline"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/config"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
)

type mockTimelineScheduleRepo struct {
	schedules map[string]models.OfficeSchedule
	timeslots map[string][]models.WeeklyTimeslotRule
}

func (m *mockTimelineScheduleRepo) FindByID(ctx context.Context, id string) (*models.OfficeSchedule, error) {
	schedule, ok := m.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &schedule, nil
}

func (m *mockTimelineScheduleRepo) FindByPractitioner(ctx context.Context, practitionerID string) (*models.OfficeSchedule, error) {
	for _, schedule := range m.schedules {
		if schedule.PractitionerID == practitionerID {
			s := schedule
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimelineScheduleRepo) ListTimeslots(ctx context.Context, scheduleID string) ([]models.WeeklyTimeslotRule, error) {
	return m.timeslots[scheduleID], nil
}

func (m *mockTimelineScheduleRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range m.schedules {
		ids = append(ids, id)
	}
	return ids, nil
}

type mockTimelineExceptionRepo struct {
	exceptions map[string][]models.ScheduleException
}

func (m *mockTimelineExceptionRepo) ListByDateRange(ctx context.Context, scheduleID string, from, to time.Time) ([]models.ScheduleException, error) {
	var result []models.ScheduleException
	for _, ex := range m.exceptions[scheduleID] {
		if ex.ExceptionDate.Before(from) || ex.ExceptionDate.After(to) {
			continue
		}
		result = append(result, ex)
	}
	return result, nil
}

type mockTimelineAppointmentRepo struct {
	appointments []models.Appointment
}

func (m *mockTimelineAppointmentRepo) ListBetween(ctx context.Context, practitionerID string, from, to time.Time) ([]models.Appointment, error) {
	var result []models.Appointment
	for _, a := range m.appointments {
		if a.PractitionerID != practitionerID || a.Status != models.AppointmentStatusBooked {
			continue
		}
		if a.StartAt.Before(from) || !a.StartAt.Before(to) {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func timelineTestConfig() config.TimelineConfig {
	return config.TimelineConfig{
		HourHeight:     72,
		MinEventHeight: 32,
		ScrollOffset:   200,
		AutoScroll:     true,
	}
}

func newTestTimelineService(schedules *mockTimelineScheduleRepo, exceptions *mockTimelineExceptionRepo, appointments *mockTimelineAppointmentRepo) *TimelineService {
	return NewTimelineService(
		schedules, exceptions, appointments,
		nil, nil, zap.NewNop(),
		timelineTestConfig(),
		config.WorkingHoursConfig{StartHour: 9, EndHour: 17},
	)
}

var testMonday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestDayTimelineResolvesRulesAndAppointments(t *testing.T) {
	schedules := &mockTimelineScheduleRepo{
		schedules: map[string]models.OfficeSchedule{
			"sched-1": {ID: "sched-1", PractitionerID: "prac-1", Name: "Main office"},
		},
		timeslots: map[string][]models.WeeklyTimeslotRule{
			"sched-1": {
				{ID: "rule-mon", ScheduleID: "sched-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			},
		},
	}
	appointments := &mockTimelineAppointmentRepo{
		appointments: []models.Appointment{
			{
				ID: "appt-1", PractitionerID: "prac-1", Title: "Checkup",
				StartAt: testMonday.Add(10 * time.Hour),
				EndAt:   testMonday.Add(10*time.Hour + 30*time.Minute),
				Status:  models.AppointmentStatusBooked,
			},
		},
	}
	svc := newTestTimelineService(schedules, &mockTimelineExceptionRepo{}, appointments)
	svc.WithClock(func() time.Time { return testMonday.Add(14 * time.Hour) })

	layout, err := svc.DayTimeline(context.Background(), "sched-1", testMonday, TimelineQuery{})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", layout.Date)
	assert.Equal(t, 24, layout.HourRows)

	// Availability: closed before 09:00 and after 17:00.
	require.Len(t, layout.Intervals, 3)
	assert.Equal(t, timeline.KindNonWorking, layout.Intervals[0].Kind)
	assert.Equal(t, timeline.KindWorking, layout.Intervals[1].Kind)
	assert.Equal(t, "rule:rule-mon", layout.Intervals[1].Source)

	// Two non-working blocks plus the booked visit.
	require.Len(t, layout.Events, 3)
	var visit *timeline.EventBox
	for i := range layout.Events {
		if layout.Events[i].Category == timeline.CategoryAppointment {
			visit = &layout.Events[i]
		}
	}
	require.NotNil(t, visit)
	assert.Equal(t, "Checkup", visit.Title)
	assert.InDelta(t, 10*72.0, visit.Top, 0.001)

	assert.True(t, layout.Now.Visible)
	assert.True(t, layout.ScrollApply)
	assert.InDelta(t, 14*72.0-200, layout.ScrollTop, 0.001)
}

func TestDayTimelineUnknownScheduleReturnsNotFound(t *testing.T) {
	svc := newTestTimelineService(&mockTimelineScheduleRepo{}, &mockTimelineExceptionRepo{}, &mockTimelineAppointmentRepo{})

	_, err := svc.DayTimeline(context.Background(), "missing", testMonday, TimelineQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDayTimelineFallsBackToWorkingHoursWithoutRules(t *testing.T) {
	schedules := &mockTimelineScheduleRepo{
		schedules: map[string]models.OfficeSchedule{
			"sched-1": {ID: "sched-1", PractitionerID: "prac-1"},
		},
	}
	svc := newTestTimelineService(schedules, &mockTimelineExceptionRepo{}, &mockTimelineAppointmentRepo{})
	svc.WithClock(func() time.Time { return testMonday.AddDate(0, 0, 30) })

	layout, err := svc.DayTimeline(context.Background(), "sched-1", testMonday, TimelineQuery{})
	require.NoError(t, err)

	// The configured 9-17 window applies when no rules are stored.
	require.Len(t, layout.Intervals, 3)
	working := layout.Intervals[1]
	assert.Equal(t, timeline.KindWorking, working.Kind)
	assert.Equal(t, timeline.Minute(9*60), working.Start)
	assert.Equal(t, timeline.Minute(17*60), working.End)
}

func TestDayTimelineAppliesExceptions(t *testing.T) {
	startTime, endTime := "18:00", "20:00"
	schedules := &mockTimelineScheduleRepo{
		schedules: map[string]models.OfficeSchedule{
			"sched-1": {ID: "sched-1", PractitionerID: "prac-1"},
		},
		timeslots: map[string][]models.WeeklyTimeslotRule{
			"sched-1": {
				{ID: "rule-mon", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
			},
		},
	}
	exceptions := &mockTimelineExceptionRepo{
		exceptions: map[string][]models.ScheduleException{
			"sched-1": {
				{
					ID: "ex-1", ScheduleID: "sched-1", ExceptionDate: testMonday,
					ExceptionType: models.ExceptionTypeSpecialHours,
					StartTime:     &startTime, EndTime: &endTime,
				},
			},
		},
	}
	svc := newTestTimelineService(schedules, exceptions, &mockTimelineAppointmentRepo{})
	svc.WithClock(func() time.Time { return testMonday.AddDate(0, 0, 30) })

	layout, err := svc.DayTimeline(context.Background(), "sched-1", testMonday, TimelineQuery{})
	require.NoError(t, err)

	// Special hours open an extra evening window alongside the weekday rule.
	var working []timeline.ResolvedInterval
	for _, iv := range layout.Intervals {
		if iv.Kind == timeline.KindWorking {
			working = append(working, iv)
		}
	}
	require.Len(t, working, 2)
	assert.Equal(t, "rule:rule-mon", working[0].Source)
	assert.Equal(t, "exception:ex-1", working[1].Source)
	assert.Equal(t, timeline.Minute(18*60), working[1].Start)
	assert.Equal(t, timeline.Minute(20*60), working[1].End)
}

func TestWeekTimelineBucketsAppointmentsPerColumn(t *testing.T) {
	schedules := &mockTimelineScheduleRepo{
		schedules: map[string]models.OfficeSchedule{
			"sched-1": {ID: "sched-1", PractitionerID: "prac-1"},
		},
		timeslots: map[string][]models.WeeklyTimeslotRule{
			"sched-1": {
				{ID: "rule-mon", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
				{ID: "rule-wed", DayOfWeek: 3, StartTime: "09:00", EndTime: "13:00", IsAvailable: true},
			},
		},
	}
	wednesday := testMonday.AddDate(0, 0, 2)
	appointments := &mockTimelineAppointmentRepo{
		appointments: []models.Appointment{
			{
				ID: "appt-mon", PractitionerID: "prac-1", Title: "Monday visit",
				StartAt: testMonday.Add(9 * time.Hour), EndAt: testMonday.Add(10 * time.Hour),
				Status: models.AppointmentStatusBooked,
			},
			{
				ID: "appt-wed", PractitionerID: "prac-1", Title: "Wednesday visit",
				StartAt: wednesday.Add(11 * time.Hour), EndAt: wednesday.Add(12 * time.Hour),
				Status: models.AppointmentStatusBooked,
			},
		},
	}
	svc := newTestTimelineService(schedules, &mockTimelineExceptionRepo{}, appointments)
	svc.WithClock(func() time.Time { return wednesday.Add(14*time.Hour + 30*time.Minute) })

	week, err := svc.WeekTimeline(context.Background(), "sched-1", testMonday, TimelineQuery{})
	require.NoError(t, err)
	require.Len(t, week.Days, 7)

	countAppointments := func(day timeline.DayLayout) []string {
		var ids []string
		for _, box := range day.Events {
			if box.Category == timeline.CategoryAppointment {
				ids = append(ids, box.ID)
			}
		}
		return ids
	}
	assert.Equal(t, []string{"appt-mon"}, countAppointments(week.Days[0]))
	assert.Empty(t, countAppointments(week.Days[1]))
	assert.Equal(t, []string{"appt-wed"}, countAppointments(week.Days[2]))

	// Only the current date's column shows the now line; the shared scroll
	// target comes from that column.
	assert.False(t, week.Days[0].Now.Visible)
	assert.True(t, week.Days[2].Now.Visible)
	assert.True(t, week.ScrollApply)
	assert.InDelta(t, 14.5*72.0-200, week.ScrollTop, 0.001)
}

func TestTimelineQueryOverridesGeometry(t *testing.T) {
	schedules := &mockTimelineScheduleRepo{
		schedules: map[string]models.OfficeSchedule{"sched-1": {ID: "sched-1", PractitionerID: "prac-1"}},
	}
	svc := newTestTimelineService(schedules, &mockTimelineExceptionRepo{}, &mockTimelineAppointmentRepo{})
	svc.WithClock(func() time.Time { return testMonday.Add(12 * time.Hour) })

	disabled := false
	layout, err := svc.DayTimeline(context.Background(), "sched-1", testMonday, TimelineQuery{HourHeight: 100, AutoScroll: &disabled})
	require.NoError(t, err)

	assert.Equal(t, 100.0, layout.HourHeight)
	assert.True(t, layout.Now.Visible)
	assert.False(t, layout.ScrollApply)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/service"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/config"
)

type fakeScheduleStore struct {
	schedule  models.OfficeSchedule
	timeslots []models.WeeklyTimeslotRule
}

func (f *fakeScheduleStore) FindByID(_ context.Context, id string) (*models.OfficeSchedule, error) {
	s := f.schedule
	return &s, nil
}

func (f *fakeScheduleStore) FindByPractitioner(_ context.Context, _ string) (*models.OfficeSchedule, error) {
	s := f.schedule
	return &s, nil
}

func (f *fakeScheduleStore) ListTimeslots(_ context.Context, _ string) ([]models.WeeklyTimeslotRule, error) {
	return f.timeslots, nil
}

func (f *fakeScheduleStore) ListIDs(_ context.Context) ([]string, error) {
	return []string{f.schedule.ID}, nil
}

type fakeExceptionStore struct{}

func (f *fakeExceptionStore) ListByDateRange(_ context.Context, _ string, _, _ time.Time) ([]models.ScheduleException, error) {
	return nil, nil
}

type fakeAppointmentStore struct {
	appointments []models.Appointment
}

func (f *fakeAppointmentStore) ListBetween(_ context.Context, _ string, _, _ time.Time) ([]models.Appointment, error) {
	return f.appointments, nil
}

func newTestTimelineHandler() *TimelineHandler {
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	schedules := &fakeScheduleStore{
		schedule: models.OfficeSchedule{ID: "sched-1", PractitionerID: "prac-1"},
		timeslots: []models.WeeklyTimeslotRule{
			{ID: "rule-mon", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		},
	}
	appointments := &fakeAppointmentStore{
		appointments: []models.Appointment{
			{
				ID: "appt-1", PractitionerID: "prac-1", Title: "Checkup",
				StartAt: monday.Add(10 * time.Hour), EndAt: monday.Add(11 * time.Hour),
				Status: models.AppointmentStatusBooked,
			},
		},
	}
	timelines := service.NewTimelineService(
		schedules, &fakeExceptionStore{}, appointments,
		nil, nil, zap.NewNop(),
		config.TimelineConfig{HourHeight: 72, MinEventHeight: 32, ScrollOffset: 200, AutoScroll: true},
		config.WorkingHoursConfig{StartHour: 9, EndHour: 17},
	)
	timelines.WithClock(func() time.Time { return monday.Add(14 * time.Hour) })
	return NewTimelineHandler(timelines, service.NewExportService(timelines, zap.NewNop()))
}

func TestTimelineHandlerDayRejectsMalformedDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestTimelineHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/sched-1/timeline/day?date=10-03-2025", nil)

	handler.Day(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimelineHandlerDaySuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestTimelineHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/sched-1/timeline/day?date=2025-03-10", nil)

	handler.Day(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			Date       string  `json:"date"`
			HourRows   int     `json:"hour_rows"`
			ScrollTop  float64 `json:"scroll_top"`
			ScrollFlag bool    `json:"scroll_apply"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "2025-03-10", envelope.Data.Date)
	assert.Equal(t, 24, envelope.Data.HourRows)
	assert.True(t, envelope.Data.ScrollFlag)
	assert.InDelta(t, 14*72.0-200, envelope.Data.ScrollTop, 0.001)
}

func TestTimelineHandlerExportWeekRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestTimelineHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/sched-1/timeline/week/export?start=2025-03-10&format=xlsx", nil)

	handler.ExportWeek(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimelineHandlerExportWeekCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTestTimelineHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "sched-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/sched-1/timeline/week/export?start=2025-03-10&format=csv", nil)

	handler.ExportWeek(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "week-2025-03-10.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "date,category,title,start,end", lines[0])
	assert.Contains(t, rec.Body.String(), "Checkup")
}

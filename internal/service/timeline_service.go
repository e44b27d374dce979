package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/timeline"
	"github.com/dhakalu/telehealth-web-app-sub001/pkg/config"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
)

type timelineScheduleRepo interface {
	FindByID(ctx context.Context, id string) (*models.OfficeSchedule, error)
	FindByPractitioner(ctx context.Context, practitionerID string) (*models.OfficeSchedule, error)
	ListTimeslots(ctx context.Context, scheduleID string) ([]models.WeeklyTimeslotRule, error)
	ListIDs(ctx context.Context) ([]string, error)
}

type timelineExceptionRepo interface {
	ListByDateRange(ctx context.Context, scheduleID string, from, to time.Time) ([]models.ScheduleException, error)
}

type timelineAppointmentRepo interface {
	ListBetween(ctx context.Context, practitionerID string, from, to time.Time) ([]models.Appointment, error)
}

// TimelineService resolves a schedule's availability and lays out day and
// week calendar timelines. Layouts are cached briefly in Redis; mutations of
// the underlying schedule invalidate the cache.
type TimelineService struct {
	schedules    timelineScheduleRepo
	exceptions   timelineExceptionRepo
	appointments timelineAppointmentRepo
	cache        *redis.Client
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          config.TimelineConfig
	working      config.WorkingHoursConfig
	now          func() time.Time
}

// NewTimelineService constructs the service. The cache client and metrics
// service may be nil.
func NewTimelineService(
	schedules timelineScheduleRepo,
	exceptions timelineExceptionRepo,
	appointments timelineAppointmentRepo,
	cache *redis.Client,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg config.TimelineConfig,
	working config.WorkingHoursConfig,
) *TimelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{
		schedules:    schedules,
		exceptions:   exceptions,
		appointments: appointments,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
		working:      working,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *TimelineService) WithClock(now func() time.Time) *TimelineService {
	s.now = now
	return s
}

// TimelineQuery carries per-request rendering overrides.
type TimelineQuery struct {
	HourHeight float64
	AutoScroll *bool
}

func (s *TimelineService) options(q TimelineQuery) timeline.Options {
	hourHeight := s.cfg.HourHeight
	if q.HourHeight > 0 {
		hourHeight = q.HourHeight
	}
	enabled := s.cfg.AutoScroll
	if q.AutoScroll != nil {
		enabled = *q.AutoScroll
	}
	return timeline.Options{
		HourHeight:     hourHeight,
		MinEventHeight: s.cfg.MinEventHeight,
		Scroll:         timeline.AutoScroll{Offset: s.cfg.ScrollOffset, Enabled: enabled},
	}
}

// DayTimeline returns the positioned single-day layout for a schedule.
func (s *TimelineService) DayTimeline(ctx context.Context, scheduleID string, date time.Time, q TimelineQuery) (*timeline.DayLayout, error) {
	opts := s.options(q)

	cacheKey := fmt.Sprintf("timeline:day:%s:%s:%.0f:%t", scheduleID, date.Format("2006-01-02"), opts.HourHeight, opts.Scroll.Enabled)
	if layout := new(timeline.DayLayout); s.cacheGet(ctx, cacheKey, layout) {
		return layout, nil
	}

	inputs, err := s.loadInputs(ctx, scheduleID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	layout := timeline.BuildDay(date, timeline.ResolveDay(date, inputs.rules, inputs.exceptions), inputs.appointments, s.now(), opts)
	s.metrics.ObserveTimelineBuild("day", time.Since(started))

	s.cacheSet(ctx, cacheKey, layout)
	return &layout, nil
}

// WeekTimeline returns seven day columns starting at the given date.
func (s *TimelineService) WeekTimeline(ctx context.Context, scheduleID string, start time.Time, q TimelineQuery) (*timeline.WeekLayout, error) {
	opts := s.options(q)

	cacheKey := fmt.Sprintf("timeline:week:%s:%s:%.0f:%t", scheduleID, start.Format("2006-01-02"), opts.HourHeight, opts.Scroll.Enabled)
	if layout := new(timeline.WeekLayout); s.cacheGet(ctx, cacheKey, layout) {
		return layout, nil
	}

	inputs, err := s.loadInputs(ctx, scheduleID, start, start.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	resolve := func(date time.Time) []timeline.ResolvedInterval {
		return timeline.ResolveDay(date, inputs.rules, inputs.exceptions)
	}

	started := time.Now()
	layout := timeline.BuildWeek(start, resolve, inputs.appointments, s.now(), opts)
	s.metrics.ObserveTimelineBuild("week", time.Since(started))

	s.cacheSet(ctx, cacheKey, layout)
	return &layout, nil
}

// Invalidate drops every cached layout for a schedule.
func (s *TimelineService) Invalidate(ctx context.Context, scheduleID string) error {
	if s.cache == nil {
		return nil
	}
	for _, pattern := range []string{
		fmt.Sprintf("timeline:day:%s:*", scheduleID),
		fmt.Sprintf("timeline:week:%s:*", scheduleID),
	} {
		keys, err := s.cache.Keys(ctx, pattern).Result()
		if err != nil {
			return fmt.Errorf("scan timeline cache: %w", err)
		}
		if len(keys) > 0 {
			if err := s.cache.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("drop timeline cache: %w", err)
			}
		}
	}
	return nil
}

// InvalidateForPractitioner drops cached layouts for the practitioner's
// schedule, if one exists. Used after appointment mutations.
func (s *TimelineService) InvalidateForPractitioner(ctx context.Context, practitionerID string) error {
	schedule, err := s.schedules.FindByPractitioner(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	return s.Invalidate(ctx, schedule.ID)
}

// RefreshToday recomputes today's cached day layout for every schedule so
// cached now-line and scroll positions keep advancing. Driven by an external
// periodic trigger; the engine itself runs no timers.
func (s *TimelineService) RefreshToday(ctx context.Context) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return
	}
	ids, err := s.schedules.ListIDs(ctx)
	if err != nil {
		s.logger.Warn("timeline refresh: list schedules", zap.Error(err))
		return
	}
	today := dateOnly(s.now())
	for _, id := range ids {
		if err := s.Invalidate(ctx, id); err != nil {
			s.logger.Warn("timeline refresh: invalidate", zap.String("schedule_id", id), zap.Error(err))
			continue
		}
		if _, err := s.DayTimeline(ctx, id, today, TimelineQuery{}); err != nil {
			s.logger.Warn("timeline refresh: rebuild", zap.String("schedule_id", id), zap.Error(err))
		}
	}
}

type timelineInputs struct {
	schedule     *models.OfficeSchedule
	rules        []timeline.Rule
	exceptions   []timeline.Exception
	appointments []timeline.Appointment
}

// loadInputs fetches and converts everything the engine needs for [from, to).
func (s *TimelineService) loadInputs(ctx context.Context, scheduleID string, from, to time.Time) (*timelineInputs, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	records, err := s.schedules.ListTimeslots(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
	}
	rules, err := mapRules(records)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = s.fallbackRules()
	}

	exceptionRecords, err := s.exceptions.ListByDateRange(ctx, scheduleID, from, to.AddDate(0, 0, -1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exceptions")
	}
	exceptions, err := mapExceptions(exceptionRecords)
	if err != nil {
		return nil, err
	}

	appointmentRecords, err := s.appointments.ListBetween(ctx, schedule.PractitionerID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}
	appointments := make([]timeline.Appointment, len(appointmentRecords))
	for i, a := range appointmentRecords {
		appointments[i] = timeline.Appointment{ID: a.ID, Title: a.Title, Start: a.StartAt, End: a.EndAt}
	}

	return &timelineInputs{
		schedule:     schedule,
		rules:        rules,
		exceptions:   exceptions,
		appointments: appointments,
	}, nil
}

// fallbackRules synthesizes the legacy static working-hours window for
// schedules that define no weekly rules, on all seven days.
func (s *TimelineService) fallbackRules() []timeline.Rule {
	start := timeline.Minute(s.working.StartHour * 60)
	end := timeline.Minute(s.working.EndHour * 60)
	if end <= start {
		return nil
	}
	rules := make([]timeline.Rule, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		rules = append(rules, timeline.Rule{ID: "working-hours", Weekday: wd, Start: start, End: end})
	}
	return rules
}

func mapRules(records []models.WeeklyTimeslotRule) ([]timeline.Rule, error) {
	rules := make([]timeline.Rule, 0, len(records))
	for _, r := range records {
		if !r.IsAvailable {
			continue
		}
		start, err := timeline.ParseClock(r.StartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed timeslot rule "+r.ID)
		}
		end, err := timeline.ParseClock(r.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed timeslot rule "+r.ID)
		}
		rules = append(rules, timeline.Rule{
			ID:      r.ID,
			Weekday: time.Weekday(r.DayOfWeek),
			Start:   start,
			End:     end,
		})
	}
	return rules, nil
}

func mapExceptions(records []models.ScheduleException) ([]timeline.Exception, error) {
	exceptions := make([]timeline.Exception, 0, len(records))
	for _, ex := range records {
		mapped := timeline.Exception{ID: ex.ID, Date: ex.ExceptionDate, Type: ex.ExceptionType}
		if !ex.AllDay() {
			start, err := timeline.ParseClock(*ex.StartTime)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed exception "+ex.ID)
			}
			end, err := timeline.ParseClock(*ex.EndTime)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed exception "+ex.ID)
			}
			mapped.Start = &start
			mapped.End = &end
		}
		exceptions = append(exceptions, mapped)
	}
	return exceptions, nil
}

func (s *TimelineService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return false
	}
	started := time.Now()
	raw, err := s.cache.Get(ctx, key).Bytes()
	hit := err == nil
	s.metrics.RecordCacheOperation(hit, time.Since(started))
	if !hit {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("timeline cache read", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("timeline cache decode", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *TimelineService) cacheSet(ctx context.Context, key string, layout interface{}) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return
	}
	raw, err := json.Marshal(layout)
	if err != nil {
		s.logger.Warn("timeline cache encode", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("timeline cache write", zap.String("key", key), zap.Error(err))
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	"github.com/dhakalu/telehealth-web-app-sub001/internal/timeline"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
)

type scheduleRepo interface {
	FindByID(ctx context.Context, id string) (*models.OfficeSchedule, error)
	FindByPractitioner(ctx context.Context, practitionerID string) (*models.OfficeSchedule, error)
	Create(ctx context.Context, schedule *models.OfficeSchedule) error
	Update(ctx context.Context, schedule *models.OfficeSchedule) error
	ListTimeslots(ctx context.Context, scheduleID string) ([]models.WeeklyTimeslotRule, error)
	CreateTimeslot(ctx context.Context, rule *models.WeeklyTimeslotRule) error
	DeleteTimeslot(ctx context.Context, scheduleID, timeslotID string) (bool, error)
}

type scheduleExceptionRepo interface {
	ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleException, error)
	Create(ctx context.Context, exception *models.ScheduleException) error
	Delete(ctx context.Context, scheduleID, exceptionID string) (bool, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, scheduleID string) error
}

// ScheduleService manages office schedules, weekly timeslot rules and
// date-specific exceptions.
type ScheduleService struct {
	schedules  scheduleRepo
	exceptions scheduleExceptionRepo
	timelines  cacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewScheduleService constructs the service. The timeline invalidator may be
// nil when caching is disabled.
func NewScheduleService(schedules scheduleRepo, exceptions scheduleExceptionRepo, timelines cacheInvalidator, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		schedules:  schedules,
		exceptions: exceptions,
		timelines:  timelines,
		validator:  validator.New(),
		logger:     logger,
	}
}

// CreateScheduleRequest carries the fields for a new office schedule.
type CreateScheduleRequest struct {
	PractitionerID string `json:"practitioner_id" validate:"required,uuid4"`
	Name           string `json:"name" validate:"required,min=1,max=120"`
	Timezone       string `json:"timezone" validate:"required"`
}

// UpdateScheduleRequest carries mutable schedule fields.
type UpdateScheduleRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Timezone string `json:"timezone" validate:"required"`
}

// CreateTimeslotRequest carries the fields for a new weekly timeslot rule.
type CreateTimeslotRequest struct {
	DayOfWeek           int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime           string `json:"start_time" validate:"required"`
	EndTime             string `json:"end_time" validate:"required"`
	SlotDurationMinutes int    `json:"slot_duration_minutes" validate:"omitempty,min=5,max=240"`
	IsAvailable         *bool  `json:"is_available"`
}

// CreateExceptionRequest carries the fields for a new schedule exception.
// StartTime and EndTime must be given together or not at all.
type CreateExceptionRequest struct {
	ExceptionDate string  `json:"exception_date" validate:"required"`
	ExceptionType string  `json:"exception_type" validate:"required,oneof=HOLIDAY VACATION SPECIAL_HOURS"`
	StartTime     *string `json:"start_time"`
	EndTime       *string `json:"end_time"`
	Reason        string  `json:"reason" validate:"max=500"`
}

// GetSchedule returns a schedule with its timeslot rules attached.
func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*models.OfficeSchedule, error) {
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	timeslots, err := s.schedules.ListTimeslots(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
	}
	schedule.Timeslots = timeslots
	return schedule, nil
}

// GetScheduleForPractitioner returns the practitioner's schedule with its
// timeslot rules attached.
func (s *ScheduleService) GetScheduleForPractitioner(ctx context.Context, practitionerID string) (*models.OfficeSchedule, error) {
	schedule, err := s.schedules.FindByPractitioner(ctx, practitionerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	timeslots, err := s.schedules.ListTimeslots(ctx, schedule.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
	}
	schedule.Timeslots = timeslots
	return schedule, nil
}

// CreateSchedule stores a new office schedule. A practitioner may hold only
// one schedule.
func (s *ScheduleService) CreateSchedule(ctx context.Context, req CreateScheduleRequest) (*models.OfficeSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if existing, err := s.schedules.FindByPractitioner(ctx, req.PractitionerID); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "practitioner already has a schedule")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing schedule")
	}

	schedule := &models.OfficeSchedule{
		PractitionerID: req.PractitionerID,
		Name:           req.Name,
		Timezone:       req.Timezone,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.logger.Info("schedule created",
		zap.String("schedule_id", schedule.ID),
		zap.String("practitioner_id", schedule.PractitionerID))
	return schedule, nil
}

// UpdateSchedule modifies the schedule's name and timezone.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id string, req UpdateScheduleRequest) (*models.OfficeSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	schedule, err := s.schedules.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	schedule.Name = req.Name
	schedule.Timezone = req.Timezone
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	s.invalidate(ctx, id)
	return schedule, nil
}

// ListTimeslots returns the weekly timeslot rules for a schedule.
func (s *ScheduleService) ListTimeslots(ctx context.Context, scheduleID string) ([]models.WeeklyTimeslotRule, error) {
	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	timeslots, err := s.schedules.ListTimeslots(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
	}
	return timeslots, nil
}

// CreateTimeslot adds a weekly rule to the schedule. Rules that overlap an
// existing rule on the same weekday are accepted but reported as warnings,
// since later rules deliberately override earlier ones.
func (s *ScheduleService) CreateTimeslot(ctx context.Context, scheduleID string, req CreateTimeslotRequest) (*models.WeeklyTimeslotRule, []string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeslot payload")
	}
	start, err := timeline.ParseClock(req.StartTime)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidClock, "invalid start_time: "+req.StartTime)
	}
	end, err := timeline.ParseClock(req.EndTime)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidClock, "invalid end_time: "+req.EndTime)
	}
	if end <= start {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}

	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return nil, nil, err
	}

	existing, err := s.schedules.ListTimeslots(ctx, scheduleID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
	}
	warnings := overlapWarnings(existing, req.DayOfWeek, start, end)
	for _, w := range warnings {
		s.logger.Warn("overlapping timeslot rule", zap.String("schedule_id", scheduleID), zap.String("detail", w))
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	duration := req.SlotDurationMinutes
	if duration == 0 {
		duration = 30
	}
	rule := &models.WeeklyTimeslotRule{
		ScheduleID:          scheduleID,
		DayOfWeek:           req.DayOfWeek,
		StartTime:           start.Clock(),
		EndTime:             end.Clock(),
		SlotDurationMinutes: duration,
		IsAvailable:         available,
	}
	if err := s.schedules.CreateTimeslot(ctx, rule); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timeslot")
	}
	s.invalidate(ctx, scheduleID)
	return rule, warnings, nil
}

// DeleteTimeslot removes a weekly rule from the schedule.
func (s *ScheduleService) DeleteTimeslot(ctx context.Context, scheduleID, timeslotID string) error {
	deleted, err := s.schedules.DeleteTimeslot(ctx, scheduleID, timeslotID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timeslot")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "timeslot not found")
	}
	s.invalidate(ctx, scheduleID)
	return nil
}

// ListExceptions returns all exceptions for a schedule.
func (s *ScheduleService) ListExceptions(ctx context.Context, scheduleID string) ([]models.ScheduleException, error) {
	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	exceptions, err := s.exceptions.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exceptions")
	}
	return exceptions, nil
}

// CreateException adds a date-specific override. Whole-day SPECIAL_HOURS
// exceptions are accepted but warned about, since without a time range they
// only clear the day.
func (s *ScheduleService) CreateException(ctx context.Context, scheduleID string, req CreateExceptionRequest) (*models.ScheduleException, []string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exception payload")
	}
	date, err := time.Parse("2006-01-02", req.ExceptionDate)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidDate, "exception_date must be YYYY-MM-DD")
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "start_time and end_time must be given together")
	}

	var warnings []string
	exception := &models.ScheduleException{
		ScheduleID:    scheduleID,
		ExceptionDate: date,
		ExceptionType: req.ExceptionType,
		Reason:        req.Reason,
	}
	if req.StartTime != nil {
		start, err := timeline.ParseClock(*req.StartTime)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidClock, "invalid start_time: "+*req.StartTime)
		}
		end, err := timeline.ParseClock(*req.EndTime)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidClock, "invalid end_time: "+*req.EndTime)
		}
		if end <= start {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
		}
		startClock, endClock := start.Clock(), end.Clock()
		exception.StartTime = &startClock
		exception.EndTime = &endClock
	} else if req.ExceptionType == models.ExceptionTypeSpecialHours {
		w := "whole-day SPECIAL_HOURS exception has no time range and marks the entire day unavailable"
		warnings = append(warnings, w)
		s.logger.Warn("exception without time range", zap.String("schedule_id", scheduleID), zap.String("detail", w))
	}

	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return nil, nil, err
	}
	if err := s.exceptions.Create(ctx, exception); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exception")
	}
	s.invalidate(ctx, scheduleID)
	return exception, warnings, nil
}

// DeleteException removes a date-specific override.
func (s *ScheduleService) DeleteException(ctx context.Context, scheduleID, exceptionID string) error {
	deleted, err := s.exceptions.Delete(ctx, scheduleID, exceptionID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exception")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "exception not found")
	}
	s.invalidate(ctx, scheduleID)
	return nil
}

func (s *ScheduleService) invalidate(ctx context.Context, scheduleID string) {
	if s.timelines == nil {
		return
	}
	if err := s.timelines.Invalidate(ctx, scheduleID); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
}

func overlapWarnings(existing []models.WeeklyTimeslotRule, dayOfWeek int, start, end timeline.Minute) []string {
	var warnings []string
	for _, rule := range existing {
		if rule.DayOfWeek != dayOfWeek || !rule.IsAvailable {
			continue
		}
		rs, err := timeline.ParseClock(rule.StartTime)
		if err != nil {
			continue
		}
		re, err := timeline.ParseClock(rule.EndTime)
		if err != nil {
			continue
		}
		if start < re && rs < end {
			warnings = append(warnings, fmt.Sprintf("overlaps rule %s (%s-%s); the new rule takes precedence where they intersect", rule.ID, rule.StartTime, rule.EndTime))
		}
	}
	return warnings
}

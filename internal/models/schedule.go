package models

import "time"

// Exception types for date-specific schedule overrides.
const (
	ExceptionTypeHoliday      = "HOLIDAY"
	ExceptionTypeVacation     = "VACATION"
	ExceptionTypeSpecialHours = "SPECIAL_HOURS"
)

// OfficeSchedule is a practitioner's office-hours configuration. The timezone
// field is a stored label only; no conversion is performed.
type OfficeSchedule struct {
	ID             string    `db:"id" json:"id"`
	PractitionerID string    `db:"practitioner_id" json:"practitioner_id"`
	Name           string    `db:"name" json:"name"`
	Timezone       string    `db:"timezone" json:"timezone"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Timeslots []WeeklyTimeslotRule `db:"-" json:"timeslots,omitempty"`
}

// WeeklyTimeslotRule defines working hours for one weekday. DayOfWeek uses
// 0..6 with Sunday as 0, matching time.Weekday. Times are "HH:MM" wall-clock
// strings. Multiple rules may exist per weekday.
type WeeklyTimeslotRule struct {
	ID                  string    `db:"id" json:"id"`
	ScheduleID          string    `db:"schedule_id" json:"schedule_id"`
	DayOfWeek           int       `db:"day_of_week" json:"day_of_week"`
	StartTime           string    `db:"start_time" json:"start_time"`
	EndTime             string    `db:"end_time" json:"end_time"`
	SlotDurationMinutes int       `db:"slot_duration_minutes" json:"slot_duration_minutes"`
	IsAvailable         bool      `db:"is_available" json:"is_available"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// ScheduleException overrides the weekly rules for a single calendar date.
// A nil StartTime/EndTime pair means the exception applies to the whole day.
type ScheduleException struct {
	ID            string    `db:"id" json:"id"`
	ScheduleID    string    `db:"schedule_id" json:"schedule_id"`
	ExceptionDate time.Time `db:"exception_date" json:"exception_date"`
	ExceptionType string    `db:"exception_type" json:"exception_type"`
	StartTime     *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime       *string   `db:"end_time" json:"end_time,omitempty"`
	Reason        string    `db:"reason" json:"reason"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AllDay reports whether the exception covers the entire date.
func (e ScheduleException) AllDay() bool {
	return e.StartTime == nil || e.EndTime == nil
}

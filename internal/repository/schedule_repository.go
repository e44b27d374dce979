package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
)

// ScheduleRepository provides persistence for office schedules and their
// weekly timeslot rules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID loads a schedule by id, without its timeslots.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.OfficeSchedule, error) {
	const query = `SELECT id, practitioner_id, name, timezone, created_at, updated_at FROM office_schedules WHERE id = $1`
	var schedule models.OfficeSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindByPractitioner loads a practitioner's schedule.
func (r *ScheduleRepository) FindByPractitioner(ctx context.Context, practitionerID string) (*models.OfficeSchedule, error) {
	const query = `SELECT id, practitioner_id, name, timezone, created_at, updated_at FROM office_schedules WHERE practitioner_id = $1`
	var schedule models.OfficeSchedule
	if err := r.db.GetContext(ctx, &schedule, query, practitionerID); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListIDs returns the ids of every schedule, used by the cache warmer.
func (r *ScheduleRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM office_schedules ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("list schedule ids: %w", err)
	}
	return ids, nil
}

// Create stores a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.OfficeSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO office_schedules (id, practitioner_id, name, timezone, created_at, updated_at) VALUES (:id, :practitioner_id, :name, :timezone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule record.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.OfficeSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE office_schedules SET name = :name, timezone = :timezone, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// ListTimeslots returns the weekly timeslot rules for a schedule ordered by
// weekday and start time.
func (r *ScheduleRepository) ListTimeslots(ctx context.Context, scheduleID string) ([]models.WeeklyTimeslotRule, error) {
	const query = `SELECT id, schedule_id, day_of_week, start_time, end_time, slot_duration_minutes, is_available, created_at FROM weekly_timeslot_rules WHERE schedule_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var rules []models.WeeklyTimeslotRule
	if err := r.db.SelectContext(ctx, &rules, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	return rules, nil
}

// CreateTimeslot stores a weekly timeslot rule.
func (r *ScheduleRepository) CreateTimeslot(ctx context.Context, rule *models.WeeklyTimeslotRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO weekly_timeslot_rules (id, schedule_id, day_of_week, start_time, end_time, slot_duration_minutes, is_available, created_at) VALUES (:id, :schedule_id, :day_of_week, :start_time, :end_time, :slot_duration_minutes, :is_available, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create timeslot: %w", err)
	}
	return nil
}

// DeleteTimeslot removes a timeslot rule, scoped to its schedule.
func (r *ScheduleRepository) DeleteTimeslot(ctx context.Context, scheduleID, timeslotID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weekly_timeslot_rules WHERE id = $1 AND schedule_id = $2`, timeslotID, scheduleID)
	if err != nil {
		return false, fmt.Errorf("delete timeslot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete timeslot result: %w", err)
	}
	return affected > 0, nil
}

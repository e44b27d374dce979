package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
)

// ExceptionRepository provides persistence for date-specific schedule
// exceptions.
type ExceptionRepository struct {
	db *sqlx.DB
}

// NewExceptionRepository creates a new exception repository.
func NewExceptionRepository(db *sqlx.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// ListBySchedule returns all exceptions for a schedule ordered by date.
func (r *ExceptionRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.ScheduleException, error) {
	const query = `SELECT id, schedule_id, exception_date, exception_type, start_time, end_time, reason, created_at FROM schedule_exceptions WHERE schedule_id = $1 ORDER BY exception_date ASC, created_at ASC`
	var exceptions []models.ScheduleException
	if err := r.db.SelectContext(ctx, &exceptions, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}
	return exceptions, nil
}

// ListByDateRange returns exceptions for a schedule falling inside [from, to].
func (r *ExceptionRepository) ListByDateRange(ctx context.Context, scheduleID string, from, to time.Time) ([]models.ScheduleException, error) {
	const query = `SELECT id, schedule_id, exception_date, exception_type, start_time, end_time, reason, created_at FROM schedule_exceptions WHERE schedule_id = $1 AND exception_date >= $2 AND exception_date <= $3 ORDER BY exception_date ASC, created_at ASC`
	var exceptions []models.ScheduleException
	if err := r.db.SelectContext(ctx, &exceptions, query, scheduleID, from, to); err != nil {
		return nil, fmt.Errorf("list exceptions by range: %w", err)
	}
	return exceptions, nil
}

// Create stores a schedule exception.
func (r *ExceptionRepository) Create(ctx context.Context, exception *models.ScheduleException) error {
	if exception.ID == "" {
		exception.ID = uuid.NewString()
	}
	if exception.CreatedAt.IsZero() {
		exception.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedule_exceptions (id, schedule_id, exception_date, exception_type, start_time, end_time, reason, created_at) VALUES (:id, :schedule_id, :exception_date, :exception_type, :start_time, :end_time, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exception); err != nil {
		return fmt.Errorf("create exception: %w", err)
	}
	return nil
}

// Delete removes an exception, scoped to its schedule.
func (r *ExceptionRepository) Delete(ctx context.Context, scheduleID, exceptionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_exceptions WHERE id = $1 AND schedule_id = $2`, exceptionID, scheduleID)
	if err != nil {
		return false, fmt.Errorf("delete exception: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete exception result: %w", err)
	}
	return affected > 0, nil
}

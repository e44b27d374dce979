package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
)

// AppointmentRepository provides persistence for appointments.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

const appointmentColumns = "id, practitioner_id, patient_id, title, start_at, end_at, status, created_at, updated_at"

// List returns appointments with optional window filtering and pagination.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	base := "FROM appointments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.PractitionerID != "" {
		conditions = append(conditions, fmt.Sprintf("practitioner_id = $%d", len(args)+1))
		args = append(args, filter.PractitionerID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_at ASC LIMIT %d OFFSET %d", appointmentColumns, base, size, offset)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	return appointments, total, nil
}

// ListBetween returns a practitioner's booked appointments starting inside
// [from, to), ordered by start. Cancelled visits are excluded; the timeline
// only shows what still occupies the calendar.
func (r *AppointmentRepository) ListBetween(ctx context.Context, practitionerID string, from, to time.Time) ([]models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE practitioner_id = $1 AND start_at >= $2 AND start_at < $3 AND status = $4 ORDER BY start_at ASC`, appointmentColumns)
	var appointments []models.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, practitionerID, from, to, models.AppointmentStatusBooked); err != nil {
		return nil, fmt.Errorf("list appointments between: %w", err)
	}
	return appointments, nil
}

// FindByID loads an appointment by id.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Create stores a new appointment record.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = now
	}
	appointment.UpdatedAt = now
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusBooked
	}

	const query = `INSERT INTO appointments (id, practitioner_id, patient_id, title, start_at, end_at, status, created_at, updated_at) VALUES (:id, :practitioner_id, :patient_id, :title, :start_at, :end_at, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, appointment); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Cancel marks an appointment cancelled.
func (r *AppointmentRepository) Cancel(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`, models.AppointmentStatusCancelled, time.Now().UTC(), id, models.AppointmentStatusBooked)
	if err != nil {
		return false, fmt.Errorf("cancel appointment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel appointment result: %w", err)
	}
	return affected > 0, nil
}

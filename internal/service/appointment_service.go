package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
)

type appointmentRepo interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	Cancel(ctx context.Context, id string) (bool, error)
}

type practitionerInvalidator interface {
	InvalidateForPractitioner(ctx context.Context, practitionerID string) error
}

// AppointmentService manages booked visits. It records appointments as given
// and never arbitrates conflicts; overlapping visits simply render side by
// side on the timeline.
type AppointmentService struct {
	appointments appointmentRepo
	timelines    practitionerInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewAppointmentService constructs the service. The timeline invalidator may
// be nil when caching is disabled.
func NewAppointmentService(appointments appointmentRepo, timelines practitionerInvalidator, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{
		appointments: appointments,
		timelines:    timelines,
		validator:    validator.New(),
		logger:       logger,
	}
}

// CreateAppointmentRequest carries the fields for a new booking.
type CreateAppointmentRequest struct {
	PractitionerID string    `json:"practitioner_id" validate:"required,uuid4"`
	PatientID      string    `json:"patient_id" validate:"required,uuid4"`
	Title          string    `json:"title" validate:"required,min=1,max=200"`
	StartAt        time.Time `json:"start_at" validate:"required"`
	EndAt          time.Time `json:"end_at" validate:"required"`
}

// List returns appointments matching the filter plus the total count.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	appointments, total, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list appointments")
	}
	return appointments, total, nil
}

// Get loads a single appointment.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointment")
	}
	return appointment, nil
}

// Create books a new appointment.
func (s *AppointmentService) Create(ctx context.Context, req CreateAppointmentRequest) (*models.Appointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid appointment payload")
	}
	if !req.EndAt.After(req.StartAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_at must be after start_at")
	}

	appointment := &models.Appointment{
		PractitionerID: req.PractitionerID,
		PatientID:      req.PatientID,
		Title:          req.Title,
		StartAt:        req.StartAt.UTC(),
		EndAt:          req.EndAt.UTC(),
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create appointment")
	}
	s.logger.Info("appointment booked",
		zap.String("appointment_id", appointment.ID),
		zap.String("practitioner_id", appointment.PractitionerID),
		zap.Time("start_at", appointment.StartAt))
	s.invalidate(ctx, appointment.PractitionerID)
	return appointment, nil
}

// Cancel marks an appointment cancelled. Cancelling twice is a conflict.
func (s *AppointmentService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.appointments.Cancel(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel appointment")
	}
	if !cancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "appointment is not booked")
	}
	appointment.Status = models.AppointmentStatusCancelled
	s.invalidate(ctx, appointment.PractitionerID)
	return appointment, nil
}

func (s *AppointmentService) invalidate(ctx context.Context, practitionerID string) {
	if s.timelines == nil {
		return
	}
	if err := s.timelines.InvalidateForPractitioner(ctx, practitionerID); err != nil {
		s.logger.Warn("timeline cache invalidation failed", zap.String("practitioner_id", practitionerID), zap.Error(err))
	}
}

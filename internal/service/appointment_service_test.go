package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
	appErrors "github.com/dhakalu/telehealth-web-app-sub001/pkg/errors"
)

type mockAppointmentRepo struct {
	appointments map[string]models.Appointment
}

func (m *mockAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	var result []models.Appointment
	for _, a := range m.appointments {
		if filter.PractitionerID != "" && filter.PractitionerID != a.PractitionerID {
			continue
		}
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, ok := m.appointments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &appointment, nil
}

func (m *mockAppointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusBooked
	}
	if m.appointments == nil {
		m.appointments = make(map[string]models.Appointment)
	}
	m.appointments[appointment.ID] = *appointment
	return nil
}

func (m *mockAppointmentRepo) Cancel(ctx context.Context, id string) (bool, error) {
	appointment, ok := m.appointments[id]
	if !ok || appointment.Status != models.AppointmentStatusBooked {
		return false, nil
	}
	appointment.Status = models.AppointmentStatusCancelled
	m.appointments[id] = appointment
	return true, nil
}

type mockPractitionerInvalidator struct {
	practitioners []string
}

func (m *mockPractitionerInvalidator) InvalidateForPractitioner(ctx context.Context, practitionerID string) error {
	m.practitioners = append(m.practitioners, practitionerID)
	return nil
}

func TestCreateAppointmentBooksAndInvalidates(t *testing.T) {
	repo := &mockAppointmentRepo{}
	invalidator := &mockPractitionerInvalidator{}
	svc := NewAppointmentService(repo, invalidator, zap.NewNop())

	practitionerID := uuid.NewString()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	appointment, err := svc.Create(context.Background(), CreateAppointmentRequest{
		PractitionerID: practitionerID,
		PatientID:      uuid.NewString(),
		Title:          "Checkup",
		StartAt:        start,
		EndAt:          start.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusBooked, appointment.Status)
	assert.Equal(t, []string{practitionerID}, invalidator.practitioners)
}

func TestCreateAppointmentAllowsOverlap(t *testing.T) {
	repo := &mockAppointmentRepo{}
	svc := NewAppointmentService(repo, nil, zap.NewNop())

	practitionerID := uuid.NewString()
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	req := CreateAppointmentRequest{
		PractitionerID: practitionerID,
		PatientID:      uuid.NewString(),
		Title:          "First",
		StartAt:        start,
		EndAt:          start.Add(time.Hour),
	}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	// A second visit over the same window books without conflict checks.
	req.Title = "Second"
	req.PatientID = uuid.NewString()
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, repo.appointments, 2)
}

func TestCreateAppointmentRejectsInvertedRange(t *testing.T) {
	svc := NewAppointmentService(&mockAppointmentRepo{}, nil, zap.NewNop())

	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), CreateAppointmentRequest{
		PractitionerID: uuid.NewString(),
		PatientID:      uuid.NewString(),
		Title:          "Checkup",
		StartAt:        start,
		EndAt:          start,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCancelAppointmentTwiceConflicts(t *testing.T) {
	repo := &mockAppointmentRepo{
		appointments: map[string]models.Appointment{
			"appt-1": {ID: "appt-1", PractitionerID: uuid.NewString(), Status: models.AppointmentStatusBooked},
		},
	}
	svc := NewAppointmentService(repo, nil, zap.NewNop())

	cancelled, err := svc.Cancel(context.Background(), "appt-1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(context.Background(), "appt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

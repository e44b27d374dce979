package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhakalu/telehealth-web-app-sub001/internal/models"
)

func TestAppointmentRepositoryListBetween(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "practitioner_id", "patient_id", "title", "start_at", "end_at", "status", "created_at", "updated_at"}).
		AddRow("a-1", "prac-1", "pat-1", "Checkup", from.Add(9*time.Hour), from.Add(9*time.Hour+30*time.Minute), models.AppointmentStatusBooked, now, now)
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE practitioner_id = .+ AND start_at >= .+ AND start_at < .+ AND status = .+ ORDER BY start_at ASC").
		WithArgs("prac-1", from, to, models.AppointmentStatusBooked).
		WillReturnRows(rows)

	appointments, err := repo.ListBetween(context.Background(), "prac-1", from, to)
	require.NoError(t, err)
	require.Len(t, appointments, 1)
	assert.Equal(t, "Checkup", appointments[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryListWithWindowFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "practitioner_id", "patient_id", "title", "start_at", "end_at", "status", "created_at", "updated_at"}).
		AddRow("a-1", "prac-1", "pat-1", "Checkup", from.Add(9*time.Hour), from.Add(10*time.Hour), models.AppointmentStatusBooked, now, now)
	mock.ExpectQuery("SELECT .+ FROM appointments WHERE 1=1 AND practitioner_id = .+ AND start_at >= .+ ORDER BY start_at ASC").
		WithArgs("prac-1", from).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM appointments WHERE 1=1 AND practitioner_id = .+ AND start_at >= .+").
		WithArgs("prac-1", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	appointments, total, err := repo.List(context.Background(), models.AppointmentFilter{
		PractitionerID: "prac-1",
		From:           &from,
	})
	require.NoError(t, err)
	assert.Len(t, appointments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO appointments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	appointment := &models.Appointment{
		PractitionerID: "prac-1",
		PatientID:      "pat-1",
		Title:          "Follow-up",
		StartAt:        time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC),
		EndAt:          time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), appointment))
	assert.Equal(t, models.AppointmentStatusBooked, appointment.Status)
	assert.NotEmpty(t, appointment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepositoryCancelAlreadyCancelled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAppointmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(models.AppointmentStatusCancelled, sqlmock.AnyArg(), "a-1", models.AppointmentStatusBooked).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cancelled, err := repo.Cancel(context.Background(), "a-1")
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package models

import "time"

// Appointment statuses surfaced to the portal.
const (
	AppointmentStatusBooked    = "BOOKED"
	AppointmentStatusCancelled = "CANCELLED"
)

// Appointment is a booked visit between a patient and a practitioner. The
// timeline engine treats appointments as immutable facts and overlays them on
// availability without arbitrating conflicts.
type Appointment struct {
	ID             string    `db:"id" json:"id"`
	PractitionerID string    `db:"practitioner_id" json:"practitioner_id"`
	PatientID      string    `db:"patient_id" json:"patient_id"`
	Title          string    `db:"title" json:"title"`
	StartAt        time.Time `db:"start_at" json:"start_at"`
	EndAt          time.Time `db:"end_at" json:"end_at"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// AppointmentFilter narrows appointment listings to a practitioner and window.
type AppointmentFilter struct {
	PractitionerID string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}

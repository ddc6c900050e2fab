package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/careslot/doctor-availability/internal/schedule"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains the write-side DB interactions the booking workflow
// needs. Reads consumed by the availability engine live behind the
// schedule package's interfaces instead.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*schedule.Doctor, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*schedule.Patient, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error)

	CreatePendingAppointment(ctx context.Context, doctorID, patientID uuid.UUID, start, end time.Time, reason *string) (*schedule.Appointment, error)
	UpdateAppointmentTimes(ctx context.Context, id uuid.UUID, start, end time.Time) (*schedule.Appointment, error)

	// UpdateAppointmentStatus is a compare-and-set: the row is only updated
	// when its current status equals from, otherwise ErrAppointmentNotFound.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to schedule.AppointmentStatus) (*schedule.Appointment, error)
}

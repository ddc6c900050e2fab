package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
	ErrShiftNotFound   = errors.New("shift not found")
)

// ShiftRepository reads a doctor's recurring weekly working hours.
type ShiftRepository interface {
	ListShifts(ctx context.Context, doctorID uuid.UUID) ([]WeeklyShift, error)
}

// BlockoutRepository reads ad-hoc unavailability intervals. Implementations
// must return only blockouts overlapping [rangeStart, rangeEnd).
type BlockoutRepository interface {
	ListBlockouts(ctx context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time) ([]Blockout, error)
}

// AppointmentRepository reads booked appointments. ListOccupying must return
// only appointments whose status still occupies a slot (pending or confirmed)
// and which overlap [rangeStart, rangeEnd); excludeID, when non-nil, drops the
// appointment being rescheduled from the result.
type AppointmentRepository interface {
	ListOccupying(ctx context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time, excludeID *uuid.UUID) ([]Appointment, error)
}

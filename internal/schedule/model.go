package schedule

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending           AppointmentStatus = "pending"
	StatusConfirmed         AppointmentStatus = "confirmed"
	StatusCompleted         AppointmentStatus = "completed"
	StatusCanceledByDoctor  AppointmentStatus = "canceled_by_doctor"
	StatusCanceledByPatient AppointmentStatus = "canceled_by_patient"
	StatusNoShow            AppointmentStatus = "no_show"
)

// OccupiesSlot reports whether an appointment in this status still blocks
// its time interval. Cancellation frees a slot implicitly: there is no
// explicit release step anywhere, this predicate is the only rule.
func (s AppointmentStatus) OccupiesSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether moving an appointment from one status to
// another is legal. pending -> confirmed -> completed is the happy path;
// pending and confirmed may also terminate in a cancellation or no_show.
func CanTransition(from, to AppointmentStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCanceledByDoctor || to == StatusCanceledByPatient || to == StatusNoShow
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCanceledByDoctor || to == StatusCanceledByPatient || to == StatusNoShow
	default:
		return false
	}
}

type BlockoutType string

const (
	BlockoutVacation   BlockoutType = "vacation"
	BlockoutConference BlockoutType = "conference"
	BlockoutDailyBreak BlockoutType = "daily_break"
	BlockoutSickLeave  BlockoutType = "sick_leave"
)

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WeeklyShift is a recurring working-hours window for one weekday.
// StartClock and EndClock are "HH:MM" civil-time strings interpreted against
// each calendar day being evaluated. A doctor may hold several shifts on the
// same weekday (e.g. a morning and an evening block).
type WeeklyShift struct {
	ID           uuid.UUID
	DoctorID     uuid.UUID
	DayOfWeek    time.Weekday
	StartClock   string
	EndClock     string
	SlotDuration int // minutes, the doctor's preferred grid
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Blockout is a one-off unavailability interval overriding any shift.
type Blockout struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	Type      BlockoutType
	Reason    string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Status    AppointmentStatus
	Reason    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot is a derived bookable window. Slots are computed on demand and never
// persisted.
type Slot struct {
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
}

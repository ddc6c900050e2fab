package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/careslot/doctor-availability/internal/redis"
	"github.com/careslot/doctor-availability/internal/schedule"
)

var (
	ErrDoctorBeingBooked       = errors.New("doctor is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotReschedulable        = errors.New("only pending or confirmed appointments can be rescheduled")
)

// ConflictError carries the first scheduling rule the proposed time violates.
// Its message is the booking rejection reason shown to the caller.
type ConflictError struct {
	Conflict *schedule.Conflict
}

func (e *ConflictError) Error() string {
	return e.Conflict.Message
}

// Service owns the appointment write workflow. Every write that places an
// appointment on the calendar runs the conflict check and the insert/update
// inside a per-doctor distributed lock, so two concurrent requests for
// overlapping times cannot both pass validation.
type Service struct {
	repo   Repository
	engine *schedule.Engine
	locker redisclient.Locker
}

func NewService(repo Repository, engine *schedule.Engine, locker redisclient.Locker) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		locker: locker,
	}
}

// Book validates the requested interval and creates a pending appointment.
func (s *Service) Book(ctx context.Context, doctorID, patientID uuid.UUID, start time.Time, durationMinutes int, reason *string) (*schedule.Appointment, error) {
	if durationMinutes <= 0 {
		return nil, schedule.ErrInvalidDuration
	}

	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, schedule.ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, schedule.ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	var created *schedule.Appointment

	err := s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		conflict, err := s.engine.CheckTimeConflicts(lockCtx, doctorID, start, end, nil)
		if err != nil {
			return fmt.Errorf("check time conflicts: %w", err)
		}
		if conflict != nil {
			return &ConflictError{Conflict: conflict}
		}

		appt, err := s.repo.CreatePendingAppointment(lockCtx, doctorID, patientID, start, end, reason)
		if err != nil {
			return fmt.Errorf("create pending appointment: %w", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBeingBooked
		}
		return nil, err
	}

	return created, nil
}

// Reschedule moves a pending or confirmed appointment to a new start time,
// re-validating the interval with the appointment itself carved out of the
// overlap check.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) (*schedule.Appointment, error) {
	if durationMinutes <= 0 {
		return nil, schedule.ErrInvalidDuration
	}

	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.Status.OccupiesSlot() {
		return nil, ErrNotReschedulable
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	var updated *schedule.Appointment

	err = s.locker.WithDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		excludeID := appt.ID
		conflict, err := s.engine.CheckTimeConflicts(lockCtx, appt.DoctorID, start, end, &excludeID)
		if err != nil {
			return fmt.Errorf("check time conflicts: %w", err)
		}
		if conflict != nil {
			return &ConflictError{Conflict: conflict}
		}

		moved, err := s.repo.UpdateAppointmentTimes(lockCtx, appt.ID, start, end)
		if err != nil {
			return fmt.Errorf("update appointment times: %w", err)
		}

		updated = moved
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBeingBooked
		}
		return nil, err
	}

	return updated, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error) {
	return s.transition(ctx, id, schedule.StatusConfirmed)
}

// Cancel releases the appointment's interval by moving it to the appropriate
// cancellation status. No explicit slot release happens anywhere: the
// occupying-status predicate frees the time on the next availability read.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, byDoctor bool) (*schedule.Appointment, error) {
	to := schedule.StatusCanceledByPatient
	if byDoctor {
		to = schedule.StatusCanceledByDoctor
	}
	return s.transition(ctx, id, to)
}

// MarkNoShow records that the patient did not attend.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error) {
	return s.transition(ctx, id, schedule.StatusNoShow)
}

// Complete marks a confirmed appointment as carried out.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error) {
	return s.transition(ctx, id, schedule.StatusCompleted)
}

// Get retrieves an appointment by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*schedule.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to schedule.AppointmentStatus) (*schedule.Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !schedule.CanTransition(appt.Status, to) {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost the compare-and-set: someone changed the status first.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	return updated, nil
}

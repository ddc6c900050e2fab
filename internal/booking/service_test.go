package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/careslot/doctor-availability/internal/redis"
	"github.com/careslot/doctor-availability/internal/schedule"
)

// fakeBackend implements both the booking write repository and the three
// read interfaces the engine consumes, over the same in-memory data. A
// booking created through the service is immediately visible to the engine,
// like it would be against Postgres.
type fakeBackend struct {
	doctors  map[uuid.UUID]schedule.Doctor
	patients map[uuid.UUID]schedule.Patient
	shifts   []schedule.WeeklyShift
	appts    map[uuid.UUID]*schedule.Appointment
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		doctors:  make(map[uuid.UUID]schedule.Doctor),
		patients: make(map[uuid.UUID]schedule.Patient),
		appts:    make(map[uuid.UUID]*schedule.Appointment),
	}
}

func (f *fakeBackend) GetDoctorByID(_ context.Context, id uuid.UUID) (*schedule.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, schedule.ErrDoctorNotFound
	}
	return &d, nil
}

func (f *fakeBackend) GetPatientByID(_ context.Context, id uuid.UUID) (*schedule.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, schedule.ErrPatientNotFound
	}
	return &p, nil
}

func (f *fakeBackend) GetAppointmentByID(_ context.Context, id uuid.UUID) (*schedule.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeBackend) CreatePendingAppointment(_ context.Context, doctorID, patientID uuid.UUID, start, end time.Time, reason *string) (*schedule.Appointment, error) {
	a := &schedule.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		StartTime: start,
		EndTime:   end,
		Status:    schedule.StatusPending,
		Reason:    reason,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.appts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *fakeBackend) UpdateAppointmentTimes(_ context.Context, id uuid.UUID, start, end time.Time) (*schedule.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.StartTime = start
	a.EndTime = end
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (f *fakeBackend) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to schedule.AppointmentStatus) (*schedule.Appointment, error) {
	a, ok := f.appts[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

// Read interfaces consumed by the engine.

func (f *fakeBackend) ListShifts(_ context.Context, doctorID uuid.UUID) ([]schedule.WeeklyShift, error) {
	var result []schedule.WeeklyShift
	for _, sh := range f.shifts {
		if sh.DoctorID == doctorID {
			result = append(result, sh)
		}
	}
	return result, nil
}

func (f *fakeBackend) ListBlockouts(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]schedule.Blockout, error) {
	return nil, nil
}

func (f *fakeBackend) ListOccupying(_ context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time, excludeID *uuid.UUID) ([]schedule.Appointment, error) {
	var result []schedule.Appointment
	for _, a := range f.appts {
		if a.DoctorID != doctorID || !a.Status.OccupiesSlot() {
			continue
		}
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.StartTime.Before(rangeEnd) && a.EndTime.After(rangeStart) {
			result = append(result, *a)
		}
	}
	return result, nil
}

type fakeLocker struct {
	contended bool
	calls     int
}

func (l *fakeLocker) WithDoctorLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	l.calls++
	if l.contended {
		return redisclient.ErrLockNotAcquired
	}
	return fn(ctx)
}

var (
	doctorID  = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	patientID = uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000001")

	// 2025-06-02 is a Monday.
	monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*Service, *fakeBackend, *fakeLocker) {
	t.Helper()

	backend := newFakeBackend()
	backend.doctors[doctorID] = schedule.Doctor{ID: doctorID, Name: "Dr. Grey"}
	backend.patients[patientID] = schedule.Patient{ID: patientID, Name: "A. Patient"}
	backend.shifts = []schedule.WeeklyShift{{
		ID:           uuid.New(),
		DoctorID:     doctorID,
		DayOfWeek:    time.Monday,
		StartClock:   "09:00",
		EndClock:     "17:00",
		SlotDuration: 30,
	}}

	engine := schedule.NewEngine(backend, backend, backend, time.UTC)
	locker := &fakeLocker{}
	return NewService(backend, engine, locker), backend, locker
}

func TestBookCreatesPendingAppointment(t *testing.T) {
	svc, _, locker := newTestService(t)

	appt, err := svc.Book(context.Background(), doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)

	assert.Equal(t, schedule.StatusPending, appt.Status)
	assert.Equal(t, monday.Add(10*time.Hour), appt.StartTime)
	assert.Equal(t, monday.Add(10*time.Hour+30*time.Minute), appt.EndTime)
	assert.Equal(t, 1, locker.calls, "booking must run under the doctor lock")
}

func TestBookRejectsOverlap(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)

	_, err = svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour+15*time.Minute), 30, nil)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, schedule.ConflictAppointment, conflictErr.Conflict.Rule)
}

func TestBookRejectsOutsideWorkingHours(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), doctorID, patientID, monday.Add(8*time.Hour), 30, nil)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, schedule.ConflictOutsideHours, conflictErr.Conflict.Rule)
	assert.Contains(t, err.Error(), "outside working hours")
}

func TestBookUnknownDoctorAndPatient(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Book(ctx, uuid.New(), patientID, monday.Add(10*time.Hour), 30, nil)
	assert.ErrorIs(t, err, schedule.ErrDoctorNotFound)

	_, err = svc.Book(ctx, doctorID, uuid.New(), monday.Add(10*time.Hour), 30, nil)
	assert.ErrorIs(t, err, schedule.ErrPatientNotFound)
}

func TestBookLockContention(t *testing.T) {
	svc, _, locker := newTestService(t)
	locker.contended = true

	_, err := svc.Book(context.Background(), doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	assert.ErrorIs(t, err, ErrDoctorBeingBooked)
}

func TestBookInvalidDuration(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), doctorID, patientID, monday.Add(10*time.Hour), 0, nil)
	assert.ErrorIs(t, err, schedule.ErrInvalidDuration)
}

func TestCancelFreesTheSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	start := monday.Add(10 * time.Hour)

	first, err := svc.Book(ctx, doctorID, patientID, start, 30, nil)
	require.NoError(t, err)

	_, err = svc.Book(ctx, doctorID, patientID, start, 30, nil)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)

	canceled, err := svc.Cancel(ctx, first.ID, false)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusCanceledByPatient, canceled.Status)

	// The canceled appointment no longer occupies the interval.
	_, err = svc.Book(ctx, doctorID, patientID, start, 30, nil)
	assert.NoError(t, err)
}

func TestRescheduleExcludesSelfFromOverlapCheck(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)

	// Shift by 15 minutes: overlaps itself, and only itself.
	moved, err := svc.Reschedule(ctx, appt.ID, monday.Add(10*time.Hour+15*time.Minute), 30)
	require.NoError(t, err)
	assert.Equal(t, monday.Add(10*time.Hour+15*time.Minute), moved.StartTime)
}

func TestRescheduleRejectsOccupiedTarget(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)
	_, err = svc.Book(ctx, doctorID, patientID, monday.Add(11*time.Hour), 30, nil)
	require.NoError(t, err)

	_, err = svc.Reschedule(ctx, first.ID, monday.Add(11*time.Hour), 30)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, schedule.ConflictAppointment, conflictErr.Conflict.Rule)
}

func TestRescheduleRejectsNonOccupyingStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, appt.ID, true)
	require.NoError(t, err)

	_, err = svc.Reschedule(ctx, appt.ID, monday.Add(11*time.Hour), 30)
	assert.ErrorIs(t, err, ErrNotReschedulable)
}

func TestStatusTransitions(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusConfirmed, confirmed.Status)

	// Confirming twice is not a legal transition.
	_, err = svc.Confirm(ctx, appt.ID)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	completed, err := svc.Complete(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = svc.Cancel(ctx, appt.ID, false)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestMarkNoShow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	appt, err := svc.Book(ctx, doctorID, patientID, monday.Add(10*time.Hour), 30, nil)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, appt.ID)
	require.NoError(t, err)

	noShow, err := svc.MarkNoShow(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusNoShow, noShow.Status)
	assert.False(t, noShow.Status.OccupiesSlot())
}

func TestGetUnknownAppointment(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

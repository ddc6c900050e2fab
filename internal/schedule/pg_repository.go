package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository implements the three read interfaces the engine consumes.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanShift(row pgx.Row) (*WeeklyShift, error) {
	var sh WeeklyShift
	var dow int

	err := row.Scan(
		&sh.ID,
		&sh.DoctorID,
		&dow,
		&sh.StartClock,
		&sh.EndClock,
		&sh.SlotDuration,
		&sh.CreatedAt,
		&sh.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	sh.DayOfWeek = time.Weekday(dow)
	return &sh, nil
}

func scanBlockout(row pgx.Row) (*Blockout, error) {
	var b Blockout

	err := row.Scan(
		&b.ID,
		&b.DoctorID,
		&b.Type,
		&b.Reason,
		&b.StartTime,
		&b.EndTime,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var reason *string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&reason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Reason = reason
	return &a, nil
}

// Interface methods

func (r *PgRepository) ListShifts(ctx context.Context, doctorID uuid.UUID) ([]WeeklyShift, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, day_of_week, start_clock, end_clock, slot_duration, created_at, updated_at
		FROM weekly_shifts
		WHERE doctor_id = $1
		ORDER BY day_of_week, start_clock
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WeeklyShift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sh)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListBlockouts(ctx context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time) ([]Blockout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, type, reason, start_time, end_time, created_at
		FROM blockouts
		WHERE doctor_id = $1
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`, doctorID, rangeStart, rangeEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Blockout
	for rows.Next() {
		b, err := scanBlockout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListOccupying(ctx context.Context, doctorID uuid.UUID, rangeStart, rangeEnd time.Time, excludeID *uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		  AND ($4::uuid IS NULL OR id <> $4)
		ORDER BY start_time
	`, doctorID, rangeStart, rangeEnd, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

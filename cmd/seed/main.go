package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careslot/doctor-availability/internal/db"
	"github.com/careslot/doctor-availability/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	doctorIDs, err := seedDoctors(context.Background(), pool, 50)
	if err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedWeeklyShifts(context.Background(), pool, doctorIDs); err != nil {
		log.Fatalf("seed weekly shifts: %v", err)
	}
	if err := seedBlockouts(context.Background(), pool, doctorIDs); err != nil {
		log.Fatalf("seed blockouts: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 5000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("doctors seeded")
	return ids, nil
}

// seedWeeklyShifts gives every doctor a Monday-to-Friday schedule and roughly
// a third of them a second, evening shift on some days.
func seedWeeklyShifts(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Printf("seeding shifts for %d doctors", len(doctorIDs))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, doctorID := range doctorIDs {
		slotDur := []int{15, 20, 30}[gofakeit.Number(0, 2)]

		for dow := int(time.Monday); dow <= int(time.Friday); dow++ {
			startHour := gofakeit.Number(8, 10)
			endHour := gofakeit.Number(15, 17)

			if err := insertShift(ctx, tx, doctorID, dow, startHour, endHour, slotDur); err != nil {
				return err
			}

			if gofakeit.Number(0, 2) == 0 {
				if err := insertShift(ctx, tx, doctorID, dow, 18, 21, slotDur); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("weekly shifts seeded")
	return nil
}

func insertShift(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID, dow, startHour, endHour, slotDur int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO weekly_shifts (id, doctor_id, day_of_week, start_clock, end_clock, slot_duration, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	`, uuid.New(), doctorID, dow, fmt.Sprintf("%02d:00", startHour), fmt.Sprintf("%02d:00", endHour), slotDur)
	return err
}

func seedBlockouts(ctx context.Context, pool *pgxpool.Pool, doctorIDs []uuid.UUID) error {
	log.Printf("seeding blockouts for %d doctors", len(doctorIDs))

	types := []schedule.BlockoutType{
		schedule.BlockoutVacation,
		schedule.BlockoutConference,
		schedule.BlockoutDailyBreak,
		schedule.BlockoutSickLeave,
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, doctorID := range doctorIDs {
		for i := 0; i < gofakeit.Number(0, 3); i++ {
			bt := types[gofakeit.Number(0, len(types)-1)]
			start := time.Now().AddDate(0, 0, gofakeit.Number(1, 60)).Truncate(24 * time.Hour)
			days := 1
			if bt == schedule.BlockoutVacation {
				days = gofakeit.Number(3, 14)
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO blockouts (id, doctor_id, type, reason, start_time, end_time, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, now())
			`, uuid.New(), doctorID, bt, gofakeit.Sentence(4), start, start.AddDate(0, 0, days))
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("blockouts seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}

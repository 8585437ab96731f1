package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/hackgods/patient-intake-scheduling/internal/db"
	"github.com/hackgods/patient-intake-scheduling/pkg/logging"
)

type doctor struct {
	id       string
	name     string
	location string
}

var doctors = []doctor{
	{id: "D001", name: "Dr. Evelyn Reed", location: "Downtown"},
	{id: "D002", name: "Dr. Marcus Chen", location: "Northside"},
	{id: "D003", name: "Dr. Priya Patel", location: "Downtown"},
	{id: "D004", name: "Dr. Samuel Okafor", location: "Lakeside"},
}

// Morning and afternoon blocks, as hour pairs.
var dailyBlocks = [][2]int{{9, 12}, {13, 17}}

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", "seed")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Error("POSTGRES_DSN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	patients := getInt("SEED_PATIENTS", 500)
	days := getInt("SEED_DAYS", 21)
	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	if err := seedPatients(context.Background(), pool, faker, patients, logger); err != nil {
		logger.Error("seed patients", "error", err)
		os.Exit(1)
	}
	if err := seedScheduleBlocks(context.Background(), pool, time.Now(), days, logger); err != nil {
		logger.Error("seed schedule blocks", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete")
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int, logger *logging.Logger) error {
	logger.Info("seeding patients", "count", count)

	const batchSize = 500

	// A known returning patient so scripted conversations have someone to find.
	if _, err := pool.Exec(ctx, `
		INSERT INTO patients (patient_id, first_name, last_name, date_of_birth, visit_history, phone, email)
		VALUES ('P00001', 'John', 'Smith', '1980-04-12', 3, '555-0100', 'john.smith@example.com')
		ON CONFLICT (patient_id) DO NOTHING
	`); err != nil {
		return err
	}

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
			dob := faker.DateRange(time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC))

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (patient_id, first_name, last_name, date_of_birth, visit_history, phone, email)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (patient_id) DO NOTHING
			`,
				fmt.Sprintf("P%05d", i+2),
				faker.FirstName(),
				faker.LastName(),
				dob.Format("2006-01-02"),
				faker.Number(0, 12),
				faker.Phone(),
				faker.Email(),
			)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		logger.Info("patients seeded", "done", end, "total", count)
	}

	return nil
}

// seedScheduleBlocks writes weekday blocks for every doctor, starting today.
func seedScheduleBlocks(ctx context.Context, pool *pgxpool.Pool, from time.Time, days int, logger *logging.Logger) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for d := 0; d < days; d++ {
		day := from.AddDate(0, 0, d)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		for _, doc := range doctors {
			for _, block := range dailyBlocks {
				_, err := tx.Exec(ctx, `
					INSERT INTO schedule_blocks (doctor_id, doctor_name, location, block_date, start_time, end_time)
					VALUES ($1, $2, $3, $4::date, $5::time, $6::time)
				`,
					doc.id,
					doc.name,
					doc.location,
					day.Format("2006-01-02"),
					fmt.Sprintf("%02d:00", block[0]),
					fmt.Sprintf("%02d:00", block[1]),
				)
				if err != nil {
					return err
				}
				inserted++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("schedule blocks seeded", "count", inserted, "days", days)
	return nil
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/patient-intake-scheduling/internal/db"
	"github.com/hackgods/patient-intake-scheduling/internal/scheduling"
)

// slotUniqueIndex keeps one confirmed booking per doctor and start time.
const slotUniqueIndex = "uq_appointments_doctor_start"

// PgRepository stores dates and times as clinic-local DATE/TIME columns,
// so every value crossing the boundary is interpreted in loc.
type PgRepository struct {
	pool db.DBTX
	loc  *time.Location
}

func NewPgRepository(pool db.DBTX, loc *time.Location) *PgRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PgRepository{pool: pool, loc: loc}
}

// Helpers

func (r *PgRepository) localTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q %q: %w", date, clock, err)
	}
	return t, nil
}

func (r *PgRepository) dateArg(t time.Time) string {
	return t.In(r.loc).Format(dateLayout)
}

func (r *PgRepository) scanBlock(row pgx.Row) (scheduling.Block, error) {
	var b scheduling.Block
	var date, start, end string

	if err := row.Scan(&b.DoctorID, &b.DoctorName, &b.Location, &date, &start, &end); err != nil {
		return scheduling.Block{}, err
	}

	var err error
	if b.Start, err = r.localTime(date, start); err != nil {
		return scheduling.Block{}, err
	}
	if b.End, err = r.localTime(date, end); err != nil {
		return scheduling.Block{}, err
	}
	return b, nil
}

// Interface methods

func (r *PgRepository) ListScheduleBlocks(ctx context.Context, from, to time.Time) ([]scheduling.Block, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doctor_id, doctor_name, location,
		       to_char(block_date, 'YYYY-MM-DD'),
		       to_char(start_time, 'HH24:MI'),
		       to_char(end_time, 'HH24:MI')
		FROM schedule_blocks
		WHERE block_date BETWEEN $1::date AND $2::date
		ORDER BY block_date, start_time, id
	`, r.dateArg(from), r.dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("query schedule blocks: %w", err)
	}
	defer rows.Close()

	var result []scheduling.Block
	for rows.Next() {
		b, err := r.scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule block: %w", err)
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListBookedStarts(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(appointment_date, 'YYYY-MM-DD'),
		       to_char(appointment_time, 'HH24:MI')
		FROM appointments
		WHERE status = $1
		  AND appointment_date BETWEEN $2::date AND $3::date
	`, string(StatusConfirmed), r.dateArg(from), r.dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("query booked starts: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var date, clock string
		if err := rows.Scan(&date, &clock); err != nil {
			return nil, fmt.Errorf("scan booked start: %w", err)
		}
		t, err := r.localTime(date, clock)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) IsBooked(ctx context.Context, doctorName string, start time.Time) (bool, error) {
	local := start.In(r.loc)

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE lower(doctor_name) = lower($1)
			  AND appointment_date = $2::date
			  AND appointment_time = $3::time
			  AND status = $4
		)
	`, doctorName, local.Format(dateLayout), local.Format(timeLayout), string(StatusConfirmed)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking: %w", err)
	}
	return exists, nil
}

func (r *PgRepository) InsertAppointment(ctx context.Context, a Appointment) error {
	a.Start = a.Start.In(r.loc)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (
			appointment_id, patient_id, doctor_name, location,
			appointment_date, appointment_time, is_new_patient, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, $7, $8, COALESCE($9, now()))
	`,
		a.ID,
		a.PatientID,
		a.DoctorName,
		a.Location,
		a.Date(),
		a.Time(),
		a.IsNewPatient,
		string(a.Status),
		nullableTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) ListReport(ctx context.Context) ([]ReportRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.appointment_id, a.patient_id, p.first_name, p.last_name,
		       to_char(a.appointment_date, 'YYYY-MM-DD'),
		       to_char(a.appointment_time, 'HH24:MI'),
		       a.doctor_name, a.status, a.is_new_patient, p.phone, p.email
		FROM appointments a
		LEFT JOIN patients p ON p.patient_id = a.patient_id
		ORDER BY a.appointment_date, a.appointment_time, a.appointment_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	defer rows.Close()

	var result []ReportRow
	for rows.Next() {
		var rr ReportRow
		var status string
		err := rows.Scan(
			&rr.AppointmentID,
			&rr.PatientID,
			&rr.FirstName,
			&rr.LastName,
			&rr.Date,
			&rr.Time,
			&rr.DoctorName,
			&status,
			&rr.IsNewPatient,
			&rr.Phone,
			&rr.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		rr.Status = Status(status)
		result = append(result, rr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

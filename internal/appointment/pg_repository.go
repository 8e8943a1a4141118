package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

const pgUniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

const appointmentColumns = `id, patient_id, dentist_id, date, start_minute, duration_minutes,
	service, cost, notes, status, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}

func scanDentist(row pgx.Row) (*Dentist, error) {
	var d Dentist

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialization,
		&d.License,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDentistNotFound
		}
		return nil, err
	}

	return &d, nil
}

func scanRule(row pgx.Row) (*AvailabilityRule, error) {
	var r AvailabilityRule
	var start, end int16

	if err := row.Scan(&r.ID, &r.DentistID, &r.DayOfWeek, &start, &end, &r.IsAvailable); err != nil {
		return nil, err
	}

	r.StartTime = caltime.TimeOfDay(start)
	r.EndTime = caltime.TimeOfDay(end)
	return &r, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date time.Time
	var start, duration int16

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DentistID,
		&date,
		&start,
		&duration,
		&a.Service,
		&a.Cost,
		&a.Notes,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Date = caltime.DateOf(date)
	a.StartTime = caltime.TimeOfDay(start)
	a.DurationMinutes = int(duration)
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	result := []Appointment{}
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

// pgDate passes a calendar day to a DATE parameter.
func pgDate(d caltime.Date) time.Time {
	return d.In(time.UTC)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetDentistByID(ctx context.Context, id uuid.UUID) (*Dentist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialization, license, created_at, updated_at
		FROM dentists
		WHERE id = $1
	`, id)
	return scanDentist(row)
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, p.ID, p.Name, p.Email, p.Phone)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PgRepository) CreateDentist(ctx context.Context, d *Dentist) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dentists (id, name, specialization, license, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, d.ID, d.Name, d.Specialization, d.License)
	if err != nil {
		return fmt.Errorf("insert dentist: %w", err)
	}
	return nil
}

func (r *PgRepository) ListDentists(ctx context.Context) ([]Dentist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialization, license, created_at, updated_at
		FROM dentists
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Dentist{}
	for rows.Next() {
		d, err := scanDentist(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func (r *PgRepository) ListPatients(ctx context.Context, limit int) ([]Patient, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM patients
		ORDER BY name
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) ListRules(ctx context.Context, dentistID uuid.UUID) ([]AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, dentist_id, day_of_week, start_minute, end_minute, is_available
		FROM availability_rules
		WHERE dentist_id = $1
		ORDER BY day_of_week, start_minute
	`, dentistID)
	if err != nil {
		return nil, err
	}
	return collectRules(rows)
}

func (r *PgRepository) ListRulesForDay(ctx context.Context, dentistID uuid.UUID, dayOfWeek int) ([]AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, dentist_id, day_of_week, start_minute, end_minute, is_available
		FROM availability_rules
		WHERE dentist_id = $1 AND day_of_week = $2
		ORDER BY start_minute
	`, dentistID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	return collectRules(rows)
}

func collectRules(rows pgx.Rows) ([]AvailabilityRule, error) {
	defer rows.Close()

	result := []AvailabilityRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ReplaceRules(ctx context.Context, dentistID uuid.UUID, rules []AvailabilityRule) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM availability_rules WHERE dentist_id = $1`, dentistID); err != nil {
		return fmt.Errorf("clear availability rules: %w", err)
	}

	for _, rule := range rules {
		_, err := tx.Exec(ctx, `
			INSERT INTO availability_rules (id, dentist_id, day_of_week, start_minute, end_minute, is_available, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
		`, rule.ID, dentistID, rule.DayOfWeek, int16(rule.StartTime), int16(rule.EndTime), rule.IsAvailable)
		if err != nil {
			return fmt.Errorf("insert availability rule: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsForDentist(ctx context.Context, dentistID uuid.UUID, date caltime.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE dentist_id = $1 AND date = $2
		ORDER BY start_minute, created_at
	`, dentistID, pgDate(date))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsOn(ctx context.Context, date caltime.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1
		ORDER BY start_minute, created_at
	`, pgDate(date))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY date, start_minute, created_at
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsByStatus(ctx context.Context, status AppointmentStatus, from, to caltime.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, start_minute, created_at
	`, status, pgDate(from), pgDate(to))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+appointmentColumns+`
	`,
		a.ID, a.PatientID, a.DentistID, pgDate(a.Date), int16(a.StartTime), int16(a.DurationMinutes),
		a.Service, a.Cost, a.Notes, a.Status, a.CreatedAt, a.UpdatedAt,
	)

	stored, err := scanAppointment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotConflict
		}
		return err
	}

	*a = *stored
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
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

var (
	_ Repository      = (*PgRepository)(nil)
	_ DirectoryWriter = (*PgRepository)(nil)
)

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/personalai/assistant/internal/models"
)

// ─── Reservations ─────────────────────────────────────────────────────────────

const reservationColumns = `id, employee_id, start_date::text, end_date::text, reservation_type,
	shift_start::text, shift_end::text, work_date::text`

func scanReservation(row scanner) (models.Reservation, error) {
	var r models.Reservation
	var emp sql.NullInt64
	var start, end, shiftStart, shiftEnd, workDate sql.NullString
	if err := row.Scan(&r.ID, &emp, &start, &end, &r.ReservationType, &shiftStart, &shiftEnd, &workDate); err != nil {
		return models.Reservation{}, err
	}
	r.EmployeeID = nullInt(emp)
	r.StartDate = nullString(start)
	r.EndDate = nullString(end)
	r.ShiftStart = nullString(shiftStart)
	r.ShiftEnd = nullString(shiftEnd)
	r.WorkDate = nullString(workDate)
	return r, nil
}

func (s *Store) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func (s *Store) GetReservation(ctx context.Context, id int64) (models.Reservation, error) {
	r, err := scanReservation(s.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return models.Reservation{}, fmt.Errorf("get reservation %d: %w", id, translate(err))
	}
	return r, nil
}

func (s *Store) CreateReservation(ctx context.Context, in models.ReservationInput) (models.Reservation, error) {
	query := `
INSERT INTO reservations (employee_id, start_date, end_date, reservation_type, shift_start, shift_end, work_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + reservationColumns
	r, err := scanReservation(s.db.QueryRowContext(ctx, query,
		in.EmployeeID, in.StartDate, in.EndDate, in.ReservationType, in.ShiftStart, in.ShiftEnd, in.WorkDate))
	if err != nil {
		return models.Reservation{}, fmt.Errorf("create reservation: %w", translate(err))
	}
	return r, nil
}

func (s *Store) UpdateReservation(ctx context.Context, id int64, in models.ReservationInput) (models.Reservation, error) {
	query := `
UPDATE reservations SET employee_id = $2, start_date = $3, end_date = $4, reservation_type = $5,
	shift_start = $6, shift_end = $7, work_date = $8
WHERE id = $1
RETURNING ` + reservationColumns
	r, err := scanReservation(s.db.QueryRowContext(ctx, query,
		id, in.EmployeeID, in.StartDate, in.EndDate, in.ReservationType, in.ShiftStart, in.ShiftEnd, in.WorkDate))
	if err != nil {
		return models.Reservation{}, fmt.Errorf("update reservation %d: %w", id, translate(err))
	}
	return r, nil
}

func (s *Store) DeleteReservation(ctx context.Context, id int64) (models.Reservation, error) {
	r, err := scanReservation(s.db.QueryRowContext(ctx, `DELETE FROM reservations WHERE id = $1 RETURNING `+reservationColumns, id))
	if err != nil {
		return models.Reservation{}, fmt.Errorf("delete reservation %d: %w", id, translate(err))
	}
	return r, nil
}

// ─── Appointments ─────────────────────────────────────────────────────────────

const appointmentColumns = `id, employee_id, title, description, start_time, end_time, status`

func scanAppointment(row scanner) (models.Appointment, error) {
	var a models.Appointment
	var desc sql.NullString
	if err := row.Scan(&a.ID, &a.EmployeeID, &a.Title, &desc, &a.StartTime, &a.EndTime, &a.Status); err != nil {
		return models.Appointment{}, err
	}
	a.Description = nullString(desc)
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (s *Store) CreateAppointment(ctx context.Context, in models.AppointmentInput) (models.Appointment, error) {
	query := `
INSERT INTO appointments (employee_id, title, description, start_time, end_time, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + appointmentColumns
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query,
		in.EmployeeID, in.Title, in.Description, in.StartTime, in.EndTime, in.Status))
	if err != nil {
		return models.Appointment{}, fmt.Errorf("create appointment: %w", translate(err))
	}
	return a, nil
}

// ─── Schedules ────────────────────────────────────────────────────────────────

const scheduleColumns = `id, employee_id, appointment_id, date::text, start_time::text, end_time::text`

func scanSchedule(row scanner) (models.Schedule, error) {
	var sc models.Schedule
	if err := row.Scan(&sc.ID, &sc.EmployeeID, &sc.AppointmentID, &sc.Date, &sc.StartTime, &sc.EndTime); err != nil {
		return models.Schedule{}, err
	}
	return sc, nil
}

func (s *Store) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scheduleColumns+` FROM schedules ORDER BY date, start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []models.Schedule{}
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

// CreateSchedule inserts the schedule unless any schedule on the same date
// overlaps the requested time range, in which case ErrSlotUnavailable is returned.
func (s *Store) CreateSchedule(ctx context.Context, in models.ScheduleInput) (models.Schedule, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	taken, err := slotTaken(ctx, tx, in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return models.Schedule{}, err
	}
	if taken {
		return models.Schedule{}, ErrSlotUnavailable
	}

	query := `
INSERT INTO schedules (employee_id, appointment_id, date, start_time, end_time)
VALUES ($1, $2, $3::date, $4::time, $5::time)
RETURNING ` + scheduleColumns
	sc, err := scanSchedule(tx.QueryRowContext(ctx, query, in.EmployeeID, in.AppointmentID, in.Date, in.StartTime, in.EndTime))
	if err != nil {
		return models.Schedule{}, fmt.Errorf("create schedule: %w", translate(err))
	}
	if err := tx.Commit(); err != nil {
		return models.Schedule{}, fmt.Errorf("commit schedule: %w", err)
	}
	return sc, nil
}

func slotTaken(ctx context.Context, q dbTX, date, start, end string) (bool, error) {
	query := `
SELECT EXISTS (
	SELECT 1 FROM schedules
	WHERE date = $1::date
	AND ($2::time, $3::time) OVERLAPS (start_time, end_time)
)`
	var taken bool
	if err := q.QueryRowContext(ctx, query, date, start, end).Scan(&taken); err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return taken, nil
}

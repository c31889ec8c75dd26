package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/personalai/assistant/internal/models"
)

func TestExecuteReturnsSeededDepartments(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, ExecutorOptions{ReadOnly: true, Timeout: time.Second})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM departments`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(4), "Main Department").
			AddRow(int64(5), []byte("HR Department")))
	mock.ExpectCommit()

	rows, err := exec.Execute(context.Background(), "SELECT id, name FROM departments")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	got := map[int64]string{}
	for _, row := range rows {
		if len(row) != 2 {
			t.Fatalf("row has %d columns, want id and name: %v", len(row), row)
		}
		got[row["id"].(int64)] = row["name"].(string)
	}
	if got[4] != "Main Department" || got[5] != "HR Department" {
		t.Fatalf("rows = %v", got)
	}
	assertSQLMock(t, mock)
}

func TestExecuteEmptyResultIsNotNil(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, ExecutorOptions{ReadOnly: true})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM employees WHERE id = -1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	rows, err := exec.Execute(context.Background(), "SELECT id FROM employees WHERE id = -1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("rows = %#v, want empty slice", rows)
	}
	assertSQLMock(t, mock)
}

func TestExecuteRollsBackOnQueryError(t *testing.T) {
	db, mock := newSQLMock(t)
	exec := NewExecutor(db, ExecutorOptions{ReadOnly: true})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM missing`)).
		WillReturnError(errors.New(`relation "missing" does not exist`))
	mock.ExpectRollback()

	_, err := exec.Execute(context.Background(), "SELECT * FROM missing")
	if err == nil {
		t.Fatal("expected error")
	}
	assertSQLMock(t, mock)
}

func TestGetEmployeeReturnsNotFound(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, salary, dept_id, hiring_personal_id FROM employees WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetEmployee(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertSQLMock(t, mock)
}

func TestCreateEmployeeNullableColumns(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)
	salary := int64(5000)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees (name, salary, dept_id, hiring_personal_id)`)).
		WithArgs("Gaurav", int64(5000), nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "salary", "dept_id", "hiring_personal_id"}).
			AddRow(int64(4), "Gaurav", int64(5000), nil, nil))

	e, err := s.CreateEmployee(context.Background(), models.EmployeeInput{Name: "Gaurav", Salary: &salary})
	if err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}
	if e.ID != 4 || e.Salary == nil || *e.Salary != 5000 {
		t.Fatalf("employee = %+v", e)
	}
	if e.DeptID != nil || e.HiringPersonalID != nil {
		t.Fatalf("nullable columns should stay nil: %+v", e)
	}
	assertSQLMock(t, mock)
}

func TestDeleteDepartmentMissing(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM departments WHERE id = $1 RETURNING id, name`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	if _, err := s.DeleteDepartment(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertSQLMock(t, mock)
}

func TestCreateReservationForeignKeyViolation(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reservations`)).
		WillReturnError(&pgconn.PgError{Code: "23503", Message: "insert or update on table \"reservations\" violates foreign key constraint"})

	empID := int64(404)
	_, err := s.CreateReservation(context.Background(), models.ReservationInput{EmployeeID: &empID, ReservationType: models.ReservationWork})
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("CreateReservation() error = %v, want ErrConstraint", err)
	}
	assertSQLMock(t, mock)
}

func TestCreateScheduleRejectsOverlap(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`($2::time, $3::time) OVERLAPS (start_time, end_time)`)).
		WithArgs("2024-06-01", "10:30", "11:30").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := s.CreateSchedule(context.Background(), models.ScheduleInput{
		EmployeeID: 2, AppointmentID: 1, Date: "2024-06-01", StartTime: "10:30", EndTime: "11:30",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
	assertSQLMock(t, mock)
}

func TestCreateScheduleInsertsFreeSlot(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("2024-06-01", "12:00", "13:00").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO schedules (employee_id, appointment_id, date, start_time, end_time)`)).
		WithArgs(int64(2), int64(1), "2024-06-01", "12:00", "13:00").
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "appointment_id", "date", "start_time", "end_time"}).
			AddRow(int64(7), int64(2), int64(1), "2024-06-01", "12:00:00", "13:00:00"))
	mock.ExpectCommit()

	sc, err := s.CreateSchedule(context.Background(), models.ScheduleInput{
		EmployeeID: 2, AppointmentID: 1, Date: "2024-06-01", StartTime: "12:00", EndTime: "13:00",
	})
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	if sc.ID != 7 || sc.StartTime != "12:00:00" {
		t.Fatalf("schedule = %+v", sc)
	}
	assertSQLMock(t, mock)
}

func TestListAppointments(t *testing.T) {
	db, mock := newSQLMock(t)
	s := New(db)
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM appointments ORDER BY start_time, id`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "employee_id", "title", "description", "start_time", "end_time", "status"}).
			AddRow(int64(1), int64(1), "Team Meeting", nil, start, start.Add(time.Hour), "confirmed"))

	list, err := s.ListAppointments(context.Background())
	if err != nil {
		t.Fatalf("ListAppointments() error = %v", err)
	}
	if len(list) != 1 || list[0].Title != "Team Meeting" || list[0].Description != nil {
		t.Fatalf("appointments = %+v", list)
	}
	assertSQLMock(t, mock)
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

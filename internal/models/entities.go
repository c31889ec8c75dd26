package models

import "time"

// Employee is a row of employees.
type Employee struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Salary           *int64 `json:"salary"`
	DeptID           *int64 `json:"dept_id"`
	HiringPersonalID *int64 `json:"hiring_personal_id"`
}

// Department is a row of departments.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// HiringPersonnel is a row of hiring_personal.
type HiringPersonnel struct {
	ID     int64   `json:"id"`
	Name   *string `json:"name"`
	Age    *int64  `json:"age"`
	Gender *string `json:"gender"`
}

// Reservation types stored in reservations.reservation_type.
const (
	ReservationVacation  = 1
	ReservationSickLeave = 2
	ReservationWork      = 3
)

// Reservation is a row of reservations. Dates are YYYY-MM-DD, times HH:MM:SS.
type Reservation struct {
	ID              int64   `json:"id"`
	EmployeeID      *int64  `json:"employee_id"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	ReservationType int     `json:"reservation_type"`
	ShiftStart      *string `json:"shift_start"`
	ShiftEnd        *string `json:"shift_end"`
	WorkDate        *string `json:"work_date"`
}

// Appointment is a row of appointments.
type Appointment struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employee_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
}

// Schedule is a row of schedules. Date is YYYY-MM-DD, times HH:MM:SS.
type Schedule struct {
	ID            int64  `json:"id"`
	EmployeeID    int64  `json:"employee_id"`
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

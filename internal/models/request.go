package models

import (
	"fmt"
	"strings"
	"time"
)

// ActionRequest for POST /generate-message/
type ActionRequest struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

func (r *ActionRequest) SetDefaults() {
	r.Action = strings.TrimSpace(r.Action)
	if r.Parameters == nil {
		r.Parameters = map[string]any{}
	}
}

// NLQueryRequest for POST /api/nl-query/process
type NLQueryRequest struct {
	Query string `json:"query"`
}

// EmployeeInput for POST/PUT /employees/
type EmployeeInput struct {
	Name             string `json:"name"`
	Salary           *int64 `json:"salary"`
	DeptID           *int64 `json:"dept_id"`
	HiringPersonalID *int64 `json:"hiring_personal_id"`
}

func (r *EmployeeInput) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if r.Salary != nil && *r.Salary < 0 {
		return fmt.Errorf("salary cannot be negative")
	}
	return nil
}

// DepartmentInput for POST/PUT /departments/
type DepartmentInput struct {
	Name string `json:"name"`
}

func (r *DepartmentInput) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// ReservationInput for POST/PUT /reservations/
type ReservationInput struct {
	EmployeeID      *int64  `json:"employee_id"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	ReservationType int     `json:"reservation_type"`
	ShiftStart      *string `json:"shift_start"`
	ShiftEnd        *string `json:"shift_end"`
	WorkDate        *string `json:"work_date"`
}

func (r *ReservationInput) Validate() error {
	switch r.ReservationType {
	case ReservationVacation, ReservationSickLeave, ReservationWork:
		return nil
	default:
		return fmt.Errorf("reservation_type must be 1 (vacation), 2 (sick leave) or 3 (work), got %d", r.ReservationType)
	}
}

// AppointmentInput for POST /create-appointment/ and POST /appointments/
type AppointmentInput struct {
	EmployeeID  int64     `json:"employee_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
}

func (r *AppointmentInput) SetDefaults() {
	if r.Status == "" {
		r.Status = "scheduled"
	}
}

func (r *AppointmentInput) Validate() error {
	if r.EmployeeID == 0 {
		return fmt.Errorf("employee_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !r.EndTime.After(r.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}

// ScheduleInput for POST /schedules/
type ScheduleInput struct {
	EmployeeID    int64  `json:"employee_id"`
	AppointmentID int64  `json:"appointment_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

func (r *ScheduleInput) Validate() error {
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	start, err := parseClock(r.StartTime)
	if err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	end, err := parseClock(r.EndTime)
	if err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}

func parseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("must be HH:MM or HH:MM:SS")
}

// DressRequest for POST /api/weather-assistant/dress-recommendation
type DressRequest struct {
	UserID      int64  `json:"user_id"`
	Location    string `json:"location"`
	Date        string `json:"date"` // YYYY-MM-DD
	Occasion    string `json:"occasion,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

func (r *DressRequest) Validate() error {
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("location is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	return nil
}

package handler

import (
	"context"

	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/security"
	"github.com/personalai/assistant/internal/store"
)

// EmployeeRepository, DepartmentRepository and ReservationRepository are
// satisfied by *store.Store.
type EmployeeRepository interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id int64) (models.Employee, error)
	CreateEmployee(ctx context.Context, in models.EmployeeInput) (models.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, in models.EmployeeInput) (models.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) (models.Employee, error)
}

type DepartmentRepository interface {
	ListDepartments(ctx context.Context) ([]models.Department, error)
	GetDepartment(ctx context.Context, id int64) (models.Department, error)
	CreateDepartment(ctx context.Context, in models.DepartmentInput) (models.Department, error)
	UpdateDepartment(ctx context.Context, id int64, in models.DepartmentInput) (models.Department, error)
	DeleteDepartment(ctx context.Context, id int64) (models.Department, error)
}

type ReservationRepository interface {
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	GetReservation(ctx context.Context, id int64) (models.Reservation, error)
	CreateReservation(ctx context.Context, in models.ReservationInput) (models.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, in models.ReservationInput) (models.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) (models.Reservation, error)
}

var _ EmployeeRepository = (*store.Store)(nil)

func NewEmployeesHandler(repo EmployeeRepository, audit *security.AuditLogger) *Resource[models.Employee, models.EmployeeInput] {
	return &Resource[models.Employee, models.EmployeeInput]{
		singular: "employee",
		plural:   "employees",
		notFound: "Employee not found",
		repo: Repository[models.Employee, models.EmployeeInput]{
			List:   repo.ListEmployees,
			Get:    repo.GetEmployee,
			Create: repo.CreateEmployee,
			Update: repo.UpdateEmployee,
			Delete: repo.DeleteEmployee,
		},
		validate: (*models.EmployeeInput).Validate,
		idOf:     func(e models.Employee) int64 { return e.ID },
		audit:    audit,
	}
}

func NewDepartmentsHandler(repo DepartmentRepository, audit *security.AuditLogger) *Resource[models.Department, models.DepartmentInput] {
	return &Resource[models.Department, models.DepartmentInput]{
		singular: "department",
		plural:   "departments",
		notFound: "Department not found",
		repo: Repository[models.Department, models.DepartmentInput]{
			List:   repo.ListDepartments,
			Get:    repo.GetDepartment,
			Create: repo.CreateDepartment,
			Update: repo.UpdateDepartment,
			Delete: repo.DeleteDepartment,
		},
		validate: (*models.DepartmentInput).Validate,
		idOf:     func(d models.Department) int64 { return d.ID },
		audit:    audit,
	}
}

func NewReservationsHandler(repo ReservationRepository, audit *security.AuditLogger) *Resource[models.Reservation, models.ReservationInput] {
	return &Resource[models.Reservation, models.ReservationInput]{
		singular: "reservation",
		plural:   "reservations",
		notFound: "Reservation not found",
		repo: Repository[models.Reservation, models.ReservationInput]{
			List:   repo.ListReservations,
			Get:    repo.GetReservation,
			Create: repo.CreateReservation,
			Update: repo.UpdateReservation,
			Delete: repo.DeleteReservation,
		},
		validate: (*models.ReservationInput).Validate,
		idOf:     func(r models.Reservation) int64 { return r.ID },
		audit:    audit,
	}
}

package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is read-only from the payroll side.
type AttendanceRepository interface {
	// ListByEmployeesInRange returns records whose check-in falls on a day in
	// [from, to]. An empty employeeIDs slice means all employees.
	ListByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]Attendance, error)
}

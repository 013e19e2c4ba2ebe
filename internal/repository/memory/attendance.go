package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
)

type AttendanceRepository struct {
	mu      sync.Mutex
	records []attendance.Attendance

	ListErr   error
	ListCalls int
}

func NewAttendanceRepository(records ...attendance.Attendance) *AttendanceRepository {
	return &AttendanceRepository{records: records}
}

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

func (r *AttendanceRepository) Add(records ...attendance.Attendance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
}

func (r *AttendanceRepository) ListByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ListCalls++
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	wanted := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		wanted[id] = true
	}

	var out []attendance.Attendance
	for _, rec := range r.records {
		if len(wanted) > 0 && !wanted[rec.EmployeeID] {
			continue
		}
		if !attendance.InRange(rec.CheckIn, from, to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

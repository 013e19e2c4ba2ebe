package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Aggregate tallies one employee's attendance inside the period. Rows for
// other employees or outside the period are ignored. Absence is derived
// from working days, so an employee with no rows is absent all period.
func Aggregate(period payroll.PayrollPeriod, employeeID string, records []attendance.Attendance) payroll.AttendanceAggregate {
	agg := payroll.AttendanceAggregate{
		EmployeeID:    employeeID,
		OvertimeHours: decimal.Zero,
	}

	for _, rec := range records {
		if rec.EmployeeID != employeeID || !period.Contains(rec.CheckIn) {
			continue
		}
		switch {
		case rec.Status.CountsAsPresent():
			agg.PresentDays++
			if rec.Status == attendance.StatusLate {
				agg.LateDays++
			}
		case rec.Status.CountsAsLeave():
			agg.LeaveDays++
		}
		if rec.OvertimeHours != nil {
			agg.OvertimeHours = agg.OvertimeHours.Add(*rec.OvertimeHours)
		}
	}

	// Attendance on holidays can push present past working days
	agg.AbsentDays = period.WorkingDays - agg.PresentDays - agg.LeaveDays
	if agg.AbsentDays < 0 {
		agg.AbsentDays = 0
	}

	return agg
}

// AggregateAll groups records by employee once and aggregates each employee.
func AggregateAll(period payroll.PayrollPeriod, employees []employee.Employee, records []attendance.Attendance) map[string]payroll.AttendanceAggregate {
	byEmployee := make(map[string][]attendance.Attendance, len(employees))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	result := make(map[string]payroll.AttendanceAggregate, len(employees))
	for _, emp := range employees {
		result[emp.ID] = Aggregate(period, emp.ID, byEmployee[emp.ID])
	}
	return result
}

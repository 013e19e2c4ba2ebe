package payroll

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc         *PayrollServiceImpl
	payrollRepo *memory.PayrollRepository
	employees   *memory.EmployeeRepository
	attendance  *memory.AttendanceRepository
	holidays    *memory.HolidayRepository
}

func newFixture(t *testing.T, policy Policy, employees ...employee.Employee) *fixture {
	t.Helper()

	f := &fixture{
		payrollRepo: memory.NewPayrollRepository(),
		employees:   memory.NewEmployeeRepository(employees...),
		attendance:  memory.NewAttendanceRepository(),
		holidays:    memory.NewHolidayRepository(),
	}
	svc := NewPayrollService(f.payrollRepo, f.employees, f.attendance, f.holidays,
		DefaultCalculator(), policy, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc = svc.(*PayrollServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC) }
	return f
}

// createPeriod creates January 2026, which has 22 weekdays.
func (f *fixture) createPeriod(t *testing.T) payroll.PeriodResponse {
	t.Helper()
	resp, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{Month: 1, Year: 2026})
	require.NoError(t, err)
	return resp.Period
}

func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func monthlyEmployee(name, rate string) employee.Employee {
	return employee.Employee{
		ID: newUUID(), EmployeeCode: "M-" + name, FullName: name, Department: strPtr("Finance"),
		EmploymentStatus: employee.EmploymentStatusActive, SalaryType: employee.SalaryTypeMonthly,
		MonthlyRate: decPtr(rate),
	}
}

func dailyEmployee(name, rate string) employee.Employee {
	return employee.Employee{
		ID: newUUID(), EmployeeCode: "D-" + name, FullName: name, Department: strPtr("Operations"),
		EmploymentStatus: employee.EmploymentStatusActive, SalaryType: employee.SalaryTypeDaily,
		DailyRate: decPtr(rate),
	}
}

func hourlyEmployee(name, rate string) employee.Employee {
	return employee.Employee{
		ID: newUUID(), EmployeeCode: "H-" + name, FullName: name, Department: strPtr("Operations"),
		EmploymentStatus: employee.EmploymentStatusActive, SalaryType: employee.SalaryTypeHourly,
		HourlyRate: decPtr(rate),
	}
}

// januaryWeekdays returns the 22 weekdays of January 2026 at 09:00 UTC.
func januaryWeekdays() []time.Time {
	var days []time.Time
	for d := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC); d.Month() == time.January; d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

// attend records n check-ins for the employee on consecutive January weekdays.
func attend(employeeID string, n int, status attendance.Status, overtime *decimal.Decimal) []attendance.Attendance {
	var rows []attendance.Attendance
	for i, day := range januaryWeekdays() {
		if i >= n {
			break
		}
		rows = append(rows, attendance.Attendance{
			ID: newUUID(), EmployeeID: employeeID, CheckIn: day, Status: status, OvertimeHours: overtime,
		})
	}
	return rows
}

func newHoliday(year int, month time.Month, day int, name string) holiday.Holiday {
	return holiday.Holiday{ID: newUUID(), Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Name: name}
}

func januaryPeriod(workingDays int) payroll.PayrollPeriod {
	start, end := monthBounds(1, 2026)
	return payroll.PayrollPeriod{
		ID: newUUID(), Name: "January 2026", Month: 1, Year: 2026,
		StartDate: start, EndDate: end, WorkingDays: workingDays, Status: payroll.PeriodStatusDraft,
	}
}

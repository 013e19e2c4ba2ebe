package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Calculator converts attendance tallies and compensation terms into pay.
type Calculator struct {
	HoursPerDay        int
	OvertimeMultiplier decimal.Decimal
}

func NewCalculator(hoursPerDay int, overtimeMultiplier string) (Calculator, error) {
	multiplier, err := decimal.NewFromString(overtimeMultiplier)
	if err != nil {
		return Calculator{}, fmt.Errorf("invalid overtime multiplier %q: %w", overtimeMultiplier, err)
	}
	if hoursPerDay <= 0 {
		return Calculator{}, fmt.Errorf("hours per day must be positive, got %d", hoursPerDay)
	}
	return Calculator{HoursPerDay: hoursPerDay, OvertimeMultiplier: multiplier}, nil
}

// DefaultCalculator uses an 8-hour day and time-and-a-half overtime.
func DefaultCalculator() Calculator {
	return Calculator{HoursPerDay: 8, OvertimeMultiplier: decimal.RequireFromString("1.5")}
}

// ComputePay returns zero pay and ErrMissingCompensationTerms when the
// employee has no positive rate for its salary type. Outputs are rounded to
// 2 places once, after the full computation.
func (c Calculator) ComputePay(emp employee.Employee, period payroll.PayrollPeriod, agg payroll.AttendanceAggregate) (payroll.PayResult, error) {
	rate, ok := emp.CompensationRate()
	if !ok {
		return zeroPay(), payroll.ErrMissingCompensationTerms
	}

	present := decimal.NewFromInt(int64(agg.PresentDays))
	hoursPerDay := decimal.NewFromInt(int64(c.HoursPerDay))
	overtimeHours := agg.OvertimeHours

	var basePay, overtimePay decimal.Decimal
	switch emp.SalaryType {
	case employee.SalaryTypeMonthly:
		if period.WorkingDays <= 0 {
			basePay, overtimePay = decimal.Zero, decimal.Zero
			break
		}
		workingDays := decimal.NewFromInt(int64(period.WorkingDays))
		// rate * present / workingDays keeps full attendance exact
		basePay = rate.Mul(present).Div(workingDays)
		overtimePay = overtimeHours.Mul(rate).Mul(c.OvertimeMultiplier).Div(workingDays.Mul(hoursPerDay))
	case employee.SalaryTypeDaily:
		basePay = rate.Mul(present)
		overtimePay = overtimeHours.Mul(rate).Mul(c.OvertimeMultiplier).Div(hoursPerDay)
	case employee.SalaryTypeHourly:
		basePay = rate.Mul(present).Mul(hoursPerDay)
		overtimePay = overtimeHours.Mul(rate).Mul(c.OvertimeMultiplier)
	default:
		return zeroPay(), payroll.ErrMissingCompensationTerms
	}

	basePay = basePay.Round(2)
	overtimePay = overtimePay.Round(2)
	grossPay := basePay.Add(overtimePay)

	return payroll.PayResult{
		BaseRate:    rate.Round(2),
		BasePay:     basePay,
		OvertimePay: overtimePay,
		GrossPay:    grossPay,
		NetPay:      grossPay,
	}, nil
}

func zeroPay() payroll.PayResult {
	return payroll.PayResult{
		BaseRate:    decimal.Zero,
		BasePay:     decimal.Zero,
		OvertimePay: decimal.Zero,
		GrossPay:    decimal.Zero,
		NetPay:      decimal.Zero,
	}
}

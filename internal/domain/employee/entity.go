package employee

import (
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	Role             *string
	Department       *string
	EmploymentStatus EmploymentStatus
	SalaryType       SalaryType
	MonthlyRate      *decimal.Decimal
	DailyRate        *decimal.Decimal
	HourlyRate       *decimal.Decimal
}

// CompensationRate returns the rate that is authoritative for the employee's
// salary type. ok is false when that rate is missing or not positive.
func (e Employee) CompensationRate() (rate decimal.Decimal, ok bool) {
	var r *decimal.Decimal
	switch e.SalaryType {
	case SalaryTypeMonthly:
		r = e.MonthlyRate
	case SalaryTypeDaily:
		r = e.DailyRate
	case SalaryTypeHourly:
		r = e.HourlyRate
	}
	if r == nil || !r.IsPositive() {
		return decimal.Zero, false
	}
	return *r, true
}

type SalaryType string

const (
	SalaryTypeMonthly SalaryType = "monthly"
	SalaryTypeDaily   SalaryType = "daily"
	SalaryTypeHourly  SalaryType = "hourly"
)

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// PeriodStatus enum
type PeriodStatus string

const (
	PeriodStatusDraft    PeriodStatus = "draft"
	PeriodStatusInReview PeriodStatus = "in_review"
	PeriodStatusApproved PeriodStatus = "approved"
	PeriodStatusPaid     PeriodStatus = "paid"
	PeriodStatusLocked   PeriodStatus = "locked"
)

func (s PeriodStatus) IsValid() bool {
	switch s {
	case PeriodStatusDraft, PeriodStatusInReview, PeriodStatusApproved, PeriodStatusPaid, PeriodStatusLocked:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is a legal forward move from s.
// Locked is terminal.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	switch s {
	case PeriodStatusDraft:
		return next == PeriodStatusInReview
	case PeriodStatusInReview:
		return next == PeriodStatusApproved
	case PeriodStatusApproved:
		return next == PeriodStatusPaid || next == PeriodStatusLocked
	case PeriodStatusPaid:
		return next == PeriodStatusLocked
	}
	return false
}

// IsDeletable is true only before approval.
func (s PeriodStatus) IsDeletable() bool {
	return s == PeriodStatusDraft || s == PeriodStatusInReview
}

// IsGeneratable is true while records may still be recomputed.
func (s PeriodStatus) IsGeneratable() bool {
	return s == PeriodStatusDraft || s == PeriodStatusInReview
}

// PayrollPeriod - One payroll cycle, unique per (month, year)
type PayrollPeriod struct {
	ID          string
	Name        string
	Month       int
	Year        int
	StartDate   time.Time
	EndDate     time.Time
	WorkingDays int
	Status      PeriodStatus
	Version     int
	GeneratedAt *time.Time
	ApprovedAt  *time.Time
	ApprovedBy  *string
	PaidAt      *time.Time
	PaidBy      *string
	LockedAt    *time.Time
	LockedBy    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contains reports whether t falls on a calendar day inside the period.
// Days are taken in StartDate's zone, the same window the attendance fetch
// uses, whatever zone t carries.
func (p PayrollPeriod) Contains(t time.Time) bool {
	return attendance.InRange(t, p.StartDate, p.EndDate)
}

// RecordStatus enum
type RecordStatus string

const (
	RecordStatusDraft RecordStatus = "draft"
	RecordStatusPaid  RecordStatus = "paid"
)

// Earning and deduction keys used in the itemized detail maps.
const (
	EarningOvertime = "overtime"
)

// PayrollRecord - Generated pay for one employee in one period
type PayrollRecord struct {
	ID               string
	PeriodID         string
	EmployeeID       string
	PresentDays      int
	AbsentDays       int
	PaidLeaveDays    int
	UnpaidLeaveDays  int
	LateDays         int
	OvertimeHours    decimal.Decimal
	SalaryType       string
	BaseRate         decimal.Decimal
	BasePay          decimal.Decimal
	OvertimePay      decimal.Decimal
	EarningsDetail   map[string]decimal.Decimal
	DeductionsDetail map[string]decimal.Decimal
	TotalEarnings    decimal.Decimal
	TotalDeductions  decimal.Decimal
	GrossPay         decimal.Decimal
	NetPay           decimal.Decimal
	Status           RecordStatus
	PaymentMethod    *string
	PaymentDate      *time.Time
	PaymentReference *string
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
	Department   *string
}

// AttendanceAggregate - Per-employee tallies for one period
type AttendanceAggregate struct {
	EmployeeID    string
	PresentDays   int
	AbsentDays    int
	LeaveDays     int
	LateDays      int
	OvertimeHours decimal.Decimal
}

// PayResult - Output of the pay calculator, rounded to 2 places
type PayResult struct {
	BaseRate    decimal.Decimal
	BasePay     decimal.Decimal
	OvertimePay decimal.Decimal
	GrossPay    decimal.Decimal
	NetPay      decimal.Decimal
}

// EmployeeIssue - Non-fatal per-employee problem found during generation
type EmployeeIssue struct {
	EmployeeID   string
	EmployeeName string
	Reason       string
}

// GenerationResult - Outcome of one generation run
type GenerationResult struct {
	Period         PayrollPeriod
	Records        []PayrollRecord
	Issues         []EmployeeIssue
	StatusAdvanced bool
}

// GenerationWrite - Everything persisted atomically by one generation run
type GenerationWrite struct {
	PeriodID        string
	ExpectedVersion int
	WorkingDays     int
	NextStatus      PeriodStatus
	Records         []PayrollRecord
}

// PaymentDetails - Metadata stamped on records when a period is paid
type PaymentDetails struct {
	Method    string
	Reference *string
	Date      time.Time
}

// PeriodSummary - Aggregate totals for a period's records
type PeriodSummary struct {
	PeriodID         string
	TotalEmployees   int
	TotalBasePay     decimal.Decimal
	TotalOvertimePay decimal.Decimal
	TotalGrossPay    decimal.Decimal
	TotalNetPay      decimal.Decimal
	DraftCount       int
	PaidCount        int
}

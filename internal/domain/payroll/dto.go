package payroll

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PERIOD DTOs ==========

type CreatePeriodRequest struct {
	Month int     `json:"month"`
	Year  int     `json:"year"`
	Name  *string `json:"name,omitempty"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors
	errs.Check(r.Month >= 1 && r.Month <= 12, "month", "must be between 1 and 12")
	errs.Check(r.Year >= 1000 && r.Year <= 9999, "year", "must be a 4-digit year")
	if r.Name != nil {
		errs.Check(!validator.IsEmpty(*r.Name), "name", "must not be blank")
	}
	return errs.Err()
}

type PayPeriodRequest struct {
	PeriodID         string  `json:"-"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	PaymentDate      *string `json:"payment_date,omitempty"` // YYYY-MM-DD, defaults to today
}

func (r *PayPeriodRequest) Validate() error {
	var errs validator.ValidationErrors
	switch {
	case validator.IsEmpty(r.PaymentMethod):
		errs.Add("payment_method", "is required")
	case !validator.OneOf(r.PaymentMethod, PaymentMethods...):
		errs.Add("payment_method", "must be one of bank_transfer, cash, cheque")
	}
	if r.PaymentDate != nil {
		_, ok := validator.ParseDate(*r.PaymentDate)
		errs.Check(ok, "payment_date", "must be in YYYY-MM-DD format")
	}
	return errs.Err()
}

var PaymentMethods = []string{"bank_transfer", "cash", "cheque"}

type PeriodFilter struct {
	Year   *int    `json:"year,omitempty"`
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

func (f *PeriodFilter) Validate() error {
	if f.Status != nil && !PeriodStatus(*f.Status).IsValid() {
		return validator.Single("status", "is not a valid period status")
	}
	return nil
}

type PeriodResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	WorkingDays int     `json:"working_days"`
	Status      string  `json:"status"`
	Version     int     `json:"version"`
	GeneratedAt *string `json:"generated_at,omitempty"`
	ApprovedAt  *string `json:"approved_at,omitempty"`
	ApprovedBy  *string `json:"approved_by,omitempty"`
	PaidAt      *string `json:"paid_at,omitempty"`
	PaidBy      *string `json:"paid_by,omitempty"`
	LockedAt    *string `json:"locked_at,omitempty"`
	LockedBy    *string `json:"locked_by,omitempty"`
}

type CreatePeriodResponse struct {
	Period   PeriodResponse `json:"period"`
	Warnings []string       `json:"warnings,omitempty"`
}

type ListPeriodResponse struct {
	Data       []PeriodResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

// ========== RECORD DTOs ==========

type RecordFilter struct {
	Department *string `json:"department,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

type RecordResponse struct {
	ID               string                     `json:"id"`
	PeriodID         string                     `json:"period_id"`
	EmployeeID       string                     `json:"employee_id"`
	EmployeeName     string                     `json:"employee_name"`
	EmployeeCode     string                     `json:"employee_code"`
	Department       *string                    `json:"department,omitempty"`
	PresentDays      int                        `json:"present_days"`
	AbsentDays       int                        `json:"absent_days"`
	PaidLeaveDays    int                        `json:"paid_leave_days"`
	UnpaidLeaveDays  int                        `json:"unpaid_leave_days"`
	LateDays         int                        `json:"late_days"`
	OvertimeHours    decimal.Decimal            `json:"overtime_hours"`
	SalaryType       string                     `json:"salary_type"`
	BaseRate         decimal.Decimal            `json:"base_rate"`
	BasePay          decimal.Decimal            `json:"base_pay"`
	OvertimePay      decimal.Decimal            `json:"overtime_pay"`
	EarningsDetail   map[string]decimal.Decimal `json:"earnings_detail,omitempty"`
	DeductionsDetail map[string]decimal.Decimal `json:"deductions_detail,omitempty"`
	TotalEarnings    decimal.Decimal            `json:"total_earnings"`
	TotalDeductions  decimal.Decimal            `json:"total_deductions"`
	GrossPay         decimal.Decimal            `json:"gross_pay"`
	NetPay           decimal.Decimal            `json:"net_pay"`
	Status           string                     `json:"status"`
	PaymentMethod    *string                    `json:"payment_method,omitempty"`
	PaymentDate      *string                    `json:"payment_date,omitempty"`
	PaymentReference *string                    `json:"payment_reference,omitempty"`
	Notes            *string                    `json:"notes,omitempty"`
}

type ListRecordResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type IssueResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Reason       string `json:"reason"`
}

type GenerateResponse struct {
	Period         PeriodResponse   `json:"period"`
	Records        []RecordResponse `json:"records"`
	Issues         []IssueResponse  `json:"issues,omitempty"`
	StatusAdvanced bool             `json:"status_advanced"`
}

type AttendanceAggregateResponse struct {
	PeriodID      string          `json:"period_id"`
	EmployeeID    string          `json:"employee_id"`
	WorkingDays   int             `json:"working_days"`
	PresentDays   int             `json:"present_days"`
	AbsentDays    int             `json:"absent_days"`
	LeaveDays     int             `json:"leave_days"`
	LateDays      int             `json:"late_days"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

type SummaryResponse struct {
	PeriodID         string          `json:"period_id"`
	PeriodName       string          `json:"period_name"`
	Status           string          `json:"status"`
	WorkingDays      int             `json:"working_days"`
	TotalEmployees   int             `json:"total_employees"`
	TotalBasePay     decimal.Decimal `json:"total_base_pay"`
	TotalOvertimePay decimal.Decimal `json:"total_overtime_pay"`
	TotalGrossPay    decimal.Decimal `json:"total_gross_pay"`
	TotalNetPay      decimal.Decimal `json:"total_net_pay"`
	DraftCount       int             `json:"draft_count"`
	PaidCount        int             `json:"paid_count"`
}

// ========== EXPORT ==========

type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
)

func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

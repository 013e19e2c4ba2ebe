package payroll

import (
	"context"
	"io"
)

// PayrollService defines business logic for payroll periods and records
type PayrollService interface {
	// CreatePeriod creates a draft period for a month, computing working days from the holiday calendar
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (CreatePeriodResponse, error)

	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) (ListPeriodResponse, error)

	// DeletePeriod removes a draft or in_review period together with its records
	DeletePeriod(ctx context.Context, id string) error

	// Status transitions
	ApprovePeriod(ctx context.Context, id string) (PeriodResponse, error)
	PayPeriod(ctx context.Context, req PayPeriodRequest) (PeriodResponse, error)
	LockPeriod(ctx context.Context, id string) (PeriodResponse, error)

	// GeneratePayroll (re)computes one record per active employee and moves draft to in_review
	GeneratePayroll(ctx context.Context, periodID string) (GenerateResponse, error)

	// AggregateAttendance previews the attendance tallies for one employee in a period
	AggregateAttendance(ctx context.Context, periodID, employeeID string) (AttendanceAggregateResponse, error)

	// Records
	ListRecords(ctx context.Context, periodID string, filter RecordFilter) (ListRecordResponse, error)
	GetRecord(ctx context.Context, id string) (RecordResponse, error)
	GetSummary(ctx context.Context, periodID string) (SummaryResponse, error)

	// ExportRecords writes the period's payroll register to w
	ExportRecords(ctx context.Context, periodID string, format ExportFormat, w io.Writer) error
}

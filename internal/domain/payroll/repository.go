package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for payroll periods and records.
type PayrollRepository interface {
	// Periods
	CreatePeriod(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)
	GetPeriodByID(ctx context.Context, id string) (PayrollPeriod, error)
	ExistsPeriodByMonthYear(ctx context.Context, month, year int) (bool, error)
	ListPeriods(ctx context.Context, filter PeriodFilter) ([]PayrollPeriod, int64, error)

	// UpdatePeriodStatus moves a period from one status to another, guarded by
	// expectedVersion. A stale version returns ErrConcurrentGenerationConflict.
	UpdatePeriodStatus(ctx context.Context, id string, expectedVersion int, next PeriodStatus, actorID *string, at time.Time) (PayrollPeriod, error)

	// DeletePeriod removes the period's records and then the period, atomically.
	DeletePeriod(ctx context.Context, id string) error

	// SaveGeneration upserts records keyed on (period, employee), drops stale
	// records of the period, updates working days and status, atomically.
	SaveGeneration(ctx context.Context, write GenerationWrite) (PayrollPeriod, []PayrollRecord, error)

	// MarkPeriodPaid flips the period to paid and stamps payment details on
	// every record of the period, atomically.
	MarkPeriodPaid(ctx context.Context, id string, expectedVersion int, actorID *string, payment PaymentDetails) (PayrollPeriod, error)

	// Records
	ListRecordsByPeriod(ctx context.Context, periodID string, filter RecordFilter) ([]PayrollRecord, int64, error)
	// GetRecordsByPeriodID returns every record of the period ordered by employee name.
	GetRecordsByPeriodID(ctx context.Context, periodID string) ([]PayrollRecord, error)
	GetRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	GetPeriodSummary(ctx context.Context, periodID string) (PeriodSummary, error)
}

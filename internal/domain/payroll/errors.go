package payroll

import "errors"

var (
	ErrDuplicatePeriod              = errors.New("payroll period already exists for this month and year")
	ErrPeriodNotFound               = errors.New("payroll period not found")
	ErrNoActiveEmployees            = errors.New("no active employees to generate payroll for")
	ErrUpstreamFetch                = errors.New("failed to fetch payroll inputs")
	ErrWriteFailure                 = errors.New("failed to write payroll records")
	ErrMissingCompensationTerms     = errors.New("employee has no rate configured for its salary type")
	ErrConcurrentGenerationConflict = errors.New("payroll period was modified by another generation run")
	ErrInvalidStatusTransition      = errors.New("invalid payroll period status transition")
	ErrPeriodNotDeletable           = errors.New("only draft or in_review payroll periods can be deleted")
	ErrPeriodNotGeneratable         = errors.New("payroll can only be generated for draft or in_review periods")
	ErrPayrollRecordNotFound        = errors.New("payroll record not found")
	ErrInvalidExportFormat          = errors.New("unsupported export format")
)

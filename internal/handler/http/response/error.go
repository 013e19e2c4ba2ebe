package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string // empty means use err.Error()
}

// Checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{user.ErrInvalidToken, http.StatusUnauthorized, CodeUnauthorized, "Invalid token"},
	{user.ErrInsufficientPermissions, http.StatusForbidden, CodeForbidden, "Insufficient permissions"},

	{payroll.ErrPeriodNotFound, http.StatusNotFound, "PERIOD_NOT_FOUND", "Payroll period not found"},
	{payroll.ErrDuplicatePeriod, http.StatusConflict, "PERIOD_EXISTS", "Payroll period already exists for this month and year"},
	{payroll.ErrConcurrentGenerationConflict, http.StatusConflict, "PERIOD_MODIFIED", "Payroll period was modified concurrently, retry the request"},
	{payroll.ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", ""},
	{payroll.ErrPeriodNotDeletable, http.StatusConflict, "PERIOD_NOT_DELETABLE", "Only draft or in_review payroll periods can be deleted"},
	{payroll.ErrPeriodNotGeneratable, http.StatusConflict, "PERIOD_NOT_GENERATABLE", "Payroll can only be generated for draft or in_review periods"},

	{payroll.ErrNoActiveEmployees, http.StatusUnprocessableEntity, "NO_ACTIVE_EMPLOYEES", "No active employees to generate payroll for"},
	{payroll.ErrUpstreamFetch, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch payroll inputs"},
	{payroll.ErrWriteFailure, http.StatusInternalServerError, "WRITE_FAILURE", "Failed to write payroll records"},

	{payroll.ErrPayrollRecordNotFound, http.StatusNotFound, "RECORD_NOT_FOUND", "Payroll record not found"},
	{employee.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found"},
	{holiday.ErrHolidayNotFound, http.StatusNotFound, "HOLIDAY_NOT_FOUND", "Holiday not found"},
	{holiday.ErrHolidayExists, http.StatusConflict, "HOLIDAY_EXISTS", "A holiday already exists on this date"},
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		Fail(w, http.StatusUnprocessableEntity, CodeValidation, "Validation failed", validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		Fail(w, m.status, m.code, message, nil)
		return
	}

	Fail(w, http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
}

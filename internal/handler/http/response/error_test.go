package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"wrapped not found", fmt.Errorf("get period: %w", payroll.ErrPeriodNotFound), http.StatusNotFound, "PERIOD_NOT_FOUND", "Payroll period not found"},
		{"stale version", payroll.ErrConcurrentGenerationConflict, http.StatusConflict, "PERIOD_MODIFIED", "Payroll period was modified concurrently, retry the request"},
		{"transition keeps detail", fmt.Errorf("%w: approved to in_review", payroll.ErrInvalidStatusTransition), http.StatusConflict, "INVALID_STATUS_TRANSITION", ""},
		{"no employees", payroll.ErrNoActiveEmployees, http.StatusUnprocessableEntity, "NO_ACTIVE_EMPLOYEES", "No active employees to generate payroll for"},
		{"upstream", fmt.Errorf("%w: attendance: timeout", payroll.ErrUpstreamFetch), http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch payroll inputs"},
		{"write failure", payroll.ErrWriteFailure, http.StatusInternalServerError, "WRITE_FAILURE", "Failed to write payroll records"},
		{"employee", employee.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantMessage == "" {
				assert.Equal(t, tt.err.Error(), resp.Error.Message)
			} else {
				assert.Equal(t, tt.wantMessage, resp.Error.Message)
			}
		})
	}
}

func TestHandleError_Validation(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, validator.Single("month", "must be between 1 and 12"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeValidation, resp.Error.Code)
	assert.Equal(t, map[string]string{"month": "must be between 1 and 12"}, resp.Error.Details)
}

func TestSuccessWithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	SuccessWithMeta(w, []string{"a"}, &Meta{Page: 1, Limit: 20, TotalItems: 1, TotalPages: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, &Meta{Page: 1, Limit: 20, TotalItems: 1, TotalPages: 1}, resp.Meta)
}

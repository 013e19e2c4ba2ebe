package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	holidayService "github.com/cmlabs-hris/payroll-backend-go/internal/service/holiday"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	handler    http.Handler
	jwt        jwt.Service
	attendance *memory.AttendanceRepository
	employees  *memory.EmployeeRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	payrollRepo := memory.NewPayrollRepository()
	employeeRepo := memory.NewEmployeeRepository()
	attendanceRepo := memory.NewAttendanceRepository()
	holidayRepo := memory.NewHolidayRepository()

	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, attendanceRepo, holidayRepo,
		payrollService.DefaultCalculator(), payrollService.Policy{DefaultWorkingDays: 22, ExcludeWeekends: true}, logger)
	holidaySvc := holidayService.NewHolidayService(holidayRepo, logger)

	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")
	router := NewRouter(RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}, LogLevel: slog.LevelError},
		logger, jwtSvc, NewPayrollHandler(payrollSvc), NewHolidayHandler(holidaySvc))

	return &testServer{handler: router, jwt: jwtSvc, attendance: attendanceRepo, employees: employeeRepo}
}

func (s *testServer) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(userID, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// seedDailyWorker adds a daily-rate employee who attended every January 2026 weekday.
func (s *testServer) seedDailyWorker(name string) string {
	rate := decimal.RequireFromString("1000")
	id := uuid.Must(uuid.NewV7()).String()
	s.employees.Put(employee.Employee{
		ID: id, EmployeeCode: "D-" + name, FullName: name,
		EmploymentStatus: employee.EmploymentStatusActive, SalaryType: employee.SalaryTypeDaily, DailyRate: &rate,
	})
	for d := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC); d.Month() == time.January; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		s.attendance.Add(attendance.Attendance{
			ID: uuid.Must(uuid.NewV7()).String(), EmployeeID: id, CheckIn: d, Status: attendance.StatusPresent,
		})
	}
	return id
}

func TestRouter_Authentication(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/payroll/periods", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer := srv.token(t, "viewer-1", user.RoleViewer)
	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods", viewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods", viewer, map[string]int{"month": 1, "year": 2026})
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeBody(t, w)
	assert.False(t, resp["success"].(bool))
}

func TestRouter_PayrollLifecycle(t *testing.T) {
	srv := newTestServer(t)
	officer := srv.token(t, "officer-1", user.RolePayrollOfficer)
	approver := srv.token(t, "approver-1", user.RoleApprover)
	admin := srv.token(t, "admin-1", user.RoleAdmin)
	employeeID := srv.seedDailyWorker("Bob")

	// Create
	w := srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 1, "year": 2026})
	require.Equal(t, http.StatusCreated, w.Code)
	period := decodeBody(t, w)["data"].(map[string]interface{})["period"].(map[string]interface{})
	periodID := period["id"].(string)
	assert.Equal(t, "January 2026", period["name"])
	assert.EqualValues(t, 22, period["working_days"])

	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 1, "year": 2026})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Generate
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/generate", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	generated := decodeBody(t, w)["data"].(map[string]interface{})
	assert.True(t, generated["status_advanced"].(bool))
	records := generated["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "22000", records[0].(map[string]interface{})["gross_pay"])

	// Preview
	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/attendance/"+employeeID, officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	preview := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 22, preview["present_days"])

	// Records listing carries pagination meta
	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/records?limit=10", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody(t, w)
	meta := listed["meta"].(map[string]interface{})
	assert.EqualValues(t, 1, meta["total_items"])
	assert.EqualValues(t, 10, meta["limit"])

	// Officers cannot approve
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/approve", officer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/approve", approver, nil)
	require.Equal(t, http.StatusOK, w.Code)
	approved := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "approved", approved["status"])
	assert.Equal(t, "approver-1", approved["approved_by"])

	// Approved periods are frozen
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/generate", officer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = srv.do(t, http.MethodDelete, "/api/v1/payroll/periods/"+periodID, officer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Pay
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/pay", approver, map[string]string{"payment_method": "wire"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/pay", approver,
		map[string]string{"payment_method": "bank_transfer", "payment_date": "2026-02-01"})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/summary", approver, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["paid_count"])

	// Lock
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/lock", approver, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/lock", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "locked", decodeBody(t, w)["data"].(map[string]interface{})["status"])
}

func TestRouter_Export(t *testing.T) {
	srv := newTestServer(t)
	officer := srv.token(t, "officer-1", user.RolePayrollOfficer)
	srv.seedDailyWorker("Bob")

	w := srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 1, "year": 2026})
	require.Equal(t, http.StatusCreated, w.Code)
	periodID := decodeBody(t, w)["data"].(map[string]interface{})["period"].(map[string]interface{})["id"].(string)

	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/generate", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/export?format=csv", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "D-Bob,Bob")

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/export", officer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, w.Body.Len())

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/export?format=pdf", officer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", resp["error"].(map[string]interface{})["code"])
}

func TestRouter_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	officer := srv.token(t, "officer-1", user.RolePayrollOfficer)
	missing := uuid.Must(uuid.NewV7()).String()

	w := srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+missing, officer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/records/"+missing, officer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/payroll/periods/not-a-uuid", officer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 13, "year": 2026})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details := decodeBody(t, w)["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Contains(t, details, "month")

	// No employees on file
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 2, "year": 2026})
	require.Equal(t, http.StatusCreated, w.Code)
	periodID := decodeBody(t, w)["data"].(map[string]interface{})["period"].(map[string]interface{})["id"].(string)
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/generate", officer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "NO_ACTIVE_EMPLOYEES", decodeBody(t, w)["error"].(map[string]interface{})["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/periods", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Authorization", "Bearer "+officer)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AttendancePreviewEmployeeIDs(t *testing.T) {
	srv := newTestServer(t)
	officer := srv.token(t, "officer-1", user.RolePayrollOfficer)

	// Employee ids come from the HR module as v4
	rate := decimal.RequireFromString("500")
	legacyID := uuid.New().String()
	srv.employees.Put(employee.Employee{
		ID: legacyID, EmployeeCode: "D-Old", FullName: "Old Timer",
		EmploymentStatus: employee.EmploymentStatusActive, SalaryType: employee.SalaryTypeDaily, DailyRate: &rate,
	})
	srv.attendance.Add(attendance.Attendance{
		ID: uuid.Must(uuid.NewV7()).String(), EmployeeID: legacyID,
		CheckIn: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), Status: attendance.StatusPresent,
	})

	w := srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 1, "year": 2026})
	require.Equal(t, http.StatusCreated, w.Code)
	periodID := decodeBody(t, w)["data"].(map[string]interface{})["period"].(map[string]interface{})["id"].(string)

	tests := []struct {
		name       string
		periodID   string
		employeeID string
		wantStatus int
	}{
		{"v4 employee id", periodID, legacyID, http.StatusOK},
		{"unknown v4 employee id", periodID, uuid.New().String(), http.StatusNotFound},
		{"malformed employee id", periodID, "emp-42", http.StatusBadRequest},
		{"v4 period id", uuid.New().String(), legacyID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/api/v1/payroll/periods/"+tt.periodID+"/attendance/"+tt.employeeID, officer, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.EqualValues(t, 1, decodeBody(t, w)["data"].(map[string]interface{})["present_days"])
			}
		})
	}
}

func TestRouter_Holidays(t *testing.T) {
	srv := newTestServer(t)
	officer := srv.token(t, "officer-1", user.RolePayrollOfficer)
	viewer := srv.token(t, "viewer-1", user.RoleViewer)

	w := srv.do(t, http.MethodPost, "/api/v1/holidays", viewer, map[string]string{"date": "2026-01-01", "name": "New Year"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/holidays", officer, map[string]string{"date": "2026-01-01", "name": "New Year"})
	require.Equal(t, http.StatusCreated, w.Code)
	holidayID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = srv.do(t, http.MethodPost, "/api/v1/holidays", officer, map[string]string{"date": "2026-01-01", "name": "Again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/holidays?from=2026-01-01&to=2026-01-31", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"].([]interface{}), 1)

	w = srv.do(t, http.MethodGet, "/api/v1/holidays?from=2026-01-31", viewer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// A holiday declared after creation changes the next period's working days
	w = srv.do(t, http.MethodPost, "/api/v1/payroll/periods", officer, map[string]int{"month": 1, "year": 2026})
	require.Equal(t, http.StatusCreated, w.Code)
	period := decodeBody(t, w)["data"].(map[string]interface{})["period"].(map[string]interface{})
	assert.EqualValues(t, 21, period["working_days"])

	w = srv.do(t, http.MethodDelete, "/api/v1/holidays/"+holidayID, officer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = srv.do(t, http.MethodDelete, "/api/v1/holidays/"+holidayID, officer, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

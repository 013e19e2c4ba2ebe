package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Periods
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	DeletePeriod(w http.ResponseWriter, r *http.Request)

	// Lifecycle
	GeneratePayroll(w http.ResponseWriter, r *http.Request)
	ApprovePeriod(w http.ResponseWriter, r *http.Request)
	PayPeriod(w http.ResponseWriter, r *http.Request)
	LockPeriod(w http.ResponseWriter, r *http.Request)

	// Records
	ListRecords(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	ExportRecords(w http.ResponseWriter, r *http.Request)
	GetAttendanceAggregate(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== PERIODS ==========

func (h *payrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.payrollService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", result)
}

func (h *payrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	result, err := h.payrollService.GetPeriod(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := payroll.PeriodFilter{
		Page:  queryInt(query.Get("page"), 1),
		Limit: queryInt(query.Get("limit"), 20),
	}
	if yearStr := query.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year", nil)
			return
		}
		filter.Year = &year
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	result, err := h.payrollService.ListPeriods(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, pageMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *payrollHandlerImpl) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	if err := h.payrollService.DeletePeriod(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period deleted successfully", nil)
}

// ========== LIFECYCLE ==========

func (h *payrollHandlerImpl) GeneratePayroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	result, err := h.payrollService.GeneratePayroll(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll generated", result)
}

func (h *payrollHandlerImpl) ApprovePeriod(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.ApprovePeriod, "Payroll period approved")
}

func (h *payrollHandlerImpl) LockPeriod(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.payrollService.LockPeriod, "Payroll period locked")
}

func (h *payrollHandlerImpl) PayPeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	var req payroll.PayPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PeriodID = id

	result, err := h.payrollService.PayPeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll period paid", result)
}

func (h *payrollHandlerImpl) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) (payroll.PeriodResponse, error), message string) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	result, err := fn(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// ========== RECORDS ==========

func (h *payrollHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	query := r.URL.Query()
	filter := payroll.RecordFilter{
		Page:      queryInt(query.Get("page"), 1),
		Limit:     queryInt(query.Get("limit"), 20),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
	}
	if department := query.Get("department"); department != "" {
		filter.Department = &department
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}

	result, err := h.payrollService.ListRecords(r.Context(), id, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Data, pageMeta(result.Page, result.Limit, result.TotalCount))
}

func (h *payrollHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid record ID", nil)
		return
	}

	result, err := h.payrollService.GetRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	result, err := h.payrollService.GetSummary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) ExportRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.BadRequest(w, "Invalid period ID", nil)
		return
	}

	format := payroll.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = payroll.ExportFormatXLSX
	}

	// Render fully before any header is written
	var buf bytes.Buffer
	if err := h.payrollService.ExportRecords(r.Context(), id, format, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payroll-%s.%s\"", id, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *payrollHandlerImpl) GetAttendanceAggregate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	employeeID := chi.URLParam(r, "employeeId")
	if !validator.IsValidUUID(id) || !validator.IsValidExternalID(employeeID) {
		response.BadRequest(w, "Invalid period or employee ID", nil)
		return
	}

	result, err := h.payrollService.AggregateAttendance(r.Context(), id, employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== HELPERS ==========

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func pageMeta(page, limit int, total int64) *response.Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========== GENERATION ==========

func (s *PayrollServiceImpl) GeneratePayroll(ctx context.Context, periodID string) (payroll.GenerateResponse, error) {
	result, err := s.generate(ctx, periodID)
	if err != nil {
		return payroll.GenerateResponse{}, err
	}

	issues := make([]payroll.IssueResponse, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, payroll.IssueResponse{
			EmployeeID:   issue.EmployeeID,
			EmployeeName: issue.EmployeeName,
			Reason:       issue.Reason,
		})
	}

	return payroll.GenerateResponse{
		Period:         mapToPeriodResponse(result.Period),
		Records:        mapToRecordResponses(result.Records),
		Issues:         issues,
		StatusAdvanced: result.StatusAdvanced,
	}, nil
}

// generate fetches every input up front, computes all records in memory and
// hands them to the repository as one atomic write. Nothing is written when
// any fetch fails.
func (s *PayrollServiceImpl) generate(ctx context.Context, periodID string) (payroll.GenerationResult, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return payroll.GenerationResult{}, err
	}
	if !period.Status.IsGeneratable() {
		return payroll.GenerationResult{}, payroll.ErrPeriodNotGeneratable
	}

	if _, busy := s.generating.LoadOrStore(periodID, struct{}{}); busy {
		s.logger.Warn("Payroll generation already running", "period_id", periodID)
		return payroll.GenerationResult{}, payroll.ErrConcurrentGenerationConflict
	}
	defer s.generating.Delete(periodID)

	employees, err := s.employeeRepo.GetActive(ctx)
	if err != nil {
		return payroll.GenerationResult{}, fmt.Errorf("%w: active employees: %w", payroll.ErrUpstreamFetch, err)
	}
	if len(employees) == 0 {
		s.logger.Warn("No active employees for payroll generation", "period_id", periodID)
		return payroll.GenerationResult{}, payroll.ErrNoActiveEmployees
	}

	holidays, err := s.holidayRepo.ListInRange(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.GenerationResult{}, fmt.Errorf("%w: holidays: %w", payroll.ErrUpstreamFetch, err)
	}
	period.WorkingDays = WorkingDays(period.StartDate, period.EndDate, holidays, s.policy)

	employeeIDs := make([]string, 0, len(employees))
	for _, emp := range employees {
		employeeIDs = append(employeeIDs, emp.ID)
	}
	rows, err := s.attendanceRepo.ListByEmployeesInRange(ctx, employeeIDs, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.GenerationResult{}, fmt.Errorf("%w: attendance: %w", payroll.ErrUpstreamFetch, err)
	}

	aggregates := AggregateAll(period, employees, rows)

	records := make([]payroll.PayrollRecord, 0, len(employees))
	var issues []payroll.EmployeeIssue
	for _, emp := range employees {
		record, issue, err := s.buildRecord(emp, period, aggregates[emp.ID])
		if err != nil {
			return payroll.GenerationResult{}, err
		}
		if issue != nil {
			issues = append(issues, *issue)
		}
		records = append(records, record)
	}

	nextStatus := period.Status
	if period.Status == payroll.PeriodStatusDraft {
		nextStatus = payroll.PeriodStatusInReview
	}

	saved, written, err := s.payrollRepo.SaveGeneration(ctx, payroll.GenerationWrite{
		PeriodID:        period.ID,
		ExpectedVersion: period.Version,
		WorkingDays:     period.WorkingDays,
		NextStatus:      nextStatus,
		Records:         records,
	})
	if err != nil {
		if errors.Is(err, payroll.ErrConcurrentGenerationConflict) || errors.Is(err, payroll.ErrPeriodNotFound) {
			return payroll.GenerationResult{}, err
		}
		s.logger.Error("Failed to save payroll generation", "period_id", periodID, "error", err)
		return payroll.GenerationResult{}, fmt.Errorf("%w: %w", payroll.ErrWriteFailure, err)
	}

	s.logger.Info("Payroll generated",
		"period_id", saved.ID,
		"records", len(written),
		"issues", len(issues),
		"working_days", saved.WorkingDays,
		"status", saved.Status,
	)

	return payroll.GenerationResult{
		Period:         saved,
		Records:        written,
		Issues:         issues,
		StatusAdvanced: saved.Status != period.Status,
	}, nil
}

// buildRecord computes one employee's record. A missing rate still yields a
// zero-pay record, noted and reported as an issue.
func (s *PayrollServiceImpl) buildRecord(emp employee.Employee, period payroll.PayrollPeriod, agg payroll.AttendanceAggregate) (payroll.PayrollRecord, *payroll.EmployeeIssue, error) {
	pay, err := s.calculator.ComputePay(emp, period, agg)

	var (
		notes *string
		issue *payroll.EmployeeIssue
	)
	if err != nil {
		if !errors.Is(err, payroll.ErrMissingCompensationTerms) {
			return payroll.PayrollRecord{}, nil, err
		}
		reason := fmt.Sprintf("no positive %s rate configured", emp.SalaryType)
		switch emp.SalaryType {
		case employee.SalaryTypeMonthly, employee.SalaryTypeDaily, employee.SalaryTypeHourly:
		default:
			reason = fmt.Sprintf("unknown salary type %q", emp.SalaryType)
		}
		notes = &reason
		issue = &payroll.EmployeeIssue{EmployeeID: emp.ID, EmployeeName: emp.FullName, Reason: reason}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.PayrollRecord{}, nil, fmt.Errorf("failed to generate record id: %w", err)
	}

	name, code := emp.FullName, emp.EmployeeCode
	return payroll.PayrollRecord{
		ID:              id.String(),
		PeriodID:        period.ID,
		EmployeeID:      emp.ID,
		PresentDays:     agg.PresentDays,
		AbsentDays:      agg.AbsentDays,
		PaidLeaveDays:   agg.LeaveDays,
		UnpaidLeaveDays: 0,
		LateDays:        agg.LateDays,
		OvertimeHours:   agg.OvertimeHours,
		SalaryType:      string(emp.SalaryType),
		BaseRate:        pay.BaseRate,
		BasePay:         pay.BasePay,
		OvertimePay:     pay.OvertimePay,
		EarningsDetail: map[string]decimal.Decimal{
			payroll.EarningOvertime: pay.OvertimePay,
		},
		DeductionsDetail: map[string]decimal.Decimal{},
		TotalEarnings:    pay.GrossPay,
		TotalDeductions:  decimal.Zero,
		GrossPay:         pay.GrossPay,
		NetPay:           pay.NetPay,
		Status:           payroll.RecordStatusDraft,
		Notes:            notes,
		EmployeeName:     &name,
		EmployeeCode:     &code,
		Department:       emp.Department,
	}, issue, nil
}

// ========== ATTENDANCE PREVIEW ==========

func (s *PayrollServiceImpl) AggregateAttendance(ctx context.Context, periodID, employeeID string) (payroll.AttendanceAggregateResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return payroll.AttendanceAggregateResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.AttendanceAggregateResponse{}, err
	}

	rows, err := s.attendanceRepo.ListByEmployeesInRange(ctx, []string{employeeID}, period.StartDate, period.EndDate)
	if err != nil {
		return payroll.AttendanceAggregateResponse{}, fmt.Errorf("%w: attendance: %w", payroll.ErrUpstreamFetch, err)
	}

	agg := Aggregate(period, employeeID, rows)

	return payroll.AttendanceAggregateResponse{
		PeriodID:      period.ID,
		EmployeeID:    employeeID,
		WorkingDays:   period.WorkingDays,
		PresentDays:   agg.PresentDays,
		AbsentDays:    agg.AbsentDays,
		LeaveDays:     agg.LeaveDays,
		LateDays:      agg.LateDays,
		OvertimeHours: agg.OvertimeHours,
	}, nil
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, periodID string, filter payroll.RecordFilter) (payroll.ListRecordResponse, error) {
	if _, err := s.payrollRepo.GetPeriodByID(ctx, periodID); err != nil {
		return payroll.ListRecordResponse{}, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	records, totalCount, err := s.payrollRepo.ListRecordsByPeriod(ctx, periodID, filter)
	if err != nil {
		return payroll.ListRecordResponse{}, err
	}

	return payroll.ListRecordResponse{
		Data:       mapToRecordResponses(records),
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, id string) (payroll.RecordResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	return mapToRecordResponse(record), nil
}

// ========== SUMMARY ==========

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, periodID string) (payroll.SummaryResponse, error) {
	period, err := s.payrollRepo.GetPeriodByID(ctx, periodID)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}

	summary, err := s.payrollRepo.GetPeriodSummary(ctx, periodID)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}

	return payroll.SummaryResponse{
		PeriodID:         period.ID,
		PeriodName:       period.Name,
		Status:           string(period.Status),
		WorkingDays:      period.WorkingDays,
		TotalEmployees:   summary.TotalEmployees,
		TotalBasePay:     summary.TotalBasePay,
		TotalOvertimePay: summary.TotalOvertimePay,
		TotalGrossPay:    summary.TotalGrossPay,
		TotalNetPay:      summary.TotalNetPay,
		DraftCount:       summary.DraftCount,
		PaidCount:        summary.PaidCount,
	}, nil
}

// ========== HELPERS ==========

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format("2006-01-02")
	return &str
}

func mapToPeriodResponse(p payroll.PayrollPeriod) payroll.PeriodResponse {
	return payroll.PeriodResponse{
		ID:          p.ID,
		Name:        p.Name,
		Month:       p.Month,
		Year:        p.Year,
		StartDate:   p.StartDate.Format("2006-01-02"),
		EndDate:     p.EndDate.Format("2006-01-02"),
		WorkingDays: p.WorkingDays,
		Status:      string(p.Status),
		Version:     p.Version,
		GeneratedAt: formatTime(p.GeneratedAt),
		ApprovedAt:  formatTime(p.ApprovedAt),
		ApprovedBy:  p.ApprovedBy,
		PaidAt:      formatTime(p.PaidAt),
		PaidBy:      p.PaidBy,
		LockedAt:    formatTime(p.LockedAt),
		LockedBy:    p.LockedBy,
	}
}

func mapToRecordResponse(r payroll.PayrollRecord) payroll.RecordResponse {
	employeeName := ""
	employeeCode := ""
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}
	if r.EmployeeCode != nil {
		employeeCode = *r.EmployeeCode
	}

	return payroll.RecordResponse{
		ID:               r.ID,
		PeriodID:         r.PeriodID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     employeeName,
		EmployeeCode:     employeeCode,
		Department:       r.Department,
		PresentDays:      r.PresentDays,
		AbsentDays:       r.AbsentDays,
		PaidLeaveDays:    r.PaidLeaveDays,
		UnpaidLeaveDays:  r.UnpaidLeaveDays,
		LateDays:         r.LateDays,
		OvertimeHours:    r.OvertimeHours,
		SalaryType:       r.SalaryType,
		BaseRate:         r.BaseRate,
		BasePay:          r.BasePay,
		OvertimePay:      r.OvertimePay,
		EarningsDetail:   r.EarningsDetail,
		DeductionsDetail: r.DeductionsDetail,
		TotalEarnings:    r.TotalEarnings,
		TotalDeductions:  r.TotalDeductions,
		GrossPay:         r.GrossPay,
		NetPay:           r.NetPay,
		Status:           string(r.Status),
		PaymentMethod:    r.PaymentMethod,
		PaymentDate:      formatDate(r.PaymentDate),
		PaymentReference: r.PaymentReference,
		Notes:            r.Notes,
	}
}

func mapToRecordResponses(records []payroll.PayrollRecord) []payroll.RecordResponse {
	result := make([]payroll.RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, mapToRecordResponse(r))
	}
	return result
}

package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// Policy holds the calendar rules used when counting working days.
type Policy struct {
	DefaultWorkingDays int
	ExcludeWeekends    bool
}

func DefaultPolicy() Policy {
	return Policy{DefaultWorkingDays: 22}
}

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	holidayRepo    holiday.HolidayRepository
	calculator     Calculator
	policy         Policy
	logger         *slog.Logger
	now            func() time.Time

	generating sync.Map // period id -> struct{}
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	holidayRepo holiday.HolidayRepository,
	calculator Calculator,
	policy Policy,
	logger *slog.Logger,
) payroll.PayrollService {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.DefaultWorkingDays <= 0 {
		policy.DefaultWorkingDays = DefaultPolicy().DefaultWorkingDays
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		holidayRepo:    holidayRepo,
		calculator:     calculator,
		policy:         policy,
		logger:         logger,
		now:            time.Now,
	}
}

// WorkingDays counts calendar days in [start, end] that are not holidays.
// Weekends count as working days unless the policy excludes them.
func WorkingDays(start, end time.Time, holidays []holiday.Holiday, policy Policy) int {
	first := civilDate(start)
	last := civilDate(end)

	off := make(map[time.Time]bool, len(holidays))
	for _, h := range holidays {
		off[civilDate(h.Date)] = true
	}

	days := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if off[d] {
			continue
		}
		if policy.ExcludeWeekends && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		days++
	}
	return days
}

// civilDate drops the clock and zone so dates compare by calendar day.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthBounds returns the first and last calendar day of the month.
func monthBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// ========== PERIODS ==========

func (s *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.CreatePeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CreatePeriodResponse{}, err
	}

	exists, err := s.payrollRepo.ExistsPeriodByMonthYear(ctx, req.Month, req.Year)
	if err != nil {
		return payroll.CreatePeriodResponse{}, err
	}
	if exists {
		return payroll.CreatePeriodResponse{}, payroll.ErrDuplicatePeriod
	}

	start, end := monthBounds(req.Month, req.Year)

	var warnings []string
	workingDays := s.policy.DefaultWorkingDays
	holidays, err := s.holidayRepo.ListInRange(ctx, start, end)
	if err != nil {
		s.logger.Warn("Holiday lookup failed, using default working days",
			"month", req.Month, "year", req.Year, "default", workingDays, "error", err)
		warnings = append(warnings, fmt.Sprintf("holiday calendar unavailable, working days defaulted to %d", workingDays))
	} else {
		workingDays = WorkingDays(start, end, holidays, s.policy)
	}

	name := start.Format("January 2006")
	if req.Name != nil {
		name = *req.Name
	}

	id, err := uuid.NewV7()
	if err != nil {
		return payroll.CreatePeriodResponse{}, fmt.Errorf("failed to generate period id: %w", err)
	}

	created, err := s.payrollRepo.CreatePeriod(ctx, payroll.PayrollPeriod{
		ID:          id.String(),
		Name:        name,
		Month:       req.Month,
		Year:        req.Year,
		StartDate:   start,
		EndDate:     end,
		WorkingDays: workingDays,
		Status:      payroll.PeriodStatusDraft,
	})
	if err != nil {
		return payroll.CreatePeriodResponse{}, err
	}

	s.logger.Info("Payroll period created", "period_id", created.ID, "name", created.Name, "working_days", created.WorkingDays)

	return payroll.CreatePeriodResponse{
		Period:   mapToPeriodResponse(created),
		Warnings: warnings,
	}, nil
}

func (s *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	p, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return mapToPeriodResponse(p), nil
}

func (s *PayrollServiceImpl) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) (payroll.ListPeriodResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListPeriodResponse{}, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	periods, totalCount, err := s.payrollRepo.ListPeriods(ctx, filter)
	if err != nil {
		return payroll.ListPeriodResponse{}, err
	}

	data := make([]payroll.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		data = append(data, mapToPeriodResponse(p))
	}

	return payroll.ListPeriodResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) DeletePeriod(ctx context.Context, id string) error {
	p, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.Status.IsDeletable() {
		return payroll.ErrPeriodNotDeletable
	}

	if err := s.payrollRepo.DeletePeriod(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Payroll period deleted", "period_id", id, "status", p.Status)
	return nil
}

// ========== STATUS TRANSITIONS ==========

func (s *PayrollServiceImpl) ApprovePeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	return s.transition(ctx, id, payroll.PeriodStatusApproved)
}

func (s *PayrollServiceImpl) LockPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	return s.transition(ctx, id, payroll.PeriodStatusLocked)
}

func (s *PayrollServiceImpl) PayPeriod(ctx context.Context, req payroll.PayPeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	p, err := s.payrollRepo.GetPeriodByID(ctx, req.PeriodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if !p.Status.CanTransitionTo(payroll.PeriodStatusPaid) {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: %s to %s", payroll.ErrInvalidStatusTransition, p.Status, payroll.PeriodStatusPaid)
	}

	actorID, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	paymentDate := civilDate(s.now())
	if req.PaymentDate != nil {
		paymentDate, _ = validator.ParseDate(*req.PaymentDate)
	}

	paid, err := s.payrollRepo.MarkPeriodPaid(ctx, p.ID, p.Version, actorID, payroll.PaymentDetails{
		Method:    req.PaymentMethod,
		Reference: req.PaymentReference,
		Date:      paymentDate,
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	s.logger.Info("Payroll period paid", "period_id", paid.ID, "payment_method", req.PaymentMethod)
	return mapToPeriodResponse(paid), nil
}

func (s *PayrollServiceImpl) transition(ctx context.Context, id string, next payroll.PeriodStatus) (payroll.PeriodResponse, error) {
	p, err := s.payrollRepo.GetPeriodByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	if !p.Status.CanTransitionTo(next) {
		return payroll.PeriodResponse{}, fmt.Errorf("%w: %s to %s", payroll.ErrInvalidStatusTransition, p.Status, next)
	}

	actorID, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	updated, err := s.payrollRepo.UpdatePeriodStatus(ctx, p.ID, p.Version, next, actorID, s.now())
	if err != nil {
		if errors.Is(err, payroll.ErrConcurrentGenerationConflict) {
			s.logger.Warn("Payroll period changed during status update", "period_id", id, "next", next)
		}
		return payroll.PeriodResponse{}, err
	}

	s.logger.Info("Payroll period status changed", "period_id", id, "from", p.Status, "to", updated.Status)
	return mapToPeriodResponse(updated), nil
}

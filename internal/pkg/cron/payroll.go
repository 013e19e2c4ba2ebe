package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
)

// PeriodCreator is the slice of the payroll service the housekeeping job needs.
type PeriodCreator interface {
	CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.CreatePeriodResponse, error)
}

type PayrollJobs struct {
	periods PeriodCreator
	now     func() time.Time
	logger  *slog.Logger
}

func NewPayrollJobs(periods PeriodCreator, now func() time.Time, logger *slog.Logger) *PayrollJobs {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayrollJobs{periods: periods, now: now, logger: logger}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("ensure_current_period", interval, j.EnsureCurrentPeriod)
}

// EnsureCurrentPeriod creates the draft period for the current month if it is
// missing. An existing period is not an error.
func (j *PayrollJobs) EnsureCurrentPeriod(ctx context.Context) error {
	now := j.now()
	resp, err := j.periods.CreatePeriod(ctx, payroll.CreatePeriodRequest{
		Month: int(now.Month()),
		Year:  now.Year(),
	})
	if err != nil {
		if errors.Is(err, payroll.ErrDuplicatePeriod) {
			return nil
		}
		return fmt.Errorf("failed to create period for %d-%02d: %w", now.Year(), now.Month(), err)
	}

	j.logger.Info("Cron: created payroll period", "period_id", resp.Period.ID, "name", resp.Period.Name, "warnings", resp.Warnings)
	return nil
}

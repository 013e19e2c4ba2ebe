package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingDays(t *testing.T) {
	start, end := monthBounds(1, 2026)

	t.Run("calendar days minus distinct holidays in range", func(t *testing.T) {
		holidays := []holiday.Holiday{
			newHoliday(2026, time.January, 1, "New Year"),
			newHoliday(2026, time.January, 1, "New Year (duplicate entry)"),
			newHoliday(2026, time.January, 27, "Founders Day"),
			newHoliday(2026, time.February, 2, "Outside"),
		}
		assert.Equal(t, 29, WorkingDays(start, end, holidays, Policy{}))
	})

	t.Run("weekends count unless excluded", func(t *testing.T) {
		assert.Equal(t, 31, WorkingDays(start, end, nil, Policy{}))
		assert.Equal(t, 22, WorkingDays(start, end, nil, Policy{ExcludeWeekends: true}))
	})

	t.Run("holiday on a weekend is not subtracted twice", func(t *testing.T) {
		holidays := []holiday.Holiday{
			newHoliday(2026, time.January, 1, "New Year"),
			newHoliday(2026, time.January, 3, "Saturday holiday"),
		}
		assert.Equal(t, 21, WorkingDays(start, end, holidays, Policy{ExcludeWeekends: true}))
	})

	t.Run("same input gives same result", func(t *testing.T) {
		holidays := []holiday.Holiday{newHoliday(2026, time.January, 1, "New Year")}
		assert.Equal(t, WorkingDays(start, end, holidays, Policy{}), WorkingDays(start, end, holidays, Policy{}))
	})
}

func TestPayrollService_CreatePeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("computes bounds and working days from holidays", func(t *testing.T) {
		f := newFixture(t, Policy{})
		_, err := f.holidays.Create(ctx, newHoliday(2026, time.February, 17, "Lunar New Year"))
		require.NoError(t, err)

		resp, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Month: 2, Year: 2026})
		require.NoError(t, err)

		assert.Empty(t, resp.Warnings)
		assert.Equal(t, "February 2026", resp.Period.Name)
		assert.Equal(t, "2026-02-01", resp.Period.StartDate)
		assert.Equal(t, "2026-02-28", resp.Period.EndDate)
		assert.Equal(t, 27, resp.Period.WorkingDays)
		assert.Equal(t, string(payroll.PeriodStatusDraft), resp.Period.Status)
	})

	t.Run("custom name", func(t *testing.T) {
		f := newFixture(t, Policy{})
		resp, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Month: 3, Year: 2026, Name: strPtr("Q1 close")})
		require.NoError(t, err)
		assert.Equal(t, "Q1 close", resp.Period.Name)
	})

	t.Run("duplicate month and year leaves the existing period unchanged", func(t *testing.T) {
		f := newFixture(t, Policy{})
		first := f.createPeriod(t)

		_, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Month: 1, Year: 2026, Name: strPtr("Other")})
		assert.ErrorIs(t, err, payroll.ErrDuplicatePeriod)

		got, err := f.svc.GetPeriod(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)

		list, err := f.svc.ListPeriods(ctx, payroll.PeriodFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 1, list.TotalCount)
	})

	t.Run("holiday lookup failure falls back to default with a warning", func(t *testing.T) {
		f := newFixture(t, Policy{DefaultWorkingDays: 22})
		f.holidays.ListErr = errors.New("connection reset")

		resp, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Month: 1, Year: 2026})
		require.NoError(t, err)
		assert.Equal(t, 22, resp.Period.WorkingDays)
		require.Len(t, resp.Warnings, 1)
		assert.Contains(t, resp.Warnings[0], "22")
	})

	t.Run("invalid month and year", func(t *testing.T) {
		f := newFixture(t, Policy{})
		_, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Month: 13, Year: 26})

		var validationErrs validator.ValidationErrors
		require.ErrorAs(t, err, &validationErrs)
		assert.Contains(t, validationErrs.ToMap(), "month")
		assert.Contains(t, validationErrs.ToMap(), "year")
	})
}

func TestPayrollService_ListPeriods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Policy{})

	for month := 1; month <= 3; month++ {
		_, err := f.svc.CreatePeriod(ctx, payroll.CreatePeriodRequest{Month: month, Year: 2026})
		require.NoError(t, err)
	}

	list, err := f.svc.ListPeriods(ctx, payroll.PeriodFilter{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, list.TotalCount)
	require.Len(t, list.Data, 2)
	assert.Equal(t, 3, list.Data[0].Month)
	assert.Equal(t, 1, list.Page)

	_, err = f.svc.ListPeriods(ctx, payroll.PeriodFilter{Status: strPtr("closed")})
	var validationErrs validator.ValidationErrors
	assert.ErrorAs(t, err, &validationErrs)
}

func TestPayrollService_DeletePeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("removes records then the period", func(t *testing.T) {
		emp := monthlyEmployee("Ann", "22000")
		f := newFixture(t, Policy{ExcludeWeekends: true}, emp)
		period := f.createPeriod(t)
		_, err := f.svc.GeneratePayroll(ctx, period.ID)
		require.NoError(t, err)
		require.Equal(t, 1, f.payrollRepo.RecordCount())

		require.NoError(t, f.svc.DeletePeriod(ctx, period.ID))

		assert.Zero(t, f.payrollRepo.RecordCount())
		_, err = f.svc.GetPeriod(ctx, period.ID)
		assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
		_, err = f.svc.ListRecords(ctx, period.ID, payroll.RecordFilter{})
		assert.ErrorIs(t, err, payroll.ErrPeriodNotFound)
	})

	t.Run("missing period", func(t *testing.T) {
		f := newFixture(t, Policy{})
		assert.ErrorIs(t, f.svc.DeletePeriod(ctx, newUUID()), payroll.ErrPeriodNotFound)
	})

	t.Run("approved period cannot be deleted", func(t *testing.T) {
		emp := monthlyEmployee("Ann", "22000")
		f := newFixture(t, Policy{}, emp)
		period := f.createPeriod(t)
		_, err := f.svc.GeneratePayroll(ctx, period.ID)
		require.NoError(t, err)
		_, err = f.svc.ApprovePeriod(ctx, period.ID)
		require.NoError(t, err)

		assert.ErrorIs(t, f.svc.DeletePeriod(ctx, period.ID), payroll.ErrPeriodNotDeletable)
		assert.Equal(t, 1, f.payrollRepo.RecordCount())
	})
}

func TestPayrollService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	emp := dailyEmployee("Dan", "1000")
	f := newFixture(t, Policy{}, emp)
	f.attendance.Add(attend(emp.ID, 20, attendance.StatusPresent, nil)...)
	period := f.createPeriod(t)

	_, err := f.svc.ApprovePeriod(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition, "draft cannot be approved before generation")

	_, err = f.svc.GeneratePayroll(ctx, period.ID)
	require.NoError(t, err)

	_, err = f.svc.LockPeriod(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition, "in_review cannot be locked")

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{"user_id": "approver-1", "role": "approver"})
	require.NoError(t, err)
	actorCtx := jwtauth.NewContext(ctx, token, nil)

	approved, err := f.svc.ApprovePeriod(actorCtx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.PeriodStatusApproved), approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "approver-1", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	_, err = f.svc.GeneratePayroll(ctx, period.ID)
	assert.ErrorIs(t, err, payroll.ErrPeriodNotGeneratable)

	paid, err := f.svc.PayPeriod(actorCtx, payroll.PayPeriodRequest{
		PeriodID:         period.ID,
		PaymentMethod:    "bank_transfer",
		PaymentReference: strPtr("BATCH-0126"),
		PaymentDate:      strPtr("2026-02-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(payroll.PeriodStatusPaid), paid.Status)
	require.NotNil(t, paid.PaidBy)
	assert.Equal(t, "approver-1", *paid.PaidBy)

	records, err := f.svc.ListRecords(ctx, period.ID, payroll.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records.Data, 1)
	assert.Equal(t, string(payroll.RecordStatusPaid), records.Data[0].Status)
	require.NotNil(t, records.Data[0].PaymentDate)
	assert.Equal(t, "2026-02-01", *records.Data[0].PaymentDate)
	require.NotNil(t, records.Data[0].PaymentReference)
	assert.Equal(t, "BATCH-0126", *records.Data[0].PaymentReference)

	_, err = f.svc.PayPeriod(ctx, payroll.PayPeriodRequest{PeriodID: period.ID, PaymentMethod: "cash"})
	assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)

	locked, err := f.svc.LockPeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payroll.PeriodStatusLocked), locked.Status)
	assert.Nil(t, locked.LockedBy)

	for _, op := range []func(context.Context, string) (payroll.PeriodResponse, error){f.svc.ApprovePeriod, f.svc.LockPeriod} {
		_, err := op(ctx, period.ID)
		assert.ErrorIs(t, err, payroll.ErrInvalidStatusTransition)
	}
	assert.ErrorIs(t, f.svc.DeletePeriod(ctx, period.ID), payroll.ErrPeriodNotDeletable)
}

func TestPayrollService_PayPeriodValidation(t *testing.T) {
	f := newFixture(t, Policy{})
	period := f.createPeriod(t)

	_, err := f.svc.PayPeriod(context.Background(), payroll.PayPeriodRequest{
		PeriodID:      period.ID,
		PaymentMethod: "crypto",
		PaymentDate:   strPtr("01/02/2026"),
	})

	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.Contains(t, validationErrs.ToMap(), "payment_method")
	assert.Contains(t, validationErrs.ToMap(), "payment_date")
}

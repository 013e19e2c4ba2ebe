// Package memory holds map-backed repositories for tests. Each repository
// exposes error fields (SaveErr, ListErr and so on) that, when set, are
// returned by the matching method instead of touching state, plus call
// counters and a BeforeSave hook. Only test code imports it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type PayrollRepository struct {
	mu      sync.Mutex
	periods map[string]payroll.PayrollPeriod
	records map[string]payroll.PayrollRecord

	CreatePeriodErr error
	SaveErr         error
	// BeforeSave runs at the start of SaveGeneration, outside the lock.
	BeforeSave func()

	SaveCalls int
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		periods: make(map[string]payroll.PayrollPeriod),
		records: make(map[string]payroll.PayrollRecord),
	}
}

var _ payroll.PayrollRepository = (*PayrollRepository)(nil)

func (r *PayrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	if r.CreatePeriodErr != nil {
		return payroll.PayrollPeriod{}, r.CreatePeriodErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.periods {
		if p.Month == period.Month && p.Year == period.Year {
			return payroll.PayrollPeriod{}, payroll.ErrDuplicatePeriod
		}
	}

	now := time.Now()
	period.CreatedAt = now
	period.UpdatedAt = now
	r.periods[period.ID] = period
	return period, nil
}

func (r *PayrollRepository) GetPeriodByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r *PayrollRepository) ExistsPeriodByMonthYear(ctx context.Context, month, year int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.periods {
		if p.Month == month && p.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (r *PayrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []payroll.PayrollPeriod
	for _, p := range r.periods {
		if filter.Year != nil && p.Year != *filter.Year {
			continue
		}
		if filter.Status != nil && string(p.Status) != *filter.Status {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Year != matched[j].Year {
			return matched[i].Year > matched[j].Year
		}
		return matched[i].Month > matched[j].Month
	})

	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *PayrollRepository) UpdatePeriodStatus(ctx context.Context, id string, expectedVersion int, next payroll.PeriodStatus, actorID *string, at time.Time) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.guardedPeriod(id, expectedVersion)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	p.Status = next
	p.Version++
	p.UpdatedAt = time.Now()
	switch next {
	case payroll.PeriodStatusApproved:
		p.ApprovedAt, p.ApprovedBy = &at, actorID
	case payroll.PeriodStatusPaid:
		p.PaidAt, p.PaidBy = &at, actorID
	case payroll.PeriodStatusLocked:
		p.LockedAt, p.LockedBy = &at, actorID
	}
	r.periods[id] = p
	return p, nil
}

func (r *PayrollRepository) DeletePeriod(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if !p.Status.IsDeletable() {
		return payroll.ErrPeriodNotDeletable
	}

	for recID, rec := range r.records {
		if rec.PeriodID == id {
			delete(r.records, recID)
		}
	}
	delete(r.periods, id)
	return nil
}

func (r *PayrollRepository) SaveGeneration(ctx context.Context, write payroll.GenerationWrite) (payroll.PayrollPeriod, []payroll.PayrollRecord, error) {
	if r.BeforeSave != nil {
		r.BeforeSave()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.SaveCalls++
	if r.SaveErr != nil {
		return payroll.PayrollPeriod{}, nil, r.SaveErr
	}

	p, err := r.guardedPeriod(write.PeriodID, write.ExpectedVersion)
	if err != nil {
		return payroll.PayrollPeriod{}, nil, err
	}

	now := time.Now()
	existing := make(map[string]payroll.PayrollRecord)
	for _, rec := range r.records {
		if rec.PeriodID == write.PeriodID {
			existing[rec.EmployeeID] = rec
		}
	}

	kept := make(map[string]bool, len(write.Records))
	written := make([]payroll.PayrollRecord, 0, len(write.Records))
	for _, rec := range write.Records {
		rec.PeriodID = write.PeriodID
		rec.CreatedAt = now
		if prev, ok := existing[rec.EmployeeID]; ok {
			rec.ID = prev.ID
			rec.CreatedAt = prev.CreatedAt
		}
		rec.UpdatedAt = now
		r.records[rec.ID] = rec
		kept[rec.EmployeeID] = true
		written = append(written, rec)
	}
	for employeeID, rec := range existing {
		if !kept[employeeID] {
			delete(r.records, rec.ID)
		}
	}

	p.WorkingDays = write.WorkingDays
	p.Status = write.NextStatus
	p.Version++
	p.GeneratedAt = &now
	p.UpdatedAt = now
	r.periods[p.ID] = p

	return p, written, nil
}

func (r *PayrollRepository) MarkPeriodPaid(ctx context.Context, id string, expectedVersion int, actorID *string, payment payroll.PaymentDetails) (payroll.PayrollPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.guardedPeriod(id, expectedVersion)
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	now := time.Now()
	p.Status = payroll.PeriodStatusPaid
	p.PaidAt, p.PaidBy = &now, actorID
	p.Version++
	p.UpdatedAt = now
	r.periods[id] = p

	for recID, rec := range r.records {
		if rec.PeriodID != id {
			continue
		}
		method := payment.Method
		date := payment.Date
		rec.Status = payroll.RecordStatusPaid
		rec.PaymentMethod = &method
		rec.PaymentReference = payment.Reference
		rec.PaymentDate = &date
		rec.UpdatedAt = now
		r.records[recID] = rec
	}

	return p, nil
}

func (r *PayrollRepository) ListRecordsByPeriod(ctx context.Context, periodID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []payroll.PayrollRecord
	for _, rec := range r.periodRecords(periodID) {
		if filter.Department != nil && (rec.Department == nil || *rec.Department != *filter.Department) {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		matched = append(matched, rec)
	}

	if filter.SortBy == "net_pay" || filter.SortBy == "gross_pay" {
		pick := func(rec payroll.PayrollRecord) decimal.Decimal {
			if filter.SortBy == "net_pay" {
				return rec.NetPay
			}
			return rec.GrossPay
		}
		sort.SliceStable(matched, func(i, j int) bool { return pick(matched[i]).LessThan(pick(matched[j])) })
	}
	if filter.SortOrder == "desc" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *PayrollRepository) GetRecordsByPeriodID(ctx context.Context, periodID string) ([]payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.periodRecords(periodID), nil
}

func (r *PayrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *PayrollRepository) GetPeriodSummary(ctx context.Context, periodID string) (payroll.PeriodSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	summary := payroll.PeriodSummary{PeriodID: periodID}
	for _, rec := range r.periodRecords(periodID) {
		summary.TotalEmployees++
		summary.TotalBasePay = summary.TotalBasePay.Add(rec.BasePay)
		summary.TotalOvertimePay = summary.TotalOvertimePay.Add(rec.OvertimePay)
		summary.TotalGrossPay = summary.TotalGrossPay.Add(rec.GrossPay)
		summary.TotalNetPay = summary.TotalNetPay.Add(rec.NetPay)
		switch rec.Status {
		case payroll.RecordStatusDraft:
			summary.DraftCount++
		case payroll.RecordStatusPaid:
			summary.PaidCount++
		}
	}
	return summary, nil
}

// RecordCount returns how many records exist across all periods.
func (r *PayrollRepository) RecordCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *PayrollRepository) guardedPeriod(id string, expectedVersion int) (payroll.PayrollPeriod, error) {
	p, ok := r.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	if p.Version != expectedVersion {
		return payroll.PayrollPeriod{}, payroll.ErrConcurrentGenerationConflict
	}
	return p, nil
}

// periodRecords returns the period's records ordered by employee name then id.
func (r *PayrollRepository) periodRecords(periodID string) []payroll.PayrollRecord {
	var out []payroll.PayrollRecord
	for _, rec := range r.records {
		if rec.PeriodID == periodID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := deref(out[i].EmployeeName), deref(out[j].EmployeeName)
		if ni != nj {
			return strings.Compare(ni, nj) < 0
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
)

type HolidayRepository struct {
	mu       sync.Mutex
	holidays map[string]holiday.Holiday

	ListErr error
}

func NewHolidayRepository(holidays ...holiday.Holiday) *HolidayRepository {
	r := &HolidayRepository{holidays: make(map[string]holiday.Holiday)}
	for _, h := range holidays {
		r.holidays[h.ID] = h
	}
	return r
}

var _ holiday.HolidayRepository = (*HolidayRepository)(nil)

func (r *HolidayRepository) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.holidays {
		if sameDay(existing.Date, h.Date) {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
	}
	h.CreatedAt = time.Now()
	r.holidays[h.ID] = h
	return h, nil
}

func (r *HolidayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lo := dayOf(from)
	hi := dayOf(to)

	var out []holiday.Holiday
	for _, h := range r.holidays {
		d := dayOf(h.Date)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *HolidayRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.holidays[id]; !ok {
		return holiday.ErrHolidayNotFound
	}
	delete(r.holidays, id)
	return nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

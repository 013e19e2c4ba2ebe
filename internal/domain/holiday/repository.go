package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	// ListInRange returns holidays dated within [from, to], ordered by date.
	ListInRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
	Delete(ctx context.Context, id string) error
}

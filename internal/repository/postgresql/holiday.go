package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepository) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (id, date, name)
		VALUES ($1, $2, $3)
		RETURNING id, date, name, created_at
	`

	var created holiday.Holiday
	err := q.QueryRow(ctx, query, h.ID, h.Date, h.Name).Scan(
		&created.ID, &created.Date, &created.Name, &created.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_holiday_date") {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}

	return created, nil
}

// ListInRange implements holiday.HolidayRepository.
func (r *holidayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, date, name, created_at
		FROM holidays
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	return holidays, nil
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var deletedID string
	err := q.QueryRow(ctx, `DELETE FROM holidays WHERE id = $1 RETURNING id`, id).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return holiday.ErrHolidayNotFound
		}
		return fmt.Errorf("failed to delete holiday: %w", err)
	}

	return nil
}

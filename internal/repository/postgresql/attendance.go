package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// ListByEmployeesInRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	// to is inclusive through the end of its day
	start, end := attendance.DayRange(from, to)

	query := `
		SELECT id, employee_id, check_in, check_out, status, overtime_hours, created_at
		FROM attendances
		WHERE check_in >= $1 AND check_in < $2
	`
	args := []interface{}{start, end}

	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3)`
		args = append(args, employeeIDs)
	}

	query += ` ORDER BY employee_id, check_in`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		if err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.CheckIn, &att.CheckOut, &att.Status, &att.OvertimeHours, &att.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}

	return records, nil
}

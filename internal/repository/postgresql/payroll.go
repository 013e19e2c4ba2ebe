package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const periodColumns = `id, name, month, year, start_date, end_date, working_days, status, version,
	generated_at, approved_at, approved_by, paid_at, paid_by, locked_at, locked_by, created_at, updated_at`

const recordColumns = `pr.id, pr.period_id, pr.employee_id, pr.present_days, pr.absent_days,
	pr.paid_leave_days, pr.unpaid_leave_days, pr.late_days, pr.overtime_hours,
	pr.salary_type, pr.base_rate, pr.base_pay, pr.overtime_pay, pr.earnings_detail, pr.deductions_detail,
	pr.total_earnings, pr.total_deductions, pr.gross_pay, pr.net_pay, pr.status,
	pr.payment_method, pr.payment_date, pr.payment_reference, pr.notes, pr.created_at, pr.updated_at`

func scanPeriod(row rowScanner) (payroll.PayrollPeriod, error) {
	var p payroll.PayrollPeriod
	err := row.Scan(
		&p.ID, &p.Name, &p.Month, &p.Year, &p.StartDate, &p.EndDate, &p.WorkingDays, &p.Status, &p.Version,
		&p.GeneratedAt, &p.ApprovedAt, &p.ApprovedBy, &p.PaidAt, &p.PaidBy, &p.LockedAt, &p.LockedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanRecord(row rowScanner, withEmployee bool) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	var earningsBytes, deductionsBytes []byte
	dest := []any{
		&rec.ID, &rec.PeriodID, &rec.EmployeeID, &rec.PresentDays, &rec.AbsentDays,
		&rec.PaidLeaveDays, &rec.UnpaidLeaveDays, &rec.LateDays, &rec.OvertimeHours,
		&rec.SalaryType, &rec.BaseRate, &rec.BasePay, &rec.OvertimePay, &earningsBytes, &deductionsBytes,
		&rec.TotalEarnings, &rec.TotalDeductions, &rec.GrossPay, &rec.NetPay, &rec.Status,
		&rec.PaymentMethod, &rec.PaymentDate, &rec.PaymentReference, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if withEmployee {
		dest = append(dest, &rec.EmployeeName, &rec.EmployeeCode, &rec.Department)
	}
	if err := row.Scan(dest...); err != nil {
		return payroll.PayrollRecord{}, err
	}

	if err := unmarshalDetail(earningsBytes, &rec.EarningsDetail); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to decode earnings detail: %w", err)
	}
	if err := unmarshalDetail(deductionsBytes, &rec.DeductionsDetail); err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to decode deductions detail: %w", err)
	}

	return rec, nil
}

func unmarshalDetail(b []byte, out *map[string]decimal.Decimal) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, out)
}

func marshalDetail(m map[string]decimal.Decimal) ([]byte, error) {
	if m == nil {
		m = map[string]decimal.Decimal{}
	}
	return json.Marshal(m)
}

// periodMissOrConflict resolves a guarded update that matched no row.
func periodMissOrConflict(ctx context.Context, q database.Querier, id string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payroll_periods WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check payroll period: %w", err)
	}
	if !exists {
		return payroll.ErrPeriodNotFound
	}
	return payroll.ErrConcurrentGenerationConflict
}

// ========== PERIODS ==========

func (r *payrollRepository) CreatePeriod(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (id, name, month, year, start_date, end_date, working_days, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + periodColumns

	created, err := scanPeriod(q.QueryRow(ctx, query,
		period.ID, period.Name, period.Month, period.Year, period.StartDate, period.EndDate,
		period.WorkingDays, period.Status, period.Version,
	))
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_period_month_year") {
			return payroll.PayrollPeriod{}, payroll.ErrDuplicatePeriod
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetPeriodByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM payroll_periods WHERE id = $1`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) ExistsPeriodByMonthYear(ctx context.Context, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payroll_periods WHERE month = $1 AND year = $2)`, month, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check payroll period: %w", err)
	}

	return exists, nil
}

func (r *payrollRepository) ListPeriods(ctx context.Context, filter payroll.PeriodFilter) ([]payroll.PayrollPeriod, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM payroll_periods WHERE 1 = 1`
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll periods: %w", err)
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY year DESC, month DESC LIMIT $%d OFFSET $%d`,
		periodColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll periods: %w", err)
	}

	return periods, totalCount, nil
}

func (r *payrollRepository) UpdatePeriodStatus(ctx context.Context, id string, expectedVersion int, next payroll.PeriodStatus, actorID *string, at time.Time) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"status = $3", "version = version + 1", "updated_at = NOW()"}
	args := []interface{}{id, expectedVersion, next}

	switch next {
	case payroll.PeriodStatusApproved:
		setParts = append(setParts, "approved_at = $4", "approved_by = $5")
		args = append(args, at, actorID)
	case payroll.PeriodStatusPaid:
		setParts = append(setParts, "paid_at = $4", "paid_by = $5")
		args = append(args, at, actorID)
	case payroll.PeriodStatusLocked:
		setParts = append(setParts, "locked_at = $4", "locked_by = $5")
		args = append(args, at, actorID)
	}

	query := fmt.Sprintf(`
		UPDATE payroll_periods
		SET %s
		WHERE id = $1 AND version = $2
		RETURNING %s
	`, strings.Join(setParts, ", "), periodColumns)

	p, err := scanPeriod(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollPeriod{}, periodMissOrConflict(ctx, q, id)
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to update payroll period status: %w", err)
	}

	return p, nil
}

func (r *payrollRepository) DeletePeriod(ctx context.Context, id string) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM payroll_records WHERE period_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete payroll records: %w", err)
		}

		var deletedID string
		err := tx.QueryRow(ctx, `
			DELETE FROM payroll_periods
			WHERE id = $1 AND status IN ('draft', 'in_review')
			RETURNING id
		`, id).Scan(&deletedID)
		if err != nil {
			if err == pgx.ErrNoRows {
				missErr := periodMissOrConflict(ctx, tx, id)
				if missErr == payroll.ErrConcurrentGenerationConflict {
					// Row exists but is past in_review
					return payroll.ErrPeriodNotDeletable
				}
				return missErr
			}
			return fmt.Errorf("failed to delete payroll period: %w", err)
		}

		return nil
	})
}

func (r *payrollRepository) SaveGeneration(ctx context.Context, write payroll.GenerationWrite) (payroll.PayrollPeriod, []payroll.PayrollRecord, error) {
	var (
		period  payroll.PayrollPeriod
		written []payroll.PayrollRecord
	)

	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		// The guarded update takes the row lock first so a concurrent run
		// blocks here and then misses the version.
		var err error
		period, err = scanPeriod(tx.QueryRow(ctx, `
			UPDATE payroll_periods
			SET working_days = $3, status = $4, version = version + 1, generated_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND version = $2
			RETURNING `+periodColumns,
			write.PeriodID, write.ExpectedVersion, write.WorkingDays, write.NextStatus,
		))
		if err != nil {
			if err == pgx.ErrNoRows {
				return periodMissOrConflict(ctx, tx, write.PeriodID)
			}
			return fmt.Errorf("failed to update payroll period: %w", err)
		}

		upsert := `
			INSERT INTO payroll_records AS pr (
				id, period_id, employee_id, present_days, absent_days, paid_leave_days, unpaid_leave_days,
				late_days, overtime_hours, salary_type, base_rate, base_pay, overtime_pay,
				earnings_detail, deductions_detail, total_earnings, total_deductions, gross_pay, net_pay,
				status, notes
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			ON CONFLICT ON CONSTRAINT uk_payroll_record_period_employee DO UPDATE SET
				present_days = EXCLUDED.present_days,
				absent_days = EXCLUDED.absent_days,
				paid_leave_days = EXCLUDED.paid_leave_days,
				unpaid_leave_days = EXCLUDED.unpaid_leave_days,
				late_days = EXCLUDED.late_days,
				overtime_hours = EXCLUDED.overtime_hours,
				salary_type = EXCLUDED.salary_type,
				base_rate = EXCLUDED.base_rate,
				base_pay = EXCLUDED.base_pay,
				overtime_pay = EXCLUDED.overtime_pay,
				earnings_detail = EXCLUDED.earnings_detail,
				deductions_detail = EXCLUDED.deductions_detail,
				total_earnings = EXCLUDED.total_earnings,
				total_deductions = EXCLUDED.total_deductions,
				gross_pay = EXCLUDED.gross_pay,
				net_pay = EXCLUDED.net_pay,
				status = EXCLUDED.status,
				notes = EXCLUDED.notes,
				updated_at = NOW()
			RETURNING ` + recordColumns

		employeeIDs := make([]string, 0, len(write.Records))
		written = make([]payroll.PayrollRecord, 0, len(write.Records))
		for _, rec := range write.Records {
			earningsJSON, err := marshalDetail(rec.EarningsDetail)
			if err != nil {
				return fmt.Errorf("failed to encode earnings detail: %w", err)
			}
			deductionsJSON, err := marshalDetail(rec.DeductionsDetail)
			if err != nil {
				return fmt.Errorf("failed to encode deductions detail: %w", err)
			}

			saved, err := scanRecord(tx.QueryRow(ctx, upsert,
				rec.ID, write.PeriodID, rec.EmployeeID, rec.PresentDays, rec.AbsentDays, rec.PaidLeaveDays, rec.UnpaidLeaveDays,
				rec.LateDays, rec.OvertimeHours, rec.SalaryType, rec.BaseRate, rec.BasePay, rec.OvertimePay,
				earningsJSON, deductionsJSON, rec.TotalEarnings, rec.TotalDeductions, rec.GrossPay, rec.NetPay,
				rec.Status, rec.Notes,
			), false)
			if err != nil {
				return fmt.Errorf("failed to upsert payroll record for employee %s: %w", rec.EmployeeID, err)
			}
			saved.EmployeeName = rec.EmployeeName
			saved.EmployeeCode = rec.EmployeeCode
			saved.Department = rec.Department

			employeeIDs = append(employeeIDs, rec.EmployeeID)
			written = append(written, saved)
		}

		// Employees no longer active lose their stale record
		if _, err := tx.Exec(ctx, `
			DELETE FROM payroll_records
			WHERE period_id = $1 AND NOT (employee_id = ANY($2))
		`, write.PeriodID, employeeIDs); err != nil {
			return fmt.Errorf("failed to prune payroll records: %w", err)
		}

		return nil
	})
	if err != nil {
		return payroll.PayrollPeriod{}, nil, err
	}

	return period, written, nil
}

func (r *payrollRepository) MarkPeriodPaid(ctx context.Context, id string, expectedVersion int, actorID *string, payment payroll.PaymentDetails) (payroll.PayrollPeriod, error) {
	var period payroll.PayrollPeriod

	err := WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		period, err = scanPeriod(tx.QueryRow(ctx, `
			UPDATE payroll_periods
			SET status = $3, paid_at = NOW(), paid_by = $4, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $2
			RETURNING `+periodColumns,
			id, expectedVersion, payroll.PeriodStatusPaid, actorID,
		))
		if err != nil {
			if err == pgx.ErrNoRows {
				return periodMissOrConflict(ctx, tx, id)
			}
			return fmt.Errorf("failed to mark payroll period paid: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE payroll_records
			SET status = $2, payment_method = $3, payment_reference = $4, payment_date = $5, updated_at = NOW()
			WHERE period_id = $1
		`, id, payroll.RecordStatusPaid, payment.Method, payment.Reference, payment.Date)
		if err != nil {
			return fmt.Errorf("failed to mark payroll records paid: %w", err)
		}

		return nil
	})
	if err != nil {
		return payroll.PayrollPeriod{}, err
	}

	return period, nil
}

// ========== RECORDS ==========

func (r *payrollRepository) ListRecordsByPeriod(ctx context.Context, periodID string, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.period_id = $1
	`
	args := []interface{}{periodID}
	argIdx := 2

	if filter.Department != nil {
		baseQuery += fmt.Sprintf(" AND e.department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	// Sort
	sortColumn := "e.full_name"
	if filter.SortBy != "" {
		allowedColumns := map[string]string{
			"employee_name": "e.full_name",
			"employee_code": "e.employee_code",
			"department":    "e.department",
			"gross_pay":     "pr.gross_pay",
			"net_pay":       "pr.net_pay",
			"created_at":    "pr.created_at",
		}
		if col, ok := allowedColumns[filter.SortBy]; ok {
			sortColumn = col
		}
	}
	sortOrder := "ASC"
	if filter.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	// Pagination
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, e.full_name, e.employee_code, e.department
		%s
		ORDER BY %s %s, pr.id
		LIMIT $%d OFFSET $%d
	`, recordColumns, baseQuery, sortColumn, sortOrder, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}

	return records, totalCount, nil
}

func (r *payrollRepository) GetRecordsByPeriodID(ctx context.Context, periodID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `, e.full_name, e.employee_code, e.department
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.period_id = $1
		ORDER BY e.full_name, pr.id
	`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows, true)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get payroll records: %w", err)
	}

	return records, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `, e.full_name, e.employee_code, e.department
		FROM payroll_records pr
		JOIN employees e ON pr.employee_id = e.id
		WHERE pr.id = $1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) GetPeriodSummary(ctx context.Context, periodID string) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total_employees,
			COALESCE(SUM(base_pay), 0) as total_base_pay,
			COALESCE(SUM(overtime_pay), 0) as total_overtime_pay,
			COALESCE(SUM(gross_pay), 0) as total_gross_pay,
			COALESCE(SUM(net_pay), 0) as total_net_pay,
			COUNT(*) FILTER (WHERE status = 'draft') as draft_count,
			COUNT(*) FILTER (WHERE status = 'paid') as paid_count
		FROM payroll_records
		WHERE period_id = $1
	`

	summary := payroll.PeriodSummary{PeriodID: periodID}
	err := q.QueryRow(ctx, query, periodID).Scan(
		&summary.TotalEmployees, &summary.TotalBasePay, &summary.TotalOvertimePay,
		&summary.TotalGrossPay, &summary.TotalNetPay, &summary.DraftCount, &summary.PaidCount,
	)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to get payroll summary: %w", err)
	}

	return summary, nil
}

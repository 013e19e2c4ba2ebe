package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds the connection used by repository tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL repository test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)

	return setup
}

// TruncateAllTables removes all rows from the tables the repositories touch
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"payroll_records",
		"payroll_periods",
		"holidays",
		"attendances",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertEmployee seeds an active employee and returns its id
func (s *TestDatabaseSetup) InsertEmployee(t *testing.T, code, name, salaryType string, rate decimal.Decimal) string {
	t.Helper()

	id := uuid.Must(uuid.NewV7()).String()
	column := map[string]string{
		"monthly": "monthly_rate",
		"daily":   "daily_rate",
		"hourly":  "hourly_rate",
	}[salaryType]

	_, err := s.DB.Exec(context.Background(), fmt.Sprintf(`
		INSERT INTO employees (id, employee_code, full_name, department, employment_status, salary_type, %s)
		VALUES ($1, $2, $3, 'Engineering', 'active', $4, $5)
	`, column), id, code, name, salaryType, rate)
	require.NoError(t, err)

	return id
}

// InsertAttendance seeds one check-in row
func (s *TestDatabaseSetup) InsertAttendance(t *testing.T, employeeID string, checkIn time.Time, status string) {
	t.Helper()

	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO attendances (id, employee_id, check_in, status)
		VALUES ($1, $2, $3, $4)
	`, uuid.Must(uuid.NewV7()).String(), employeeID, checkIn, status)
	require.NoError(t, err)
}

// Close closes the database connection
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

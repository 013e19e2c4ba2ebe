// Package cli implements payrollctl, the operator command line for payroll
// periods. It talks to PostgreSQL directly with the same services the API uses.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/spf13/cobra"
)

// Deps is built lazily by commands that need the database.
type Deps struct {
	Payroll payroll.PayrollService
	Close   func()
}

type DepsFactory func(ctx context.Context) (*Deps, error)

// JWTFactory builds the token service from configuration alone, so token
// minting works while the database is unreachable.
type JWTFactory func() (jwt.Service, error)

// Execute runs payrollctl with the process arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCommand(defaultDeps, defaultJWT, os.Stdout, os.Stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func NewRootCommand(factory DepsFactory, jwtFactory JWTFactory, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "payrollctl",
		Short:         "Manage payroll periods from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		newPeriodCommand(factory),
		newGenerateCommand(factory),
		newExportCommand(factory),
		newTokenCommand(jwtFactory),
	)
	return root
}

func defaultDeps(ctx context.Context) (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	calculator, err := payrollService.NewCalculator(cfg.Payroll.HoursPerDay, cfg.Payroll.OvertimeMultiplier)
	if err != nil {
		db.Close()
		return nil, err
	}

	svc := payrollService.NewPayrollService(
		postgresql.NewPayrollRepository(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewAttendanceRepository(db),
		postgresql.NewHolidayRepository(db),
		calculator,
		payrollService.Policy{
			DefaultWorkingDays: cfg.Payroll.DefaultWorkingDays,
			ExcludeWeekends:    cfg.Payroll.ExcludeWeekends,
		},
		logger,
	)

	return &Deps{Payroll: svc, Close: db.Close}, nil
}

func defaultJWT() (jwt.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration), nil
}

// withDeps opens the dependencies for the duration of one command.
func withDeps(factory DepsFactory, run func(cmd *cobra.Command, deps *Deps) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		deps, err := factory(cmd.Context())
		if err != nil {
			return err
		}
		if deps.Close != nil {
			defer deps.Close()
		}
		return run(cmd, deps)
	}
}

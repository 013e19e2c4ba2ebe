package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	holidayService "github.com/cmlabs-hris/payroll-backend-go/internal/service/holiday"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-cmlabs"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	payrollRepo := postgresql.NewPayrollRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)

	calculator, err := payrollService.NewCalculator(cfg.Payroll.HoursPerDay, cfg.Payroll.OvertimeMultiplier)
	if err != nil {
		logger.Error("Invalid payroll calculator settings", "error", err)
		os.Exit(1)
	}
	policy := payrollService.Policy{
		DefaultWorkingDays: cfg.Payroll.DefaultWorkingDays,
		ExcludeWeekends:    cfg.Payroll.ExcludeWeekends,
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, attendanceRepo, holidayRepo, calculator, policy, logger)
	holidaySvc := holidayService.NewHolidayService(holidayRepo, logger)

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(ctx, logger)
		cron.NewPayrollJobs(payrollSvc, time.Now, logger).RegisterJobs(scheduler, cfg.Cron.PeriodInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: []string{cfg.App.FrontendURL},
			LogLevel:       cfg.SlogLevel(),
		},
		logger,
		JWTService,
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewHolidayHandler(holidaySvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

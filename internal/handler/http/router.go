package http

import (
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(cfg RouterConfig, logger *slog.Logger, JWTService jwt.Service, payrollHandler PayrollHandler, holidayHandler HolidayHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/payroll", func(r chi.Router) {
			r.Route("/periods", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/", payrollHandler.ListPeriods)
				r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Post("/", payrollHandler.CreatePeriod)

				r.Route("/{id}", func(r chi.Router) {
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionPayrollView))
						r.Get("/", payrollHandler.GetPeriod)
						r.Get("/records", payrollHandler.ListRecords)
						r.Get("/summary", payrollHandler.GetSummary)
						r.Get("/attendance/{employeeId}", payrollHandler.GetAttendanceAggregate)
					})

					r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Delete("/", payrollHandler.DeletePeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollGenerate)).Post("/generate", payrollHandler.GeneratePayroll)
					r.With(middleware.RequirePermission(user.PermissionPayrollApprove)).Post("/approve", payrollHandler.ApprovePeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollPay)).Post("/pay", payrollHandler.PayPeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollLock)).Post("/lock", payrollHandler.LockPeriod)
					r.With(middleware.RequirePermission(user.PermissionPayrollExport)).Get("/export", payrollHandler.ExportRecords)
				})
			})

			r.With(middleware.RequirePermission(user.PermissionPayrollView)).Get("/records/{id}", payrollHandler.GetRecord)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionHolidayView)).Get("/", holidayHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionHolidayManage))
				r.Post("/", holidayHandler.Create)
				r.Delete("/{id}", holidayHandler.Delete)
			})
		})
	})
	return r
}

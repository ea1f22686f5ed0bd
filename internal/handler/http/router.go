package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hrm-core/internal/config"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	"github.com/cmlabs-hris/hrm-core/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Leave      LeaveHandler
	Attendance AttendanceHandler
	Salary     SalaryHandler
	Employee   EmployeeHandler
}

func NewRouter(cfg *config.Config, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       cfg.SlogLevel(),
	})).With(
		slog.String("app", "hrm-core"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthorizationGate(JWTService))

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", h.Leave.List)
				r.Post("/", h.Leave.Submit)
				r.Get("/status/{status}", h.Leave.ListByStatus)

				r.Route("/employee/{employeeId}", func(r chi.Router) {
					r.Get("/", h.Leave.ListByEmployee)
					r.Get("/balance", h.Leave.Balance)
					r.Get("/usage", h.Leave.MonthlyUsage)
					r.With(middleware.RequirePermission(user.PermissionLeaveManage)).Put("/quota", h.Leave.SetQuota)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Leave.Get)
					r.Put("/", h.Leave.Update)
					r.Delete("/", h.Leave.Delete)
					r.Put("/approve", h.Leave.Approve)
					r.Put("/reject", h.Leave.Reject)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/checkin/{employeeId}", h.Attendance.CheckIn)
				r.Put("/checkout/{employeeId}", h.Attendance.CheckOut)
				r.Get("/employee/{employeeId}", h.Attendance.ListByEmployee)
				r.Get("/", h.Attendance.List)
				r.Get("/{id}", h.Attendance.Get)

				// Administrative corrections
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Post("/", h.Attendance.Create)
					r.Put("/{id}", h.Attendance.Update)
					r.Delete("/{id}", h.Attendance.Delete)
				})
			})

			r.Route("/salaries", func(r chi.Router) {
				managePayroll := middleware.RequirePermission(user.PermissionPayrollManage)

				r.Get("/", h.Salary.List)
				r.With(managePayroll).Post("/", h.Salary.Create)
				r.Get("/employee/{employeeId}", h.Salary.ListByEmployee)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Salary.Get)
					r.Get("/payslip", h.Salary.Payslip)

					r.Group(func(r chi.Router) {
						r.Use(managePayroll)
						r.Put("/", h.Salary.Update)
						r.Delete("/", h.Salary.Delete)
						r.Put("/pay", h.Salary.MarkPaid)
					})
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEmployeeViewAll))
				r.Get("/", h.Employee.ListEmployees)
				r.With(middleware.RequirePermission(user.PermissionEmployeeExport)).Get("/export", h.Employee.ExportEmployees)
				r.Get("/{id}", h.Employee.GetEmployee)
			})
		})
	})
	return r
}

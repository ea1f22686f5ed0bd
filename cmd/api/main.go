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

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hrm-core/internal/config"
	"github.com/cmlabs-hris/hrm-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-core/internal/domain/employee"
	"github.com/cmlabs-hris/hrm-core/internal/domain/leave"
	"github.com/cmlabs-hris/hrm-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hrm-core/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/hrm-core/internal/handler/http"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/clock"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-core/internal/repository/memory"
	"github.com/cmlabs-hris/hrm-core/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrm-core/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hrm-core/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hrm-core/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hrm-core/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hrm-core/internal/service/payroll"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	tx         database.Transactor
	users      user.UserRepository
	employees  employee.EmployeeRepository
	leaves     leave.LeaveRequestRepository
	quotas     leave.LeaveQuotaRepository
	attendance attendance.AttendanceRepository
	salaries   payroll.SalaryRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("init jwt service: %w", err)
	}
	clk := clock.New()
	policy := attendance.Policy{LateAfter: cfg.Attendance.LateAfter, Location: cfg.Attendance.Location}

	authService := serviceAuth.NewAuthService(repos.users, JWTService)
	leaveSvc := leaveService.NewLeaveService(repos.tx, repos.leaves, repos.quotas, repos.employees, leave.NewAllotments(cfg.Leave.Allotments), clk)
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, repos.employees, policy, clk)
	payrollSvc := payrollService.NewPayrollService(repos.salaries, repos.employees, clk)
	employeeSvc := employeeService.NewEmployeeService(repos.employees)

	router := appHTTP.NewRouter(cfg, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Salary:     appHTTP.NewSalaryHandler(payrollSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.App.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.App.Storage {
	case config.StorageMemory:
		repos := &repositories{
			tx:         memory.NewTransactor(),
			users:      memory.NewUserRepository(),
			employees:  memory.NewEmployeeRepository(),
			leaves:     memory.NewLeaveRequestRepository(),
			quotas:     memory.NewLeaveQuotaRepository(),
			attendance: memory.NewAttendanceRepository(),
			salaries:   memory.NewSalaryRepository(),
			close:      func() {},
		}
		if err := seedAdmin(ctx, cfg.Seed, repos.employees, repos.users); err != nil {
			return nil, err
		}
		return repos, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		return &repositories{
			tx:         postgresql.NewTransactor(db),
			users:      postgresql.NewUserRepository(db),
			employees:  postgresql.NewEmployeeRepository(db),
			leaves:     postgresql.NewLeaveRequestRepository(db),
			quotas:     postgresql.NewLeaveQuotaRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			salaries:   postgresql.NewSalaryRepository(db),
			close:      db.Close,
		}, nil
	}
}

// seedAdmin creates an administrator so an in-memory instance can be logged into.
func seedAdmin(ctx context.Context, seed config.SeedConfig, employees employee.EmployeeRepository, users user.UserRepository) error {
	admin, err := employees.Create(ctx, employee.Employee{
		FirstName:  "HR",
		LastName:   "Administrator",
		Email:      seed.AdminEmail,
		Department: employee.Department{Name: "Human Resources"},
		Position:   employee.Position{Title: "HR Administrator"},
		HireDate:   time.Now().UTC().Truncate(24 * time.Hour),
	})
	if err != nil {
		return fmt.Errorf("seed admin employee: %w", err)
	}

	hash, err := serviceAuth.HashPassword(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if _, err := users.Create(ctx, user.User{
		Email:        seed.AdminEmail,
		PasswordHash: hash,
		Role:         user.RoleAdmin,
		EmployeeID:   &admin.ID,
	}); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	slog.Info("Seeded administrator", "email", seed.AdminEmail, "employee_id", admin.ID)
	return nil
}

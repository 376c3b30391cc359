package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chronos-hq/timetrack-backend-go/internal/config"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/approval"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	appHTTP "github.com/chronos-hq/timetrack-backend-go/internal/handler/http"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/cache"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/cron"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/jwt"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
	"github.com/chronos-hq/timetrack-backend-go/internal/repository/postgresql"
	clockService "github.com/chronos-hq/timetrack-backend-go/internal/service/clock"
	leaveService "github.com/chronos-hq/timetrack-backend-go/internal/service/leave"
	notificationService "github.com/chronos-hq/timetrack-backend-go/internal/service/notification"
	regularizationService "github.com/chronos-hq/timetrack-backend-go/internal/service/regularization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	timeLogRepo := postgresql.NewTimeLogRepository(db)
	regRepo := postgresql.NewRegularizationRepository(db)
	leaveBalanceRepo := postgresql.NewLeaveBalanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveTypeRepo := postgresql.NewLeaveTypeRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	notifRepo := postgresql.NewNotificationRepository(db)

	txManager := postgresql.NewTxManager(db)
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	sseHub := sse.NewHub()
	projectsCache := cache.NewProjectsCache(employeeRepo.HasProjects)

	policy := timelog.SessionPolicy{
		WorkingHours: time.Duration(cfg.Clock.WorkingHoursPerDay * float64(time.Hour)),
		GracePeriod:  time.Duration(cfg.Clock.GracePeriodHours * float64(time.Hour)),
	}

	notifService := notificationService.NewNotificationService(notifRepo, sseHub, notificationService.Config{})
	defer notifService.Stop()

	engine := approval.NewEngine(txManager, employeeRepo)
	ledger := leaveService.NewLedger(txManager, leaveBalanceRepo)

	clockSvc := clockService.NewClockService(txManager, timeLogRepo, projectsCache, sseHub, policy)
	regSvc := regularizationService.NewRegularizationService(txManager, engine, regRepo, timeLogRepo, employeeRepo, notifService, sseHub)
	leaveSvc := leaveService.NewLeaveService(engine, ledger, leaveRequestRepo, leaveBalanceRepo, leaveTypeRepo, employeeRepo, notifService, sseHub)

	timeLogHandler := appHTTP.NewTimeLogHandler(clockSvc)
	regHandler := appHTTP.NewRegularizationHandler(regSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)
	notifHandler := appHTTP.NewNotificationHandler(notifService, jwtService, sseHub)
	sessionHandler := appHTTP.NewSessionHandler(jwtService, projectsCache)

	router := appHTTP.NewRouter(
		jwtService,
		timeLogHandler,
		regHandler,
		leaveHandler,
		notifHandler,
		sessionHandler,
	)

	scheduler := cron.NewScheduler()
	timeLogJobs := cron.NewTimeLogJobs(timeLogRepo, notifService, sseHub, policy)
	scheduler.AddJob("grace-period-sweep", cfg.Clock.SweepInterval, timeLogJobs.SweepGracePeriods)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

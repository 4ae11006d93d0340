package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers"
	assessmentsHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/assessments"
	checkAvailabilityHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/check_availability"
	completeBookingHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/complete_booking"
	createBookingHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/create_booking"
	deleteBookingHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/delete_booking"
	getAvailabilityHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/get_booking"
	getInstructorBookingsHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/get_instructor_bookings"
	getMonthlyHoursHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/get_monthly_hours"
	getUpcomingHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/get_upcoming"
	listBookingsHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/list_bookings"
	updateAttendanceHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/update_attendance"
	updateBookingHandler "github.com/m04kA/DrivingSchool-BookingService/internal/api/handlers/update_booking"
	"github.com/m04kA/DrivingSchool-BookingService/internal/api/middleware"
	"github.com/m04kA/DrivingSchool-BookingService/internal/app/scheduler"
	"github.com/m04kA/DrivingSchool-BookingService/internal/config"
	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/cache"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/migrations"
	assessmentRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/assessment"
	bookingRepo "github.com/m04kA/DrivingSchool-BookingService/internal/infra/storage/booking"
	courseServiceClient "github.com/m04kA/DrivingSchool-BookingService/internal/integrations/courseservice"
	scheduleServiceClient "github.com/m04kA/DrivingSchool-BookingService/internal/integrations/scheduleservice"
	userServiceClient "github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
	assessmentsService "github.com/m04kA/DrivingSchool-BookingService/internal/service/assessments"
	bookingsService "github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings"
	checkAvailabilityUC "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/check_availability"
	createBookingUC "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/create_booking"
	sweepExpiredUC "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/sweep_expired"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/clock"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/dbmetrics"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/logger"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/metrics"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting DrivingSchool-BookingService...")

	loc, err := cfg.Server.Location()
	if err != nil {
		log.Fatal("Invalid timezone: %v", err)
	}
	timeProvider := clock.NewReal(loc)

	// Метрики. nil-коллектор безопасен: все методы проверяют получателя.
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := db.PingContext(startupCtx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Применяем миграции
	if cfg.Database.MigrationsEnabled {
		migrator, err := migrations.NewMigrator(db, log)
		if err != nil {
			log.Fatal("Failed to init migrator: %v", err)
		}
		if err := migrator.Run(startupCtx); err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	stopMetricsCh := make(chan struct{})
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB, log)
	assessmentRepository := assessmentRepo.NewRepository(wrappedDB)

	// Индексы создаются отдельно от миграций, ошибки только логируются
	if failed := bookingRepository.EnsureIndexes(startupCtx); failed > 0 {
		log.Warn("%d booking indexes could not be ensured", failed)
	}

	// Кэш для UserService и CourseService
	var lookupCache cache.Store = cache.NopStore{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(startupCtx, cache.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL(),
		})
		if err != nil {
			log.Warn("Redis unavailable, lookups are not cached: %v", err)
		} else {
			defer redisClient.Close()
			lookupCache = cache.NewRedisStore(redisClient, "booking:", cfg.Redis.TTL())
			log.Info("Redis cache enabled (addr=%s, ttl=%s)", cfg.Redis.Addr(), cfg.Redis.TTL())
		}
	}

	// Публикация доменных событий
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, events are not published: %v", err)
		} else {
			publisher = rabbit
			log.Info("RabbitMQ publisher enabled (exchange=%s)", cfg.RabbitMQ.Exchange)
		}
	}
	defer publisher.Close()

	// Интеграционные клиенты
	userClient := userServiceClient.NewCachedClient(
		userServiceClient.NewClient(cfg.UserService.URL, time.Duration(cfg.UserService.Timeout)*time.Second, log),
		lookupCache,
		log,
	)
	courseClient := courseServiceClient.NewCachedClient(
		courseServiceClient.NewClient(cfg.CourseService.URL, time.Duration(cfg.CourseService.Timeout)*time.Second),
		lookupCache,
		log,
	)
	scheduleClient := scheduleServiceClient.NewClient(
		cfg.ScheduleService.URL,
		time.Duration(cfg.ScheduleService.Timeout)*time.Second,
	)
	log.Info("Integration clients initialized (UserService=%s, CourseService=%s, ScheduleService=%s)",
		cfg.UserService.URL, cfg.CourseService.URL, cfg.ScheduleService.URL)

	// Use cases
	sweepExpired := sweepExpiredUC.NewUseCase(
		bookingRepository,
		publisher,
		metricsCollector,
		timeProvider,
		log,
	)

	checkAvailability := checkAvailabilityUC.NewUseCase(
		bookingRepository,
		sweepExpired,
		scheduleClient,
		metricsCollector,
		timeProvider,
		cfg.Booking.DefaultDurationMinutes,
		log,
	)

	createBooking := createBookingUC.NewUseCase(
		bookingRepository,
		sweepExpired,
		userClient,
		courseClient,
		txMgr,
		publisher,
		metricsCollector,
		timeProvider,
		createBookingUC.Defaults{
			DurationMinutes: cfg.Booking.DefaultDurationMinutes,
			Type:            domain.LessonType(cfg.Booking.DefaultLessonType),
		},
		log,
	)

	// Сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		sweepExpired,
		userClient,
		courseClient,
		txMgr,
		publisher,
		timeProvider,
		log,
	)
	assessmentSvc := assessmentsService.NewService(
		assessmentRepository,
		userClient,
		metricsCollector,
		timeProvider,
		log,
	)

	// Фоновые задачи
	var sched *scheduler.Scheduler
	if cfg.Booking.SweepEnabled {
		sched, err = scheduler.New(cfg.Booking.SweepCron, loc, sweepExpired, assessmentSvc, log)
		if err != nil {
			log.Fatal("Failed to create scheduler: %v", err)
		}
		sched.Start()
		log.Info("Sweep scheduled with cron spec %q", cfg.Booking.SweepCron)
	}

	// Handlers
	createBookingH := createBookingHandler.NewHandler(createBooking, log)
	listBookingsH := listBookingsHandler.NewHandler(bookingSvc, log)
	getBookingH := getBookingHandler.NewHandler(bookingSvc, log)
	getUpcomingH := getUpcomingHandler.NewHandler(bookingSvc, log)
	getInstructorBookingsH := getInstructorBookingsHandler.NewHandler(bookingSvc, log)
	getMonthlyHoursH := getMonthlyHoursHandler.NewHandler(bookingSvc, log)
	updateBookingH := updateBookingHandler.NewHandler(bookingSvc, log)
	completeBookingH := completeBookingHandler.NewHandler(bookingSvc, log)
	deleteBookingH := deleteBookingHandler.NewHandler(bookingSvc, log)
	updateAttendanceH := updateAttendanceHandler.NewHandler(bookingSvc, log)
	getAvailabilityH := getAvailabilityHandler.NewHandler(checkAvailability, log)
	checkAvailabilityH := checkAvailabilityHandler.NewHandler(checkAvailability, log)
	assessmentsH := assessmentsHandler.NewHandler(assessmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, metricsCollector.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.RespondError(w, http.StatusServiceUnavailable, "база данных недоступна")
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без идентификации пользователя)
	// ============================================================

	api.HandleFunc("/bookings/availability/{instructorId}/{date}", getAvailabilityH.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/check-availability", checkAvailabilityH.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBookingH.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", listBookingsH.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/instructor/{instructorId}/upcoming", getUpcomingH.HandleInstructor).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/instructor/{instructorId}/monthly-hours", getMonthlyHoursH.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/instructor/{instructorId}", getInstructorBookingsH.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/student/{studentId}/upcoming", getUpcomingH.HandleStudent).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", getBookingH.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}", updateBookingH.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/bookings/{bookingId}", deleteBookingH.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBookingH.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/attendance", updateAttendanceH.Handle).Methods(http.MethodPatch)

	// --- Задания ---
	protected.HandleFunc("/assessments", assessmentsH.Create).Methods(http.MethodPost)
	protected.HandleFunc("/assessments", assessmentsH.List).Methods(http.MethodGet)
	protected.HandleFunc("/assessments/{assessmentId}", assessmentsH.Get).Methods(http.MethodGet)
	protected.HandleFunc("/assessments/{assessmentId}", assessmentsH.Update).Methods(http.MethodPut)
	protected.HandleFunc("/assessments/{assessmentId}", assessmentsH.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/assessments/{assessmentId}/complete", assessmentsH.Complete).Methods(http.MethodPost)
	protected.HandleFunc("/assessments/{assessmentId}/grade", assessmentsH.Grade).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

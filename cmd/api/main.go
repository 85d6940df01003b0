package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nhatminh-dev/lavang-api/internal/config"
	"github.com/nhatminh-dev/lavang-api/internal/database"
	"github.com/nhatminh-dev/lavang-api/internal/handler"
	"github.com/nhatminh-dev/lavang-api/internal/middleware"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/observability"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
	"github.com/nhatminh-dev/lavang-api/internal/router"
	"github.com/nhatminh-dev/lavang-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Family{},
		&models.Guardian{},
		&models.EmergencyContact{},
		&models.Student{},
		&models.AcademicYear{},
		&models.Program{},
		&models.Class{},
		&models.Enrollment{},
		&models.Payment{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Partial unique index backing the single-active-year invariant.
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_academic_years_single_active ON academic_years (is_active) WHERE is_active").Error; err != nil {
		log.Fatalf("failed to create active year index: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, enrollment events limited to redis")
		} else {
			defer natsConn.Close()
		}
	}

	observability.RegisterMetrics()

	validate := validator.New(validator.WithRequiredStructEnabled())

	familyRepo := repository.NewFamilyRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	enrollmentStore := repository.NewEnrollmentStore(db)
	schoolYearRepo := repository.NewSchoolYearRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	events := service.NewEventPublisher(redisClient, natsConn, cfg.EventsSubject, logger)
	schoolYearService := service.NewSchoolYearService(schoolYearRepo, validate, redisClient, cfg.StatsCacheTTL, activityService, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentStore, familyRepo, schoolYearService, events, activityService, validate, logger)
	familyService := service.NewFamilyService(familyRepo, validate, activityService, logger)
	classService := service.NewClassService(classRepo, enrollmentRepo, validate, activityService, logger)
	paymentService := service.NewPaymentService(paymentRepo, validate, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, logger),
		SchoolYearHandler: handler.NewSchoolYearHandler(schoolYearService, logger),
		FamilyHandler:     handler.NewFamilyHandler(familyService, logger),
		ClassHandler:      handler.NewClassHandler(classService, logger),
		PaymentHandler:    handler.NewPaymentHandler(paymentService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		AdminMiddleware:   middleware.RequireRole("admin"),
		EnrollmentLimiter: middleware.RateLimit("enrollment", 30, time.Minute),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

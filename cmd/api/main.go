package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dangkhoa18052004/hospital-api/config"
	authHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/auth"
	bookingHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/booking"
	healthHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/health"
	medicalHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/medical"
	notificationHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/notification"
	reviewHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/review"
	scheduleHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/schedule"
	settingHandler "github.com/dangkhoa18052004/hospital-api/internal/handler/setting"

	"github.com/dangkhoa18052004/hospital-api/internal/email"
	"github.com/dangkhoa18052004/hospital-api/internal/middleware"
	"github.com/dangkhoa18052004/hospital-api/internal/repository/postgres"
	"github.com/dangkhoa18052004/hospital-api/internal/router"
	authService "github.com/dangkhoa18052004/hospital-api/internal/service/auth"
	bookingService "github.com/dangkhoa18052004/hospital-api/internal/service/booking"
	medicalService "github.com/dangkhoa18052004/hospital-api/internal/service/medical"
	notificationService "github.com/dangkhoa18052004/hospital-api/internal/service/notification"
	reviewService "github.com/dangkhoa18052004/hospital-api/internal/service/review"
	scheduleService "github.com/dangkhoa18052004/hospital-api/internal/service/schedule"
	settingService "github.com/dangkhoa18052004/hospital-api/internal/service/setting"
	"github.com/dangkhoa18052004/hospital-api/pkg/auth"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
	"github.com/dangkhoa18052004/hospital-api/pkg/metrics"
	"github.com/dangkhoa18052004/hospital-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	location, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timezone")
	}

	l := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("hospital_api")

	// repositories
	userRepo := postgres.NewUserRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	settingRepo := postgres.NewSettingRepository(db)

	// services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptVerifier()
	authSvc := authService.NewService(userRepo, hasher, jwtSvc)
	settingSvc := settingService.NewService(settingRepo)
	bookingSvc := bookingService.NewService(
		appointmentRepo, scheduleRepo, doctorRepo, paymentRepo, settingSvc, m, l, location)
	scheduleSvc := scheduleService.NewService(scheduleRepo, location)
	medicalSvc := medicalService.NewService(recordRepo, appointmentRepo, doctorRepo)
	reviewSvc := reviewService.NewService(reviewRepo, appointmentRepo, doctorRepo)

	var sender email.Sender = email.NoopSender{}
	if cfg.Email.Host != "" {
		sender = email.NewSMTPSender(email.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		}, l)
	}
	notificationSvc := notificationService.NewService(
		notificationRepo, userRepo, doctorRepo, patientRepo, sender, l)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r, err := router.New(router.Config{
		RateLimit: rate.Limit(cfg.Server.RateLimit),
		RateBurst: cfg.Server.RateBurst,
		CORS:      middleware.DefaultCORSConfig(),
	}, router.Handlers{
		Auth:         authHandler.NewHandler(authSvc),
		Booking:      bookingHandler.NewHandler(bookingSvc, patientRepo),
		Schedule:     scheduleHandler.NewHandler(scheduleSvc, doctorRepo),
		Medical:      medicalHandler.NewHandler(medicalSvc, patientRepo),
		Review:       reviewHandler.NewHandler(reviewSvc, patientRepo),
		Notification: notificationHandler.NewHandler(notificationSvc),
		Setting:      settingHandler.NewHandler(settingSvc),
		Health:       healthHandler.NewHandler(db),
	}, authMiddleware, l)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		l.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error(err, "forced shutdown")
	}
}

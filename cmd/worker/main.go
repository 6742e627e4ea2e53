package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dangkhoa18052004/hospital-api/config"
	"github.com/dangkhoa18052004/hospital-api/internal/email"
	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository/postgres"
	notificationService "github.com/dangkhoa18052004/hospital-api/internal/service/notification"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
	"github.com/dangkhoa18052004/hospital-api/pkg/messaging/redis"
	"github.com/dangkhoa18052004/hospital-api/pkg/metrics"
	"github.com/dangkhoa18052004/hospital-api/pkg/worker"
)

// The worker has two halves: the outbox processor publishes committed
// events to the broker, and the subscriber side fans them out to
// notifications and email.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &l.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("hospital_worker")

	outboxRepo := postgres.NewOutboxRepository(db)
	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: time.Duration(cfg.Outbox.PollIntervalSeconds) * time.Second,
		MaxRetries:   cfg.Outbox.MaxRetries,
		RetryBackoff: time.Duration(cfg.Outbox.RetryBackoffSeconds) * time.Second,
		Retention:    time.Duration(cfg.Outbox.RetentionDays) * 24 * time.Hour,
	}, l, m)

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
		postgres.NewNotificationRepository(db),
		postgres.NewUserRepository(db),
		postgres.NewDoctorRepository(db),
		postgres.NewPatientRepository(db),
		sender, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	for _, eventType := range []string{model.EventAppointmentBooked, model.EventAppointmentCancelled} {
		msgs, err := broker.Subscribe(ctx, eventType)
		if err != nil {
			log.Fatal().Err(err).Str("event_type", eventType).Msg("failed to subscribe")
		}

		wg.Add(1)
		go func(eventType string, msgs <-chan []byte) {
			defer wg.Done()
			for payload := range msgs {
				var evt model.AppointmentEvent
				if err := json.Unmarshal(payload, &evt); err != nil {
					l.Error(err, "failed to decode event", "event_type", eventType)
					continue
				}
				if err := notificationSvc.HandleAppointmentEvent(ctx, eventType, &evt); err != nil {
					l.Error(err, "failed to handle event", "event_type", eventType)
				}
			}
		}(eventType, msgs)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down worker")
	cancel()
	wg.Wait()
}

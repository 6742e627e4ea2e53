package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
	"github.com/dangkhoa18052004/hospital-api/internal/repository"
	"github.com/dangkhoa18052004/hospital-api/pkg/logger"
	"github.com/dangkhoa18052004/hospital-api/pkg/messaging"
	"github.com/dangkhoa18052004/hospital-api/pkg/metrics"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// Retention is how long processed events are kept before cleanup.
	Retention time.Duration
}

// OutboxProcessor drains pending outbox events into the message broker.
// Events that fail to publish are retried with a growing backoff until
// MaxRetries, then marked failed for manual inspection.
type OutboxProcessor struct {
	repo    repository.OutboxRepository
	broker  messaging.Broker
	config  OutboxProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	config OutboxProcessorConfig,
	l *logger.Logger,
	m *metrics.Metrics,
) *OutboxProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 30 * time.Second
	}
	if config.Retention <= 0 {
		config.Retention = 7 * 24 * time.Hour
	}

	return &OutboxProcessor{
		repo:    repo,
		broker:  broker,
		config:  config,
		logger:  l,
		metrics: m,
	}
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	p.logger.Info("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process outbox batch")
			}
		case <-cleanup.C:
			deleted, err := p.repo.DeleteProcessedBefore(ctx, time.Now().Add(-p.config.Retention))
			if err != nil {
				p.logger.Error(err, "failed to clean up processed events")
				continue
			}
			if deleted > 0 {
				p.logger.Info("cleaned up processed events", "deleted", deleted)
			}
		}
	}
}

func (p *OutboxProcessor) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPendingBatch(ctx, p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_pending_batch", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_pending_batch", "success").Inc()

	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}
	return nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	if err := p.broker.Publish(ctx, event.EventType, event.Payload); err != nil {
		if event.RetryCount+1 >= p.config.MaxRetries {
			p.metrics.OutboxEventsFailed.Inc()
			if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				return fmt.Errorf("failed to mark event failed: %w", markErr)
			}
			return err
		}

		p.metrics.OutboxRetries.WithLabelValues(event.EventType).Inc()
		backoff := p.config.RetryBackoff * time.Duration(event.RetryCount+1)
		if markErr := p.repo.MarkRetry(ctx, event.ID, err.Error(), time.Now().Add(backoff)); markErr != nil {
			return fmt.Errorf("failed to schedule event retry: %w", markErr)
		}
		return err
	}

	p.metrics.OutboxEventsProcessed.Inc()
	return p.repo.MarkProcessed(ctx, event.ID)
}

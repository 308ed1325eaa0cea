// Package hotspot - воркер, сбрасывающий кеш запросов после загрузки ETL.
package hotspot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/worker"
)

const defaultRetryDelay = 500 * time.Millisecond

var cachedDimensions = []domain.Dimension{
	domain.DimensionLocation,
	domain.DimensionTime,
	domain.DimensionConfidence,
	domain.DimensionSatellite,
}

// CacheInvalidator - кеш запросов к сервису измерений
type CacheInvalidator interface {
	// Invalidate удаляет ответы измерения; пустое измерение - весь кеш и поток
	Invalidate(ctx context.Context, d domain.Dimension) (int64, error)
}

// CacheWorker читает stream:hotspot:loaded и сбрасывает затронутые ключи кеша
type CacheWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	cache        CacheInvalidator
	consumerName string
	maxRetries   int
	retryDelay   time.Duration
}

// NewCacheWorker создает новый CacheWorker
func NewCacheWorker(
	streamRepo repository.StreamRepository,
	cache CacheInvalidator,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *CacheWorker {
	hostname, _ := os.Hostname()
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &CacheWorker{
		BaseWorker:   worker.NewBaseWorker("hotspot-cache", consumerGroup, logger),
		streamRepo:   streamRepo,
		cache:        cache,
		consumerName: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		maxRetries:   maxRetries,
		retryDelay:   defaultRetryDelay,
	}
}

// SetRetryDelay sets the pause between invalidation attempts.
func (w *CacheWorker) SetRetryDelay(d time.Duration) {
	w.retryDelay = d
}

// Start запускает воркер
func (w *CacheWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting CacheWorker",
		zap.String("stream", domain.StreamHotspotLoaded),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamHotspotLoaded, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.StopChan():
			cancel()
		case <-ctx.Done():
		}
	}()

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamHotspotLoaded, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for msg := range messages {
		if err := w.HandleMessage(ctx, msg); err != nil {
			logger.Error("Failed to handle message, left pending",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}

	logger.Info("Worker stopped")
	return nil
}

// HandleMessage invalidates the cache for one event and acks it. A message
// that cannot be parsed is acked and dropped; a message whose invalidation
// keeps failing is not acked and stays in the pending list.
func (w *CacheWorker) HandleMessage(ctx context.Context, msg domain.StreamMessage) error {
	logger := w.Logger()

	var event domain.HotspotLoadedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return w.streamRepo.AckMessage(ctx, domain.StreamHotspotLoaded, w.ConsumerGroup(), msg.ID)
	}

	var (
		deleted int64
		err     error
	)
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		deleted, err = w.invalidate(ctx, &event)
		if err == nil {
			break
		}
		logger.Warn("Cache invalidation failed",
			zap.String("batch_id", event.BatchID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == w.maxRetries {
			return fmt.Errorf("invalidate after %d attempts: %w", attempt, err)
		}
		select {
		case <-time.After(w.retryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	logger.Info("Hotspot batch loaded, cache invalidated",
		zap.String("batch_id", event.BatchID.String()),
		zap.String("source", event.Source),
		zap.Int("rows", event.Rows),
		zap.String("dimension", event.Dimension),
		zap.Int64("deleted_keys", deleted))

	return w.streamRepo.AckMessage(ctx, domain.StreamHotspotLoaded, w.ConsumerGroup(), msg.ID)
}

func (w *CacheWorker) invalidate(ctx context.Context, event *domain.HotspotLoadedEvent) (int64, error) {
	if event.Dimension == "" {
		return w.cache.Invalidate(ctx, "")
	}

	var total int64
	for _, d := range cachedDimensions {
		if !event.AffectsDimension(d) {
			continue
		}
		n, err := w.cache.Invalidate(ctx, d)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

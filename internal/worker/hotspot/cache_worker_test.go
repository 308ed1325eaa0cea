package hotspot_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/worker/hotspot"
)

const group = "hotspot-cache-workers"

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockCacheInvalidator is a mock of CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Invalidate(ctx context.Context, d domain.Dimension) (int64, error) {
	args := m.Called(ctx, d)
	return args.Get(0).(int64), args.Error(1)
}

func eventMessage(t *testing.T, id string, event domain.HotspotLoadedEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func newWorker(stream *MockStreamRepository, cache *MockCacheInvalidator, retries int) *hotspot.CacheWorker {
	w := hotspot.NewCacheWorker(stream, cache, group, retries, zap.NewNop())
	w.SetRetryDelay(time.Millisecond)
	return w
}

func TestCacheWorker_Name(t *testing.T) {
	w := newWorker(&MockStreamRepository{}, &MockCacheInvalidator{}, 3)
	assert.Equal(t, "hotspot-cache", w.Name())
	assert.Equal(t, group, w.ConsumerGroup())
}

func TestCacheWorker_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("event without dimension drops the whole cache", func(t *testing.T) {
		stream := &MockStreamRepository{}
		cache := &MockCacheInvalidator{}
		w := newWorker(stream, cache, 3)

		msg := eventMessage(t, "1-0", domain.HotspotLoadedEvent{BatchID: uuid.New(), Source: "firms", Rows: 120})
		cache.On("Invalidate", ctx, domain.Dimension("")).Return(int64(17), nil).Once()
		stream.On("AckMessage", ctx, domain.StreamHotspotLoaded, group, "1-0").Return(nil).Once()

		require.NoError(t, w.HandleMessage(ctx, msg))
		cache.AssertExpectations(t)
		stream.AssertExpectations(t)
	})

	t.Run("event with dimension drops only that dimension", func(t *testing.T) {
		stream := &MockStreamRepository{}
		cache := &MockCacheInvalidator{}
		w := newWorker(stream, cache, 3)

		msg := eventMessage(t, "2-0", domain.HotspotLoadedEvent{BatchID: uuid.New(), Dimension: "time"})
		cache.On("Invalidate", ctx, domain.DimensionTime).Return(int64(4), nil).Once()
		stream.On("AckMessage", ctx, domain.StreamHotspotLoaded, group, "2-0").Return(nil).Once()

		require.NoError(t, w.HandleMessage(ctx, msg))
		cache.AssertExpectations(t)
		cache.AssertNotCalled(t, "Invalidate", ctx, domain.DimensionLocation)
		stream.AssertExpectations(t)
	})

	t.Run("malformed message is acked without invalidation", func(t *testing.T) {
		stream := &MockStreamRepository{}
		cache := &MockCacheInvalidator{}
		w := newWorker(stream, cache, 3)

		stream.On("AckMessage", ctx, domain.StreamHotspotLoaded, group, "3-0").Return(nil).Once()

		require.NoError(t, w.HandleMessage(ctx, domain.StreamMessage{ID: "3-0", Data: "{not json"}))
		cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
		stream.AssertExpectations(t)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		stream := &MockStreamRepository{}
		cache := &MockCacheInvalidator{}
		w := newWorker(stream, cache, 3)

		msg := eventMessage(t, "4-0", domain.HotspotLoadedEvent{BatchID: uuid.New()})
		cache.On("Invalidate", ctx, domain.Dimension("")).Return(int64(0), errors.New("connection refused")).Once()
		cache.On("Invalidate", ctx, domain.Dimension("")).Return(int64(9), nil).Once()
		stream.On("AckMessage", ctx, domain.StreamHotspotLoaded, group, "4-0").Return(nil).Once()

		require.NoError(t, w.HandleMessage(ctx, msg))
		cache.AssertNumberOfCalls(t, "Invalidate", 2)
		stream.AssertExpectations(t)
	})

	t.Run("persistent failure leaves message pending", func(t *testing.T) {
		stream := &MockStreamRepository{}
		cache := &MockCacheInvalidator{}
		w := newWorker(stream, cache, 2)

		msg := eventMessage(t, "5-0", domain.HotspotLoadedEvent{BatchID: uuid.New()})
		cache.On("Invalidate", ctx, domain.Dimension("")).Return(int64(0), errors.New("connection refused"))

		err := w.HandleMessage(ctx, msg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 attempts")
		cache.AssertNumberOfCalls(t, "Invalidate", 2)
		stream.AssertNotCalled(t, "AckMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCacheWorker_Start(t *testing.T) {
	t.Run("consumes until the stream closes", func(t *testing.T) {
		ctx := context.Background()
		stream := &MockStreamRepository{}
		cache := &MockCacheInvalidator{}
		w := newWorker(stream, cache, 1)

		messages := make(chan domain.StreamMessage, 2)
		messages <- eventMessage(t, "1-0", domain.HotspotLoadedEvent{BatchID: uuid.New()})
		messages <- eventMessage(t, "2-0", domain.HotspotLoadedEvent{BatchID: uuid.New(), Dimension: "satelite"})
		close(messages)

		stream.On("CreateConsumerGroup", ctx, domain.StreamHotspotLoaded, group).Return(nil).Once()
		stream.On("ConsumeStream", mock.Anything, domain.StreamHotspotLoaded, group, mock.AnythingOfType("string")).
			Return((<-chan domain.StreamMessage)(messages), nil).Once()
		cache.On("Invalidate", mock.Anything, domain.Dimension("")).Return(int64(3), nil).Once()
		cache.On("Invalidate", mock.Anything, domain.DimensionSatellite).Return(int64(1), nil).Once()
		stream.On("AckMessage", mock.Anything, domain.StreamHotspotLoaded, group, mock.AnythingOfType("string")).Return(nil).Twice()

		require.NoError(t, w.Start(ctx))
		cache.AssertExpectations(t)
		stream.AssertExpectations(t)
	})

	t.Run("consumer group error", func(t *testing.T) {
		ctx := context.Background()
		stream := &MockStreamRepository{}
		w := newWorker(stream, &MockCacheInvalidator{}, 1)

		stream.On("CreateConsumerGroup", ctx, domain.StreamHotspotLoaded, group).Return(errors.New("NOAUTH")).Once()

		err := w.Start(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "consumer group")
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		w := newWorker(&MockStreamRepository{}, &MockCacheInvalidator{}, 1)
		assert.NoError(t, w.Stop())
		assert.NoError(t, w.Stop())
		assert.True(t, w.IsStopped())
	})
}

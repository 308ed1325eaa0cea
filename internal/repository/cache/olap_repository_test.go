package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/repository/cache"
)

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// MockOlapSource is a mock of DimensionRepository and HotspotRepository
type MockOlapSource struct {
	mock.Mock
}

func (m *MockOlapSource) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountPair), args.Error(1)
}

func (m *MockOlapSource) QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeOption), args.Error(1)
}

func (m *MockOlapSource) GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HotspotFeature), args.Error(1)
}

func newRepo(src *MockOlapSource, c *MockCacheRepository) *cache.OlapRepository {
	return cache.NewOlapRepository(src, src, c, 10*time.Minute, 5*time.Minute, zap.NewNop())
}

func javaQuery() domain.QuerySpec {
	q := domain.QuerySpec{Dimension: domain.DimensionLocation}
	q.Location[domain.LevelIsland] = "JAWA"
	return q
}

func TestOlapRepository_QueryPairs(t *testing.T) {
	ctx := context.Background()
	q := javaQuery()
	want := []domain.CountPair{{Label: "JAWA TIMUR", Count: 12}}

	t.Run("miss queries upstream and stores", func(t *testing.T) {
		src := &MockOlapSource{}
		c := &MockCacheRepository{}
		encoded, _ := json.Marshal(want)

		c.On("Get", ctx, q.CacheKey()).Return(nil, nil)
		src.On("QueryPairs", ctx, q).Return(want, nil)
		c.On("Set", ctx, q.CacheKey(), encoded, 10*time.Minute).Return(nil)

		got, err := newRepo(src, c).QueryPairs(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		src.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("hit skips upstream", func(t *testing.T) {
		src := &MockOlapSource{}
		c := &MockCacheRepository{}
		encoded, _ := json.Marshal(want)
		c.On("Get", ctx, q.CacheKey()).Return(encoded, nil)

		got, err := newRepo(src, c).QueryPairs(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		src.AssertNotCalled(t, "QueryPairs", mock.Anything, mock.Anything)
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		src := &MockOlapSource{}
		c := &MockCacheRepository{}
		c.On("Get", ctx, q.CacheKey()).Return(nil, errors.New("connection refused"))
		c.On("Set", ctx, q.CacheKey(), mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		src.On("QueryPairs", ctx, q).Return(want, nil)

		got, err := newRepo(src, c).QueryPairs(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("upstream error is not cached", func(t *testing.T) {
		src := &MockOlapSource{}
		c := &MockCacheRepository{}
		c.On("Get", ctx, q.CacheKey()).Return(nil, nil)
		src.On("QueryPairs", ctx, q).Return(nil, errors.New("boom"))

		_, err := newRepo(src, c).QueryPairs(ctx, q)
		require.Error(t, err)
		c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOlapRepository_KeysAreSeparated(t *testing.T) {
	ctx := context.Background()
	src := &MockOlapSource{}
	c := &MockCacheRepository{}

	q := javaQuery()
	timeQ := q
	timeQ.Dimension = domain.DimensionTime
	feedQ := q
	feedQ.Dimension = ""

	c.On("Get", ctx, timeQ.CacheKey()+":options").Return(nil, nil).Once()
	c.On("Get", ctx, cache.FeedPrefix+feedQ.CacheKey()).Return(nil, nil).Once()
	c.On("Set", ctx, timeQ.CacheKey()+":options", mock.Anything, 10*time.Minute).Return(nil).Once()
	c.On("Set", ctx, cache.FeedPrefix+feedQ.CacheKey(), mock.Anything, 5*time.Minute).Return(nil).Once()
	src.On("QueryTimeOptions", ctx, timeQ).Return([]domain.TimeOption{{Value: "2024", Label: "2024"}}, nil)
	src.On("GetHotspots", ctx, feedQ).Return([]domain.HotspotFeature{{Lat: -7.7, Lon: 110.4}}, nil)

	repo := newRepo(src, c)
	options, err := repo.QueryTimeOptions(ctx, q)
	require.NoError(t, err)
	assert.Len(t, options, 1)

	features, err := repo.GetHotspots(ctx, q)
	require.NoError(t, err)
	assert.Len(t, features, 1)

	c.AssertExpectations(t)
	src.AssertExpectations(t)
}

func TestOlapRepository_Invalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("single dimension", func(t *testing.T) {
		c := &MockCacheRepository{}
		c.On("DeleteByPrefix", ctx, "olap:confidence:").Return(int64(3), nil)

		n, err := newRepo(&MockOlapSource{}, c).Invalidate(ctx, domain.DimensionConfidence)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("everything", func(t *testing.T) {
		c := &MockCacheRepository{}
		c.On("DeleteByPrefix", ctx, "olap:").Return(int64(4), nil)
		c.On("DeleteByPrefix", ctx, cache.FeedPrefix).Return(int64(2), nil)

		n, err := newRepo(&MockOlapSource{}, c).Invalidate(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, int64(6), n)
		c.AssertExpectations(t)
	})
}

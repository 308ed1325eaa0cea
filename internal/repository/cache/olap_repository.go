package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"go.uber.org/zap"
)

// FeedPrefix - префикс ключей закешированного потока /api/hotspot
const FeedPrefix = "feed:"

// DimensionPrefix returns the key prefix of one dimension's cached responses.
func DimensionPrefix(d domain.Dimension) string {
	return "olap:" + string(d) + ":"
}

// OlapRepository кеширует ответы сервиса измерений и потока в Redis.
// Ошибки кеша только логируются: запрос уходит в upstream.
type OlapRepository struct {
	dimensions repository.DimensionRepository
	hotspots   repository.HotspotRepository
	cache      repository.CacheRepository
	queryTTL   time.Duration
	feedTTL    time.Duration
	logger     *zap.Logger
}

func NewOlapRepository(
	dimensions repository.DimensionRepository,
	hotspots repository.HotspotRepository,
	cache repository.CacheRepository,
	queryTTL, feedTTL time.Duration,
	logger *zap.Logger,
) *OlapRepository {
	return &OlapRepository{
		dimensions: dimensions,
		hotspots:   hotspots,
		cache:      cache,
		queryTTL:   queryTTL,
		feedTTL:    feedTTL,
		logger:     logger,
	}
}

func (r *OlapRepository) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	key := q.CacheKey()
	var cached []domain.CountPair
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	pairs, err := r.dimensions.QueryPairs(ctx, q)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, pairs, r.queryTTL)
	return pairs, nil
}

func (r *OlapRepository) QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error) {
	q.Dimension = domain.DimensionTime
	key := q.CacheKey() + ":options"
	var cached []domain.TimeOption
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	options, err := r.dimensions.QueryTimeOptions(ctx, q)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, options, r.queryTTL)
	return options, nil
}

func (r *OlapRepository) GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error) {
	q.Dimension = ""
	key := FeedPrefix + q.CacheKey()
	var cached []domain.HotspotFeature
	if r.load(ctx, key, &cached) {
		return cached, nil
	}

	features, err := r.hotspots.GetHotspots(ctx, q)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, features, r.feedTTL)
	return features, nil
}

// Invalidate drops the cached responses of one dimension, or of everything
// (all dimensions and the feed) when d is empty.
func (r *OlapRepository) Invalidate(ctx context.Context, d domain.Dimension) (int64, error) {
	prefixes := []string{DimensionPrefix(d)}
	if d == "" {
		prefixes = []string{"olap:", FeedPrefix}
	}

	var total int64
	for _, p := range prefixes {
		n, err := r.cache.DeleteByPrefix(ctx, p)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (r *OlapRepository) load(ctx context.Context, key string, dst interface{}) bool {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Cache read failed, querying upstream", zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("Corrupted cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *OlapRepository) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("Failed to marshal cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, data, ttl); err != nil {
		r.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Package olapapi - HTTP-клиент сервиса измерений (/api/query/{dimension})
// и потока точек (/api/hotspot).
package olapapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hotspot-olap/internal/config"
	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 64 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient создает клиент; RateLimit <= 0 отключает ограничение частоты
func NewClient(cfg *config.OlapAPIConfig, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

// QueryPairs возвращает пары [label, count] для location, confidence и satelite
func (c *Client) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	body, err := c.get(ctx, "/api/query/"+url.PathEscape(string(q.Dimension)), q.Values())
	if err != nil {
		return nil, err
	}

	pairs, skipped, err := DecodePairs(body)
	if err != nil {
		c.logger.Warn("Malformed dimension response, treating as empty",
			zap.String("dimension", string(q.Dimension)),
			zap.Error(err))
		return []domain.CountPair{}, nil
	}
	if skipped > 0 {
		c.logger.Warn("Skipped malformed dimension rows",
			zap.String("dimension", string(q.Dimension)),
			zap.Int("skipped", skipped))
	}

	c.logger.Debug("Dimension query successful",
		zap.String("dimension", string(q.Dimension)),
		zap.Int("rows", len(pairs)))
	return pairs, nil
}

// QueryTimeOptions возвращает варианты следующего временного уровня
func (c *Client) QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error) {
	q.Dimension = domain.DimensionTime
	body, err := c.get(ctx, "/api/query/time", q.Values())
	if err != nil {
		return nil, err
	}

	options, err := DecodeTimeOptions(body)
	if err != nil {
		c.logger.Warn("Malformed time response, treating as empty", zap.Error(err))
		return []domain.TimeOption{}, nil
	}
	return options, nil
}

// GetHotspots возвращает точки потока, отфильтрованные по запросу
func (c *Client) GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error) {
	values := q.Values()
	values.Del("dimension")

	body, err := c.get(ctx, "/api/hotspot", values)
	if err != nil {
		return nil, err
	}

	features, skipped, err := DecodeHotspots(body)
	if err != nil {
		c.logger.Warn("Malformed hotspot feed, treating as empty", zap.Error(err))
		return []domain.HotspotFeature{}, nil
	}
	if skipped > 0 {
		c.logger.Warn("Skipped hotspot features without a valid point", zap.Int("skipped", skipped))
	}
	return features, nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", errors.ErrTransportFailure, err)
	}

	u := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		u += "?" + encoded
	}

	c.logger.Debug("Calling OLAP API", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", errors.ErrTransportFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.String("url", u), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errors.ErrTransportFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OLAP API returned error",
			zap.String("url", u),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(string(body), 512)))
		return nil, fmt.Errorf("%w: status %d", errors.ErrTransportFailure, resp.StatusCode)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

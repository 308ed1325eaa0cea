package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/pkg/errors"
)

// DefaultFeedLimit - максимум точек в ответе /api/hotspot
const DefaultFeedLimit = 50000

type warehouseRepository struct {
	db        *sqlx.DB
	logger    *zap.Logger
	feedLimit int
}

type labelCount struct {
	Label sql.NullString `db:"label"`
	Total int64          `db:"total"`
}

type feedRow struct {
	Latitude   float64        `db:"latitude"`
	Longitude  float64        `db:"longitude"`
	Confidence sql.NullString `db:"confidence"`
	Satellite  sql.NullString `db:"satellite"`
	AcquiredAt time.Time      `db:"acquired_at"`
	Pulau      string         `db:"pulau"`
	Provinsi   string         `db:"provinsi"`
	KabKota    string         `db:"kab_kota"`
	Kecamatan  string         `db:"kecamatan"`
	Desa       string         `db:"desa"`
}

// NewWarehouseRepository создает репозиторий звёздной схемы fact_hotspot
func NewWarehouseRepository(db *DB, feedLimit int) repository.WarehouseRepository {
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	return &warehouseRepository{
		db:        db.DB,
		logger:    db.logger,
		feedLimit: feedLimit,
	}
}

func (r *warehouseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// QueryPairs возвращает [label, count] по измерению запроса
func (r *warehouseRepository) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	query, err := buildDimensionQuery(q)
	if err != nil {
		return nil, err
	}

	var rows []labelCount
	if err := r.db.SelectContext(ctx, &rows, query.Text, query.Args...); err != nil {
		r.logger.Error("Failed to query dimension",
			zap.String("dimension", string(q.Dimension)),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	pairs := make([]domain.CountPair, 0, len(rows))
	for _, row := range rows {
		label := strings.TrimSpace(row.Label.String)
		if !row.Label.Valid || label == "" {
			continue
		}
		if query.TimeLevel != nil {
			var ok bool
			if label, ok = timeLabel(*query.TimeLevel, label); !ok {
				continue
			}
		}
		if q.Point != "" && !strings.EqualFold(label, q.Point) {
			continue
		}
		pairs = append(pairs, domain.CountPair{Label: label, Count: row.Total})
	}
	return pairs, nil
}

// QueryTimeOptions возвращает значения следующего временного уровня
func (r *warehouseRepository) QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error) {
	q.Dimension = domain.DimensionTime
	q.Point = ""
	pairs, err := r.QueryPairs(ctx, q)
	if err != nil {
		return nil, err
	}

	options := make([]domain.TimeOption, 0, len(pairs))
	for _, p := range pairs {
		options = append(options, domain.TimeOption{Value: p.Label, Label: p.Label})
	}
	return options, nil
}

// GetHotspots возвращает точки, каждая с hotspot_count = 1
func (r *warehouseRepository) GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error) {
	query, err := buildFeedQuery(q, r.feedLimit)
	if err != nil {
		return nil, err
	}

	var rows []feedRow
	if err := r.db.SelectContext(ctx, &rows, query.Text, query.Args...); err != nil {
		r.logger.Error("Failed to query hotspot feed", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	features := make([]domain.HotspotFeature, 0, len(rows))
	for _, row := range rows {
		features = append(features, domain.HotspotFeature{
			Lat: row.Latitude,
			Lon: row.Longitude,
			Properties: domain.HotspotProperties{
				Confidence:   row.Confidence.String,
				Satellite:    row.Satellite.String,
				Time:         row.AcquiredAt.UTC().Format(time.RFC3339),
				HotspotCount: 1,
				Location: &domain.HotspotLocation{
					Pulau:     row.Pulau,
					Provinsi:  row.Provinsi,
					KabKota:   row.KabKota,
					Kecamatan: row.Kecamatan,
					Desa:      row.Desa,
				},
			},
		})
	}

	if len(rows) == r.feedLimit {
		r.logger.Warn("Hotspot feed truncated", zap.Int("limit", r.feedLimit))
	}
	return features, nil
}

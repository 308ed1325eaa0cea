package usecase

import (
	"context"
	"net/url"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/pkg/errors"
	"github.com/hotspot-olap/internal/usecase/dto"
)

// QueryUseCase - сервис измерений и поток точек поверх хранилища, в том же
// формате, что читает olapapi.Client
type QueryUseCase struct {
	warehouse repository.WarehouseRepository
	logger    *zap.Logger
}

// NewQueryUseCase - создание нового QueryUseCase; warehouse может быть nil
func NewQueryUseCase(warehouse repository.WarehouseRepository, logger *zap.Logger) *QueryUseCase {
	return &QueryUseCase{
		warehouse: warehouse,
		logger:    logger,
	}
}

// Enabled reports whether a warehouse is configured.
func (uc *QueryUseCase) Enabled() bool {
	return uc.warehouse != nil
}

// Dimension answers GET /api/query/{dimension}. Time returns {value, label}
// options, other dimensions [label, count] rows.
func (uc *QueryUseCase) Dimension(ctx context.Context, dimension string, values url.Values) (*dto.DimensionQueryResponse, error) {
	if !uc.Enabled() {
		return nil, errors.ErrWarehouseDisabled
	}
	dim, ok := domain.ParseDimension(dimension)
	if !ok {
		return nil, errors.ErrInvalidDimension.WithMessage("unknown dimension %q", dimension)
	}
	q := domain.ParseQuerySpec(dim, values)

	if dim == domain.DimensionTime {
		options, err := uc.warehouse.QueryTimeOptions(ctx, q)
		if err != nil {
			return nil, err
		}
		return &dto.DimensionQueryResponse{Options: options}, nil
	}

	pairs, err := uc.warehouse.QueryPairs(ctx, q)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []interface{}{p.Label, p.Count})
	}

	uc.logger.Debug("Dimension query served",
		zap.String("dimension", string(dim)),
		zap.Int("rows", len(rows)))
	return &dto.DimensionQueryResponse{Pairs: rows}, nil
}

// Hotspots answers GET /api/hotspot with a GeoJSON FeatureCollection of points.
func (uc *QueryUseCase) Hotspots(ctx context.Context, values url.Values) (*geojson.FeatureCollection, error) {
	if !uc.Enabled() {
		return nil, errors.ErrWarehouseDisabled
	}
	q := domain.ParseQuerySpec("", values)

	features, err := uc.warehouse.GetHotspots(ctx, q)
	if err != nil {
		return nil, err
	}
	return EncodeHotspots(features), nil
}

// EncodeHotspots converts feed records to GeoJSON point features.
func EncodeHotspots(features []domain.HotspotFeature) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}
	for _, f := range features {
		props := map[string]interface{}{
			"confidence":    f.Properties.Confidence,
			"satellite":     f.Properties.Satellite,
			"time":          f.Properties.Time,
			"hotspot_count": f.Properties.HotspotCount,
		}
		if loc := f.Properties.Location; loc != nil {
			props["location"] = map[string]interface{}{
				"pulau":     loc.Pulau,
				"provinsi":  loc.Provinsi,
				"kab_kota":  loc.KabKota,
				"kecamatan": loc.Kecamatan,
				"desa":      loc.Desa,
			}
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   geom.NewPointFlat(geom.XY, []float64{f.Lon, f.Lat}),
			Properties: props,
		})
	}
	return fc
}

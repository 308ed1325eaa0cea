// Package boundary загружает статические полигоны пяти административных
// уровней (pulau, provinsi, kab/kota, kecamatan, desa) из GeoJSON или shapefile.
package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hotspot-olap/internal/config"
	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
)

const (
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shp"
)

var defaultBaseNames = [domain.LocationLevelCount]string{
	"batas_pulau",
	"batas_provinsi",
	"batas_kabkota",
	"batas_kecamatan",
	"batas_keldesa",
}

type fileRepository struct {
	dir    string
	format string
	files  map[string]string
	logger *zap.Logger

	mu     sync.Mutex
	loaded domain.BoundarySet
}

// NewRepository создает репозиторий границ, читающий файлы из cfg.Dir
func NewRepository(cfg *config.BoundaryConfig, logger *zap.Logger) repository.BoundaryRepository {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = FormatGeoJSON
	}
	return &fileRepository{
		dir:    cfg.Dir,
		format: format,
		files:  cfg.Files,
		logger: logger,
	}
}

// Path returns the file a level is read from. Overrides are keyed by the
// level's query key (pulau, provinsi, kota, kecamatan, desa).
func (r *fileRepository) Path(level domain.LocationLevel) string {
	name, ok := r.files[level.Key()]
	if !ok || name == "" {
		name = defaultBaseNames[level] + "." + r.format
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.dir, name)
}

// Load reads the five levels in parallel. A missing file leaves its level
// empty; an unreadable one fails the whole load.
func (r *fileRepository) Load(ctx context.Context) (domain.BoundarySet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded != nil {
		return r.loaded, nil
	}

	var levels [domain.LocationLevelCount][]domain.PolygonFeature
	g, gctx := errgroup.WithContext(ctx)
	for _, level := range domain.LocationLevels() {
		level := level
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			features, err := r.loadLevel(level)
			if err != nil {
				return err
			}
			levels[level] = features
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(domain.BoundarySet, domain.LocationLevelCount)
	for _, level := range domain.LocationLevels() {
		set[level] = levels[level]
	}
	r.loaded = set
	return set, nil
}

func (r *fileRepository) Features(ctx context.Context, level domain.LocationLevel) ([]domain.PolygonFeature, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("unknown location level %d", level)
	}
	set, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return set.Features(level), nil
}

func (r *fileRepository) loadLevel(level domain.LocationLevel) ([]domain.PolygonFeature, error) {
	path := r.Path(level)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("Boundary file not found, level left empty",
			zap.String("level", level.String()),
			zap.String("path", path))
		return nil, nil
	}

	var (
		features []domain.PolygonFeature
		skipped  int
		err      error
	)
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".shp"):
		features, skipped, err = ReadShapefile(path, level)
	default:
		features, skipped, err = ReadGeoJSON(path, level)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("Boundaries loaded",
		zap.String("level", level.String()),
		zap.Int("features", len(features)),
		zap.Int("skipped", skipped))
	return features, nil
}

// ReadGeoJSON decodes a FeatureCollection. Features without a polygonal
// geometry are skipped and counted.
func ReadGeoJSON(path string, level domain.LocationLevel) ([]domain.PolygonFeature, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "boundary: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, 0, eris.Wrapf(err, "boundary: decode %s", path)
	}

	features := make([]domain.PolygonFeature, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		if f == nil || !isPolygonal(f.Geometry) {
			skipped++
			continue
		}
		features = append(features, NewFeature(level, stringProperties(f.Properties), f.Geometry))
	}
	return features, skipped, nil
}

// NewFeature builds a feature and derives its centroid and bounding box.
func NewFeature(level domain.LocationLevel, props map[string]string, g geom.T) domain.PolygonFeature {
	f := domain.PolygonFeature{
		Level:      level,
		Properties: props,
		Geometry:   g,
	}
	if g == nil || g.Empty() {
		return f
	}

	b := g.Bounds()
	f.BBox = &domain.BoundingBox{
		MinLon: b.Min(0),
		MinLat: b.Min(1),
		MaxLon: b.Max(0),
		MaxLat: b.Max(1),
	}

	if c, err := xy.Centroid(g); err == nil && len(c) >= 2 {
		f.Centroid = &domain.Point{Lat: c[1], Lon: c[0]}
	} else {
		f.Centroid = &domain.Point{
			Lat: (f.BBox.MinLat + f.BBox.MaxLat) / 2,
			Lon: (f.BBox.MinLon + f.BBox.MaxLon) / 2,
		}
	}
	return f
}

func isPolygonal(g geom.T) bool {
	switch t := g.(type) {
	case *geom.Polygon:
		return !t.Empty()
	case *geom.MultiPolygon:
		return !t.Empty()
	}
	return false
}

func stringProperties(props map[string]interface{}) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			out[k] = strings.TrimSpace(t)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

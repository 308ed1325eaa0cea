package olap

import (
	"github.com/hotspot-olap/internal/domain"
)

// ZoomTable - целевой zoom карты для каждого уровня
type ZoomTable [domain.LocationLevelCount]int

var (
	// OverviewZoom is used while nothing is selected.
	OverviewZoom = ZoomTable{5, 6, 7, 8, 9}
	// FocusedZoom is used once the drill path is non-empty.
	FocusedZoom = ZoomTable{5, 7, 9, 11, 13}
)

// MapSync выбирает видимые полигоны, подсветку и zoom для активного уровня.
// View is pure: the same inputs always give the same view.
type MapSync struct {
	norm      *Normalizer
	showEmpty bool
}

func NewMapSync(norm *Normalizer, showEmpty bool) *MapSync {
	return &MapSync{norm: norm, showEmpty: showEmpty}
}

// View builds everything the map widget needs for one redraw. Thresholds are
// computed from agg every time.
func (m *MapSync) View(level domain.LocationLevel, path []string, features []domain.PolygonFeature, agg domain.AggregateMap) domain.MapView {
	if agg == nil {
		agg = domain.AggregateMap{}
	}
	thresholds := Classify(agg)
	highlight := m.highlightName(level, path)

	view := domain.MapView{
		Level:      level,
		Path:       append([]string{}, path...),
		Zoom:       m.Zoom(level, path),
		Aggregate:  agg,
		Thresholds: thresholds,
		Legend:     Legend(thresholds),
		Features:   []domain.MapFeature{},
	}

	var centroids []domain.Point
	var focus *domain.Point
	for _, f := range m.Visible(level, path, features) {
		key := m.norm.Normalize(f.Name())
		count := agg[key]
		if count <= 0 && !m.showEmpty && !m.norm.IsCanonical(key) {
			continue
		}
		bucket := BucketOf(thresholds, count)
		mf := domain.MapFeature{
			Name:        f.Name(),
			Key:         key,
			Count:       count,
			Bucket:      bucket,
			Color:       Color(bucket),
			Highlighted: highlight != "" && key == highlight,
			Properties:  f.Properties,
			Centroid:    f.Centroid,
		}
		if mf.Highlighted {
			view.Highlight = key
			if f.Centroid != nil {
				c := *f.Centroid
				focus = &c
			}
		}
		if f.Centroid != nil {
			centroids = append(centroids, *f.Centroid)
		}
		view.Features = append(view.Features, mf)
	}

	switch {
	case focus != nil:
		view.Center = *focus
	case len(centroids) > 0 && len(path) > 0:
		view.Center = meanPoint(centroids)
	default:
		view.Center = domain.DefaultCenter
	}
	return view
}

// Zoom picks the level's zoom from the overview or the focused table.
func (m *MapSync) Zoom(level domain.LocationLevel, path []string) int {
	if !level.Valid() {
		return OverviewZoom[domain.LevelIsland]
	}
	if len(path) == 0 {
		return OverviewZoom[level]
	}
	return FocusedZoom[level]
}

// Visible filters features of the level to those inside the path: their
// parent attribute must match the path label one level coarser. Island
// features are never filtered, nor is any level when the path is too short.
func (m *MapSync) Visible(level domain.LocationLevel, path []string, features []domain.PolygonFeature) []domain.PolygonFeature {
	parent, ok := level.Parent()
	if !ok || int(parent) >= len(path) {
		return features
	}
	want := m.norm.Normalize(path[parent])
	out := make([]domain.PolygonFeature, 0, len(features))
	for _, f := range features {
		if m.norm.Normalize(f.Attribute(parent.Attribute())) == want {
			out = append(out, f)
		}
	}
	return out
}

// highlightName is the normalized path label at the active level, if any.
func (m *MapSync) highlightName(level domain.LocationLevel, path []string) string {
	if !level.Valid() || int(level) >= len(path) {
		return ""
	}
	return m.norm.Normalize(path[level])
}

func meanPoint(points []domain.Point) domain.Point {
	var lat, lon float64
	for _, p := range points {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(points))
	return domain.Point{Lat: lat / n, Lon: lon / n}
}

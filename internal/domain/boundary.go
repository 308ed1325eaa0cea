package domain

import (
	"strings"

	"github.com/twpayne/go-geom"
)

// PolygonFeature - полигон административной границы одного уровня
type PolygonFeature struct {
	Level      LocationLevel     `json:"level"`
	Properties map[string]string `json:"properties"`
	Geometry   geom.T            `json:"-"`
	Centroid   *Point            `json:"centroid,omitempty"`
	BBox       *BoundingBox      `json:"bbox,omitempty"`
}

// Name returns the feature's own name attribute (e.g. WADMPR for provinces).
func (f PolygonFeature) Name() string {
	return f.Attribute(f.Level.Attribute())
}

// Attribute looks a property up case-insensitively; shapefile readers tend to
// change the casing of attribute names.
func (f PolygonFeature) Attribute(name string) string {
	if v, ok := f.Properties[name]; ok {
		return v
	}
	for k, v := range f.Properties {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// ParentName returns the name of the enclosing unit one level coarser.
func (f PolygonFeature) ParentName() string {
	parent, ok := f.Level.Parent()
	if !ok {
		return ""
	}
	return f.Attribute(parent.Attribute())
}

// BoundarySet - полигоны всех пяти уровней
type BoundarySet map[LocationLevel][]PolygonFeature

// Features returns the features of a level (nil when the level is not loaded).
func (s BoundarySet) Features(level LocationLevel) []PolygonFeature {
	if s == nil {
		return nil
	}
	return s[level]
}

package domain

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// Contains reports whether the point lies inside the box (edges included).
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// IndonesiaBounds - охват карты на уровне pulau
var IndonesiaBounds = BoundingBox{MinLat: -11, MinLon: 94, MaxLat: 6, MaxLon: 141}

// DefaultCenter is the map center used when no location is selected.
var DefaultCenter = Point{Lat: -2.5, Lon: 118}

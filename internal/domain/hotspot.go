package domain

import (
	"strings"
	"time"
)

// HotspotLocation - административные названия, привязанные к записи
type HotspotLocation struct {
	Pulau     string `json:"pulau,omitempty"`
	Provinsi  string `json:"provinsi,omitempty"`
	KabKota   string `json:"kab_kota,omitempty"`
	Kecamatan string `json:"kecamatan,omitempty"`
	Desa      string `json:"desa,omitempty"`
}

// Name returns the administrative name stored for a level.
func (l HotspotLocation) Name(level LocationLevel) string {
	switch level {
	case LevelIsland:
		return l.Pulau
	case LevelProvince:
		return l.Provinsi
	case LevelRegency:
		return l.KabKota
	case LevelDistrict:
		return l.Kecamatan
	case LevelVillage:
		return l.Desa
	}
	return ""
}

// HotspotProperties - свойства точки из потока /api/hotspot
type HotspotProperties struct {
	Confidence   string           `json:"confidence"`
	Satellite    string           `json:"satellite"`
	Time         string           `json:"time"`
	HotspotTime  string           `json:"hotspot_time,omitempty"`
	HotspotCount int64            `json:"hotspot_count"`
	Location     *HotspotLocation `json:"location,omitempty"`
}

// Timestamp parses the record time. Accepted layouts cover what the feed
// produces: RFC 3339, "2006-01-02 15:04:05" and a bare date.
func (p HotspotProperties) Timestamp() (time.Time, bool) {
	raw := strings.TrimSpace(p.Time)
	if raw == "" {
		raw = strings.TrimSpace(p.HotspotTime)
	}
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date returns the calendar date part of the record time ("" if unknown).
func (p HotspotProperties) Date() string {
	t, ok := p.Timestamp()
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// HotspotFeature - точка потока с координатами
type HotspotFeature struct {
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Properties HotspotProperties `json:"properties"`
}

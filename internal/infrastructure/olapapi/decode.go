package olapapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/pkg/errors"
	"github.com/hotspot-olap/internal/pkg/utils"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// DecodePairs decodes a [[label, count], ...] response. Rows that are not a
// pair (or a {label, count} object) are skipped and counted. A body that is
// not a JSON array yields MalformedResponse.
func DecodePairs(body []byte) ([]domain.CountPair, int, error) {
	items, err := decodeArray(body)
	if err != nil {
		return nil, 0, err
	}

	pairs := make([]domain.CountPair, 0, len(items))
	skipped := 0
	for _, raw := range items {
		p, ok := decodePair(raw)
		if !ok {
			skipped++
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, skipped, nil
}

// DecodeTimeOptions accepts [value, ...] rows, {value, label} and {id, name}
// objects and bare scalars.
func DecodeTimeOptions(body []byte) ([]domain.TimeOption, error) {
	items, err := decodeArray(body)
	if err != nil {
		return nil, err
	}

	options := make([]domain.TimeOption, 0, len(items))
	for _, raw := range items {
		if o, ok := decodeTimeOption(raw); ok {
			options = append(options, o)
		}
	}
	return options, nil
}

// DecodeHotspots decodes the feed's GeoJSON FeatureCollection. Features
// without a valid point geometry are skipped and counted.
func DecodeHotspots(body []byte) ([]domain.HotspotFeature, int, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}

	features := make([]domain.HotspotFeature, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		if f == nil {
			skipped++
			continue
		}
		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt.Empty() {
			skipped++
			continue
		}
		lon, lat := pt.X(), pt.Y()
		if !utils.ValidateCoordinates(lat, lon) {
			skipped++
			continue
		}
		features = append(features, domain.HotspotFeature{
			Lat:        lat,
			Lon:        lon,
			Properties: decodeProperties(f.Properties),
		})
	}
	return features, skipped, nil
}

func decodeArray(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected JSON array", errors.ErrMalformedResponse)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedResponse, err)
	}
	return items, nil
}

func decodePair(raw json.RawMessage) (domain.CountPair, bool) {
	var row []interface{}
	if err := json.Unmarshal(raw, &row); err == nil {
		if len(row) < 2 {
			return domain.CountPair{}, false
		}
		label := scalarString(row[0])
		count, ok := scalarInt(row[1])
		if label == "" || !ok {
			return domain.CountPair{}, false
		}
		return domain.CountPair{Label: label, Count: count}, true
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.CountPair{}, false
	}
	label := firstString(obj, "label", "name")
	count, ok := firstInt(obj, "count", "total", "value")
	if label == "" || !ok {
		return domain.CountPair{}, false
	}
	return domain.CountPair{Label: label, Count: count}, true
}

func decodeTimeOption(raw json.RawMessage) (domain.TimeOption, bool) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.TimeOption{}, false
	}

	var value, label string
	switch t := v.(type) {
	case []interface{}:
		if len(t) == 0 {
			return domain.TimeOption{}, false
		}
		value = scalarString(t[0])
	case map[string]interface{}:
		value = firstString(t, "value", "id")
		label = firstString(t, "label", "name")
	default:
		value = scalarString(t)
	}
	if value == "" {
		return domain.TimeOption{}, false
	}
	if label == "" {
		label = value
	}
	return domain.TimeOption{Value: value, Label: label}, true
}

func decodeProperties(props map[string]interface{}) domain.HotspotProperties {
	p := domain.HotspotProperties{
		Confidence:  firstString(props, "confidence"),
		Satellite:   firstString(props, "satellite", "satelite"),
		Time:        firstString(props, "time", "hotspot_time", "timestamp"),
		HotspotTime: firstString(props, "hotspot_time"),
	}
	if n, ok := firstInt(props, "hotspot_count"); ok {
		p.HotspotCount = n
	}
	if loc, ok := props["location"].(map[string]interface{}); ok {
		p.Location = &domain.HotspotLocation{
			Pulau:     firstString(loc, "pulau"),
			Provinsi:  firstString(loc, "provinsi"),
			KabKota:   firstString(loc, "kab_kota", "kabupaten", "kota"),
			Kecamatan: firstString(loc, "kecamatan"),
			Desa:      firstString(loc, "desa", "kelurahan"),
		}
	}
	return p
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := scalarString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(m map[string]interface{}, keys ...string) (int64, bool) {
	for _, k := range keys {
		if n, ok := scalarInt(m[k]); ok {
			return n, true
		}
	}
	return 0, false
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func scalarInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

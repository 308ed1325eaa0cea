package domain

import (
	"strconv"
	"strings"
)

// LocationLevel - уровень административной иерархии (pulau → desa)
type LocationLevel int

const (
	LevelIsland LocationLevel = iota
	LevelProvince
	LevelRegency
	LevelDistrict
	LevelVillage
)

// LocationLevelCount is the depth of the spatial hierarchy.
const LocationLevelCount = 5

var locationLevels = [LocationLevelCount]struct {
	key       string
	attribute string
	field     string
	name      string
}{
	{key: "pulau", attribute: "PULAU", field: "pulau", name: "island"},
	{key: "provinsi", attribute: "WADMPR", field: "provinsi", name: "province"},
	{key: "kota", attribute: "WADMKK", field: "kab_kota", name: "regency"},
	{key: "kecamatan", attribute: "WADMKC", field: "kecamatan", name: "district"},
	{key: "desa", attribute: "NAMOBJ", field: "desa", name: "village"},
}

// LocationLevels returns all levels, coarsest first.
func LocationLevels() []LocationLevel {
	return []LocationLevel{LevelIsland, LevelProvince, LevelRegency, LevelDistrict, LevelVillage}
}

func (l LocationLevel) Valid() bool {
	return l >= LevelIsland && l <= LevelVillage
}

// Key returns the query-string key used by the dimensional query service.
func (l LocationLevel) Key() string {
	if !l.Valid() {
		return ""
	}
	return locationLevels[l].key
}

// Attribute returns the polygon-feature property carrying the level name.
func (l LocationLevel) Attribute() string {
	if !l.Valid() {
		return ""
	}
	return locationLevels[l].attribute
}

// FeedField returns the field name inside a hotspot record's location object.
func (l LocationLevel) FeedField() string {
	if !l.Valid() {
		return ""
	}
	return locationLevels[l].field
}

func (l LocationLevel) String() string {
	if !l.Valid() {
		return "unknown"
	}
	return locationLevels[l].name
}

// Next returns the next finer level; ok is false at the village level.
func (l LocationLevel) Next() (LocationLevel, bool) {
	if !l.Valid() || l == LevelVillage {
		return l, false
	}
	return l + 1, true
}

// Parent returns the next coarser level; ok is false at the island level.
func (l LocationLevel) Parent() (LocationLevel, bool) {
	if !l.Valid() || l == LevelIsland {
		return l, false
	}
	return l - 1, true
}

// MarshalText encodes the level by its query key.
func (l LocationLevel) MarshalText() ([]byte, error) {
	return []byte(l.Key()), nil
}

// ParseLocationLevel accepts query keys, English names and the aliases used
// by the original frontend (kabupaten, kab_kota).
func ParseLocationLevel(s string) (LocationLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pulau", "island":
		return LevelIsland, true
	case "provinsi", "province":
		return LevelProvince, true
	case "kota", "kabupaten", "kab_kota", "regency", "city":
		return LevelRegency, true
	case "kecamatan", "district":
		return LevelDistrict, true
	case "desa", "kelurahan", "village":
		return LevelVillage, true
	}
	return 0, false
}

// TimeLevel - уровень временной иерархии (tahun → hari)
type TimeLevel int

const (
	TimeYear TimeLevel = iota
	TimeSemester
	TimeQuarter
	TimeMonth
	TimeDay
)

// TimeLevelCount is the depth of the time hierarchy.
const TimeLevelCount = 5

var timeKeys = [TimeLevelCount]string{"tahun", "semester", "kuartal", "bulan", "hari"}

// MonthNames are the month labels used by the time dimension.
var MonthNames = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// DayNames are the weekday labels, indexed like time.Weekday (Sunday first).
var DayNames = []string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// SemesterValues and QuarterValues are the closed value sets of their levels.
var (
	SemesterValues = []string{"1", "2"}
	QuarterValues  = []string{"Q1", "Q2", "Q3", "Q4"}
)

// TimeLevels returns all time levels, coarsest first.
func TimeLevels() []TimeLevel {
	return []TimeLevel{TimeYear, TimeSemester, TimeQuarter, TimeMonth, TimeDay}
}

func (t TimeLevel) Valid() bool {
	return t >= TimeYear && t <= TimeDay
}

func (t TimeLevel) Key() string {
	if !t.Valid() {
		return ""
	}
	return timeKeys[t]
}

func (t TimeLevel) String() string {
	return t.Key()
}

func (t TimeLevel) Next() (TimeLevel, bool) {
	if !t.Valid() || t == TimeDay {
		return t, false
	}
	return t + 1, true
}

func (t TimeLevel) Parent() (TimeLevel, bool) {
	if !t.Valid() || t == TimeYear {
		return t, false
	}
	return t - 1, true
}

func (t TimeLevel) MarshalText() ([]byte, error) {
	return []byte(t.Key()), nil
}

// Values returns the enumerated legal values; nil for the open-ended year level.
func (t TimeLevel) Values() []string {
	switch t {
	case TimeSemester:
		return SemesterValues
	case TimeQuarter:
		return QuarterValues
	case TimeMonth:
		return MonthNames
	case TimeDay:
		return DayNames
	}
	return nil
}

// Legal reports whether v belongs to the level's value set.
func (t TimeLevel) Legal(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if t == TimeYear {
		year, err := strconv.Atoi(v)
		return err == nil && len(v) == 4 && year > 0
	}
	return t.Canonical(v) != ""
}

// Canonical returns the value spelled as in the level's value set, or ""
// when v is not legal. Years are returned trimmed.
func (t TimeLevel) Canonical(v string) string {
	v = strings.TrimSpace(v)
	if t == TimeYear {
		return v
	}
	for _, candidate := range t.Values() {
		if strings.EqualFold(candidate, v) {
			return candidate
		}
	}
	return ""
}

func ParseTimeLevel(s string) (TimeLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tahun", "year":
		return TimeYear, true
	case "semester":
		return TimeSemester, true
	case "kuartal", "quartal", "quarter":
		return TimeQuarter, true
	case "bulan", "month":
		return TimeMonth, true
	case "hari", "day":
		return TimeDay, true
	}
	return 0, false
}

// Dimension - измерение куба, как его называет сервис запросов
type Dimension string

const (
	DimensionLocation   Dimension = "location"
	DimensionTime       Dimension = "time"
	DimensionConfidence Dimension = "confidence"
	DimensionSatellite  Dimension = "satelite"
)

func (d Dimension) Valid() bool {
	switch d {
	case DimensionLocation, DimensionTime, DimensionConfidence, DimensionSatellite:
		return true
	}
	return false
}

// ParseDimension accepts the wire spelling and the English "satellite".
func ParseDimension(s string) (Dimension, bool) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if d == "satellite" {
		d = DimensionSatellite
	}
	return d, d.Valid()
}

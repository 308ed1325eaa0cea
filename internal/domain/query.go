package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// TimeFilterState - выбранные значения временных фильтров (tahun → hari)
type TimeFilterState struct {
	Year     string `json:"tahun,omitempty"`
	Semester string `json:"semester,omitempty"`
	Quarter  string `json:"kuartal,omitempty"`
	Month    string `json:"bulan,omitempty"`
	Day      string `json:"hari,omitempty"`
}

// Get returns the value stored for a level.
func (s TimeFilterState) Get(level TimeLevel) string {
	switch level {
	case TimeYear:
		return s.Year
	case TimeSemester:
		return s.Semester
	case TimeQuarter:
		return s.Quarter
	case TimeMonth:
		return s.Month
	case TimeDay:
		return s.Day
	}
	return ""
}

// With returns a copy with the level set to v. Finer levels are left as is;
// use Clear for cascade semantics.
func (s TimeFilterState) With(level TimeLevel, v string) TimeFilterState {
	switch level {
	case TimeYear:
		s.Year = v
	case TimeSemester:
		s.Semester = v
	case TimeQuarter:
		s.Quarter = v
	case TimeMonth:
		s.Month = v
	case TimeDay:
		s.Day = v
	}
	return s
}

// Clear empties the level and every finer level.
func (s TimeFilterState) Clear(level TimeLevel) TimeFilterState {
	for l := level; l.Valid(); l++ {
		s = s.With(l, "")
	}
	return s
}

// IsZero reports whether no time level is set.
func (s TimeFilterState) IsZero() bool {
	return s == TimeFilterState{}
}

// Validate enforces the no-gap rule: a level may be set only when all
// coarser levels are set.
func (s TimeFilterState) Validate() error {
	gap := false
	for _, l := range TimeLevels() {
		v := s.Get(l)
		if v == "" {
			gap = true
			continue
		}
		if gap {
			return fmt.Errorf("time level %s set without coarser levels", l.Key())
		}
	}
	return nil
}

// Deepest returns the finest level set; ok is false for an empty state.
func (s TimeFilterState) Deepest() (TimeLevel, bool) {
	for l := TimeDay; l >= TimeYear; l-- {
		if s.Get(l) != "" {
			return l, true
		}
	}
	return 0, false
}

// Filters - глобальные фильтры куба
type Filters struct {
	Confidence string          `json:"confidence,omitempty"`
	Satellite  string          `json:"satelite,omitempty"`
	Time       TimeFilterState `json:"time"`
}

// QuerySpec - запрос к сервису измерений, ограниченный текущим путём drill-down.
// В JSON уровни местоположения пишутся плоско ключами pulau..desa, как в query string.
type QuerySpec struct {
	Dimension  Dimension                  `json:"dimension"`
	Location   [LocationLevelCount]string `json:"-"`
	Time       TimeFilterState            `json:"time"`
	Confidence string                     `json:"confidence,omitempty"`
	Satellite  string                     `json:"satelite,omitempty"`
	Point      string                     `json:"point,omitempty"`
}

type queryJSON struct {
	Dimension  Dimension       `json:"dimension"`
	Pulau      string          `json:"pulau,omitempty"`
	Provinsi   string          `json:"provinsi,omitempty"`
	Kota       string          `json:"kota,omitempty"`
	Kecamatan  string          `json:"kecamatan,omitempty"`
	Desa       string          `json:"desa,omitempty"`
	Time       TimeFilterState `json:"time"`
	Confidence string          `json:"confidence,omitempty"`
	Satellite  string          `json:"satelite,omitempty"`
	Point      string          `json:"point,omitempty"`
}

func (q QuerySpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(queryJSON{
		Dimension:  q.Dimension,
		Pulau:      q.Location[LevelIsland],
		Provinsi:   q.Location[LevelProvince],
		Kota:       q.Location[LevelRegency],
		Kecamatan:  q.Location[LevelDistrict],
		Desa:       q.Location[LevelVillage],
		Time:       q.Time,
		Confidence: q.Confidence,
		Satellite:  q.Satellite,
		Point:      q.Point,
	})
}

func (q *QuerySpec) UnmarshalJSON(data []byte) error {
	var raw queryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*q = QuerySpec{
		Dimension:  raw.Dimension,
		Location:   [LocationLevelCount]string{raw.Pulau, raw.Provinsi, raw.Kota, raw.Kecamatan, raw.Desa},
		Time:       raw.Time,
		Confidence: raw.Confidence,
		Satellite:  raw.Satellite,
		Point:      raw.Point,
	}
	return nil
}

// LocationPath returns the fixed location labels, coarsest first.
func (q QuerySpec) LocationPath() []string {
	path := make([]string, 0, LocationLevelCount)
	for _, v := range q.Location {
		if v == "" {
			break
		}
		path = append(path, v)
	}
	return path
}

// Depth is the number of fixed location levels.
func (q QuerySpec) Depth() int {
	return len(q.LocationPath())
}

// Validate checks the no-gap invariant for both hierarchies.
func (q QuerySpec) Validate() error {
	gap := false
	for _, l := range LocationLevels() {
		if q.Location[l] == "" {
			gap = true
			continue
		}
		if gap {
			return fmt.Errorf("location level %s set without coarser levels", l.Key())
		}
	}
	return q.Time.Validate()
}

// Filters returns the global filters embedded in the query.
func (q QuerySpec) Filters() Filters {
	return Filters{Confidence: q.Confidence, Satellite: q.Satellite, Time: q.Time}
}

// Values encodes the non-empty fields with the service's query-string keys.
func (q QuerySpec) Values() url.Values {
	v := url.Values{}
	for _, l := range LocationLevels() {
		if s := q.Location[l]; s != "" {
			v.Set(l.Key(), s)
		}
	}
	for _, l := range TimeLevels() {
		if s := q.Time.Get(l); s != "" {
			v.Set(l.Key(), s)
		}
	}
	if q.Confidence != "" {
		v.Set("confidence", q.Confidence)
	}
	if q.Satellite != "" {
		v.Set("satelite", q.Satellite)
	}
	if q.Point != "" {
		v.Set("point", q.Point)
	}
	if q.Dimension != "" {
		v.Set("dimension", string(q.Dimension))
	}
	return v
}

// CacheKey is a stable key for caching the response of this query.
func (q QuerySpec) CacheKey() string {
	v := q.Values()
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("olap:")
	b.WriteString(string(q.Dimension))
	for _, k := range keys {
		b.WriteString(":")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strings.ToLower(v.Get(k)))
	}
	return b.String()
}

// ParseQuerySpec decodes query-string values into a spec. Unknown keys are ignored.
func ParseQuerySpec(dim Dimension, v url.Values) QuerySpec {
	q := QuerySpec{Dimension: dim}
	for _, l := range LocationLevels() {
		q.Location[l] = strings.TrimSpace(v.Get(l.Key()))
	}
	if q.Location[LevelRegency] == "" {
		q.Location[LevelRegency] = strings.TrimSpace(v.Get("kab_kota"))
	}
	for _, l := range TimeLevels() {
		q.Time = q.Time.With(l, strings.TrimSpace(v.Get(l.Key())))
	}
	if q.Time.Quarter == "" {
		q.Time.Quarter = strings.TrimSpace(v.Get("quartal"))
	}
	q.Confidence = strings.TrimSpace(v.Get("confidence"))
	q.Satellite = strings.TrimSpace(v.Get("satelite"))
	q.Point = strings.TrimSpace(v.Get("point"))
	return q
}

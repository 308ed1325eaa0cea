package olap

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hotspot-olap/internal/domain"
)

// Aggregator - сводит пары сервиса измерений или поток точек к AggregateMap
type Aggregator struct {
	norm *Normalizer
}

func NewAggregator(norm *Normalizer) *Aggregator {
	return &Aggregator{norm: norm}
}

// FromPairs keys pre-aggregated (label, count) pairs by normalized name.
// Labels that normalize to the same name are summed.
func (a *Aggregator) FromPairs(pairs []domain.CountPair) domain.AggregateMap {
	out := make(domain.AggregateMap, len(pairs))
	for _, p := range pairs {
		key := a.norm.Normalize(p.Label)
		if key == "" {
			continue
		}
		out[key] += p.Count
	}
	return out
}

// FromFeed counts hotspot records client-side for the active level. A record
// adds its hotspot_count (at least one) to the key of the level's location
// field. It is skipped when that field is missing, when it lies outside the
// drill path, or when it fails the filters.
func (a *Aggregator) FromFeed(features []domain.HotspotFeature, level domain.LocationLevel, path []string, filters domain.Filters) domain.AggregateMap {
	out := make(domain.AggregateMap)
	if !level.Valid() {
		return out
	}
	scope := a.scope(path, level)

	for _, f := range features {
		loc := f.Properties.Location
		if loc == nil {
			continue
		}
		key := a.norm.Normalize(loc.Name(level))
		if key == "" {
			continue
		}
		if !a.inScope(*loc, scope) || !MatchFilters(f.Properties, filters) {
			continue
		}
		out[key] += recordCount(f.Properties)
	}
	return out
}

// DateCounts counts records per calendar date (YYYY-MM-DD) after filtering.
func (a *Aggregator) DateCounts(features []domain.HotspotFeature, filters domain.Filters) map[string]int64 {
	out := make(map[string]int64)
	for _, f := range features {
		if !MatchFilters(f.Properties, filters) {
			continue
		}
		if d := f.Properties.Date(); d != "" {
			out[d] += recordCount(f.Properties)
		}
	}
	return out
}

// LatestDate returns the most recent date present in the counts ("" if none).
func LatestDate(counts map[string]int64) string {
	dates := make([]string, 0, len(counts))
	for d := range counts {
		dates = append(dates, d)
	}
	if len(dates) == 0 {
		return ""
	}
	sort.Strings(dates)
	return dates[len(dates)-1]
}

// MatchFilters is the record-level equivalent of the query filters:
// categorical fields match case-insensitively, time levels are derived from
// the record's timestamp. A record without a parsable time fails any active
// time filter.
func MatchFilters(props domain.HotspotProperties, filters domain.Filters) bool {
	if !matchCategory(props.Confidence, filters.Confidence) {
		return false
	}
	if !matchCategory(props.Satellite, filters.Satellite) {
		return false
	}
	if filters.Time.IsZero() {
		return true
	}

	ts, ok := props.Timestamp()
	if !ok {
		return false
	}
	month := int(ts.Month())
	derived := domain.TimeFilterState{
		Year:     strconv.Itoa(ts.Year()),
		Semester: strconv.Itoa((month + 5) / 6),
		Quarter:  "Q" + strconv.Itoa((month+2)/3),
		Month:    domain.MonthNames[month-1],
		Day:      domain.DayNames[ts.Weekday()],
	}
	for _, l := range domain.TimeLevels() {
		want := strings.TrimSpace(filters.Time.Get(l))
		if want != "" && !strings.EqualFold(want, derived.Get(l)) {
			return false
		}
	}
	return true
}

func matchCategory(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(strings.TrimSpace(value), filter)
}

// recordCount - вес записи: hotspot_count, отсутствующий или отрицательный считается нулём.
func recordCount(p domain.HotspotProperties) int64 {
	if p.HotspotCount < 0 {
		return 0
	}
	return p.HotspotCount
}

// scope normalizes the path labels coarser than level.
func (a *Aggregator) scope(path []string, level domain.LocationLevel) []string {
	n := len(path)
	if n > int(level) {
		n = int(level)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = a.norm.Normalize(path[i])
	}
	return out
}

func (a *Aggregator) inScope(loc domain.HotspotLocation, scope []string) bool {
	for i, want := range scope {
		if want == "" {
			continue
		}
		if a.norm.Normalize(loc.Name(domain.LocationLevel(i))) != want {
			return false
		}
	}
	return true
}

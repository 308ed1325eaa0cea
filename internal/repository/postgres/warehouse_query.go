package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/pkg/errors"
)

const factJoins = `
FROM fact_hotspot f
JOIN dim_location l ON l.id = f.location_id
JOIN dim_period p ON p.id = f.period_id
JOIN dim_satellite s ON s.id = f.satellite_id
JOIN dim_confidence c ON c.id = f.confidence_id`

var locationColumns = [domain.LocationLevelCount]string{
	"l.island_name",
	"l.province_name",
	"l.city_name",
	"l.district_name",
	"l.subdistrict_name",
}

var timeColumns = [domain.TimeLevelCount]string{
	"p.year_value",
	"p.semester_value",
	"p.quarter_value",
	"p.month_value",
	"EXTRACT(DOW FROM p.date_value)",
}

// sqlQuery - текст запроса и позиционные аргументы
type sqlQuery struct {
	Text string
	Args []interface{}
	// TimeLevel is set when labels are numeric keys of a time level.
	TimeLevel *domain.TimeLevel
}

type whereBuilder struct {
	conds []string
	args  []interface{}
}

// add appends a condition; "?" in expr becomes the next placeholder.
func (w *whereBuilder) add(expr string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(expr, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "\nWHERE " + strings.Join(w.conds, "\n  AND ")
}

// buildWhere translates the query filters into conditions over the star schema.
func buildWhere(q domain.QuerySpec) (*whereBuilder, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.ErrInvalidHierarchyRequest.WithMessage("%v", err)
	}

	w := &whereBuilder{}
	for _, l := range domain.LocationLevels() {
		if v := q.Location[l]; v != "" {
			w.add("UPPER("+locationColumns[l]+") = UPPER(?)", v)
		}
	}

	for _, l := range domain.TimeLevels() {
		v := q.Time.Get(l)
		if v == "" {
			continue
		}
		key, ok := timeKey(l, v)
		if !ok {
			return nil, errors.ErrValidation.WithMessage("invalid %s value %q", l.Key(), v)
		}
		w.add(timeColumns[l]+" = ?", key)
	}

	if values := splitList(q.Confidence, strings.ToLower); len(values) > 0 {
		w.add("LOWER(c.confidence_class) = ANY(?)", pq.Array(values))
	}
	if values := splitList(q.Satellite, strings.ToUpper); len(values) > 0 {
		w.add("UPPER(s.satellite_name) = ANY(?)", pq.Array(values))
	}
	return w, nil
}

// buildDimensionQuery groups the filtered facts by the level below the
// deepest fixed one (location, time) or by the categorical attribute.
func buildDimensionQuery(q domain.QuerySpec) (sqlQuery, error) {
	w, err := buildWhere(q)
	if err != nil {
		return sqlQuery{}, err
	}

	var (
		expr      string
		order     = "total DESC, label"
		timeLevel *domain.TimeLevel
	)
	switch q.Dimension {
	case domain.DimensionLocation:
		expr = locationColumns[groupLocationLevel(q)]
	case domain.DimensionTime:
		l := groupTimeLevel(q.Time)
		timeLevel = &l
		expr = "CAST(" + timeColumns[l] + " AS INTEGER)"
		order = "MIN(" + timeColumns[l] + ")"
	case domain.DimensionConfidence:
		expr = "LOWER(c.confidence_class)"
	case domain.DimensionSatellite:
		expr = "s.satellite_name"
	default:
		return sqlQuery{}, errors.ErrInvalidDimension.WithMessage("unknown dimension %q", q.Dimension)
	}

	text := "SELECT CAST(" + expr + " AS TEXT) AS label, COUNT(*) AS total" +
		factJoins + w.String() +
		"\nGROUP BY 1\nORDER BY " + order
	return sqlQuery{Text: text, Args: w.args, TimeLevel: timeLevel}, nil
}

// buildFeedQuery selects individual hotspots for the feed.
func buildFeedQuery(q domain.QuerySpec, limit int) (sqlQuery, error) {
	w, err := buildWhere(q)
	if err != nil {
		return sqlQuery{}, err
	}

	text := `SELECT f.latitude, f.longitude,
       LOWER(c.confidence_class) AS confidence,
       s.satellite_name AS satellite,
       f.acquired_at,
       COALESCE(l.island_name, '') AS pulau,
       COALESCE(l.province_name, '') AS provinsi,
       COALESCE(l.city_name, '') AS kab_kota,
       COALESCE(l.district_name, '') AS kecamatan,
       COALESCE(l.subdistrict_name, '') AS desa` +
		factJoins + w.String() +
		"\nORDER BY f.acquired_at DESC"
	args := w.args
	if limit > 0 {
		args = append(args, limit)
		text += "\nLIMIT $" + strconv.Itoa(len(args))
	}
	return sqlQuery{Text: text, Args: args}, nil
}

func groupLocationLevel(q domain.QuerySpec) domain.LocationLevel {
	depth := q.Depth()
	if depth >= domain.LocationLevelCount {
		return domain.LevelVillage
	}
	return domain.LocationLevel(depth)
}

func groupTimeLevel(s domain.TimeFilterState) domain.TimeLevel {
	deepest, ok := s.Deepest()
	if !ok {
		return domain.TimeYear
	}
	if next, ok := deepest.Next(); ok {
		return next
	}
	return deepest
}

// timeKey converts a level value to the numeric key stored in dim_period.
// Weekdays follow EXTRACT(DOW): Sunday is 0.
func timeKey(l domain.TimeLevel, v string) (int, bool) {
	v = l.Canonical(v)
	if v == "" {
		return 0, false
	}
	switch l {
	case domain.TimeYear, domain.TimeSemester:
		n, err := strconv.Atoi(v)
		return n, err == nil
	case domain.TimeQuarter:
		n, err := strconv.Atoi(strings.TrimPrefix(v, "Q"))
		return n, err == nil
	case domain.TimeMonth:
		return indexOf(domain.MonthNames, v) + 1, true
	case domain.TimeDay:
		return indexOf(domain.DayNames, v), true
	}
	return 0, false
}

// timeLabel is the inverse of timeKey.
func timeLabel(l domain.TimeLevel, key string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return "", false
	}
	switch l {
	case domain.TimeYear, domain.TimeSemester:
		return strconv.Itoa(n), true
	case domain.TimeQuarter:
		return fmt.Sprintf("Q%d", n), n >= 1 && n <= 4
	case domain.TimeMonth:
		if n < 1 || n > len(domain.MonthNames) {
			return "", false
		}
		return domain.MonthNames[n-1], true
	case domain.TimeDay:
		if n < 0 || n >= len(domain.DayNames) {
			return "", false
		}
		return domain.DayNames[n], true
	}
	return "", false
}

func indexOf(values []string, v string) int {
	for i, candidate := range values {
		if candidate == v {
			return i
		}
	}
	return -1
}

// splitList reads "a,b" multi-value filters.
func splitList(s string, fold func(string) string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, fold(part))
		}
	}
	return out
}

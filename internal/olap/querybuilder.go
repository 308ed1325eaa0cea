// Package olap - движок drill-down: построение запросов, каскадный фильтр
// времени, дерево агрегатов, нормализация имён, пороги и синхронизация карты.
package olap

import (
	"strings"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/pkg/errors"
)

// BuildQuery builds the query for dim scoped to a drill path (one label per
// fixed location level, coarsest first) and the active global filters.
func BuildQuery(dim domain.Dimension, path []string, filters domain.Filters, point string) (domain.QuerySpec, error) {
	if !dim.Valid() {
		return domain.QuerySpec{}, errors.ErrInvalidHierarchyRequest.WithMessage("unknown dimension %q", dim)
	}
	if len(path) > domain.LocationLevelCount {
		return domain.QuerySpec{}, errors.ErrInvalidHierarchyRequest.WithMessage("drill path deeper than %d levels", domain.LocationLevelCount)
	}

	q := domain.QuerySpec{
		Dimension:  dim,
		Confidence: strings.TrimSpace(filters.Confidence),
		Satellite:  strings.TrimSpace(filters.Satellite),
		Point:      strings.TrimSpace(point),
	}
	for i, label := range path {
		label = strings.TrimSpace(label)
		if label == "" {
			return domain.QuerySpec{}, errors.ErrInvalidHierarchyRequest.WithMessage(
				"empty label at level %s", domain.LocationLevel(i).Key())
		}
		q.Location[i] = label
	}

	state, err := canonicalTime(filters.Time)
	if err != nil {
		return domain.QuerySpec{}, err
	}
	q.Time = state

	if err := q.Validate(); err != nil {
		return domain.QuerySpec{}, errors.ErrInvalidHierarchyRequest.WithMessage("%s", err.Error())
	}
	return q, nil
}

// BuildTimeOptionsQuery builds the time-dimension query listing the options of
// level. Every coarser time level must already be chosen; finer levels of
// state are ignored. Confidence and satellite are not part of an options query.
func BuildTimeOptionsQuery(level domain.TimeLevel, path []string, state domain.TimeFilterState) (domain.QuerySpec, error) {
	if !level.Valid() {
		return domain.QuerySpec{}, errors.ErrInvalidHierarchyRequest.WithMessage("unknown time level %d", int(level))
	}
	for l := domain.TimeYear; l < level; l++ {
		if strings.TrimSpace(state.Get(l)) == "" {
			return domain.QuerySpec{}, errors.ErrInvalidHierarchyRequest.WithMessage(
				"options for %s need %s to be set", level.Key(), l.Key())
		}
	}
	return BuildQuery(domain.DimensionTime, path, domain.Filters{Time: state.Clear(level)}, "")
}

// canonicalTime trims values and rewrites enumerated ones to their canonical
// spelling; a value outside the level's set is passed through unchanged so
// the upstream service decides.
func canonicalTime(s domain.TimeFilterState) (domain.TimeFilterState, error) {
	var out domain.TimeFilterState
	for _, l := range domain.TimeLevels() {
		v := strings.TrimSpace(s.Get(l))
		if v == "" {
			continue
		}
		if c := l.Canonical(v); c != "" {
			v = c
		}
		out = out.With(l, v)
	}
	if err := out.Validate(); err != nil {
		return domain.TimeFilterState{}, errors.ErrInvalidHierarchyRequest.WithMessage("%s", err.Error())
	}
	return out, nil
}

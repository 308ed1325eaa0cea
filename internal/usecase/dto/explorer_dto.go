package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/olap"
)

// FiltersRequest - глобальные фильтры куба в теле запроса
type FiltersRequest struct {
	Confidence string `json:"confidence,omitempty" query:"confidence" validate:"omitempty,max=64"`
	Satellite  string `json:"satelite,omitempty" query:"satelite" validate:"omitempty,max=64"`
	Tahun      string `json:"tahun,omitempty" query:"tahun" validate:"year"`
	Semester   string `json:"semester,omitempty" query:"semester" validate:"omitempty,oneof=1 2"`
	Kuartal    string `json:"kuartal,omitempty" query:"kuartal" validate:"omitempty,max=2"`
	Bulan      string `json:"bulan,omitempty" query:"bulan" validate:"omitempty,max=16"`
	Hari       string `json:"hari,omitempty" query:"hari" validate:"omitempty,max=16"`
}

// ToFilters converts the request into domain filters.
func (r FiltersRequest) ToFilters() domain.Filters {
	return domain.Filters{
		Confidence: r.Confidence,
		Satellite:  r.Satellite,
		Time: domain.TimeFilterState{
			Year:     r.Tahun,
			Semester: r.Semester,
			Quarter:  r.Kuartal,
			Month:    r.Bulan,
			Day:      r.Hari,
		},
	}
}

// CreateSessionRequest - создание сессии обозревателя
type CreateSessionRequest struct {
	Filters FiltersRequest `json:"filters"`
	// Path раскрывает узлы по названиям сразу после загрузки корня
	Path []string `json:"path,omitempty" validate:"omitempty,max=5,dive,min=1"`
}

// OpenTimeRequest - открыть выпадающий список уровня времени
type OpenTimeRequest struct {
	Level string `json:"level" validate:"required,time_level"`
	// Node - узел дерева, ограничивающий варианты; 0 - вся Индонезия
	Node uint64 `json:"node,omitempty"`
}

// SetTimeRequest - выбор значения уровня; пустая строка означает "все"
type SetTimeRequest struct {
	Value string `json:"value" validate:"max=16"`
}

// SessionResponse - состояние сессии
type SessionResponse struct {
	ID         uuid.UUID          `json:"id"`
	Generation uint64             `json:"generation"`
	Filters    domain.Filters     `json:"filters"`
	Focus      domain.NodeID      `json:"focus"`
	Tree       []domain.DrillNode `json:"tree"`
	Time       TimeFilterResponse `json:"time"`
	ExpiresAt  time.Time          `json:"expires_at"`
}

// ToggleResponse - результат раскрытия/сворачивания узла.
// Stale: дерево перестроено, пока узел загружался; Node пуст, Tree содержит текущий снимок.
type ToggleResponse struct {
	Node       domain.DrillNode   `json:"node"`
	Focus      domain.NodeID      `json:"focus"`
	Generation uint64             `json:"generation"`
	Stale      bool               `json:"stale,omitempty"`
	Tree       []domain.DrillNode `json:"tree,omitempty"`
}

// MapResponse - всё для перерисовки карты
type MapResponse struct {
	View       domain.MapView   `json:"view"`
	LatestDate string           `json:"latest_date,omitempty"`
	DateCounts map[string]int64 `json:"date_counts,omitempty"`
}

// TimeFilterResponse - состояние каскадного фильтра времени
type TimeFilterResponse struct {
	Scope []string               `json:"scope"`
	Slots []olap.Slot            `json:"slots"`
	State domain.TimeFilterState `json:"state"`
}

// DimensionOptionsResponse - варианты для фильтров confidence / satelite
type DimensionOptionsResponse struct {
	Dimension domain.Dimension   `json:"dimension"`
	Options   []domain.CountPair `json:"options"`
}

// DimensionQueryResponse - ответ /api/query/{dimension}: строки [label, count]
// либо варианты времени
type DimensionQueryResponse struct {
	Pairs   [][]interface{}     `json:"-"`
	Options []domain.TimeOption `json:"-"`
}

// Body returns the value written as the response body.
func (r *DimensionQueryResponse) Body() interface{} {
	if r.Options != nil {
		return r.Options
	}
	if r.Pairs == nil {
		return [][]interface{}{}
	}
	return r.Pairs
}

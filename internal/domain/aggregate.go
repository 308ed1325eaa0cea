package domain

// AggregateMap - нормализованное имя полигона → количество hotspot.
// Пересчитывается при каждом изменении уровня, фильтров или потока; не хранится.
type AggregateMap map[string]int64

// Total sums all counts.
func (m AggregateMap) Total() int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// Positive returns the counts greater than zero.
func (m AggregateMap) Positive() []int64 {
	values := make([]int64, 0, len(m))
	for _, v := range m {
		if v > 0 {
			values = append(values, v)
		}
	}
	return values
}

// Bucket - класс раскраски хороплета
type Bucket string

const (
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
)

// Thresholds - две границы, делящие значения на три класса
type Thresholds struct {
	Min float64 `json:"min"`
	T1  float64 `json:"t1"`
	T2  float64 `json:"t2"`
}

// LegendEntry - строка легенды карты
type LegendEntry struct {
	Bucket Bucket `json:"bucket"`
	Color  string `json:"color"`
	Label  string `json:"label"`
}

// MapFeature - видимый полигон с посчитанным значением
type MapFeature struct {
	Name        string            `json:"name"`
	Key         string            `json:"key"`
	Count       int64             `json:"count"`
	Bucket      Bucket            `json:"bucket"`
	Color       string            `json:"color"`
	Highlighted bool              `json:"highlighted"`
	Properties  map[string]string `json:"properties,omitempty"`
	Centroid    *Point            `json:"centroid,omitempty"`
}

// MapView - всё, что нужно внешнему виджету карты для перерисовки
type MapView struct {
	Level      LocationLevel `json:"level"`
	Path       []string      `json:"path"`
	Zoom       int           `json:"zoom"`
	Center     Point         `json:"center"`
	Aggregate  AggregateMap  `json:"aggregate"`
	Thresholds Thresholds    `json:"thresholds"`
	Legend     []LegendEntry `json:"legend"`
	Features   []MapFeature  `json:"features"`
	Highlight  string        `json:"highlight,omitempty"`
	Source     string        `json:"source"`
}

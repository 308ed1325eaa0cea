package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hotspot-olap/internal/domain"
)

// MockDimensionRepository is a mock of DimensionRepository
type MockDimensionRepository struct {
	mock.Mock
}

func (m *MockDimensionRepository) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountPair), args.Error(1)
}

func (m *MockDimensionRepository) QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeOption), args.Error(1)
}

// MockHotspotRepository is a mock of HotspotRepository
type MockHotspotRepository struct {
	mock.Mock
}

func (m *MockHotspotRepository) GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HotspotFeature), args.Error(1)
}

// MockBoundaryRepository is a mock of BoundaryRepository
type MockBoundaryRepository struct {
	mock.Mock
}

func (m *MockBoundaryRepository) Load(ctx context.Context) (domain.BoundarySet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.BoundarySet), args.Error(1)
}

func (m *MockBoundaryRepository) Features(ctx context.Context, level domain.LocationLevel) ([]domain.PolygonFeature, error) {
	args := m.Called(ctx, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PolygonFeature), args.Error(1)
}

// MockWarehouseRepository is a mock of WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CountPair), args.Error(1)
}

func (m *MockWarehouseRepository) QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeOption), args.Error(1)
}

func (m *MockWarehouseRepository) GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HotspotFeature), args.Error(1)
}

func (m *MockWarehouseRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// pathIs matches a location query by its drill path.
func pathIs(labels ...string) interface{} {
	return mock.MatchedBy(func(q domain.QuerySpec) bool {
		if q.Dimension != domain.DimensionLocation {
			return false
		}
		path := q.LocationPath()
		if len(path) != len(labels) {
			return false
		}
		for i := range labels {
			if path[i] != labels[i] {
				return false
			}
		}
		return true
	})
}

// yearIs matches a query by its year filter.
func yearIs(year string) interface{} {
	return mock.MatchedBy(func(q domain.QuerySpec) bool {
		return q.Time.Year == year
	})
}

func pairs(kv ...interface{}) []domain.CountPair {
	out := make([]domain.CountPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, domain.CountPair{Label: kv[i].(string), Count: int64(kv[i+1].(int))})
	}
	return out
}

func options(values ...string) []domain.TimeOption {
	out := make([]domain.TimeOption, 0, len(values))
	for _, v := range values {
		out = append(out, domain.TimeOption{Value: v, Label: v})
	}
	return out
}

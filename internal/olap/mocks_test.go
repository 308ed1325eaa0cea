package olap_test

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

// pathIs matches a QuerySpec by its location path.
func pathIs(labels ...string) interface{} {
	return mock.MatchedBy(func(q domain.QuerySpec) bool {
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

func pairs(kv ...interface{}) []domain.CountPair {
	out := make([]domain.CountPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, domain.CountPair{Label: kv[i].(string), Count: int64(kv[i+1].(int))})
	}
	return out
}

package repository

import (
	"context"

	"github.com/hotspot-olap/internal/domain"
)

// DimensionRepository - сервис измерений (GET /api/query/{dimension})
type DimensionRepository interface {
	// QueryPairs возвращает пары [label, count] для location, confidence и satelite
	QueryPairs(ctx context.Context, q domain.QuerySpec) ([]domain.CountPair, error)

	// QueryTimeOptions возвращает допустимые значения следующего временного уровня
	QueryTimeOptions(ctx context.Context, q domain.QuerySpec) ([]domain.TimeOption, error)
}

package repository

import (
	"context"

	"github.com/hotspot-olap/internal/domain"
)

// BoundaryRepository - статические полигоны пяти уровней
type BoundaryRepository interface {
	// Load читает все пять наборов; повторный вызов возвращает уже загруженное
	Load(ctx context.Context) (domain.BoundarySet, error)

	// Features возвращает полигоны уровня
	Features(ctx context.Context, level domain.LocationLevel) ([]domain.PolygonFeature, error)
}

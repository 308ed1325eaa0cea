package repository

import (
	"context"

	"github.com/hotspot-olap/internal/domain"
)

// HotspotRepository - поток точек hotspot (GET /api/hotspot)
type HotspotRepository interface {
	// GetHotspots возвращает точки, отфильтрованные по непустым полям запроса
	GetHotspots(ctx context.Context, q domain.QuerySpec) ([]domain.HotspotFeature, error)
}

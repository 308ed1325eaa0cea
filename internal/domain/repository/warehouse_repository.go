package repository

import (
	"context"
)

// WarehouseRepository - эталонная реализация сервиса измерений и потока поверх Postgres
type WarehouseRepository interface {
	DimensionRepository
	HotspotRepository

	// Ping проверяет соединение с хранилищем
	Ping(ctx context.Context) error
}

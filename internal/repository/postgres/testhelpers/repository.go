package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewWarehouseRepositoryForTest creates a warehouse repository over the test database
func NewWarehouseRepositoryForTest(db *sqlx.DB, logger *zap.Logger, feedLimit int) repository.WarehouseRepository {
	return postgres.NewWarehouseRepository(NewDBForTest(db, logger), feedLimit)
}

package main

// @title Hotspot OLAP Explorer API
// @version 1.0.0
// @description Drill-down по иерархии местоположений, каскадный фильтр времени и синхронизация карты для данных о горячих точках (hotspot) лесных пожаров.
// @description
// @description Основные возможности:
// @description - Сессии обозревателя: дерево pulau → provinsi → kota → kecamatan → desa
// @description - Каскадный фильтр tahun → semester → kuartal → bulan → hari
// @description - Агрегаты, пороги и легенда для хороплета активного уровня
// @description - Эталонный сервис измерений поверх хранилища (star schema)

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/hotspot-olap/docs"
	"github.com/hotspot-olap/internal/config"
	httpDelivery "github.com/hotspot-olap/internal/delivery/http"
	"github.com/hotspot-olap/internal/delivery/http/handler"
	"github.com/hotspot-olap/internal/domain"
	"github.com/hotspot-olap/internal/domain/repository"
	"github.com/hotspot-olap/internal/infrastructure/olapapi"
	"github.com/hotspot-olap/internal/olap"
	"github.com/hotspot-olap/internal/pkg/logger"
	"github.com/hotspot-olap/internal/repository/boundary"
	"github.com/hotspot-olap/internal/repository/cache"
	"github.com/hotspot-olap/internal/repository/postgres"
	"github.com/hotspot-olap/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.NewService(cfg.Log.Level, "hotspot-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Hotspot OLAP Explorer")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("olap_api", cfg.OlapAPI.BaseURL),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("warehouse", cfg.Database.Enabled),
	)

	checks := make(map[string]httpDelivery.HealthCheck)

	// 3. Dimension service client
	client := olapapi.NewClient(&cfg.OlapAPI, log)
	var (
		dimensions repository.DimensionRepository = client
		hotspots   repository.HotspotRepository   = client
	)

	// 4. Redis query cache (optional)
	var redisClient *cache.Redis
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cached := cache.NewOlapRepository(
			client,
			client,
			cache.NewCacheRepository(redisClient),
			cfg.Cache.QueryTTL,
			cfg.Cache.FeedTTL,
			log,
		)
		dimensions, hotspots = cached, cached
		checks["redis"] = redisClient.Health
	}

	// 5. Warehouse (optional)
	var (
		db          *postgres.DB
		warehouseUC *usecase.QueryUseCase
	)
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		warehouse := postgres.NewWarehouseRepository(db, postgres.DefaultFeedLimit)
		warehouseUC = usecase.NewQueryUseCase(warehouse, log)
		checks["warehouse"] = warehouse.Ping
	}

	// 6. Boundaries and name normalizer
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	boundaries := boundary.NewRepository(&cfg.Boundary, log)
	set, err := boundaries.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load boundaries", zap.Error(err))
	}
	for _, level := range domain.LocationLevels() {
		log.Info("Boundary level loaded",
			zap.String("level", level.Key()),
			zap.Int("features", len(set.Features(level))))
	}

	normCfg, err := olap.LoadNormalizerConfig(cfg.Normalizer.AliasFile)
	if err != nil {
		log.Fatal("Failed to load alias file", zap.Error(err))
	}
	norm := olap.NewNormalizer(normCfg)

	// 7. Initialize Use Cases
	explorerUC := usecase.NewExplorerUseCase(
		dimensions,
		hotspots,
		boundaries,
		norm,
		log,
		usecase.ExplorerOptions{
			SessionTTL:       cfg.Explorer.SessionTTL,
			CollapseSiblings: cfg.Explorer.CollapseSiblings,
			ShowEmpty:        cfg.Explorer.ShowEmpty,
		},
	)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go explorerUC.RunJanitor(janitorCtx)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	explorerHandler := handler.NewExplorerHandler(explorerUC, log)
	var queryHandler *handler.QueryHandler
	if warehouseUC != nil {
		queryHandler = handler.NewQueryHandler(warehouseUC, log)
	}

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, explorerHandler, queryHandler, checks)

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	stopJanitor()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL", zap.Error(err))
		}
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}

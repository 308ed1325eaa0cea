package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/hotspot-olap/internal/config"
	"github.com/hotspot-olap/internal/delivery/http/handler"
	"github.com/hotspot-olap/internal/delivery/http/middleware"
	"github.com/hotspot-olap/internal/pkg/errors"
	"github.com/hotspot-olap/internal/pkg/utils"
)

// HealthCheck - проверка одной зависимости для /health
type HealthCheck func(ctx context.Context) error

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	explorerHandler *handler.ExplorerHandler
	queryHandler    *handler.QueryHandler
	checks          map[string]HealthCheck
}

// NewServer - создание нового HTTP сервера. queryHandler может быть nil,
// тогда маршруты хранилища не регистрируются.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	explorerHandler *handler.ExplorerHandler,
	queryHandler *handler.QueryHandler,
	checks map[string]HealthCheck,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Hotspot OLAP Explorer",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		explorerHandler: explorerHandler,
		queryHandler:    queryHandler,
		checks:          checks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the fiber app (tests).
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.health)

	// Explorer sessions
	explorer := api.Group("/explorer")
	explorer.Get("/dimensions/:dimension", s.explorerHandler.DimensionOptions)

	sessions := explorer.Group("/sessions")
	sessions.Post("/", s.explorerHandler.CreateSession)
	sessions.Get("/:id", s.explorerHandler.GetSession)
	sessions.Delete("/:id", s.explorerHandler.DeleteSession)
	sessions.Put("/:id/filters", s.explorerHandler.ApplyFilters)
	sessions.Post("/:id/nodes/:node/toggle", s.explorerHandler.Toggle)
	sessions.Get("/:id/map", s.explorerHandler.MapView)

	// Cascading time filter
	sessions.Get("/:id/time", s.explorerHandler.GetTime)
	sessions.Post("/:id/time/open", s.explorerHandler.OpenTime)
	sessions.Post("/:id/time/submit", s.explorerHandler.SubmitTime)
	sessions.Put("/:id/time/:level", s.explorerHandler.SetTime)

	// Warehouse - тот же контракт, что у внешнего сервиса измерений
	if s.queryHandler != nil {
		s.app.Get("/api/query/:dimension", s.queryHandler.Dimension)
		s.app.Get("/api/hotspot", s.queryHandler.Hotspots)
	}
}

// health - статус сервиса и зависимостей
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(fiber.Map, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"time":         time.Now(),
		"dependencies": deps,
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		if appErr, ok := errors.As(err); ok {
			return utils.SendError(c, appErr)
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}

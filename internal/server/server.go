// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"visage/internal/cache"
	"visage/internal/config"
	"visage/internal/database"
	"visage/internal/middleware"
	"visage/internal/models"
	"visage/internal/observability"
	"visage/internal/repository"
	"visage/internal/service"
	"visage/internal/storage"
	"visage/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides the HTTP handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	codec          *token.Codec
	rateLimiter    *middleware.RateLimiter
	userRepo       repository.UserRepository
	pictureRepo    repository.PictureRepository
	blobs          storage.BlobStore
	authService    *service.AuthService
	userService    *service.UserService
	pictureService *service.PictureService
}

// NewServer creates a server instance, establishing the database and Redis
// connections from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server from already-initialized dependencies.
// Tests use this with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenExpireMinutes)
	if err != nil {
		return nil, fmt.Errorf("token codec setup failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	pictureRepo := repository.NewPictureRepository(db)
	blobs := storage.NewDiskStore(cfg.UploadDir)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.NewHTTPMetrics("visage-api"),
		codec:          codec,
		rateLimiter:    middleware.NewRateLimiter(time.Second),
		userRepo:       userRepo,
		pictureRepo:    pictureRepo,
		blobs:          blobs,
	}
	server.authService = service.NewAuthService(userRepo, codec)
	server.userService = service.NewUserService(userRepo, pictureRepo)
	server.pictureService = service.NewPictureService(pictureRepo, blobs)

	return server, nil
}

// SetupMiddleware configures the request pipeline. The rate limiter runs
// before any route handler so throttled requests never reach a service.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.Tracing())

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	app.Use(middleware.ProcessTime())

	// CORS before the limiter so browser clients still get CORS headers on
	// 429 responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(s.rateLimiter.Handler())
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	app.Static("/media", s.config.UploadDir)

	v1 := app.Group("/v1")
	v1.Post("/login", s.Login)

	users := v1.Group("/users")
	users.Post("/", s.CreateUser)

	auth := middleware.AuthRequired(s.codec)
	users.Put("/username", auth, s.UpdateUsername)
	users.Put("/password", auth, s.UpdatePassword)
	users.Delete("/", auth, s.DeleteUser)

	users.Post("/profile-pictures", auth, s.UploadProfilePicture)
	users.Delete("/profile-pictures", auth, s.DeleteProfilePicture)
	users.Get("/profile-pictures/:id", s.GetProfilePicture)

	// Generic /:id route last so it cannot shadow /profile-pictures.
	users.Get("/:id", s.GetUser)
}

// HealthCheck reports process and dependency health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is an optional cache; absence does not degrade readiness.
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the Fiber app and listens on the configured port.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Visage API",
		BodyLimit: 4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.Error("unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the server and closes its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}

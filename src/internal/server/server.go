package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/clipvault/clipvault/src/internal/auth"
	"github.com/clipvault/clipvault/src/internal/cache"
)

// Server represents the main application server
type Server struct {
	echo   *echo.Echo
	config *viper.Viper
	db     *gorm.DB
	cache  *cache.Manager
	auth   *auth.Service
}

// New creates a new server instance
func New(e *echo.Echo, cfg *viper.Viper, db *gorm.DB) *Server {
	cacheManager := cache.NewManager(cfg)

	tokenTTL := cfg.GetDuration("security.jwt.token_ttl")
	authService := auth.NewService(
		cfg.GetString("security.secret_key"),
		cfg.GetString("app.name"),
		tokenTTL,
	)

	s := &Server{
		echo:   e,
		config: cfg,
		db:     db,
		cache:  cacheManager,
		auth:   authService,
	}

	e.Validator = NewEchoValidator()

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start starts the server
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown stops the server gracefully and releases the cache
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.cache.Close()
	return err
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}",` +
			`"uri":"${uri}","status":${status},"latency":"${latency_human}"}` + "\n",
	}))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.GetStringSlice("cors.allowed_origins"),
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

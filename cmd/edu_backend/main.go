package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/edu_center_app/internal/app"
	"github.com/SscSPs/edu_center_app/internal/dto"
	"github.com/SscSPs/edu_center_app/internal/handlers"
	"github.com/SscSPs/edu_center_app/internal/middleware"
	"github.com/SscSPs/edu_center_app/internal/platform/config"
	"github.com/SscSPs/edu_center_app/internal/platform/i18n"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title Edu Center Journal API
// @version 1.0
// @description Weekly journal generation and progress aggregation for education center groups.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	infra, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize connections", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infra.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dto.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	localizer := i18n.NewLocalizer(cfg.DefaultLocale)
	services := infra.Services(cfg, localizer)

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware: logging first so the rest can use the request logger
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(corsConfig(cfg)),
		middleware.RateLimit(rateLimiter),
		middleware.LocaleMiddleware(localizer),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, services)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders: []string{"Content-Language"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return c
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/corvusHold/outreach/internal/app"
	"github.com/corvusHold/outreach/internal/auth"
	"github.com/corvusHold/outreach/internal/companyusers"
	"github.com/corvusHold/outreach/internal/config"
	"github.com/corvusHold/outreach/internal/configurations"
	"github.com/corvusHold/outreach/internal/filters"
	"github.com/corvusHold/outreach/internal/interactions"
	"github.com/corvusHold/outreach/internal/logger"
	"github.com/corvusHold/outreach/internal/metrics"
	"github.com/corvusHold/outreach/internal/platform/envelope"
	"github.com/corvusHold/outreach/internal/platform/validation"
	"github.com/corvusHold/outreach/internal/settings"
	"github.com/corvusHold/outreach/internal/tenants"
	"github.com/corvusHold/outreach/internal/version"
	"github.com/corvusHold/outreach/internal/webhooks"
)

// @title           Outreach API
// @version         1.0
// @description     Multi-tenant audience segmentation and bulk email outreach.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

func main() {
	_ = godotenv.Load()
	if handleCLICommand(os.Args[1:]) {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv)
	log.Info().Str("addr", cfg.AppAddr).Str("version", version.String()).Msg("starting api server")

	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid DATABASE_URL")
	}
	pgPool, err := pgxpool.NewWithConfig(context.Background(), pgCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to create pg pool")
	}
	defer pgPool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer redisClient.Close()
	}

	c, err := app.New(context.Background(), cfg, log, pgPool, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to build container")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.HTTPErrorHandler = envelope.ErrorHandler(log)
	e.Validator = validation.New()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(metrics.HTTPMiddleware())

	v1 := e.Group("/api/v1")
	auth.RegisterV1(v1, c)
	tenants.RegisterV1(v1, c)
	settings.RegisterV1(v1, c)
	companyusers.RegisterV1(v1, c)
	filters.RegisterV1(v1, c)
	configurations.RegisterV1(v1, c)
	interactions.RegisterV1(v1, c)
	webhooks.RegisterV1(v1, c)

	e.GET("/healthz", func(ec echo.Context) error {
		ctx, cancel := context.WithTimeout(ec.Request().Context(), 500*time.Millisecond)
		defer cancel()

		dbStatus := "ok"
		if err := metrics.Probe(ctx, "postgres", pgPool.Ping); err != nil {
			dbStatus = "down"
		}
		cacheStatus := "disabled"
		if redisClient != nil {
			cacheStatus = "ok"
			if err := metrics.Probe(ctx, "redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }); err != nil {
				cacheStatus = "down"
			}
		}
		return ec.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"version": version.String(),
			"time":    time.Now().UTC().Format(time.RFC3339),
			"db":      dbStatus,
			"cache":   cacheStatus,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	// Detached sends finish before the pool closes.
	c.Close()
	log.Info().Msg("server stopped")
}

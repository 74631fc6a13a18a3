// Package app builds the dependencies shared by every feature module.
package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	esvc "github.com/corvusHold/outreach/internal/email/service"
	evdomain "github.com/corvusHold/outreach/internal/events/domain"
	evsvc "github.com/corvusHold/outreach/internal/events/service"
	"github.com/corvusHold/outreach/internal/logger"
	rl "github.com/corvusHold/outreach/internal/platform/ratelimit"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
	srepo "github.com/corvusHold/outreach/internal/settings/repository"
	ssvc "github.com/corvusHold/outreach/internal/settings/service"
)

// Container holds the process-wide collaborators handed to each module factory.
type Container struct {
	Cfg   config.Config
	Log   zerolog.Logger
	DB    *pgxpool.Pool
	Redis *redis.Client

	SettingsRepo sdomain.Repository
	Settings     sdomain.Service

	Publisher  evdomain.Publisher
	RateLimit  rl.Store
	JWT        echo.MiddlewareFunc
	Email      edomain.Sender
	Identities edomain.IdentityProvider
	Dispatcher *esvc.Dispatcher
}

// New wires the shared stack. rdb may be nil, in which case rate limits are process-local.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client) (*Container, error) {
	sr := srepo.New(db)
	settings := ssvc.New(sr)

	ses, err := esvc.NewSES(ctx, cfg)
	if err != nil {
		return nil, err
	}

	dispatcher := esvc.NewDispatcher(settings, cfg)
	dispatcher.SetLogger(logger.Component(log, "dispatcher"))

	var store rl.Store
	if rdb != nil {
		store = rl.NewRedisStore(rdb)
	} else {
		store = rl.NewMemoryStore()
	}

	return &Container{
		Cfg:          cfg,
		Log:          log,
		DB:           db,
		Redis:        rdb,
		SettingsRepo: sr,
		Settings:     settings,
		Publisher:    evsvc.NewLogger(log),
		RateLimit:    store,
		JWT:          amw.NewJWT(cfg),
		Email:        esvc.NewRouter(settings, cfg, ses),
		Identities:   esvc.NewCachedIdentities(ses, cfg.IdentityCacheTTL),
		Dispatcher:   dispatcher,
	}, nil
}

// Logger returns a child logger for a module.
func (c *Container) Logger(component string) zerolog.Logger {
	return logger.Component(c.Log, component)
}

// Close waits for detached provider calls to finish.
func (c *Container) Close() {
	if c.Dispatcher != nil {
		c.Dispatcher.Wait()
	}
}

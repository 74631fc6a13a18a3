package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	"github.com/corvusHold/outreach/internal/platform/workerpool"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

var (
	_ edomain.Dispatcher      = (*Dispatcher)(nil)
	_ edomain.BatchDispatcher = (*Dispatcher)(nil)
)

// Dispatcher runs provider side effects according to email.dispatch_mode.
// In async mode the callback runs on its own goroutine with a context detached
// from the request; failures are logged and never reach the caller.
type Dispatcher struct {
	cfg      config.Config
	settings sdomain.Service
	log      zerolog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(settings sdomain.Service, cfg config.Config) *Dispatcher {
	return &Dispatcher{cfg: cfg, settings: settings, log: zerolog.Nop(), timeout: 30 * time.Second}
}

func (d *Dispatcher) SetLogger(l zerolog.Logger) { d.log = l }

// Mode resolves the dispatch mode for a tenant.
func (d *Dispatcher) Mode(ctx context.Context, tenantID uuid.UUID) string {
	mode, _ := d.settings.GetString(ctx, sdomain.KeyEmailDispatchMode, &tenantID, d.cfg.EmailDispatchMode)
	if strings.EqualFold(mode, config.DispatchSync) {
		return config.DispatchSync
	}
	return config.DispatchAsync
}

func (d *Dispatcher) Dispatch(ctx context.Context, tenantID uuid.UUID, op string, fn func(ctx context.Context) error) error {
	if d.Mode(ctx, tenantID) == config.DispatchSync {
		return fn(ctx)
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		runCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		if err := fn(runCtx); err != nil {
			d.log.Warn().Err(err).Str("op", op).Str("tenant_id", tenantID.String()).Msg("dispatched operation failed")
		}
	}()
	return nil
}

// DispatchEach calls fn for every index in [0, n) with at most limit calls in flight.
// In sync mode it blocks and returns every failure joined. In async mode the whole batch
// runs on one detached goroutine, still bounded by limit, each call under its own timeout.
func (d *Dispatcher) DispatchEach(ctx context.Context, tenantID uuid.UUID, op string, n, limit int, fn func(ctx context.Context, i int) error) (bool, error) {
	if d.Mode(ctx, tenantID) == config.DispatchSync {
		return false, each(ctx, n, limit, fn)
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := each(detached, n, limit, func(ctx context.Context, i int) error {
			runCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			return fn(runCtx, i)
		})
		if err != nil {
			d.log.Warn().Err(err).Str("op", op).Str("tenant_id", tenantID.String()).Int("items", n).Msg("dispatched batch partially failed")
		}
	}()
	return true, nil
}

func each(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	pool := workerpool.New(limit)
	for i := range n {
		pool.Go(func() error { return fn(ctx, i) })
	}
	return pool.Wait()
}

// Wait blocks until every async operation has finished. Used on shutdown and in tests.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Package workerpool bounds the fan-out of per-recipient work.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks with at most limit in flight. A failing task never cancels its
// siblings: every error is kept and Wait returns them joined.
type Pool struct {
	g    errgroup.Group
	mu   sync.Mutex
	errs []error
	runs int
}

func New(limit int) *Pool {
	if limit <= 0 {
		limit = 1
	}
	p := &Pool{}
	p.g.SetLimit(limit)
	return p
}

// Go schedules task, blocking while the pool is full.
func (p *Pool) Go(task func() error) {
	p.g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("workerpool: task panicked: %v", r)
			}
			p.mu.Lock()
			p.runs++
			if err != nil {
				p.errs = append(p.errs, err)
			}
			p.mu.Unlock()
		}()
		return task()
	})
}

// Wait blocks until every scheduled task returned.
func (p *Pool) Wait() error {
	_ = p.g.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.errs...)
}

// Failed returns how many tasks have failed so far.
func (p *Pool) Failed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.errs)
}

// Completed returns how many tasks have returned so far.
func (p *Pool) Completed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs
}

// Map applies fn to every item with at most limit calls in flight and returns the results
// in input order. The first error cancels ctx for the remaining calls and is returned.
func Map[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if limit <= 0 {
		limit = 1
	}
	out := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, it := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, it)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

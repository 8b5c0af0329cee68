package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bookly/models"

	"go.uber.org/zap"
)

// Hook runs after a booking has been persisted. A failing hook never
// affects the booking itself.
type Hook interface {
	Name() string
	AfterCommit(ctx context.Context, booking models.Booking) error
}

// Dispatcher hands a committed booking to the configured hooks.
type Dispatcher interface {
	Dispatch(ctx context.Context, booking models.Booking)
}

// NopDispatcher drops every booking.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, models.Booking) {}

// Registry indexes hooks by name for the queue worker.
type Registry map[string]Hook

func NewRegistry(hooks ...Hook) Registry {
	r := make(Registry, len(hooks))
	for _, h := range hooks {
		r[h.Name()] = h
	}
	return r
}

// Run executes the named hook.
func (r Registry) Run(ctx context.Context, name string, booking models.Booking) error {
	h, ok := r[name]
	if !ok {
		return fmt.Errorf("notification: unknown hook %q", name)
	}
	return h.AfterCommit(ctx, booking)
}

// RunAll executes every hook and joins their errors.
func RunAll(ctx context.Context, hooks []Hook, booking models.Booking) error {
	var errs []error
	for _, h := range hooks {
		if err := h.AfterCommit(ctx, booking); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// InlineDispatcher runs hooks in a background goroutine detached from the
// request context, logging failures.
type InlineDispatcher struct {
	hooks   []Hook
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewInlineDispatcher(logger *zap.Logger, timeout time.Duration, hooks ...Hook) *InlineDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &InlineDispatcher{hooks: hooks, timeout: timeout, logger: logger}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, booking models.Booking) {
	if len(d.hooks) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := RunAll(hookCtx, d.hooks, booking); err != nil {
			d.logger.Warn("post-commit hook failed",
				zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched run has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}

// Package engine runs registry, ledger and fractional operations as atomic
// store transactions.
//
// Each exported mutating method is one transaction: it loads the registry
// and the records it touches, applies the domain transition, writes
// everything back and commits. Any error rolls the whole operation back.
// Events are published only after a successful commit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/event"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/store"
)

var (
	// ErrNotInitialized indicates the store has no registry yet.
	ErrNotInitialized = errors.New("engine: registry not initialized")

	// ErrAlreadyInitialized indicates Init on a store that has a registry.
	ErrAlreadyInitialized = errors.New("engine: registry already initialized")
)

// Engine is the operation surface over a Store.
type Engine struct {
	store          store.Store
	bus            *event.Bus
	logger         *slog.Logger
	clock          func() time.Time
	salesOpenOnNew bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBus sets the event bus committed events are published on.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithSalesOpenOnCreate sets whether new packages start with sales open.
func WithSalesOpenOnCreate(open bool) Option {
	return func(e *Engine) {
		e.salesOpenOnNew = open
	}
}

// New creates an engine over s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:          s,
		logger:         slog.Default(),
		clock:          time.Now,
		salesOpenOnNew: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus(nil, e.logger)
	}
	return e
}

// Bus returns the event bus.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Close closes the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// op is the state of one running operation.
type op struct {
	tx     *store.Txn
	reg    *registry.Registry
	now    time.Time
	events []event.Event
	claims []*registry.Claim
}

func (o *op) emit(eventType event.EventType, data any) {
	o.events = append(o.events, event.NewEvent(eventType, data, o.now))
}

// claim obtains a registry claim that must be bound before the operation ends.
func (o *op) claim(nid id.ID, caller account.Address) (*registry.Claim, error) {
	c, err := o.reg.Claim(nid, caller)
	if err != nil {
		return nil, err
	}
	o.claims = append(o.claims, c)
	return c, nil
}

// settle fails the operation if any claim was left unbound.
func (o *op) settle() error {
	for _, c := range o.claims {
		if err := c.Settle(); err != nil {
			return err
		}
	}
	return nil
}

// update runs fn as one atomic operation.
func (e *Engine) update(ctx context.Context, name string, fn func(o *op) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := &op{now: e.clock().UTC()}
	err := e.store.Update(func(tx *store.Txn) error {
		reg, err := tx.Registry()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		o.tx, o.reg = tx, reg
		if err := fn(o); err != nil {
			return err
		}
		if err := o.settle(); err != nil {
			return err
		}
		return tx.PutRegistry(reg)
	})
	if err != nil {
		e.logFailure(name, err)
		return err
	}
	e.logger.Debug("operation committed", "op", name, "events", len(o.events))
	for _, evt := range o.events {
		e.bus.Publish(evt)
	}
	return nil
}

// view runs fn in a read-only transaction. Writes through o.tx fail.
func (e *Engine) view(ctx context.Context, fn func(o *op) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.View(func(tx *store.Txn) error {
		reg, err := tx.Registry()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotInitialized
			}
			return err
		}
		return fn(&op{tx: tx, reg: reg, now: e.clock().UTC()})
	})
}

func (e *Engine) logFailure(name string, err error) {
	reason := Reason(err)
	if reason == ReasonInternal {
		e.logger.Warn("operation failed", "op", name, "err", err)
		return
	}
	e.logger.Debug("operation rejected", "op", name, "reason", reason, "err", err)
}

// Init creates the registry administered by admin.
func (e *Engine) Init(ctx context.Context, admin account.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := e.store.Update(func(tx *store.Txn) error {
		if _, err := tx.Registry(); err == nil {
			return ErrAlreadyInitialized
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		reg, err := registry.New(admin)
		if err != nil {
			return err
		}
		return tx.PutRegistry(reg)
	})
	if err != nil {
		e.logFailure("init", err)
		return fmt.Errorf("engine: init: %w", err)
	}
	e.logger.Info("registry initialized", "admin", admin)
	return nil
}

package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/livefeed/logger"
)

// Registry manages component lifecycle with deterministic ordering:
// components start in registration order and stop in reverse.
type Registry struct {
	mu      sync.RWMutex
	log     *logger.Logger
	order   []Component
	started map[string]bool
}

// NewRegistry creates an empty registry. A nil logger disables registry
// logging.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		log:     log.WithComponent("registry"),
		started: make(map[string]bool),
	}
}

// Register adds a component. Register dependencies before their
// dependents; start order follows registration order.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	for _, existing := range r.order {
		if existing.Name() == name {
			return fmt.Errorf("component %s already registered", name)
		}
	}
	r.order = append(r.order, c)
	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component in registration order. The first
// failure aborts the startup; already started components stay up so the
// caller can StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.order {
		if err := c.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.started[c.Name()] = true
		r.log.Debug("component started", logger.Fields(logger.FieldComponent, c.Name()))
	}
	return nil
}

// StopAll stops started components in reverse registration order. All
// components are attempted; errors are collected.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.order[i]
		if !r.started[c.Name()] {
			continue
		}
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			r.log.Error("component stop failed", logger.ErrorFields(c.Name(), err))
		}
		r.started[c.Name()] = false
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// HealthAll returns the health of every registered component, in
// registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, c.Health(ctx))
	}
	return out
}

// Get returns a registered component by name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.order {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

package request

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type releaser interface {
	release()
}

type entry struct {
	manager releaser
	refs    int
}

// Registry shares managers between observers of the same identity.
type Registry struct {
	mu      sync.Mutex
	opts    []Option
	logger  *zap.Logger
	entries map[string]*entry
}

// NewRegistry returns an empty registry. opts are applied to every manager
// it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		opts:    opts,
		logger:  newOptions(opts).logger,
		entries: make(map[string]*entry),
	}
}

// Observe returns the manager for id, creating it on first use, and runs its
// Init. Every Observe must be paired with a Release.
func Observe[T any](ctx context.Context, r *Registry, id Identity, initial T) (*Manager[T], error) {
	key := id.Key()

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{manager: New(id, initial, r.opts...)}
		r.entries[key] = e
		r.logger.Debug("request manager created", zap.String("request", key))
	}
	m, typed := e.manager.(*Manager[T])
	if !typed {
		r.mu.Unlock()
		return nil, fmt.Errorf("request %s is already observed with data type %T", key, e.manager)
	}
	e.refs++
	r.mu.Unlock()

	m.Init(ctx)
	return m, nil
}

// Release drops one observation of id. The manager is torn down when the
// last observer releases it; a later Observe starts from a fresh state.
func (r *Registry) Release(id Identity) {
	key := id.Key()

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	r.mu.Unlock()

	e.manager.release()
	r.logger.Debug("request manager released", zap.String("request", key))
}

// Len returns the number of live managers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

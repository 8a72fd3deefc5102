package request

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"food-order-storefront/notify"
)

type options struct {
	doer   Doer
	logger *zap.Logger
}

type Option func(*options)

// WithDoer sets the network primitive. The default is an *http.Client with
// DefaultTimeout.
func WithDoer(doer Doer) Option {
	return func(o *options) {
		if doer != nil {
			o.doer = doer
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{doer: defaultDoer(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Manager runs requests for one identity and holds their State.
type Manager[T any] struct {
	mu         sync.Mutex
	id         Identity
	initial    T
	state      State[T]
	fetchedKey string
	released   bool
	listeners  map[int]func(State[T])
	nextID     int
	queue      notify.Queue[State[T]]

	doer   Doer
	logger *zap.Logger
}

// New returns an idle manager for id. Nothing is sent until Init or
// SendRequest is called.
func New[T any](id Identity, initial T, opts ...Option) *Manager[T] {
	o := newOptions(opts)
	return &Manager[T]{
		id:        id,
		initial:   initial,
		state:     Initial(initial),
		listeners: make(map[int]func(State[T])),
		doer:      o.doer,
		logger:    o.logger.With(zap.String("method", id.Shape.method()), zap.String("endpoint", id.Endpoint)),
	}
}

func (m *Manager[T]) Identity() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Init performs the automatic fetch. It sends at most one request per
// identity key, and only for GET shapes; later calls are no-ops.
func (m *Manager[T]) Init(ctx context.Context) {
	m.mu.Lock()
	key := m.id.Key()
	if m.released || !m.id.Shape.AutoFetch() || m.fetchedKey == key {
		m.mu.Unlock()
		return
	}
	m.fetchedKey = key
	m.mu.Unlock()

	m.logger.Debug("auto-fetch triggered")
	m.SendRequest(ctx, nil)
}

// SetIdentity replaces the identity and re-runs Init. A new request is only
// sent when the key changed.
func (m *Manager[T]) SetIdentity(ctx context.Context, id Identity) {
	m.mu.Lock()
	m.id = id
	m.mu.Unlock()
	m.Init(ctx)
}

// SendRequest sends body and returns the resulting state. Failures are
// recorded on the state rather than returned. Concurrent calls are not
// de-duplicated; the last to complete determines the final state.
func (m *Manager[T]) SendRequest(ctx context.Context, body any) State[T] {
	m.mu.Lock()
	id := m.id
	m.state = m.state.Begin()
	m.queue.Push(m.state, m.snapshotListenersLocked())
	m.mu.Unlock()
	m.queue.Flush()

	m.logger.Debug("request sent", zap.String("method", id.Shape.method()), zap.String("endpoint", id.Endpoint))
	data, decoded, err := fetch[T](ctx, m.doer, id, body)

	m.mu.Lock()
	if err != nil {
		m.state = m.state.Fail(Message(err))
	} else {
		if !decoded {
			data = m.initial
		}
		m.state = m.state.Succeed(data)
	}
	final := m.state
	m.queue.Push(final, m.snapshotListenersLocked())
	m.mu.Unlock()

	if err != nil {
		m.logger.Debug("request failed", zap.Error(err))
	} else {
		m.logger.Debug("request succeeded")
	}
	m.queue.Flush()
	return final
}

// ClearData returns the state to Idle with the initial data.
func (m *Manager[T]) ClearData() {
	m.mu.Lock()
	m.state = m.state.Reset(m.initial)
	m.queue.Push(m.state, m.snapshotListenersLocked())
	m.mu.Unlock()
	m.queue.Flush()
}

func (m *Manager[T]) Snapshot() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for state changes and returns a function that
// removes it. Listeners see the states in the order they were set.
func (m *Manager[T]) Subscribe(fn func(State[T])) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// release detaches all listeners and stops future automatic fetches.
func (m *Manager[T]) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released = true
	clear(m.listeners)
}

func (m *Manager[T]) snapshotListenersLocked() []func(State[T]) {
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(State[T]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	return fns
}

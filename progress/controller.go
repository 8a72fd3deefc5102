package progress

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"food-order-storefront/notify"
)

// Listener receives the snapshot after every state change, in transition
// order.
type Listener func(Snapshot)

// Controller is the session-scoped progress state machine.
type Controller struct {
	mu        sync.Mutex
	state     State
	gen       uint64
	listeners map[int]Listener
	nextID    int
	queue     notify.Queue[Snapshot]
	logger    *zap.Logger
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController returns a controller in the Closed state.
func NewController(opts ...Option) *Controller {
	c := &Controller{state: Closed, listeners: make(map[int]Listener), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) ShowCart()     { c.apply(ShowCart) }
func (c *Controller) HideCart()     { c.apply(HideCart) }
func (c *Controller) ShowCheckout() { c.apply(ShowCheckout) }
func (c *Controller) HideCheckout() { c.apply(HideCheckout) }

// Reset returns the controller to Closed once checkout has completed.
func (c *Controller) Reset() { c.apply(HideCheckout) }

// Apply performs a transition by name.
func (c *Controller) Apply(action Action) error {
	if _, err := Next(Closed, action); err != nil {
		c.logger.DPanic("progress action rejected", zap.String("action", string(action)), zap.Error(err))
		return err
	}
	c.apply(action)
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, Generation: c.gen}
}

func (c *Controller) State() State {
	return c.Snapshot().State
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (c *Controller) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// NotifyClosed handles a close notification from the surface opened for
// target at generation. It hides the surface and returns true only when the
// notification is current; stale notifications are dropped.
func (c *Controller) NotifyClosed(target State, generation uint64) bool {
	hide, err := HideActionFor(target)
	if err != nil {
		c.logger.DPanic("close notification for unknown surface", zap.Stringer("target", target), zap.Error(err))
		return false
	}

	c.mu.Lock()
	current := Snapshot{State: c.state, Generation: c.gen}
	if !current.Accepts(target, generation) {
		c.mu.Unlock()
		c.logger.Debug("stale surface teardown ignored",
			zap.Stringer("surface", target),
			zap.Uint64("surface_generation", generation),
			zap.Stringer("state", current.State),
			zap.Uint64("generation", current.Generation),
		)
		return false
	}
	snap, changed := c.transitionLocked(hide)
	c.mu.Unlock()

	c.notify(hide, snap, changed)
	return true
}

// Mount returns a handle for the surface of target if it is currently
// visible.
func (c *Controller) Mount(target State) (*Surface, bool) {
	snap := c.Snapshot()
	if !snap.Visible(target) {
		return nil, false
	}
	return &Surface{controller: c, target: target, generation: snap.Generation}, true
}

func (c *Controller) apply(action Action) {
	c.mu.Lock()
	snap, changed := c.transitionLocked(action)
	c.mu.Unlock()
	c.notify(action, snap, changed)
}

// transitionLocked bumps the generation only when the state actually
// changes, so re-showing a visible surface keeps its handle current. A
// change is queued for the listeners before the lock is released.
func (c *Controller) transitionLocked(action Action) (Snapshot, bool) {
	next, _ := Next(c.state, action)
	if next == c.state {
		return Snapshot{State: c.state, Generation: c.gen}, false
	}
	c.state = next
	c.gen++
	snap := Snapshot{State: c.state, Generation: c.gen}
	c.queue.Push(snap, c.snapshotListenersLocked())
	return snap, true
}

func (c *Controller) snapshotListenersLocked() []func(Snapshot) {
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		out = append(out, c.listeners[id])
	}
	return out
}

func (c *Controller) notify(action Action, snap Snapshot, changed bool) {
	if !changed {
		return
	}
	c.logger.Debug("progress changed",
		zap.String("action", string(action)),
		zap.Stringer("state", snap.State),
		zap.Uint64("generation", snap.Generation),
	)
	c.queue.Flush()
}

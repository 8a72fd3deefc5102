package cart

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"food-order-storefront/models"
	"food-order-storefront/notify"
)

// Listener receives the cart state after every successful dispatch, in
// dispatch order.
type Listener func(State)

// Store owns the cart of one session. All mutations go through Dispatch.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
	queue     notify.Queue[State]
	logger    *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used to report rejected actions.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty cart store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		state:     EmptyState(),
		listeners: make(map[int]Listener),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch reduces action into the current state. A rejected action leaves
// the state untouched; it is logged with DPanic so development loggers fail
// loudly.
func (s *Store) Dispatch(action Action) error {
	s.mu.Lock()
	next, err := Reduce(s.state, action)
	if err != nil {
		s.mu.Unlock()
		s.logger.DPanic("cart action rejected", zap.String("action", nameOf(action)), zap.Error(err))
		return err
	}
	s.state = next
	s.queue.Push(next, s.snapshotListeners())
	s.mu.Unlock()

	s.logger.Debug("cart updated",
		zap.String("action", nameOf(action)),
		zap.Int("lines", len(next.Items)),
		zap.Int("units", Count(next)),
	)
	s.queue.Flush()
	return nil
}

func (s *Store) AddItem(item models.CartLineItem) error {
	return s.Dispatch(AddItem{Item: item})
}

func (s *Store) RemoveItem(id string) error {
	return s.Dispatch(RemoveItem{ID: id})
}

func (s *Store) ClearCart() error {
	return s.Dispatch(ClearCart{})
}

// State returns the current snapshot. The returned slice is a copy.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Items: copyItems(s.state.Items)}
}

func (s *Store) Items() []models.CartLineItem {
	return s.State().Items
}

func (s *Store) Total() decimal.Decimal {
	return Total(s.State())
}

func (s *Store) Count() int {
	return Count(s.State())
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// snapshotListeners returns the listeners in subscription order. Each one
// receives its own copy of the items.
func (s *Store) snapshotListeners() []func(State) {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(State), 0, len(ids))
	for _, id := range ids {
		l := s.listeners[id]
		out = append(out, func(st State) {
			l(State{Items: copyItems(st.Items)})
		})
	}
	return out
}

func nameOf(action Action) string {
	if action == nil {
		return "<nil>"
	}
	return action.Name()
}

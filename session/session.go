// Package session wires the cart, progress and request components of one
// storefront session and runs the checkout flow across them.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"food-order-storefront/cart"
	"food-order-storefront/checkout"
	"food-order-storefront/config"
	"food-order-storefront/models"
	"food-order-storefront/progress"
	"food-order-storefront/request"
)

var (
	ErrEmptyCart      = errors.New("session: cart is empty")
	ErrNotCheckingOut = errors.New("session: checkout is not open")
	ErrClosed         = errors.New("session: closed")
)

type options struct {
	doer      request.Doer
	logger    *zap.Logger
	validator *checkout.Validator
}

type Option func(*options)

func WithDoer(doer request.Doer) Option {
	return func(o *options) { o.doer = doer }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithValidator(v *checkout.Validator) Option {
	return func(o *options) { o.validator = v }
}

// Session is the container for one shopper. Its components are exported so
// views can observe them directly.
type Session struct {
	Cart     *cart.Store
	Progress *progress.Controller

	registry  *request.Registry
	menuID    request.Identity
	orderID   request.Identity
	menu      *request.Manager[[]models.Meal]
	orders    *request.Manager[models.OrderConfirmation]
	validator *checkout.Validator

	dismissal    config.Dismissal
	dismissDelay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	sendGen uint64
	closed  bool

	logger *zap.Logger
}

// New builds a session against the service in cfg and starts the menu
// fetch.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.doer == nil {
		o.doer = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if o.validator == nil {
		v, err := checkout.NewValidator()
		if err != nil {
			return nil, err
		}
		o.validator = v
	}

	s := &Session{
		Cart:         cart.NewStore(cart.WithLogger(o.logger.Named("cart"))),
		Progress:     progress.NewController(progress.WithLogger(o.logger.Named("progress"))),
		registry:     request.NewRegistry(request.WithDoer(o.doer), request.WithLogger(o.logger.Named("request"))),
		menuID:       request.Get(cfg.MealsURL()),
		orderID:      request.Post(cfg.OrdersURL()),
		validator:    o.validator,
		dismissal:    cfg.Dismissal,
		dismissDelay: cfg.DismissDelay,
		logger:       o.logger,
	}

	var err error
	if s.orders, err = request.Observe(ctx, s.registry, s.orderID, models.OrderConfirmation{}); err != nil {
		return nil, err
	}
	if s.menu, err = s.Menu(ctx); err != nil {
		s.registry.Release(s.orderID)
		return nil, err
	}
	return s, nil
}

// Menu observes the menu request. The first observation fetches the meals;
// later ones share the same result. Each call must be paired with
// ReleaseMenu, except the one New makes itself.
func (s *Session) Menu(ctx context.Context) (*request.Manager[[]models.Meal], error) {
	return request.Observe(ctx, s.registry, s.menuID, []models.Meal{})
}

func (s *Session) ReleaseMenu() {
	s.registry.Release(s.menuID)
}

func (s *Session) Orders() *request.Manager[models.OrderConfirmation] {
	return s.orders
}

// AddMeal puts one portion of meal in the cart.
func (s *Session) AddMeal(meal models.Meal) error {
	return s.Cart.AddItem(meal.LineItem())
}

// SubmitOrder validates form and posts the cart as an order. Validation and
// precondition failures are returned as errors; the outcome of the request
// itself is reported in the returned state.
func (s *Session) SubmitOrder(ctx context.Context, form checkout.Form) (request.State[models.OrderConfirmation], error) {
	var zero request.State[models.OrderConfirmation]

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return zero, ErrClosed
	}
	s.mu.Unlock()

	if !s.Progress.Snapshot().Visible(progress.CheckoutView) {
		return zero, ErrNotCheckingOut
	}
	items := s.Cart.Items()
	if len(items) == 0 {
		return zero, ErrEmptyCart
	}
	customer, err := s.validator.Parse(form)
	if err != nil {
		return zero, err
	}

	s.mu.Lock()
	s.stopTimerLocked()
	s.sendGen++
	gen := s.sendGen
	s.mu.Unlock()

	s.logger.Info("submitting order",
		zap.Int("items", len(items)),
		zap.String("total", cart.Total(cart.State{Items: items}).String()),
	)
	result := s.orders.SendRequest(ctx, models.NewOrderRequest(items, customer))
	if result.Status != request.Success {
		s.logger.Warn("order submission failed", zap.String("error", result.ErrorMessage))
		return result, nil
	}

	s.logger.Info("order submitted", zap.String("order_id", result.Data.OrderID))
	if err := s.Cart.ClearCart(); err != nil {
		return result, fmt.Errorf("failed to clear cart: %w", err)
	}
	s.scheduleDismissal(gen)
	return result, nil
}

func (s *Session) scheduleDismissal(sendGen uint64) {
	switch s.dismissal {
	case config.DismissManual:
	case config.DismissDelayed:
		progressGen := s.Progress.Snapshot().Generation
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		s.timer = time.AfterFunc(s.dismissDelay, func() {
			s.dismiss(sendGen, progressGen)
		})
	default:
		s.Progress.Reset()
		s.orders.ClearData()
	}
}

// dismiss clears the confirmation of the submission numbered sendGen. The
// checkout surface is only closed if nothing moved it since the order
// succeeded.
func (s *Session) dismiss(sendGen, progressGen uint64) {
	s.mu.Lock()
	current := !s.closed && s.sendGen == sendGen
	if current {
		s.timer = nil
	}
	s.mu.Unlock()
	if !current {
		s.logger.Debug("stale confirmation dismissal ignored", zap.Uint64("send_generation", sendGen))
		return
	}

	if s.Progress.NotifyClosed(progress.CheckoutView, progressGen) {
		s.logger.Debug("confirmation dismissed")
	}
	s.orders.ClearData()
}

// FinishCheckout dismisses the confirmation: progress returns to Closed and
// the order result is cleared.
func (s *Session) FinishCheckout() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()

	s.Progress.Reset()
	s.orders.ClearData()
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Items    []models.CartLineItem                   `json:"items"`
	Total    decimal.Decimal                         `json:"total"`
	Count    int                                     `json:"count"`
	Progress progress.Snapshot                       `json:"progress"`
	Menu     request.State[[]models.Meal]            `json:"menu"`
	Order    request.State[models.OrderConfirmation] `json:"order"`
}

func (s *Session) Snapshot() Snapshot {
	st := s.Cart.State()
	return Snapshot{
		Items:    st.Items,
		Total:    cart.Total(st),
		Count:    cart.Count(st),
		Progress: s.Progress.Snapshot(),
		Menu:     s.menu.Snapshot(),
		Order:    s.orders.Snapshot(),
	}
}

// Close stops pending dismissals and releases the session's requests.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.registry.Release(s.menuID)
	s.registry.Release(s.orderID)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
